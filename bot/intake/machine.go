// Package intake drives the multi-step order collection conversation.
// The machine is transport-agnostic: it consumes user events and emits
// prompts, leaving rendering to the gateway adapter. All transitions are
// dispatched through a single table, and nothing touches the inventory
// ledger or the order store before finalization.
package intake

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/binarybrigade/printbot/bot/models"
	"github.com/binarybrigade/printbot/bot/storage"
	"github.com/binarybrigade/printbot/core/logger"
)

// ErrNoSession reports an event for a user without an active intake.
var ErrNoSession = errors.New("intake: no active session")

// EventKind distinguishes typed text from button presses.
type EventKind int

const (
	// EventText carries free text typed by the user.
	EventText EventKind = iota
	// EventButton carries an inline button payload.
	EventButton
)

// Button payloads understood by the machine.
const (
	BtnBack        = "back"
	BtnCancel      = "cancel"
	BtnConfirmYes  = "yes"
	BtnConfirmNo   = "no"
	BtnPriceSystem = "price_system"
	BtnPriceCustom = "price_custom"
)

// Event is an inbound user action delivered by the bot gateway.
type Event struct {
	UserID  int64
	Kind    EventKind
	Payload string
}

// Choice is an inline button offered with a prompt.
type Choice struct {
	Label string
	Data  string
}

// Prompt is the outbound message the gateway renders for the user.
type Prompt struct {
	UserID  int64
	Text    string
	Choices []Choice
	// Finished marks prompts that end the conversation (created,
	// cancelled, or aborted); the gateway drops its navigation keyboard.
	Finished bool
}

// OrderPlacer is the single logical unit that reserves inventory and
// persists the order; implemented by service.Orders.
type OrderPlacer interface {
	PlaceOrder(ctx context.Context, o models.Order) (int64, error)
}

// Machine is the order intake state machine. One machine serves all users;
// per-user state lives in the session store.
type Machine struct {
	sessions *sessionStore
	placer   OrderPlacer
	unitRate decimal.Decimal
}

// NewMachine builds the machine with the configured per-gram rate used for
// the recommended cost.
func NewMachine(placer OrderPlacer, unitRate decimal.Decimal) *Machine {
	return &Machine{
		sessions: newSessionStore(),
		placer:   placer,
		unitRate: unitRate,
	}
}

// Start opens a fresh intake for the user, discarding any previous draft,
// and returns the first question.
func (m *Machine) Start(userID int64) Prompt {
	sess := m.sessions.begin(userID)
	logger.SVCIntake.Debug("intake started",
		slog.String("event", "intake.start"),
		slog.Int64("user_id", userID),
	)
	return m.question(userID, sess)
}

// Active reports whether the user has an intake in progress.
func (m *Machine) Active(userID int64) bool {
	return m.sessions.active(userID)
}

// Cancel drops the user's session without touching any store.
func (m *Machine) Cancel(userID int64) {
	m.sessions.clear(userID)
}

// Handle advances the conversation with one user event and returns the next
// prompt. Events for users without a session yield ErrNoSession.
func (m *Machine) Handle(ctx context.Context, ev Event) (Prompt, error) {
	sess, ok := m.sessions.get(ev.UserID)
	if !ok {
		return Prompt{}, ErrNoSession
	}

	if ev.Kind == EventButton {
		switch ev.Payload {
		case BtnCancel:
			m.sessions.clear(ev.UserID)
			return Prompt{UserID: ev.UserID, Text: "Order intake cancelled.", Finished: true}, nil
		case BtnBack:
			return m.back(ev.UserID, sess), nil
		}
	}

	switch sess.step {
	case StepConfirm:
		return m.handleConfirm(ev, sess)
	case StepPricing:
		return m.handlePricing(ctx, ev, sess)
	case StepCustomPrice:
		return m.handleCustomPrice(ctx, ev, sess)
	default:
		return m.handleText(ev, sess)
	}
}

func (m *Machine) handleText(ev Event, sess *session) (Prompt, error) {
	spec, ok := textSteps[sess.step]
	if !ok {
		return Prompt{}, fmt.Errorf("intake: no text handler for step %s", sess.step)
	}
	if ev.Kind != EventText {
		// A stray button press re-asks the current question.
		return m.question(ev.UserID, sess), nil
	}
	if err := spec.validate(ev.Payload, &sess.draft); err != nil {
		logger.SVCIntake.Debug("input rejected",
			slog.String("event", "intake.validate"),
			slog.String("status", "fail"),
			slog.Int64("user_id", ev.UserID),
			slog.String("step", sess.step.String()),
		)
		return m.withNav(Prompt{UserID: ev.UserID, Text: "Error: " + err.Error()}), nil
	}
	sess.step = spec.next
	logger.SVCIntake.Debug("step advanced",
		slog.String("event", "intake.step"),
		slog.Int64("user_id", ev.UserID),
		slog.String("step", sess.step.String()),
	)
	return m.question(ev.UserID, sess), nil
}

func (m *Machine) handleConfirm(ev Event, sess *session) (Prompt, error) {
	if ev.Kind != EventButton {
		return m.question(ev.UserID, sess), nil
	}
	switch ev.Payload {
	case BtnConfirmYes:
		sess.step = StepPricing
		return m.question(ev.UserID, sess), nil
	case BtnConfirmNo:
		name := sess.draft.Name
		m.sessions.clear(ev.UserID)
		return Prompt{
			UserID:   ev.UserID,
			Text:     fmt.Sprintf("Order %q was not created.", name),
			Finished: true,
		}, nil
	default:
		return m.question(ev.UserID, sess), nil
	}
}

func (m *Machine) handlePricing(ctx context.Context, ev Event, sess *session) (Prompt, error) {
	if ev.Kind != EventButton {
		return m.question(ev.UserID, sess), nil
	}
	switch ev.Payload {
	case BtnPriceSystem:
		return m.finalize(ctx, ev.UserID, sess, m.recommendedCost(&sess.draft)), nil
	case BtnPriceCustom:
		sess.step = StepCustomPrice
		return m.question(ev.UserID, sess), nil
	default:
		return m.question(ev.UserID, sess), nil
	}
}

func (m *Machine) handleCustomPrice(ctx context.Context, ev Event, sess *session) (Prompt, error) {
	if ev.Kind != EventText {
		return m.question(ev.UserID, sess), nil
	}
	price, err := decimal.NewFromString(ev.Payload)
	if err != nil || price.IsNegative() {
		return m.withNav(Prompt{
			UserID: ev.UserID,
			Text:   "Error: the price must be a number, please enter it again",
		}), nil
	}
	return m.finalize(ctx, ev.UserID, sess, price), nil
}

// back returns to the previous step keeping every collected field; from the
// first step it leaves the flow entirely.
func (m *Machine) back(userID int64, sess *session) Prompt {
	prev, ok := prevSteps[sess.step]
	if !ok {
		m.sessions.clear(userID)
		return Prompt{UserID: userID, Text: "Order intake closed.", Finished: true}
	}
	sess.step = prev
	return m.question(userID, sess)
}

// finalize reserves the material and persists the order as one logical unit.
// The session is cleared on every outcome; no partial state survives.
func (m *Machine) finalize(ctx context.Context, userID int64, sess *session, cost decimal.Decimal) Prompt {
	draft := sess.draft
	m.sessions.clear(userID)

	order, err := draft.Order(cost)
	if err != nil {
		return Prompt{UserID: userID, Text: "Something went wrong, the order was not created.", Finished: true}
	}

	id, err := m.placer.PlaceOrder(ctx, order)
	if err != nil {
		var shortfall *storage.InsufficientStockError
		if errors.As(err, &shortfall) {
			return Prompt{
				UserID: userID,
				Text: fmt.Sprintf(
					"Not enough %s in stock: the order needs %d g but only %d g is available. The order was not created.",
					shortfall.Material, shortfall.Requested, shortfall.Available,
				),
				Finished: true,
			}
		}
		// Infrastructure detail stays in the logs; the user gets an apology.
		return Prompt{
			UserID:   userID,
			Text:     "Sorry, something went wrong on our side and the order was not created. Please try again later.",
			Finished: true,
		}
	}

	return Prompt{
		UserID: userID,
		Text: fmt.Sprintf("Order %q created with id %d. Cost: %s.",
			order.Name, id, cost.String()),
		Finished: true,
	}
}

func (m *Machine) recommendedCost(d *Draft) decimal.Decimal {
	return m.unitRate.Mul(decimal.NewFromInt(d.Amount))
}

// question renders the prompt for the session's current step.
func (m *Machine) question(userID int64, sess *session) Prompt {
	switch sess.step {
	case StepConfirm:
		return Prompt{
			UserID: userID,
			Text:   sess.draft.Summary(),
			Choices: []Choice{
				{Label: "Yes ✅", Data: BtnConfirmYes},
				{Label: "No ❌", Data: BtnConfirmNo},
				{Label: "⬅️ Back", Data: BtnBack},
			},
		}
	case StepPricing:
		return Prompt{
			UserID: userID,
			Text: fmt.Sprintf("We recommend a cost of %s for this order. Choose the pricing:",
				m.recommendedCost(&sess.draft).String()),
			Choices: []Choice{
				{Label: "Recommended cost", Data: BtnPriceSystem},
				{Label: "My own cost", Data: BtnPriceCustom},
				{Label: "⬅️ Back", Data: BtnBack},
			},
		}
	case StepCustomPrice:
		return m.withNav(Prompt{UserID: userID, Text: "Enter the order cost"})
	default:
		spec := textSteps[sess.step]
		return m.withNav(Prompt{UserID: userID, Text: spec.question(&sess.draft)})
	}
}

// withNav appends the standard back/cancel buttons to a step prompt.
func (m *Machine) withNav(p Prompt) Prompt {
	p.Choices = append(p.Choices,
		Choice{Label: "⬅️ Back", Data: BtnBack},
		Choice{Label: "Cancel ❌", Data: BtnCancel},
	)
	return p
}
