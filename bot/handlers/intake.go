package handlers

import (
	"errors"

	tele "gopkg.in/telebot.v4"

	"github.com/binarybrigade/printbot/bot/intake"
	"github.com/binarybrigade/printbot/core/telegram/callbacks"
	tghelpers "github.com/binarybrigade/printbot/core/telegram/helpers"
	"github.com/binarybrigade/printbot/core/telegram/keyboard"
)

func (h *Handlers) cmdNewOrder(c tele.Context) error {
	return h.sendPrompt(c, h.machine.Start(c.Sender().ID))
}

func (h *Handlers) cbMakeOrder(c tele.Context) error {
	return h.sendPrompt(c, h.machine.Start(c.Sender().ID))
}

// cbIntake feeds an inline button press into the intake machine.
func (h *Handlers) cbIntake(c tele.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	prompt, err := h.machine.Handle(ctx, intake.Event{
		UserID:  c.Sender().ID,
		Kind:    intake.EventButton,
		Payload: callbacks.CallbackPayload(c),
	})
	if err != nil {
		if errors.Is(err, intake.ErrNoSession) {
			return tghelpers.SendText(c, "No order intake is in progress. Use /neworder to start one.")
		}
		return err
	}
	return h.sendPrompt(c, prompt)
}

// intakeText feeds a typed answer into the intake machine; called by the
// dialog router while an intake session is active.
func (h *Handlers) intakeText(c tele.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	prompt, err := h.machine.Handle(ctx, intake.Event{
		UserID:  c.Sender().ID,
		Kind:    intake.EventText,
		Payload: c.Text(),
	})
	if err != nil {
		if errors.Is(err, intake.ErrNoSession) {
			return nil
		}
		return err
	}
	return h.sendPrompt(c, prompt)
}

// sendPrompt renders a machine prompt as a Telegram message. Finished prompts
// get the back-to-menu button instead of the step keyboard.
func (h *Handlers) sendPrompt(c tele.Context, p intake.Prompt) error {
	if p.Finished {
		return tghelpers.SendText(c, p.Text, &tele.SendOptions{ReplyMarkup: backMenuMarkup()})
	}
	var markup *tele.ReplyMarkup
	if len(p.Choices) > 0 {
		btns := make([]keyboard.InlineBtn, 0, len(p.Choices))
		for _, choice := range p.Choices {
			btns = append(btns, keyboard.InlineBtn{
				Text:   choice.Label,
				Unique: cbIntake,
				Data:   choice.Data,
			})
		}
		markup = keyboard.InlineButtonsNPerRow(btns, 2)
	}
	if markup != nil {
		return tghelpers.SendText(c, p.Text, &tele.SendOptions{ReplyMarkup: markup})
	}
	return tghelpers.SendText(c, p.Text)
}
