package intake

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/binarybrigade/printbot/bot/models"
	"github.com/binarybrigade/printbot/bot/storage"
	coreconfig "github.com/binarybrigade/printbot/core/config"
	"github.com/binarybrigade/printbot/core/logger"
)

func TestMain(m *testing.M) {
	if err := logger.InitLogger(&coreconfig.Config{}); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

// fakePlacer simulates the order service backed by a stock map.
type fakePlacer struct {
	stock  map[string]int64
	placed []models.Order
	err    error
	nextID int64
}

func (f *fakePlacer) PlaceOrder(_ context.Context, o models.Order) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	if have := f.stock[o.MaterialName]; have < o.MaterialAmount {
		return 0, &storage.InsufficientStockError{
			Material:  o.MaterialName,
			Requested: o.MaterialAmount,
			Available: have,
		}
	}
	f.stock[o.MaterialName] -= o.MaterialAmount
	f.placed = append(f.placed, o)
	f.nextID++
	return f.nextID, nil
}

func newTestMachine(stock map[string]int64) (*Machine, *fakePlacer) {
	placer := &fakePlacer{stock: stock}
	return NewMachine(placer, decimal.NewFromInt(7)), placer
}

const userID int64 = 42

func text(s string) Event   { return Event{UserID: userID, Kind: EventText, Payload: s} }
func button(s string) Event { return Event{UserID: userID, Kind: EventButton, Payload: s} }

// walkToConfirm answers every text question of a standard order.
func walkToConfirm(t *testing.T, m *Machine) Prompt {
	t.Helper()
	var p Prompt
	var err error
	for _, answer := range []string{"benchy", "https://files.example/benchy", "PLA", "150", "2026-09-10", "5", "0.2mm layers"} {
		p, err = m.Handle(context.Background(), text(answer))
		require.NoError(t, err)
	}
	return p
}

func TestFullFlowRecommendedPrice(t *testing.T) {
	m, placer := newTestMachine(map[string]int64{"PLA": 200})

	first := m.Start(userID)
	assert.Equal(t, "Enter the order name", first.Text)
	assert.True(t, m.Active(userID))

	confirm := walkToConfirm(t, m)
	assert.Contains(t, confirm.Text, "benchy")
	assert.Contains(t, confirm.Text, "150 g")
	assert.Contains(t, confirm.Text, "Create the order")

	pricing, err := m.Handle(context.Background(), button(BtnConfirmYes))
	require.NoError(t, err)
	// 150 g at rate 7 per gram.
	assert.Contains(t, pricing.Text, "1050")

	done, err := m.Handle(context.Background(), button(BtnPriceSystem))
	require.NoError(t, err)
	assert.True(t, done.Finished)
	assert.Contains(t, done.Text, `Order "benchy" created with id 1`)
	assert.Contains(t, done.Text, "1050")

	require.Len(t, placer.placed, 1)
	o := placer.placed[0]
	assert.Equal(t, "PLA", o.MaterialName)
	assert.Equal(t, int64(150), o.MaterialAmount)
	require.NotNil(t, o.Cost)
	assert.True(t, o.Cost.Equal(decimal.NewFromInt(1050)))
	assert.Equal(t, int64(50), placer.stock["PLA"])
	assert.False(t, m.Active(userID))
}

func TestFullFlowCustomPrice(t *testing.T) {
	m, placer := newTestMachine(map[string]int64{"PLA": 200})
	m.Start(userID)
	walkToConfirm(t, m)

	_, err := m.Handle(context.Background(), button(BtnConfirmYes))
	require.NoError(t, err)
	ask, err := m.Handle(context.Background(), button(BtnPriceCustom))
	require.NoError(t, err)
	assert.Equal(t, "Enter the order cost", ask.Text)

	// A bad price re-asks without finishing.
	bad, err := m.Handle(context.Background(), text("not-a-number"))
	require.NoError(t, err)
	assert.False(t, bad.Finished)
	assert.Contains(t, bad.Text, "must be a number")

	done, err := m.Handle(context.Background(), text("999.90"))
	require.NoError(t, err)
	assert.True(t, done.Finished)
	require.Len(t, placer.placed, 1)
	assert.True(t, placer.placed[0].Cost.Equal(decimal.RequireFromString("999.90")))
}

func TestValidationReprompts(t *testing.T) {
	m, _ := newTestMachine(map[string]int64{})
	m.Start(userID)

	// Empty name is rejected and the step does not advance.
	p, err := m.Handle(context.Background(), text("   "))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(p.Text, "Error:"))

	p, err = m.Handle(context.Background(), text("benchy"))
	require.NoError(t, err)
	assert.Equal(t, "Enter the link to the 3D model", p.Text)

	_, err = m.Handle(context.Background(), text("https://x"))
	require.NoError(t, err)
	_, err = m.Handle(context.Background(), text("PLA"))
	require.NoError(t, err)

	// Zero and negative amounts are rejected.
	p, err = m.Handle(context.Background(), text("0"))
	require.NoError(t, err)
	assert.Contains(t, p.Text, "greater than zero")
	p, err = m.Handle(context.Background(), text("-5"))
	require.NoError(t, err)
	assert.Contains(t, p.Text, "greater than zero")

	p, err = m.Handle(context.Background(), text("150"))
	require.NoError(t, err)
	assert.Contains(t, p.Text, "completion date")

	p, err = m.Handle(context.Background(), text("10-09-2026"))
	require.NoError(t, err)
	assert.Contains(t, p.Text, "YYYY-MM-DD")

	_, err = m.Handle(context.Background(), text("2026-09-10"))
	require.NoError(t, err)

	p, err = m.Handle(context.Background(), text("11"))
	require.NoError(t, err)
	assert.Contains(t, p.Text, "between 1 and 10")
}

func TestInsufficientStockAborts(t *testing.T) {
	m, placer := newTestMachine(map[string]int64{"PLA": 100})
	m.Start(userID)
	walkToConfirm(t, m)

	_, err := m.Handle(context.Background(), button(BtnConfirmYes))
	require.NoError(t, err)
	done, err := m.Handle(context.Background(), button(BtnPriceSystem))
	require.NoError(t, err)

	assert.True(t, done.Finished)
	assert.Contains(t, done.Text, "Not enough PLA")
	assert.Contains(t, done.Text, "needs 150 g")
	assert.Contains(t, done.Text, "only 100 g")
	assert.Empty(t, placer.placed)
	// The conversation is over; a new order needs a fresh start.
	assert.False(t, m.Active(userID))
}

func TestBackKeepsCollectedFields(t *testing.T) {
	m, _ := newTestMachine(map[string]int64{})
	m.Start(userID)

	_, err := m.Handle(context.Background(), text("benchy"))
	require.NoError(t, err)
	_, err = m.Handle(context.Background(), text("https://x"))
	require.NoError(t, err)
	p, err := m.Handle(context.Background(), text("PLA"))
	require.NoError(t, err)
	assert.Contains(t, p.Text, "amount of material")

	// Back returns to the material question.
	p, err = m.Handle(context.Background(), button(BtnBack))
	require.NoError(t, err)
	assert.Equal(t, "Enter the material name", p.Text)

	// Re-answer and continue: earlier fields are still there.
	_, err = m.Handle(context.Background(), text("PETG"))
	require.NoError(t, err)
	sess, ok := m.sessions.get(userID)
	require.True(t, ok)
	assert.Equal(t, "benchy", sess.draft.Name)
	assert.Equal(t, "https://x", sess.draft.FileLink)
	assert.Equal(t, "PETG", sess.draft.Material)
}

func TestBackFromFirstStepCloses(t *testing.T) {
	m, _ := newTestMachine(map[string]int64{})
	m.Start(userID)

	p, err := m.Handle(context.Background(), button(BtnBack))
	require.NoError(t, err)
	assert.True(t, p.Finished)
	assert.False(t, m.Active(userID))
}

func TestCancelClearsSession(t *testing.T) {
	m, _ := newTestMachine(map[string]int64{})
	m.Start(userID)
	_, err := m.Handle(context.Background(), text("benchy"))
	require.NoError(t, err)

	p, err := m.Handle(context.Background(), button(BtnCancel))
	require.NoError(t, err)
	assert.True(t, p.Finished)
	assert.False(t, m.Active(userID))

	_, err = m.Handle(context.Background(), text("anything"))
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestConfirmNoDiscardsDraft(t *testing.T) {
	m, placer := newTestMachine(map[string]int64{"PLA": 1000})
	m.Start(userID)
	walkToConfirm(t, m)

	p, err := m.Handle(context.Background(), button(BtnConfirmNo))
	require.NoError(t, err)
	assert.True(t, p.Finished)
	assert.Contains(t, p.Text, `"benchy" was not created`)
	assert.Empty(t, placer.placed)
	assert.False(t, m.Active(userID))
}

func TestRestartOverwritesDraft(t *testing.T) {
	m, _ := newTestMachine(map[string]int64{})
	m.Start(userID)
	_, err := m.Handle(context.Background(), text("first"))
	require.NoError(t, err)

	p := m.Start(userID)
	assert.Equal(t, "Enter the order name", p.Text)
	sess, ok := m.sessions.get(userID)
	require.True(t, ok)
	assert.Empty(t, sess.draft.Name)
}

func TestStrayButtonReasksQuestion(t *testing.T) {
	m, _ := newTestMachine(map[string]int64{})
	m.Start(userID)

	p, err := m.Handle(context.Background(), button("garbage"))
	require.NoError(t, err)
	assert.Equal(t, "Enter the order name", p.Text)
}

func TestDraftIncompleteGuards(t *testing.T) {
	d := &Draft{Name: "x", FileLink: "y", Material: "z", Amount: 1}
	assert.False(t, d.Complete())
	_, err := d.Order(decimal.NewFromInt(10))
	assert.Error(t, err)
}
