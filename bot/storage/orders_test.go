package storage

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/binarybrigade/printbot/bot/models"
)

func seedMaterial(t *testing.T, materials *MaterialRepo, name string, amount int64) {
	t.Helper()
	_, err := materials.Adjust(context.Background(), name, amount, Add)
	require.NoError(t, err)
}

func testOrder(name string, due time.Time, importance int) CreateParams {
	cost := decimal.NewFromInt(700)
	return CreateParams{
		Name:            name,
		FileLink:        "https://files.example/" + name,
		MaterialName:    "PLA",
		MaterialAmount:  100,
		RecommendedDate: due,
		Importance:      importance,
		Settings:        "0.2mm",
		Cost:            &cost,
		CreatedAt:       time.Now().UTC(),
	}
}

func TestOrderCreateAndGet(t *testing.T) {
	db := newTestDB(t)
	materials := NewMaterialRepo(db)
	orders := NewOrderRepo(db)
	ctx := context.Background()
	seedMaterial(t, materials, "PLA", 1000)

	due := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	id, err := orders.Create(ctx, testOrder("benchy", due, 5))
	require.NoError(t, err)
	require.NotZero(t, id)

	got, err := orders.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "benchy", got.Name)
	assert.Equal(t, "PLA", got.MaterialName)
	assert.Equal(t, int64(100), got.MaterialAmount)
	assert.Equal(t, models.StatusPending, got.Status)
	require.NotNil(t, got.Cost)
	assert.True(t, got.Cost.Equal(decimal.NewFromInt(700)))
	assert.False(t, got.PaymentConfirmed)
}

func TestOrderGetByNameLowestID(t *testing.T) {
	db := newTestDB(t)
	materials := NewMaterialRepo(db)
	orders := NewOrderRepo(db)
	ctx := context.Background()
	seedMaterial(t, materials, "PLA", 1000)

	due := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	first, err := orders.Create(ctx, testOrder("vase", due, 3))
	require.NoError(t, err)
	_, err = orders.Create(ctx, testOrder("vase", due.AddDate(0, 0, 1), 8))
	require.NoError(t, err)

	got, err := orders.GetByName(ctx, "vase")
	require.NoError(t, err)
	assert.Equal(t, first, got.ID)
}

func TestOrderGetNotFound(t *testing.T) {
	orders := NewOrderRepo(newTestDB(t))

	_, err := orders.GetByID(context.Background(), 404)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = orders.GetByName(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOrderDelete(t *testing.T) {
	db := newTestDB(t)
	materials := NewMaterialRepo(db)
	orders := NewOrderRepo(db)
	ctx := context.Background()
	seedMaterial(t, materials, "PLA", 1000)

	id, err := orders.Create(ctx, testOrder("gear", time.Now().UTC(), 5))
	require.NoError(t, err)

	require.NoError(t, orders.Delete(ctx, id))
	assert.ErrorIs(t, orders.Delete(ctx, id), ErrNotFound)
}

func TestOrderSetStatus(t *testing.T) {
	db := newTestDB(t)
	materials := NewMaterialRepo(db)
	orders := NewOrderRepo(db)
	ctx := context.Background()
	seedMaterial(t, materials, "PLA", 1000)

	id, err := orders.Create(ctx, testOrder("bracket", time.Now().UTC(), 5))
	require.NoError(t, err)

	require.NoError(t, orders.SetStatus(ctx, id, true))
	got, err := orders.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, got.Status)

	require.NoError(t, orders.SetStatus(ctx, id, false))
	got, err = orders.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, got.Status)

	assert.ErrorIs(t, orders.SetStatus(ctx, 404, true), ErrNotFound)
}

func TestListPendingOrdering(t *testing.T) {
	db := newTestDB(t)
	materials := NewMaterialRepo(db)
	orders := NewOrderRepo(db)
	ctx := context.Background()
	seedMaterial(t, materials, "PLA", 10000)

	day1 := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 9, 2, 0, 0, 0, 0, time.UTC)

	// Same due date, different importance; then a later date.
	lowImp, err := orders.Create(ctx, testOrder("low", day1, 2))
	require.NoError(t, err)
	highImp, err := orders.Create(ctx, testOrder("high", day1, 9))
	require.NoError(t, err)
	later, err := orders.Create(ctx, testOrder("later", day2, 10))
	require.NoError(t, err)

	list, err := orders.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, highImp, list[0].ID)
	assert.Equal(t, lowImp, list[1].ID)
	assert.Equal(t, later, list[2].ID)
}

func TestSweepExpired(t *testing.T) {
	db := newTestDB(t)
	materials := NewMaterialRepo(db)
	orders := NewOrderRepo(db)
	ctx := context.Background()
	seedMaterial(t, materials, "PLA", 10000)

	now := time.Now().UTC()
	old := testOrder("stale", now, 5)
	old.CreatedAt = now.AddDate(0, 0, -11)
	staleID, err := orders.Create(ctx, old)
	require.NoError(t, err)

	oldPaid := testOrder("stale-paid", now, 5)
	oldPaid.CreatedAt = now.AddDate(0, 0, -11)
	oldPaid.PaymentConfirmed = true
	paidID, err := orders.Create(ctx, oldPaid)
	require.NoError(t, err)

	fresh := testOrder("fresh", now, 5)
	fresh.CreatedAt = now.AddDate(0, 0, -2)
	freshID, err := orders.Create(ctx, fresh)
	require.NoError(t, err)

	cutoff := now.AddDate(0, 0, -10)
	deleted, err := orders.SweepExpired(ctx, cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	_, err = orders.GetByID(ctx, staleID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = orders.GetByID(ctx, paidID)
	assert.NoError(t, err)
	_, err = orders.GetByID(ctx, freshID)
	assert.NoError(t, err)

	// Sweeping again removes nothing extra.
	deleted, err = orders.SweepExpired(ctx, cutoff)
	require.NoError(t, err)
	assert.Zero(t, deleted)
}
