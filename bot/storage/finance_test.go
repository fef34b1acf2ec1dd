package storage

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFinanceExpenses(t *testing.T) {
	repo := NewFinanceRepo(newTestDB(t))
	ctx := context.Background()

	jan := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	feb := time.Date(2026, 2, 15, 12, 0, 0, 0, time.UTC)

	id, err := repo.AddExpense(ctx, "filament", decimal.NewFromInt(1200), jan, "PLA restock")
	require.NoError(t, err)
	require.NotZero(t, id)
	_, err = repo.AddExpense(ctx, "electricity", decimal.NewFromInt(300), feb, "")
	require.NoError(t, err)

	got, err := repo.ExpensesBetween(ctx,
		time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 1, 31, 23, 59, 59, 0, time.UTC),
	)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "filament", got[0].Category)
	assert.True(t, got[0].Amount.Equal(decimal.NewFromInt(1200)))
	assert.Equal(t, "PLA restock", got[0].Description)
}

func TestFinanceRevenue(t *testing.T) {
	repo := NewFinanceRepo(newTestDB(t))
	ctx := context.Background()

	when := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	id, err := repo.AddRevenue(ctx, 7, decimal.RequireFromString("699.50"), when)
	require.NoError(t, err)
	require.NotZero(t, id)

	got, err := repo.RevenueBetween(ctx, when.AddDate(0, 0, -1), when.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(7), got[0].OrderID)
	assert.True(t, got[0].Amount.Equal(decimal.RequireFromString("699.50")))
}

func TestFinanceExpensesByCategory(t *testing.T) {
	repo := NewFinanceRepo(newTestDB(t))
	ctx := context.Background()

	now := time.Now().UTC()
	_, err := repo.AddExpense(ctx, "filament", decimal.NewFromInt(100), now, "a")
	require.NoError(t, err)
	_, err = repo.AddExpense(ctx, "filament", decimal.NewFromInt(200), now, "b")
	require.NoError(t, err)
	_, err = repo.AddExpense(ctx, "rent", decimal.NewFromInt(900), now, "c")
	require.NoError(t, err)

	got, err := repo.ExpensesByCategory(ctx, "filament")
	require.NoError(t, err)
	assert.Len(t, got, 2)
}
