package storage

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdjustAddCreatesMaterial(t *testing.T) {
	repo := NewMaterialRepo(newTestDB(t))
	ctx := context.Background()

	quantity, err := repo.Adjust(ctx, "PLA", 200, Add)
	require.NoError(t, err)
	assert.Equal(t, int64(200), quantity)

	quantity, err = repo.Adjust(ctx, "PLA", 50, Add)
	require.NoError(t, err)
	assert.Equal(t, int64(250), quantity)
}

func TestAdjustSubtract(t *testing.T) {
	repo := NewMaterialRepo(newTestDB(t))
	ctx := context.Background()

	_, err := repo.Adjust(ctx, "PETG", 300, Add)
	require.NoError(t, err)

	quantity, err := repo.Adjust(ctx, "PETG", 120, Subtract)
	require.NoError(t, err)
	assert.Equal(t, int64(180), quantity)

	// Draining to exactly zero is allowed.
	quantity, err = repo.Adjust(ctx, "PETG", 180, Subtract)
	require.NoError(t, err)
	assert.Equal(t, int64(0), quantity)
}

func TestAdjustSubtractInsufficient(t *testing.T) {
	repo := NewMaterialRepo(newTestDB(t))
	ctx := context.Background()

	_, err := repo.Adjust(ctx, "ABS", 100, Add)
	require.NoError(t, err)

	_, err = repo.Adjust(ctx, "ABS", 150, Subtract)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	var shortfall *InsufficientStockError
	require.True(t, errors.As(err, &shortfall))
	assert.Equal(t, "ABS", shortfall.Material)
	assert.Equal(t, int64(150), shortfall.Requested)
	assert.Equal(t, int64(100), shortfall.Available)

	// A failed subtract must not change the stored quantity.
	m, err := repo.GetByName(ctx, "ABS")
	require.NoError(t, err)
	assert.Equal(t, int64(100), m.Quantity)
}

func TestAdjustSubtractUnknownMaterial(t *testing.T) {
	repo := NewMaterialRepo(newTestDB(t))

	_, err := repo.Adjust(context.Background(), "nylon", 10, Subtract)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	// Subtract auto-created the row at zero, matching the ledger contract.
	m, err := repo.GetByName(context.Background(), "nylon")
	require.NoError(t, err)
	assert.Equal(t, int64(0), m.Quantity)
}

func TestAdjustRandomSequenceKeepsQuantityNonNegative(t *testing.T) {
	repo := NewMaterialRepo(newTestDB(t))
	ctx := context.Background()
	rng := rand.New(rand.NewSource(42))

	// Shadow the ledger with plain arithmetic and check the stored quantity
	// after every step.
	var want int64
	for i := 0; i < 80; i++ {
		amount := rng.Int63n(40) + 1
		if rng.Intn(2) == 0 {
			got, err := repo.Adjust(ctx, "PLA", amount, Add)
			require.NoError(t, err)
			assert.Equal(t, want+amount, got)
			want += amount
		} else {
			got, err := repo.Adjust(ctx, "PLA", amount, Subtract)
			if amount > want {
				assert.ErrorIs(t, err, ErrInsufficientStock)
				assert.Equal(t, want, got)
			} else {
				require.NoError(t, err)
				assert.Equal(t, want-amount, got)
				want -= amount
			}
		}

		m, err := repo.GetByName(ctx, "PLA")
		require.NoError(t, err)
		assert.Equal(t, want, m.Quantity)
		assert.GreaterOrEqual(t, m.Quantity, int64(0))
	}
}

func TestAdjustRejectsNegativeAmount(t *testing.T) {
	repo := NewMaterialRepo(newTestDB(t))

	_, err := repo.Adjust(context.Background(), "PLA", -5, Add)
	assert.Error(t, err)
}

func TestAdjustUnknownDirectionPanics(t *testing.T) {
	repo := NewMaterialRepo(newTestDB(t))

	assert.Panics(t, func() {
		_, _ = repo.Adjust(context.Background(), "PLA", 10, Direction(99))
	})
}

func TestGetByNameNotFound(t *testing.T) {
	repo := NewMaterialRepo(newTestDB(t))

	_, err := repo.GetByName(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListOrderedByName(t *testing.T) {
	repo := NewMaterialRepo(newTestDB(t))
	ctx := context.Background()

	for _, name := range []string{"PETG", "ABS", "PLA"} {
		_, err := repo.Adjust(ctx, name, 10, Add)
		require.NoError(t, err)
	}

	materials, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, materials, 3)
	assert.Equal(t, "ABS", materials[0].Name)
	assert.Equal(t, "PETG", materials[1].Name)
	assert.Equal(t, "PLA", materials[2].Name)
}
