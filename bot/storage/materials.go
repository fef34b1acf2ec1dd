package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/binarybrigade/printbot/bot/models"
	"github.com/binarybrigade/printbot/core/logger"
	"log/slog"
)

// MaterialRepo is the inventory ledger: it owns material stock quantities.
type MaterialRepo struct {
	db *sqlx.DB
}

// NewMaterialRepo binds the repository to a database handle.
func NewMaterialRepo(db *sqlx.DB) *MaterialRepo {
	return &MaterialRepo{db: db}
}

// Adjust atomically changes the quantity of a material and returns the new
// quantity. An absent material is created at quantity 0 regardless of
// direction, so even a failed Subtract leaves the row behind. Subtract
// fails with InsufficientStockError when the requested amount exceeds the
// current quantity, leaving the quantity itself untouched. The
// read-check-write cycle runs inside a single transaction with a
// conditional update, so concurrent adjustments of the same material
// cannot drive quantity below zero.
func (r *MaterialRepo) Adjust(ctx context.Context, name string, amount int64, dir Direction) (int64, error) {
	if amount < 0 {
		return 0, fmt.Errorf("storage: negative adjust amount %d", amount)
	}

	start := time.Now()
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("adjust begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		r.db.Rebind(`INSERT INTO materials (name, quantity) VALUES (?, 0) ON CONFLICT (name) DO NOTHING`),
		name,
	); err != nil {
		return 0, fmt.Errorf("adjust ensure material: %w", err)
	}

	switch dir {
	case Add:
		if _, err := tx.ExecContext(ctx,
			r.db.Rebind(`UPDATE materials SET quantity = quantity + ? WHERE name = ?`),
			amount, name,
		); err != nil {
			return 0, fmt.Errorf("adjust add: %w", err)
		}
	case Subtract:
		res, err := tx.ExecContext(ctx,
			r.db.Rebind(`UPDATE materials SET quantity = quantity - ? WHERE name = ? AND quantity >= ?`),
			amount, name, amount,
		)
		if err != nil {
			return 0, fmt.Errorf("adjust subtract: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("adjust subtract rows: %w", err)
		}
		if affected == 0 {
			var available int64
			if err := tx.GetContext(ctx, &available,
				r.db.Rebind(`SELECT quantity FROM materials WHERE name = ?`), name,
			); err != nil {
				return 0, fmt.Errorf("adjust shortfall read: %w", err)
			}
			// Commit so the ensure-insert survives: an unknown material
			// surfaces in the ledger at quantity 0 instead of vanishing.
			if err := tx.Commit(); err != nil {
				return 0, fmt.Errorf("adjust shortfall commit: %w", err)
			}
			return available, &InsufficientStockError{
				Material:  name,
				Requested: amount,
				Available: available,
			}
		}
	default:
		panic(fmt.Sprintf("storage: unknown adjust direction %d", dir))
	}

	var quantity int64
	if err := tx.GetContext(ctx, &quantity,
		r.db.Rebind(`SELECT quantity FROM materials WHERE name = ?`), name,
	); err != nil {
		return 0, fmt.Errorf("adjust read back: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("adjust commit: %w", err)
	}

	logger.DB.Debug("material adjusted",
		slog.String("event", "db.materials.adjust"),
		slog.String("material", name),
		slog.Int64("amount", amount),
		slog.Int64("quantity", quantity),
		slog.Duration("duration", logger.Took(start)),
	)
	return quantity, nil
}

// GetByName returns a material or ErrNotFound.
func (r *MaterialRepo) GetByName(ctx context.Context, name string) (models.Material, error) {
	var m models.Material
	err := r.db.GetContext(ctx, &m,
		r.db.Rebind(`SELECT id, name, quantity FROM materials WHERE name = ?`), name,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Material{}, ErrNotFound
	}
	if err != nil {
		return models.Material{}, fmt.Errorf("material get: %w", err)
	}
	return m, nil
}

// List returns all materials ordered by name.
func (r *MaterialRepo) List(ctx context.Context) ([]models.Material, error) {
	var out []models.Material
	if err := r.db.SelectContext(ctx, &out,
		`SELECT id, name, quantity FROM materials ORDER BY name`,
	); err != nil {
		return nil, fmt.Errorf("material list: %w", err)
	}
	return out, nil
}
