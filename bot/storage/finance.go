package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/binarybrigade/printbot/bot/models"
)

// FinanceRepo owns the append-only expense and revenue ledgers.
type FinanceRepo struct {
	db *sqlx.DB
}

// NewFinanceRepo binds the repository to a database handle.
func NewFinanceRepo(db *sqlx.DB) *FinanceRepo {
	return &FinanceRepo{db: db}
}

// AddExpense appends an expense record and returns its id.
func (r *FinanceRepo) AddExpense(ctx context.Context, category string, amount decimal.Decimal, spentAt time.Time, description string) (int64, error) {
	var id int64
	err := r.db.GetContext(ctx, &id, r.db.Rebind(`
		INSERT INTO expenses (category, amount, spent_at, description)
		VALUES (?, ?, ?, ?)
		RETURNING id`),
		category, amount, spentAt, description,
	)
	if err != nil {
		return 0, fmt.Errorf("expense add: %w", err)
	}
	return id, nil
}

// AddRevenue appends a revenue record for an order and returns its id.
func (r *FinanceRepo) AddRevenue(ctx context.Context, orderID int64, amount decimal.Decimal, receivedAt time.Time) (int64, error) {
	var id int64
	err := r.db.GetContext(ctx, &id, r.db.Rebind(`
		INSERT INTO revenue (order_id, amount, received_at)
		VALUES (?, ?, ?)
		RETURNING id`),
		orderID, amount, receivedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("revenue add: %w", err)
	}
	return id, nil
}

// ExpensesBetween returns expenses with spent_at inside [from, to].
func (r *FinanceRepo) ExpensesBetween(ctx context.Context, from, to time.Time) ([]models.Expense, error) {
	var out []models.Expense
	err := r.db.SelectContext(ctx, &out, r.db.Rebind(`
		SELECT id, category, amount, spent_at, description
		FROM expenses
		WHERE spent_at BETWEEN ? AND ?
		ORDER BY spent_at`),
		from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("expenses between: %w", err)
	}
	return out, nil
}

// RevenueBetween returns revenue records with received_at inside [from, to].
func (r *FinanceRepo) RevenueBetween(ctx context.Context, from, to time.Time) ([]models.Revenue, error) {
	var out []models.Revenue
	err := r.db.SelectContext(ctx, &out, r.db.Rebind(`
		SELECT id, order_id, amount, received_at
		FROM revenue
		WHERE received_at BETWEEN ? AND ?
		ORDER BY received_at`),
		from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("revenue between: %w", err)
	}
	return out, nil
}

// ExpensesByCategory returns all expenses in a category, oldest first.
func (r *FinanceRepo) ExpensesByCategory(ctx context.Context, category string) ([]models.Expense, error) {
	var out []models.Expense
	err := r.db.SelectContext(ctx, &out, r.db.Rebind(`
		SELECT id, category, amount, spent_at, description
		FROM expenses
		WHERE category = ?
		ORDER BY spent_at`),
		category,
	)
	if err != nil {
		return nil, fmt.Errorf("expenses by category: %w", err)
	}
	return out, nil
}
