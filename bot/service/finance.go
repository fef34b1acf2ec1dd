package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/binarybrigade/printbot/bot/models"
	"github.com/binarybrigade/printbot/core/logger"
	"log/slog"
)

type financeLedger interface {
	AddExpense(ctx context.Context, category string, amount decimal.Decimal, spentAt time.Time, description string) (int64, error)
	AddRevenue(ctx context.Context, orderID int64, amount decimal.Decimal, receivedAt time.Time) (int64, error)
	ExpensesBetween(ctx context.Context, from, to time.Time) ([]models.Expense, error)
	RevenueBetween(ctx context.Context, from, to time.Time) ([]models.Revenue, error)
	ExpensesByCategory(ctx context.Context, category string) ([]models.Expense, error)
}

// Finance owns the append-only expense and revenue ledgers.
type Finance struct {
	ledger financeLedger
	now    func() time.Time
}

// NewFinance wires the finance service.
func NewFinance(ledger financeLedger) *Finance {
	return &Finance{ledger: ledger, now: time.Now}
}

// AddExpense appends an expense dated now.
func (s *Finance) AddExpense(ctx context.Context, category string, amount decimal.Decimal, description string) (int64, error) {
	id, err := s.ledger.AddExpense(ctx, category, amount, s.now().UTC(), description)
	logger.SVCFinance.Log(ctx, levelFor(err), "expense recorded",
		slog.String("event", "finance.expense"),
		slog.String("status", logger.Status(err)),
		slog.String("category", category),
		slog.String("amount", amount.String()),
	)
	return id, err
}

// AddRevenue appends a revenue record for an order dated now.
func (s *Finance) AddRevenue(ctx context.Context, orderID int64, amount decimal.Decimal) (int64, error) {
	id, err := s.ledger.AddRevenue(ctx, orderID, amount, s.now().UTC())
	logger.SVCFinance.Log(ctx, levelFor(err), "revenue recorded",
		slog.String("event", "finance.revenue"),
		slog.String("status", logger.Status(err)),
		slog.Int64("order_id", orderID),
		slog.String("amount", amount.String()),
	)
	return id, err
}

// Interval is a bundle of expenses and revenue over a date range.
type Interval struct {
	From     time.Time
	To       time.Time
	Expenses []models.Expense
	Revenue  []models.Revenue
}

// Between collects both ledgers for [from, to].
func (s *Finance) Between(ctx context.Context, from, to time.Time) (Interval, error) {
	expenses, err := s.ledger.ExpensesBetween(ctx, from, to)
	if err != nil {
		return Interval{}, err
	}
	revenue, err := s.ledger.RevenueBetween(ctx, from, to)
	if err != nil {
		return Interval{}, err
	}
	return Interval{From: from, To: to, Expenses: expenses, Revenue: revenue}, nil
}

// LastMonth returns both ledgers for the previous calendar month.
func (s *Finance) LastMonth(ctx context.Context) (Interval, error) {
	from, to := lastMonthRange(s.now())
	return s.Between(ctx, from, to)
}

// ExpensesByCategory lists all expenses within one category.
func (s *Finance) ExpensesByCategory(ctx context.Context, category string) ([]models.Expense, error) {
	return s.ledger.ExpensesByCategory(ctx, category)
}

func lastMonthRange(now time.Time) (time.Time, time.Time) {
	firstOfThis := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	lastOfPrev := firstOfThis.Add(-time.Second)
	firstOfPrev := time.Date(lastOfPrev.Year(), lastOfPrev.Month(), 1, 0, 0, 0, 0, time.UTC)
	return firstOfPrev, lastOfPrev
}
