package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/binarybrigade/printbot/bot/models"
	"github.com/binarybrigade/printbot/bot/storage"
	"github.com/binarybrigade/printbot/core/logger"
	"log/slog"
)

const compensationAttempts = 3

type orderStore interface {
	Create(ctx context.Context, p storage.CreateParams) (int64, error)
	GetByID(ctx context.Context, id int64) (models.Order, error)
	GetByName(ctx context.Context, name string) (models.Order, error)
	Delete(ctx context.Context, id int64) error
	SetStatus(ctx context.Context, id int64, completed bool) error
	ListPending(ctx context.Context) ([]models.Order, error)
	ListCompleted(ctx context.Context) ([]models.Order, error)
	SweepExpired(ctx context.Context, cutoff time.Time) (int64, error)
}

type revenueLedger interface {
	AddRevenue(ctx context.Context, orderID int64, amount decimal.Decimal, receivedAt time.Time) (int64, error)
}

// Orders coordinates the order store, the inventory ledger, and the revenue
// ledger. Its PlaceOrder method is the single logical unit behind intake
// finalization.
type Orders struct {
	store     orderStore
	inventory *Inventory
	revenue   revenueLedger
	now       func() time.Time
}

// NewOrders wires the order service.
func NewOrders(store orderStore, inventory *Inventory, revenue revenueLedger) *Orders {
	return &Orders{
		store:     store,
		inventory: inventory,
		revenue:   revenue,
		now:       time.Now,
	}
}

// PlaceOrder reserves the order's material and persists the order, in that
// sequence. When the reservation fails with insufficient stock, nothing is
// created. When the reservation succeeds but the insert fails, the already
// subtracted material is re-added with a small bounded number of attempts;
// a compensation failure leaves the ledger debited without an order and is
// logged with every detail needed for manual reconciliation.
func (s *Orders) PlaceOrder(ctx context.Context, o models.Order) (int64, error) {
	if _, err := s.inventory.Subtract(ctx, o.MaterialName, o.MaterialAmount); err != nil {
		return 0, err
	}

	id, createErr := s.store.Create(ctx, storage.CreateParams{
		Name:             o.Name,
		FileLink:         o.FileLink,
		MaterialName:     o.MaterialName,
		MaterialAmount:   o.MaterialAmount,
		RecommendedDate:  o.RecommendedDate,
		Importance:       o.Importance,
		Settings:         o.Settings,
		Cost:             o.Cost,
		PaymentConfirmed: o.PaymentConfirmed,
		Done:             o.Status == models.StatusCompleted,
		CreatedAt:        s.now().UTC(),
	})
	if createErr == nil {
		logger.SVCOrders.Info("order placed",
			slog.String("event", "orders.place"),
			slog.String("status", "ok"),
			slog.Int64("order_id", id),
			slog.String("material", o.MaterialName),
			slog.Int64("amount", o.MaterialAmount),
		)
		return id, nil
	}

	var compErr error
	for attempt := 1; attempt <= compensationAttempts; attempt++ {
		if _, compErr = s.inventory.Add(ctx, o.MaterialName, o.MaterialAmount); compErr == nil {
			break
		}
	}
	if compErr != nil {
		// Fatal-but-recorded: the ledger is debited with no matching order.
		logger.SVCOrders.Error("inventory compensation failed",
			slog.String("event", "orders.place.compensate"),
			slog.String("status", "fail"),
			slog.String("material", o.MaterialName),
			slog.Int64("amount", o.MaterialAmount),
			slog.String("order_name", o.Name),
			slog.String("file_link", o.FileLink),
			slog.String("err", compErr.Error()),
			slog.String("cause", createErr.Error()),
		)
	} else {
		logger.SVCOrders.Warn("order create failed, inventory restored",
			slog.String("event", "orders.place.compensate"),
			slog.String("status", "ok"),
			slog.String("material", o.MaterialName),
			slog.Int64("amount", o.MaterialAmount),
			slog.String("err", createErr.Error()),
		)
	}
	return 0, fmt.Errorf("place order: %w", createErr)
}

// Get resolves an order by numeric id or by exact name.
func (s *Orders) Get(ctx context.Context, idOrName string) (models.Order, error) {
	if id, err := parseID(idOrName); err == nil {
		return s.store.GetByID(ctx, id)
	}
	return s.store.GetByName(ctx, idOrName)
}

// GetByID returns an order by id.
func (s *Orders) GetByID(ctx context.Context, id int64) (models.Order, error) {
	return s.store.GetByID(ctx, id)
}

// Delete removes an order.
func (s *Orders) Delete(ctx context.Context, id int64) error {
	err := s.store.Delete(ctx, id)
	logger.SVCOrders.Log(ctx, levelFor(err), "order deleted",
		slog.String("event", "orders.delete"),
		slog.String("status", logger.Status(err)),
		slog.Int64("order_id", id),
	)
	return err
}

// Complete marks an order as printed and records a revenue entry for its
// cost, when the order has been priced. Completing an already-completed
// order is a no-op so a stale button press cannot double-book revenue.
func (s *Orders) Complete(ctx context.Context, id int64) error {
	order, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if order.Status == models.StatusCompleted {
		logger.SVCOrders.Debug("order already completed",
			slog.String("event", "orders.complete"),
			slog.String("status", "skip"),
			slog.Int64("order_id", id),
		)
		return nil
	}
	if err := s.store.SetStatus(ctx, id, true); err != nil {
		return err
	}
	if order.Cost != nil {
		if _, err := s.revenue.AddRevenue(ctx, id, *order.Cost, s.now().UTC()); err != nil {
			return fmt.Errorf("record revenue for order %d: %w", id, err)
		}
	}
	logger.SVCOrders.Info("order completed",
		slog.String("event", "orders.complete"),
		slog.String("status", "ok"),
		slog.Int64("order_id", id),
	)
	return nil
}

// Reopen returns a completed order to the pending queue.
func (s *Orders) Reopen(ctx context.Context, id int64) error {
	return s.store.SetStatus(ctx, id, false)
}

// ListPending returns the print queue: recommended date ascending, then
// importance descending.
func (s *Orders) ListPending(ctx context.Context) ([]models.Order, error) {
	return s.store.ListPending(ctx)
}

// ListCompleted returns finished orders.
func (s *Orders) ListCompleted(ctx context.Context) ([]models.Order, error) {
	return s.store.ListCompleted(ctx)
}

// SweepExpired deletes unpaid orders older than maxAgeDays and returns the
// count. Invoked periodically by the maintenance job; idempotent.
func (s *Orders) SweepExpired(ctx context.Context, maxAgeDays int) (int64, error) {
	cutoff := s.now().UTC().AddDate(0, 0, -maxAgeDays)
	deleted, err := s.store.SweepExpired(ctx, cutoff)
	logger.SVCOrders.Log(ctx, levelFor(err), "unpaid orders swept",
		slog.String("event", "orders.sweep"),
		slog.String("status", logger.Status(err)),
		slog.Int64("count", deleted),
		slog.Time("cutoff", cutoff),
	)
	return deleted, err
}

func parseID(s string) (int64, error) {
	return strconv.ParseInt(strings.TrimSpace(s), 10, 64)
}
