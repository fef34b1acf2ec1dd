// Package service contains the application services between the Telegram
// handlers and the storage layer. Services accept narrow store interfaces so
// tests can substitute fakes.
package service

import (
	"context"
	"time"

	"github.com/binarybrigade/printbot/bot/models"
	"github.com/binarybrigade/printbot/bot/storage"
	"github.com/binarybrigade/printbot/core/logger"
	"log/slog"
)

type materialLedger interface {
	Adjust(ctx context.Context, name string, amount int64, dir storage.Direction) (int64, error)
	GetByName(ctx context.Context, name string) (models.Material, error)
	List(ctx context.Context) ([]models.Material, error)
}

// Inventory is the inventory ledger service.
type Inventory struct {
	materials materialLedger
}

// NewInventory wires the inventory service to its ledger store.
func NewInventory(materials materialLedger) *Inventory {
	return &Inventory{materials: materials}
}

// Add increases the stock of a material, creating it on first reference.
func (s *Inventory) Add(ctx context.Context, name string, amount int64) (int64, error) {
	start := time.Now()
	quantity, err := s.materials.Adjust(ctx, name, amount, storage.Add)
	logger.SVCInventory.Log(ctx, levelFor(err), "stock added",
		slog.String("event", "inventory.add"),
		slog.String("status", logger.Status(err)),
		slog.String("material", name),
		slog.Int64("amount", amount),
		slog.Int64("quantity", quantity),
		slog.Duration("duration", logger.Took(start)),
	)
	return quantity, err
}

// Subtract decreases the stock of a material. On shortfall it returns a
// *storage.InsufficientStockError and leaves the quantity unchanged.
func (s *Inventory) Subtract(ctx context.Context, name string, amount int64) (int64, error) {
	start := time.Now()
	quantity, err := s.materials.Adjust(ctx, name, amount, storage.Subtract)
	logger.SVCInventory.Log(ctx, levelFor(err), "stock subtracted",
		slog.String("event", "inventory.subtract"),
		slog.String("status", logger.Status(err)),
		slog.String("material", name),
		slog.Int64("amount", amount),
		slog.Int64("quantity", quantity),
		slog.Duration("duration", logger.Took(start)),
	)
	return quantity, err
}

// Get returns a single material by name.
func (s *Inventory) Get(ctx context.Context, name string) (models.Material, error) {
	return s.materials.GetByName(ctx, name)
}

// List returns all tracked materials.
func (s *Inventory) List(ctx context.Context) ([]models.Material, error) {
	return s.materials.List(ctx)
}
