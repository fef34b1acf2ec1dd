// Package models defines the domain entities of the print shop.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status enumerates order lifecycle states.
type Status string

const (
	// StatusPending marks an order that is accepted but not printed yet.
	StatusPending Status = "pending"
	// StatusCompleted marks an order that has been printed.
	StatusCompleted Status = "completed"
)

// Material is a named consumable tracked by quantity (filament weight in grams).
type Material struct {
	ID       int64  `db:"id"`
	Name     string `db:"name"`
	Quantity int64  `db:"quantity"`
}

// Order is a customer print job with its material reservation and cost.
type Order struct {
	ID               int64            `db:"id"`
	Name             string           `db:"name"`
	FileLink         string           `db:"file_link"`
	MaterialName     string           `db:"material_name"`
	MaterialAmount   int64            `db:"material_amount"`
	RecommendedDate  time.Time        `db:"recommended_date"`
	Importance       int              `db:"importance"`
	Settings         string           `db:"settings"`
	Cost             *decimal.Decimal `db:"cost"`
	PaymentConfirmed bool             `db:"payment_confirmed"`
	Status           Status           `db:"status"`
	CreatedAt        time.Time        `db:"created_at"`
}

// Expense is an append-only record of money spent.
type Expense struct {
	ID          int64           `db:"id"`
	Category    string          `db:"category"`
	Amount      decimal.Decimal `db:"amount"`
	SpentAt     time.Time       `db:"spent_at"`
	Description string          `db:"description"`
}

// Revenue is an append-only record of money received for an order.
type Revenue struct {
	ID         int64           `db:"id"`
	OrderID    int64           `db:"order_id"`
	Amount     decimal.Decimal `db:"amount"`
	ReceivedAt time.Time       `db:"received_at"`
}
