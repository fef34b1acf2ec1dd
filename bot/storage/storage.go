// Package storage implements the persistence layer for materials, orders,
// and the finance ledgers on top of sqlx. All repositories share one
// *sqlx.DB and work with either the postgres or the embedded sqlite driver.
package storage

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound reports that the requested row does not exist.
	ErrNotFound = errors.New("storage: not found")
	// ErrInsufficientStock reports that a subtraction would take a
	// material quantity below zero. No mutation happens in that case.
	ErrInsufficientStock = errors.New("storage: insufficient stock")
)

// Direction selects how Adjust mutates a material quantity.
type Direction int

const (
	// Add increases the quantity, creating the material when absent.
	Add Direction = iota
	// Subtract decreases the quantity, failing on shortfall.
	Subtract
)

// InsufficientStockError carries the shortfall details for user-facing messages.
type InsufficientStockError struct {
	Material  string
	Requested int64
	Available int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("storage: insufficient stock of %q: requested %d, available %d",
		e.Material, e.Requested, e.Available)
}

// Is makes errors.Is(err, ErrInsufficientStock) match.
func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}
