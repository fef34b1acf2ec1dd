package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/binarybrigade/printbot/bot/models"
	"github.com/binarybrigade/printbot/core/logger"
	"log/slog"
)

// OrderRepo owns order records and their status.
type OrderRepo struct {
	db *sqlx.DB
}

// NewOrderRepo binds the repository to a database handle.
func NewOrderRepo(db *sqlx.DB) *OrderRepo {
	return &OrderRepo{db: db}
}

// orderRow is the scan shape; cost is nullable until an order is priced.
type orderRow struct {
	ID               int64               `db:"id"`
	Name             string              `db:"name"`
	FileLink         string              `db:"file_link"`
	MaterialName     string              `db:"material_name"`
	MaterialAmount   int64               `db:"material_amount"`
	RecommendedDate  time.Time           `db:"recommended_date"`
	Importance       int                 `db:"importance"`
	Settings         string              `db:"settings"`
	Cost             decimal.NullDecimal `db:"cost"`
	PaymentConfirmed bool                `db:"payment_confirmed"`
	Status           models.Status       `db:"status"`
	CreatedAt        time.Time           `db:"created_at"`
}

func (r orderRow) toModel() models.Order {
	o := models.Order{
		ID:               r.ID,
		Name:             r.Name,
		FileLink:         r.FileLink,
		MaterialName:     r.MaterialName,
		MaterialAmount:   r.MaterialAmount,
		RecommendedDate:  r.RecommendedDate,
		Importance:       r.Importance,
		Settings:         r.Settings,
		PaymentConfirmed: r.PaymentConfirmed,
		Status:           r.Status,
		CreatedAt:        r.CreatedAt,
	}
	if r.Cost.Valid {
		c := r.Cost.Decimal
		o.Cost = &c
	}
	return o
}

const orderColumns = `id, name, file_link, material_name, material_amount,
	recommended_date, importance, settings, cost, payment_confirmed, status, created_at`

// CreateParams carries the fields of a new order.
type CreateParams struct {
	Name             string
	FileLink         string
	MaterialName     string
	MaterialAmount   int64
	RecommendedDate  time.Time
	Importance       int
	Settings         string
	Cost             *decimal.Decimal
	PaymentConfirmed bool
	Done             bool
	CreatedAt        time.Time
}

// Create inserts an order and returns the assigned id. Status is pending
// unless Done is set.
func (r *OrderRepo) Create(ctx context.Context, p CreateParams) (int64, error) {
	status := models.StatusPending
	if p.Done {
		status = models.StatusCompleted
	}
	createdAt := p.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	var cost decimal.NullDecimal
	if p.Cost != nil {
		cost = decimal.NewNullDecimal(*p.Cost)
	}

	var id int64
	err := r.db.GetContext(ctx, &id, r.db.Rebind(`
		INSERT INTO orders
			(name, file_link, material_name, material_amount, recommended_date,
			 importance, settings, cost, payment_confirmed, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`),
		p.Name, p.FileLink, p.MaterialName, p.MaterialAmount, p.RecommendedDate,
		p.Importance, p.Settings, cost, p.PaymentConfirmed, status, createdAt,
	)
	if err != nil {
		return 0, fmt.Errorf("order create: %w", err)
	}

	logger.DB.Debug("order created",
		slog.String("event", "db.orders.create"),
		slog.Int64("order_id", id),
		slog.String("material", p.MaterialName),
		slog.Int64("amount", p.MaterialAmount),
	)
	return id, nil
}

// GetByID returns an order or ErrNotFound.
func (r *OrderRepo) GetByID(ctx context.Context, id int64) (models.Order, error) {
	var row orderRow
	err := r.db.GetContext(ctx, &row,
		r.db.Rebind(`SELECT `+orderColumns+` FROM orders WHERE id = ?`), id,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Order{}, ErrNotFound
	}
	if err != nil {
		return models.Order{}, fmt.Errorf("order get: %w", err)
	}
	return row.toModel(), nil
}

// GetByName returns the first order with an exactly matching name.
// Order names are not unique; when several match, the lowest id wins.
func (r *OrderRepo) GetByName(ctx context.Context, name string) (models.Order, error) {
	var row orderRow
	err := r.db.GetContext(ctx, &row,
		r.db.Rebind(`SELECT `+orderColumns+` FROM orders WHERE name = ? ORDER BY id LIMIT 1`), name,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Order{}, ErrNotFound
	}
	if err != nil {
		return models.Order{}, fmt.Errorf("order get by name: %w", err)
	}
	return row.toModel(), nil
}

// Delete removes an order by id; ErrNotFound when nothing was deleted.
func (r *OrderRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM orders WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("order delete: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("order delete rows: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetStatus flips an order between pending and completed.
func (r *OrderRepo) SetStatus(ctx context.Context, id int64, completed bool) error {
	status := models.StatusPending
	if completed {
		status = models.StatusCompleted
	}
	res, err := r.db.ExecContext(ctx,
		r.db.Rebind(`UPDATE orders SET status = ? WHERE id = ?`), status, id,
	)
	if err != nil {
		return fmt.Errorf("order set status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("order set status rows: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListPending returns pending orders sorted by recommended date ascending,
// ties broken by descending importance.
func (r *OrderRepo) ListPending(ctx context.Context) ([]models.Order, error) {
	return r.listByStatus(ctx, models.StatusPending)
}

// ListCompleted returns completed orders in the same ordering as ListPending.
func (r *OrderRepo) ListCompleted(ctx context.Context) ([]models.Order, error) {
	return r.listByStatus(ctx, models.StatusCompleted)
}

func (r *OrderRepo) listByStatus(ctx context.Context, status models.Status) ([]models.Order, error) {
	var rows []orderRow
	err := r.db.SelectContext(ctx, &rows, r.db.Rebind(`
		SELECT `+orderColumns+` FROM orders
		WHERE status = ?
		ORDER BY recommended_date ASC, importance DESC`), status,
	)
	if err != nil {
		return nil, fmt.Errorf("order list: %w", err)
	}
	out := make([]models.Order, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toModel())
	}
	return out, nil
}

// SweepExpired deletes unpaid orders created at or before the cutoff and
// returns the number of rows removed. Safe to call repeatedly.
func (r *OrderRepo) SweepExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`
		DELETE FROM orders WHERE created_at <= ? AND payment_confirmed = ?`),
		cutoff, false,
	)
	if err != nil {
		return 0, fmt.Errorf("order sweep: %w", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("order sweep rows: %w", err)
	}
	return deleted, nil
}
