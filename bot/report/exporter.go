// Package report writes workshop snapshots to spreadsheet files.
package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/binarybrigade/printbot/bot/models"
	"github.com/binarybrigade/printbot/bot/service"
	"github.com/binarybrigade/printbot/core/logger"
	"log/slog"
)

const dateFormat = "2006-01-02"

type orderLister interface {
	ListPending(ctx context.Context) ([]models.Order, error)
	ListCompleted(ctx context.Context) ([]models.Order, error)
}

type materialLister interface {
	List(ctx context.Context) ([]models.Material, error)
}

type financeReader interface {
	Between(ctx context.Context, from, to time.Time) (service.Interval, error)
}

// Exporter renders orders, stock and finance into a single workbook.
type Exporter struct {
	dir       string
	orders    orderLister
	inventory materialLister
	finance   financeReader
}

// NewExporter writes workbooks into dir, creating it on demand.
func NewExporter(dir string, orders orderLister, inventory materialLister, finance financeReader) *Exporter {
	return &Exporter{dir: dir, orders: orders, inventory: inventory, finance: finance}
}

// Export builds a workbook covering the finance interval [from, to] plus the
// full current order book and stock levels, and returns the file path.
func (e *Exporter) Export(ctx context.Context, from, to time.Time) (string, error) {
	start := time.Now()

	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", fmt.Errorf("report: create dir: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	pending, err := e.orders.ListPending(ctx)
	if err != nil {
		return "", fmt.Errorf("report: list pending orders: %w", err)
	}
	completed, err := e.orders.ListCompleted(ctx)
	if err != nil {
		return "", fmt.Errorf("report: list completed orders: %w", err)
	}
	materials, err := e.inventory.List(ctx)
	if err != nil {
		return "", fmt.Errorf("report: list materials: %w", err)
	}
	interval, err := e.finance.Between(ctx, from, to)
	if err != nil {
		return "", fmt.Errorf("report: load finance interval: %w", err)
	}

	if err := writeOrdersSheet(f, "Pending orders", pending); err != nil {
		return "", err
	}
	if err := writeOrdersSheet(f, "Completed orders", completed); err != nil {
		return "", err
	}
	if err := writeMaterialsSheet(f, materials); err != nil {
		return "", err
	}
	if err := writeFinanceSheet(f, interval); err != nil {
		return "", err
	}

	// The default sheet only exists because excelize requires one.
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return "", fmt.Errorf("report: drop default sheet: %w", err)
	}

	path := filepath.Join(e.dir, fmt.Sprintf("report_%s.xlsx", time.Now().UTC().Format("20060102_150405")))
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("report: save workbook: %w", err)
	}

	logger.RPT.Info("report exported",
		slog.String("event", "report.export"),
		slog.String("status", "ok"),
		slog.String("path", path),
		slog.Int("orders_total", len(pending)+len(completed)),
		slog.Duration("duration", logger.RoundMS(time.Since(start))),
	)
	return path, nil
}

func writeOrdersSheet(f *excelize.File, name string, orders []models.Order) error {
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("report: create sheet %s: %w", name, err)
	}
	header := []any{"ID", "Name", "File", "Material", "Amount (g)", "Due date", "Importance", "Settings", "Cost", "Paid", "Status"}
	if err := f.SetSheetRow(name, "A1", &header); err != nil {
		return fmt.Errorf("report: write header: %w", err)
	}
	for i, o := range orders {
		cost := ""
		if o.Cost != nil {
			cost = o.Cost.StringFixed(2)
		}
		row := []any{
			o.ID, o.Name, o.FileLink, o.MaterialName, o.MaterialAmount,
			o.RecommendedDate.Format(dateFormat), o.Importance, o.Settings,
			cost, o.PaymentConfirmed, string(o.Status),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("report: cell name: %w", err)
		}
		if err := f.SetSheetRow(name, cell, &row); err != nil {
			return fmt.Errorf("report: write row: %w", err)
		}
	}
	return nil
}

func writeMaterialsSheet(f *excelize.File, materials []models.Material) error {
	const name = "Materials"
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("report: create sheet %s: %w", name, err)
	}
	header := []any{"ID", "Name", "Quantity (g)"}
	if err := f.SetSheetRow(name, "A1", &header); err != nil {
		return fmt.Errorf("report: write header: %w", err)
	}
	for i, m := range materials {
		row := []any{m.ID, m.Name, m.Quantity}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("report: cell name: %w", err)
		}
		if err := f.SetSheetRow(name, cell, &row); err != nil {
			return fmt.Errorf("report: write row: %w", err)
		}
	}
	return nil
}

func writeFinanceSheet(f *excelize.File, interval service.Interval) error {
	const name = "Finance"
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("report: create sheet %s: %w", name, err)
	}
	period := []any{"Period", interval.From.Format(dateFormat), interval.To.Format(dateFormat)}
	if err := f.SetSheetRow(name, "A1", &period); err != nil {
		return fmt.Errorf("report: write period: %w", err)
	}

	row := 3
	header := []any{"Expense ID", "Category", "Amount", "Description", "Date"}
	cell, _ := excelize.CoordinatesToCellName(1, row)
	if err := f.SetSheetRow(name, cell, &header); err != nil {
		return fmt.Errorf("report: write header: %w", err)
	}
	for _, ex := range interval.Expenses {
		row++
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return fmt.Errorf("report: cell name: %w", err)
		}
		line := []any{ex.ID, ex.Category, ex.Amount.StringFixed(2), ex.Description, ex.SpentAt.Format(dateFormat)}
		if err := f.SetSheetRow(name, cell, &line); err != nil {
			return fmt.Errorf("report: write row: %w", err)
		}
	}

	row += 2
	header = []any{"Revenue ID", "Order ID", "Amount", "Date"}
	cell, _ = excelize.CoordinatesToCellName(1, row)
	if err := f.SetSheetRow(name, cell, &header); err != nil {
		return fmt.Errorf("report: write header: %w", err)
	}
	for _, rv := range interval.Revenue {
		row++
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return fmt.Errorf("report: cell name: %w", err)
		}
		line := []any{rv.ID, rv.OrderID, rv.Amount.StringFixed(2), rv.ReceivedAt.Format(dateFormat)}
		if err := f.SetSheetRow(name, cell, &line); err != nil {
			return fmt.Errorf("report: write row: %w", err)
		}
	}
	return nil
}
