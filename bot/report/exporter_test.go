package report

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/binarybrigade/printbot/bot/models"
	"github.com/binarybrigade/printbot/bot/service"
	coreconfig "github.com/binarybrigade/printbot/core/config"
	"github.com/binarybrigade/printbot/core/logger"
)

func TestMain(m *testing.M) {
	if err := logger.InitLogger(&coreconfig.Config{}); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

type fakeOrders struct {
	pending   []models.Order
	completed []models.Order
}

func (f *fakeOrders) ListPending(context.Context) ([]models.Order, error)   { return f.pending, nil }
func (f *fakeOrders) ListCompleted(context.Context) ([]models.Order, error) { return f.completed, nil }

type fakeInventory struct {
	materials []models.Material
}

func (f *fakeInventory) List(context.Context) ([]models.Material, error) { return f.materials, nil }

type fakeFinance struct {
	interval service.Interval
}

func (f *fakeFinance) Between(_ context.Context, from, to time.Time) (service.Interval, error) {
	in := f.interval
	in.From = from
	in.To = to
	return in, nil
}

func TestExportWorkbook(t *testing.T) {
	cost := decimal.NewFromInt(1050)
	due := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)

	orders := &fakeOrders{
		pending: []models.Order{{
			ID: 1, Name: "benchy", FileLink: "https://x", MaterialName: "PLA",
			MaterialAmount: 150, RecommendedDate: due, Importance: 5,
			Settings: "0.2mm", Cost: &cost, Status: models.StatusPending,
		}},
		completed: []models.Order{{
			ID: 2, Name: "vase", MaterialName: "PETG", MaterialAmount: 90,
			RecommendedDate: due, Importance: 3, Status: models.StatusCompleted,
			PaymentConfirmed: true,
		}},
	}
	inventory := &fakeInventory{materials: []models.Material{
		{ID: 1, Name: "PLA", Quantity: 850},
		{ID: 2, Name: "PETG", Quantity: 400},
	}}
	finance := &fakeFinance{interval: service.Interval{
		Expenses: []models.Expense{{
			ID: 1, Category: "filament", Amount: decimal.NewFromInt(1200),
			SpentAt: due, Description: "restock",
		}},
		Revenue: []models.Revenue{{
			ID: 1, OrderID: 2, Amount: decimal.NewFromInt(700), ReceivedAt: due,
		}},
	}}

	dir := t.TempDir()
	exporter := NewExporter(dir, orders, inventory, finance)

	from := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC)
	path, err := exporter.Export(context.Background(), from, to)
	require.NoError(t, err)
	assert.Equal(t, dir, filepath.Dir(path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	sheets := f.GetSheetList()
	assert.ElementsMatch(t, []string{"Pending orders", "Completed orders", "Materials", "Finance"}, sheets)

	name, err := f.GetCellValue("Pending orders", "B2")
	require.NoError(t, err)
	assert.Equal(t, "benchy", name)
	costCell, err := f.GetCellValue("Pending orders", "I2")
	require.NoError(t, err)
	assert.Equal(t, "1050.00", costCell)

	completedName, err := f.GetCellValue("Completed orders", "B2")
	require.NoError(t, err)
	assert.Equal(t, "vase", completedName)

	material, err := f.GetCellValue("Materials", "B2")
	require.NoError(t, err)
	assert.Equal(t, "PLA", material)

	period, err := f.GetCellValue("Finance", "B1")
	require.NoError(t, err)
	assert.Equal(t, "2026-09-01", period)
	expense, err := f.GetCellValue("Finance", "B4")
	require.NoError(t, err)
	assert.Equal(t, "filament", expense)
}

func TestExportCreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "reports")
	exporter := NewExporter(dir, &fakeOrders{}, &fakeInventory{}, &fakeFinance{})

	path, err := exporter.Export(context.Background(), time.Now(), time.Now())
	require.NoError(t, err)
	_, err = os.Stat(path)
	assert.NoError(t, err)
}
