package service

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/binarybrigade/printbot/bot/models"
	"github.com/binarybrigade/printbot/bot/storage"
	coreconfig "github.com/binarybrigade/printbot/core/config"
	"github.com/binarybrigade/printbot/core/logger"
)

func TestMain(m *testing.M) {
	if err := logger.InitLogger(&coreconfig.Config{}); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

// fakeLedger is an in-memory material ledger with the store's semantics.
type fakeLedger struct {
	stock    map[string]int64
	adjusts  []string
	addFails int
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{stock: map[string]int64{}}
}

func (f *fakeLedger) Adjust(_ context.Context, name string, amount int64, dir storage.Direction) (int64, error) {
	switch dir {
	case storage.Add:
		f.adjusts = append(f.adjusts, "add")
		if f.addFails > 0 {
			f.addFails--
			return f.stock[name], errors.New("ledger unavailable")
		}
		f.stock[name] += amount
	case storage.Subtract:
		f.adjusts = append(f.adjusts, "subtract")
		if f.stock[name] < amount {
			return f.stock[name], &storage.InsufficientStockError{
				Material:  name,
				Requested: amount,
				Available: f.stock[name],
			}
		}
		f.stock[name] -= amount
	}
	return f.stock[name], nil
}

func (f *fakeLedger) GetByName(_ context.Context, name string) (models.Material, error) {
	q, ok := f.stock[name]
	if !ok {
		return models.Material{}, storage.ErrNotFound
	}
	return models.Material{Name: name, Quantity: q}, nil
}

func (f *fakeLedger) List(context.Context) ([]models.Material, error) { return nil, nil }

// fakeOrderStore records created orders and can fail on demand.
type fakeOrderStore struct {
	nextID    int64
	created   []storage.CreateParams
	orders    map[int64]models.Order
	createErr error
	statuses  map[int64]bool
}

func newFakeOrderStore() *fakeOrderStore {
	return &fakeOrderStore{orders: map[int64]models.Order{}, statuses: map[int64]bool{}}
}

func (f *fakeOrderStore) Create(_ context.Context, p storage.CreateParams) (int64, error) {
	if f.createErr != nil {
		return 0, f.createErr
	}
	f.nextID++
	f.created = append(f.created, p)
	o := models.Order{
		ID: f.nextID, Name: p.Name, MaterialName: p.MaterialName,
		MaterialAmount: p.MaterialAmount, Cost: p.Cost, Status: models.StatusPending,
	}
	f.orders[f.nextID] = o
	return f.nextID, nil
}

func (f *fakeOrderStore) GetByID(_ context.Context, id int64) (models.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return models.Order{}, storage.ErrNotFound
	}
	return o, nil
}

func (f *fakeOrderStore) GetByName(_ context.Context, name string) (models.Order, error) {
	var best models.Order
	found := false
	for _, o := range f.orders {
		if o.Name == name && (!found || o.ID < best.ID) {
			best = o
			found = true
		}
	}
	if !found {
		return models.Order{}, storage.ErrNotFound
	}
	return best, nil
}

func (f *fakeOrderStore) Delete(_ context.Context, id int64) error {
	if _, ok := f.orders[id]; !ok {
		return storage.ErrNotFound
	}
	delete(f.orders, id)
	return nil
}

func (f *fakeOrderStore) SetStatus(_ context.Context, id int64, completed bool) error {
	o, ok := f.orders[id]
	if !ok {
		return storage.ErrNotFound
	}
	if completed {
		o.Status = models.StatusCompleted
	} else {
		o.Status = models.StatusPending
	}
	f.orders[id] = o
	f.statuses[id] = completed
	return nil
}

func (f *fakeOrderStore) ListPending(context.Context) ([]models.Order, error)   { return nil, nil }
func (f *fakeOrderStore) ListCompleted(context.Context) ([]models.Order, error) { return nil, nil }

func (f *fakeOrderStore) SweepExpired(_ context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

type fakeRevenue struct {
	records []int64
	amounts []decimal.Decimal
}

func (f *fakeRevenue) AddRevenue(_ context.Context, orderID int64, amount decimal.Decimal, _ time.Time) (int64, error) {
	f.records = append(f.records, orderID)
	f.amounts = append(f.amounts, amount)
	return int64(len(f.records)), nil
}

func placedOrder(cost int64) models.Order {
	c := decimal.NewFromInt(cost)
	return models.Order{
		Name:            "benchy",
		FileLink:        "https://files.example/benchy",
		MaterialName:    "PLA",
		MaterialAmount:  150,
		RecommendedDate: time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC),
		Importance:      5,
		Cost:            &c,
		Status:          models.StatusPending,
	}
}

func TestPlaceOrderReservesThenCreates(t *testing.T) {
	ledger := newFakeLedger()
	ledger.stock["PLA"] = 200
	store := newFakeOrderStore()
	svc := NewOrders(store, NewInventory(ledger), &fakeRevenue{})

	id, err := svc.PlaceOrder(context.Background(), placedOrder(700))
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)
	assert.Equal(t, int64(50), ledger.stock["PLA"])
	require.Len(t, store.created, 1)
	assert.Equal(t, "PLA", store.created[0].MaterialName)
}

func TestPlaceOrderInsufficientStock(t *testing.T) {
	ledger := newFakeLedger()
	ledger.stock["PLA"] = 100
	store := newFakeOrderStore()
	svc := NewOrders(store, NewInventory(ledger), &fakeRevenue{})

	_, err := svc.PlaceOrder(context.Background(), placedOrder(700))
	require.Error(t, err)
	assert.ErrorIs(t, err, storage.ErrInsufficientStock)
	assert.Empty(t, store.created)
	assert.Equal(t, int64(100), ledger.stock["PLA"])
}

func TestPlaceOrderCompensatesOnCreateFailure(t *testing.T) {
	ledger := newFakeLedger()
	ledger.stock["PLA"] = 200
	store := newFakeOrderStore()
	store.createErr = errors.New("disk full")
	svc := NewOrders(store, NewInventory(ledger), &fakeRevenue{})

	_, err := svc.PlaceOrder(context.Background(), placedOrder(700))
	require.Error(t, err)
	// The subtracted material must be back in stock.
	assert.Equal(t, int64(200), ledger.stock["PLA"])
	assert.Equal(t, []string{"subtract", "add"}, ledger.adjusts)
}

func TestPlaceOrderCompensationRetries(t *testing.T) {
	ledger := newFakeLedger()
	ledger.stock["PLA"] = 200
	ledger.addFails = 2
	store := newFakeOrderStore()
	store.createErr = errors.New("disk full")
	svc := NewOrders(store, NewInventory(ledger), &fakeRevenue{})

	_, err := svc.PlaceOrder(context.Background(), placedOrder(700))
	require.Error(t, err)
	// Two failed adds, then the third succeeds.
	assert.Equal(t, []string{"subtract", "add", "add", "add"}, ledger.adjusts)
	assert.Equal(t, int64(200), ledger.stock["PLA"])
}

func TestGetByIDOrName(t *testing.T) {
	ledger := newFakeLedger()
	ledger.stock["PLA"] = 1000
	store := newFakeOrderStore()
	svc := NewOrders(store, NewInventory(ledger), &fakeRevenue{})

	id, err := svc.PlaceOrder(context.Background(), placedOrder(700))
	require.NoError(t, err)

	byID, err := svc.Get(context.Background(), " 1 ")
	require.NoError(t, err)
	assert.Equal(t, id, byID.ID)

	byName, err := svc.Get(context.Background(), "benchy")
	require.NoError(t, err)
	assert.Equal(t, id, byName.ID)

	// "12abc" is not a valid id, so it falls through to name lookup.
	_, err = svc.Get(context.Background(), "12abc")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestCompleteRecordsRevenue(t *testing.T) {
	ledger := newFakeLedger()
	ledger.stock["PLA"] = 1000
	store := newFakeOrderStore()
	revenue := &fakeRevenue{}
	svc := NewOrders(store, NewInventory(ledger), revenue)

	id, err := svc.PlaceOrder(context.Background(), placedOrder(700))
	require.NoError(t, err)

	require.NoError(t, svc.Complete(context.Background(), id))
	require.Len(t, revenue.records, 1)
	assert.Equal(t, id, revenue.records[0])
	assert.True(t, revenue.amounts[0].Equal(decimal.NewFromInt(700)))
}

func TestCompleteAlreadyCompletedIsNoOp(t *testing.T) {
	ledger := newFakeLedger()
	ledger.stock["PLA"] = 1000
	store := newFakeOrderStore()
	revenue := &fakeRevenue{}
	svc := NewOrders(store, NewInventory(ledger), revenue)

	id, err := svc.PlaceOrder(context.Background(), placedOrder(700))
	require.NoError(t, err)

	require.NoError(t, svc.Complete(context.Background(), id))
	require.NoError(t, svc.Complete(context.Background(), id))

	// The second call must not book the cost again.
	require.Len(t, revenue.records, 1)
	assert.Equal(t, models.StatusCompleted, store.orders[id].Status)
}

func TestCompleteWithoutCostSkipsRevenue(t *testing.T) {
	ledger := newFakeLedger()
	ledger.stock["PLA"] = 1000
	store := newFakeOrderStore()
	revenue := &fakeRevenue{}
	svc := NewOrders(store, NewInventory(ledger), revenue)

	o := placedOrder(0)
	o.Cost = nil
	id, err := svc.PlaceOrder(context.Background(), o)
	require.NoError(t, err)

	require.NoError(t, svc.Complete(context.Background(), id))
	assert.Empty(t, revenue.records)
}

func TestSweepExpiredCutoff(t *testing.T) {
	ledger := newFakeLedger()
	store := newFakeOrderStore()
	svc := NewOrders(store, NewInventory(ledger), &fakeRevenue{})
	fixed := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	var gotCutoff time.Time
	swept := &cutoffStore{fakeOrderStore: store, cutoff: &gotCutoff}
	svc.store = swept

	_, err := svc.SweepExpired(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, fixed.AddDate(0, 0, -10), gotCutoff)
}

type cutoffStore struct {
	*fakeOrderStore
	cutoff *time.Time
}

func (c *cutoffStore) SweepExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	*c.cutoff = cutoff
	return c.fakeOrderStore.SweepExpired(ctx, cutoff)
}
