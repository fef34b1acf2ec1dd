// Package app assembles the print shop bot: storage, services, the intake
// machine, the Telegram surface and the background sweep job.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/binarybrigade/printbot/bot/config"
	"github.com/binarybrigade/printbot/bot/handlers"
	"github.com/binarybrigade/printbot/bot/intake"
	"github.com/binarybrigade/printbot/bot/payment"
	"github.com/binarybrigade/printbot/bot/report"
	"github.com/binarybrigade/printbot/bot/service"
	"github.com/binarybrigade/printbot/bot/storage"
	"github.com/binarybrigade/printbot/core/bootstrap"
	corecmd "github.com/binarybrigade/printbot/core/cmd"
	"github.com/binarybrigade/printbot/core/logger"
	coretelegram "github.com/binarybrigade/printbot/core/telegram"
	"github.com/binarybrigade/printbot/core/telegram/router"
	"github.com/binarybrigade/printbot/core/telegram/state"
	"log/slog"
)

// App holds the assembled application.
type App struct {
	cfg      *config.Config
	infra    *bootstrap.Result
	handlers *handlers.Handlers
	orders   *service.Orders

	sweepStop chan struct{}
	sweepDone chan struct{}
}

// LoadConfig adapts config.Load to the shared runner contract.
func LoadConfig(path string) (corecmd.ConfigCarrier, error) {
	return config.Load(path)
}

// Bootstrap initializes infrastructure and wires the domain graph.
func Bootstrap(carrier corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
	cfg, ok := carrier.(*config.Config)
	if !ok {
		return nil, fmt.Errorf("app: unexpected config type %T", carrier)
	}

	infra, err := bootstrap.Run(bootstrap.Options{
		Config:   cfg.CoreConfig(),
		Database: cfg.Database,
	})
	if err != nil {
		return nil, err
	}

	materials := storage.NewMaterialRepo(infra.DB)
	orders := storage.NewOrderRepo(infra.DB)
	finance := storage.NewFinanceRepo(infra.DB)

	inventorySvc := service.NewInventory(materials)
	ordersSvc := service.NewOrders(orders, inventorySvc, finance)
	financeSvc := service.NewFinance(finance)

	machine := intake.NewMachine(ordersSvc, cfg.Pricing.UnitRate)

	payments := payment.NewClient(payment.Config{
		ShopID:    cfg.Payment.ShopID,
		SecretKey: cfg.Payment.SecretKey,
		APIURL:    cfg.Payment.APIURL,
		ReturnURL: cfg.Payment.ReturnURL,
		Currency:  cfg.Payment.Currency,
	}, nil)

	exporter := report.NewExporter(cfg.Reports.Dir, ordersSvc, inventorySvc, financeSvc)

	h := handlers.New(inventorySvc, ordersSvc, financeSvc, machine, payments, exporter, state.NewMemoryManager())

	return &App{
		cfg:      cfg,
		infra:    infra,
		handlers: h,
		orders:   ordersSvc,
	}, nil
}

// TelegramRunOptions builds the routes, middlewares and lifecycle hooks.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	reg := coretelegram.NewRegistry()
	a.handlers.Register(reg)

	core := a.cfg.CoreConfig()
	dialogs := a.handlers.Dialogs()

	routes := router.CommandRoutes(reg, router.CommandRouteOptions{
		AdminID: core.Telegram.AdminID,
	})
	routes = append(routes, router.CallbackRoute(reg, router.CallbackOptions{}))
	routes = append(routes, router.TextRoutes(dialogs, reg, router.TextOptions{})...)

	return coretelegram.RunOptions{
		Config:      core,
		Registry:    reg,
		Middlewares: coretelegram.DefaultMiddlewares(core, nil),
		Routes:      routes,
		OnStart: func(ctx context.Context, rt coretelegram.Runtime) error {
			a.startSweeper()
			return nil
		},
		OnStop: func(ctx context.Context, rt coretelegram.Runtime) error {
			a.stopSweeper()
			return a.infra.DB.Close()
		},
	}, nil
}

// startSweeper runs the unpaid order sweep once at startup and then on the
// configured interval until stopped.
func (a *App) startSweeper() {
	if a.cfg.Orders.SweepIntervalHours == 0 || a.cfg.Orders.SweepMaxAgeDays == 0 {
		return
	}
	a.sweepStop = make(chan struct{})
	a.sweepDone = make(chan struct{})

	interval := time.Duration(a.cfg.Orders.SweepIntervalHours) * time.Hour
	maxAge := a.cfg.Orders.SweepMaxAgeDays

	go func() {
		defer close(a.sweepDone)

		a.sweepOnce(maxAge)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				a.sweepOnce(maxAge)
			case <-a.sweepStop:
				return
			}
		}
	}()
}

func (a *App) sweepOnce(maxAgeDays int) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	deleted, err := a.orders.SweepExpired(ctx, maxAgeDays)
	if err != nil {
		logger.SVCOrders.Error("unpaid order sweep failed",
			slog.String("event", "orders.sweep"),
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)
		return
	}
	logger.SVCOrders.Info("unpaid order sweep finished",
		slog.String("event", "orders.sweep"),
		slog.String("status", "ok"),
		slog.Int64("orders_total", deleted),
	)
}

func (a *App) stopSweeper() {
	if a.sweepStop == nil {
		return
	}
	close(a.sweepStop)
	<-a.sweepDone
}
