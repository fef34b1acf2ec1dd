// Package handlers wires the Telegram surface of the print shop bot:
// commands, inline menus, the order intake conversation and the short
// single-input flows driven by the shared state manager.
package handlers

import (
	"context"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/binarybrigade/printbot/bot/intake"
	"github.com/binarybrigade/printbot/bot/payment"
	"github.com/binarybrigade/printbot/bot/report"
	"github.com/binarybrigade/printbot/bot/service"
	tg "github.com/binarybrigade/printbot/core/telegram"
	"github.com/binarybrigade/printbot/core/telegram/commands"
	tghelpers "github.com/binarybrigade/printbot/core/telegram/helpers"
	"github.com/binarybrigade/printbot/core/telegram/state"
)

// Handlers bundles the services behind the Telegram surface.
type Handlers struct {
	inventory *service.Inventory
	orders    *service.Orders
	finance   *service.Finance
	machine   *intake.Machine
	payments  *payment.Client
	reports   *report.Exporter
	states    state.Manager
}

// New builds the handler set. The state manager drives the short flows
// (materials, finance, payment links); the intake machine owns order intake.
func New(
	inventory *service.Inventory,
	orders *service.Orders,
	finance *service.Finance,
	machine *intake.Machine,
	payments *payment.Client,
	reports *report.Exporter,
	states state.Manager,
) *Handlers {
	return &Handlers{
		inventory: inventory,
		orders:    orders,
		finance:   finance,
		machine:   machine,
		payments:  payments,
		reports:   reports,
		states:    states,
	}
}

// Register wires every command, callback and FSM state into the registry.
func (h *Handlers) Register(reg *tg.Registry) {
	reg.RegisterCommand("/start", commands.Command{
		Handler:     h.cmdStart,
		Description: "Greeting and menu shortcut",
	})
	reg.RegisterCommand("/menu", commands.Command{
		Handler:     h.cmdMenu,
		Description: "Open the main menu",
	})
	reg.RegisterCommand("/neworder", commands.Command{
		Handler:     h.cmdNewOrder,
		Description: "Start order intake",
	})
	reg.RegisterCommand("/order", commands.Command{
		Handler:     h.cmdOrder,
		Description: "Show an order by id or name",
	})
	reg.RegisterCommand("/pending", commands.Command{
		Handler:     h.cmdPending,
		Description: "List pending orders",
	})
	reg.RegisterCommand("/getmats", commands.Command{
		Handler:     h.cmdMaterials,
		Description: "List all materials",
	})
	reg.RegisterCommand("/expenses", commands.Command{
		Handler:     h.cmdExpenses,
		Description: "List expenses in a category",
	})
	reg.RegisterCommand("/paymenturl", commands.Command{
		Handler:     h.cmdPaymentURL,
		Description: "Create a payment link for an amount",
	})
	reg.RegisterCommand("/report", commands.Command{
		Handler:     h.cmdReport,
		Description: "Export orders, stock and finance to a spreadsheet",
		AdminOnly:   true,
	})

	// Menu navigation.
	h.mustCallback(reg, cbMenus, h.cbMainMenu)
	h.mustCallback(reg, cbBackMenu, h.cbBackToMenu)
	h.mustCallback(reg, cbOrderManage, h.cbOrderManage)
	h.mustCallback(reg, cbMaterialManage, h.cbMaterialManage)
	h.mustCallback(reg, cbFinanceManage, h.cbFinanceManage)

	// Order management.
	h.mustCallback(reg, cbMakeOrder, h.cbMakeOrder)
	h.mustCallback(reg, cbDoneOrder, h.cbDoneOrder)
	h.mustCallback(reg, cbDoneOrderPick, h.cbDoneOrderPick)
	h.mustCallback(reg, cbShowOrders, h.cbShowOrders)
	h.mustCallback(reg, cbDeleteOrder, h.cbDeleteOrder)
	h.mustCallback(reg, cbDeleteOrderPick, h.cbDeleteOrderPick)

	// Intake conversation buttons.
	h.mustCallback(reg, cbIntake, h.cbIntake)

	// Materials.
	h.mustCallback(reg, cbAddMaterial, h.cbAddMaterial)
	h.mustCallback(reg, cbUseMaterial, h.cbUseMaterial)

	// Finance.
	h.mustCallback(reg, cbAddExpense, h.cbAddExpense)
	h.mustCallback(reg, cbAddIncome, h.cbAddIncome)
	h.mustCallback(reg, cbFinanceInterval, h.cbFinanceInterval)

	// Payments.
	h.mustCallback(reg, cbMakePaylink, h.cbMakePaylink)

	// Short-flow text states.
	state.RegisterHandler(stateMaterialAdd, h.stateMaterial(stateMaterialAdd))
	state.RegisterHandler(stateMaterialUse, h.stateMaterial(stateMaterialUse))
	state.RegisterHandler(stateExpense, h.stateExpense)
	state.RegisterHandler(stateIncome, h.stateIncome)
	state.RegisterHandler(stateFinanceInterval, h.stateFinanceInterval)
	state.RegisterHandler(statePaylinkAmount, h.statePaylinkAmount)
	state.RegisterHandler(stateReportInterval, h.stateReportInterval)

	reg.SetTextFallback(h.unknownText)
	reg.SetCallbackNotFound(h.unknownCallback)
}

func (h *Handlers) mustCallback(reg *tg.Registry, key string, fn tele.HandlerFunc) {
	_ = reg.RegisterCallback(key, fn)
}

// Dialogs returns the text router covering both conversation engines: the
// intake machine takes precedence, the state manager handles the short flows.
func (h *Handlers) Dialogs() *DialogRouter {
	return &DialogRouter{machine: h.machine, states: h.states, handlers: h}
}

// DialogRouter satisfies the message router's FSM contract.
type DialogRouter struct {
	machine  *intake.Machine
	states   state.Manager
	handlers *Handlers
}

// InProgress reports whether the user is inside any conversation.
func (d *DialogRouter) InProgress(userID int64) bool {
	return d.machine.Active(userID) || d.states.InProgress(userID)
}

// ManagerHandler dispatches a text update to the active conversation.
func (d *DialogRouter) ManagerHandler(c tele.Context) error {
	userID := c.Sender().ID
	if d.machine.Active(userID) {
		return d.handlers.intakeText(c)
	}
	return d.states.ManagerHandler(c)
}

// reqCtx derives a bounded, RID-carrying context for service calls.
func reqCtx(c tele.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(tghelpers.BuildContext(c), 15*time.Second)
}
