package handlers

import (
	tele "gopkg.in/telebot.v4"

	tghelpers "github.com/binarybrigade/printbot/core/telegram/helpers"
	"github.com/binarybrigade/printbot/core/telegram/keyboard"
)

// Callback keys routed through the registry.
const (
	cbMenus          = "menus"
	cbBackMenu       = "back_menu"
	cbOrderManage    = "order_manage"
	cbMaterialManage = "material_manage"
	cbFinanceManage  = "finance_manage"

	cbMakeOrder       = "make_order"
	cbDoneOrder       = "done_order"
	cbDoneOrderPick   = "done_order_pick"
	cbShowOrders      = "show_orders"
	cbDeleteOrder     = "delete_order"
	cbDeleteOrderPick = "delete_order_pick"

	cbIntake = "intake"

	cbAddMaterial = "add_material"
	cbUseMaterial = "use_material"

	cbAddExpense      = "add_expense"
	cbAddIncome       = "add_income"
	cbFinanceInterval = "finance_interval"

	cbMakePaylink = "make_paylink"
)

const mainMenuText = "Welcome to the 3D printing assistant. Pick a menu section."

func mainMenuMarkup() *tele.ReplyMarkup {
	return keyboard.InlineButtons([]keyboard.InlineBtn{
		{Text: "Order management", Unique: cbOrderManage},
		{Text: "Material management", Unique: cbMaterialManage},
		{Text: "Create a payment link", Unique: cbMakePaylink},
		{Text: "Finance management", Unique: cbFinanceManage},
	})
}

func backMenuMarkup() *tele.ReplyMarkup {
	return keyboard.InlineButtons([]keyboard.InlineBtn{
		{Text: "💼 Back to menu 💼", Unique: cbBackMenu},
	})
}

func orderMenuMarkup() *tele.ReplyMarkup {
	return keyboard.InlineButtons([]keyboard.InlineBtn{
		{Text: "New order", Unique: cbMakeOrder},
		{Text: "Order completed", Unique: cbDoneOrder},
		{Text: "Show completed orders", Unique: cbShowOrders},
		{Text: "Delete an order", Unique: cbDeleteOrder},
		{Text: "💼 Back to menu 💼", Unique: cbBackMenu},
	})
}

func materialMenuMarkup() *tele.ReplyMarkup {
	return keyboard.InlineButtons([]keyboard.InlineBtn{
		{Text: "Add material", Unique: cbAddMaterial},
		{Text: "Use material", Unique: cbUseMaterial},
		{Text: "💼 Back to menu 💼", Unique: cbBackMenu},
	})
}

func financeMenuMarkup() *tele.ReplyMarkup {
	return keyboard.InlineButtons([]keyboard.InlineBtn{
		{Text: "Add income", Unique: cbAddIncome},
		{Text: "Add expense", Unique: cbAddExpense},
		{Text: "Finance for a period", Unique: cbFinanceInterval},
		{Text: "💼 Back to menu 💼", Unique: cbBackMenu},
	})
}

func (h *Handlers) cmdStart(c tele.Context) error {
	markup := keyboard.InlineButtons([]keyboard.InlineBtn{
		{Text: "💼 Menu 💼", Unique: cbMenus},
	})
	return tghelpers.SendMD(c, "👋 Welcome to the print shop assistant.\n*Tap below to open the menu.*", markup)
}

func (h *Handlers) cmdMenu(c tele.Context) error {
	return tghelpers.SendText(c, mainMenuText, &tele.SendOptions{ReplyMarkup: mainMenuMarkup()})
}

func (h *Handlers) cbMainMenu(c tele.Context) error {
	return tghelpers.EditOrSendMD(c, mainMenuText, mainMenuMarkup())
}

// cbBackToMenu aborts any conversation in flight and shows the main menu.
func (h *Handlers) cbBackToMenu(c tele.Context) error {
	userID := c.Sender().ID
	h.machine.Cancel(userID)
	h.states.Clear(userID)
	return tghelpers.EditOrSendMD(c, mainMenuText, mainMenuMarkup())
}

func (h *Handlers) cbOrderManage(c tele.Context) error {
	return tghelpers.EditOrSendMD(c, "Order management:", orderMenuMarkup())
}

func (h *Handlers) cbMaterialManage(c tele.Context) error {
	return tghelpers.EditOrSendMD(c, "Materials in stock:", materialMenuMarkup())
}

func (h *Handlers) cbFinanceManage(c tele.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	interval, err := h.finance.LastMonth(ctx)
	if err != nil {
		return tghelpers.EditOrSendMD(c, "Finance management:", financeMenuMarkup())
	}
	return tghelpers.EditOrSendMD(c, "Finance for the last month:\n"+formatInterval(interval), financeMenuMarkup())
}

func (h *Handlers) unknownText(c tele.Context) error {
	return tghelpers.SendText(c, "I did not understand that. Use /menu to see what I can do.")
}

func (h *Handlers) unknownCallback(c tele.Context) error {
	_ = c.Respond(&tele.CallbackResponse{Text: "Unsupported action"})
	return nil
}
