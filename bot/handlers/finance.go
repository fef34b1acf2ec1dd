package handlers

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	tele "gopkg.in/telebot.v4"

	"github.com/binarybrigade/printbot/bot/service"
	tghelpers "github.com/binarybrigade/printbot/core/telegram/helpers"
	"github.com/binarybrigade/printbot/core/telegram/state"
)

const (
	stateExpense         state.State = "finance_expense"
	stateIncome          state.State = "finance_income"
	stateFinanceInterval state.State = "finance_interval"
)

func formatInterval(in service.Interval) string {
	var expenses, revenue decimal.Decimal
	for _, e := range in.Expenses {
		expenses = expenses.Add(e.Amount)
	}
	for _, r := range in.Revenue {
		revenue = revenue.Add(r.Amount)
	}
	return fmt.Sprintf(
		"%s — %s\nExpenses: %s (%d records)\nRevenue: %s (%d records)\nNet: %s",
		in.From.Format(orderDateFormat), in.To.Format(orderDateFormat),
		expenses.StringFixed(2), len(in.Expenses),
		revenue.StringFixed(2), len(in.Revenue),
		revenue.Sub(expenses).StringFixed(2),
	)
}

func (h *Handlers) cmdExpenses(c tele.Context) error {
	args := c.Args()
	if len(args) == 0 {
		return tghelpers.SendText(c, "Usage: /expenses <category>")
	}
	category := strings.Join(args, " ")

	ctx, cancel := reqCtx(c)
	defer cancel()

	expenses, err := h.finance.ExpensesByCategory(ctx, category)
	if err != nil {
		return err
	}
	if len(expenses) == 0 {
		return tghelpers.SendText(c, fmt.Sprintf("No expenses recorded in %q.", category))
	}
	var total decimal.Decimal
	lines := make([]string, 0, len(expenses)+2)
	lines = append(lines, fmt.Sprintf("Expenses in %q:", category))
	for _, e := range expenses {
		total = total.Add(e.Amount)
		lines = append(lines, fmt.Sprintf("#%d %s — %s (%s)",
			e.ID, e.Amount.StringFixed(2), e.Description, e.SpentAt.Format(orderDateFormat)))
	}
	lines = append(lines, "Total: "+total.StringFixed(2))
	return tghelpers.SendText(c, strings.Join(lines, "\n"))
}

func (h *Handlers) cbAddExpense(c tele.Context) error {
	h.states.SetState(c.Sender().ID, stateExpense)
	return tghelpers.EditOrSendMD(c, "Enter the expense as `category@amount@description`", backMenuMarkup())
}

func (h *Handlers) cbAddIncome(c tele.Context) error {
	h.states.SetState(c.Sender().ID, stateIncome)
	return tghelpers.EditOrSendMD(c, "Enter the income as `order id@amount`", backMenuMarkup())
}

func (h *Handlers) cbFinanceInterval(c tele.Context) error {
	h.states.SetState(c.Sender().ID, stateFinanceInterval)
	return tghelpers.EditOrSendMD(c, "Enter the period as `YYYY-MM-DD YYYY-MM-DD`", backMenuMarkup())
}

func (h *Handlers) stateExpense(c tele.Context) error {
	parts := strings.SplitN(c.Text(), "@", 3)
	if len(parts) != 3 {
		return tghelpers.SendText(c, "Wrong format, expected: category@amount@description")
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(parts[1]))
	if err != nil || amount.IsNegative() {
		return tghelpers.SendText(c, "The amount must be a non-negative number.")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	id, err := h.finance.AddExpense(ctx, strings.TrimSpace(parts[0]), amount, strings.TrimSpace(parts[2]))
	if err != nil {
		return err
	}
	h.states.ClearState(c.Sender().ID)
	return tghelpers.SendText(c,
		fmt.Sprintf("Expense #%d recorded: %s.", id, amount.StringFixed(2)),
		&tele.SendOptions{ReplyMarkup: backMenuMarkup()},
	)
}

func (h *Handlers) stateIncome(c tele.Context) error {
	parts := strings.SplitN(c.Text(), "@", 2)
	if len(parts) != 2 {
		return tghelpers.SendText(c, "Wrong format, expected: order id@amount")
	}
	orderID, err := strconv.ParseInt(strings.TrimSpace(parts[0]), 10, 64)
	if err != nil {
		return tghelpers.SendText(c, "The order id must be a whole number.")
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(parts[1]))
	if err != nil || amount.IsNegative() {
		return tghelpers.SendText(c, "The amount must be a non-negative number.")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	id, err := h.finance.AddRevenue(ctx, orderID, amount)
	if err != nil {
		return err
	}
	h.states.ClearState(c.Sender().ID)
	return tghelpers.SendText(c,
		fmt.Sprintf("Income #%d recorded: %s for order #%d.", id, amount.StringFixed(2), orderID),
		&tele.SendOptions{ReplyMarkup: backMenuMarkup()},
	)
}

// parsePeriod reads two dates ("YYYY-MM-DD" or "DD.MM.YYYY") and widens the
// second day to its end so the interval is inclusive.
func parsePeriod(text string) (time.Time, time.Time, bool) {
	fields := strings.Fields(text)
	if len(fields) != 2 {
		return time.Time{}, time.Time{}, false
	}
	from, ok := tghelpers.ParseFlexibleDate(fields[0])
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	to, ok := tghelpers.ParseFlexibleDate(fields[1])
	if !ok || to.Before(from) {
		return time.Time{}, time.Time{}, false
	}
	return from, to.AddDate(0, 0, 1).Add(-time.Second), true
}

func (h *Handlers) stateFinanceInterval(c tele.Context) error {
	from, to, ok := parsePeriod(c.Text())
	if !ok {
		return tghelpers.SendText(c, "Wrong format, expected: YYYY-MM-DD YYYY-MM-DD")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	interval, err := h.finance.Between(ctx, from, to)
	if err != nil {
		return err
	}
	h.states.ClearState(c.Sender().ID)
	return tghelpers.SendText(c, formatInterval(interval), &tele.SendOptions{ReplyMarkup: backMenuMarkup()})
}
