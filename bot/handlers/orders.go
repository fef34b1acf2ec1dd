package handlers

import (
	"errors"
	"fmt"
	"strings"

	tele "gopkg.in/telebot.v4"

	"github.com/binarybrigade/printbot/bot/models"
	"github.com/binarybrigade/printbot/bot/storage"
	"github.com/binarybrigade/printbot/core/telegram/callbacks"
	"github.com/binarybrigade/printbot/core/telegram/format"
	tghelpers "github.com/binarybrigade/printbot/core/telegram/helpers"
	"github.com/binarybrigade/printbot/core/telegram/keyboard"
)

const orderDateFormat = "2006-01-02"

// formatOrder renders the order card in Markdown; user-entered fields
// are escaped so names with underscores or asterisks do not break it.
func formatOrder(o models.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*Order #%d* %s\n", o.ID, format.Escape(o.Name))
	fmt.Fprintf(&b, "*File:* %s\n", format.Escape(o.FileLink))
	fmt.Fprintf(&b, "*Material:* %s, %d g\n", format.Escape(o.MaterialName), o.MaterialAmount)
	fmt.Fprintf(&b, "*Due:* %s, importance %d\n", o.RecommendedDate.Format(orderDateFormat), o.Importance)
	if o.Settings != "" {
		fmt.Fprintf(&b, "*Settings:* %s\n", format.Escape(o.Settings))
	}
	if o.Cost != nil {
		fmt.Fprintf(&b, "*Cost:* %s\n", o.Cost.StringFixed(2))
	}
	paid := "no"
	if o.PaymentConfirmed {
		paid = "yes"
	}
	fmt.Fprintf(&b, "*Paid:* %s, status: %s", paid, o.Status)
	return b.String()
}

func orderLine(o models.Order) string {
	return fmt.Sprintf("#%d %s — %s, %d g, due %s (imp. %d)",
		o.ID, o.Name, o.MaterialName, o.MaterialAmount,
		o.RecommendedDate.Format(orderDateFormat), o.Importance)
}

func (h *Handlers) cmdOrder(c tele.Context) error {
	args := c.Args()
	if len(args) == 0 {
		return tghelpers.SendText(c, "Usage: /order <id or name>")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	order, err := h.orders.Get(ctx, strings.Join(args, " "))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return tghelpers.SendText(c, "No such order.")
		}
		return err
	}
	return tghelpers.SendMD(c, formatOrder(order))
}

func (h *Handlers) cmdPending(c tele.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	orders, err := h.orders.ListPending(ctx)
	if err != nil {
		return err
	}
	if len(orders) == 0 {
		return tghelpers.SendText(c, "No pending orders.")
	}
	lines := make([]string, 0, len(orders)+1)
	lines = append(lines, "Pending orders:")
	for _, o := range orders {
		lines = append(lines, orderLine(o))
	}
	return tghelpers.SendText(c, strings.Join(lines, "\n"))
}

// orderPickMarkup renders one button per order carrying its id as payload.
func orderPickMarkup(orders []models.Order, unique string) *tele.ReplyMarkup {
	btns := make([]keyboard.InlineBtn, 0, len(orders)+1)
	for _, o := range orders {
		btns = append(btns, keyboard.InlineBtn{
			Text:   fmt.Sprintf("#%d %s", o.ID, o.Name),
			Unique: unique,
			Data:   fmt.Sprintf("%d", o.ID),
		})
	}
	btns = append(btns, keyboard.InlineBtn{Text: "💼 Back to menu 💼", Unique: cbBackMenu})
	return keyboard.InlineButtons(btns)
}

func (h *Handlers) cbDoneOrder(c tele.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	orders, err := h.orders.ListPending(ctx)
	if err != nil {
		return err
	}
	if len(orders) == 0 {
		return tghelpers.EditOrSendMD(c, "No pending orders.", backMenuMarkup())
	}
	return tghelpers.EditOrSendMD(c, "Pick the completed order:", orderPickMarkup(orders, cbDoneOrderPick))
}

func (h *Handlers) cbDoneOrderPick(c tele.Context) error {
	id, err := callbacks.PayloadInt64(c)
	if err != nil {
		return tghelpers.SendText(c, "Broken order reference, open the list again.")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.orders.Complete(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return tghelpers.EditOrSendMD(c, "That order no longer exists.", backMenuMarkup())
		}
		return err
	}
	return tghelpers.EditOrSendMD(c, fmt.Sprintf("Order #%d marked as completed.", id), backMenuMarkup())
}

func (h *Handlers) cbShowOrders(c tele.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	orders, err := h.orders.ListCompleted(ctx)
	if err != nil {
		return err
	}
	if len(orders) == 0 {
		return tghelpers.EditOrSendMD(c, "No completed orders yet.", backMenuMarkup())
	}
	lines := make([]string, 0, len(orders)+1)
	lines = append(lines, "Completed orders:")
	for _, o := range orders {
		lines = append(lines, format.Escape(orderLine(o)))
	}
	return tghelpers.EditOrSendMD(c, strings.Join(lines, "\n"), backMenuMarkup())
}

func (h *Handlers) cbDeleteOrder(c tele.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	orders, err := h.orders.ListPending(ctx)
	if err != nil {
		return err
	}
	if len(orders) == 0 {
		return tghelpers.EditOrSendMD(c, "No pending orders to delete.", backMenuMarkup())
	}
	return tghelpers.EditOrSendMD(c, "Pick the order to delete:", orderPickMarkup(orders, cbDeleteOrderPick))
}

func (h *Handlers) cbDeleteOrderPick(c tele.Context) error {
	id, err := callbacks.PayloadInt64(c)
	if err != nil {
		return tghelpers.SendText(c, "Broken order reference, open the list again.")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.orders.Delete(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return tghelpers.EditOrSendMD(c, "That order no longer exists.", backMenuMarkup())
		}
		return err
	}
	return tghelpers.EditOrSendMD(c, fmt.Sprintf("Order #%d deleted.", id), backMenuMarkup())
}
