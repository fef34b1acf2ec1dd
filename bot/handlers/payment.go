package handlers

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	tele "gopkg.in/telebot.v4"

	tghelpers "github.com/binarybrigade/printbot/core/telegram/helpers"
	"github.com/binarybrigade/printbot/core/telegram/state"
)

const statePaylinkAmount state.State = "paylink_amount"

func (h *Handlers) cmdPaymentURL(c tele.Context) error {
	args := c.Args()
	if len(args) == 0 {
		return tghelpers.SendText(c, "Usage: /paymenturl <amount>")
	}
	return h.createPaylink(c, strings.Join(args, " "))
}

func (h *Handlers) cbMakePaylink(c tele.Context) error {
	if !h.payments.Enabled() {
		return tghelpers.EditOrSendMD(c, "Payments are not configured.", backMenuMarkup())
	}
	h.states.SetState(c.Sender().ID, statePaylinkAmount)
	return tghelpers.EditOrSendMD(c, "Enter the payment amount", backMenuMarkup())
}

func (h *Handlers) statePaylinkAmount(c tele.Context) error {
	return h.createPaylink(c, c.Text())
}

func (h *Handlers) createPaylink(c tele.Context, raw string) error {
	if !h.payments.Enabled() {
		return tghelpers.SendText(c, "Payments are not configured.")
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil || !amount.IsPositive() {
		return tghelpers.SendText(c, "The amount must be a positive number.")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	link, err := h.payments.CreateLink(ctx, amount, fmt.Sprintf("Print shop payment of %s", amount.StringFixed(2)))
	if err != nil {
		return tghelpers.SendText(c, "Could not create the payment link, try again later.")
	}
	h.states.ClearState(c.Sender().ID)
	return tghelpers.SendText(c,
		fmt.Sprintf("Payment link for %s:\n%s", amount.StringFixed(2), link.URL),
		&tele.SendOptions{ReplyMarkup: backMenuMarkup()},
	)
}
