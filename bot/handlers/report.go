package handlers

import (
	tele "gopkg.in/telebot.v4"

	tghelpers "github.com/binarybrigade/printbot/core/telegram/helpers"
	"github.com/binarybrigade/printbot/core/telegram/state"
)

const stateReportInterval state.State = "report_interval"

func (h *Handlers) cmdReport(c tele.Context) error {
	if len(c.Args()) == 2 {
		return h.exportReport(c, c.Message().Payload)
	}
	h.states.SetState(c.Sender().ID, stateReportInterval)
	return tghelpers.SendText(c, "Enter the report period as YYYY-MM-DD YYYY-MM-DD")
}

func (h *Handlers) stateReportInterval(c tele.Context) error {
	return h.exportReport(c, c.Text())
}

func (h *Handlers) exportReport(c tele.Context, period string) error {
	from, to, ok := parsePeriod(period)
	if !ok {
		return tghelpers.SendText(c, "Wrong format, expected: YYYY-MM-DD YYYY-MM-DD")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	path, err := h.reports.Export(ctx, from, to)
	if err != nil {
		return tghelpers.SendText(c, "Could not build the report, try again later.")
	}
	h.states.ClearState(c.Sender().ID)
	return c.Send(&tele.Document{
		File:     tele.FromDisk(path),
		FileName: "print_shop_report.xlsx",
	})
}
