package router

import (
	"time"

	tg "github.com/binarybrigade/printbot/core/telegram"
	"github.com/binarybrigade/printbot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// FSM is the slice of a dialog manager the text router needs: whether a
// user is mid-flow, and the entry point that advances the flow.
type FSM interface {
	InProgress(userID int64) bool
	ManagerHandler(c tele.Context) error
}

// TextOptions controls fallback behaviour for text and document updates
// that match neither an active flow nor a registered command.
type TextOptions struct {
	UnknownText     tele.HandlerFunc
	UnknownDocument tele.HandlerFunc
}

// TextRoutes builds the OnText and OnDocument routes. Precedence for text:
// active dialog flow, then command alias lookup, then the registry text
// fallback, then UnknownText. Documents only go to an active flow or
// UnknownDocument.
func TextRoutes(fsmMgr FSM, reg *tg.Registry, opts TextOptions) []tg.Route {
	handler := func(c tele.Context) error {
		start := time.Now()
		run := func(name string, h tele.HandlerFunc) error {
			return handleWithSummary(c, name, start, "", "", func() error {
				return h(c)
			})
		}

		if fsmMgr != nil && fsmMgr.InProgress(c.Sender().ID) {
			return run("fsm", fsmMgr.ManagerHandler)
		}

		if reg != nil {
			if key, cmd, ok := reg.LookupCommand(c.Text()); ok && cmd.Handler != nil {
				return run(normalizeHandlerName(key), cmd.Handler)
			}
			if fb := reg.TextFallback(); fb != nil {
				return run("fallback", fb)
			}
		}

		if opts.UnknownText != nil {
			return run("unknown_text", opts.UnknownText)
		}

		logHandlerSummary(c, "unknown_text", start, "skip", "ok", nil)
		return nil
	}

	docHandler := func(c tele.Context) error {
		start := time.Now()
		if fsmMgr != nil && fsmMgr.InProgress(c.Sender().ID) {
			return handleWithSummary(c, "fsm_document", start, "", "", func() error {
				return fsmMgr.ManagerHandler(c)
			})
		}
		if opts.UnknownDocument != nil {
			return handleWithSummary(c, "unexpected_document", start, "", "", func() error {
				return opts.UnknownDocument(c)
			})
		}
		logHandlerSummary(c, "unexpected_document", start, "skip", "ok", nil)
		return nil
	}

	return []tg.Route{
		{
			Endpoint: tele.OnText,
			Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(handler)),
		},
		{
			Endpoint: tele.OnDocument,
			Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(docHandler)),
		},
	}
}
