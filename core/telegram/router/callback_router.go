package router

import (
	"log/slog"
	"time"

	tg "github.com/binarybrigade/printbot/core/telegram"
	"github.com/binarybrigade/printbot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// CallbackOptions customises fallback behaviour for unknown callback keys.
type CallbackOptions struct {
	NotFound tele.HandlerFunc
}

// CallbackRoute dispatches inline-keyboard presses through the registry.
// The callback is answered immediately so the client stops its spinner,
// then the matching handler (or the not-found fallback) runs with the
// usual per-handler summary logging.
func CallbackRoute(reg *tg.Registry, opts CallbackOptions) tg.Route {
	handler := func(c tele.Context) error {
		start := time.Now()
		cb := c.Callback()
		if cb == nil {
			return nil
		}

		key, _ := parseCallback(cb)
		name := "callback." + normalizeHandlerName(key)
		extras := []slog.Attr{slog.String("cb_key", key)}

		_ = c.Respond()

		target, ok := reg.GetCallback(key)
		if !ok || target == nil {
			target = reg.CallbackNotFound()
			if target == nil {
				target = opts.NotFound
			}
			extras = append(extras, slog.String("reason", "not_found"))
		}

		return handleWithSummary(c, name, start, "", "", func() error {
			if target == nil {
				return nil
			}
			return target(c)
		}, extras...)
	}

	return tg.Route{
		Endpoint: tele.OnCallback,
		Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(handler)),
	}
}
