package middleware

import (
	"log/slog"
	"runtime/debug"

	"github.com/binarybrigade/printbot/core/logger"

	tele "gopkg.in/telebot.v4"
)

// RecoverMiddleware turns handler panics into error logs so one broken
// update cannot take the bot down. The panic value and stack are logged
// together with the update id for correlation.
func RecoverMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		defer func() {
			if r := recover(); r != nil {
				logger.TG.Error("panic recovered",
					slog.String("event", "tg.panic"),
					slog.Int("update_id", c.Update().ID),
					slog.Any("err", r),
					slog.String("stack", string(debug.Stack())),
				)
			}
		}()
		return next(c)
	}
}
