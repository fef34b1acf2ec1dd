package router

import (
	"log/slog"

	"github.com/binarybrigade/printbot/core/logger"
	tg "github.com/binarybrigade/printbot/core/telegram"
	"github.com/binarybrigade/printbot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// CommandRouteOptions configures per-command wrapping.
type CommandRouteOptions struct {
	AdminID       int64
	OnAdminReject tele.HandlerFunc
}

// CommandRoutes turns every registered command into a route wrapped with
// recovery, logging and, where the definition asks for it, the admin gate.
func CommandRoutes(reg *tg.Registry, opts CommandRouteOptions) []tg.Route {
	if reg == nil {
		return nil
	}

	adminGate := middleware.AdminOnlyMiddleware(middleware.AdminOptions{
		AdminID:  opts.AdminID,
		OnReject: opts.OnAdminReject,
	})

	wrap := func(h tele.HandlerFunc, adminOnly bool) tele.HandlerFunc {
		h = middleware.RecoverMiddleware(h)
		h = middleware.LoggerMiddleware(h)
		if adminOnly {
			h = adminGate(h)
		}
		return h
	}

	cmds := reg.Commands()
	routes := make([]tg.Route, 0, len(cmds))
	for cmd, def := range cmds {
		routes = append(routes, tg.Route{
			Endpoint: cmd,
			Handler:  wrap(def.Handler, def.AdminOnly),
		})
	}

	logger.TWire.Info("tg.wire",
		slog.String("event", "complete"),
		slog.Int("commands", len(cmds)),
		slog.Int("callbacks", len(reg.ListCallbacks())),
	)

	return routes
}
