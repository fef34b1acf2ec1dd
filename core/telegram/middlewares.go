package telegram

import (
	"strings"
	"time"

	coreconfig "github.com/binarybrigade/printbot/core/config"
	"github.com/binarybrigade/printbot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// DefaultMiddlewares builds the shared chain applied to every update:
// recover first, then an optional per-user rate limit, then logging and
// outbound message metrics.
func DefaultMiddlewares(cfg *coreconfig.Config, onLimited func(tele.Context) error) []Middleware {
	mws := []Middleware{
		{Name: "recover", Use: middleware.RecoverMiddleware},
	}

	if rl := rateLimitFromConfig(cfg, onLimited); rl != nil {
		mws = append(mws, Middleware{Name: "rate_limit", Use: rl})
	}

	return append(mws,
		Middleware{Name: "logger", Use: middleware.LoggerMiddleware},
		Middleware{Name: "metrics", Use: middleware.MessageMetricsMiddleware},
	)
}

func rateLimitFromConfig(cfg *coreconfig.Config, onLimited func(tele.Context) error) func(tele.HandlerFunc) tele.HandlerFunc {
	if cfg == nil {
		return nil
	}
	interval := time.Duration(cfg.RateLimit.IntervalMS) * time.Millisecond
	if interval <= 0 {
		return nil
	}

	ex := make(map[string]struct{}, len(cfg.RateLimit.ExcludeUpdates))
	for _, t := range cfg.RateLimit.ExcludeUpdates {
		ex[strings.ToLower(t)] = struct{}{}
	}

	opts := middleware.RateLimitOptions{
		Interval: interval,
		Exclude:  ex,
	}
	if onLimited != nil {
		opts.OnLimited = onLimited
	}
	return middleware.RateLimitMiddleware(opts)
}
