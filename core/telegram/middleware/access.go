package middleware

import tele "gopkg.in/telebot.v4"

// AdminOptions configures admin-only gating. A zero AdminID disables the
// check entirely, which keeps single-user development setups working.
type AdminOptions struct {
	AdminID  int64
	OnReject tele.HandlerFunc
}

// AdminOnlyMiddleware drops updates from anyone but the configured admin.
// Rejected updates are answered by OnReject when set and ignored otherwise.
func AdminOnlyMiddleware(opts AdminOptions) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			if opts.AdminID != 0 && c.Sender().ID != opts.AdminID {
				if opts.OnReject != nil {
					return opts.OnReject(c)
				}
				return nil
			}
			return next(c)
		}
	}
}
