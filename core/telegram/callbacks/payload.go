// Package callbacks extracts payloads from inline-button presses.
//
// Telebot encodes callback data as "\f<unique>|<payload>"; handlers
// registered per unique only care about the payload part.
package callbacks

import (
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v4"
)

// CallbackPayload returns the payload portion of the pressed button's data,
// or "" when the update is not a callback or carries none.
func CallbackPayload(c tele.Context) string {
	cb := c.Callback()
	if cb == nil {
		return ""
	}
	raw := strings.TrimPrefix(cb.Data, "\\f")
	if i := strings.Index(raw, "|"); i >= 0 {
		return raw[i+1:]
	}
	return ""
}

// PayloadInt64 parses the callback payload as a decimal int64. Buttons built
// from record lists carry the record id here.
func PayloadInt64(c tele.Context) (int64, error) {
	return strconv.ParseInt(CallbackPayload(c), 10, 64)
}
