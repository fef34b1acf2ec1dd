package format

import "strings"

// Special characters per parse mode, as listed in the Bot API docs.
const (
	mdSpecials   = "_*`["
	mdV2Specials = "_*[]()~`>#+-=|{}.!"
)

// Escape escapes user-supplied text for interpolation into a legacy
// Markdown message. Telegram rejects messages with unbalanced entities,
// so anything that came from a user must pass through here first.
func Escape(s string) string { return escape(s, mdSpecials) }

// EscapeV2 escapes text for the MarkdownV2 parse mode.
func EscapeV2(s string) string { return escape(s, mdV2Specials) }

func escape(s, specials string) string {
	if !strings.ContainsAny(s, specials) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 4)
	for _, r := range s {
		if strings.ContainsRune(specials, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
