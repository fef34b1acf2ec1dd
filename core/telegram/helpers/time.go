package helpers

import (
	"strings"
	"time"
)

// Date layouts accepted from chat input, most common first. ISO dates and
// the dotted European form are both in circulation among operators.
var dateLayouts = []string{
	"2006-01-02",
	"2006-1-2",
	"02.01.2006",
	"2.1.2006",
	"2006-01-02 15:04",
	"02.01.2006 15:04",
}

// ParseFlexibleDate parses a date typed into a chat, trying each supported
// layout in order. The result is in the local timezone.
func ParseFlexibleDate(input string) (time.Time, bool) {
	s := strings.TrimSpace(input)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		t, err := time.ParseInLocation(layout, s, time.Local)
		if err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
