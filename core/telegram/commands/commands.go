// Package commands declares the registration metadata for slash commands.
package commands

import tele "gopkg.in/telebot.v4"

// Command couples a slash-command handler with how it is published.
// AdminOnly commands run only for the configured admin, Hidden ones are
// registered but kept out of the Telegram command list.
type Command struct {
	Handler     tele.HandlerFunc
	Description string
	AdminOnly   bool
	Hidden      bool
	Aliases     []string
}
