package state

import tele "gopkg.in/telebot.v4"

// Handlers are registered once at startup, before updates flow, so the map
// needs no locking.
var flowHandlers = map[State]tele.HandlerFunc{}

// RegisterHandler binds a flow state to the handler that consumes the
// user's next text message while that state is armed.
func RegisterHandler(st State, h tele.HandlerFunc) {
	if h == nil {
		return
	}
	flowHandlers[st] = h
}
