// Package state tracks which short conversational flow a user is in.
//
// A flow is a single-prompt exchange: a button press arms a state, the next
// text message from that user is dispatched to the handler registered for
// it. Multi-step conversations live in their own machines and only fall
// back here when inactive.
package state

import tele "gopkg.in/telebot.v4"

// State names one armed flow, e.g. "material_add".
type State string

// StateIdle means no flow is armed for the user.
const StateIdle State = "idle"

// Manager arms, inspects and clears per-user flow states.
type Manager interface {
	SetState(userID int64, st State)
	GetState(userID int64) State
	HasState(userID int64) bool
	ClearState(userID int64)
	Clear(userID int64)

	// InProgress and ManagerHandler satisfy the text router's FSM hook.
	InProgress(userID int64) bool
	ManagerHandler(c tele.Context) error
}
