package state

import (
	"log/slog"
	"sync"

	"github.com/binarybrigade/printbot/core/logger"
	tghelpers "github.com/binarybrigade/printbot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

type memoryManager struct {
	mu     sync.RWMutex
	states map[int64]State
}

// NewMemoryManager returns an in-memory Manager. Flow states are transient
// prompts, so losing them on restart is acceptable.
func NewMemoryManager() Manager {
	return &memoryManager{states: make(map[int64]State)}
}

func (m *memoryManager) SetState(userID int64, st State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[userID] = st
}

func (m *memoryManager) GetState(userID int64) State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if st, ok := m.states[userID]; ok {
		return st
	}
	return StateIdle
}

func (m *memoryManager) HasState(userID int64) bool {
	return m.GetState(userID) != StateIdle
}

func (m *memoryManager) ClearState(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, userID)
}

// Clear drops everything tracked for the user. With only flow states held
// here it is equivalent to ClearState, kept separate for callers that mean
// "forget this user".
func (m *memoryManager) Clear(userID int64) {
	m.ClearState(userID)
}

func (m *memoryManager) InProgress(userID int64) bool {
	return m.HasState(userID)
}

// ManagerHandler dispatches the incoming text to the handler registered for
// the user's armed state. Text arriving with no armed state is ignored here
// and handled by the router's fallback.
func (m *memoryManager) ManagerHandler(c tele.Context) error {
	userID := c.Sender().ID
	current := m.GetState(userID)
	ctx := tghelpers.BuildContext(c)
	logger.Debug(ctx, "tg", "fsm.dispatch",
		slog.String("status", "ok"),
		slog.Int64("user_id", userID),
		slog.String("state", string(current)),
	)

	if handler, ok := flowHandlers[current]; ok {
		return handler(c)
	}
	return nil
}
