// Package network provides connectivity sources for the sync engine.
package network

import (
	"context"
	"sync"

	"github.com/iudanet/taskkeeper/internal/observer"
)

// State описывает текущее состояние сети
type State struct {
	ConnectionType string `json:"connectionType,omitempty"` // ConnectionType тип соединения, пусто если неизвестен
	IsConnected    bool   `json:"isConnected"`              // IsConnected есть ли связь
}

// Monitor is a connectivity event source.
type Monitor interface {
	// Current returns the current connectivity state
	Current(ctx context.Context) (State, error)

	// Subscribe registers fn for connectivity transitions and returns a
	// function that removes the subscription
	Subscribe(fn func(State)) (unsubscribe func())
}

// Manual is a connectivity source switched explicitly by the caller.
// Used for offline mode and tests.
type Manual struct {
	listeners observer.Registry[State]
	state     State
	mu        sync.Mutex
}

// NewManual creates a Manual source with the given initial state.
func NewManual(initial State) *Manual {
	return &Manual{state: initial}
}

// Current returns the state last set.
func (m *Manual) Current(ctx context.Context) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state, nil
}

// Subscribe registers fn for transitions.
func (m *Manual) Subscribe(fn func(State)) func() {
	return m.listeners.Add(fn)
}

// Set updates the state. Listeners are notified only when IsConnected
// actually changes.
func (m *Manual) Set(state State) {
	m.mu.Lock()
	changed := m.state.IsConnected != state.IsConnected
	m.state = state
	m.mu.Unlock()

	if changed {
		m.listeners.Notify(state)
	}
}

var _ Monitor = (*Manual)(nil)
