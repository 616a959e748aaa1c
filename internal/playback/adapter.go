// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package playback speaks assistant messages aloud.
//
// Each assistant message owns one Adapter, a two-state machine
// (idle -> playing -> idle) that rejects a second playback while the first
// is running. Pipeline performs the work: synthesize, decode, play, and
// release the decoded audio on every exit path. Adapters are independent;
// two messages may play at the same time.
package playback

import (
	"sync"
)

// FailureNotice is the user-facing message for any playback failure.
const FailureNotice = "Failed to generate speech"

// State is the playback state of one adapter.
type State int

const (
	StateIdle State = iota
	StatePlaying
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePlaying:
		return "playing"
	default:
		return "unknown"
	}
}

// =============================================================================
// ADAPTER
// =============================================================================

// Adapter is the playback state for one message.
type Adapter struct {
	mu      sync.Mutex
	state   State
	plays   int
	lastErr error
}

// NewAdapter returns an idle adapter.
func NewAdapter() *Adapter {
	return &Adapter{}
}

// State returns the current state.
func (a *Adapter) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Enabled reports whether the play control accepts input.
func (a *Adapter) Enabled() bool {
	return a.State() == StateIdle
}

// Begin moves idle -> playing. It returns false, changing nothing, when a
// playback is already running.
func (a *Adapter) Begin() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state == StatePlaying {
		return false
	}
	a.state = StatePlaying
	a.plays++
	a.lastErr = nil
	return true
}

// End returns the adapter to idle, recording err when playback failed.
func (a *Adapter) End(err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.state = StateIdle
	a.lastErr = err
}

// LastError returns the error of the most recent playback, if any.
func (a *Adapter) LastError() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastErr
}

// Plays returns how many playbacks were started.
func (a *Adapter) Plays() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.plays
}

// =============================================================================
// REGISTRY
// =============================================================================

// Registry hands out one adapter per message ID.
type Registry struct {
	mu       sync.Mutex
	adapters map[string]*Adapter
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{adapters: make(map[string]*Adapter)}
}

// For returns the adapter for messageID, creating it on first use.
func (r *Registry) For(messageID string) *Adapter {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.adapters[messageID]
	if !ok {
		a = NewAdapter()
		r.adapters[messageID] = a
	}
	return a
}

// Playing returns the number of adapters currently playing.
func (r *Registry) Playing() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, a := range r.adapters {
		if a.State() == StatePlaying {
			n++
		}
	}
	return n
}
