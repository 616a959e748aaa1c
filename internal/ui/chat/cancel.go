// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"sync"
)

// lifecycle owns the context every stream and playback derives from.
// It is shared by pointer so copies of Model cancel the same work.
type lifecycle struct {
	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
}

func newLifecycle(parent context.Context) *lifecycle {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	return &lifecycle{ctx: ctx, cancel: cancel}
}

// context returns the root context.
func (l *lifecycle) context() context.Context {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ctx
}

// shutdown cancels in-flight work. Safe to call more than once.
func (l *lifecycle) shutdown() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
}

// Shutdown aborts any in-flight stream or playback. Called when the
// program exits.
func (m Model) Shutdown() {
	m.life.shutdown()
}
