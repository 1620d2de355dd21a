// Package autosave coalesces rapid draft mutations into debounced saves.
// The contract: a pending debounce timer is always cancelled before a new
// one is armed (newest mutation wins), and at most one save is ever in
// flight — if the timer fires during a save, the manager marks the draft
// dirty and saves again once the current save settles.
package autosave

import (
	"context"
	"sync"
	"time"
)

// DefaultDebounce is the quiet period before an autosave fires.
const DefaultDebounce = 2 * time.Second

// SaveFunc performs one save of the current draft.
type SaveFunc func(ctx context.Context) error

// Manager schedules debounced saves with a single-slot in-flight guard.
type Manager struct {
	debounce time.Duration
	save     SaveFunc

	// afterFunc is replaceable in tests so the debounce contract can be
	// exercised without wall-clock timers.
	afterFunc func(time.Duration, func()) *time.Timer

	mu       sync.Mutex
	timer    *time.Timer
	seq      uint64
	inFlight bool
	dirty    bool
	settled  chan struct{} // closed when the in-flight save settles
}

// New creates a Manager. A zero debounce falls back to DefaultDebounce.
func New(debounce time.Duration, save SaveFunc) *Manager {
	if debounce == 0 {
		debounce = DefaultDebounce
	}
	return &Manager{
		debounce:  debounce,
		save:      save,
		afterFunc: time.AfterFunc,
	}
}

// Touch records a mutation: any pending timer is cancelled and a fresh
// debounce window is armed.
func (m *Manager) Touch() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.seq++
	seq := m.seq
	if m.timer != nil {
		m.timer.Stop()
	}
	m.timer = m.afterFunc(m.debounce, func() {
		m.fire(seq)
	})
}

// fire runs when a debounce window elapses. Stale timers (superseded by a
// later Touch) are ignored; a save already in flight defers the work.
func (m *Manager) fire(seq uint64) {
	m.mu.Lock()
	if seq != m.seq {
		m.mu.Unlock()
		return
	}
	m.timer = nil
	if m.inFlight {
		m.dirty = true
		m.mu.Unlock()
		return
	}
	m.beginSaveLocked()
	m.mu.Unlock()
}

// beginSaveLocked starts a save goroutine. Caller holds m.mu.
func (m *Manager) beginSaveLocked() {
	m.inFlight = true
	done := make(chan struct{})
	m.settled = done

	go func() {
		_ = m.save(context.Background())

		m.mu.Lock()
		m.inFlight = false
		m.settled = nil
		close(done)
		if m.dirty {
			m.dirty = false
			m.beginSaveLocked()
		}
		m.mu.Unlock()
	}()
}

// Cancel drops any pending debounce window. An in-flight save is left to
// settle on its own; abandoning it never corrupts anything because the
// save func only reads a snapshot.
func (m *Manager) Cancel() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
}

// WaitIdle cancels any pending debounce and blocks until no save is in
// flight (submission must not race a partial autosave). Returns early if
// the context is done.
func (m *Manager) WaitIdle(ctx context.Context) error {
	for {
		m.mu.Lock()
		m.seq++
		if m.timer != nil {
			m.timer.Stop()
			m.timer = nil
		}
		m.dirty = false
		settled := m.settled
		m.mu.Unlock()

		if settled == nil {
			return nil
		}
		select {
		case <-settled:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Flush forces an immediate save: it waits out any in-flight save, then
// runs one synchronously and returns its error. A debounce that fires
// while the flush save runs is not lost; it triggers a follow-up save
// once the flush settles, same as any other in-flight collision.
func (m *Manager) Flush(ctx context.Context) error {
	if err := m.WaitIdle(ctx); err != nil {
		return err
	}

	m.mu.Lock()
	done := make(chan struct{})
	m.inFlight = true
	m.settled = done
	m.mu.Unlock()

	err := m.save(ctx)

	m.mu.Lock()
	m.inFlight = false
	m.settled = nil
	close(done)
	if m.dirty {
		m.dirty = false
		m.beginSaveLocked()
	}
	m.mu.Unlock()

	return err
}
