// Package afk holds the AFK toggle and the per-counterpart notification
// cooldown. All mutation funnels through the two transitions; handlers never
// touch the fields directly.
package afk

import (
	"sync"
	"time"
)

// State is the process-wide AFK state. Single writer (the .afk command),
// read concurrently by the passive listener. The cooldown check-and-set in
// ShouldNotify happens under one mutex hold so two near-simultaneous
// messages from the same counterpart cannot both pass.
type State struct {
	mu           sync.Mutex
	active       bool
	reason       string
	startedAt    time.Time
	lastNotified map[int64]time.Time
	window       time.Duration
}

// New creates an inactive AFK state with the given cooldown window.
func New(window time.Duration) *State {
	if window <= 0 {
		window = 60 * time.Second
	}
	return &State{
		lastNotified: make(map[int64]time.Time),
		window:       window,
	}
}

// Activate enters AFK mode. The cooldown map is cleared on every
// transition so no counterpart carries a stale entry across cycles.
func (s *State) Activate(reason string, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = true
	s.reason = reason
	s.startedAt = now
	s.lastNotified = make(map[int64]time.Time)
}

// Deactivate leaves AFK mode and clears reason, start time and cooldowns.
func (s *State) Deactivate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = false
	s.reason = ""
	s.startedAt = time.Time{}
	s.lastNotified = make(map[int64]time.Time)
}

// Active reports whether AFK mode is on.
func (s *State) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Status returns the current state snapshot.
func (s *State) Status() (active bool, reason string, since time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active, s.reason, s.startedAt
}

// ShouldNotify decides whether counterpart gets an auto-reply now, and if
// so records the notification timestamp in the same critical section.
// Returns the reason and elapsed AFK duration for the reply.
func (s *State) ShouldNotify(counterpart int64, now time.Time) (reason string, elapsed time.Duration, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return "", 0, false
	}
	if last, seen := s.lastNotified[counterpart]; seen && now.Sub(last) < s.window {
		return "", 0, false
	}
	s.lastNotified[counterpart] = now
	return s.reason, now.Sub(s.startedAt), true
}

// SetWindow updates the cooldown window (config hot reload).
func (s *State) SetWindow(window time.Duration) {
	if window <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.window = window
}

// CooldownSize reports the number of tracked counterparts. Test hook.
func (s *State) CooldownSize() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.lastNotified)
}
