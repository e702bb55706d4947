package command

import (
	"sync"
	"time"
)

const (
	// floodWindow is the fixed counting window for flood detection.
	floodWindow = 10 * time.Second

	// floodDefaultLimit applies when .antiflood on is issued without a
	// threshold.
	floodDefaultLimit = 5

	// floodMuteSpan is how long a tripped sender stays muted.
	floodMuteSpan = 10 * time.Minute
)

type floodKey struct {
	chatID int64
	userID int64
}

type floodWindowState struct {
	start time.Time
	count int
}

// FloodTracker counts messages per (chat, sender) inside a sliding
// window. The count-and-trip decision happens under one mutex hold so
// concurrent messages from the same sender cannot both trip.
type FloodTracker struct {
	mu   sync.Mutex
	seen map[floodKey]*floodWindowState
}

func NewFloodTracker() *FloodTracker {
	return &FloodTracker{seen: make(map[floodKey]*floodWindowState)}
}

// Record counts one message and reports whether the sender just crossed
// the limit. The counter resets on a trip, so a burst draws one mute,
// not one per further message.
func (f *FloodTracker) Record(chatID, userID int64, now time.Time, limit int) bool {
	if limit <= 0 {
		limit = floodDefaultLimit
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	key := floodKey{chatID: chatID, userID: userID}
	w := f.seen[key]
	if w == nil || now.Sub(w.start) > floodWindow {
		f.seen[key] = &floodWindowState{start: now, count: 1}
		return false
	}
	w.count++
	if w.count > limit {
		delete(f.seen, key)
		return true
	}
	return false
}
