// Package store defines the persistence boundary: entity types and the
// per-entity store interfaces the core depends on.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// AFKState is the persisted mirror of the AFK toggle, keyed by owner
// identity so it survives process restarts.
type AFKState struct {
	OwnerID   int64
	Active    bool
	Reason    string
	StartedAt time.Time
}

// Reminder is one deferred notification back to the owner.
type Reminder struct {
	ID        string // uuid
	OwnerID   int64
	ChatID    int64
	MessageID int // origin message for reply-threading; may become invalid
	DueAt     time.Time
	Text      string
	Delivered bool
}

// ScheduledMessage is a deferred broadcast to a chat. A non-empty CronExpr
// makes it recurring: after each delivery DueAt is re-armed instead of the
// item being marked delivered.
type ScheduledMessage struct {
	ID        string // uuid
	ChatID    int64
	DueAt     time.Time
	Text      string
	CronExpr  string
	Delivered bool
}

// Note is an owner-scoped named snippet.
type Note struct {
	OwnerID int64
	Name    string
	Content string
}

// Warning is one append-only warning record for a (user, chat) pair.
type Warning struct {
	ID        string // uuid
	UserID    int64
	ChatID    int64
	Reason    string
	IssuedBy  int64
	CreatedAt time.Time
}

// KnownChat is a conversation the account has seen a message in. The gban
// fan-out iterates these, since the transport exposes no chat listing.
type KnownChat struct {
	ID       int64
	Title    string
	Kind     string
	LastSeen time.Time
}

// Setting scopes: chat-level settings use the chat id as scope, user-level
// settings (gban markers) use the user id.
const (
	KeyAntilink  = "antilink"
	KeyAntiflood = "antiflood" // value is the message threshold, as text
	KeyWelcome   = "welcome"
	KeyGban      = "gban"
)

type AFKStore interface {
	Get(ctx context.Context, ownerID int64) (AFKState, error)
	Put(ctx context.Context, state AFKState) error
}

type ReminderStore interface {
	Create(ctx context.Context, r Reminder) error
	// Due returns undelivered reminders with DueAt <= now.
	Due(ctx context.Context, now time.Time) ([]Reminder, error)
	// MarkDelivered flips delivered exactly once; reports whether this call
	// performed the flip.
	MarkDelivered(ctx context.Context, id string) (bool, error)
}

type ScheduleStore interface {
	Create(ctx context.Context, s ScheduledMessage) error
	Due(ctx context.Context, now time.Time) ([]ScheduledMessage, error)
	MarkDelivered(ctx context.Context, id string) (bool, error)
	// Rearm moves a recurring schedule to its next due time.
	Rearm(ctx context.Context, id string, next time.Time) error
}

type NoteStore interface {
	Put(ctx context.Context, n Note) error
	Get(ctx context.Context, ownerID int64, name string) (Note, error)
	Delete(ctx context.Context, ownerID int64, name string) error
	List(ctx context.Context, ownerID int64) ([]Note, error)
}

type WarningStore interface {
	Add(ctx context.Context, w Warning) error
	// RemoveOldest deletes the earliest warning for the pair (FIFO) and
	// reports whether one existed.
	RemoveOldest(ctx context.Context, userID, chatID int64) (bool, error)
	List(ctx context.Context, userID, chatID int64) ([]Warning, error)
}

type SettingStore interface {
	Set(ctx context.Context, scopeID int64, key, value string) error
	Get(ctx context.Context, scopeID int64, key string) (string, error)
	Delete(ctx context.Context, scopeID int64, key string) error
	// ScopesWith returns every scope id that has the key set.
	ScopesWith(ctx context.Context, key string) ([]int64, error)
}

type ChatStore interface {
	Touch(ctx context.Context, c KnownChat) error
	Groups(ctx context.Context) ([]KnownChat, error)
}

// Stores bundles every store the bot needs.
type Stores struct {
	AFK       AFKStore
	Reminders ReminderStore
	Schedules ScheduleStore
	Notes     NoteStore
	Warnings  WarningStore
	Settings  SettingStore
	Chats     ChatStore
}
