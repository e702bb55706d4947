// Package transport defines the chat-transport boundary the core is written
// against. The dispatcher, permission gate, AFK listener and delivery loops
// only ever see these types; the telegram subpackage carries the wire client.
package transport

import (
	"context"
	"time"
)

// User identifies a chat participant.
type User struct {
	ID        int64
	Username  string
	FirstName string
	LastName  string
	IsBot     bool
}

// Chat describes a conversation.
type Chat struct {
	ID          int64
	Title       string
	Kind        string // "private", "group", "supergroup", "channel"
	Description string
	MemberCount int
}

// IsGroup reports whether the chat is multi-party.
func (c Chat) IsGroup() bool {
	return c.Kind == "group" || c.Kind == "supergroup"
}

// Message is an inbound message as seen by the core.
type Message struct {
	ID          int
	ChatID      int64
	Chat        Chat
	Sender      User
	Text        string
	FromOwner   bool   // sender is the configured owner identity
	Mentioned   bool   // the owner is mentioned or replied to
	HasPhoto    bool
	PhotoFileID string // transport-level handle for DownloadPhoto
	ReplyTo     *Message
	NewMembers  []User // set on service messages announcing joins
}

// Button is one inline-keyboard button. Data is the callback payload.
type Button struct {
	Label string
	Data  string
}

// Callback is an inline-button press.
type Callback struct {
	ID        string
	ChatID    int64
	MessageID int
	Sender    User
	Data      string
}

// Update is one unit from the transport's update stream.
type Update struct {
	Message  *Message
	Callback *Callback
}

// Capability names an admin right the gate can require. Values are the
// human-readable form used in "missing capability" replies.
type Capability string

const (
	CapDeleteMessages  Capability = "delete messages"
	CapRestrictMembers Capability = "restrict members"
	CapPromoteMembers  Capability = "promote members"
	CapPinMessages     Capability = "pin messages"
	CapChangeInfo      Capability = "change chat info"
)

// Member is the acting account's capability record in one chat.
type Member struct {
	Status string // "creator", "administrator", "member", ...
	Caps   map[Capability]bool
}

// Has reports whether the member holds a capability. Creators hold all.
func (m Member) Has(cap Capability) bool {
	if m.Status == "creator" {
		return true
	}
	return m.Caps[cap]
}

// Transport is the full surface the command handlers and background loops
// need from the chat network. Implementations must be safe for concurrent
// use and must honor a single rate-limit retry per call at most.
type Transport interface {
	// Updates starts the inbound stream; the channel closes when ctx ends.
	Updates(ctx context.Context) (<-chan Update, error)
	// Me returns the authenticated account identity.
	Me() User

	Send(ctx context.Context, chatID int64, text string) (int, error)
	Reply(ctx context.Context, chatID int64, replyTo int, text string) (int, error)
	Edit(ctx context.Context, chatID int64, messageID int, text string) error
	SendWithButtons(ctx context.Context, chatID int64, text string, rows [][]Button) (int, error)
	EditWithButtons(ctx context.Context, chatID int64, messageID int, text string, rows [][]Button) error
	AnswerCallback(ctx context.Context, callbackID string) error
	Delete(ctx context.Context, chatID int64, messageIDs ...int) error
	SendTyping(ctx context.Context, chatID int64) error
	SendDocument(ctx context.Context, chatID int64, name string, data []byte, caption string) error
	SendPhoto(ctx context.Context, chatID int64, name string, data []byte, caption string) error
	DownloadPhoto(ctx context.Context, msg *Message) ([]byte, error)

	Ban(ctx context.Context, chatID, userID int64, until time.Time) error
	Unban(ctx context.Context, chatID, userID int64) error
	Mute(ctx context.Context, chatID, userID int64, until time.Time) error
	Unmute(ctx context.Context, chatID, userID int64) error
	Promote(ctx context.Context, chatID, userID int64) error
	Demote(ctx context.Context, chatID, userID int64) error
	Pin(ctx context.Context, chatID int64, messageID int) error
	Unpin(ctx context.Context, chatID int64, messageID int) error
	SetChatTitle(ctx context.Context, chatID int64, title string) error
	SetChatDescription(ctx context.Context, chatID int64, description string) error

	Member(ctx context.Context, chatID, userID int64) (Member, error)
	ChatInfo(ctx context.Context, chatID int64) (Chat, error)
	ResolveUser(ctx context.Context, handle string) (User, error)

	Close(ctx context.Context) error
}

// MaxMessageRunes is the transport's single-message size limit. Results
// longer than this are uploaded as a document instead.
const MaxMessageRunes = 4096
