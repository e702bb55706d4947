package command

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/nextlevelbuilder/selfgo/internal/afk"
	"github.com/nextlevelbuilder/selfgo/internal/config"
	"github.com/nextlevelbuilder/selfgo/internal/store"
	"github.com/nextlevelbuilder/selfgo/internal/transport"
)

// fakeTransport records outbound calls. The embedded interface panics on
// anything a test did not expect to be called.
type fakeTransport struct {
	transport.Transport

	mu      sync.Mutex
	sent    []string
	replies []string
	edits   []string
	docs    []string
	deleted []int
	banned  []int64
	unbans  []int64
	muted   []int64

	// memberQueried records the user id of the last Member lookup.
	memberQueried int64

	sentWithButtons  []string
	editsWithButtons []string

	editErr   error
	memberRes transport.Member
	memberErr error
	resolved  map[string]transport.User
}

func (f *fakeTransport) SendWithButtons(ctx context.Context, chatID int64, text string, rows [][]transport.Button) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sentWithButtons = append(f.sentWithButtons, text)
	return 3000 + len(f.sentWithButtons), nil
}

func (f *fakeTransport) EditWithButtons(ctx context.Context, chatID int64, messageID int, text string, rows [][]transport.Button) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.editsWithButtons = append(f.editsWithButtons, text)
	return nil
}

// Me models the authenticated bot account, which is a different identity
// from the configured owner (id 1 in testEnv).
func (f *fakeTransport) Me() transport.User {
	return transport.User{ID: 900, Username: "selfgo_bot", IsBot: true}
}

func (f *fakeTransport) Send(ctx context.Context, chatID int64, text string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, text)
	return 1000 + len(f.sent), nil
}

func (f *fakeTransport) Reply(ctx context.Context, chatID int64, replyTo int, text string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies = append(f.replies, text)
	return 2000 + len(f.replies), nil
}

func (f *fakeTransport) Edit(ctx context.Context, chatID int64, messageID int, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.editErr != nil {
		return f.editErr
	}
	f.edits = append(f.edits, text)
	return nil
}

func (f *fakeTransport) SendDocument(ctx context.Context, chatID int64, name string, data []byte, caption string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.docs = append(f.docs, name)
	return nil
}

func (f *fakeTransport) Delete(ctx context.Context, chatID int64, messageIDs ...int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, messageIDs...)
	return nil
}

func (f *fakeTransport) SendTyping(ctx context.Context, chatID int64) error { return nil }

func (f *fakeTransport) AnswerCallback(ctx context.Context, callbackID string) error { return nil }

func (f *fakeTransport) Ban(ctx context.Context, chatID, userID int64, until time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.banned = append(f.banned, chatID)
	return nil
}

func (f *fakeTransport) Unban(ctx context.Context, chatID, userID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unbans = append(f.unbans, chatID)
	return nil
}

func (f *fakeTransport) Member(ctx context.Context, chatID, userID int64) (transport.Member, error) {
	f.mu.Lock()
	f.memberQueried = userID
	f.mu.Unlock()
	return f.memberRes, f.memberErr
}

func (f *fakeTransport) Mute(ctx context.Context, chatID, userID int64, until time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.muted = append(f.muted, userID)
	return nil
}

func (f *fakeTransport) ResolveUser(ctx context.Context, handle string) (transport.User, error) {
	if u, ok := f.resolved[handle]; ok {
		return u, nil
	}
	return transport.User{}, transport.ErrNotFound
}

func (f *fakeTransport) lastOutput() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if n := len(f.edits); n > 0 {
		return f.edits[n-1]
	}
	if n := len(f.replies); n > 0 {
		return f.replies[n-1]
	}
	if n := len(f.sent); n > 0 {
		return f.sent[n-1]
	}
	return ""
}

// In-memory stores, enough for handler and listener tests.

type memSettings struct {
	mu sync.Mutex
	m  map[int64]map[string]string
}

func newMemSettings() *memSettings { return &memSettings{m: make(map[int64]map[string]string)} }

func (s *memSettings) Set(ctx context.Context, scopeID int64, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.m[scopeID] == nil {
		s.m[scopeID] = make(map[string]string)
	}
	s.m[scopeID][key] = value
	return nil
}

func (s *memSettings) Get(ctx context.Context, scopeID int64, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.m[scopeID][key]
	if !ok {
		return "", store.ErrNotFound
	}
	return v, nil
}

func (s *memSettings) Delete(ctx context.Context, scopeID int64, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.m[scopeID][key]; !ok {
		return store.ErrNotFound
	}
	delete(s.m[scopeID], key)
	return nil
}

func (s *memSettings) ScopesWith(ctx context.Context, key string) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []int64
	for scope, kv := range s.m {
		if _, ok := kv[key]; ok {
			out = append(out, scope)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

type memChats struct {
	mu sync.Mutex
	m  map[int64]store.KnownChat
}

func newMemChats() *memChats { return &memChats{m: make(map[int64]store.KnownChat)} }

func (s *memChats) Touch(ctx context.Context, c store.KnownChat) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[c.ID] = c
	return nil
}

func (s *memChats) Groups(ctx context.Context) ([]store.KnownChat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []store.KnownChat
	for _, c := range s.m {
		if c.Kind == "group" || c.Kind == "supergroup" {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type memAFK struct {
	mu    sync.Mutex
	state store.AFKState
	set   bool
}

func (s *memAFK) Get(ctx context.Context, ownerID int64) (store.AFKState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.set {
		return store.AFKState{}, store.ErrNotFound
	}
	return s.state, nil
}

func (s *memAFK) Put(ctx context.Context, state store.AFKState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state, s.set = state, true
	return nil
}

type memWarnings struct {
	mu   sync.Mutex
	rows []store.Warning
}

func (s *memWarnings) Add(ctx context.Context, w store.Warning) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, w)
	return nil
}

func (s *memWarnings) RemoveOldest(ctx context.Context, userID, chatID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	oldest := -1
	for i, w := range s.rows {
		if w.UserID != userID || w.ChatID != chatID {
			continue
		}
		if oldest < 0 || w.CreatedAt.Before(s.rows[oldest].CreatedAt) {
			oldest = i
		}
	}
	if oldest < 0 {
		return false, nil
	}
	s.rows = append(s.rows[:oldest], s.rows[oldest+1:]...)
	return true, nil
}

func (s *memWarnings) List(ctx context.Context, userID, chatID int64) ([]store.Warning, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []store.Warning
	for _, w := range s.rows {
		if w.UserID == userID && w.ChatID == chatID {
			out = append(out, w)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

type memNotes struct {
	mu sync.Mutex
	m  map[string]store.Note
}

func newMemNotes() *memNotes { return &memNotes{m: make(map[string]store.Note)} }

func noteKey(ownerID int64, name string) string {
	return fmt.Sprintf("%d/%s", ownerID, strings.ToLower(name))
}

func (s *memNotes) Put(ctx context.Context, n store.Note) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[noteKey(n.OwnerID, n.Name)] = n
	return nil
}

func (s *memNotes) Get(ctx context.Context, ownerID int64, name string) (store.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.m[noteKey(ownerID, name)]
	if !ok {
		return store.Note{}, store.ErrNotFound
	}
	return n, nil
}

func (s *memNotes) Delete(ctx context.Context, ownerID int64, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := noteKey(ownerID, name)
	if _, ok := s.m[k]; !ok {
		return store.ErrNotFound
	}
	delete(s.m, k)
	return nil
}

func (s *memNotes) List(ctx context.Context, ownerID int64) ([]store.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []store.Note
	for _, n := range s.m {
		if n.OwnerID == ownerID {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type memReminders struct {
	mu   sync.Mutex
	rows []store.Reminder
}

func (s *memReminders) Create(ctx context.Context, r store.Reminder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, r)
	return nil
}

func (s *memReminders) Due(ctx context.Context, now time.Time) ([]store.Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []store.Reminder
	for _, r := range s.rows {
		if !r.Delivered && !r.DueAt.After(now) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *memReminders) MarkDelivered(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.rows {
		if s.rows[i].ID == id && !s.rows[i].Delivered {
			s.rows[i].Delivered = true
			return true, nil
		}
	}
	return false, nil
}

type memSchedules struct {
	mu   sync.Mutex
	rows []store.ScheduledMessage
}

func (s *memSchedules) Create(ctx context.Context, m store.ScheduledMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, m)
	return nil
}

func (s *memSchedules) Due(ctx context.Context, now time.Time) ([]store.ScheduledMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []store.ScheduledMessage
	for _, m := range s.rows {
		if !m.Delivered && !m.DueAt.After(now) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *memSchedules) MarkDelivered(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.rows {
		if s.rows[i].ID == id && !s.rows[i].Delivered {
			s.rows[i].Delivered = true
			return true, nil
		}
	}
	return false, nil
}

func (s *memSchedules) Rearm(ctx context.Context, id string, next time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.rows {
		if s.rows[i].ID == id {
			s.rows[i].DueAt = next
			return nil
		}
	}
	return store.ErrNotFound
}

func warning(userID, chatID int64, reason string, at time.Time) store.Warning {
	return store.Warning{ID: reason, UserID: userID, ChatID: chatID, Reason: reason, CreatedAt: at}
}

// testEnv builds an Env wired to fakes.
func testEnv(ft *fakeTransport) *Env {
	cfg := config.Default()
	cfg.Owner.ID = 1
	return &Env{
		Cfg: cfg,
		T:   ft,
		Stores: store.Stores{
			AFK:       &memAFK{},
			Reminders: &memReminders{},
			Schedules: &memSchedules{},
			Notes:     newMemNotes(),
			Warnings:  &memWarnings{},
			Settings:  newMemSettings(),
			Chats:     newMemChats(),
		},
		AFK:       afk.New(time.Minute),
		Flood:     NewFloodTracker(),
		Log:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		StartedAt: time.Now(),
		Restart:   func() {},
	}
}

func ownerMessage(text string) *transport.Message {
	return &transport.Message{
		ID:        50,
		ChatID:    -100,
		Chat:      transport.Chat{ID: -100, Kind: "supergroup", Title: "test group"},
		Sender:    transport.User{ID: 1, FirstName: "Owner"},
		Text:      text,
		FromOwner: true,
	}
}

func strangerMessage(text string) *transport.Message {
	return &transport.Message{
		ID:     51,
		ChatID: 42,
		Chat:   transport.Chat{ID: 42, Kind: "private"},
		Sender: transport.User{ID: 7, FirstName: "Sam"},
		Text:   text,
	}
}
