package command

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/nextlevelbuilder/selfgo/internal/store"
	"github.com/nextlevelbuilder/selfgo/internal/transport"
)

func TestAFKAutoReplyWithCooldown(t *testing.T) {
	ft := &fakeTransport{}
	env := testEnv(ft)
	ctx := context.Background()
	env.AFK.Activate("lunch", time.Now().Add(-time.Hour))

	msg := strangerMessage("hey, you there?")
	if err := passiveAFK(ctx, env, msg); err != nil {
		t.Fatal(err)
	}
	if len(ft.replies) != 1 {
		t.Fatalf("expected one auto-reply, got %d", len(ft.replies))
	}
	if !strings.Contains(ft.replies[0], "lunch") || !strings.Contains(ft.replies[0], "1 hour") {
		t.Errorf("reply should carry reason and elapsed time, got %q", ft.replies[0])
	}

	// second message inside the window stays silent
	if err := passiveAFK(ctx, env, msg); err != nil {
		t.Fatal(err)
	}
	if len(ft.replies) != 1 {
		t.Errorf("cooldown violated, replies = %d", len(ft.replies))
	}
}

func TestAFKIgnoresGroupsWithoutMention(t *testing.T) {
	ft := &fakeTransport{}
	env := testEnv(ft)
	ctx := context.Background()
	env.AFK.Activate("", time.Now())

	group := &transport.Message{
		ID:     60,
		ChatID: -100,
		Chat:   transport.Chat{Kind: "supergroup"},
		Sender: transport.User{ID: 7},
		Text:   "unrelated chatter",
	}
	if err := passiveAFK(ctx, env, group); err != nil {
		t.Fatal(err)
	}
	if len(ft.replies) != 0 {
		t.Error("group message without a mention must not trigger the auto-reply")
	}

	group.Mentioned = true
	group.ID = 61
	if err := passiveAFK(ctx, env, group); err != nil {
		t.Fatal(err)
	}
	if len(ft.replies) != 1 {
		t.Error("group message mentioning the owner must trigger the auto-reply")
	}
}

func TestAFKNeverRepliesToOwner(t *testing.T) {
	ft := &fakeTransport{}
	env := testEnv(ft)
	env.AFK.Activate("", time.Now())

	msg := ownerMessage("note to self")
	msg.Chat.Kind = "private"
	if err := passiveAFK(context.Background(), env, msg); err != nil {
		t.Fatal(err)
	}
	if len(ft.replies) != 0 {
		t.Error("owner messages must not trigger the auto-reply")
	}
}

func TestAFKCommandClearsState(t *testing.T) {
	ft := &fakeTransport{}
	env := testEnv(ft)
	ctx := context.Background()
	d := NewDispatcher(env, NewRegistry())

	d.Handle(ctx, transport.Update{Message: ownerMessage(".afk in a meeting")})
	if !env.AFK.Active() {
		t.Fatal(".afk must activate")
	}
	if saved, _ := env.Stores.AFK.Get(ctx, 1); !saved.Active || saved.Reason != "in a meeting" {
		t.Errorf("activation must be persisted, got %+v", saved)
	}

	// a counterpart gets notified while away
	passiveAFK(ctx, env, strangerMessage("ping"))
	if env.AFK.CooldownSize() != 1 {
		t.Fatal("expected a cooldown entry")
	}

	d.Handle(ctx, transport.Update{Message: ownerMessage(".afk off")})
	if env.AFK.Active() {
		t.Fatal(".afk off must deactivate")
	}
	if env.AFK.CooldownSize() != 0 {
		t.Error("deactivation must clear the cooldown map")
	}
	if saved, _ := env.Stores.AFK.Get(ctx, 1); saved.Active {
		t.Errorf("deactivation must be persisted, got %+v", saved)
	}
}

func TestAntilinkDeletesForeignLinks(t *testing.T) {
	ft := &fakeTransport{}
	env := testEnv(ft)
	ctx := context.Background()
	env.Stores.Settings.Set(ctx, -100, store.KeyAntilink, "on")

	msg := &transport.Message{
		ID:     70,
		ChatID: -100,
		Chat:   transport.Chat{Kind: "supergroup"},
		Sender: transport.User{ID: 7},
		Text:   "join https://t.me/spamchannel now",
	}
	if err := passiveAntilink(ctx, env, msg); err != nil {
		t.Fatal(err)
	}
	if len(ft.deleted) != 1 || ft.deleted[0] != 70 {
		t.Errorf("link message must be deleted, deleted = %v", ft.deleted)
	}

	// owner links are exempt
	ft.deleted = nil
	msg.FromOwner = true
	if err := passiveAntilink(ctx, env, msg); err != nil {
		t.Fatal(err)
	}
	if len(ft.deleted) != 0 {
		t.Error("owner links must survive antilink")
	}

	// chats without the toggle are untouched
	msg.FromOwner = false
	msg.ChatID = -200
	if err := passiveAntilink(ctx, env, msg); err != nil {
		t.Fatal(err)
	}
	if len(ft.deleted) != 0 {
		t.Error("antilink must only act where enabled")
	}
}

func TestAntifloodMutesFlooders(t *testing.T) {
	ft := &fakeTransport{}
	env := testEnv(ft)
	ctx := context.Background()
	env.Stores.Settings.Set(ctx, -100, store.KeyAntiflood, "3")

	msg := &transport.Message{
		ID:     80,
		ChatID: -100,
		Chat:   transport.Chat{Kind: "supergroup"},
		Sender: transport.User{ID: 7, FirstName: "Sam"},
		Text:   "spam",
	}
	for i := 0; i < 3; i++ {
		if err := passiveAntiflood(ctx, env, msg); err != nil {
			t.Fatal(err)
		}
	}
	if len(ft.muted) != 0 {
		t.Fatalf("threshold not crossed yet, muted = %v", ft.muted)
	}

	// fourth message inside the window trips the limit
	if err := passiveAntiflood(ctx, env, msg); err != nil {
		t.Fatal(err)
	}
	if len(ft.muted) != 1 || ft.muted[0] != 7 {
		t.Fatalf("flooding sender must be muted, muted = %v", ft.muted)
	}
	if len(ft.sent) != 1 || !strings.Contains(ft.sent[0], "Sam") {
		t.Errorf("mute notice must name the sender, sent = %v", ft.sent)
	}

	// the counter resets on a trip, so the next message alone does not re-mute
	if err := passiveAntiflood(ctx, env, msg); err != nil {
		t.Fatal(err)
	}
	if len(ft.muted) != 1 {
		t.Errorf("one burst draws one mute, muted = %v", ft.muted)
	}

	// owner and unconfigured chats are exempt
	msg.FromOwner = true
	for i := 0; i < 8; i++ {
		if err := passiveAntiflood(ctx, env, msg); err != nil {
			t.Fatal(err)
		}
	}
	msg.FromOwner = false
	msg.ChatID = -200
	for i := 0; i < 8; i++ {
		if err := passiveAntiflood(ctx, env, msg); err != nil {
			t.Fatal(err)
		}
	}
	if len(ft.muted) != 1 {
		t.Errorf("antiflood must only act on others where enabled, muted = %v", ft.muted)
	}
}

func TestAntifloodToggle(t *testing.T) {
	ft := &fakeTransport{memberRes: transport.Member{Status: "creator"}}
	env := testEnv(ft)
	d := NewDispatcher(env, NewRegistry())
	ctx := context.Background()

	d.Handle(ctx, transport.Update{Message: ownerMessage(".antiflood on 8")})
	if v, _ := env.Stores.Settings.Get(ctx, -100, store.KeyAntiflood); v != "8" {
		t.Fatalf("stored threshold = %q, want 8", v)
	}

	d.Handle(ctx, transport.Update{Message: ownerMessage(".antiflood on 0")})
	if got := ft.lastOutput(); !strings.Contains(got, "usage") {
		t.Errorf("zero threshold must be rejected, got %q", got)
	}

	d.Handle(ctx, transport.Update{Message: ownerMessage(".antiflood off")})
	if _, err := env.Stores.Settings.Get(ctx, -100, store.KeyAntiflood); err == nil {
		t.Error("off must clear the stored threshold")
	}
}

func TestFloodTrackerWindowExpiry(t *testing.T) {
	tr := NewFloodTracker()
	base := time.Now()

	for i := 0; i < 5; i++ {
		if tr.Record(-100, 7, base.Add(time.Duration(i)*time.Second), 5) {
			t.Fatalf("message %d must not trip a limit of 5", i+1)
		}
	}
	if !tr.Record(-100, 7, base.Add(5*time.Second), 5) {
		t.Error("sixth message inside the window must trip")
	}

	// a quiet spell starts a fresh window
	if tr.Record(-100, 7, base.Add(30*time.Second), 5) {
		t.Error("count must reset after the window passes")
	}

	// other senders count independently
	if tr.Record(-100, 8, base, 1) {
		t.Error("first message from another sender must not trip")
	}
}

func TestWelcomeGreetsJoiners(t *testing.T) {
	ft := &fakeTransport{}
	env := testEnv(ft)
	ctx := context.Background()
	env.Stores.Settings.Set(ctx, -100, store.KeyWelcome, "hello {name}, read the rules")

	msg := &transport.Message{
		ID:         80,
		ChatID:     -100,
		Chat:       transport.Chat{Kind: "supergroup"},
		NewMembers: []transport.User{{ID: 7, FirstName: "Sam"}},
	}
	if err := passiveWelcome(ctx, env, msg); err != nil {
		t.Fatal(err)
	}
	if len(ft.sent) != 1 || ft.sent[0] != "hello Sam, read the rules" {
		t.Errorf("sent = %v", ft.sent)
	}
}

func TestGbanEnforcedOnJoin(t *testing.T) {
	ft := &fakeTransport{}
	env := testEnv(ft)
	ctx := context.Background()
	env.Stores.Settings.Set(ctx, 7, store.KeyGban, "spam")

	msg := &transport.Message{
		ID:         90,
		ChatID:     -100,
		Chat:       transport.Chat{Kind: "supergroup"},
		NewMembers: []transport.User{{ID: 7}, {ID: 8}},
	}
	if err := passiveGbanOnJoin(ctx, env, msg); err != nil {
		t.Fatal(err)
	}
	if len(ft.banned) != 1 {
		t.Errorf("only the marked user gets banned, bans = %v", ft.banned)
	}
}

func TestGbanFansOutAcrossKnownGroups(t *testing.T) {
	ft := &fakeTransport{memberRes: transport.Member{Status: "creator"}}
	env := testEnv(ft)
	ctx := context.Background()
	for _, c := range []store.KnownChat{
		{ID: -1, Kind: "supergroup"},
		{ID: -2, Kind: "group"},
		{ID: -3, Kind: "supergroup"},
		{ID: 42, Kind: "private"}, // never part of the fan-out
	} {
		env.Stores.Chats.Touch(ctx, c)
	}
	d := NewDispatcher(env, NewRegistry())

	// issued from the saved-messages chat so the fan-out set stays the
	// three seeded groups
	msg := ownerMessage(".gban 7 spam")
	msg.ChatID = 1
	msg.Chat = transport.Chat{ID: 1, Kind: "private"}
	d.Handle(ctx, transport.Update{Message: msg})

	if len(ft.banned) != 3 {
		t.Errorf("expected bans in 3 groups, got %v", ft.banned)
	}
	if v, err := env.Stores.Settings.Get(ctx, 7, store.KeyGban); err != nil || v != "spam" {
		t.Errorf("gban marker = (%q, %v)", v, err)
	}
	if got := ft.lastOutput(); !strings.Contains(got, "3 group(s) done") {
		t.Errorf("summary should report the fan-out, got %q", got)
	}
}
