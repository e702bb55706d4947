package command

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/nextlevelbuilder/selfgo/internal/transport"
)

func runCommand(t *testing.T, ft *fakeTransport, env *Env, msg *transport.Message) string {
	t.Helper()
	d := NewDispatcher(env, NewRegistry())
	d.Handle(context.Background(), transport.Update{Message: msg})
	return ft.lastOutput()
}

func TestTextTransforms(t *testing.T) {
	cases := []struct {
		text string
		want string
	}{
		{".reverse abc", "cba"},
		{".mock hello there", "hElLo ThErE"},
		{".b64e hi", "aGk="},
		{".base64e hi", "aGk="},
		{".b64d aGk=", "hi"},
	}
	for _, c := range cases {
		ft := &fakeTransport{}
		env := testEnv(ft)
		got := runCommand(t, ft, env, ownerMessage(c.text))
		if got != c.want {
			t.Errorf("%q -> %q, want %q", c.text, got, c.want)
		}
	}
}

func TestTransformsFallBackToReply(t *testing.T) {
	ft := &fakeTransport{}
	env := testEnv(ft)
	msg := ownerMessage(".reverse")
	msg.ReplyTo = &transport.Message{ID: 49, Text: "abc", Sender: transport.User{ID: 7}}
	if got := runCommand(t, ft, env, msg); got != "cba" {
		t.Errorf("got %q, want %q", got, "cba")
	}
}

func TestTransformsRequireInput(t *testing.T) {
	ft := &fakeTransport{}
	env := testEnv(ft)
	got := runCommand(t, ft, env, ownerMessage(".reverse"))
	if !strings.Contains(got, "usage") {
		t.Errorf("bare transform should show usage, got %q", got)
	}
}

func TestCountAndHash(t *testing.T) {
	ft := &fakeTransport{}
	env := testEnv(ft)
	got := runCommand(t, ft, env, ownerMessage(".count two words"))
	if !strings.Contains(got, "characters: 9") || !strings.Contains(got, "words: 2") {
		t.Errorf("count output = %q", got)
	}

	ft = &fakeTransport{}
	env = testEnv(ft)
	got = runCommand(t, ft, env, ownerMessage(".hash abc"))
	// sha256("abc")
	if !strings.Contains(got, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad") {
		t.Errorf("hash output = %q", got)
	}
}

func TestCalcCommand(t *testing.T) {
	ft := &fakeTransport{}
	env := testEnv(ft)
	got := runCommand(t, ft, env, ownerMessage(".calc 2+2*3"))
	if !strings.HasSuffix(got, "= 8") {
		t.Errorf("calc output = %q", got)
	}
}

func TestLovecalcDeterministic(t *testing.T) {
	ft := &fakeTransport{}
	env := testEnv(ft)
	first := runCommand(t, ft, env, ownerMessage(".lovecalc alice bob"))

	ft2 := &fakeTransport{}
	env2 := testEnv(ft2)
	second := runCommand(t, ft2, env2, ownerMessage(".lovecalc alice bob"))
	if first != second {
		t.Errorf("lovecalc must be stable: %q vs %q", first, second)
	}
}

func TestNoteLifecycle(t *testing.T) {
	ft := &fakeTransport{}
	env := testEnv(ft)
	ctx := context.Background()
	d := NewDispatcher(env, NewRegistry())

	d.Handle(ctx, transport.Update{Message: ownerMessage(".note wifi hunter2")})
	if got := ft.lastOutput(); !strings.Contains(got, "saved") {
		t.Fatalf("save output = %q", got)
	}

	d.Handle(ctx, transport.Update{Message: ownerMessage(".getnote wifi")})
	if got := ft.lastOutput(); got != "hunter2" {
		t.Errorf("getnote = %q", got)
	}

	d.Handle(ctx, transport.Update{Message: ownerMessage(".allnotes")})
	if got := ft.lastOutput(); !strings.Contains(got, "wifi") {
		t.Errorf("allnotes = %q", got)
	}

	d.Handle(ctx, transport.Update{Message: ownerMessage(".delnote wifi")})
	d.Handle(ctx, transport.Update{Message: ownerMessage(".getnote wifi")})
	if got := ft.lastOutput(); !strings.Contains(got, "no note") {
		t.Errorf("deleted note lookup = %q", got)
	}
}

func TestRemindPersistsDueItem(t *testing.T) {
	ft := &fakeTransport{}
	env := testEnv(ft)
	before := time.Now()
	runCommand(t, ft, env, ownerMessage(".remind 1h30m stretch your legs"))

	due, err := env.Stores.Reminders.Due(context.Background(), before.Add(2*time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if len(due) != 1 {
		t.Fatalf("due = %+v", due)
	}
	r := due[0]
	if r.Text != "stretch your legs" || r.ChatID != -100 || r.MessageID != 50 {
		t.Errorf("reminder = %+v", r)
	}
	wantDue := before.Add(90 * time.Minute)
	if r.DueAt.Before(wantDue.Add(-time.Minute)) || r.DueAt.After(wantDue.Add(time.Minute)) {
		t.Errorf("due at %v, want about %v", r.DueAt, wantDue)
	}
}

func TestRemindRejectsBadDuration(t *testing.T) {
	ft := &fakeTransport{}
	env := testEnv(ft)
	got := runCommand(t, ft, env, ownerMessage(".remind tomorrow stretch"))
	if !strings.Contains(got, "error") {
		t.Errorf("bad duration should error, got %q", got)
	}
	due, _ := env.Stores.Reminders.Due(context.Background(), time.Now().Add(48*time.Hour))
	if len(due) != 0 {
		t.Error("failed remind must not persist anything")
	}
}

func TestScheduleCron(t *testing.T) {
	ft := &fakeTransport{}
	env := testEnv(ft)
	runCommand(t, ft, env, ownerMessage(`.schedule cron "0 9 * * 1" weekly standup`))

	due, err := env.Stores.Schedules.Due(context.Background(), time.Now().Add(8*24*time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if len(due) != 1 || due[0].CronExpr != "0 9 * * 1" || due[0].Text != "weekly standup" {
		t.Fatalf("schedule = %+v", due)
	}
	if !due[0].DueAt.After(time.Now()) {
		t.Error("first run must be in the future")
	}
}

func TestScheduleCronRejectsBadExpr(t *testing.T) {
	ft := &fakeTransport{}
	env := testEnv(ft)
	got := runCommand(t, ft, env, ownerMessage(`.schedule cron "not a cron" hello`))
	if !strings.Contains(got, "error") && !strings.Contains(got, "invalid") {
		t.Errorf("bad cron should be rejected, got %q", got)
	}
}

func TestHelpMenuNavigation(t *testing.T) {
	ft := &fakeTransport{}
	env := testEnv(ft)
	d := NewDispatcher(env, NewRegistry())
	ctx := context.Background()

	// a non-owner press is acknowledged and dropped
	d.Handle(ctx, transport.Update{Callback: &transport.Callback{
		ID: "cb1", ChatID: -100, MessageID: 60, Sender: transport.User{ID: 7}, Data: "help:cat:General",
	}})
	if len(ft.edits) != 0 {
		t.Fatal("non-owner callbacks must not drive the menu")
	}

	// the owner navigating into a category edits the menu message
	d.Handle(ctx, transport.Update{Callback: &transport.Callback{
		ID: "cb2", ChatID: -100, MessageID: 60, Sender: transport.User{ID: 1}, Data: "help:cat:General",
	}})
	if len(ft.editsWithButtons) != 1 {
		t.Fatalf("expected one menu edit, got %d", len(ft.editsWithButtons))
	}
	if !strings.Contains(ft.editsWithButtons[0], ".ping") {
		t.Errorf("category page should list its commands, got %q", ft.editsWithButtons[0])
	}

	// back to the root menu
	d.Handle(ctx, transport.Update{Callback: &transport.Callback{
		ID: "cb3", ChatID: -100, MessageID: 60, Sender: transport.User{ID: 1}, Data: "help:menu",
	}})
	if len(ft.editsWithButtons) != 2 {
		t.Fatalf("expected a second menu edit, got %d", len(ft.editsWithButtons))
	}
	if !strings.Contains(ft.editsWithButtons[1], "category") {
		t.Errorf("root menu text = %q", ft.editsWithButtons[1])
	}
}

func TestHelpForSingleCommand(t *testing.T) {
	ft := &fakeTransport{}
	env := testEnv(ft)
	got := runCommand(t, ft, env, ownerMessage(".help b64e"))
	if !strings.Contains(got, ".b64e") || !strings.Contains(got, "base64e") {
		t.Errorf("single-command help = %q", got)
	}
}
