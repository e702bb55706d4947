package command

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/nextlevelbuilder/selfgo/internal/store"
	"github.com/nextlevelbuilder/selfgo/internal/transport"
)

// passiveAFK sends the away auto-reply. It fires for private messages not
// from the owner and for group messages that mention the owner, at most
// once per sender per cooldown window. The check and the timestamp write
// happen inside one lock in the AFK state, so two near-simultaneous
// messages from the same sender cannot both pass.
func passiveAFK(ctx context.Context, env *Env, msg *transport.Message) error {
	if !env.AFK.Active() || msg.FromOwner || msg.Sender.IsBot {
		return nil
	}
	private := msg.Chat.Kind == "private"
	if !private && !msg.Mentioned {
		return nil
	}
	// pick up cooldown changes from config hot reloads
	env.AFK.SetWindow(env.Cfg.CooldownWindow())
	reason, elapsed, ok := env.AFK.ShouldNotify(msg.Sender.ID, time.Now())
	if !ok {
		return nil
	}
	text := fmt.Sprintf("I'm AFK right now (away for %s).", HumanSpan(elapsed))
	if reason != "" {
		text = fmt.Sprintf("I'm AFK right now: %s (away for %s).", reason, HumanSpan(elapsed))
	}
	if _, err := env.T.Reply(ctx, msg.ChatID, msg.ID, text); err != nil {
		return fmt.Errorf("send afk reply: %w", err)
	}
	return nil
}

var linkPattern = regexp.MustCompile(`(?i)\b(?:https?://|www\.|t\.me/|telegram\.me/)\S+`)

// passiveAntilink deletes link-bearing messages from others in groups
// where the toggle is on.
func passiveAntilink(ctx context.Context, env *Env, msg *transport.Message) error {
	if msg.FromOwner || !msg.Chat.IsGroup() || !linkPattern.MatchString(msg.Text) {
		return nil
	}
	v, err := env.Stores.Settings.Get(ctx, msg.ChatID, store.KeyAntilink)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read antilink toggle: %w", err)
	}
	if v != "on" {
		return nil
	}
	if err := env.T.Delete(ctx, msg.ChatID, msg.ID); err != nil {
		return fmt.Errorf("delete link message: %w", err)
	}
	return nil
}

// passiveAntiflood mutes senders who cross the configured message
// threshold inside the counting window, in groups where the toggle is on.
func passiveAntiflood(ctx context.Context, env *Env, msg *transport.Message) error {
	if msg.FromOwner || msg.Sender.IsBot || !msg.Chat.IsGroup() || len(msg.NewMembers) > 0 {
		return nil
	}
	v, err := env.Stores.Settings.Get(ctx, msg.ChatID, store.KeyAntiflood)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read antiflood threshold: %w", err)
	}
	limit, _ := strconv.Atoi(v)
	if !env.Flood.Record(msg.ChatID, msg.Sender.ID, time.Now(), limit) {
		return nil
	}
	until := time.Now().Add(floodMuteSpan)
	if err := env.T.Mute(ctx, msg.ChatID, msg.Sender.ID, until); err != nil {
		return fmt.Errorf("mute flooding sender: %w", err)
	}
	notice := fmt.Sprintf("muted %s for %s (flooding)", DisplayName(msg.Sender), HumanSpan(floodMuteSpan))
	if _, err := env.T.Send(ctx, msg.ChatID, notice); err != nil {
		env.Log.Debug("send flood notice", "chat_id", msg.ChatID, "error", err)
	}
	return nil
}

// passiveWelcome greets members announced by a join service message.
// "{name}" in the configured text expands to the joiner's display name.
func passiveWelcome(ctx context.Context, env *Env, msg *transport.Message) error {
	if len(msg.NewMembers) == 0 || !msg.Chat.IsGroup() {
		return nil
	}
	text, err := env.Stores.Settings.Get(ctx, msg.ChatID, store.KeyWelcome)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read welcome text: %w", err)
	}
	for _, member := range msg.NewMembers {
		if member.IsBot {
			continue
		}
		greeting := strings.ReplaceAll(text, "{name}", DisplayName(member))
		if _, err := env.T.Send(ctx, msg.ChatID, greeting); err != nil {
			return fmt.Errorf("send welcome for %s: %w", DisplayName(member), err)
		}
	}
	return nil
}

// passiveGbanOnJoin enforces the global blacklist when a marked user
// joins a group.
func passiveGbanOnJoin(ctx context.Context, env *Env, msg *transport.Message) error {
	if len(msg.NewMembers) == 0 || !msg.Chat.IsGroup() {
		return nil
	}
	for _, member := range msg.NewMembers {
		_, err := env.Stores.Settings.Get(ctx, member.ID, store.KeyGban)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return fmt.Errorf("read gban marker: %w", err)
		}
		if err := env.T.Ban(ctx, msg.ChatID, member.ID, time.Time{}); err != nil {
			env.Log.Warn("enforce global ban on join",
				"chat_id", msg.ChatID, "user_id", member.ID, "error", err)
		}
	}
	return nil
}
