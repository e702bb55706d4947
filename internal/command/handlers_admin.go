package command

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/nextlevelbuilder/selfgo/internal/store"
)

// gbanConcurrency bounds the per-group fan-out of global ban operations.
const gbanConcurrency = 4

func cmdBan(ctx context.Context, env *Env, inv *Invocation) error {
	user, rest, err := inv.TargetUser(ctx, env.T)
	if err != nil {
		return err
	}
	until, reason := splitSpanAndReason(rest)
	if err := env.T.Ban(ctx, inv.Msg.ChatID, user.ID, until); err != nil {
		return fmt.Errorf("ban %s: %w", DisplayName(user), err)
	}
	out := fmt.Sprintf("banned %s", DisplayName(user))
	if !until.IsZero() {
		out += " until " + until.Format("2006-01-02 15:04 MST")
	}
	if reason != "" {
		out += "\nreason: " + reason
	}
	return inv.Respond(ctx, "%s", out)
}

func cmdUnban(ctx context.Context, env *Env, inv *Invocation) error {
	user, _, err := inv.TargetUser(ctx, env.T)
	if err != nil {
		return err
	}
	if err := env.T.Unban(ctx, inv.Msg.ChatID, user.ID); err != nil {
		return fmt.Errorf("unban %s: %w", DisplayName(user), err)
	}
	return inv.Respond(ctx, "unbanned %s", DisplayName(user))
}

// cmdKick removes a member without a lasting ban: ban then immediately
// lift it, so the user can rejoin via invite link.
func cmdKick(ctx context.Context, env *Env, inv *Invocation) error {
	user, _, err := inv.TargetUser(ctx, env.T)
	if err != nil {
		return err
	}
	if err := env.T.Ban(ctx, inv.Msg.ChatID, user.ID, time.Time{}); err != nil {
		return fmt.Errorf("kick %s: %w", DisplayName(user), err)
	}
	if err := env.T.Unban(ctx, inv.Msg.ChatID, user.ID); err != nil {
		return fmt.Errorf("lift kick ban for %s: %w", DisplayName(user), err)
	}
	return inv.Respond(ctx, "kicked %s", DisplayName(user))
}

func cmdMute(ctx context.Context, env *Env, inv *Invocation) error {
	user, rest, err := inv.TargetUser(ctx, env.T)
	if err != nil {
		return err
	}
	until, _ := splitSpanAndReason(rest)
	if err := env.T.Mute(ctx, inv.Msg.ChatID, user.ID, until); err != nil {
		return fmt.Errorf("mute %s: %w", DisplayName(user), err)
	}
	if until.IsZero() {
		return inv.Respond(ctx, "muted %s", DisplayName(user))
	}
	return inv.Respond(ctx, "muted %s for %s", DisplayName(user), HumanSpan(time.Until(until)))
}

func cmdUnmute(ctx context.Context, env *Env, inv *Invocation) error {
	user, _, err := inv.TargetUser(ctx, env.T)
	if err != nil {
		return err
	}
	if err := env.T.Unmute(ctx, inv.Msg.ChatID, user.ID); err != nil {
		return fmt.Errorf("unmute %s: %w", DisplayName(user), err)
	}
	return inv.Respond(ctx, "unmuted %s", DisplayName(user))
}

func cmdPromote(ctx context.Context, env *Env, inv *Invocation) error {
	user, _, err := inv.TargetUser(ctx, env.T)
	if err != nil {
		return err
	}
	if err := env.T.Promote(ctx, inv.Msg.ChatID, user.ID); err != nil {
		return fmt.Errorf("promote %s: %w", DisplayName(user), err)
	}
	return inv.Respond(ctx, "promoted %s", DisplayName(user))
}

func cmdDemote(ctx context.Context, env *Env, inv *Invocation) error {
	user, _, err := inv.TargetUser(ctx, env.T)
	if err != nil {
		return err
	}
	if err := env.T.Demote(ctx, inv.Msg.ChatID, user.ID); err != nil {
		return fmt.Errorf("demote %s: %w", DisplayName(user), err)
	}
	return inv.Respond(ctx, "demoted %s", DisplayName(user))
}

func cmdPin(ctx context.Context, env *Env, inv *Invocation) error {
	if inv.Msg.ReplyTo == nil {
		return usageError(".pin (reply to the message to pin)")
	}
	if err := env.T.Pin(ctx, inv.Msg.ChatID, inv.Msg.ReplyTo.ID); err != nil {
		return fmt.Errorf("pin message: %w", err)
	}
	return inv.Respond(ctx, "pinned")
}

func cmdUnpin(ctx context.Context, env *Env, inv *Invocation) error {
	if inv.Msg.ReplyTo == nil {
		return usageError(".unpin (reply to the pinned message)")
	}
	if err := env.T.Unpin(ctx, inv.Msg.ChatID, inv.Msg.ReplyTo.ID); err != nil {
		return fmt.Errorf("unpin message: %w", err)
	}
	return inv.Respond(ctx, "unpinned")
}

func cmdDel(ctx context.Context, env *Env, inv *Invocation) error {
	if inv.Msg.ReplyTo == nil {
		return usageError(".del (reply to the message to delete)")
	}
	if err := env.T.Delete(ctx, inv.Msg.ChatID, inv.Msg.ReplyTo.ID, inv.Msg.ID); err != nil {
		return fmt.Errorf("delete message: %w", err)
	}
	return nil
}

// cmdPurge deletes the replied-to message and up to n-1 messages sent
// right before it, plus the command message itself. Message ids in a chat
// are sequential, so the span is computed arithmetically; ids that no
// longer exist are skipped by the transport.
func cmdPurge(ctx context.Context, env *Env, inv *Invocation) error {
	if inv.Msg.ReplyTo == nil {
		return usageError(".purge [n] (reply to the newest message of the span)")
	}
	n := 1
	if arg := inv.Argument(""); arg != "" {
		v, err := strconv.Atoi(arg)
		if err != nil || v <= 0 {
			return usageError(".purge [n>0]")
		}
		n = v
	}
	const purgeMax = 100
	if n > purgeMax {
		n = purgeMax
	}
	ids := make([]int, 0, n+1)
	for i := 0; i < n; i++ {
		id := inv.Msg.ReplyTo.ID - i
		if id <= 0 {
			break
		}
		ids = append(ids, id)
	}
	ids = append(ids, inv.Msg.ID)
	if err := env.T.Delete(ctx, inv.Msg.ChatID, ids...); err != nil {
		return fmt.Errorf("purge %d messages: %w", len(ids)-1, err)
	}
	return nil
}

func cmdSetGTitle(ctx context.Context, env *Env, inv *Invocation) error {
	title := inv.Argument("")
	if title == "" {
		return usageError(".setgtitle <title>")
	}
	if err := env.T.SetChatTitle(ctx, inv.Msg.ChatID, title); err != nil {
		return fmt.Errorf("set group title: %w", err)
	}
	return inv.Respond(ctx, "title updated")
}

func cmdSetGDesc(ctx context.Context, env *Env, inv *Invocation) error {
	desc := inv.Argument("")
	if desc == "" {
		return usageError(".setgdesc <description>")
	}
	if err := env.T.SetChatDescription(ctx, inv.Msg.ChatID, desc); err != nil {
		return fmt.Errorf("set group description: %w", err)
	}
	return inv.Respond(ctx, "description updated")
}

func cmdWarn(ctx context.Context, env *Env, inv *Invocation) error {
	user, reason, err := inv.TargetUser(ctx, env.T)
	if err != nil {
		return err
	}
	w := store.Warning{
		ID:        uuid.Must(uuid.NewV7()).String(),
		UserID:    user.ID,
		ChatID:    inv.Msg.ChatID,
		Reason:    reason,
		IssuedBy:  inv.Msg.Sender.ID,
		CreatedAt: time.Now(),
	}
	if err := env.Stores.Warnings.Add(ctx, w); err != nil {
		return fmt.Errorf("record warning: %w", err)
	}
	all, err := env.Stores.Warnings.List(ctx, user.ID, inv.Msg.ChatID)
	if err != nil {
		return fmt.Errorf("count warnings: %w", err)
	}
	out := fmt.Sprintf("warned %s (%d on record)", DisplayName(user), len(all))
	if reason != "" {
		out += "\nreason: " + reason
	}
	return inv.Respond(ctx, "%s", out)
}

func cmdUnwarn(ctx context.Context, env *Env, inv *Invocation) error {
	user, _, err := inv.TargetUser(ctx, env.T)
	if err != nil {
		return err
	}
	removed, err := env.Stores.Warnings.RemoveOldest(ctx, user.ID, inv.Msg.ChatID)
	if err != nil {
		return fmt.Errorf("remove warning: %w", err)
	}
	if !removed {
		return inv.Respond(ctx, "%s has no warnings here", DisplayName(user))
	}
	rest, err := env.Stores.Warnings.List(ctx, user.ID, inv.Msg.ChatID)
	if err != nil {
		return fmt.Errorf("count warnings: %w", err)
	}
	return inv.Respond(ctx, "removed the oldest warning for %s (%d left)", DisplayName(user), len(rest))
}

func cmdWarns(ctx context.Context, env *Env, inv *Invocation) error {
	user, _, err := inv.TargetUser(ctx, env.T)
	if err != nil {
		return err
	}
	warns, err := env.Stores.Warnings.List(ctx, user.ID, inv.Msg.ChatID)
	if err != nil {
		return fmt.Errorf("list warnings: %w", err)
	}
	if len(warns) == 0 {
		return inv.Respond(ctx, "%s has no warnings here", DisplayName(user))
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d warning(s) for %s:\n", len(warns), DisplayName(user))
	for i, w := range warns {
		reason := w.Reason
		if reason == "" {
			reason = "no reason given"
		}
		fmt.Fprintf(&b, "%d. %s (%s)\n", i+1, reason, w.CreatedAt.Format("2006-01-02"))
	}
	return inv.Respond(ctx, "%s", strings.TrimRight(b.String(), "\n"))
}

// cmdGban bans a user in every group the account has seen, with a bounded
// fan-out, and records the ban so future joins are enforced too.
func cmdGban(ctx context.Context, env *Env, inv *Invocation) error {
	user, reason, err := inv.TargetUser(ctx, env.T)
	if err != nil {
		return err
	}
	marker := reason
	if marker == "" {
		marker = "no reason given"
	}
	if err := env.Stores.Settings.Set(ctx, user.ID, store.KeyGban, marker); err != nil {
		return fmt.Errorf("record global ban: %w", err)
	}
	okCount, failCount, err := fanOutGroups(ctx, env, func(ctx context.Context, chatID int64) error {
		return env.T.Ban(ctx, chatID, user.ID, time.Time{})
	})
	if err != nil {
		return err
	}
	out := fmt.Sprintf("globally banned %s: %d group(s) done, %d failed", DisplayName(user), okCount, failCount)
	if reason != "" {
		out += "\nreason: " + reason
	}
	return inv.Respond(ctx, "%s", out)
}

func cmdUngban(ctx context.Context, env *Env, inv *Invocation) error {
	user, _, err := inv.TargetUser(ctx, env.T)
	if err != nil {
		return err
	}
	if err := env.Stores.Settings.Delete(ctx, user.ID, store.KeyGban); err != nil && !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("clear global ban: %w", err)
	}
	okCount, failCount, err := fanOutGroups(ctx, env, func(ctx context.Context, chatID int64) error {
		return env.T.Unban(ctx, chatID, user.ID)
	})
	if err != nil {
		return err
	}
	return inv.Respond(ctx, "lifted global ban for %s: %d group(s) done, %d failed",
		DisplayName(user), okCount, failCount)
}

// fanOutGroups applies op to every known group with bounded concurrency.
// Per-group failures are counted, not fatal; only listing the groups can
// fail the whole operation.
func fanOutGroups(ctx context.Context, env *Env, op func(context.Context, int64) error) (okCount, failCount int64, err error) {
	groups, err := env.Stores.Chats.Groups(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("list known groups: %w", err)
	}
	var ok, fail atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(gbanConcurrency)
	for _, chat := range groups {
		chat := chat
		g.Go(func() error {
			if err := op(gctx, chat.ID); err != nil {
				fail.Add(1)
				env.Log.Debug("group fan-out step failed", "chat_id", chat.ID, "error", err)
			} else {
				ok.Add(1)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, 0, err
	}
	return ok.Load(), fail.Load(), nil
}

func cmdAntilink(ctx context.Context, env *Env, inv *Invocation) error {
	switch strings.ToLower(inv.Argument("")) {
	case "on":
		if err := env.Stores.Settings.Set(ctx, inv.Msg.ChatID, store.KeyAntilink, "on"); err != nil {
			return fmt.Errorf("enable antilink: %w", err)
		}
		return inv.Respond(ctx, "antilink enabled: links from others get deleted here")
	case "off":
		if err := env.Stores.Settings.Delete(ctx, inv.Msg.ChatID, store.KeyAntilink); err != nil && !errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("disable antilink: %w", err)
		}
		return inv.Respond(ctx, "antilink disabled")
	default:
		return usageError(".antilink on|off")
	}
}

func cmdAntiflood(ctx context.Context, env *Env, inv *Invocation) error {
	fields := inv.Fields()
	if len(fields) == 0 {
		return usageError(".antiflood on|off [threshold]")
	}
	switch strings.ToLower(fields[0]) {
	case "on":
		limit := floodDefaultLimit
		if len(fields) > 1 {
			v, err := strconv.Atoi(fields[1])
			if err != nil || v <= 0 {
				return usageError(".antiflood on [threshold>0]")
			}
			limit = v
		}
		if err := env.Stores.Settings.Set(ctx, inv.Msg.ChatID, store.KeyAntiflood, strconv.Itoa(limit)); err != nil {
			return fmt.Errorf("enable antiflood: %w", err)
		}
		return inv.Respond(ctx, "antiflood enabled: more than %d messages in %s gets a mute",
			limit, HumanSpan(floodWindow))
	case "off":
		if err := env.Stores.Settings.Delete(ctx, inv.Msg.ChatID, store.KeyAntiflood); err != nil && !errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("disable antiflood: %w", err)
		}
		return inv.Respond(ctx, "antiflood disabled")
	default:
		return usageError(".antiflood on|off [threshold]")
	}
}

func cmdSetWelcome(ctx context.Context, env *Env, inv *Invocation) error {
	text, ok := inv.SubjectText()
	if !ok {
		return usageError(".setwelcome <text> ({name} expands to the joiner)")
	}
	if err := env.Stores.Settings.Set(ctx, inv.Msg.ChatID, store.KeyWelcome, text); err != nil {
		return fmt.Errorf("save welcome text: %w", err)
	}
	return inv.Respond(ctx, "welcome message set")
}

func cmdDelWelcome(ctx context.Context, env *Env, inv *Invocation) error {
	if err := env.Stores.Settings.Delete(ctx, inv.Msg.ChatID, store.KeyWelcome); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return inv.Respond(ctx, "no welcome message was set")
		}
		return fmt.Errorf("delete welcome text: %w", err)
	}
	return inv.Respond(ctx, "welcome message removed")
}

// splitSpanAndReason parses an optional leading duration off an argument
// tail: "1h30m spamming" yields (now+90m, "spamming"); a tail with no
// duration is all reason and means permanent.
func splitSpanAndReason(rest string) (until time.Time, reason string) {
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return time.Time{}, ""
	}
	first, tail, _ := strings.Cut(rest, " ")
	if d, err := ParseSpan(first); err == nil {
		return time.Now().Add(d), strings.TrimSpace(tail)
	}
	return time.Time{}, rest
}
