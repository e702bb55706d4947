package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	"strings"
	"time"

	"github.com/adhocore/gronx"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	"github.com/nextlevelbuilder/selfgo/internal/store"
)

func cmdAFK(ctx context.Context, env *Env, inv *Invocation) error {
	arg := inv.Argument("")
	now := time.Now()
	ownerID := env.Cfg.OwnerID()

	if strings.EqualFold(arg, "off") {
		if !env.AFK.Active() {
			return inv.Respond(ctx, "you were not AFK")
		}
		_, _, since := env.AFK.Status()
		env.AFK.Deactivate()
		if err := env.Stores.AFK.Put(ctx, store.AFKState{OwnerID: ownerID}); err != nil {
			env.Log.Warn("persist afk state", "error", err)
		}
		return inv.Respond(ctx, "welcome back, you were away for %s", HumanSpan(now.Sub(since)))
	}

	env.AFK.Activate(arg, now)
	if err := env.Stores.AFK.Put(ctx, store.AFKState{
		OwnerID:   ownerID,
		Active:    true,
		Reason:    arg,
		StartedAt: now,
	}); err != nil {
		env.Log.Warn("persist afk state", "error", err)
	}
	if arg == "" {
		return inv.Respond(ctx, "AFK mode on")
	}
	return inv.Respond(ctx, "AFK mode on: %s", arg)
}

func cmdRemind(ctx context.Context, env *Env, inv *Invocation) error {
	fields := inv.Fields()
	if len(fields) < 2 {
		return usageError(".remind <duration> <text>  (e.g. .remind 1h30m stretch)")
	}
	d, err := ParseSpan(fields[0])
	if err != nil {
		return fmt.Errorf("bad duration %q: %w", fields[0], err)
	}
	text := strings.TrimSpace(strings.TrimPrefix(inv.Args, fields[0]))
	due := time.Now().Add(d)
	r := store.Reminder{
		ID:        uuid.Must(uuid.NewV7()).String(),
		OwnerID:   env.Cfg.OwnerID(),
		ChatID:    inv.Msg.ChatID,
		MessageID: inv.Msg.ID,
		DueAt:     due,
		Text:      text,
	}
	if err := env.Stores.Reminders.Create(ctx, r); err != nil {
		return fmt.Errorf("save reminder: %w", err)
	}
	return inv.Respond(ctx, "will remind you in %s (%s)", HumanSpan(d), due.Format("2006-01-02 15:04"))
}

func cmdNote(ctx context.Context, env *Env, inv *Invocation) error {
	fields := inv.Fields()
	if len(fields) == 0 {
		return usageError(".note <name> <content>  (or reply with .note <name>)")
	}
	name := strings.ToLower(fields[0])
	content := strings.TrimSpace(strings.TrimPrefix(inv.Args, fields[0]))
	if content == "" {
		content = inv.ReplyText()
	}
	if content == "" {
		return usageError(".note <name> <content>  (or reply with .note <name>)")
	}
	n := store.Note{OwnerID: env.Cfg.OwnerID(), Name: name, Content: content}
	if err := env.Stores.Notes.Put(ctx, n); err != nil {
		return fmt.Errorf("save note: %w", err)
	}
	return inv.Respond(ctx, "note %q saved", name)
}

func cmdGetNote(ctx context.Context, env *Env, inv *Invocation) error {
	name := strings.ToLower(inv.Argument(""))
	if name == "" {
		return usageError(".getnote <name>")
	}
	n, err := env.Stores.Notes.Get(ctx, env.Cfg.OwnerID(), name)
	if errors.Is(err, store.ErrNotFound) {
		return inv.Respond(ctx, "no note named %q", name)
	}
	if err != nil {
		return fmt.Errorf("load note: %w", err)
	}
	return inv.Respond(ctx, "%s", n.Content)
}

func cmdDelNote(ctx context.Context, env *Env, inv *Invocation) error {
	name := strings.ToLower(inv.Argument(""))
	if name == "" {
		return usageError(".delnote <name>")
	}
	err := env.Stores.Notes.Delete(ctx, env.Cfg.OwnerID(), name)
	if errors.Is(err, store.ErrNotFound) {
		return inv.Respond(ctx, "no note named %q", name)
	}
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	return inv.Respond(ctx, "note %q deleted", name)
}

func cmdAllNotes(ctx context.Context, env *Env, inv *Invocation) error {
	notes, err := env.Stores.Notes.List(ctx, env.Cfg.OwnerID())
	if err != nil {
		return fmt.Errorf("list notes: %w", err)
	}
	if len(notes) == 0 {
		return inv.Respond(ctx, "no notes saved")
	}
	names := make([]string, len(notes))
	for i, n := range notes {
		names[i] = "• " + n.Name
	}
	return inv.Respond(ctx, "%d note(s):\n%s", len(notes), strings.Join(names, "\n"))
}

func cmdSchedule(ctx context.Context, env *Env, inv *Invocation) error {
	fields := inv.Fields()
	if len(fields) < 2 {
		return usageError(`.schedule <duration> <text>  or  .schedule cron "<expr>" <text>`)
	}

	if strings.EqualFold(fields[0], "cron") {
		return scheduleCron(ctx, env, inv)
	}

	d, err := ParseSpan(fields[0])
	if err != nil {
		return fmt.Errorf("bad duration %q: %w", fields[0], err)
	}
	text := strings.TrimSpace(strings.TrimPrefix(inv.Args, fields[0]))
	due := time.Now().Add(d)
	s := store.ScheduledMessage{
		ID:     uuid.Must(uuid.NewV7()).String(),
		ChatID: inv.Msg.ChatID,
		DueAt:  due,
		Text:   text,
	}
	if err := env.Stores.Schedules.Create(ctx, s); err != nil {
		return fmt.Errorf("save schedule: %w", err)
	}
	return inv.Respond(ctx, "scheduled for %s (in %s)", due.Format("2006-01-02 15:04"), HumanSpan(d))
}

func scheduleCron(ctx context.Context, env *Env, inv *Invocation) error {
	rest := strings.TrimSpace(strings.TrimPrefix(inv.Args, "cron"))
	expr, text, err := cutQuoted(rest)
	if err != nil {
		return usageError(`.schedule cron "<expr>" <text>  (e.g. .schedule cron "0 9 * * 1" weekly standup)`)
	}
	if !gronx.New().IsValid(expr) {
		return fmt.Errorf("invalid cron expression %q", expr)
	}
	if text == "" {
		return usageError(`.schedule cron "<expr>" <text>`)
	}
	next, err := gronx.NextTick(expr, false)
	if err != nil {
		return fmt.Errorf("compute next run of %q: %w", expr, err)
	}
	s := store.ScheduledMessage{
		ID:       uuid.Must(uuid.NewV7()).String(),
		ChatID:   inv.Msg.ChatID,
		DueAt:    next,
		Text:     text,
		CronExpr: expr,
	}
	if err := env.Stores.Schedules.Create(ctx, s); err != nil {
		return fmt.Errorf("save schedule: %w", err)
	}
	return inv.Respond(ctx, "recurring schedule saved, next run %s", next.Format("2006-01-02 15:04"))
}

// cutQuoted splits `"quoted part" tail` into the quoted part and the tail.
func cutQuoted(s string) (quoted, tail string, err error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 || s[0] != '"' {
		return "", "", fmt.Errorf("expected a quoted section")
	}
	end := strings.IndexByte(s[1:], '"')
	if end < 0 {
		return "", "", fmt.Errorf("unterminated quote")
	}
	return s[1 : 1+end], strings.TrimSpace(s[end+2:]), nil
}

func cmdImgEdit(ctx context.Context, env *Env, inv *Invocation) error {
	filter := strings.ToLower(inv.Argument(""))
	if filter == "" || inv.Msg.ReplyTo == nil || !inv.Msg.ReplyTo.HasPhoto {
		return usageError(".imgedit gray|blur|flip|rotate90  (reply to a photo)")
	}
	raw, err := env.T.DownloadPhoto(ctx, inv.Msg.ReplyTo)
	if err != nil {
		return fmt.Errorf("download photo: %w", err)
	}
	src, err := imaging.Decode(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("decode photo: %w", err)
	}
	var out *image.NRGBA
	switch filter {
	case "gray", "grey":
		out = imaging.Grayscale(src)
	case "blur":
		out = imaging.Blur(src, 5.0)
	case "flip":
		out = imaging.FlipH(src)
	case "rotate90":
		out = imaging.Rotate90(src)
	default:
		return usageError(".imgedit gray|blur|flip|rotate90")
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, out, imaging.PNG); err != nil {
		return fmt.Errorf("encode edited photo: %w", err)
	}
	if err := env.T.SendPhoto(ctx, inv.Msg.ChatID, "edited.png", buf.Bytes(), filter); err != nil {
		return fmt.Errorf("send edited photo: %w", err)
	}
	return env.T.Delete(ctx, inv.Msg.ChatID, inv.Msg.ID)
}

func cmdQR(ctx context.Context, env *Env, inv *Invocation) error {
	text, ok := inv.SubjectText()
	if !ok {
		return usageError(".qr <text|reply>")
	}
	png, err := env.QR.Encode(ctx, text)
	if err != nil {
		return err
	}
	if err := env.T.SendPhoto(ctx, inv.Msg.ChatID, "qr.png", png, ""); err != nil {
		return fmt.Errorf("send qr code: %w", err)
	}
	return env.T.Delete(ctx, inv.Msg.ChatID, inv.Msg.ID)
}
