package command

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"
)

func cmdPing(ctx context.Context, env *Env, inv *Invocation) error {
	start := time.Now()
	if err := inv.Respond(ctx, "pong"); err != nil {
		return err
	}
	return inv.Respond(ctx, "pong (%d ms)", time.Since(start).Milliseconds())
}

func cmdEcho(ctx context.Context, env *Env, inv *Invocation) error {
	text, ok := inv.SubjectText()
	if !ok {
		return usageError(".echo <text>")
	}
	return inv.Respond(ctx, "%s", text)
}

func cmdType(ctx context.Context, env *Env, inv *Invocation) error {
	text, ok := inv.SubjectText()
	if !ok {
		return usageError(".type <text>")
	}
	if err := env.T.SendTyping(ctx, inv.Msg.ChatID); err != nil {
		env.Log.Debug("send typing action", "error", err)
	}
	// reveal the text a few characters at a time, like slow typing
	var shown strings.Builder
	runes := []rune(text)
	step := len(runes)/6 + 1
	for i := 0; i < len(runes); i += step {
		end := i + step
		if end > len(runes) {
			end = len(runes)
		}
		shown.WriteString(string(runes[i:end]))
		if err := inv.Respond(ctx, "%s▌", shown.String()); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(300 * time.Millisecond):
		}
	}
	return inv.Respond(ctx, "%s", text)
}

func cmdID(ctx context.Context, env *Env, inv *Invocation) error {
	var b strings.Builder
	fmt.Fprintf(&b, "chat id: %d\n", inv.Msg.ChatID)
	fmt.Fprintf(&b, "message id: %d\n", inv.Msg.ID)
	if r := inv.Msg.ReplyTo; r != nil {
		fmt.Fprintf(&b, "replied message id: %d\n", r.ID)
		fmt.Fprintf(&b, "replied user: %s (id %d)\n", DisplayName(r.Sender), r.Sender.ID)
	} else {
		fmt.Fprintf(&b, "your id: %d\n", inv.Msg.Sender.ID)
	}
	return inv.Respond(ctx, "%s", strings.TrimRight(b.String(), "\n"))
}

func cmdCalc(ctx context.Context, env *Env, inv *Invocation) error {
	expr, ok := inv.SubjectText()
	if !ok {
		return usageError(".calc <expression>")
	}
	v, err := EvalExpr(expr)
	if err != nil {
		return fmt.Errorf("evaluate %q: %w", expr, err)
	}
	return inv.Respond(ctx, "%s = %s", strings.TrimSpace(expr), FormatCalc(v))
}

func cmdUptime(ctx context.Context, env *Env, inv *Invocation) error {
	return inv.Respond(ctx, "up for %s", HumanSpan(time.Since(env.StartedAt)))
}

func cmdLogs(ctx context.Context, env *Env, inv *Invocation) error {
	if env.LogPath == "" {
		return inv.Respond(ctx, "file logging is not enabled")
	}
	data, err := os.ReadFile(env.LogPath)
	if err != nil {
		return fmt.Errorf("read log file: %w", err)
	}
	if len(data) == 0 {
		return inv.Respond(ctx, "log file is empty")
	}
	if err := env.T.SendDocument(ctx, inv.Msg.ChatID, "selfgo.log", data, "current logs"); err != nil {
		return fmt.Errorf("upload log file: %w", err)
	}
	return env.T.Delete(ctx, inv.Msg.ChatID, inv.Msg.ID)
}

func cmdRestart(ctx context.Context, env *Env, inv *Invocation) error {
	if err := inv.Respond(ctx, "restarting"); err != nil {
		return err
	}
	env.Restart()
	return nil
}
