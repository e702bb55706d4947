package command

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/nextlevelbuilder/selfgo/internal/transport"
)

// Responder delivers a handler's result. The primary path edits the command
// message in place; when the transport refuses the edit (too old, or not
// the account's own message) it falls back to a reply. Results over the
// transport's single-message limit are uploaded as a text document and the
// command message is deleted.
type Responder struct {
	t   transport.Transport
	log *slog.Logger
}

func NewResponder(t transport.Transport, log *slog.Logger) *Responder {
	return &Responder{t: t, log: log}
}

// Respond writes text as the visible outcome of the invocation.
func (r *Responder) Respond(ctx context.Context, msg *transport.Message, text string) error {
	if text == "" {
		text = "done"
	}
	if utf8.RuneCountInString(text) > transport.MaxMessageRunes {
		return r.asDocument(ctx, msg, text)
	}
	err := r.t.Edit(ctx, msg.ChatID, msg.ID, text)
	if errors.Is(err, transport.ErrCannotEdit) {
		_, err = r.t.Reply(ctx, msg.ChatID, msg.ID, text)
	}
	return err
}

func (r *Responder) asDocument(ctx context.Context, msg *transport.Message, text string) error {
	if err := r.t.SendDocument(ctx, msg.ChatID, "output.txt", []byte(text), "output too long for a message"); err != nil {
		return fmt.Errorf("upload oversized result: %w", err)
	}
	if err := r.t.Delete(ctx, msg.ChatID, msg.ID); err != nil {
		r.log.Debug("delete command message after document upload", "error", err)
	}
	return nil
}

// Respond is the handler-facing shorthand.
func (inv *Invocation) Respond(ctx context.Context, format string, args ...any) error {
	text := format
	if len(args) > 0 {
		text = fmt.Sprintf(format, args...)
	}
	return inv.responder.Respond(ctx, inv.Msg, text)
}
