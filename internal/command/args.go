// Package command implements the dispatch pipeline: prefix matching, the
// permission gate, argument resolution, the handler registry, and the
// handler bodies themselves.
package command

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/nextlevelbuilder/selfgo/internal/transport"
)

// SplitCommand checks text for a leading prefix and splits off the command
// token. The token must be the whole first word: with prefix "." the input
// ".ping pong" yields ("ping", "pong", true) while ".pingx" yields
// ("pingx", "", true) and only fails to match at the registry, not here.
// Text without the prefix, or the bare prefix alone, does not match.
func SplitCommand(text, prefix string) (token, rest string, ok bool) {
	if prefix == "" || !strings.HasPrefix(text, prefix) {
		return "", "", false
	}
	body := text[len(prefix):]
	if body == "" || body[0] == ' ' {
		return "", "", false
	}
	token, rest, _ = strings.Cut(body, " ")
	return token, strings.TrimSpace(rest), true
}

// Invocation carries one matched command through the gate and handler.
type Invocation struct {
	Msg  *transport.Message
	Args string // raw argument tail, trimmed

	responder *Responder
}

// Argument returns the raw argument string, or the given fallback when the
// command was invoked bare.
func (inv *Invocation) Argument(fallback string) string {
	if inv.Args == "" {
		return fallback
	}
	return inv.Args
}

// Fields splits the argument tail on whitespace.
func (inv *Invocation) Fields() []string {
	return strings.Fields(inv.Args)
}

// ReplyText returns the text of the replied-to message, or "" when the
// command was not a reply.
func (inv *Invocation) ReplyText() string {
	if inv.Msg.ReplyTo == nil {
		return ""
	}
	return inv.Msg.ReplyTo.Text
}

// SubjectText resolves the text a transform command operates on: the
// argument if present, else the replied-to message's text.
func (inv *Invocation) SubjectText() (string, bool) {
	if inv.Args != "" {
		return inv.Args, true
	}
	if t := inv.ReplyText(); t != "" {
		return t, true
	}
	return "", false
}

// TargetUser resolves the user a moderation command acts on, in priority
// order: the replied-to message's sender, then a numeric id argument, then
// an @username argument resolved through the transport. The remaining
// argument tail (reason, duration) is returned alongside.
func (inv *Invocation) TargetUser(ctx context.Context, t transport.Transport) (transport.User, string, error) {
	if inv.Msg.ReplyTo != nil {
		return inv.Msg.ReplyTo.Sender, inv.Args, nil
	}
	fields := inv.Fields()
	if len(fields) == 0 {
		return transport.User{}, "", fmt.Errorf("reply to a message or pass a user id or @username")
	}
	rest := strings.TrimSpace(strings.TrimPrefix(inv.Args, fields[0]))
	if id, err := strconv.ParseInt(fields[0], 10, 64); err == nil {
		return transport.User{ID: id}, rest, nil
	}
	handle := strings.TrimPrefix(fields[0], "@")
	if handle == fields[0] {
		return transport.User{}, "", fmt.Errorf("%q is not a user id or @username", fields[0])
	}
	user, err := t.ResolveUser(ctx, handle)
	if err != nil {
		return transport.User{}, "", fmt.Errorf("resolve @%s: %w", handle, err)
	}
	return user, rest, nil
}

// DisplayName renders a user for replies: first name, else @username, else
// the bare id.
func DisplayName(u transport.User) string {
	switch {
	case u.FirstName != "":
		return u.FirstName
	case u.Username != "":
		return "@" + u.Username
	default:
		return strconv.FormatInt(u.ID, 10)
	}
}
