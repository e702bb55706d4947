package command

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nextlevelbuilder/selfgo/internal/transport"
)

// requireGroup wraps a handler so it only runs in multi-party chats.
func requireGroup(h Handler) Handler {
	return func(ctx context.Context, env *Env, inv *Invocation) error {
		if !inv.Msg.Chat.IsGroup() {
			return inv.Respond(ctx, "this command only works in groups")
		}
		return h(ctx, env, inv)
	}
}

// requireCaps wraps a handler so it only runs in groups where the acting
// account holds every listed capability. The capability check happens
// before the handler body; a handler behind this gate can assume the
// rights are present, though the transport may still race a demotion.
func requireCaps(h Handler, caps ...transport.Capability) Handler {
	return requireGroup(func(ctx context.Context, env *Env, inv *Invocation) error {
		member, err := env.T.Member(ctx, inv.Msg.ChatID, env.T.Me().ID)
		if err != nil {
			if errors.Is(err, transport.ErrNotAdmin) {
				return inv.Respond(ctx, "I need to be an admin here")
			}
			return fmt.Errorf("check admin status: %w", err)
		}
		var missing []string
		for _, c := range caps {
			if !member.Has(c) {
				missing = append(missing, string(c))
			}
		}
		if len(missing) > 0 {
			return inv.Respond(ctx, "missing admin rights: %s", strings.Join(missing, ", "))
		}
		return h(ctx, env, inv)
	})
}
