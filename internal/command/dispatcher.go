package command

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/nextlevelbuilder/selfgo/internal/store"
	"github.com/nextlevelbuilder/selfgo/internal/transport"
)

// Dispatcher routes inbound updates: owner-issued prefixed messages become
// command invocations, everything else flows through the passive listeners
// (AFK auto-reply, antilink, antiflood, welcome, global-ban enforcement).
type Dispatcher struct {
	env       *Env
	reg       *Registry
	responder *Responder
}

func NewDispatcher(env *Env, reg *Registry) *Dispatcher {
	return &Dispatcher{
		env:       env,
		reg:       reg,
		responder: NewResponder(env.T, env.Log),
	}
}

// Run consumes the update stream until it closes. Updates are handled
// sequentially so replies land in arrival order; handlers that need to
// wait (HTTP lookups, fan-outs) do their own blocking inside Handle.
func (d *Dispatcher) Run(ctx context.Context, updates <-chan transport.Update) error {
	for u := range updates {
		d.Handle(ctx, u)
	}
	return ctx.Err()
}

// Handle processes one update. Panics in handlers are contained and
// logged; they never take the process down.
func (d *Dispatcher) Handle(ctx context.Context, u transport.Update) {
	defer func() {
		if r := recover(); r != nil {
			d.env.Log.Error("handler panic", "panic", r, "stack", string(debug.Stack()))
		}
	}()

	switch {
	case u.Callback != nil:
		d.handleCallback(ctx, u.Callback)
	case u.Message != nil:
		d.handleMessage(ctx, u.Message)
	}
}

func (d *Dispatcher) handleMessage(ctx context.Context, msg *transport.Message) {
	d.touchChat(ctx, msg)
	d.runPassive(ctx, msg)

	if !msg.FromOwner {
		return
	}
	token, rest, ok := SplitCommand(msg.Text, d.env.Cfg.CommandPrefix())
	if !ok {
		return
	}
	spec, ok := d.reg.Lookup(token)
	if !ok {
		// unknown tokens stay silent so prefixed chatter is not noisy
		d.env.Log.Debug("unmatched command token", "token", token)
		return
	}

	inv := &Invocation{Msg: msg, Args: rest, responder: d.responder}
	start := time.Now()
	err := spec.Handler(ctx, d.env, inv)
	d.env.Log.Info("command handled",
		"command", spec.Name,
		"chat_id", msg.ChatID,
		"duration", time.Since(start),
		"error", err,
	)
	if err != nil {
		if rerr := inv.Respond(ctx, "error: %v", err); rerr != nil {
			d.env.Log.Warn("report command error", "command", spec.Name, "error", rerr)
		}
	}
}

// handleCallback routes inline-button presses. Only the owner may drive
// the menus; other presses are acknowledged and dropped.
func (d *Dispatcher) handleCallback(ctx context.Context, cb *transport.Callback) {
	defer func() {
		if err := d.env.T.AnswerCallback(ctx, cb.ID); err != nil {
			d.env.Log.Debug("answer callback", "error", err)
		}
	}()
	if cb.Sender.ID != d.env.Cfg.OwnerID() {
		return
	}
	if strings.HasPrefix(cb.Data, "help:") {
		if err := d.handleHelpCallback(ctx, cb); err != nil {
			d.env.Log.Warn("help menu navigation", "data", cb.Data, "error", err)
		}
	}
}

func (d *Dispatcher) touchChat(ctx context.Context, msg *transport.Message) {
	err := d.env.Stores.Chats.Touch(ctx, store.KnownChat{
		ID:       msg.ChatID,
		Title:    msg.Chat.Title,
		Kind:     msg.Chat.Kind,
		LastSeen: time.Now(),
	})
	if err != nil {
		d.env.Log.Warn("record known chat", "chat_id", msg.ChatID, "error", err)
	}
}

func (d *Dispatcher) runPassive(ctx context.Context, msg *transport.Message) {
	listeners := []struct {
		name string
		fn   func(context.Context, *Env, *transport.Message) error
	}{
		{"gban", passiveGbanOnJoin},
		{"welcome", passiveWelcome},
		{"antilink", passiveAntilink},
		{"antiflood", passiveAntiflood},
		{"afk", passiveAFK},
	}
	for _, l := range listeners {
		if err := l.fn(ctx, d.env, msg); err != nil {
			d.env.Log.Warn("passive listener", "listener", l.name, "chat_id", msg.ChatID, "error", err)
		}
	}
}

// usageError builds the standard malformed-arguments reply.
func usageError(spec string) error {
	return fmt.Errorf("usage: %s", spec)
}
