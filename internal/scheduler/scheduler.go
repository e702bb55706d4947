// Package scheduler runs the delivery loops for reminders and scheduled
// messages. Both loops poll storage on a fixed interval, deliver due
// items, and settle each item exactly once: success and permanent send
// failures both mark the item delivered, transient failures leave it for
// the next cycle.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/adhocore/gronx"
	"golang.org/x/sync/errgroup"

	"github.com/nextlevelbuilder/selfgo/internal/config"
	"github.com/nextlevelbuilder/selfgo/internal/store"
	"github.com/nextlevelbuilder/selfgo/internal/transport"
)

type Runner struct {
	cfg    *config.Config
	t      transport.Transport
	stores store.Stores
	log    *slog.Logger
}

func New(cfg *config.Config, t transport.Transport, stores store.Stores, log *slog.Logger) *Runner {
	return &Runner{cfg: cfg, t: t, stores: stores, log: log}
}

// Run blocks until ctx is canceled. The two loops are independent: a
// stall in one never delays the other.
func (r *Runner) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return r.poll(ctx, "reminders", r.cfg.ReminderInterval, r.deliverReminders)
	})
	g.Go(func() error {
		return r.poll(ctx, "schedules", r.cfg.ScheduleInterval, r.deliverSchedules)
	})
	return g.Wait()
}

// poll re-reads the interval each cycle so config hot reloads take
// effect without a restart.
func (r *Runner) poll(ctx context.Context, name string, interval func() time.Duration, cycle func(context.Context, time.Time)) error {
	r.log.Debug("delivery loop started", "loop", name, "interval", interval())
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-time.After(interval()):
			cycle(ctx, now)
		}
	}
}

func (r *Runner) deliverReminders(ctx context.Context, now time.Time) {
	due, err := r.stores.Reminders.Due(ctx, now)
	if err != nil {
		r.log.Error("scan due reminders", "error", err)
		return
	}
	for _, rem := range due {
		err := r.sendReminder(ctx, rem)
		if err != nil && !transport.IsPermanent(err) {
			r.log.Warn("reminder delivery failed, will retry", "id", rem.ID, "error", err)
			continue
		}
		if err != nil {
			r.log.Error("reminder delivery failed permanently", "id", rem.ID, "chat_id", rem.ChatID, "error", err)
		}
		flipped, merr := r.stores.Reminders.MarkDelivered(ctx, rem.ID)
		if merr != nil {
			r.log.Error("mark reminder delivered", "id", rem.ID, "error", merr)
		} else if flipped && err == nil {
			r.log.Info("reminder delivered", "id", rem.ID, "chat_id", rem.ChatID)
		}
	}
}

// sendReminder threads the reply to the original command message when it
// still exists, and falls back to a plain send only when that message is
// gone. Other failures surface so the loop can classify and retry them.
func (r *Runner) sendReminder(ctx context.Context, rem store.Reminder) error {
	text := "⏰ reminder: " + rem.Text
	_, err := r.t.Reply(ctx, rem.ChatID, rem.MessageID, text)
	if err == nil {
		return nil
	}
	if !errors.Is(err, transport.ErrNotFound) {
		return fmt.Errorf("reply reminder: %w", err)
	}
	if _, serr := r.t.Send(ctx, rem.ChatID, text); serr != nil {
		return fmt.Errorf("send reminder: %w", serr)
	}
	return nil
}

func (r *Runner) deliverSchedules(ctx context.Context, now time.Time) {
	due, err := r.stores.Schedules.Due(ctx, now)
	if err != nil {
		r.log.Error("scan due schedules", "error", err)
		return
	}
	for _, s := range due {
		_, err := r.t.Send(ctx, s.ChatID, s.Text)
		switch {
		case err == nil && s.CronExpr != "":
			r.rearm(ctx, s, now)
		case err == nil:
			r.settle(ctx, s.ID)
			r.log.Info("scheduled message delivered", "id", s.ID, "chat_id", s.ChatID)
		case transport.IsPermanent(err):
			// the chat is gone for good; recurring or not, stop trying
			r.log.Error("scheduled message undeliverable", "id", s.ID, "chat_id", s.ChatID, "error", err)
			r.settle(ctx, s.ID)
		default:
			r.log.Warn("scheduled message delivery failed, will retry", "id", s.ID, "error", err)
		}
	}
}

func (r *Runner) settle(ctx context.Context, id string) {
	if _, err := r.stores.Schedules.MarkDelivered(ctx, id); err != nil {
		r.log.Error("mark schedule delivered", "id", id, "error", err)
	}
}

func (r *Runner) rearm(ctx context.Context, s store.ScheduledMessage, now time.Time) {
	next, err := gronx.NextTickAfter(s.CronExpr, now, false)
	if err != nil {
		r.log.Error("compute next cron tick, disabling schedule", "id", s.ID, "expr", s.CronExpr, "error", err)
		r.settle(ctx, s.ID)
		return
	}
	if err := r.stores.Schedules.Rearm(ctx, s.ID, next); err != nil {
		r.log.Error("rearm recurring schedule", "id", s.ID, "error", err)
		return
	}
	r.log.Info("recurring schedule delivered", "id", s.ID, "chat_id", s.ChatID, "next", next)
}
