// Package telegram implements transport.Transport over the Telegram Bot API
// using long polling.
package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mymmrac/telego"
	"golang.org/x/time/rate"

	"github.com/nextlevelbuilder/selfgo/internal/config"
	"github.com/nextlevelbuilder/selfgo/internal/transport"
)

// Transport connects to Telegram via the Bot API using long polling.
type Transport struct {
	bot           *telego.Bot
	ownerID       int64
	ownerUsername string
	limiter       *rate.Limiter
	httpClient    *http.Client
}

// New creates a Telegram transport from config.
func New(cfg *config.Config) (*Transport, error) {
	var opts []telego.BotOption

	httpClient := &http.Client{Timeout: 30 * time.Second}
	if proxy := cfg.Telegram.Proxy; proxy != "" {
		proxyURL, parseErr := url.Parse(proxy)
		if parseErr != nil {
			return nil, fmt.Errorf("invalid proxy URL %q: %w", proxy, parseErr)
		}
		httpClient.Transport = &http.Transport{Proxy: http.ProxyURL(proxyURL)}
		opts = append(opts, telego.WithHTTPClient(httpClient))
	}

	bot, err := telego.NewBot(cfg.Telegram.Token, opts...)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}

	return &Transport{
		bot:           bot,
		ownerID:       cfg.Owner.ID,
		ownerUsername: strings.TrimPrefix(cfg.Owner.Username, "@"),
		// Outbound pacing keeps delivery bursts under the API's global
		// send limit (~30 msg/s); bursts of 5 absorb interactive traffic.
		limiter:    rate.NewLimiter(rate.Every(50*time.Millisecond), 5),
		httpClient: httpClient,
	}, nil
}

// Me returns the authenticated bot identity. This is the account whose
// admin rights matter for moderation calls; the configured owner is a
// separate identity used only for dispatch gating.
func (t *Transport) Me() transport.User {
	return transport.User{ID: t.bot.ID(), Username: t.bot.Username(), IsBot: true}
}

// Updates begins long polling and converts raw updates to core types.
// The returned channel closes when ctx is cancelled.
func (t *Transport) Updates(ctx context.Context) (<-chan transport.Update, error) {
	raw, err := t.bot.UpdatesViaLongPolling(ctx, &telego.GetUpdatesParams{
		Timeout: 30,
		AllowedUpdates: []string{
			"message",
			"callback_query",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("start long polling: %w", err)
	}
	slog.Info("telegram connected", "username", t.bot.Username())

	out := make(chan transport.Update)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case u, ok := <-raw:
				if !ok {
					slog.Info("telegram updates channel closed")
					return
				}
				var conv transport.Update
				switch {
				case u.Message != nil:
					conv.Message = t.convertMessage(u.Message)
				case u.CallbackQuery != nil:
					conv.Callback = t.convertCallback(u.CallbackQuery)
				default:
					slog.Debug("telegram update skipped (no message)", "update_id", u.UpdateID)
					continue
				}
				select {
				case <-ctx.Done():
					return
				case out <- conv:
				}
			}
		}
	}()
	return out, nil
}

// Close stops the transport. Long polling stops with the Updates context,
// so there is nothing to tear down beyond logging.
func (t *Transport) Close(_ context.Context) error {
	slog.Info("telegram transport stopped")
	return nil
}

func (t *Transport) convertMessage(m *telego.Message) *transport.Message {
	if m == nil {
		return nil
	}
	msg := &transport.Message{
		ID:     m.MessageID,
		ChatID: m.Chat.ID,
		Chat: transport.Chat{
			ID:    m.Chat.ID,
			Title: m.Chat.Title,
			Kind:  m.Chat.Type,
		},
		Text:     m.Text,
		HasPhoto: len(m.Photo) > 0,
	}
	if n := len(m.Photo); n > 0 {
		// Photo sizes arrive smallest first; keep the largest for downloads.
		msg.PhotoFileID = m.Photo[n-1].FileID
	}
	if msg.Text == "" && m.Caption != "" {
		msg.Text = m.Caption
	}
	if m.From != nil {
		msg.Sender = convertUser(*m.From)
		msg.FromOwner = m.From.ID == t.ownerID
	}
	for _, u := range m.NewChatMembers {
		msg.NewMembers = append(msg.NewMembers, convertUser(u))
	}
	if m.ReplyToMessage != nil {
		msg.ReplyTo = t.convertMessage(m.ReplyToMessage)
	}
	msg.Mentioned = t.mentionsOwner(m)
	return msg
}

func (t *Transport) convertCallback(q *telego.CallbackQuery) *transport.Callback {
	cb := &transport.Callback{
		ID:     q.ID,
		Sender: convertUser(q.From),
		Data:   q.Data,
	}
	if q.Message != nil {
		if acc, ok := q.Message.(*telego.Message); ok {
			cb.ChatID = acc.Chat.ID
			cb.MessageID = acc.MessageID
		}
	}
	return cb
}

// mentionsOwner reports whether the message mentions or replies to the owner.
func (t *Transport) mentionsOwner(m *telego.Message) bool {
	if m.ReplyToMessage != nil && m.ReplyToMessage.From != nil &&
		m.ReplyToMessage.From.ID == t.ownerID {
		return true
	}
	if t.ownerUsername == "" {
		return false
	}
	needle := "@" + strings.ToLower(t.ownerUsername)
	return strings.Contains(strings.ToLower(m.Text), needle)
}

func convertUser(u telego.User) transport.User {
	return transport.User{
		ID:        u.ID,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		IsBot:     u.IsBot,
	}
}
