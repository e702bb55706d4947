package telegram

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mymmrac/telego"
	"github.com/mymmrac/telego/telegoapi"
	tu "github.com/mymmrac/telego/telegoutil"

	"github.com/nextlevelbuilder/selfgo/internal/transport"
)

// apiCall paces the request, retries exactly once on a rate-limit signal
// (sleeping the indicated duration) and classifies the final error.
func (t *Transport) apiCall(ctx context.Context, op string, fn func() error) error {
	if err := t.limiter.Wait(ctx); err != nil {
		return err
	}
	err := fn()
	if err == nil {
		return nil
	}
	if wait, ok := retryAfter(err); ok {
		slog.Warn("telegram rate limited", "op", op, "retry_after", wait)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
		err = fn()
	}
	return classify(op, err)
}

// retryAfter extracts the "please wait N seconds" signal, if present.
func retryAfter(err error) (time.Duration, bool) {
	var apiErr *telegoapi.Error
	if errors.As(err, &apiErr) && apiErr.Parameters != nil && apiErr.Parameters.RetryAfter > 0 {
		return time.Duration(apiErr.Parameters.RetryAfter) * time.Second, true
	}
	return 0, false
}

// classify maps raw API errors onto the transport sentinels the core
// branches on. Unrecognized errors pass through wrapped.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var apiErr *telegoapi.Error
	if !errors.As(err, &apiErr) {
		return fmt.Errorf("%s: %w", op, err)
	}
	desc := strings.ToLower(apiErr.Description)
	switch {
	case apiErr.ErrorCode == 403:
		return fmt.Errorf("%s: %s: %w", op, apiErr.Description, transport.ErrForbidden)
	case strings.Contains(desc, "message can't be edited"),
		strings.Contains(desc, "message to edit not found"):
		return fmt.Errorf("%s: %w", op, transport.ErrCannotEdit)
	case strings.Contains(desc, "not found"):
		return fmt.Errorf("%s: %s: %w", op, apiErr.Description, transport.ErrNotFound)
	case strings.Contains(desc, "not enough rights"),
		strings.Contains(desc, "chat_admin_required"),
		strings.Contains(desc, "need administrator rights"):
		return fmt.Errorf("%s: %s: %w", op, apiErr.Description, transport.ErrNotAdmin)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func (t *Transport) Send(ctx context.Context, chatID int64, text string) (int, error) {
	var id int
	err := t.apiCall(ctx, "send message", func() error {
		sent, err := t.bot.SendMessage(ctx, tu.Message(tu.ID(chatID), text))
		if err == nil {
			id = sent.MessageID
		}
		return err
	})
	return id, err
}

func (t *Transport) Reply(ctx context.Context, chatID int64, replyTo int, text string) (int, error) {
	var id int
	err := t.apiCall(ctx, "reply message", func() error {
		params := tu.Message(tu.ID(chatID), text)
		params.ReplyParameters = &telego.ReplyParameters{MessageID: replyTo}
		sent, err := t.bot.SendMessage(ctx, params)
		if err == nil {
			id = sent.MessageID
		}
		return err
	})
	return id, err
}

func (t *Transport) Edit(ctx context.Context, chatID int64, messageID int, text string) error {
	return t.apiCall(ctx, "edit message", func() error {
		_, err := t.bot.EditMessageText(ctx, &telego.EditMessageTextParams{
			ChatID:    tu.ID(chatID),
			MessageID: messageID,
			Text:      text,
		})
		return err
	})
}

func (t *Transport) SendWithButtons(ctx context.Context, chatID int64, text string, rows [][]transport.Button) (int, error) {
	var id int
	err := t.apiCall(ctx, "send message with buttons", func() error {
		params := tu.Message(tu.ID(chatID), text)
		params.ReplyMarkup = buildKeyboard(rows)
		sent, err := t.bot.SendMessage(ctx, params)
		if err == nil {
			id = sent.MessageID
		}
		return err
	})
	return id, err
}

func (t *Transport) EditWithButtons(ctx context.Context, chatID int64, messageID int, text string, rows [][]transport.Button) error {
	return t.apiCall(ctx, "edit message with buttons", func() error {
		_, err := t.bot.EditMessageText(ctx, &telego.EditMessageTextParams{
			ChatID:      tu.ID(chatID),
			MessageID:   messageID,
			Text:        text,
			ReplyMarkup: buildKeyboard(rows),
		})
		return err
	})
}

func (t *Transport) AnswerCallback(ctx context.Context, callbackID string) error {
	return t.apiCall(ctx, "answer callback", func() error {
		return t.bot.AnswerCallbackQuery(ctx, &telego.AnswerCallbackQueryParams{
			CallbackQueryID: callbackID,
		})
	})
}

func (t *Transport) Delete(ctx context.Context, chatID int64, messageIDs ...int) error {
	if len(messageIDs) == 0 {
		return nil
	}
	return t.apiCall(ctx, "delete messages", func() error {
		return t.bot.DeleteMessages(ctx, &telego.DeleteMessagesParams{
			ChatID:     tu.ID(chatID),
			MessageIDs: messageIDs,
		})
	})
}

func (t *Transport) SendTyping(ctx context.Context, chatID int64) error {
	return t.apiCall(ctx, "send typing", func() error {
		return t.bot.SendChatAction(ctx, &telego.SendChatActionParams{
			ChatID: tu.ID(chatID),
			Action: telego.ChatActionTyping,
		})
	})
}

func (t *Transport) SendDocument(ctx context.Context, chatID int64, name string, data []byte, caption string) error {
	return t.apiCall(ctx, "send document", func() error {
		params := tu.Document(tu.ID(chatID), tu.FileFromReader(bytes.NewReader(data), name))
		params.Caption = caption
		_, err := t.bot.SendDocument(ctx, params)
		return err
	})
}

func (t *Transport) SendPhoto(ctx context.Context, chatID int64, name string, data []byte, caption string) error {
	return t.apiCall(ctx, "send photo", func() error {
		params := tu.Photo(tu.ID(chatID), tu.FileFromReader(bytes.NewReader(data), name))
		params.Caption = caption
		_, err := t.bot.SendPhoto(ctx, params)
		return err
	})
}

// DownloadPhoto fetches the largest photo size attached to a message.
func (t *Transport) DownloadPhoto(ctx context.Context, msg *transport.Message) ([]byte, error) {
	if msg == nil || !msg.HasPhoto {
		return nil, fmt.Errorf("download photo: %w", transport.ErrNotFound)
	}

	fileID := msg.PhotoFileID
	if fileID == "" {
		return nil, fmt.Errorf("download photo: %w", transport.ErrNotFound)
	}

	var file *telego.File
	err := t.apiCall(ctx, "get file", func() error {
		f, err := t.bot.GetFile(ctx, &telego.GetFileParams{FileID: fileID})
		if err == nil {
			file = f
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.bot.FileDownloadURL(file.FilePath), nil)
	if err != nil {
		return nil, fmt.Errorf("download photo: %w", err)
	}
	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download photo: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download photo: unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func buildKeyboard(rows [][]transport.Button) *telego.InlineKeyboardMarkup {
	if len(rows) == 0 {
		return nil
	}
	markup := &telego.InlineKeyboardMarkup{}
	for _, row := range rows {
		var btns []telego.InlineKeyboardButton
		for _, b := range row {
			btns = append(btns, telego.InlineKeyboardButton{
				Text:         b.Label,
				CallbackData: b.Data,
			})
		}
		markup.InlineKeyboard = append(markup.InlineKeyboard, btns)
	}
	return markup
}
