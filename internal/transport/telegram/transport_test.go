package telegram

import (
	"errors"
	"testing"
	"time"

	"github.com/mymmrac/telego"
	"github.com/mymmrac/telego/telegoapi"
	"golang.org/x/time/rate"

	"github.com/nextlevelbuilder/selfgo/internal/transport"
)

func testTransport() *Transport {
	return &Transport{
		ownerID:       1,
		ownerUsername: "owner",
		limiter:       rate.NewLimiter(rate.Inf, 1),
	}
}

func TestConvertMessage(t *testing.T) {
	tp := testTransport()
	raw := &telego.Message{
		MessageID: 50,
		Chat:      telego.Chat{ID: -100, Type: "supergroup", Title: "test"},
		From:      &telego.User{ID: 1, Username: "owner", FirstName: "Me"},
		Text:      ".ping",
		ReplyToMessage: &telego.Message{
			MessageID: 49,
			Chat:      telego.Chat{ID: -100, Type: "supergroup"},
			From:      &telego.User{ID: 7, FirstName: "Sam"},
			Text:      "hello",
		},
	}

	msg := tp.convertMessage(raw)
	if msg.ID != 50 || msg.ChatID != -100 || !msg.Chat.IsGroup() {
		t.Errorf("msg = %+v", msg)
	}
	if !msg.FromOwner {
		t.Error("owner message must be flagged")
	}
	if msg.ReplyTo == nil || msg.ReplyTo.Sender.ID != 7 || msg.ReplyTo.Text != "hello" {
		t.Errorf("replyTo = %+v", msg.ReplyTo)
	}
}

func TestConvertMessagePhotoAndCaption(t *testing.T) {
	tp := testTransport()
	raw := &telego.Message{
		MessageID: 51,
		Chat:      telego.Chat{ID: 42, Type: "private"},
		From:      &telego.User{ID: 7},
		Caption:   "look at this",
		Photo: []telego.PhotoSize{
			{FileID: "small", Width: 90},
			{FileID: "large", Width: 1280},
		},
	}

	msg := tp.convertMessage(raw)
	if !msg.HasPhoto || msg.PhotoFileID != "large" {
		t.Errorf("photo handling = %+v", msg)
	}
	if msg.Text != "look at this" {
		t.Errorf("caption should become text, got %q", msg.Text)
	}
	if msg.FromOwner {
		t.Error("stranger message must not be flagged as owner")
	}
}

func TestMentionsOwner(t *testing.T) {
	tp := testTransport()

	byUsername := &telego.Message{Text: "hey @Owner, ping"}
	if !tp.mentionsOwner(byUsername) {
		t.Error("case-insensitive @username mention must count")
	}

	byReply := &telego.Message{
		Text:           "what about this",
		ReplyToMessage: &telego.Message{From: &telego.User{ID: 1}},
	}
	if !tp.mentionsOwner(byReply) {
		t.Error("replying to the owner must count as a mention")
	}

	neither := &telego.Message{Text: "unrelated chatter"}
	if tp.mentionsOwner(neither) {
		t.Error("plain chatter is not a mention")
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		desc string
		code int
		want error
	}{
		{"Forbidden: bot was kicked from the supergroup chat", 403, transport.ErrForbidden},
		{"Bad Request: message can't be edited", 400, transport.ErrCannotEdit},
		{"Bad Request: message to edit not found", 400, transport.ErrCannotEdit},
		{"Bad Request: chat not found", 400, transport.ErrNotFound},
		{"Bad Request: not enough rights to restrict/unrestrict chat member", 400, transport.ErrNotAdmin},
		{"Bad Request: CHAT_ADMIN_REQUIRED", 400, transport.ErrNotAdmin},
	}
	for _, c := range cases {
		err := classify("test", &telegoapi.Error{ErrorCode: c.code, Description: c.desc})
		if !errors.Is(err, c.want) {
			t.Errorf("classify(%q) = %v, want %v", c.desc, err, c.want)
		}
	}

	plain := errors.New("connection reset")
	if got := classify("test", plain); !errors.Is(got, plain) {
		t.Errorf("unrecognized errors must pass through wrapped, got %v", got)
	}
	if classify("test", nil) != nil {
		t.Error("nil stays nil")
	}
}

func TestRetryAfter(t *testing.T) {
	err := &telegoapi.Error{
		ErrorCode:   429,
		Description: "Too Many Requests: retry after 7",
		Parameters:  &telegoapi.ResponseParameters{RetryAfter: 7},
	}
	wait, ok := retryAfter(err)
	if !ok || wait != 7*time.Second {
		t.Errorf("retryAfter = (%v, %v), want (7s, true)", wait, ok)
	}

	if _, ok := retryAfter(errors.New("plain")); ok {
		t.Error("plain errors carry no retry signal")
	}
}

func TestIsPermanent(t *testing.T) {
	if !transport.IsPermanent(classify("send", &telegoapi.Error{ErrorCode: 403, Description: "Forbidden"})) {
		t.Error("403 must be permanent")
	}
	if transport.IsPermanent(errors.New("timeout")) {
		t.Error("unknown errors are transient")
	}
}
