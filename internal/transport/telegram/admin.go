package telegram

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"

	"github.com/nextlevelbuilder/selfgo/internal/transport"
)

func untilDate(until time.Time) int64 {
	if until.IsZero() {
		return 0 // permanent
	}
	return until.Unix()
}

func (t *Transport) Ban(ctx context.Context, chatID, userID int64, until time.Time) error {
	return t.apiCall(ctx, "ban member", func() error {
		return t.bot.BanChatMember(ctx, &telego.BanChatMemberParams{
			ChatID:    tu.ID(chatID),
			UserID:    userID,
			UntilDate: untilDate(until),
		})
	})
}

func (t *Transport) Unban(ctx context.Context, chatID, userID int64) error {
	return t.apiCall(ctx, "unban member", func() error {
		return t.bot.UnbanChatMember(ctx, &telego.UnbanChatMemberParams{
			ChatID:       tu.ID(chatID),
			UserID:       userID,
			OnlyIfBanned: true,
		})
	})
}

func (t *Transport) Mute(ctx context.Context, chatID, userID int64, until time.Time) error {
	no := false
	return t.apiCall(ctx, "mute member", func() error {
		return t.bot.RestrictChatMember(ctx, &telego.RestrictChatMemberParams{
			ChatID: tu.ID(chatID),
			UserID: userID,
			Permissions: telego.ChatPermissions{
				CanSendMessages:      &no,
				CanSendAudios:        &no,
				CanSendDocuments:     &no,
				CanSendPhotos:        &no,
				CanSendVideos:        &no,
				CanSendOtherMessages: &no,
			},
			UntilDate: untilDate(until),
		})
	})
}

func (t *Transport) Unmute(ctx context.Context, chatID, userID int64) error {
	yes := true
	return t.apiCall(ctx, "unmute member", func() error {
		return t.bot.RestrictChatMember(ctx, &telego.RestrictChatMemberParams{
			ChatID: tu.ID(chatID),
			UserID: userID,
			Permissions: telego.ChatPermissions{
				CanSendMessages:      &yes,
				CanSendAudios:        &yes,
				CanSendDocuments:     &yes,
				CanSendPhotos:        &yes,
				CanSendVideos:        &yes,
				CanSendOtherMessages: &yes,
			},
		})
	})
}

func (t *Transport) Promote(ctx context.Context, chatID, userID int64) error {
	yes := true
	return t.apiCall(ctx, "promote member", func() error {
		return t.bot.PromoteChatMember(ctx, &telego.PromoteChatMemberParams{
			ChatID:             tu.ID(chatID),
			UserID:             userID,
			CanDeleteMessages:  &yes,
			CanRestrictMembers: &yes,
			CanPinMessages:     &yes,
			CanChangeInfo:      &yes,
			CanInviteUsers:     &yes,
		})
	})
}

func (t *Transport) Demote(ctx context.Context, chatID, userID int64) error {
	no := false
	return t.apiCall(ctx, "demote member", func() error {
		return t.bot.PromoteChatMember(ctx, &telego.PromoteChatMemberParams{
			ChatID:             tu.ID(chatID),
			UserID:             userID,
			CanDeleteMessages:  &no,
			CanRestrictMembers: &no,
			CanPinMessages:     &no,
			CanChangeInfo:      &no,
			CanInviteUsers:     &no,
			CanPromoteMembers:  &no,
		})
	})
}

func (t *Transport) Pin(ctx context.Context, chatID int64, messageID int) error {
	return t.apiCall(ctx, "pin message", func() error {
		return t.bot.PinChatMessage(ctx, &telego.PinChatMessageParams{
			ChatID:    tu.ID(chatID),
			MessageID: messageID,
		})
	})
}

func (t *Transport) Unpin(ctx context.Context, chatID int64, messageID int) error {
	return t.apiCall(ctx, "unpin message", func() error {
		return t.bot.UnpinChatMessage(ctx, &telego.UnpinChatMessageParams{
			ChatID:    tu.ID(chatID),
			MessageID: messageID,
		})
	})
}

func (t *Transport) SetChatTitle(ctx context.Context, chatID int64, title string) error {
	return t.apiCall(ctx, "set chat title", func() error {
		return t.bot.SetChatTitle(ctx, &telego.SetChatTitleParams{
			ChatID: tu.ID(chatID),
			Title:  title,
		})
	})
}

func (t *Transport) SetChatDescription(ctx context.Context, chatID int64, description string) error {
	return t.apiCall(ctx, "set chat description", func() error {
		return t.bot.SetChatDescription(ctx, &telego.SetChatDescriptionParams{
			ChatID:      tu.ID(chatID),
			Description: description,
		})
	})
}

// Member returns the acting account's capability record in a chat.
// A non-administrator record comes back wrapped in ErrNotAdmin so the gate
// can distinguish "no rights at all" from "missing one capability".
func (t *Transport) Member(ctx context.Context, chatID, userID int64) (transport.Member, error) {
	var raw telego.ChatMember
	err := t.apiCall(ctx, "get chat member", func() error {
		m, err := t.bot.GetChatMember(ctx, &telego.GetChatMemberParams{
			ChatID: tu.ID(chatID),
			UserID: userID,
		})
		if err == nil {
			raw = m
		}
		return err
	})
	if err != nil {
		return transport.Member{}, err
	}

	switch m := raw.(type) {
	case *telego.ChatMemberOwner:
		return transport.Member{Status: "creator"}, nil
	case *telego.ChatMemberAdministrator:
		return transport.Member{
			Status: "administrator",
			Caps: map[transport.Capability]bool{
				transport.CapDeleteMessages:  m.CanDeleteMessages,
				transport.CapRestrictMembers: m.CanRestrictMembers,
				transport.CapPromoteMembers:  m.CanPromoteMembers,
				transport.CapPinMessages:     m.CanPinMessages,
				transport.CapChangeInfo:      m.CanChangeInfo,
			},
		}, nil
	default:
		return transport.Member{}, fmt.Errorf("member status %q: %w", raw.MemberStatus(), transport.ErrNotAdmin)
	}
}

func (t *Transport) ChatInfo(ctx context.Context, chatID int64) (transport.Chat, error) {
	var info *telego.ChatFullInfo
	err := t.apiCall(ctx, "get chat", func() error {
		c, err := t.bot.GetChat(ctx, &telego.GetChatParams{ChatID: tu.ID(chatID)})
		if err == nil {
			info = c
		}
		return err
	})
	if err != nil {
		return transport.Chat{}, err
	}

	chat := transport.Chat{
		ID:          info.ID,
		Title:       info.Title,
		Kind:        info.Type,
		Description: info.Description,
	}
	// Member count is best effort; private chats have none.
	if chat.Kind == "group" || chat.Kind == "supergroup" {
		_ = t.apiCall(ctx, "get member count", func() error {
			n, err := t.bot.GetChatMemberCount(ctx, &telego.GetChatMemberCountParams{ChatID: tu.ID(chatID)})
			if err == nil && n != nil {
				chat.MemberCount = *n
			}
			return err
		})
	}
	return chat, nil
}

// ResolveUser attempts to resolve a @handle. The Bot API only resolves
// handles it has seen, so failure is a normal outcome.
func (t *Transport) ResolveUser(ctx context.Context, handle string) (transport.User, error) {
	handle = strings.TrimPrefix(handle, "@")
	if handle == "" {
		return transport.User{}, fmt.Errorf("resolve user: %w", transport.ErrNotFound)
	}
	var info *telego.ChatFullInfo
	err := t.apiCall(ctx, "resolve user", func() error {
		c, err := t.bot.GetChat(ctx, &telego.GetChatParams{ChatID: tu.Username("@" + handle)})
		if err == nil {
			info = c
		}
		return err
	})
	if err != nil {
		return transport.User{}, err
	}
	if info.Type != "private" {
		return transport.User{}, fmt.Errorf("resolve user %q: not a user: %w", handle, transport.ErrNotFound)
	}
	return transport.User{
		ID:        info.ID,
		Username:  info.Username,
		FirstName: info.FirstName,
		LastName:  info.LastName,
	}, nil
}
