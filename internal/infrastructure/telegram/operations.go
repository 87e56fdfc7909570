package telegram

import (
	"context"
	"fmt"
	"strings"
	"time"

	api "github.com/OvyFlash/telegram-bot-api"
)

// Operations provides common Telegram moderation operations. Every call
// maps 1:1 onto the platform API and is never retried.
type Operations struct {
	bot *api.BotAPI
}

// NewOperations creates a new Operations instance
func NewOperations(bot *api.BotAPI) *Operations {
	return &Operations{bot: bot}
}

// DeleteMessage deletes a message from a chat
func (o *Operations) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	_, err := o.bot.Request(api.NewDeleteMessage(chatID, messageID))
	if err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}
	return nil
}

// BanUser bans a user from a chat
func (o *Operations) BanUser(ctx context.Context, chatID int64, userID int64) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	config := api.BanChatMemberConfig{
		ChatMemberConfig: api.ChatMemberConfig{
			ChatConfig: api.ChatConfig{
				ChatID: chatID,
			},
			UserID: userID,
		},
	}
	_, err := o.bot.Request(config)
	if err != nil {
		if strings.Contains(err.Error(), "not enough rights") {
			return fmt.Errorf("not enough rights to ban user")
		}
		return fmt.Errorf("failed to ban user: %w", err)
	}
	return nil
}

// UnbanUser lifts a ban so the user may rejoin the chat
func (o *Operations) UnbanUser(ctx context.Context, chatID int64, userID int64) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	config := api.UnbanChatMemberConfig{
		ChatMemberConfig: api.ChatMemberConfig{
			ChatConfig: api.ChatConfig{
				ChatID: chatID,
			},
			UserID: userID,
		},
		OnlyIfBanned: true,
	}
	_, err := o.bot.Request(config)
	if err != nil {
		return fmt.Errorf("failed to unban user: %w", err)
	}
	return nil
}

// RestrictSending denies the user all message-sending permissions in the
// chat until the given time. The platform lifts the restriction on its
// own when the deadline passes; nothing here tracks it.
func (o *Operations) RestrictSending(ctx context.Context, chatID int64, userID int64, until time.Time) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	config := api.RestrictChatMemberConfig{
		ChatMemberConfig: api.ChatMemberConfig{
			ChatConfig: api.ChatConfig{
				ChatID: chatID,
			},
			UserID: userID,
		},
		Permissions: &api.ChatPermissions{
			CanSendMessages:       false,
			CanSendAudios:         false,
			CanSendDocuments:      false,
			CanSendPhotos:         false,
			CanSendVideos:         false,
			CanSendVideoNotes:     false,
			CanSendVoiceNotes:     false,
			CanSendPolls:          false,
			CanSendOtherMessages:  false,
			CanAddWebPagePreviews: false,
		},
	}
	if !until.IsZero() {
		config.UntilDate = until.Unix()
	}
	_, err := o.bot.Request(config)
	if err != nil {
		return fmt.Errorf("failed to restrict user: %w", err)
	}
	return nil
}

// UnrestrictSending restores the user's message-sending permissions
func (o *Operations) UnrestrictSending(ctx context.Context, chatID int64, userID int64) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	config := api.RestrictChatMemberConfig{
		ChatMemberConfig: api.ChatMemberConfig{
			ChatConfig: api.ChatConfig{
				ChatID: chatID,
			},
			UserID: userID,
		},
		Permissions: &api.ChatPermissions{
			CanSendMessages:       true,
			CanSendAudios:         true,
			CanSendDocuments:      true,
			CanSendPhotos:         true,
			CanSendVideos:         true,
			CanSendVideoNotes:     true,
			CanSendVoiceNotes:     true,
			CanSendPolls:          true,
			CanSendOtherMessages:  true,
			CanAddWebPagePreviews: true,
		},
	}
	_, err := o.bot.Request(config)
	if err != nil {
		return fmt.Errorf("failed to unrestrict user: %w", err)
	}
	return nil
}
