package handlers

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	api "github.com/OvyFlash/telegram-bot-api"
	"github.com/iamwavecut/tool"
	log "github.com/sirupsen/logrus"

	"github.com/iamwavecut/securebot/internal/bot"
	"github.com/iamwavecut/securebot/internal/config"
	"github.com/iamwavecut/securebot/internal/i18n"
	"github.com/iamwavecut/securebot/internal/infra"
	"github.com/iamwavecut/securebot/internal/infrastructure/telegram"
	"github.com/iamwavecut/securebot/internal/observability"
)

const (
	visitorsLimit    = 200
	visitorsMaxRunes = 3900
)

// Admin handles the admin-only command surface. Admin means the single
// configured operator id, not the chat's admin list.
type moderationGateway interface {
	BanUser(ctx context.Context, chatID int64, userID int64) error
	UnbanUser(ctx context.Context, chatID int64, userID int64) error
	RestrictSending(ctx context.Context, chatID int64, userID int64, until time.Time) error
	UnrestrictSending(ctx context.Context, chatID int64, userID int64) error
}

type messageSender interface {
	Send(c api.Chattable) (api.Message, error)
}

type Admin struct {
	s       bot.Service
	sender  messageSender
	gateway moderationGateway
	cfg     config.Config
}

func NewAdmin(s bot.Service, ops *telegram.Operations, cfg config.Config) *Admin {
	return &Admin{
		s:       s,
		sender:  s.GetBot(),
		gateway: ops,
		cfg:     cfg,
	}
}

func (a *Admin) Handle(ctx context.Context, u *api.Update, chat *api.Chat, user *api.User) (proceed bool, err error) {
	if u == nil || u.Message == nil || chat == nil || user == nil {
		return true, nil
	}
	if !u.Message.IsCommand() || user.IsBot {
		return true, nil
	}

	m := u.Message
	language := a.s.GetLanguage(user)
	entry := a.getLogEntry().WithFields(log.Fields{
		"command": m.Command(),
		"user_id": user.ID,
	})

	switch m.Command() {
	case "visitors":
		if !a.isAdmin(user) {
			a.reply(m, "❌ "+i18n.Get("Admin only", language))
			return false, nil
		}
		a.handleVisitors(ctx, m, entry, language)
		return false, nil
	case "broadcast":
		if !a.isAdmin(user) {
			a.reply(m, "❌ "+i18n.Get("Admin only", language))
			return false, nil
		}
		a.handleBroadcast(ctx, m, entry, language)
		return false, nil
	case "ban", "kick", "mute", "unmute":
		if !a.isAdmin(user) {
			// Deliberately silent for non-admins, matching the rest of
			// the moderation surface.
			entry.Debug("moderation command from non-admin ignored")
			return false, nil
		}
		a.handleModeration(ctx, m, chat, entry, language)
		return false, nil
	}
	return true, nil
}

func (a *Admin) isAdmin(user *api.User) bool {
	return user.ID == a.cfg.AdminID
}

func (a *Admin) handleVisitors(ctx context.Context, m *api.Message, entry *log.Entry, language string) {
	users, err := a.s.GetDB().GetRecentUsers(ctx, visitorsLimit)
	if err != nil {
		entry.WithField("error", err.Error()).Error("cant get recent users")
	}
	if len(users) == 0 {
		a.reply(m, i18n.Get("No visitors.", language))
		return
	}

	lines := make([]string, 0, len(users))
	for _, visitor := range users {
		lines = append(lines, fmt.Sprintf("%s @%s (%d)", visitor.FirstName, visitor.UserName, visitor.ID))
	}
	out := strings.Join(lines, "\n")
	if runes := []rune(out); len(runes) > visitorsMaxRunes {
		out = string(runes[:visitorsMaxRunes])
	}
	a.reply(m, out)
}

func (a *Admin) handleBroadcast(ctx context.Context, m *api.Message, entry *log.Entry, language string) {
	text := strings.TrimSpace(m.CommandArguments())
	if text == "" {
		a.reply(m, i18n.Get("Usage: /broadcast <message>", language))
		return
	}

	userIDs, err := a.s.GetDB().GetUserIDs(ctx)
	if err != nil {
		entry.WithField("error", err.Error()).Error("cant get user ids")
		a.reply(m, "Failed to broadcast: "+err.Error())
		return
	}

	// Sequential paced sends, detached from the update loop. One failed
	// recipient does not abort the rest.
	pacing := a.cfg.FloodControl.BroadcastPacing
	go infra.GoRecoverable(1, "broadcast", func() {
		sent := 0
		for _, userID := range userIDs {
			if _, err := a.sender.Send(api.NewMessage(userID, text)); err != nil {
				observability.RecordBroadcastDelivery("failed")
				entry.WithFields(log.Fields{"recipient": userID, "error": err.Error()}).Debug("cant broadcast to user")
				continue
			}
			observability.RecordBroadcastDelivery("ok")
			sent++
			time.Sleep(pacing)
		}
		a.reply(m, "📢 "+tool.ExecTemplate(
			i18n.Get("Sent to {{ .count }} users", language),
			map[string]any{"count": sent},
		))
	})
}

func (a *Admin) handleModeration(ctx context.Context, m *api.Message, chat *api.Chat, entry *log.Entry, language string) {
	command := m.Command()
	if m.ReplyToMessage == nil || m.ReplyToMessage.From == nil {
		a.reply(m, i18n.Get(fmt.Sprintf("Reply to a user to %s.", command), language))
		return
	}
	target := m.ReplyToMessage.From

	var err error
	switch command {
	case "ban":
		err = a.gateway.BanUser(ctx, chat.ID, target.ID)
	case "kick":
		// Removal without a lasting ban: ban then immediately lift it so
		// the user may rejoin.
		if err = a.gateway.BanUser(ctx, chat.ID, target.ID); err == nil {
			err = a.gateway.UnbanUser(ctx, chat.ID, target.ID)
		}
	case "mute":
		err = a.gateway.RestrictSending(ctx, chat.ID, target.ID, time.Time{})
	case "unmute":
		err = a.gateway.UnrestrictSending(ctx, chat.ID, target.ID)
	}
	if err != nil {
		entry.WithFields(log.Fields{"target": target.ID, "error": err.Error()}).Warn("moderation action failed")
		a.reply(m, i18n.Get(failureTexts[command], language)+": "+err.Error())
		return
	}

	mention := fmt.Sprintf(`<a href="tg://user?id=%d">%s</a>`, target.ID, html.EscapeString(bot.GetFullName(target)))
	a.replyHTML(m, successEmojis[command]+" "+tool.ExecTemplate(
		i18n.Get(successTexts[command], language),
		map[string]any{"user": mention},
	))
	entry.WithFields(log.Fields{
		"target":      target.ID,
		"target_name": bot.GetUN(target),
	}).Info("moderation action applied")
}

var (
	successTexts = map[string]string{
		"ban":    "Banned {{ .user }}",
		"kick":   "Kicked {{ .user }}",
		"mute":   "Muted {{ .user }}",
		"unmute": "Unmuted {{ .user }}",
	}
	successEmojis = map[string]string{
		"ban":    "🚫",
		"kick":   "👢",
		"mute":   "🔇",
		"unmute": "🔊",
	}
	failureTexts = map[string]string{
		"ban":    "Failed to ban",
		"kick":   "Failed to kick",
		"mute":   "Failed to mute",
		"unmute": "Failed to unmute",
	}
)

func (a *Admin) reply(m *api.Message, text string) {
	msg := api.NewMessage(m.Chat.ID, text)
	msg.ReplyParameters = api.ReplyParameters{
		ChatID:                   m.Chat.ID,
		MessageID:                m.MessageID,
		AllowSendingWithoutReply: true,
	}
	if _, err := a.sender.Send(msg); err != nil {
		a.getLogEntry().WithField("error", err.Error()).Warn("cant send reply")
	}
}

func (a *Admin) replyHTML(m *api.Message, text string) {
	msg := api.NewMessage(m.Chat.ID, text)
	msg.ParseMode = api.ModeHTML
	msg.ReplyParameters = api.ReplyParameters{
		ChatID:                   m.Chat.ID,
		MessageID:                m.MessageID,
		AllowSendingWithoutReply: true,
	}
	if _, err := a.sender.Send(msg); err != nil {
		a.getLogEntry().WithField("error", err.Error()).Warn("cant send reply")
	}
}

func (a *Admin) getLogEntry() *log.Entry {
	return log.WithField("context", "admin")
}
