package handlers

import (
	"context"
	"fmt"
	"html"

	api "github.com/OvyFlash/telegram-bot-api"
	"github.com/iamwavecut/tool"

	"github.com/iamwavecut/securebot/internal/bot"
	"github.com/iamwavecut/securebot/internal/i18n"
)

func (r *Reactor) handleChatMember(ctx context.Context, update *api.ChatMemberUpdated) {
	entry := r.getLogEntry().WithField("method", "handleChatMember")

	status := update.NewChatMember.Status
	if status != "member" && status != "creator" && status != "administrator" {
		return
	}
	user := update.NewChatMember.User
	if user == nil {
		return
	}

	r.s.SaveUser(ctx, user)

	mention := fmt.Sprintf(`<a href="tg://user?id=%d">%s</a>`, user.ID, html.EscapeString(bot.GetFullName(user)))
	text := "🎉 " + tool.ExecTemplate(
		i18n.Get("Welcome {{ .user }}! Please read the rules and /help.", r.s.GetLanguage(user)),
		map[string]any{"user": mention},
	)
	msg := api.NewMessage(update.Chat.ID, text)
	msg.ParseMode = api.ModeHTML
	if _, err := r.sender.Send(msg); err != nil {
		entry.WithField("error", err.Error()).Warn("cant send welcome message")
	}
}
