package handlers

import (
	"context"
	"strings"

	api "github.com/OvyFlash/telegram-bot-api"
	"github.com/iamwavecut/tool"
	log "github.com/sirupsen/logrus"

	"github.com/iamwavecut/securebot/internal/bot"
	"github.com/iamwavecut/securebot/internal/event"
	"github.com/iamwavecut/securebot/internal/i18n"
	"github.com/iamwavecut/securebot/internal/observability"
)

// autoReplies is evaluated in order; the first keyword contained in the
// lowercased message text wins and at most one reply is sent.
var autoReplies = []struct {
	keyword string
	reply   string
}{
	{"hi", "Hello! 👋"},
	{"hello", "Hi there 😊"},
	{"how are you", "I'm fine — thanks!"},
	{"help", "Use /help to see available commands."},
}

func (r *Reactor) handleMessage(ctx context.Context, msg *api.Message, chat *api.Chat, user *api.User) {
	finish := observability.StartMessageProcessing()

	if user == nil {
		finish("no_sender")
		return
	}
	entry := r.getLogEntry().WithFields(log.Fields{
		"chat_id": chat.ID,
		"user_id": user.ID,
	})

	r.s.SaveUser(ctx, user)

	count, err := r.detector.Track(ctx, user.ID, r.now())
	if err != nil {
		// Storage failure degrades to a no-op pipeline pass.
		entry.WithField("error", err.Error()).Warn("cant track message")
		finish("storage_error")
		observability.RecordMessageProcessed("storage_error")
		return
	}

	if r.detector.Exceeded(count) {
		r.muteFlooder(ctx, msg, chat, user, entry)
		finish("throttled")
		observability.RecordMessageProcessed("throttled")
		return
	}

	r.autoReply(msg, chat, user)

	task := r.scheduler.Schedule(
		event.TaskKey{ChatID: chat.ID, MessageID: msg.MessageID},
		r.cfg.AutoDeleteAfter,
		func(taskCtx context.Context) {
			if err := r.gateway.DeleteMessage(taskCtx, chat.ID, msg.MessageID); err != nil {
				entry.WithField("error", err.Error()).Debug("cant auto-delete message")
			}
		},
	)
	_ = task // the pipeline owns the handle but does not cancel today

	finish("ok")
	observability.RecordMessageProcessed("ok")
}

func (r *Reactor) muteFlooder(ctx context.Context, msg *api.Message, chat *api.Chat, user *api.User, entry *log.Entry) {
	language := r.s.GetLanguage(user)
	warning := tool.ExecTemplate(
		"⚠️ "+i18n.Get("You are sending messages too fast. Muted for {{ .duration }}.", language),
		map[string]any{"duration": r.cfg.MuteDuration.String()},
	)
	reply := api.NewMessage(chat.ID, warning)
	reply.ReplyParameters = api.ReplyParameters{
		ChatID:                   chat.ID,
		MessageID:                msg.MessageID,
		AllowSendingWithoutReply: true,
	}
	if _, err := r.sender.Send(reply); err != nil {
		entry.WithField("error", err.Error()).Warn("cant send flood warning")
	}

	until := r.now().Add(r.cfg.MuteDuration)
	if err := r.gateway.RestrictSending(ctx, chat.ID, user.ID, until); err != nil {
		entry.WithField("error", err.Error()).Warn("cant mute flooder")
		return
	}
	observability.RecordFloodMute()
	entry.WithFields(log.Fields{
		"user":  bot.GetUN(user),
		"until": until,
	}).Info("muted flooder")
}

func (r *Reactor) autoReply(msg *api.Message, chat *api.Chat, user *api.User) {
	text := strings.ToLower(msg.Text)
	language := r.s.GetLanguage(user)
	for _, candidate := range autoReplies {
		if !strings.Contains(text, candidate.keyword) {
			continue
		}
		reply := api.NewMessage(chat.ID, i18n.Get(candidate.reply, language))
		reply.ReplyParameters = api.ReplyParameters{
			ChatID:                   chat.ID,
			MessageID:                msg.MessageID,
			AllowSendingWithoutReply: true,
		}
		if _, err := r.sender.Send(reply); err != nil {
			r.getLogEntry().WithField("error", err.Error()).Debug("cant send auto-reply")
		}
		return
	}
}
