package handlers

import (
	"context"
	"time"

	api "github.com/OvyFlash/telegram-bot-api"
	log "github.com/sirupsen/logrus"

	"github.com/iamwavecut/securebot/internal/bot"
	"github.com/iamwavecut/securebot/internal/config"
	"github.com/iamwavecut/securebot/internal/event"
	moderation "github.com/iamwavecut/securebot/internal/handlers/moderation"
	"github.com/iamwavecut/securebot/internal/infrastructure/telegram"
)

type moderationGateway interface {
	RestrictSending(ctx context.Context, chatID int64, userID int64, until time.Time) error
	DeleteMessage(ctx context.Context, chatID int64, messageID int) error
}

type messageSender interface {
	Send(c api.Chattable) (api.Message, error)
}

// Reactor runs the per-message pipeline: registry upsert, flood
// evaluation, throttle short-circuit, keyword auto-reply and deferred
// deletion of the original message.
type Reactor struct {
	s         bot.Service
	sender    messageSender
	detector  *moderation.FloodDetector
	gateway   moderationGateway
	scheduler *event.Scheduler
	cfg       config.FloodControl
	now       func() time.Time
}

func NewReactor(s bot.Service, detector *moderation.FloodDetector, ops *telegram.Operations, scheduler *event.Scheduler, cfg config.FloodControl) *Reactor {
	return &Reactor{
		s:         s,
		sender:    s.GetBot(),
		detector:  detector,
		gateway:   ops,
		scheduler: scheduler,
		cfg:       cfg,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (r *Reactor) Handle(ctx context.Context, u *api.Update, chat *api.Chat, user *api.User) (bool, error) {
	if u == nil {
		return true, nil
	}

	if u.ChatMember != nil {
		r.handleChatMember(ctx, u.ChatMember)
		return false, nil
	}

	if u.Message == nil || chat == nil {
		return true, nil
	}
	if u.Message.IsCommand() || u.Message.Text == "" {
		return true, nil
	}

	r.handleMessage(ctx, u.Message, chat, user)
	return false, nil
}

func (r *Reactor) getLogEntry() *log.Entry {
	return log.WithField("context", "reactor")
}
