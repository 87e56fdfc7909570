package bot

import (
	"context"
	"time"

	api "github.com/OvyFlash/telegram-bot-api"
	log "github.com/sirupsen/logrus"

	"github.com/iamwavecut/securebot/internal/config"
	"github.com/iamwavecut/securebot/internal/db"
)

type service struct {
	bot *api.BotAPI
	db  db.Client
	cfg config.Config
}

func NewService(bot *api.BotAPI, db db.Client, cfg config.Config) *service {
	return &service{
		bot: bot,
		db:  db,
		cfg: cfg,
	}
}

func (s *service) GetBot() *api.BotAPI {
	return s.bot
}

func (s *service) GetDB() db.Client {
	return s.db
}

func (s *service) SaveUser(ctx context.Context, user *api.User) {
	if user == nil {
		return
	}
	err := s.db.UpsertUser(ctx, &db.User{
		ID:        user.ID,
		UserName:  user.UserName,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		AddedAt:   time.Now().UTC(),
	})
	if err != nil {
		log.WithError(err).WithField("user_id", user.ID).Warn("cant save user")
	}
}

func (s *service) GetLanguage(user *api.User) string {
	if user != nil && user.LanguageCode != "" {
		return user.LanguageCode
	}
	return s.cfg.DefaultLanguage
}
