package handlers

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	api "github.com/OvyFlash/telegram-bot-api"
	log "github.com/sirupsen/logrus"

	"github.com/iamwavecut/securebot/internal/bot"
	"github.com/iamwavecut/securebot/internal/config"
	"github.com/iamwavecut/securebot/internal/i18n"
	"github.com/iamwavecut/securebot/internal/passwords"
	"github.com/iamwavecut/securebot/resources"
)

const (
	gen10Count  = 10
	gen10Length = 14
)

const helpText = `/start - show welcome
/help - this help
/gen [len] - generate password (default 16)
/gen10 - generate 10 passwords
/about - about bot
/status - bot status
/broadcast <text> - admin only
/ban (reply) - admin
/mute (reply) - admin
/unmute (reply) - admin
`

type messageSender interface {
	Send(c api.Chattable) (api.Message, error)
}

// Commands handles the public command surface available to any user.
type Commands struct {
	s      bot.Service
	sender messageSender
	cfg    config.Config
}

func NewCommands(s bot.Service, cfg config.Config) *Commands {
	return &Commands{
		s:      s,
		sender: s.GetBot(),
		cfg:    cfg,
	}
}

func (c *Commands) Handle(ctx context.Context, u *api.Update, chat *api.Chat, user *api.User) (proceed bool, err error) {
	if u == nil || u.Message == nil || chat == nil || user == nil {
		return true, nil
	}
	if !u.Message.IsCommand() || user.IsBot {
		return true, nil
	}

	m := u.Message
	language := c.s.GetLanguage(user)

	switch m.Command() {
	case "start":
		c.s.SaveUser(ctx, user)
		c.send(chat.ID, "👋 "+i18n.Get("Welcome to SecureBot! Use /help to see commands.", language))
		return false, nil
	case "help":
		c.send(chat.ID, helpText)
		return false, nil
	case "gen":
		c.handleGen(chat.ID, m.CommandArguments())
		return false, nil
	case "gen10":
		c.handleGen10(chat.ID)
		return false, nil
	case "about":
		c.send(chat.ID, c.aboutText(language))
		return false, nil
	case "status":
		c.send(chat.ID, "✅ "+i18n.Get("Bot is Online", language))
		return false, nil
	}
	return true, nil
}

func (c *Commands) handleGen(chatID int64, args string) {
	length := passwords.DefaultLength
	if args = strings.TrimSpace(args); args != "" {
		if parsed, err := strconv.Atoi(args); err == nil {
			length = passwords.ClampLength(parsed)
		}
	}
	credential, err := passwords.Generate(length, true)
	if err != nil {
		c.getLogEntry().WithField("error", err.Error()).Error("cant generate credential")
		return
	}
	c.send(chatID, "🔐 "+credential)
}

func (c *Commands) handleGen10(chatID int64) {
	lines := make([]string, 0, gen10Count)
	for i := 0; i < gen10Count; i++ {
		credential, err := passwords.Generate(gen10Length, true)
		if err != nil {
			c.getLogEntry().WithField("error", err.Error()).Error("cant generate credential")
			return
		}
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, credential))
	}
	c.send(chatID, "🔢 10 Passwords:\n"+strings.Join(lines, "\n"))
}

func (c *Commands) aboutText(language string) string {
	if raw, err := os.ReadFile(c.cfg.AboutPath); err == nil {
		return string(raw)
	}
	if raw, err := resources.FS.ReadFile("about_fallback.md"); err == nil {
		return strings.TrimSpace(string(raw))
	}
	return i18n.Get("No about info.", language)
}

func (c *Commands) send(chatID int64, text string) {
	if _, err := c.sender.Send(api.NewMessage(chatID, text)); err != nil {
		c.getLogEntry().WithField("error", err.Error()).Warn("cant send reply")
	}
}

func (c *Commands) getLogEntry() *log.Entry {
	return log.WithField("context", "commands")
}
