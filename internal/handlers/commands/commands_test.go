package handlers

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	api "github.com/OvyFlash/telegram-bot-api"

	"github.com/iamwavecut/securebot/internal/config"
	"github.com/iamwavecut/securebot/internal/db"
	"github.com/iamwavecut/securebot/internal/passwords"
)

type commandsServiceStub struct {
	mu    sync.Mutex
	saved []int64
}

func (s *commandsServiceStub) GetBot() *api.BotAPI { return nil }
func (s *commandsServiceStub) GetDB() db.Client    { return nil }

func (s *commandsServiceStub) SaveUser(_ context.Context, user *api.User) {
	if user == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append(s.saved, user.ID)
}

func (s *commandsServiceStub) GetLanguage(_ *api.User) string { return "en" }

type commandsSenderStub struct {
	sent []api.MessageConfig
}

func (s *commandsSenderStub) Send(c api.Chattable) (api.Message, error) {
	if msg, ok := c.(api.MessageConfig); ok {
		s.sent = append(s.sent, msg)
	}
	return api.Message{}, nil
}

func newCommandsFixture(cfg config.Config) (*Commands, *commandsServiceStub, *commandsSenderStub) {
	service := &commandsServiceStub{}
	sender := &commandsSenderStub{}
	c := &Commands{
		s:      service,
		sender: sender,
		cfg:    cfg,
	}
	return c, service, sender
}

func commandUpdate(text string) (*api.Update, *api.Chat, *api.User) {
	chat := &api.Chat{ID: 100, Type: "private"}
	user := &api.User{ID: 42, FirstName: "Tester"}

	command := text
	if i := strings.IndexByte(text, ' '); i > 0 {
		command = text[:i]
	}
	return &api.Update{
		Message: &api.Message{
			MessageID: 1,
			Chat:      *chat,
			From:      user,
			Text:      text,
			Entities:  []api.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(command)}},
		},
	}, chat, user
}

func singleReply(t *testing.T, sender *commandsSenderStub) api.MessageConfig {
	t.Helper()
	if len(sender.sent) != 1 {
		t.Fatalf("expected exactly one reply, got %d", len(sender.sent))
	}
	return sender.sent[0]
}

func TestStartSavesUserAndGreets(t *testing.T) {
	t.Parallel()

	c, service, sender := newCommandsFixture(config.Config{})
	u, chat, user := commandUpdate("/start")

	proceed, err := c.Handle(context.Background(), u, chat, user)
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if proceed {
		t.Fatalf("expected the command to be consumed")
	}

	if len(service.saved) != 1 || service.saved[0] != 42 {
		t.Fatalf("user not registered: %v", service.saved)
	}
	if reply := singleReply(t, sender); !strings.Contains(reply.Text, "Welcome to SecureBot") {
		t.Fatalf("unexpected greeting: %q", reply.Text)
	}
}

func TestHelpListsCommands(t *testing.T) {
	t.Parallel()

	c, _, sender := newCommandsFixture(config.Config{})
	u, chat, user := commandUpdate("/help")

	if _, err := c.Handle(context.Background(), u, chat, user); err != nil {
		t.Fatalf("handle: %v", err)
	}

	reply := singleReply(t, sender)
	for _, name := range []string{"/start", "/gen", "/gen10", "/about", "/status", "/broadcast"} {
		if !strings.Contains(reply.Text, name) {
			t.Fatalf("help misses %s: %q", name, reply.Text)
		}
	}
}

func TestGenLengthHandling(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want int
	}{
		{"default-length", "/gen", passwords.DefaultLength},
		{"explicit-length", "/gen 20", 20},
		{"clamped-low", "/gen 3", passwords.MinLength},
		{"clamped-high", "/gen 500", passwords.MaxLength},
		{"garbage-argument", "/gen abc", passwords.DefaultLength},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c, _, sender := newCommandsFixture(config.Config{})
			u, chat, user := commandUpdate(tt.text)

			if _, err := c.Handle(context.Background(), u, chat, user); err != nil {
				t.Fatalf("handle: %v", err)
			}

			reply := singleReply(t, sender)
			credential, ok := strings.CutPrefix(reply.Text, "🔐 ")
			if !ok {
				t.Fatalf("unexpected reply shape: %q", reply.Text)
			}
			if len(credential) != tt.want {
				t.Fatalf("credential length = %d, want %d", len(credential), tt.want)
			}
		})
	}
}

func TestGen10ProducesTenCredentials(t *testing.T) {
	t.Parallel()

	c, _, sender := newCommandsFixture(config.Config{})
	u, chat, user := commandUpdate("/gen10")

	if _, err := c.Handle(context.Background(), u, chat, user); err != nil {
		t.Fatalf("handle: %v", err)
	}

	reply := singleReply(t, sender)
	body, ok := strings.CutPrefix(reply.Text, "🔢 10 Passwords:\n")
	if !ok {
		t.Fatalf("unexpected reply shape: %q", reply.Text)
	}
	lines := strings.Split(body, "\n")
	if len(lines) != gen10Count {
		t.Fatalf("expected %d credentials, got %d", gen10Count, len(lines))
	}
	for i, line := range lines {
		_, credential, ok := strings.Cut(line, ". ")
		if !ok {
			t.Fatalf("line %d has no index prefix: %q", i+1, line)
		}
		if len(credential) != gen10Length {
			t.Fatalf("line %d credential length = %d, want %d", i+1, len(credential), gen10Length)
		}
	}
}

func TestStatusReportsOnline(t *testing.T) {
	t.Parallel()

	c, _, sender := newCommandsFixture(config.Config{})
	u, chat, user := commandUpdate("/status")

	if _, err := c.Handle(context.Background(), u, chat, user); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if reply := singleReply(t, sender); reply.Text != "✅ Bot is Online" {
		t.Fatalf("unexpected status: %q", reply.Text)
	}
}

func TestAboutReadsConfiguredFile(t *testing.T) {
	t.Parallel()

	aboutPath := filepath.Join(t.TempDir(), "about.md")
	if err := os.WriteFile(aboutPath, []byte("SecureBot keeps chats tidy."), 0o600); err != nil {
		t.Fatalf("write about file: %v", err)
	}

	c, _, sender := newCommandsFixture(config.Config{AboutPath: aboutPath})
	u, chat, user := commandUpdate("/about")

	if _, err := c.Handle(context.Background(), u, chat, user); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if reply := singleReply(t, sender); reply.Text != "SecureBot keeps chats tidy." {
		t.Fatalf("unexpected about text: %q", reply.Text)
	}
}

func TestAboutFallsBackWhenFileMissing(t *testing.T) {
	t.Parallel()

	aboutPath := filepath.Join(t.TempDir(), "missing.md")
	c, _, sender := newCommandsFixture(config.Config{AboutPath: aboutPath})
	u, chat, user := commandUpdate("/about")

	if _, err := c.Handle(context.Background(), u, chat, user); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if reply := singleReply(t, sender); reply.Text != "No about info." {
		t.Fatalf("unexpected fallback: %q", reply.Text)
	}
}

func TestNonCommandMessagesProceed(t *testing.T) {
	t.Parallel()

	c, _, sender := newCommandsFixture(config.Config{})
	chat := &api.Chat{ID: 100, Type: "private"}
	user := &api.User{ID: 42}
	u := &api.Update{
		Message: &api.Message{MessageID: 1, Chat: *chat, From: user, Text: "just chatting"},
	}

	proceed, err := c.Handle(context.Background(), u, chat, user)
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if !proceed {
		t.Fatalf("plain messages must proceed to the next handler")
	}
	if len(sender.sent) != 0 {
		t.Fatalf("plain message produced a reply")
	}
}

func TestBotIssuedCommandsProceed(t *testing.T) {
	t.Parallel()

	c, _, sender := newCommandsFixture(config.Config{})
	u, chat, user := commandUpdate("/start")
	user.IsBot = true
	u.Message.From.IsBot = true

	proceed, err := c.Handle(context.Background(), u, chat, user)
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if !proceed {
		t.Fatalf("bot-issued commands must be ignored")
	}
	if len(sender.sent) != 0 {
		t.Fatalf("bot-issued command produced a reply")
	}
}
