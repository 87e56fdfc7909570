package config

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/sethvargo/go-envconfig"
	log "github.com/sirupsen/logrus"
)

type (
	Config struct {
		TelegramAPIToken string   `env:"TOKEN,required"`
		AdminID          int64    `env:"ADMIN_ID,required"`
		DBPath           string   `env:"DB_PATH,default=securebot.sqlite"`
		AboutPath        string   `env:"ABOUT_PATH,default=about_bot.md"`
		DefaultLanguage  string   `env:"LANG,default=en"`
		EnabledHandlers  []string `env:"HANDLERS,default=admin,commands,chat"`
		LogLevel         int      `env:"LOG_LEVEL,default=4"`
		DotPath          string   `env:"DOT_PATH,default=~/.securebot"`
		MetricsAddr      string   `env:"METRICS_ADDR,default=:2112"`
		FloodControl     FloodControl
	}

	FloodControl struct {
		Window          time.Duration `env:"FLOOD_WINDOW,default=10s"`
		Limit           int           `env:"FLOOD_LIMIT,default=6"`
		MuteDuration    time.Duration `env:"MUTE_DURATION,default=10m"`
		AutoDeleteAfter time.Duration `env:"AUTO_DELETE_AFTER,default=12s"`
		BroadcastPacing time.Duration `env:"BROADCAST_PACING,default=50ms"`
	}
)

var (
	once         sync.Once
	globalConfig = &Config{}
	globalErr    error
)

func Load() (Config, error) {
	once.Do(func() {
		cfg := &Config{}
		envcfg := envconfig.Config{
			Lookuper: envconfig.PrefixLookuper("SB_", envconfig.OsLookuper()),
			Target:   cfg,
		}
		if err := envconfig.ProcessWith(context.Background(), &envcfg); err != nil {
			globalErr = fmt.Errorf("process env config: %w", err)
			return
		}
		home, err := os.UserHomeDir()
		if err != nil {
			globalErr = fmt.Errorf("get user home directory: %w", err)
			return
		}
		cfg.DotPath = strings.Replace(cfg.DotPath, "~", home, 1)
		log.Traceln("loaded config")
		globalConfig = cfg
	})
	return *globalConfig, globalErr
}

func Get() Config {
	cfg, err := Load()
	if err != nil {
		log.WithField("error", err.Error()).Error("cant load config")
	}
	return cfg
}
