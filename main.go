package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	api "github.com/OvyFlash/telegram-bot-api"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/iamwavecut/securebot/internal/bot"
	"github.com/iamwavecut/securebot/internal/config"
	"github.com/iamwavecut/securebot/internal/db/sqlite"
	"github.com/iamwavecut/securebot/internal/event"
	adminhandlers "github.com/iamwavecut/securebot/internal/handlers/admin"
	chathandlers "github.com/iamwavecut/securebot/internal/handlers/chat"
	commandhandlers "github.com/iamwavecut/securebot/internal/handlers/commands"
	moderation "github.com/iamwavecut/securebot/internal/handlers/moderation"
	"github.com/iamwavecut/securebot/internal/infra"
	"github.com/iamwavecut/securebot/internal/infrastructure/telegram"
	"github.com/iamwavecut/securebot/internal/lifecycle"
	"github.com/iamwavecut/securebot/internal/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatalln("cant load config")
	}
	log.SetFormatter(&config.SbFormatter{})
	log.SetOutput(os.Stdout)
	log.SetLevel(log.Level(cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := observability.Init(ctx, cfg.MetricsAddr); err != nil {
		log.WithError(err).Fatalln("cant init observability")
	}

	botAPI, err := api.NewBotAPI(cfg.TelegramAPIToken)
	if err != nil {
		log.WithError(err).Errorln("cant initialize bot api")
		time.Sleep(1 * time.Second)
		log.Fatalln("exiting")
	}
	if log.Level(cfg.LogLevel) == log.TraceLevel {
		botAPI.Debug = true
	}
	defer botAPI.StopReceivingUpdates()

	dbClient, err := sqlite.NewSQLiteClient(ctx, infra.GetWorkDir(), cfg.DBPath)
	if err != nil {
		log.WithError(err).Fatalln("cant open db")
	}
	defer dbClient.Close()

	service := bot.NewService(botAPI, dbClient, cfg)
	ops := telegram.NewOperations(botAPI)
	detector := moderation.NewFloodDetector(dbClient, cfg.FloodControl)
	scheduler := event.NewScheduler()

	runtime := lifecycle.NewRuntime(scheduler)
	if err := runtime.Start(ctx); err != nil {
		log.WithError(err).Fatalln("cant start runtime")
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := runtime.Stop(stopCtx); err != nil {
			log.WithError(err).Errorln("cant stop runtime")
		}
	}()

	bot.RegisterUpdateHandler("admin", adminhandlers.NewAdmin(service, ops, cfg))
	bot.RegisterUpdateHandler("commands", commandhandlers.NewCommands(service, cfg))
	bot.RegisterUpdateHandler("chat", chathandlers.NewReactor(service, detector, ops, scheduler, cfg.FloodControl))

	updateConfig := api.NewUpdate(0)
	updateConfig.Timeout = 60
	updateProcessor := bot.NewUpdateProcessor(service)
	updateChan, errorChan := bot.GetUpdatesChans(ctx, botAPI, updateConfig)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		for {
			select {
			case err := <-errorChan:
				return err
			case update := <-updateChan:
				if err := updateProcessor.Process(ctx, &update); err != nil {
					log.WithError(err).Errorln("cant process update")
				}
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Fatalln("bot api get updates error")
	}
	log.Infoln("no more updates")
}
