package app

import (
	"context"
	"flag"

	"github.com/avetisyanz/dreambot/internal/app/di"
	"github.com/avetisyanz/dreambot/internal/commands/addkey"
	"github.com/avetisyanz/dreambot/internal/commands/audio"
	"github.com/avetisyanz/dreambot/internal/commands/chat"
	"github.com/avetisyanz/dreambot/internal/commands/credits"
	"github.com/avetisyanz/dreambot/internal/commands/imagine"
	"github.com/avetisyanz/dreambot/internal/commands/start"
	"github.com/avetisyanz/dreambot/internal/commands/videofy"
	"github.com/avetisyanz/dreambot/internal/config"
	"github.com/avetisyanz/dreambot/internal/core"
	"github.com/avetisyanz/dreambot/internal/keystore"
	"github.com/avetisyanz/dreambot/internal/logger"
)

type Application struct {
	Logger logger.Logger
	cfg    *config.Config
	bot    *core.Bot
	di     *di.Container
	ctx    context.Context
	cancel context.CancelFunc
}

func New() (*Application, error) {
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	cfg, err := config.Load()
	if err != nil {
		cancel()
		return nil, err
	}

	di, err := di.NewContainer(cfg)
	if err != nil {
		cancel()
		return nil, err
	}
	di.Logger.Info("DI Container created")

	botInstance, err := core.NewBot(
		di.BotClient,
		di.Logger,
		cfg,
		di.Localizer,
	)
	if err != nil {
		di.Logger.Fatal(err)
	}
	di.Logger.Info("Bot instance created")

	app := &Application{
		cfg:    cfg,
		bot:    botInstance,
		di:     di,
		Logger: di.Logger,
		ctx:    ctx,
		cancel: cancel,
	}

	app.registerCommands()
	app.logStoredKeys()

	return app, nil
}

func (a *Application) Start() error {
	a.Logger.Info("Starting application")
	return a.bot.Start(a.ctx)
}

func (a *Application) registerCommands() {
	if a.cfg.CommandEnabled(start.CommandName) {
		a.bot.RegisterCommand(start.New(a.di))
	}
	if a.cfg.CommandEnabled(imagine.CommandName) {
		a.bot.RegisterCommand(imagine.New(a.di))
	}
	if a.cfg.CommandEnabled(credits.CommandName) {
		a.bot.RegisterCommand(credits.New(a.di))
	}
	if a.cfg.CommandEnabled(audio.CommandName) {
		a.bot.RegisterCommand(audio.New(a.di))
	}
	if a.cfg.CommandEnabled(videofy.CommandName) {
		a.bot.RegisterCommand(videofy.New(a.di))
	}
	if a.cfg.CommandEnabled(addkey.CommandName) {
		a.bot.RegisterKeyEntry(addkey.New(a.di))
	}
	if a.cfg.CommandEnabled(chat.CommandName) {
		a.bot.RegisterCommand(chat.New(a.di))
	}
}

// logStoredKeys reports how many chats already carry keys, a quick sanity
// signal that the right store backend is in use.
func (a *Application) logStoredKeys() {
	for _, kind := range []keystore.Kind{keystore.KindGemini, keystore.KindStability} {
		chats, err := a.di.KeyStore.List(kind)
		if err != nil {
			a.Logger.WithError(err).WithField("kind", string(kind)).Warn("Failed to list stored keys")
			continue
		}
		a.Logger.WithFields(logger.Fields{
			"kind":  string(kind),
			"chats": len(chats),
		}).Info("Loaded key store")
	}
}

func (a *Application) WaitForShutdown() {
	<-a.ctx.Done()
	a.Logger.Info("Application stopped")
}
