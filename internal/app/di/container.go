package di

import (
	"net/http"
	"os"

	tgbotapi "github.com/OvyFlash/telegram-bot-api"

	"github.com/avetisyanz/dreambot/internal/config"
	"github.com/avetisyanz/dreambot/internal/keystore"
	"github.com/avetisyanz/dreambot/internal/logger"
	"github.com/avetisyanz/dreambot/internal/media"
	"github.com/avetisyanz/dreambot/internal/network"
	"github.com/avetisyanz/dreambot/internal/provider/gemini"
	"github.com/avetisyanz/dreambot/internal/provider/stability"
	"github.com/avetisyanz/dreambot/internal/service"
	"github.com/avetisyanz/dreambot/internal/telegram"
)

type Container struct {
	BotClient  telegram.Client
	Logger     logger.Logger
	Cfg        *config.Config
	Keys       *keystore.Service
	KeyStore   keystore.Store
	Gemini     *gemini.Client
	Stability  *stability.Client
	Media      *media.Storage
	Localizer  *service.Localizer
	HttpClient *http.Client
}

func NewContainer(cfg *config.Config) (*Container, error) {
	logCfg := cfg.Log()
	l := logger.NewLogrusLogger(logCfg.Level(), logCfg.FilePath)

	localizer, err := service.NewLocalizer(cfg.Global().InterfaceLanguage)
	if err != nil {
		l.WithError(err).Fatal("Error create localizer")
	}

	container := &Container{
		Logger:    l,
		Cfg:       cfg,
		Localizer: localizer,
	}

	httpCfg := network.NewDefaultHTTPClientConfig(cfg.HTTP())
	container.HttpClient = network.SetupHTTPClient(httpCfg, l)
	// Generation calls routinely run for minutes; they get their own client.
	mediaHTTPCfg := network.NewMediaHTTPClientConfig(cfg.HTTP())
	mediaHTTPClient := network.SetupHTTPClient(mediaHTTPCfg, l)

	mediaCfg := cfg.Media()
	if err := os.MkdirAll(mediaCfg.Dir, 0o755); err != nil {
		return nil, err
	}
	container.Media = media.NewStorage(mediaCfg.Dir, l)

	store, err := newKeyStore(cfg, l)
	if err != nil {
		return nil, err
	}
	container.KeyStore = store

	geminiCfg := cfg.Gemini()
	container.Gemini = gemini.NewClient(mediaHTTPClient, geminiCfg.BaseURL, geminiCfg.Model, l)
	container.Stability = stability.NewClient(mediaHTTPClient, cfg.Stability().BaseURL, container.Media, l)
	container.Keys = keystore.NewService(store, container.Gemini, container.Stability, l)

	api, err := tgbotapi.NewBotAPI(cfg.Telegram().Token)
	if err != nil {
		l.WithError(err).Fatal("Bot API client initialization error")
	}
	l.Info("Bot API initialized")

	container.BotClient = telegram.NewBotClient(api, container.HttpClient, l)

	return container, nil
}

func newKeyStore(cfg *config.Config, l logger.Logger) (keystore.Store, error) {
	storeCfg := cfg.Keystore()
	switch storeCfg.Backend {
	case "sqlite":
		return keystore.NewSQLiteStore(storeCfg.DSN, l)
	default:
		if err := os.MkdirAll(storeCfg.Dir, 0o755); err != nil {
			return nil, err
		}
		return keystore.NewFileStore(storeCfg.Dir), nil
	}
}
