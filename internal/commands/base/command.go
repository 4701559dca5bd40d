package base

import (
	"github.com/avetisyanz/dreambot/internal/app/di"
	"github.com/avetisyanz/dreambot/internal/commands"
	"github.com/avetisyanz/dreambot/internal/config"
	"github.com/avetisyanz/dreambot/internal/keystore"
	"github.com/avetisyanz/dreambot/internal/logger"
	"github.com/avetisyanz/dreambot/internal/media"
	"github.com/avetisyanz/dreambot/internal/service"
	"github.com/avetisyanz/dreambot/internal/telegram"
)

type Command struct {
	command   commands.Command
	Tg        telegram.Client
	Logger    logger.Logger
	Cfg       *config.Config
	Keys      *keystore.Service
	Media     *media.Storage
	Localizer *service.Localizer
}

func NewCommand(cmd commands.Command, di *di.Container) *Command {
	return &Command{
		command:   cmd,
		Tg:        di.BotClient,
		Logger:    di.Logger,
		Cfg:       di.Cfg,
		Keys:      di.Keys,
		Media:     di.Media,
		Localizer: di.Localizer,
	}
}

func (c *Command) Name() string {
	return ""
}

func (c *Command) Aliases() []string {
	return []string{}
}

func (c *Command) Execute(update telegram.Update) error {
	return nil
}

func (c *Command) L(messageID string, data map[string]any) string {
	return c.Localizer.Localize(messageID, data)
}

// Reply sends a plain text message answering the update's message.
func (c *Command) Reply(update telegram.Update, text string) error {
	msg := telegram.NewMessage(update.Message.Chat.ID, text, update.Message.MessageID)
	if _, err := c.Tg.SendWithRetry(msg, 0); err != nil {
		c.Logger.WithError(err).WithField("command", c.command.Name()).Error("Failed to send message")
		return err
	}
	return nil
}
