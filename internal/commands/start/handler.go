package start

import (
	"github.com/avetisyanz/dreambot/internal/app/di"
	"github.com/avetisyanz/dreambot/internal/commands/base"
	"github.com/avetisyanz/dreambot/internal/markdown"
	"github.com/avetisyanz/dreambot/internal/telegram"
)

const CommandName = "start"

type Command struct {
	*base.Command
}

func New(di *di.Container) *Command {
	cmd := &Command{}
	cmd.Command = base.NewCommand(cmd, di)
	return cmd
}

func (c *Command) Name() string {
	return CommandName
}

func (c *Command) Aliases() []string {
	return []string{"help"}
}

func (c *Command) Execute(update telegram.Update) error {
	msg := telegram.NewMessage(
		update.Message.Chat.ID,
		markdown.Escape(c.L("welcome", nil)),
		update.Message.MessageID,
	)
	msg.ParseMode = telegram.ModeMarkdownV2
	msg.LinkPreviewDisabled = true

	if _, err := c.Tg.SendWithRetry(msg, 0); err != nil {
		c.Logger.WithError(err).Error("Failed to send welcome message")
		return err
	}

	return nil
}
