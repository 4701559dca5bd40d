package credits

import (
	"context"
	"errors"
	"strconv"

	"github.com/avetisyanz/dreambot/internal/app/di"
	"github.com/avetisyanz/dreambot/internal/commands/base"
	"github.com/avetisyanz/dreambot/internal/keystore"
	"github.com/avetisyanz/dreambot/internal/markdown"
	"github.com/avetisyanz/dreambot/internal/telegram"
)

const CommandName = "credits"

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
	return []string{"balance"}
}

func (c *Command) Execute(update telegram.Update) error {
	chatID := update.Message.Chat.ID

	if err := c.Tg.SendChatAction(chatID, telegram.ActionTyping); err != nil {
		c.Logger.WithError(err).Warn("Failed to send chat action")
	}

	total, _, err := c.Keys.ResolveBalance(context.Background(), chatID)
	if err != nil {
		if errors.Is(err, keystore.ErrNoKeys) {
			return c.Reply(update, c.L("credits_none", nil))
		}
		c.Logger.WithError(err).WithField("chat_id", chatID).Error("Balance resolution failed")
		return err
	}

	totalStr := strconv.FormatFloat(total, 'f', -1, 64)
	msg := telegram.NewMessage(
		chatID,
		c.L("credits_balance", map[string]any{"Total": markdown.Escape(totalStr)}),
		update.Message.MessageID,
	)
	msg.ParseMode = telegram.ModeMarkdownV2
	if _, err := c.Tg.SendWithRetry(msg, 0); err != nil {
		c.Logger.WithError(err).Error("Failed to send balance message")
		return err
	}

	return nil
}
