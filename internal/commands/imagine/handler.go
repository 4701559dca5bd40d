package imagine

import (
	"context"
	"errors"
	"strings"

	"github.com/avetisyanz/dreambot/internal/app/di"
	"github.com/avetisyanz/dreambot/internal/commands/base"
	"github.com/avetisyanz/dreambot/internal/keystore"
	"github.com/avetisyanz/dreambot/internal/markdown"
	"github.com/avetisyanz/dreambot/internal/provider/stability"
	"github.com/avetisyanz/dreambot/internal/telegram"
)

const CommandName = "imagine"

type Command struct {
	*base.Command
	stability *stability.Client
}

func New(di *di.Container) *Command {
	cmd := &Command{
		stability: di.Stability,
	}
	cmd.Command = base.NewCommand(cmd, di)
	return cmd
}

func (c *Command) Name() string {
	return CommandName
}

func (c *Command) Execute(update telegram.Update) error {
	chatID := update.Message.Chat.ID
	prompt := strings.TrimSpace(update.Message.CommandArguments())
	if prompt == "" {
		return c.Reply(update, c.L("imagine_usage", nil))
	}

	ctx := context.Background()
	_, activeKey, err := c.Keys.ResolveBalance(ctx, chatID)
	if err != nil {
		if errors.Is(err, keystore.ErrNoKeys) {
			return c.Reply(update, c.L("credits_none", nil))
		}
		c.Logger.WithError(err).WithField("chat_id", chatID).Error("Balance resolution failed")
		return err
	}

	if err := c.Tg.SendChatAction(chatID, telegram.ActionUploadPhoto); err != nil {
		c.Logger.WithError(err).Warn("Failed to send chat action")
	}
	status := telegram.NewMessage(
		chatID,
		c.L("imagine_generating", map[string]any{"Prompt": markdown.Escape(prompt)}),
		update.Message.MessageID,
	)
	status.ParseMode = telegram.ModeMarkdownV2
	if _, err := c.Tg.SendWithRetry(status, 0); err != nil {
		c.Logger.WithError(err).Error("Failed to send status message")
	}

	path, err := c.stability.GenerateImage(ctx, chatID, prompt, activeKey)
	if err != nil {
		c.Logger.WithError(err).WithField("chat_id", chatID).Error("Image generation failed")
		return c.Reply(update, c.L("imagine_failed", nil))
	}
	defer c.Media.Remove(path)

	photo := telegram.NewPhotoMessage(chatID, telegram.FilePath(path), "", update.Message.MessageID)
	if _, err := c.Tg.SendWithRetry(photo, 0); err != nil {
		c.Logger.WithError(err).Error("Failed to send photo")
		return err
	}

	return nil
}
