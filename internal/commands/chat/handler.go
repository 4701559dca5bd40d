package chat

import (
	"context"
	"errors"
	"strings"

	"github.com/avetisyanz/dreambot/internal/app/di"
	"github.com/avetisyanz/dreambot/internal/commands/base"
	"github.com/avetisyanz/dreambot/internal/keystore"
	"github.com/avetisyanz/dreambot/internal/provider/gemini"
	"github.com/avetisyanz/dreambot/internal/service"
	"github.com/avetisyanz/dreambot/internal/telegram"
)

const CommandName = "chat"

// Command is the fallback handler: any free text that is not a command is
// relayed to the text provider and the answer comes back as a standalone
// HTML document.
type Command struct {
	*base.Command
	gemini *gemini.Client
}

func New(di *di.Container) *Command {
	cmd := &Command{
		gemini: di.Gemini,
	}
	cmd.Command = base.NewCommand(cmd, di)
	return cmd
}

func (c *Command) Name() string {
	return CommandName
}

func (c *Command) Execute(update telegram.Update) error {
	chatID := update.Message.Chat.ID
	prompt := strings.TrimSpace(update.Message.Text)
	if prompt == "" {
		return nil
	}

	key, err := c.Keys.GeminiKey(chatID)
	if err != nil {
		if errors.Is(err, keystore.ErrNoKey) {
			return c.Reply(update, c.L("chat_no_key", nil))
		}
		return err
	}

	if err := c.Tg.SendChatAction(chatID, telegram.ActionTyping); err != nil {
		c.Logger.WithError(err).Warn("Failed to send chat action")
	}

	ctx := context.Background()
	answer, err := c.gemini.Ask(ctx, prompt, key)
	if err != nil {
		if errors.Is(err, gemini.ErrInvalidKey) {
			if evictErr := c.Keys.EvictGeminiKey(chatID); evictErr != nil {
				c.Logger.WithError(evictErr).WithField("chat_id", chatID).Error("Failed to evict key")
			}
			return c.Reply(update, c.L("chat_invalid_key", nil))
		}
		c.Logger.WithError(err).WithField("chat_id", chatID).Error("Text generation failed")
		// Provider error bodies can be long; split if they exceed the message limit.
		return c.Tg.SendLong(
			chatID,
			c.L("chat_failed", map[string]any{"Message": err.Error()}),
			update.Message.MessageID,
		)
	}

	filename := service.DocumentFilename(answer)
	path, dir, err := c.Media.WriteDoc(chatID, filename, []byte(answer))
	if err != nil {
		return err
	}
	defer c.Media.RemoveAll(dir)

	doc := telegram.NewDocumentMessage(
		chatID,
		telegram.FilePath(path),
		c.L("document_caption", nil),
		update.Message.MessageID,
	)
	if _, err := c.Tg.SendWithRetry(doc, 0); err != nil {
		c.Logger.WithError(err).Error("Failed to send document")
		return err
	}

	return nil
}
