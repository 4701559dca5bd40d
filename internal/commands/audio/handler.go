package audio

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/avetisyanz/dreambot/internal/app/di"
	"github.com/avetisyanz/dreambot/internal/commands/base"
	"github.com/avetisyanz/dreambot/internal/keystore"
	"github.com/avetisyanz/dreambot/internal/provider/stability"
	"github.com/avetisyanz/dreambot/internal/telegram"
)

const CommandName = "text2audio"

// DefaultDuration is used when the first argument is not a number.
const DefaultDuration = 20

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

func (c *Command) Aliases() []string {
	return []string{"audio"}
}

// parseArgs splits the argument string into a duration and a prompt. A
// leading integer sets the duration; otherwise the whole string is the
// prompt and the default duration applies.
func parseArgs(args string) (int, string) {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		return DefaultDuration, ""
	}
	if duration, err := strconv.Atoi(fields[0]); err == nil {
		return duration, strings.Join(fields[1:], " ")
	}
	return DefaultDuration, strings.Join(fields, " ")
}

func (c *Command) Execute(update telegram.Update) error {
	chatID := update.Message.Chat.ID

	duration, prompt := parseArgs(update.Message.CommandArguments())
	if prompt == "" {
		return c.Reply(update, c.L("audio_usage", nil))
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

	if err := c.Tg.SendChatAction(chatID, telegram.ActionRecordAudio); err != nil {
		c.Logger.WithError(err).Warn("Failed to send chat action")
	}
	if err := c.Reply(update, c.L("audio_generating", map[string]any{
		"Duration": duration,
		"Prompt":   prompt,
	})); err != nil {
		c.Logger.WithError(err).Error("Failed to send status message")
	}

	path, err := c.stability.GenerateAudio(ctx, chatID, prompt, duration, activeKey)
	if err != nil {
		c.Logger.WithError(err).WithField("chat_id", chatID).Error("Audio generation failed")
		return c.Reply(update, c.L("audio_failed", nil))
	}
	defer c.Media.Remove(path)

	msg := telegram.NewAudioMessage(
		chatID,
		telegram.FilePath(path),
		c.L("audio_caption", map[string]any{"Duration": duration}),
		update.Message.MessageID,
	)
	if _, err := c.Tg.SendWithRetry(msg, 0); err != nil {
		c.Logger.WithError(err).Error("Failed to send audio")
		return err
	}

	return nil
}
