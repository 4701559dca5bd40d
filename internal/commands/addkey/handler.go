package addkey

import (
	"context"
	"strings"

	"github.com/avetisyanz/dreambot/internal/app/di"
	"github.com/avetisyanz/dreambot/internal/commands/base"
	"github.com/avetisyanz/dreambot/internal/keystore"
	"github.com/avetisyanz/dreambot/internal/provider"
	"github.com/avetisyanz/dreambot/internal/telegram"
)

const (
	CommandName          = "addgeminikey"
	StabilityCommandName = "addcredit"
)

// Command collects API keys in two steps: the command itself asks for the
// key, and the chat's next free-text message is consumed as the literal
// token. The dispatcher routes that follow-up here via HasPending.
type Command struct {
	*base.Command
	pending map[int64]keystore.Kind
}

func New(di *di.Container) *Command {
	cmd := &Command{
		pending: make(map[int64]keystore.Kind),
	}
	cmd.Command = base.NewCommand(cmd, di)
	return cmd
}

func (c *Command) Name() string {
	return CommandName
}

func (c *Command) Aliases() []string {
	return []string{StabilityCommandName}
}

func (c *Command) Execute(update telegram.Update) error {
	chatID := update.Message.Chat.ID

	kind := keystore.KindGemini
	promptID := "addkey_prompt_gemini"
	if strings.EqualFold(update.Message.Command(), StabilityCommandName) {
		kind = keystore.KindStability
		promptID = "addkey_prompt_stability"
	}

	c.pending[chatID] = kind
	return c.Reply(update, c.L(promptID, nil))
}

// HasPending reports whether the chat's next message should be treated as
// a key entry.
func (c *Command) HasPending(chatID int64) bool {
	_, ok := c.pending[chatID]
	return ok
}

// Complete consumes the follow-up message carrying the key itself.
func (c *Command) Complete(update telegram.Update) error {
	chatID := update.Message.Chat.ID
	kind, ok := c.pending[chatID]
	if !ok {
		return nil
	}
	delete(c.pending, chatID)

	key := strings.TrimSpace(update.Message.Text)
	if key == "" {
		c.pending[chatID] = kind
		promptID := "addkey_prompt_gemini"
		if kind == keystore.KindStability {
			promptID = "addkey_prompt_stability"
		}
		return c.Reply(update, c.L(promptID, nil))
	}

	ctx := context.Background()
	var (
		result provider.Validation
		err    error
	)
	switch kind {
	case keystore.KindStability:
		result, err = c.Keys.AddStabilityKey(ctx, chatID, key)
	default:
		result, err = c.Keys.AddGeminiKey(ctx, chatID, key)
	}
	if err != nil {
		c.Logger.WithError(err).WithField("chat_id", chatID).Error("Failed to store key")
		return err
	}

	switch result {
	case provider.ValidationValid:
		return c.Reply(update, c.L("addkey_valid", nil))
	case provider.ValidationInvalid:
		return c.Reply(update, c.L("addkey_invalid", nil))
	default:
		return c.Reply(update, c.L("addkey_indeterminate", nil))
	}
}
