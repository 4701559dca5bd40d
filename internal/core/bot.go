package core

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/avetisyanz/dreambot/internal/commands"
	"github.com/avetisyanz/dreambot/internal/commands/chat"
	"github.com/avetisyanz/dreambot/internal/commands/videofy"
	"github.com/avetisyanz/dreambot/internal/config"
	"github.com/avetisyanz/dreambot/internal/logger"
	"github.com/avetisyanz/dreambot/internal/service"
	"github.com/avetisyanz/dreambot/internal/telegram"
)

// KeyEntry is a command that additionally consumes the chat's next
// free-text message as an API key.
type KeyEntry interface {
	commands.Command
	HasPending(chatID int64) bool
	Complete(update telegram.Update) error
}

type Bot struct {
	commands  map[string]commands.Command
	keyEntry  KeyEntry
	tg        telegram.Client
	cfg       *config.Config
	logger    logger.Logger
	localizer *service.Localizer
}

func NewBot(
	tg telegram.Client,
	logger logger.Logger,
	cfg *config.Config,
	localizer *service.Localizer,
) (*Bot, error) {
	return &Bot{
		commands:  make(map[string]commands.Command),
		tg:        tg,
		cfg:       cfg,
		logger:    logger,
		localizer: localizer,
	}, nil
}

func (b *Bot) Start(ctx context.Context) error {
	u := b.tg.NewUpdate(0, 60, 0)
	updates := b.tg.GetUpdatesChan(u)

	b.logger.Info("Bot started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update := <-updates:
			b.handleUpdate(update)
		}
	}
}

// handleUpdate processes one update to completion before the loop takes
// the next. Key state is reconstructed from the store per request, so
// handlers must not race each other.
func (b *Bot) handleUpdate(update telegram.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil {
		return
	}

	jsonData, _ := json.Marshal(update)
	b.logger.WithFields(logger.Fields{
		"update_structure": string(jsonData),
	}).Debug("Received update")

	if !b.cfg.Telegram().IsAllowed(msg.From.ID, msg.Chat.ID) {
		b.logger.WithFields(logger.Fields{
			"user_id":  msg.From.ID,
			"username": msg.From.UserName,
			"chat_id":  msg.Chat.ID,
		}).Warn("Unauthorized access attempt")
		return
	}

	if msg.IsCommand() {
		name := strings.ToLower(msg.Command())
		if _, botName, ok := strings.Cut(msg.CommandWithAt(), "@"); ok &&
			!strings.EqualFold(botName, b.tg.Self().UserName) {
			return // addressed to another bot
		}

		var cmd commands.Command
		for cmdName, c := range b.commands {
			if cmdName == name || slices.Contains(c.Aliases(), name) {
				cmd = c
				break
			}
		}
		if cmd == nil {
			return
		}

		b.logger.WithFields(logger.Fields{
			"command":  name,
			"user_id":  msg.From.ID,
			"username": msg.From.UserName,
			"args":     msg.CommandArguments(),
		}).Info("Handling command")
		b.execute(cmd, update)
		return
	}

	if b.keyEntry != nil && msg.Text != "" && b.keyEntry.HasPending(msg.Chat.ID) {
		if err := b.keyEntry.Complete(update); err != nil {
			b.logger.WithError(err).Error("Failed to handle key entry")
			b.sendErrorMessage(err, msg.Chat.ID, msg.MessageID)
		}
		return
	}

	if len(msg.Photo) > 0 {
		if cmd, ok := b.commands[videofy.CommandName]; ok {
			b.execute(cmd, update)
		}
		return
	}

	if msg.Text != "" {
		if cmd, ok := b.commands[chat.CommandName]; ok {
			b.execute(cmd, update)
		}
	}
}

func (b *Bot) execute(cmd commands.Command, update telegram.Update) {
	if err := cmd.Execute(update); err != nil {
		b.logger.WithError(err).WithField("command", cmd.Name()).Error("Failed to handle command")
		b.sendErrorMessage(err, update.Message.Chat.ID, update.Message.MessageID)
	}
}

func (b *Bot) RegisterCommand(cmd commands.Command) {
	if cmd == nil {
		b.logger.Error("Attempting to register nil command")
		return
	}

	name := cmd.Name()
	if name == "" {
		b.logger.Error("Attempting to register command with empty name")
		return
	}

	b.logger.WithFields(logger.Fields{
		"command": name,
	}).Debug("Registering command")

	b.commands[name] = cmd
}

// RegisterKeyEntry registers the command both as a regular slash command
// and as the consumer of pending key messages.
func (b *Bot) RegisterKeyEntry(cmd KeyEntry) {
	b.RegisterCommand(cmd)
	b.keyEntry = cmd
}

func (b *Bot) GetCommands() map[string]commands.Command {
	return b.commands
}

func (b *Bot) sendErrorMessage(err error, chatID int64, messageID int) error {
	errorMsg := telegram.NewMessage(
		chatID,
		fmt.Sprintf("%s: %v", b.localizer.Localize("error", nil), err),
		messageID,
	)
	if _, sendErr := b.tg.Send(errorMsg); sendErr != nil {
		b.logger.WithError(sendErr).Error("Failed to send error message")
		return sendErr
	}
	return nil
}
