package videofy

import (
	"context"
	"errors"

	"github.com/avetisyanz/dreambot/internal/app/di"
	"github.com/avetisyanz/dreambot/internal/commands/base"
	"github.com/avetisyanz/dreambot/internal/keystore"
	"github.com/avetisyanz/dreambot/internal/logger"
	"github.com/avetisyanz/dreambot/internal/provider/stability"
	"github.com/avetisyanz/dreambot/internal/telegram"
)

const CommandName = "videofy"

// Command animates a user-sent photo through the image-to-video endpoint.
// It is dispatched on incoming photos rather than a slash command.
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
	msg := update.Message
	chatID := msg.Chat.ID
	photos := msg.Photo
	if len(photos) == 0 {
		return nil
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

	// Sizes are ordered smallest first; take the best one.
	largest := photos[len(photos)-1]
	fileURL, err := c.Tg.GetFileURL(largest.FileID)
	if err != nil {
		c.Logger.WithError(err).Error("Failed to resolve photo file URL")
		return err
	}
	data, err := c.Tg.DownloadFile(fileURL)
	if err != nil {
		c.Logger.WithError(err).Error("Failed to download photo")
		return err
	}
	imagePath, err := c.Media.Write(chatID, "input_image.jpg", data)
	if err != nil {
		return err
	}

	status, err := c.Tg.SendWithRetry(
		telegram.NewMessage(chatID, c.L("video_starting", nil), msg.MessageID), 0,
	)
	if err != nil {
		c.Logger.WithError(err).Error("Failed to send status message")
	}

	jobID, submitErr := c.stability.SubmitImageToVideo(ctx, imagePath, activeKey)
	// The upload copy is spent once the job is submitted, successfully or not.
	c.Media.Remove(imagePath)
	if submitErr != nil {
		c.Logger.WithError(submitErr).WithField("chat_id", chatID).Error("Video job submit failed")
		return c.editStatus(chatID, status, "video_submit_failed")
	}

	onProgress := func() {
		if err := c.editStatus(chatID, status, "video_processing"); err != nil {
			c.Logger.WithError(err).Warn("Failed to update status message")
		}
	}
	videoPath, err := c.stability.PollVideo(ctx, chatID, jobID, activeKey, onProgress)
	if err != nil {
		c.Logger.WithError(err).WithFields(logger.Fields{
			"chat_id": chatID,
			"job_id":  jobID,
		}).Error("Video generation failed")
		return c.editStatus(chatID, status, "video_failed")
	}
	defer c.Media.Remove(videoPath)

	if err := c.Tg.SendChatAction(chatID, telegram.ActionUploadVideo); err != nil {
		c.Logger.WithError(err).Warn("Failed to send chat action")
	}
	video := telegram.NewVideoMessage(
		chatID,
		telegram.FilePath(videoPath),
		c.L("video_caption", nil),
		msg.MessageID,
	)
	if _, err := c.Tg.SendWithRetry(video, 0); err != nil {
		c.Logger.WithError(err).Error("Failed to send video")
		return err
	}

	return nil
}

func (c *Command) editStatus(chatID int64, status *telegram.Message, messageID string) error {
	text := c.L(messageID, nil)
	if status == nil {
		_, err := c.Tg.SendWithRetry(telegram.NewMessage(chatID, text, 0), 0)
		return err
	}
	_, err := c.Tg.SendWithRetry(telegram.NewEditMessageText(chatID, status.MessageID, text), 0)
	return err
}
