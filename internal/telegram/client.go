package telegram

import (
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/OvyFlash/telegram-bot-api"

	"github.com/avetisyanz/dreambot/internal/logger"
)

type BotClient struct {
	bot    *tgbotapi.BotAPI
	http   *http.Client
	logger logger.Logger
}

func NewBotClient(bot *tgbotapi.BotAPI, httpClient *http.Client, logger logger.Logger) Client {
	return &BotClient{
		bot:    bot,
		http:   httpClient,
		logger: logger,
	}
}

func (c *BotClient) Send(msg MessageConfig) (*Message, error) {
	sentMsg, err := c.bot.Send(msg.ToChattable())
	if err != nil {
		return nil, err
	}
	return adaptMessage(&sentMsg), nil
}

func (c *BotClient) SendWithRetry(msg MessageConfig, maxRetryCount int) (*Message, error) {
	maxRetries := 1
	if maxRetryCount > 0 {
		maxRetries = maxRetryCount
	}
	retryCount := 0

	for {
		sentMsg, err := c.bot.Send(msg.ToChattable())
		if err == nil {
			return adaptMessage(&sentMsg), nil
		}

		if strings.Contains(err.Error(), "Too Many Requests: retry after") {
			retryAfter := extractRetryAfter(err.Error())
			waitTime := time.Duration(retryAfter+2) * time.Second

			c.logger.WithFields(logger.Fields{
				"retry_after": retryAfter,
				"wait_time":   waitTime,
				"attempt":     retryCount + 1,
			}).Warn("Rate limit hit, waiting before retry")

			time.Sleep(waitTime)
			retryCount++

			if retryCount > maxRetries {
				c.logger.Error("Max retries reached for rate limited message")
				return nil, err
			}
			continue
		}

		return nil, err
	}
}

// SendLong splits text at the Telegram message limit and sends the chunks
// in order. Only the first chunk replies to the original message.
func (c *BotClient) SendLong(chatID int64, text string, replyTo int) error {
	for offset := 0; offset < len(text); offset += MaxMessageLength {
		end := min(offset+MaxMessageLength, len(text))
		msg := NewMessage(chatID, text[offset:end], 0)
		if offset == 0 {
			msg.ReplyTo = replyTo
		}
		if _, err := c.Send(msg); err != nil {
			return err
		}
	}
	return nil
}

func (c *BotClient) SendChatAction(chatID int64, action ChatAction) error {
	_, err := c.bot.Request(tgbotapi.NewChatAction(chatID, string(action)))
	return err
}

func (c *BotClient) GetFileURL(fileID string) (string, error) {
	file, err := c.bot.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return "", err
	}
	return file.Link(c.bot.Token), nil
}

func (c *BotClient) DownloadFile(url string) ([]byte, error) {
	resp, err := c.http.Get(url)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download file: unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func (c *BotClient) GetUpdatesChan(config UpdateConfig) <-chan tgbotapi.Update {
	return c.bot.GetUpdatesChan(tgbotapi.UpdateConfig{
		Offset:  config.Offset,
		Limit:   config.Limit,
		Timeout: config.Timeout,
	})
}

func (c *BotClient) NewUpdate(offset, timeout, limit int) UpdateConfig {
	return UpdateConfig{
		Offset:  offset,
		Limit:   limit,
		Timeout: timeout,
	}
}

func (c *BotClient) Self() User {
	return adaptUser(&c.bot.Self)
}

func extractRetryAfter(errMsg string) int {
	re := regexp.MustCompile(`retry after (\d+)`)
	matches := re.FindStringSubmatch(errMsg)
	if len(matches) > 1 {
		retryAfter, _ := strconv.Atoi(matches[1])
		return retryAfter
	}
	return 0
}

func adaptMessage(msg *tgbotapi.Message) *Message {
	if msg == nil {
		return nil
	}
	return &Message{
		MessageID: msg.MessageID,
		Chat:      adaptChat(&msg.Chat),
		Text:      msg.Text,
		From:      adaptUser(msg.From),
		Command:   msg.Command(),
	}
}

func adaptUser(user *tgbotapi.User) User {
	if user == nil {
		return User{}
	}
	return User{
		ID:        user.ID,
		FirstName: user.FirstName,
		UserName:  user.UserName,
	}
}

func adaptChat(chat *tgbotapi.Chat) Chat {
	if chat == nil {
		return Chat{}
	}
	return Chat{
		ID:   chat.ID,
		Type: chat.Type,
	}
}
