package telegram

import (
	tgbotapi "github.com/OvyFlash/telegram-bot-api"
)

type ParseMode = string

const (
	ModeMarkdownV2 = "MarkdownV2"
)

// MaxMessageLength is the hard Telegram limit for a single text message.
const MaxMessageLength = 4096

type (
	Update          = tgbotapi.Update
	FilePath        = tgbotapi.FilePath
	RequestFileData = tgbotapi.RequestFileData
)

type Message struct {
	MessageID int
	Chat      Chat
	Text      string
	From      User
	Command   string
}

type User struct {
	ID        int64
	FirstName string
	UserName  string
}

type Chat struct {
	ID   int64
	Type string
}

type MessageConfig interface {
	ToChattable() tgbotapi.Chattable
}

type TextMessage struct {
	ChatID              int64
	Text                string
	ReplyTo             int
	LinkPreviewDisabled bool
	ParseMode           ParseMode
}

func NewMessage(chatID int64, text string, replyTo int) TextMessage {
	return TextMessage{
		ChatID:  chatID,
		Text:    text,
		ReplyTo: replyTo,
	}
}

func (m TextMessage) ToChattable() tgbotapi.Chattable {
	msg := tgbotapi.NewMessage(m.ChatID, m.Text)
	msg.ReplyParameters.MessageID = m.ReplyTo
	msg.ParseMode = m.ParseMode
	msg.LinkPreviewOptions.IsDisabled = m.LinkPreviewDisabled
	return msg
}

type PhotoMessage struct {
	ChatID    int64
	Photo     RequestFileData
	Caption   string
	ReplyTo   int
	ParseMode ParseMode
}

func NewPhotoMessage(chatID int64, photo RequestFileData, caption string, replyTo int) PhotoMessage {
	return PhotoMessage{
		ChatID:  chatID,
		Photo:   photo,
		Caption: caption,
		ReplyTo: replyTo,
	}
}

func (m PhotoMessage) ToChattable() tgbotapi.Chattable {
	msg := tgbotapi.NewPhoto(m.ChatID, m.Photo)
	msg.Caption = m.Caption
	msg.ReplyParameters.MessageID = m.ReplyTo
	msg.ParseMode = m.ParseMode
	return msg
}

type VideoMessage struct {
	ChatID    int64
	Video     RequestFileData
	Caption   string
	ReplyTo   int
	ParseMode ParseMode
}

func NewVideoMessage(chatID int64, video RequestFileData, caption string, replyTo int) VideoMessage {
	return VideoMessage{
		ChatID:  chatID,
		Video:   video,
		Caption: caption,
		ReplyTo: replyTo,
	}
}

func (m VideoMessage) ToChattable() tgbotapi.Chattable {
	msg := tgbotapi.NewVideo(m.ChatID, m.Video)
	msg.Caption = m.Caption
	msg.ReplyParameters.MessageID = m.ReplyTo
	msg.ParseMode = m.ParseMode
	return msg
}

type AudioMessage struct {
	ChatID    int64
	Audio     RequestFileData
	Caption   string
	ReplyTo   int
	ParseMode ParseMode
}

func NewAudioMessage(chatID int64, audio RequestFileData, caption string, replyTo int) AudioMessage {
	return AudioMessage{
		ChatID:  chatID,
		Audio:   audio,
		Caption: caption,
		ReplyTo: replyTo,
	}
}

func (m AudioMessage) ToChattable() tgbotapi.Chattable {
	msg := tgbotapi.NewAudio(m.ChatID, m.Audio)
	msg.Caption = m.Caption
	msg.ReplyParameters.MessageID = m.ReplyTo
	msg.ParseMode = m.ParseMode
	return msg
}

type DocumentMessage struct {
	ChatID   int64
	Document RequestFileData
	Caption  string
	ReplyTo  int
}

func NewDocumentMessage(chatID int64, document RequestFileData, caption string, replyTo int) DocumentMessage {
	return DocumentMessage{
		ChatID:   chatID,
		Document: document,
		Caption:  caption,
		ReplyTo:  replyTo,
	}
}

func (m DocumentMessage) ToChattable() tgbotapi.Chattable {
	msg := tgbotapi.NewDocument(m.ChatID, m.Document)
	msg.Caption = m.Caption
	msg.ReplyParameters.MessageID = m.ReplyTo
	return msg
}

type EditMessageTextConfig struct {
	ChatID    int64
	MessageID int
	Text      string
	ParseMode ParseMode
}

func NewEditMessageText(chatID int64, messageID int, text string) EditMessageTextConfig {
	return EditMessageTextConfig{
		ChatID:    chatID,
		MessageID: messageID,
		Text:      text,
	}
}

func (m EditMessageTextConfig) ToChattable() tgbotapi.Chattable {
	msg := tgbotapi.NewEditMessageText(m.ChatID, m.MessageID, m.Text)
	msg.ParseMode = m.ParseMode
	return msg
}

type UpdateConfig struct {
	Offset  int
	Limit   int
	Timeout int
}

type ChatAction string

const (
	ActionTyping      ChatAction = "typing"
	ActionUploadPhoto ChatAction = "upload_photo"
	ActionUploadVideo ChatAction = "upload_video"
	ActionRecordAudio ChatAction = "record_audio"
)

type Client interface {
	Send(msg MessageConfig) (*Message, error)
	SendWithRetry(msg MessageConfig, maxRetryCount int) (*Message, error)
	SendLong(chatID int64, text string, replyTo int) error
	SendChatAction(chatID int64, action ChatAction) error
	GetFileURL(fileID string) (string, error)
	DownloadFile(url string) ([]byte, error)
	GetUpdatesChan(config UpdateConfig) <-chan tgbotapi.Update
	NewUpdate(offset, timeout, limit int) UpdateConfig
	Self() User
}
