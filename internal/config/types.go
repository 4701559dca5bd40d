package config

import (
	"os"
	"slices"
	"strings"
)

type globalConfig struct {
	InterfaceLanguage string `koanf:"interface_language"`
}

type HTTPConfig struct {
	proxy *string `koanf:"proxy"`
}

func (c HTTPConfig) GetProxy() string {
	if c.proxy != nil && *c.proxy != "" {
		return *c.proxy
	}
	for _, name := range []string{"HTTPS_PROXY", "https_proxy", "HTTP_PROXY", "http_proxy"} {
		if proxyURL := os.Getenv(name); proxyURL != "" {
			return proxyURL
		}
	}
	return ""
}

type LoggingConfig struct {
	LogLevel string `koanf:"level"`
	FilePath string `koanf:"file_path"`
}

func (c LoggingConfig) Level() string {
	return strings.ToLower(c.LogLevel)
}

type TelegramConfig struct {
	Token        string  `koanf:"token"`
	AllowedUsers []int64 `koanf:"allowed_users"`
	AllowedChats []int64 `koanf:"allowed_chats"`
}

// IsAllowed reports whether an update may be handled. Empty allow lists
// mean the bot is open to everyone.
func (c TelegramConfig) IsAllowed(userID int64, chatID int64) bool {
	if len(c.AllowedUsers) == 0 && len(c.AllowedChats) == 0 {
		return true
	}
	return slices.Contains(c.AllowedUsers, userID) || slices.Contains(c.AllowedChats, chatID)
}

type GeminiConfig struct {
	BaseURL string `koanf:"base_url"`
	Model   string `koanf:"model"`
}

type StabilityConfig struct {
	BaseURL string `koanf:"base_url"`
}

type KeystoreConfig struct {
	// Backend is "file" (flat per-chat key files) or "sqlite".
	Backend string `koanf:"backend"`
	Dir     string `koanf:"dir"`
	DSN     string `koanf:"dsn"`
}

type MediaConfig struct {
	Dir string `koanf:"dir"`
}
