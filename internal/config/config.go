package config

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
)

const (
	GLOBAL_LANGUAGE          = "global.interface_language"
	HTTP_PROXY               = "http.proxy"
	TELEGRAM_TOKEN           = "telegram.token"
	TELEGRAM_ALLOWED_USERS   = "telegram.allowed_users"
	TELEGRAM_ALLOWED_CHATS   = "telegram.allowed_chats"
	GEMINI_BASE_URL          = "gemini.base_url"
	GEMINI_MODEL             = "gemini.model"
	STABILITY_BASE_URL       = "stability.base_url"
	KEYSTORE_BACKEND         = "keystore.backend"
	KEYSTORE_DIR             = "keystore.dir"
	KEYSTORE_DSN             = "keystore.dsn"
	MEDIA_DIR                = "media.dir"
	LOGGING_LEVEL            = "logging.level"
	LOGGING_FILE_PATH        = "logging.file_path"
)

type Config struct {
	k *koanf.Koanf
}

var configPath string

func init() {
	flag.StringVar(&configPath, "config", "", "Path to config file")
}

func Load() (*Config, error) {
	k := koanf.New(".")

	defaults := map[string]any{
		GLOBAL_LANGUAGE:    "en",
		HTTP_PROXY:         nil,
		TELEGRAM_TOKEN:     "",
		GEMINI_BASE_URL:    "https://generativelanguage.googleapis.com/v1beta",
		GEMINI_MODEL:       "gemini-2.0-flash",
		STABILITY_BASE_URL: "https://api.stability.ai",
		KEYSTORE_BACKEND:   "file",
		KEYSTORE_DIR:       ".",
		KEYSTORE_DSN:       "keys.db?_journal=WAL&_busy_timeout=5000&_synchronous=NORMAL",
		MEDIA_DIR:          ".",
		LOGGING_LEVEL:      "info",
		LOGGING_FILE_PATH:  "",

		"commands.start.enabled":        true,
		"commands.imagine.enabled":      true,
		"commands.credits.enabled":      true,
		"commands.addgeminikey.enabled": true,
		"commands.text2audio.enabled":   true,
		"commands.videofy.enabled":      true,
		"commands.chat.enabled":         true,
	}
	k.Load(confmap.Provider(defaults, "."), nil)

	for _, path := range getConfigPaths() {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, fmt.Errorf("error loading config %s: %v", path, err)
			}
			break
		}
	}

	k.Load(env.Provider("DREAMBOT_", ".", func(s string) string {
		return strings.ReplaceAll(
			strings.ToLower(strings.TrimPrefix(s, "DREAMBOT_")),
			"_", ".",
		)
	}), nil)

	if k.Get(TELEGRAM_TOKEN) == "" {
		return nil, fmt.Errorf("telegram token is required")
	}

	return &Config{k: k}, nil
}

func getConfigPaths() []string {
	paths := []string{}
	if configPath != "" {
		paths = append(paths, configPath)
	}
	paths = append(paths, "config.toml")
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, home+"/.config/dreambot/config.toml")
	}
	return paths
}

func (c *Config) Global() globalConfig {
	return globalConfig{
		InterfaceLanguage: c.k.String(GLOBAL_LANGUAGE),
	}
}

func (c *Config) Log() LoggingConfig {
	return LoggingConfig{
		LogLevel: c.k.String(LOGGING_LEVEL),
		FilePath: c.k.String(LOGGING_FILE_PATH),
	}
}

func (c *Config) HTTP() HTTPConfig {
	var proxy *string
	if c.k.Exists(HTTP_PROXY) && c.k.String(HTTP_PROXY) != "" {
		p := c.k.String(HTTP_PROXY)
		proxy = &p
	}
	return HTTPConfig{proxy: proxy}
}

func (c *Config) Telegram() TelegramConfig {
	return TelegramConfig{
		Token:        c.k.String(TELEGRAM_TOKEN),
		AllowedUsers: c.k.Int64s(TELEGRAM_ALLOWED_USERS),
		AllowedChats: c.k.Int64s(TELEGRAM_ALLOWED_CHATS),
	}
}

func (c *Config) Gemini() GeminiConfig {
	return GeminiConfig{
		BaseURL: c.k.String(GEMINI_BASE_URL),
		Model:   c.k.String(GEMINI_MODEL),
	}
}

func (c *Config) Stability() StabilityConfig {
	return StabilityConfig{
		BaseURL: c.k.String(STABILITY_BASE_URL),
	}
}

func (c *Config) Keystore() KeystoreConfig {
	return KeystoreConfig{
		Backend: c.k.String(KEYSTORE_BACKEND),
		Dir:     c.k.String(KEYSTORE_DIR),
		DSN:     c.k.String(KEYSTORE_DSN),
	}
}

func (c *Config) Media() MediaConfig {
	return MediaConfig{
		Dir: c.k.String(MEDIA_DIR),
	}
}

func (c *Config) CommandEnabled(name string) bool {
	return c.k.Bool(fmt.Sprintf("commands.%s.enabled", name))
}
