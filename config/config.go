package config

import (
	"time"

	"github.com/customeros/fresh/internal/enum"
	"github.com/customeros/fresh/internal/logger"
	"github.com/customeros/fresh/internal/models"
	"github.com/customeros/fresh/internal/tracing"
)

type AppConfig struct {
	AccountsFile      string        `env:"FRESH_ACCOUNTS_FILE"`
	PasswordLength    int           `env:"FRESH_PASSWORD_LENGTH" envDefault:"50"`
	PasswordGenerator string        `env:"FRESH_PASSWORD_GENERATOR" envDefault:"base64"`
	RetryTries        int           `env:"FRESH_RETRY_TRIES" envDefault:"10"`
	RetryInterval     time.Duration `env:"FRESH_RETRY_INTERVAL" envDefault:"15s"`
	Archive           bool          `env:"FRESH_ARCHIVE" envDefault:"true"`
	MailBackend       string        `env:"FRESH_MAIL_BACKEND" envDefault:"gmail"`
	HttpTimeout       time.Duration `env:"FRESH_HTTP_TIMEOUT" envDefault:"30s"`
	UserAgent         string        `env:"FRESH_USER_AGENT" envDefault:"Mozilla/5.0 (compatible; fresh/1.0)"`
}

func (c *AppConfig) RetryPolicy() models.RetryPolicy {
	return models.RetryPolicy{Tries: c.RetryTries, Interval: c.RetryInterval}
}

func (c *AppConfig) Backend() enum.MailBackend {
	return enum.MailBackend(c.MailBackend)
}

type GmailConfig struct {
	ClientID     string `env:"GOOGLE_CLIENT_ID"`
	ClientSecret string `env:"GOOGLE_CLIENT_SECRET"`
	CallbackPort string `env:"GOOGLE_CALLBACK_PORT" envDefault:"8085"`
	UserID       string `env:"GMAIL_USER_ID" envDefault:"me"`
}

type KeyringConfig struct {
	ServiceName  string `env:"FRESH_KEYRING_SERVICE" envDefault:"fresh"`
	FileDir      string `env:"FRESH_KEYRING_DIR" envDefault:"~/.config/fresh/credentials"`
	FilePassword string `env:"FRESH_KEYRING_PASSWORD" envDefault:"fresh-file-key"`
}

type ImapConfig struct {
	Host           string `env:"IMAP_HOST"`
	Port           int    `env:"IMAP_PORT" envDefault:"993"`
	Username       string `env:"IMAP_USERNAME"`
	Password       string `env:"IMAP_PASSWORD"`
	TLS            bool   `env:"IMAP_TLS" envDefault:"true"`
	Mailbox        string `env:"IMAP_MAILBOX" envDefault:"INBOX"`
	ArchiveMailbox string `env:"IMAP_ARCHIVE_MAILBOX" envDefault:"Archive"`
}

type CronConfig struct {
	// Six-field schedule (seconds first); empty disables scheduled rotation.
	CronScheduleRotate string `env:"CRON_SCHEDULE_ROTATE"`
}

type Config struct {
	AppConfig     *AppConfig
	Logger        *logger.Config
	Tracing       *tracing.JaegerConfig
	GmailConfig   *GmailConfig
	KeyringConfig *KeyringConfig
	ImapConfig    *ImapConfig
	CronConfig    *CronConfig
}
