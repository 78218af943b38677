package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	MailTransportInline   = "inline"
	MailTransportRabbitMQ = "rabbitmq"
	MailTransportAsynq    = "asynq"

	EmailSenderSMTP = "smtp"
	EmailSenderLog  = "log"
)

type Config struct {
	//App
	Env string // dev / staging / prod
	//HTTP
	HTTPAddr string
	// PublicBaseURL is used to build absolute links in emails.
	PublicBaseURL string
	AuthURLPrefix string
	BodyLimit     int64

	// Sessions / security
	SessionSecret       string
	SessionTTL          time.Duration
	SessionCookieSecure bool
	ConfirmTokenSecret  string
	ConfirmTokenTTL     time.Duration

	EmailConfirmationDisabled bool

	// Infrastructure
	DBAddr        string
	DBDebug       bool
	DBAutoMigrate bool

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	RabbitURL      string
	RabbitExchange string
	RabbitQueue    string

	// Mail
	MailTransport string // inline / rabbitmq / asynq
	MailTimeout   time.Duration
	EmailSender   string // smtp / log
	SMTPHost      string
	SMTPPort      int
	SMTPUsername  string
	SMTPPassword  string
	SMTPFrom      string
	SMTPTLSPolicy string // mandatory / opportunistic / none

	// Dev seeding
	SeedAdminEmail    string
	SeedAdminPassword string

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
}

// ConfirmURLBase is the absolute prefix confirmation tokens are appended to.
func (c *Config) ConfirmURLBase() string {
	return strings.TrimRight(c.PublicBaseURL, "/") + c.AuthURLPrefix + "/confirm/"
}

func Load() (*Config, error) {
	// .env is optional; real env always wins.
	_ = godotenv.Load()

	src, err := newSource(os.Getenv("CONFIG_FILE"))
	if err != nil {
		return nil, err
	}
	return load(src)
}

func load(src *source) (*Config, error) {
	cfg := &Config{
		Env:           src.get("ENV", "dev"),
		HTTPAddr:      src.get("HTTP_ADDR", ":8080"),
		PublicBaseURL: src.get("PUBLIC_BASE_URL", "http://localhost:8080"),
		AuthURLPrefix: src.get("AUTH_URL_PREFIX", "/auth"),
	}
	if !strings.HasPrefix(cfg.AuthURLPrefix, "/") {
		return nil, fmt.Errorf("AUTH_URL_PREFIX must start with `/`")
	}
	cfg.AuthURLPrefix = strings.TrimRight(cfg.AuthURLPrefix, "/")

	// required values
	cfg.SessionSecret = src.get("SESSION_SECRET", "")
	if cfg.SessionSecret == "" {
		return nil, fmt.Errorf("missing required env var: SESSION_SECRET")
	}
	if len(cfg.SessionSecret) < 32 {
		return nil, fmt.Errorf("SESSION_SECRET must be at least 32 bytes")
	}
	cfg.ConfirmTokenSecret = src.get("CONFIRM_TOKEN_SECRET", "")
	if cfg.ConfirmTokenSecret == "" {
		return nil, fmt.Errorf("missing required env var: CONFIRM_TOKEN_SECRET")
	}

	// Infrastructure dependencies.
	// The account-service cannot operate without its database.
	// Fail fast here to avoid starting in a broken or partially-initialized state.
	cfg.DBAddr = src.get("DB_ADDR", "")
	if cfg.DBAddr == "" {
		return nil, fmt.Errorf("missing required env var: DB_ADDR")
	}

	// optional with defaults
	var err error
	if cfg.SessionTTL, err = src.duration("SESSION_TTL", 7*24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.ConfirmTokenTTL, err = src.duration("CONFIRM_TOKEN_TTL", time.Hour); err != nil {
		return nil, err
	}
	if cfg.SessionCookieSecure, err = src.boolean("SESSION_COOKIE_SECURE", cfg.Env != "dev"); err != nil {
		return nil, err
	}
	if cfg.EmailConfirmationDisabled, err = src.boolean("EMAIL_CONFIRMATION_DISABLED", false); err != nil {
		return nil, err
	}
	if cfg.DBDebug, err = src.boolean("DB_DEBUG", false); err != nil {
		return nil, err
	}
	if cfg.DBAutoMigrate, err = src.boolean("DB_AUTO_MIGRATE", true); err != nil {
		return nil, err
	}
	if cfg.BodyLimit, err = src.int64("HTTP_BODY_LIMIT", 1<<20); err != nil {
		return nil, err
	}

	if err := loadMail(src, cfg); err != nil {
		return nil, err
	}

	cfg.SeedAdminEmail = src.get("SEED_ADMIN_EMAIL", "")
	cfg.SeedAdminPassword = src.get("SEED_ADMIN_PASSWORD", "")

	//Timeout values are optional and have a default value if not
	if cfg.HTTPReadTimeout, err = src.duration("HTTP_READ_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.HTTPWriteTimeout, err = src.duration("HTTP_WRITE_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.HTTPIdleTimeout, err = src.duration("HTTP_IDLE_TIMEOUT", time.Minute); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadMailer reads only the settings cmd/mailer needs: broker, Redis and
// SMTP. Session and database secrets are not required.
func LoadMailer() (*Config, error) {
	_ = godotenv.Load()

	src, err := newSource(os.Getenv("CONFIG_FILE"))
	if err != nil {
		return nil, err
	}
	cfg := &Config{Env: src.get("ENV", "dev")}
	if err := loadMail(src, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadMail(src *source, cfg *Config) error {
	// Redis is optional: sessions and rate limits fall back to memory.
	cfg.RedisAddr = src.get("REDIS_ADDR", "")
	cfg.RedisPassword = src.get("REDIS_PASSWORD", "")
	rdb, err := src.int64("REDIS_DB", 0)
	if err != nil {
		return err
	}
	cfg.RedisDB = int(rdb)

	cfg.RabbitURL = src.get("RABBIT_URL", "")
	cfg.RabbitExchange = src.get("RABBIT_EXCHANGE", "account.mail")
	cfg.RabbitQueue = src.get("RABBIT_QUEUE", "account-mailer.q")

	cfg.MailTransport = strings.ToLower(src.get("MAIL_TRANSPORT", MailTransportInline))
	switch cfg.MailTransport {
	case MailTransportInline:
	case MailTransportRabbitMQ:
		if cfg.RabbitURL == "" {
			return fmt.Errorf("MAIL_TRANSPORT=rabbitmq requires RABBIT_URL")
		}
	case MailTransportAsynq:
		if cfg.RedisAddr == "" {
			return fmt.Errorf("MAIL_TRANSPORT=asynq requires REDIS_ADDR")
		}
	default:
		return fmt.Errorf("invalid MAIL_TRANSPORT: %q", cfg.MailTransport)
	}
	if cfg.MailTimeout, err = src.duration("MAIL_TIMEOUT", 30*time.Second); err != nil {
		return err
	}

	cfg.EmailSender = strings.ToLower(src.get("EMAIL_SENDER", EmailSenderLog))
	switch cfg.EmailSender {
	case EmailSenderLog:
	case EmailSenderSMTP:
		cfg.SMTPHost = src.get("SMTP_HOST", "")
		if cfg.SMTPHost == "" {
			return fmt.Errorf("EMAIL_SENDER=smtp requires SMTP_HOST")
		}
	default:
		return fmt.Errorf("invalid EMAIL_SENDER: %q", cfg.EmailSender)
	}
	port, err := src.int64("SMTP_PORT", 587)
	if err != nil {
		return err
	}
	cfg.SMTPPort = int(port)
	cfg.SMTPUsername = src.get("SMTP_USERNAME", "")
	cfg.SMTPPassword = src.get("SMTP_PASSWORD", "")
	cfg.SMTPFrom = src.get("SMTP_FROM", "no-reply@localhost")
	cfg.SMTPTLSPolicy = strings.ToLower(src.get("SMTP_TLS_POLICY", "mandatory"))
	return nil
}

func (s *source) duration(key string, def time.Duration) (time.Duration, error) {
	v := s.get(key, "")
	if v == "" {
		return def, nil
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid duration for %s: %q: %w", key, v, err)
	}
	return d, nil
}

func (s *source) boolean(key string, def bool) (bool, error) {
	v := s.get(key, "")
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid bool for %s: %q: %w", key, v, err)
	}
	return b, nil
}

func (s *source) int64(key string, def int64) (int64, error) {
	v := s.get(key, "")
	if v == "" {
		return def, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid int for %s: %q: %w", key, v, err)
	}
	return n, nil
}
