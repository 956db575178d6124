package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is built once at startup and handed to every component.
type Config struct {
	Port           string
	MongoURI       string
	MongoDatabase  string
	RequestTimeout time.Duration
	CORSOrigins    []string
	// TrustedProxies may set the client IP through X-Forwarded-For. Empty
	// trusts none, so the socket peer is always the client.
	TrustedProxies []string

	JWTSecret  string
	JWTTTL     time.Duration
	BcryptCost int

	ResetTokenTTL time.Duration
	ResetURLBase  string

	AdminEmail    string
	AdminPassword string

	Log       Log
	Mail      Mail
	Upload    Upload
	RateLimit RateLimit
}

type Log struct {
	Level  string
	Format string
}

// Mail selects and configures the outgoing mail provider.
type Mail struct {
	Provider string // mailgun, sendgrid, smtp or log; no default
	From     string

	MailgunDomain string
	MailgunAPIKey string

	SendGridAPIKey string

	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
}

// Upload selects where avatars are written.
type Upload struct {
	Driver        string // local or s3
	Dir           string
	DefaultAvatar string
	MaxBytes      int64

	S3Bucket    string
	S3Region    string
	S3PublicURL string
}

type RateLimit struct {
	RPS   float64
	Burst int
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("API_PORT", "8080")
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DATABASE", "hospital")
	v.SetDefault("REQUEST_TIMEOUT", "10s")
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("JWT_TTL", "24h")
	v.SetDefault("BCRYPT_COST", 10)
	v.SetDefault("RESET_TOKEN_TTL", "1h")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("MAIL_FROM", "no-reply@hospital.local")
	v.SetDefault("SMTP_PORT", "587")
	v.SetDefault("UPLOAD_DRIVER", "local")
	v.SetDefault("UPLOAD_DIR", "./uploads")
	v.SetDefault("DEFAULT_AVATAR", "pics/default.png")
	v.SetDefault("UPLOAD_MAX_BYTES", 5<<20)
	v.SetDefault("RATE_LIMIT_RPS", 5)
	v.SetDefault("RATE_LIMIT_BURST", 10)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Port:           v.GetString("API_PORT"),
		MongoURI:       v.GetString("MONGO_URI"),
		MongoDatabase:  v.GetString("MONGO_DATABASE"),
		RequestTimeout: v.GetDuration("REQUEST_TIMEOUT"),
		CORSOrigins:    splitList(v.GetString("CORS_ORIGINS")),
		TrustedProxies: splitList(v.GetString("TRUSTED_PROXIES")),
		JWTSecret:      v.GetString("JWT_SECRET"),
		JWTTTL:         v.GetDuration("JWT_TTL"),
		BcryptCost:     v.GetInt("BCRYPT_COST"),
		ResetTokenTTL:  v.GetDuration("RESET_TOKEN_TTL"),
		ResetURLBase:   strings.TrimRight(v.GetString("RESET_URL_BASE"), "/"),
		AdminEmail:     v.GetString("ADMIN_EMAIL"),
		AdminPassword:  v.GetString("ADMIN_PASSWORD"),
		Log: Log{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		Mail: Mail{
			Provider:       strings.ToLower(v.GetString("MAIL_PROVIDER")),
			From:           v.GetString("MAIL_FROM"),
			MailgunDomain:  v.GetString("MAILGUN_DOMAIN"),
			MailgunAPIKey:  v.GetString("MAILGUN_API_KEY"),
			SendGridAPIKey: v.GetString("SENDGRID_API_KEY"),
			SMTPHost:       v.GetString("SMTP_HOST"),
			SMTPPort:       v.GetString("SMTP_PORT"),
			SMTPUsername:   v.GetString("SMTP_USERNAME"),
			SMTPPassword:   v.GetString("SMTP_PASSWORD"),
		},
		Upload: Upload{
			Driver:        strings.ToLower(v.GetString("UPLOAD_DRIVER")),
			Dir:           v.GetString("UPLOAD_DIR"),
			DefaultAvatar: v.GetString("DEFAULT_AVATAR"),
			MaxBytes:      v.GetInt64("UPLOAD_MAX_BYTES"),
			S3Bucket:      v.GetString("S3_BUCKET"),
			S3Region:      v.GetString("S3_REGION"),
			S3PublicURL:   strings.TrimRight(v.GetString("S3_PUBLIC_URL"), "/"),
		},
		RateLimit: RateLimit{
			RPS:   v.GetFloat64("RATE_LIMIT_RPS"),
			Burst: v.GetInt("RATE_LIMIT_BURST"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports the first setting that would make the server unusable.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is not configured")
	}
	if c.MongoURI == "" || c.MongoDatabase == "" {
		return errors.New("MONGO_URI and MONGO_DATABASE are required")
	}
	if c.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be positive, got %s", c.JWTTTL)
	}
	if c.ResetTokenTTL <= 0 {
		return fmt.Errorf("RESET_TOKEN_TTL must be positive, got %s", c.ResetTokenTTL)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive, got %s", c.RequestTimeout)
	}
	if (c.AdminEmail == "") != (c.AdminPassword == "") {
		return errors.New("ADMIN_EMAIL and ADMIN_PASSWORD must be set together")
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
