package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	altsrc "github.com/urfave/cli-altsrc/v3"
	"github.com/urfave/cli-altsrc/v3/toml"
	"github.com/urfave/cli/v3"
)

type Config struct {
	Server   ServerConfig
	Log      LogConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Mail     MailConfig
	GenAI    GenAIConfig
}

type ServerConfig struct {
	Host           string
	Port           int
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // text, json
}

type DatabaseConfig struct {
	URL string // postgres:// URL or SQLite path
}

type AuthConfig struct {
	SessionSecret string
	JWTSecret     string
	TokenExpiry   time.Duration
}

type MailConfig struct {
	Host          string
	Port          int
	UseTLS        bool
	Username      string
	Password      string
	DefaultSender string
}

type GenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// LoadDotEnv reads a .env file into the process environment if one exists.
// It must run before the CLI resolves flag sources.
func LoadDotEnv(filenames ...string) {
	_ = godotenv.Load(filenames...)
}

// Load builds the configuration from the parsed command and validates it.
func Load(cmd *cli.Command) (*Config, error) {
	cfg := NewFromCLI(cmd)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func NewFromCLI(cmd *cli.Command) *Config {
	cfg := &Config{
		Server: ServerConfig{
			Host:           cmd.String("host"),
			Port:           int(cmd.Int("port")),
			AllowedOrigins: splitList(cmd.StringSlice("cors-allowed-origins")),
		},
		Log: LogConfig{
			Level:  cmd.String("log-level"),
			Format: cmd.String("log-format"),
		},
		Database: DatabaseConfig{
			URL: cmd.String("database-url"),
		},
		Auth: AuthConfig{
			SessionSecret: cmd.String("secret-key"),
			JWTSecret:     cmd.String("jwt-secret-key"),
			TokenExpiry:   time.Duration(cmd.Int("jwt-expiry-seconds")) * time.Second,
		},
		Mail: MailConfig{
			Host:          cmd.String("mail-server"),
			Port:          int(cmd.Int("mail-port")),
			UseTLS:        cmd.Bool("mail-use-tls"),
			Username:      cmd.String("mail-username"),
			Password:      cmd.String("mail-password"),
			DefaultSender: cmd.String("mail-default-sender"),
		},
		GenAI: GenAIConfig{
			APIKey:  cmd.String("api-key"),
			Model:   cmd.String("genai-model"),
			BaseURL: cmd.String("genai-base-url"),
		},
	}

	// The token secret falls back to the application secret.
	if cfg.Auth.JWTSecret == "" {
		cfg.Auth.JWTSecret = cfg.Auth.SessionSecret
	}

	return cfg
}

// Validate returns an error describing every invalid setting.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Server.Port))
	}
	if len(c.Server.AllowedOrigins) == 0 {
		errs = append(errs, errors.New("CORS_ALLOWED_ORIGINS must list at least one origin"))
	}
	for _, origin := range c.Server.AllowedOrigins {
		if strings.Contains(origin, "*") {
			errs = append(errs, fmt.Errorf("CORS origin %q: wildcards are not allowed with credentials", origin))
		}
	}
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET_KEY or SECRET_KEY must be set"))
	} else if len(c.Auth.JWTSecret) < 16 {
		errs = append(errs, errors.New("JWT secret must be at least 16 characters"))
	}
	if c.Auth.TokenExpiry <= 0 {
		errs = append(errs, errors.New("JWT_EXPIRY_SECONDS must be positive"))
	}
	if c.Mail.Host != "" && (c.Mail.Port <= 0 || c.Mail.Port > 65535) {
		errs = append(errs, fmt.Errorf("mail port %d out of range", c.Mail.Port))
	}
	if c.Mail.Host != "" && c.Mail.DefaultSender == "" {
		errs = append(errs, errors.New("MAIL_DEFAULT_SENDER is required when MAIL_SERVER is set"))
	}

	return errors.Join(errs...)
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// splitList flattens comma separated entries, which is how env vars carry lists.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

var configFile = altsrc.StringSourcer("config.toml")

// sources looks a setting up in the environment first, then in config.toml.
func sources(envKey, tomlKey string) cli.ValueSourceChain {
	return cli.NewValueSourceChain(cli.EnvVar(envKey), toml.TOML(tomlKey, configFile))
}

func Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "host",
			Usage:   "Host to bind to",
			Sources: sources("HOST", "server.host"),
		},
		&cli.IntFlag{
			Name:    "port",
			Value:   5000,
			Usage:   "Port to listen on",
			Sources: sources("PORT", "server.port"),
		},
		&cli.StringSliceFlag{
			Name:    "cors-allowed-origins",
			Value:   []string{"http://localhost:5173", "http://localhost:3000"},
			Usage:   "Origins allowed to make cross-origin requests",
			Sources: sources("CORS_ALLOWED_ORIGINS", "server.cors_allowed_origins"),
		},
		&cli.StringFlag{
			Name:    "log-level",
			Value:   "info",
			Usage:   "Log level (debug, info, warn, error)",
			Sources: sources("LOG_LEVEL", "log.level"),
		},
		&cli.StringFlag{
			Name:    "log-format",
			Value:   "text",
			Usage:   "Log format (text, json)",
			Sources: sources("LOG_FORMAT", "log.format"),
		},
		&cli.StringFlag{
			Name:    "database-url",
			Value:   "./data/mailforge.db",
			Usage:   "Postgres URL or SQLite database path",
			Sources: sources("DATABASE_URL", "database.url"),
		},
		&cli.StringFlag{
			Name:    "secret-key",
			Usage:   "Application secret, also the JWT secret when jwt-secret-key is empty",
			Sources: sources("SECRET_KEY", "auth.secret_key"),
		},
		&cli.StringFlag{
			Name:    "jwt-secret-key",
			Usage:   "Secret used to sign access tokens",
			Sources: sources("JWT_SECRET_KEY", "auth.jwt_secret_key"),
		},
		&cli.IntFlag{
			Name:    "jwt-expiry-seconds",
			Value:   3600,
			Usage:   "Access token lifetime in seconds",
			Sources: sources("JWT_EXPIRY_SECONDS", "auth.jwt_expiry_seconds"),
		},
		&cli.StringFlag{
			Name:    "mail-server",
			Usage:   "SMTP host; when empty emails are only logged",
			Sources: sources("MAIL_SERVER", "mail.server"),
		},
		&cli.IntFlag{
			Name:    "mail-port",
			Value:   587,
			Usage:   "SMTP port",
			Sources: sources("MAIL_PORT", "mail.port"),
		},
		&cli.BoolFlag{
			Name:    "mail-use-tls",
			Usage:   "Require TLS for SMTP (implicit TLS on port 465, STARTTLS otherwise)",
			Sources: sources("MAIL_USE_TLS", "mail.use_tls"),
		},
		&cli.StringFlag{
			Name:    "mail-username",
			Usage:   "SMTP username",
			Sources: sources("MAIL_USERNAME", "mail.username"),
		},
		&cli.StringFlag{
			Name:    "mail-password",
			Usage:   "SMTP password",
			Sources: sources("MAIL_PASSWORD", "mail.password"),
		},
		&cli.StringFlag{
			Name:    "mail-default-sender",
			Usage:   "From address for outbound email",
			Sources: sources("MAIL_DEFAULT_SENDER", "mail.default_sender"),
		},
		&cli.StringFlag{
			Name:    "api-key",
			Usage:   "Gemini API key",
			Sources: sources("API_KEY", "genai.api_key"),
		},
		&cli.StringFlag{
			Name:    "genai-model",
			Value:   "gemini-1.5-flash-8b",
			Usage:   "Gemini model used for drafts",
			Sources: sources("GENAI_MODEL", "genai.model"),
		},
		&cli.StringFlag{
			Name:    "genai-base-url",
			Usage:   "Override for the Gemini API endpoint",
			Sources: sources("GENAI_BASE_URL", "genai.base_url"),
		},
	}
}
