// Package config loads the bot configuration from defaults, an optional YAML
// file, a .env file and BOT_* environment variables, and validates it.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-telegram/bot/models"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ErrConfiguration wraps every loading or validation failure.
var ErrConfiguration = errors.New("configuration error")

// Config is the root configuration.
type Config struct {
	Logger    LoggerConfig    `mapstructure:"logger"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Admin     AdminConfig     `mapstructure:"admin"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Session   SessionConfig   `mapstructure:"session"`
	Gemini    GeminiConfig    `mapstructure:"gemini"`
	Guide     GuideConfig     `mapstructure:"guide"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Messages  MessagesConfig  `mapstructure:"messages"`
}

type LoggerConfig struct {
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

type TelegramConfig struct {
	Token string `mapstructure:"token" validate:"required"`

	// BotInfo is filled at startup from getMe.
	BotInfo *models.User `mapstructure:"-"`
}

// AdminConfig separates the allow-list from the question recipient.
type AdminConfig struct {
	// IDs may use the admin menu, statistics, user lookup and answer tickets.
	IDs []int64 `mapstructure:"ids" validate:"required,min=1,dive,gt=0"`
	// InboxID receives new user questions. It must be one of IDs.
	InboxID int64 `mapstructure:"inbox_id" validate:"required,gt=0"`
}

// IsAdmin reports whether userID is on the allow-list.
func (a AdminConfig) IsAdmin(userID int64) bool {
	for _, id := range a.IDs {
		if id == userID {
			return true
		}
	}
	return false
}

type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

type SessionConfig struct {
	Backend string        `mapstructure:"backend" validate:"required,oneof=sqlite redis"`
	TTL     time.Duration `mapstructure:"ttl" validate:"gte=0"`
	Redis   RedisConfig   `mapstructure:"redis"`
}

type RedisConfig struct {
	Addr      string `mapstructure:"addr" validate:"omitempty,hostname_port"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db" validate:"gte=0"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

// GeminiConfig configures suggested answer drafts. Drafting is disabled when
// APIKey is empty.
type GeminiConfig struct {
	APIKey            string  `mapstructure:"api_key"`
	ModelName         string  `mapstructure:"model_name" validate:"required_with=APIKey"`
	Temperature       float32 `mapstructure:"temperature" validate:"gte=0,lte=2"`
	MaxRetries        int     `mapstructure:"max_retries" validate:"gte=0,lte=5"`
	RetryDelaySeconds int     `mapstructure:"retry_delay_seconds" validate:"gte=0"`
	TimeoutSeconds    int     `mapstructure:"timeout_seconds" validate:"gte=1"`
	SystemInstruction string  `mapstructure:"system_instruction"`
}

// Enabled reports whether answer drafts should be requested.
func (g GeminiConfig) Enabled() bool {
	return g.APIKey != ""
}

type GuideConfig struct {
	Path     string `mapstructure:"path" validate:"required"`
	FileName string `mapstructure:"file_name"`
}

type SchedulerConfig struct {
	Tasks map[string]TaskConfig `mapstructure:"tasks" validate:"dive"`
}

type TaskConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule" validate:"required_if=Enabled true"`
}

// MessagesConfig holds every user-facing text. Entries ending in "Format"
// are fmt format strings.
type MessagesConfig struct {
	Welcome             string `mapstructure:"welcome" validate:"required"`
	PolicyURL           string `mapstructure:"policy_url" validate:"omitempty,url"`
	OfferURL            string `mapstructure:"offer_url" validate:"omitempty,url"`
	PolicyToggle        string `mapstructure:"policy_toggle" validate:"required"`
	OfferToggle         string `mapstructure:"offer_toggle" validate:"required"`
	PolicyLinkButton    string `mapstructure:"policy_link_button" validate:"required"`
	OfferLinkButton     string `mapstructure:"offer_link_button" validate:"required"`
	ConsentAcceptButton string `mapstructure:"consent_accept_button" validate:"required"`
	ConsentRequired     string `mapstructure:"consent_required" validate:"required"`
	ConsentAccepted     string `mapstructure:"consent_accepted" validate:"required"`

	ResultFormat     string `mapstructure:"result_format" validate:"required"`
	GuideButton      string `mapstructure:"guide_button" validate:"required"`
	RestartButton    string `mapstructure:"restart_button" validate:"required"`
	GuideCaption     string `mapstructure:"guide_caption" validate:"required"`
	GuideUnavailable string `mapstructure:"guide_unavailable" validate:"required"`

	Help                string `mapstructure:"help" validate:"required"`
	AskButton           string `mapstructure:"ask_button" validate:"required"`
	AskPrompt           string `mapstructure:"ask_prompt" validate:"required"`
	CancelButton        string `mapstructure:"cancel_button" validate:"required"`
	Cancelled           string `mapstructure:"cancelled" validate:"required"`
	QuestionReceived    string `mapstructure:"question_received" validate:"required"`
	QuestionNotSent     string `mapstructure:"question_not_sent" validate:"required"`
	AnswerFormat        string `mapstructure:"answer_format" validate:"required"`
	Fallback            string `mapstructure:"fallback" validate:"required"`
	GeneralError        string `mapstructure:"general_error" validate:"required"`
	Unauthorized        string `mapstructure:"unauthorized" validate:"required"`
	AnswerPromptFormat  string `mapstructure:"answer_prompt_format" validate:"required"`
	AnswerSent          string `mapstructure:"answer_sent" validate:"required"`
	AnswerNotSent       string `mapstructure:"answer_not_sent" validate:"required"`
	TicketNotFound      string `mapstructure:"ticket_not_found" validate:"required"`
	TicketAnswered      string `mapstructure:"ticket_answered" validate:"required"`
	NoOpenQuestions     string `mapstructure:"no_open_questions" validate:"required"`
	AdminMenu           string `mapstructure:"admin_menu" validate:"required"`
	UsernamePrompt      string `mapstructure:"username_prompt" validate:"required"`
	UserNotFound        string `mapstructure:"user_not_found" validate:"required"`
	ReplyButton         string `mapstructure:"reply_button" validate:"required"`
	BackButton          string `mapstructure:"back_button" validate:"required"`
	StatsButton         string `mapstructure:"stats_button" validate:"required"`
	UserInfoButton      string `mapstructure:"user_info_button" validate:"required"`
	OpenQuestionsButton string `mapstructure:"open_questions_button" validate:"required"`
	StatsFormat         string `mapstructure:"stats_format" validate:"required"`
	UserSummaryFormat   string `mapstructure:"user_summary_format" validate:"required"`
	NotDetermined       string `mapstructure:"not_determined" validate:"required"`
	Yes                 string `mapstructure:"yes_label" validate:"required"`
	No                  string `mapstructure:"no_label" validate:"required"`
	ReminderFormat      string `mapstructure:"reminder_format" validate:"required"`
}

// LoadConfig reads configuration in increasing precedence: defaults, the YAML
// file at path (optional), then BOT_* environment variables. A .env file in
// the working directory is loaded into the environment first if present.
func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: failed to load .env: %v", ErrConfiguration, err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("BOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("%w: failed to read %s: %v", ErrConfiguration, path, err)
			}
			slog.Info("Configuration file not found, using defaults and environment", "path", path)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrConfiguration, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}

	slog.Debug("Configuration loaded",
		"log_level", cfg.Logger.Level,
		"db_path", cfg.Database.Path,
		"session_backend", cfg.Session.Backend,
		"admins", len(cfg.Admin.IDs),
		"gemini_enabled", cfg.Gemini.Enabled())
	return cfg, nil
}
