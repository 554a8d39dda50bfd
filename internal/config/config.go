package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

var (
	ErrMissingEnvironmentVariables = errors.New("missing required environment variables")
	ErrInvalidRewardPolicy         = errors.New("invalid reward policy")
)

// Config holds application configuration loaded from files and environment variables.
type Config struct {
	Env               string `mapstructure:"env"`                 // current application environment (local, dev, prod etc)
	TelegramAPIToken  string `mapstructure:"-"`                   // Telegram API token loaded from environment
	QuestionsJSONPath string `mapstructure:"questions_json_path"` // path to the JSON question bank
	Quiz              Quiz   `mapstructure:"quiz"`                // quiz behavior section
	Health            Health `mapstructure:"health"`              // keep-alive server section
}

// Quiz contains the quiz behavior parameters.
type Quiz struct {
	QuestionCount int           `mapstructure:"question_count"` // questions per session, clamped to the bank size
	Deadline      time.Duration `mapstructure:"deadline"`       // overall time limit, 0 disables the timer
	CleanupDelay  time.Duration `mapstructure:"cleanup_delay"`  // grace before a timed out session is dropped
	RewardPolicy  string        `mapstructure:"reward_policy"`  // "lenient" or "strict"
	SessionTTL    time.Duration `mapstructure:"session_ttl"`    // idle session lifetime, 0 disables the janitor
}

// Health contains the keep-alive HTTP server parameters.
type Health struct {
	Addr string `mapstructure:"addr"` // listen address, empty disables the server
}

// Load reads configuration from config files and environment variables.
func Load() (*Config, error) {
	// Initialize Viper instance and base config options.
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")

	// Set default values for configuration keys.
	v.SetDefault("env", "local")
	v.SetDefault("questions_json_path", "assets/questions.json")
	v.SetDefault("quiz.question_count", 100)
	v.SetDefault("quiz.deadline", "100s")
	v.SetDefault("quiz.cleanup_delay", "5s")
	v.SetDefault("quiz.reward_policy", "lenient")
	v.SetDefault("quiz.session_ttl", "10m")
	v.SetDefault("health.addr", "")

	// Configure environment variable handling and key mapping.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // map nested keys to ENV style names
	v.AutomaticEnv()

	// Bind explicit environment variables to configuration keys.
	_ = v.BindEnv("telegram_api_token", "TELEGRAM_API_TOKEN", "BOT_TOKEN")
	_ = v.BindEnv("env", "APP_ENV")

	// Try to read configuration file if present.
	if err := v.ReadInConfig(); err != nil {
		var fileLookupErr viper.ConfigFileNotFoundError
		if !errors.As(err, &fileLookupErr) {
			return nil, fmt.Errorf("error loading config file: %w", err)
		}
	}

	// Unmarshal configuration into strongly typed struct.
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	// Load sensitive values from environment variables.
	cfg.TelegramAPIToken = v.GetString("telegram_api_token")
	if cfg.TelegramAPIToken == "" {
		return nil, ErrMissingEnvironmentVariables
	}

	switch cfg.Quiz.RewardPolicy {
	case "lenient", "strict":
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidRewardPolicy, cfg.Quiz.RewardPolicy)
	}

	return &cfg, nil
}
