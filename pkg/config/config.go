package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Server ServerConfig `mapstructure:"server"`

	// Database configuration
	Database DatabaseConfig `mapstructure:"database"`

	// Classification backend configuration
	LLM LLMConfig `mapstructure:"llm"`

	// Notification (SMTP) configuration
	SMTP SMTPConfig `mapstructure:"smtp"`

	// Clinic configuration
	Clinic ClinicConfig `mapstructure:"clinic"`

	// Logging configuration
	LogLevel string `mapstructure:"log_level"`
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`
	IdleTimeout  int    `mapstructure:"idle_timeout"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Name            string `mapstructure:"name"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"ssl_mode"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

// LLMConfig holds classification backend configuration. The backend
// speaks the OpenRouter chat-completions API.
type LLMConfig struct {
	APIKey         string  `mapstructure:"api_key"`
	BaseURL        string  `mapstructure:"base_url"`
	Model          string  `mapstructure:"model"`
	Temperature    float64 `mapstructure:"temperature"`
	RequestTimeout int     `mapstructure:"request_timeout"`
	TaskTimeout    int     `mapstructure:"task_timeout"`
	MaxRetries     int     `mapstructure:"max_retries"`
}

// SMTPConfig holds notification sender configuration
type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	Enabled  bool   `mapstructure:"enabled"`
}

// ClinicConfig holds clinic-level settings
type ClinicConfig struct {
	Name     string `mapstructure:"name"`
	Timezone string `mapstructure:"timezone"`
	Phone    string `mapstructure:"phone"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/dental-agent")

	// Set default values
	setDefaults()

	// Enable environment variable support
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Override with environment variables
	overrideWithEnv(&config)

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", 30)
	viper.SetDefault("server.write_timeout", 30)
	viper.SetDefault("server.idle_timeout", 120)

	// Database defaults
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.name", "dental_clinic")
	viper.SetDefault("database.user", "dental_clinic")
	viper.SetDefault("database.ssl_mode", "require")
	viper.SetDefault("database.max_open_conns", 25)
	viper.SetDefault("database.max_idle_conns", 5)
	viper.SetDefault("database.conn_max_lifetime", 300)

	// LLM defaults
	viper.SetDefault("llm.base_url", "https://openrouter.ai/api/v1")
	viper.SetDefault("llm.model", "qwen/qwen3-14b")
	viper.SetDefault("llm.temperature", 0.0)
	viper.SetDefault("llm.request_timeout", 30)
	viper.SetDefault("llm.task_timeout", 20)
	viper.SetDefault("llm.max_retries", 3)

	// SMTP defaults
	viper.SetDefault("smtp.host", "smtp.gmail.com")
	viper.SetDefault("smtp.port", 587)
	viper.SetDefault("smtp.enabled", false)

	// Clinic defaults
	viper.SetDefault("clinic.name", "Riyadh Dental Care Clinic")
	viper.SetDefault("clinic.timezone", "Asia/Riyadh")
	viper.SetDefault("clinic.phone", "+966-11-234-5678")

	// Logging defaults
	viper.SetDefault("log_level", "info")
}

// overrideWithEnv overrides configuration with environment variables
func overrideWithEnv(config *Config) {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if apiKey := os.Getenv("OPENROUTER_API_KEY"); apiKey != "" {
		config.LLM.APIKey = apiKey
	}

	if model := os.Getenv("OPENROUTER_MODEL"); model != "" {
		config.LLM.Model = model
	}

	if dbPassword := os.Getenv("DATABASE_PASSWORD"); dbPassword != "" {
		config.Database.Password = dbPassword
	}

	if smtpPassword := os.Getenv("SMTP_APP_PASSWORD"); smtpPassword != "" {
		config.SMTP.Password = smtpPassword
	}

	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		config.LogLevel = logLevel
	}
}

// validate validates the configuration
func validate(config *Config) error {
	if config.LLM.APIKey == "" {
		return fmt.Errorf("LLM API key is required")
	}

	if config.Database.Password == "" {
		return fmt.Errorf("database password is required")
	}

	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	if _, err := loadLocation(config.Clinic.Timezone); err != nil {
		return fmt.Errorf("invalid clinic timezone %q: %w", config.Clinic.Timezone, err)
	}

	return nil
}
