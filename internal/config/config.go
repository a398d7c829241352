package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Logger     Logger     `mapstructure:"logger"`
	Database   Database   `mapstructure:"database"`
	Server     Server     `mapstructure:"server"`
	OpenAI     OpenAI     `mapstructure:"openai"`
	MarketData MarketData `mapstructure:"marketdata"`
	Telegram   Telegram   `mapstructure:"telegram"`
	Scheduler  Scheduler  `mapstructure:"scheduler"`
	Trading    Trading    `mapstructure:"trading"`
}

// Logger holds the configuration for the logger.
type Logger struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Database holds the configuration for the database.
type Database struct {
	DSN string `mapstructure:"dsn"`
}

// Server holds the configuration for the HTTP API server.
type Server struct {
	Port int `mapstructure:"port"`
}

// OpenAI holds the configuration for the reasoning engine.
type OpenAI struct {
	ApiKey         string `mapstructure:"apiKey"`
	BaseURL        string `mapstructure:"base_url"`
	Model          string `mapstructure:"model"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// MarketData holds the configuration for the external data sources.
type MarketData struct {
	NewsBaseURL        string  `mapstructure:"news_base_url"`
	NewsApiKey         string  `mapstructure:"news_api_key"`
	NewsApiSecret      string  `mapstructure:"news_api_secret"`
	BarsBaseURL        string  `mapstructure:"bars_base_url"`
	IndicatorsBaseURL  string  `mapstructure:"indicators_base_url"`
	IndicatorsApiKey   string  `mapstructure:"indicators_api_key"`
	SentimentBaseURL   string  `mapstructure:"sentiment_base_url"`
	RateLimit          float64 `mapstructure:"rate_limit"`
	RateLimitBurst     int     `mapstructure:"rate_limit_burst"`
	TimeoutSeconds     int     `mapstructure:"timeout_seconds"`
}

// Telegram holds the configuration for the outbound notification channel.
type Telegram struct {
	Enabled  bool   `mapstructure:"enabled"`
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
}

// Scheduler holds the configuration for the twice-daily analysis trigger.
type Scheduler struct {
	Enabled  bool     `mapstructure:"enabled"`
	RunTimes []string `mapstructure:"run_times"` // "HH:MM", local to Timezone
	Timezone string   `mapstructure:"timezone"`
}

// Trading holds the configuration for the analysis pipeline.
type Trading struct {
	Symbols   []string `mapstructure:"symbols"`
	NewsLimit int      `mapstructure:"news_limit"`
	AgentName string   `mapstructure:"agent_name"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config") // name of config file (without extension)
	viper.SetConfigType("yml")    // or yaml, json

	// Allow environment variables to override config file
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set default values
	viper.SetDefault("marketdata.rate_limit", 10)     // requests per second
	viper.SetDefault("marketdata.rate_limit_burst", 5) // burst size
	viper.SetDefault("marketdata.timeout_seconds", 15)
	viper.SetDefault("marketdata.sentiment_base_url", "https://api.alternative.me")
	viper.SetDefault("openai.model", "gpt-4o")
	viper.SetDefault("openai.timeout_seconds", 60)
	viper.SetDefault("scheduler.run_times", []string{"09:00", "18:00"})
	viper.SetDefault("scheduler.timezone", "UTC")
	viper.SetDefault("trading.symbols", []string{"BTCUSD"})
	viper.SetDefault("trading.news_limit", 10)
	viper.SetDefault("trading.agent_name", "committee-bot")

	err = viper.ReadInConfig()
	if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	return
}
