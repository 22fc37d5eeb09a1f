package config

import (
	"fmt"
	"strings"
	"time"

	"credit-intelligence/internal/scoring"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Log       Logger    `mapstructure:"logger"`
	DB        Database  `mapstructure:"database"`
	API       API       `mapstructure:"api"`
	Scheduler Scheduler `mapstructure:"scheduler"`
	Cache     Cache     `mapstructure:"cache"`
	Scoring   Scoring   `mapstructure:"scoring"`
	FRED      FRED      `mapstructure:"fred"`
}

type Logger struct {
	Level    string `mapstructure:"level"`
	Encoding string `mapstructure:"encoding"`
}

type Database struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	DBName          string `mapstructure:"name"`
	SSLMode         string `mapstructure:"ssl_mode"`
	TimeZone        string `mapstructure:"time_zone"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime string `mapstructure:"conn_max_lifetime"`
	LogLevel        string `mapstructure:"log_level"`
}

type Scheduler struct {
	MaxConcurrency  int           `mapstructure:"max_concurrency"`
	TimeoutDuration time.Duration `mapstructure:"timeout_duration"`
}

type API struct {
	Port              int     `mapstructure:"port"`
	RateLimitPerSec   float64 `mapstructure:"rate_limit_per_sec"`
	RateLimitBurst    int     `mapstructure:"rate_limit_burst"`
	MaxScoreHistory   int     `mapstructure:"max_score_history"`
	RateLimitDisabled bool    `mapstructure:"rate_limit_disabled"`
}

type Cache struct {
	DefaultExpiration time.Duration `mapstructure:"default_expiration"`
	CleanupInterval   time.Duration `mapstructure:"cleanup_interval"`
	LatestScoreTTL    time.Duration `mapstructure:"latest_score_ttl"`
}

// Scoring configures the scoring engine. AutoTrain lets Score and WhatIf train an
// untrained model on first use instead of failing.
type Scoring struct {
	AutoTrain          bool              `mapstructure:"auto_train"`
	EventWindowDays    int               `mapstructure:"event_window_days"`
	RefreshConcurrency int               `mapstructure:"refresh_concurrency"`
	GBM                scoring.GBMParams `mapstructure:"gbm"`
}

// EventWindow is the trailing window of events that affect a score.
func (s Scoring) EventWindow() time.Duration {
	if s.EventWindowDays <= 0 {
		return scoring.DefaultEventWindow
	}
	return time.Duration(s.EventWindowDays) * 24 * time.Hour
}

type FRED struct {
	BaseURL             string        `mapstructure:"base_url"`
	APIKey              string        `mapstructure:"api_key"`
	Timeout             time.Duration `mapstructure:"timeout"`
	MaxRequestPerMinute int           `mapstructure:"max_request_per_minute"`
	Series              FREDSeries    `mapstructure:"series"`
}

// FREDSeries maps each macro column to the FRED series it is read from.
type FREDSeries struct {
	GDPGrowth    string `mapstructure:"gdp_growth"`
	InterestRate string `mapstructure:"interest_rate"`
	Inflation    string `mapstructure:"inflation"`
	CreditSpread string `mapstructure:"credit_spread"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.encoding", "json")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "credit")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.time_zone", "UTC")
	v.SetDefault("database.log_level", "Warn")

	v.SetDefault("api.port", 8000)
	v.SetDefault("api.rate_limit_per_sec", 10)
	v.SetDefault("api.rate_limit_burst", 30)
	v.SetDefault("api.max_score_history", 500)

	v.SetDefault("scheduler.max_concurrency", 2)
	v.SetDefault("scheduler.timeout_duration", "10m")

	v.SetDefault("cache.default_expiration", "5m")
	v.SetDefault("cache.cleanup_interval", "10m")
	v.SetDefault("cache.latest_score_ttl", "1m")

	gbm := scoring.DefaultGBMParams()
	v.SetDefault("scoring.auto_train", true)
	v.SetDefault("scoring.event_window_days", 14)
	v.SetDefault("scoring.refresh_concurrency", 4)
	v.SetDefault("scoring.gbm.num_rounds", gbm.NumRounds)
	v.SetDefault("scoring.gbm.max_depth", gbm.MaxDepth)
	v.SetDefault("scoring.gbm.learning_rate", gbm.LearningRate)
	v.SetDefault("scoring.gbm.subsample", gbm.Subsample)
	v.SetDefault("scoring.gbm.colsample_bytree", gbm.ColSampleByTree)
	v.SetDefault("scoring.gbm.lambda", gbm.Lambda)
	v.SetDefault("scoring.gbm.min_child_weight", gbm.MinChildWeight)
	v.SetDefault("scoring.gbm.seed", gbm.Seed)

	v.SetDefault("fred.base_url", "https://api.stlouisfed.org/fred")
	v.SetDefault("fred.api_key", "")
	v.SetDefault("fred.timeout", "15s")
	v.SetDefault("fred.max_request_per_minute", 60)
	v.SetDefault("fred.series.gdp_growth", "A191RL1Q225SBEA")
	v.SetDefault("fred.series.interest_rate", "FEDFUNDS")
	v.SetDefault("fred.series.inflation", "CPIAUCSL")
	v.SetDefault("fred.series.credit_spread", "BAA10YM")
}

// Load reads .env, then config.yaml from the working directory, then environment
// variables (logger.level -> LOGGER_LEVEL).
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file loaded:", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AddConfigPath(".")
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		fmt.Println("No config file loaded:", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
