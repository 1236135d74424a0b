package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// MongoDB (conversation turn audit log).
	DatabaseURL string `mapstructure:"DATABASE_URL"`

	// Redis configuration.
	RedisAddr      string `mapstructure:"REDIS_ADDR"`
	RedisPassword  string `mapstructure:"REDIS_PASSWORD"`
	RedisSessionDB int    `mapstructure:"REDIS_SESSION_DB"`
	RedisQueueDB   int    `mapstructure:"REDIS_QUEUE_DB"`

	// Gemini API key for intent/entity extraction.
	GeminiAPIKey string `mapstructure:"GEMINI_API_KEY"`

	// Calendar provider: "google" or "static".
	CalendarProvider      string `mapstructure:"CALENDAR_PROVIDER"`
	GoogleCalendarID      string `mapstructure:"GOOGLE_CALENDAR_ID"`
	GoogleCredentialsFile string `mapstructure:"GOOGLE_CREDENTIALS_FILE"`

	// Scheduling knobs.
	MaxOptions        int           `mapstructure:"MAX_OPTIONS"`
	WidenCapDays      int           `mapstructure:"WIDEN_CAP_DAYS"`
	WorkHoursStart    int           `mapstructure:"WORK_HOURS_START"`
	WorkHoursEnd      int           `mapstructure:"WORK_HOURS_END"`
	BufferMinutes     int           `mapstructure:"BUFFER_MINUTES"`
	DefaultWindowDays int           `mapstructure:"DEFAULT_WINDOW_DAYS"`
	CalendarTimeout   time.Duration `mapstructure:"CALENDAR_TIMEOUT"`
	SessionTTL        time.Duration `mapstructure:"SESSION_TTL"`
	InactivityTimeout time.Duration `mapstructure:"INACTIVITY_TIMEOUT"`
	SweepInterval     time.Duration `mapstructure:"SWEEP_INTERVAL"`
	RelaxationOrder   []string      `mapstructure:"RELAXATION_ORDER"`

	// Part-of-day canonical ranges as [startHour, endHour).
	DayPartMorning   []int `mapstructure:"DAY_PART_MORNING"`
	DayPartAfternoon []int `mapstructure:"DAY_PART_AFTERNOON"`
	DayPartEvening   []int `mapstructure:"DAY_PART_EVENING"`
	DayPartNight     []int `mapstructure:"DAY_PART_NIGHT"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_SESSION_DB", 0)
	viper.SetDefault("REDIS_QUEUE_DB", 1)
	viper.SetDefault("GEMINI_API_KEY", "")
	viper.SetDefault("CALENDAR_PROVIDER", "static")
	viper.SetDefault("GOOGLE_CALENDAR_ID", "primary")
	viper.SetDefault("GOOGLE_CREDENTIALS_FILE", "credentials.json")
	viper.SetDefault("MAX_OPTIONS", 3)
	viper.SetDefault("WIDEN_CAP_DAYS", 3)
	viper.SetDefault("WORK_HOURS_START", 9)
	viper.SetDefault("WORK_HOURS_END", 17)
	viper.SetDefault("BUFFER_MINUTES", 0)
	viper.SetDefault("DEFAULT_WINDOW_DAYS", 7)
	viper.SetDefault("CALENDAR_TIMEOUT", "10s")
	viper.SetDefault("SESSION_TTL", "30m")
	viper.SetDefault("INACTIVITY_TIMEOUT", "15m")
	viper.SetDefault("SWEEP_INTERVAL", "5m")
	viper.SetDefault("RELAXATION_ORDER", []string{"day-part", "widen-window", "drop-exclusion"})
	viper.SetDefault("DAY_PART_MORNING", []int{6, 12})
	viper.SetDefault("DAY_PART_AFTERNOON", []int{12, 17})
	viper.SetDefault("DAY_PART_EVENING", []int{17, 22})
	viper.SetDefault("DAY_PART_NIGHT", []int{22, 6})

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
