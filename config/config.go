package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`
	JWTSecret         string `mapstructure:"JWT_SECRET"`

	// Storage.
	DatabaseURL   string `mapstructure:"DATABASE_URL"`
	DatabaseName  string `mapstructure:"DATABASE_NAME"`
	StorageDriver string `mapstructure:"STORAGE_DRIVER"`

	// Redis configuration.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB  int    `mapstructure:"REDIS_CACHE_DB"`
	RedisQueueDB  int    `mapstructure:"REDIS_QUEUE_DB"`

	// Payment gateway.
	StripeKey             string `mapstructure:"STRIPE_KEY"`
	StripeWebhookSecret   string `mapstructure:"STRIPE_WEBHOOK_SECRET"`
	DefaultCurrency       string `mapstructure:"DEFAULT_CURRENCY"`
	GatewayTimeoutSeconds int    `mapstructure:"GATEWAY_TIMEOUT_SECONDS"`
	IntentDedupeMinutes   int    `mapstructure:"INTENT_DEDUPE_MINUTES"`

	// Meeting provider.
	MeetingAPIURL         string `mapstructure:"MEETING_API_URL"`
	MeetingAPIToken       string `mapstructure:"MEETING_API_TOKEN"`
	MeetingTimeoutSeconds int    `mapstructure:"MEETING_TIMEOUT_SECONDS"`

	// Notification channels.
	SMTPHost                string `mapstructure:"SMTP_HOST"`
	SMTPPort                int    `mapstructure:"SMTP_PORT"`
	SMTPUser                string `mapstructure:"SMTP_USER"`
	SMTPPassword            string `mapstructure:"SMTP_PASSWORD"`
	SMTPFrom                string `mapstructure:"SMTP_FROM"`
	FirebaseCredentialsFile string `mapstructure:"FIREBASE_CREDENTIALS_FILE"`

	// Slot materialization.
	SlotHorizonDays       int    `mapstructure:"SLOT_HORIZON_DAYS"`
	RecurringHorizonWeeks int    `mapstructure:"RECURRING_HORIZON_WEEKS"`
	HorizonCron           string `mapstructure:"HORIZON_CRON"`
}

var AppConfig Config

func LoadConfig() {
	// A local .env is optional; real deployments pass plain environment variables.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, continuing")
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AutomaticEnv()

	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 200)
	viper.SetDefault("JWT_SECRET", "")
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("DATABASE_NAME", "mentorly")
	viper.SetDefault("STORAGE_DRIVER", "mongo")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CACHE_DB", 0)
	viper.SetDefault("REDIS_QUEUE_DB", 1)
	viper.SetDefault("STRIPE_KEY", "")
	viper.SetDefault("STRIPE_WEBHOOK_SECRET", "")
	viper.SetDefault("DEFAULT_CURRENCY", "usd")
	viper.SetDefault("GATEWAY_TIMEOUT_SECONDS", 15)
	viper.SetDefault("INTENT_DEDUPE_MINUTES", 10)
	viper.SetDefault("MEETING_API_URL", "")
	viper.SetDefault("MEETING_API_TOKEN", "")
	viper.SetDefault("MEETING_TIMEOUT_SECONDS", 10)
	viper.SetDefault("SMTP_HOST", "")
	viper.SetDefault("SMTP_PORT", 587)
	viper.SetDefault("SMTP_USER", "")
	viper.SetDefault("SMTP_PASSWORD", "")
	viper.SetDefault("SMTP_FROM", "no-reply@mentorly.local")
	viper.SetDefault("FIREBASE_CREDENTIALS_FILE", "")
	viper.SetDefault("SLOT_HORIZON_DAYS", 90)
	viper.SetDefault("RECURRING_HORIZON_WEEKS", 12)
	viper.SetDefault("HORIZON_CRON", "0 3 * * *")

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

func GatewayTimeout() time.Duration {
	return secondsOr(AppConfig.GatewayTimeoutSeconds, 15)
}

func MeetingTimeout() time.Duration {
	return secondsOr(AppConfig.MeetingTimeoutSeconds, 10)
}

func IntentDedupeWindow() time.Duration {
	if AppConfig.IntentDedupeMinutes <= 0 {
		return 10 * time.Minute
	}
	return time.Duration(AppConfig.IntentDedupeMinutes) * time.Minute
}

func secondsOr(v, def int) time.Duration {
	if v <= 0 {
		v = def
	}
	return time.Duration(v) * time.Second
}
