package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Create a new instance of the logger
// Configure it to log at the desired level
// and format it as JSON for structured logging
var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(LevelForEnvironment(GetEnvWithDefault("APP_ENV", "development")))
}

// LevelForEnvironment maps APP_ENV to the log level used across the service
func LevelForEnvironment(environment string) logrus.Level {
	switch environment {
	case "development":
		return logrus.DebugLevel
	case "production":
		return logrus.ErrorLevel
	default:
		// Default to info level for other environments
		return logrus.InfoLevel
	}
}

// Config used for the application configuration, loading the input from environment variables
type Config struct {
	// Server Configuration
	Environment string   `json:"environment"`
	Port        int      `json:"port"`
	Host        string   `json:"host"`
	FrontendURL string   `json:"frontend_url"`
	PublicURL   string   `json:"public_url"`
	CORSOrigins []string `json:"cors_origins"`

	// Database configuration
	DBDriver    string `json:"db_driver"`
	DatabaseURL string `json:"database_url"`
	DBHost      string `json:"db_host"`
	DBPort      string `json:"db_port"`
	DBName      string `json:"db_name"`
	DBUser      string `json:"db_user"`
	DBPassword  string `json:"db_password"`
	DBSSLMode   string `json:"db_sslmode"`
	DBPath      string `json:"db_path"`

	// Logging configuration
	LogLevel string `json:"log_level"`

	// Security Configuration
	JWTSecret     string        `json:"jwt_secret"`
	JWTExpiresIn  time.Duration `json:"jwt_expires_in"`
	ResetTokenTTL time.Duration `json:"reset_token_ttl"`

	// OTP configuration
	OTPTTL       time.Duration `json:"otp_ttl"`
	OTPStore     string        `json:"otp_store"`
	DebugEchoOTP bool          `json:"debug_echo_otp"`

	// Redis configuration
	RedisAddr     string `json:"redis_addr"`
	RedisPassword string `json:"redis_password"`
	RedisDB       int    `json:"redis_db"`

	// Mail and alert configuration
	SMTPHost             string `json:"smtp_host"`
	SMTPPort             int    `json:"smtp_port"`
	SMTPUsername         string `json:"smtp_username"`
	SMTPPassword         string `json:"smtp_password"`
	MailFrom             string `json:"mail_from"`
	AdminEmail           string `json:"admin_email"`
	TelegramBotToken     string `json:"telegram_bot_token"`
	TelegramAdminChatID  string `json:"telegram_admin_chat_id"`
	NotificationWorkers  int    `json:"notification_workers"`
	NotificationQueueLen int    `json:"notification_queue_len"`

	// Payment gateway configuration
	RazorpayKeyID     string `json:"razorpay_key_id"`
	RazorpayKeySecret string `json:"razorpay_key_secret"`
	RazorpayBaseURL   string `json:"razorpay_base_url"`
	PaymentCurrency   string `json:"payment_currency"`
}

// IsProduction reports whether the service runs with APP_ENV=production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// String returns a string representation of Config with sensitive data masked
func (c *Config) String() string {
	return fmt.Sprintf("Config{Environment: %s, Port: %d, Host: %s, DBDriver: %s, DatabaseURL: %s, DBHost: %s, DBName: %s, DBUser: %s, DBPassword: [REDACTED], DBPath: %s, LogLevel: %s, JWTSecret: [REDACTED], JWTExpiresIn: %s, OTPTTL: %s, OTPStore: %s, DebugEchoOTP: %t, RedisAddr: %s, SMTPHost: %s, SMTPUsername: %s, SMTPPassword: [REDACTED], RazorpayKeyID: %s, RazorpayKeySecret: [REDACTED], CORSOrigins: %v}",
		c.Environment, c.Port, c.Host, c.DBDriver, maskDatabaseURL(c.DatabaseURL), c.DBHost, c.DBName, c.DBUser, c.DBPath,
		c.LogLevel, c.JWTExpiresIn, c.OTPTTL, c.OTPStore, c.DebugEchoOTP, c.RedisAddr, c.SMTPHost, c.SMTPUsername,
		c.RazorpayKeyID, c.CORSOrigins)
}

// maskDatabaseURL masks password in database URL
func maskDatabaseURL(dbURL string) string {
	if dbURL == "" {
		return ""
	}

	parsed, err := url.Parse(dbURL)
	if err != nil {
		return "[REDACTED_INVALID_URL]"
	}

	if parsed.User != nil {
		// Replace password with [REDACTED]
		parsed.User = url.UserPassword(parsed.User.Username(), "[REDACTED]")
	}

	return parsed.String()
}

// LoadConfig read the proper configuration from environment variables and returns a Config struct
// It also validates formats like DatabaseURL, durations and the JWT secret
// Returns an error if any required environment variable is missing or invalid
func LoadConfig() (*Config, error) {
	log.Info("Loading configuration from environment variables")
	port, err := strconv.Atoi(GetEnvWithDefault("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	environment := GetEnvWithDefault("APP_ENV", "development")

	dbURL := GetEnvWithDefault("DATABASE_URL", "")
	if dbURL != "" {
		if _, err := url.ParseRequestURI(dbURL); err != nil {
			return nil, fmt.Errorf("invalid DATABASE_URL format: %w", err)
		}
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		if environment == "production" {
			return nil, errors.New("JWT_SECRET environment variable is required in production")
		}
		jwtSecret = "pizza-delivery-dev-secret"
	}

	durations := map[string]time.Duration{}
	for key, fallback := range map[string]string{
		"JWT_EXPIRES_IN":  "24h",
		"RESET_TOKEN_TTL": "1h",
		"OTP_TTL":         "10m",
	} {
		d, err := time.ParseDuration(GetEnvWithDefault(key, fallback))
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", key, err)
		}
		if d <= 0 {
			return nil, fmt.Errorf("invalid %s: must be positive", key)
		}
		durations[key] = d
	}

	otpStore := strings.ToLower(GetEnvWithDefault("OTP_STORE", "database"))
	if otpStore != "database" && otpStore != "redis" {
		return nil, fmt.Errorf("invalid OTP_STORE %q (supported: database, redis)", otpStore)
	}

	config := &Config{
		Environment:          environment,
		Port:                 port,
		Host:                 GetEnvWithDefault("APP_HOST", "localhost"),
		FrontendURL:          GetEnvWithDefault("FRONTEND_URL", "http://localhost:3000"),
		PublicURL:            GetEnvWithDefault("APP_PUBLIC_URL", fmt.Sprintf("http://localhost:%d", port)),
		CORSOrigins:          splitList(GetEnvWithDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
		DBDriver:             strings.ToLower(GetEnvWithDefault("DB_DRIVER", "sqlite")),
		DatabaseURL:          dbURL,
		DBHost:               GetEnvWithDefault("DB_HOST", "localhost"),
		DBPort:               GetEnvWithDefault("DB_PORT", "5432"),
		DBName:               GetEnvWithDefault("DB_NAME", "pizza_delivery"),
		DBUser:               GetEnvWithDefault("DB_USER", "postgres"),
		DBPassword:           GetEnvWithDefault("DB_PASSWORD", "postgres"),
		DBSSLMode:            GetEnvWithDefault("DB_SSLMODE", "disable"),
		DBPath:               GetEnvWithDefault("DB_PATH", "pizza_delivery.sqlite"),
		LogLevel:             GetEnvWithDefault("LOG_LEVEL", "info"),
		JWTSecret:            jwtSecret,
		JWTExpiresIn:         durations["JWT_EXPIRES_IN"],
		ResetTokenTTL:        durations["RESET_TOKEN_TTL"],
		OTPTTL:               durations["OTP_TTL"],
		OTPStore:             otpStore,
		DebugEchoOTP:         GetEnvAsType("DEBUG_ECHO_OTP", false),
		RedisAddr:            GetEnvWithDefault("REDIS_ADDR", "localhost:6379"),
		RedisPassword:        os.Getenv("REDIS_PASSWORD"),
		RedisDB:              GetEnvAsType("REDIS_DB", 0),
		SMTPHost:             os.Getenv("SMTP_HOST"),
		SMTPPort:             GetEnvAsType("SMTP_PORT", 587),
		SMTPUsername:         os.Getenv("SMTP_USERNAME"),
		SMTPPassword:         os.Getenv("SMTP_PASSWORD"),
		MailFrom:             GetEnvWithDefault("MAIL_FROM", "Pizza Paradise <no-reply@pizza-paradise.local>"),
		AdminEmail:           os.Getenv("ADMIN_EMAIL"),
		TelegramBotToken:     os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramAdminChatID:  os.Getenv("TELEGRAM_ADMIN_CHAT_ID"),
		NotificationWorkers:  GetEnvAsType("NOTIFY_WORKERS", 2),
		NotificationQueueLen: GetEnvAsType("NOTIFY_QUEUE_SIZE", 256),
		RazorpayKeyID:        os.Getenv("RAZORPAY_KEY_ID"),
		RazorpayKeySecret:    os.Getenv("RAZORPAY_KEY_SECRET"),
		RazorpayBaseURL:      GetEnvWithDefault("RAZORPAY_BASE_URL", "https://api.razorpay.com"),
		PaymentCurrency:      GetEnvWithDefault("PAYMENT_CURRENCY", "INR"),
	}
	log.Infof("Configuration loaded: %s", config.String())
	return config, nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// Helper to get environment with default values
func GetEnvWithDefault(key, defaultValue string) string {
	log.Tracef("Getting environment variable: %s", key)
	value := os.Getenv(key)
	if value == "" {
		log.Debugf("Environment variable %s not set, using default value", key)
		return defaultValue
	}
	return value
}

// GetEnvAsType retrieves an environment variable and converts it to the specified type
// using generic type handling.
func GetEnvAsType[T any](key string, defaultValue T) T {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var result T
	switch any(result).(type) {
	case int:
		intValue, err := strconv.Atoi(value)
		if err != nil {
			return defaultValue
		}
		return any(intValue).(T)
	case string:
		return any(value).(T)
	case bool:
		boolValue, err := strconv.ParseBool(value)
		if err != nil {
			return defaultValue
		}
		return any(boolValue).(T)
	case time.Duration:
		d, err := time.ParseDuration(value)
		if err != nil {
			return defaultValue
		}
		return any(d).(T)
	default:
		return defaultValue // Fallback for unsupported types
	}
}
