package config

import (
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
	Log       LogConfig
	Store     StoreConfig
	Checkout  CheckoutConfig
	Printer   PrinterConfig
	Email     EmailConfig
}

type AppConfig struct {
	Name  string
	Env   string
	Port  string
	Debug bool
}

type DatabaseConfig struct {
	Host            string
	Port            string
	Name            string
	User            string
	Password        string
	SSLMode         string
	Timezone        string
	MaxOpenConns    int
	SeedDemoCatalog bool
}

type JWTConfig struct {
	Secret      string
	ExpiryHours time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

type RateLimitConfig struct {
	Requests int
	Duration int
}

type LogConfig struct {
	Level string
}

// StoreConfig is what gets printed around every receipt.
type StoreConfig struct {
	Name           string
	Subtitle       string
	Footer         []string
	Timezone       string
	CurrencySymbol string
	VATRate        decimal.Decimal
}

type CheckoutConfig struct {
	CommitTimeout time.Duration
	MaxTxRetries  int
}

// PrinterConfig lists the named receipt printers. Each device is
// "name=type:target", e.g. "counter=network:192.168.1.50:9100".
type PrinterConfig struct {
	Devices []string
	Default string
	Timeout time.Duration
}

type EmailConfig struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	FromName     string
	FromEmail    string
}

func Load() *Config {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		slog.Warn(".env file not found, using environment variables", "error", err)
	}

	viper.SetDefault("APP_NAME", "brewpos-api")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("APP_DEBUG", true)
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_NAME", "brewpos")
	viper.SetDefault("DB_USER", "postgres")
	viper.SetDefault("DB_PASSWORD", "postgres")
	viper.SetDefault("DB_SSL_MODE", "disable")
	viper.SetDefault("DB_TIMEZONE", "UTC")
	viper.SetDefault("DB_MAX_OPEN_CONNS", 50)
	viper.SetDefault("DB_SEED_DEMO_CATALOG", false)
	viper.SetDefault("JWT_SECRET", "change-this-secret-in-production")
	viper.SetDefault("JWT_EXPIRY_HOURS", 12)
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("CORS_ALLOWED_HEADERS", []string{})
	viper.SetDefault("RATE_LIMIT_REQUESTS", 100)
	viper.SetDefault("RATE_LIMIT_DURATION", 60)
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("STORE_NAME", "BrewPOS Cafe")
	viper.SetDefault("STORE_SUBTITLE", "")
	viper.SetDefault("STORE_FOOTER", "Thank you for your purchase!|Please come again")
	viper.SetDefault("STORE_TIMEZONE", "Asia/Manila")
	viper.SetDefault("STORE_CURRENCY_SYMBOL", "₱")
	viper.SetDefault("STORE_VAT_RATE", "0.12")
	viper.SetDefault("CHECKOUT_COMMIT_TIMEOUT", "10s")
	viper.SetDefault("CHECKOUT_MAX_TX_RETRIES", 3)
	viper.SetDefault("PRINTER_DEVICES", "")
	viper.SetDefault("PRINTER_DEFAULT", "")
	viper.SetDefault("PRINTER_TIMEOUT", "10s")
	viper.SetDefault("SMTP_PORT", 587)
	viper.SetDefault("EMAIL_FROM_NAME", "BrewPOS Cafe")

	vatRate, err := decimal.NewFromString(viper.GetString("STORE_VAT_RATE"))
	if err != nil {
		slog.Warn("invalid STORE_VAT_RATE, using 0.12", "value", viper.GetString("STORE_VAT_RATE"))
		vatRate = decimal.RequireFromString("0.12")
	}

	return &Config{
		App: AppConfig{
			Name:  viper.GetString("APP_NAME"),
			Env:   viper.GetString("APP_ENV"),
			Port:  viper.GetString("APP_PORT"),
			Debug: viper.GetBool("APP_DEBUG"),
		},
		Database: DatabaseConfig{
			Host:            viper.GetString("DB_HOST"),
			Port:            viper.GetString("DB_PORT"),
			Name:            viper.GetString("DB_NAME"),
			User:            viper.GetString("DB_USER"),
			Password:        viper.GetString("DB_PASSWORD"),
			SSLMode:         viper.GetString("DB_SSL_MODE"),
			Timezone:        viper.GetString("DB_TIMEZONE"),
			MaxOpenConns:    viper.GetInt("DB_MAX_OPEN_CONNS"),
			SeedDemoCatalog: viper.GetBool("DB_SEED_DEMO_CATALOG"),
		},
		JWT: JWTConfig{
			Secret:      viper.GetString("JWT_SECRET"),
			ExpiryHours: time.Duration(viper.GetInt("JWT_EXPIRY_HOURS")) * time.Hour,
		},
		CORS: CORSConfig{
			AllowedOrigins: viper.GetStringSlice("CORS_ALLOWED_ORIGINS"),
			AllowedMethods: viper.GetStringSlice("CORS_ALLOWED_METHODS"),
			AllowedHeaders: viper.GetStringSlice("CORS_ALLOWED_HEADERS"),
		},
		RateLimit: RateLimitConfig{
			Requests: viper.GetInt("RATE_LIMIT_REQUESTS"),
			Duration: viper.GetInt("RATE_LIMIT_DURATION"),
		},
		Log: LogConfig{
			Level: viper.GetString("LOG_LEVEL"),
		},
		Store: StoreConfig{
			Name:           viper.GetString("STORE_NAME"),
			Subtitle:       viper.GetString("STORE_SUBTITLE"),
			Footer:         splitLines(viper.GetString("STORE_FOOTER")),
			Timezone:       viper.GetString("STORE_TIMEZONE"),
			CurrencySymbol: viper.GetString("STORE_CURRENCY_SYMBOL"),
			VATRate:        vatRate,
		},
		Checkout: CheckoutConfig{
			CommitTimeout: viper.GetDuration("CHECKOUT_COMMIT_TIMEOUT"),
			MaxTxRetries:  viper.GetInt("CHECKOUT_MAX_TX_RETRIES"),
		},
		Printer: PrinterConfig{
			Devices: viper.GetStringSlice("PRINTER_DEVICES"),
			Default: viper.GetString("PRINTER_DEFAULT"),
			Timeout: viper.GetDuration("PRINTER_TIMEOUT"),
		},
		Email: EmailConfig{
			SMTPHost:     viper.GetString("SMTP_HOST"),
			SMTPPort:     viper.GetInt("SMTP_PORT"),
			SMTPUsername: viper.GetString("SMTP_USERNAME"),
			SMTPPassword: viper.GetString("SMTP_PASSWORD"),
			FromName:     viper.GetString("EMAIL_FROM_NAME"),
			FromEmail:    viper.GetString("EMAIL_FROM_ADDRESS"),
		},
	}
}

func (c *DatabaseConfig) DSN() string {
	return "host=" + c.Host +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Name +
		" port=" + c.Port +
		" sslmode=" + c.SSLMode +
		" TimeZone=" + c.Timezone
}

// Location resolves the store timezone, falling back to UTC.
func (c *StoreConfig) Location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		slog.Warn("unknown STORE_TIMEZONE, using UTC", "timezone", c.Timezone)
		return time.UTC
	}
	return loc
}

// splitLines splits a "|" separated list, dropping blanks.
func splitLines(s string) []string {
	var out []string
	for _, part := range strings.Split(s, "|") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ParseLogLevel maps LOG_LEVEL onto slog levels; unknown values mean info.
func ParseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
