package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config представляет конфигурацию приложения. Загружается один раз
// при старте процесса и после этого не изменяется.
type Config struct {
	Server struct {
		Port int
	}
	DB struct {
		Host     string
		Port     int
		User     string
		Password string
		DBName   string
		SSLMode  string
	}
	JWT struct {
		SecretKey string
		ExpiresIn int // в часах
	}
	SMTP struct {
		Host     string
		Port     int
		Username string
		Password string
		From     string
	}
	Encryption struct {
		SecretKey string // Ключ шифрования номеров карт
	}
	RateLimit struct {
		Limit  int
		Window int // в секундах
	}
	LogLevel string
}

// NewConfig создает новый экземпляр конфигурации из переменных окружения
func NewConfig() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	// Настройки сервера
	v.SetDefault("SERVER_PORT", 8080)

	// Настройки базы данных
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "bank_db")
	v.SetDefault("DB_SSLMODE", "disable")

	// Настройки JWT
	v.SetDefault("JWT_SECRET_KEY", "your-secret-key-here")
	v.SetDefault("JWT_EXPIRES_IN", 24)

	// Настройки SMTP
	v.SetDefault("SMTP_HOST", "smtp.gmail.com")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_USERNAME", "")
	v.SetDefault("SMTP_PASSWORD", "")
	v.SetDefault("SMTP_FROM", "")

	// Настройки лимитов и логирования
	v.SetDefault("RATE_LIMIT", 100)
	v.SetDefault("RATE_LIMIT_WINDOW", 60)
	v.SetDefault("LOG_LEVEL", "info")

	cfg := &Config{}
	cfg.Server.Port = v.GetInt("SERVER_PORT")

	cfg.DB.Host = v.GetString("DB_HOST")
	cfg.DB.Port = v.GetInt("DB_PORT")
	cfg.DB.User = v.GetString("DB_USER")
	cfg.DB.Password = v.GetString("DB_PASSWORD")
	cfg.DB.DBName = v.GetString("DB_NAME")
	cfg.DB.SSLMode = v.GetString("DB_SSLMODE")

	cfg.JWT.SecretKey = v.GetString("JWT_SECRET_KEY")
	cfg.JWT.ExpiresIn = v.GetInt("JWT_EXPIRES_IN")

	cfg.SMTP.Host = v.GetString("SMTP_HOST")
	cfg.SMTP.Port = v.GetInt("SMTP_PORT")
	cfg.SMTP.Username = v.GetString("SMTP_USERNAME")
	cfg.SMTP.Password = v.GetString("SMTP_PASSWORD")
	cfg.SMTP.From = v.GetString("SMTP_FROM")

	// Ключ шифрования номеров карт обязателен
	cfg.Encryption.SecretKey = v.GetString("CARD_ENCRYPTION_KEY")
	if cfg.Encryption.SecretKey == "" {
		return nil, fmt.Errorf("переменная окружения CARD_ENCRYPTION_KEY не задана")
	}

	cfg.RateLimit.Limit = v.GetInt("RATE_LIMIT")
	cfg.RateLimit.Window = v.GetInt("RATE_LIMIT_WINDOW")
	cfg.LogLevel = v.GetString("LOG_LEVEL")

	return cfg, nil
}
