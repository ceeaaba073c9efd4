package utils

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
)

// NewLogger создает настроенный логгер приложения. Логи пишутся
// одновременно в stdout и в файл logs/app.log.
func NewLogger(level string) *logrus.Logger {
	log := logrus.New()

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	log.SetLevel(parsed)

	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})

	// Создаем директорию для логов, если она не существует
	logDir := "logs"
	if err := os.MkdirAll(logDir, 0755); err != nil {
		log.WithError(err).Warn("не удалось создать директорию логов, пишем только в stdout")
		return log
	}

	file, err := os.OpenFile(filepath.Join(logDir, "app.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		log.WithError(err).Warn("не удалось открыть файл логов, пишем только в stdout")
		return log
	}

	log.SetOutput(io.MultiWriter(os.Stdout, file))
	return log
}
