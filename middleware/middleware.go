package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/VladFokin1/Bank-REST/utils"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// LoggingResponseWriter перехватывает статус ответа для логирования
type LoggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *LoggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

// LoggingMiddleware логирует информацию о запросе и ответе. Каждому
// запросу присваивается идентификатор, который возвращается
// в заголовке X-Request-ID.
func LoggingMiddleware(log *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			requestID := uuid.NewString()
			w.Header().Set("X-Request-ID", requestID)

			lrw := &LoggingResponseWriter{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			next.ServeHTTP(lrw, r)

			duration := time.Since(start)
			utils.GetMetrics().RecordRequest(duration, lrw.statusCode >= http.StatusBadRequest)

			log.WithFields(logrus.Fields{
				"request_id": requestID,
				"method":     r.Method,
				"path":       r.URL.Path,
				"status":     lrw.statusCode,
				"duration":   duration.String(),
			}).Info("запрос обработан")
		})
	}
}

// RateLimitMiddleware ограничивает частоту запросов. Ключом служит
// идентификатор пользователя из контекста, для анонимных запросов —
// адрес клиента.
func RateLimitMiddleware(limiter *utils.RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.RemoteAddr
			if userID, ok := r.Context().Value("user_id").(uint); ok {
				key = "user:" + strconv.FormatUint(uint64(userID), 10)
			}

			if !limiter.Allow(key) {
				http.Error(w, "Too many requests", http.StatusTooManyRequests)
				return
			}

			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(limiter.Remaining(key)))
			next.ServeHTTP(w, r)
		})
	}
}

// RecoveryMiddleware перехватывает паники обработчиков
func RecoveryMiddleware(log *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithField("panic", err).Error("паника при обработке запроса")
					http.Error(w, "Internal server error", http.StatusInternalServerError)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
