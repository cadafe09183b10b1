// Package middleware содержит HTTP-middleware: функции-обёртки над http.Handler,
// которые добавляют общий функционал (логирование, авторизация, лимиты,
// идентификатор запроса) вокруг основного обработчика без изменения его кода.
package middleware

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"time"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// LoggingMiddleware пишет в лог запись о каждом запросе после того, как
// основной обработчик завершил работу: метод, путь, статус, длительность.
func LoggingMiddleware(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			log.InfoContext(r.Context(), "http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", RequestIDFromContext(r.Context()),
			)
		})
	}
}

// BasicAuthMiddleware закрывает эндпоинт HTTP Basic Auth с парой user/pass.
//
// Если user пустой, защита выключена и запрос проходит как есть.
func BasicAuthMiddleware(user, pass string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if user == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			name, password, ok := r.BasicAuth()
			if !ok ||
				subtle.ConstantTimeCompare([]byte(name), []byte(user)) != 1 ||
				subtle.ConstantTimeCompare([]byte(password), []byte(pass)) != 1 {
				w.Header().Set("WWW-Authenticate", `Basic realm="Restricted"`)
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// BodyLimitMiddleware ограничивает размер тела запроса maxBytes байтами.
// Чтение сверх лимита вернёт ошибку, которую обработчик увидит при разборе JSON.
func BodyLimitMiddleware(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
