package middleware

import (
	"context"
	"net/http"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// RequestIDHeader — заголовок с идентификатором запроса.
const RequestIDHeader = "X-Request-ID"

// maxRequestIDLength ограничивает длину идентификатора от клиента,
// чтобы он не раздувал логи.
const maxRequestIDLength = 128

var validRequestID = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)

type requestIDKey struct{}

// RequestIDMiddleware кладёт идентификатор запроса в контекст и в заголовок
// ответа. Корректный X-Request-ID клиента используется как есть, иначе
// генерируется новый (uuid в hex без дефисов).
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if !isValidRequestID(id) {
			id = NewRequestID()
		}

		w.Header().Set(RequestIDHeader, id)
		ctx := context.WithValue(r.Context(), requestIDKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// NewRequestID генерирует новый идентификатор.
func NewRequestID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// RequestIDFromContext достаёт идентификатор; пустая строка, если его нет.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

func isValidRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLength {
		return false
	}
	return validRequestID.MatchString(id)
}
