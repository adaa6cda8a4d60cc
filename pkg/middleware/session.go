package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/mochico/storefront/pkg/logger"
)

// SessionHeader carries the storefront session ID on requests and responses.
const SessionHeader = "X-Session-ID"

const maxSessionIDLength = 128

type sessionKey struct{}

// Session resolves the storefront session for every request. A missing or
// malformed X-Session-ID is replaced by a fresh UUID; the resolved ID is echoed
// in the response header and stored in the context.
func Session() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(SessionHeader)
			if !validSessionID(id) {
				id = uuid.NewString()
			}

			w.Header().Set(SessionHeader, id)
			ctx := WithSessionID(r.Context(), id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithSessionID stores the session ID in ctx for handlers and loggers.
func WithSessionID(ctx context.Context, id string) context.Context {
	ctx = context.WithValue(ctx, sessionKey{}, id)
	return logger.WithSessionID(ctx, id)
}

// SessionIDFromContext returns the session ID stored by Session.
func SessionIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(sessionKey{}).(string); ok {
		return id
	}
	return ""
}

func validSessionID(id string) bool {
	if id == "" || len(id) > maxSessionIDLength {
		return false
	}
	for _, c := range id {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
		default:
			return false
		}
	}
	return true
}
