package auth

import (
	"context"
	"net/http"
)

// SessionCookieName is the name of the session cookie.
const SessionCookieName = "session"

type contextKey string

const userIDKey contextKey = "user_id"

// UserID returns the authenticated user id stored in the context by
// Middleware. ok is false on unauthenticated requests.
func UserID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDKey).(int64)
	return id, ok
}

// WithUserID returns a context carrying an authenticated user id.
// Exported for handler tests.
func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// Middleware rejects requests without a valid session before the
// handler runs. The guard fails closed: any resolution failure is a
// 401, never a pass-through.
func (s *Service) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(SessionCookieName)
		if err != nil || cookie.Value == "" {
			unauthorized(w)
			return
		}

		userID, err := s.Authenticate(r.Context(), cookie.Value)
		if err != nil {
			unauthorized(w)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
	})
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"unauthenticated","message":"not authenticated"}`))
}
