package auth

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/sessions"
	"go.uber.org/zap"

	"github.com/faraganiev/testjowi/internal/config"
)

const (
	sessionName = "testjowi_session"
	userIDKey   = "userID"
)

type contextKey struct{}

var actorIDContextKey contextKey

// ActorID extracts the authenticated user's id placed into the request
// context by RequireAuth.
func ActorID(ctx context.Context) (uint, bool) {
	id, ok := ctx.Value(actorIDContextKey).(uint)
	return id, ok
}

// WithActorID returns a context carrying the authenticated user's id.
func WithActorID(ctx context.Context, userID uint) context.Context {
	return context.WithValue(ctx, actorIDContextKey, userID)
}

// Sessions wraps the cookie store so handlers never deal with the raw
// gorilla API.
type Sessions struct {
	store  *sessions.CookieStore
	logger *zap.Logger
}

func NewSessions(cfg config.SessionConfig, logger *zap.Logger) *Sessions {
	store := sessions.NewCookieStore([]byte(cfg.Secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &Sessions{store: store, logger: logger}
}

func (s *Sessions) SignIn(w http.ResponseWriter, r *http.Request, userID uint) error {
	session, _ := s.store.Get(r, sessionName)
	session.Values[userIDKey] = uint64(userID)
	return session.Save(r, w)
}

func (s *Sessions) SignOut(w http.ResponseWriter, r *http.Request) error {
	session, _ := s.store.Get(r, sessionName)
	session.Options.MaxAge = -1
	delete(session.Values, userIDKey)
	return session.Save(r, w)
}

func (s *Sessions) currentUserID(r *http.Request) (uint, bool) {
	session, err := s.store.Get(r, sessionName)
	if err != nil {
		return 0, false
	}
	raw, ok := session.Values[userIDKey].(uint64)
	if !ok || raw == 0 {
		return 0, false
	}
	return uint(raw), true
}

// RequireAuth rejects unauthenticated requests and stores the actor id in
// the request context for downstream handlers.
func (s *Sessions) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := s.currentUserID(r)
		if !ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			if err := json.NewEncoder(w).Encode(map[string]string{
				"error":   "UNAUTHORIZED",
				"message": "authentication required",
			}); err != nil {
				s.logger.Error("failed to encode response", zap.Error(err))
			}
			return
		}

		next.ServeHTTP(w, r.WithContext(WithActorID(r.Context(), userID)))
	})
}
