package middleware

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"rosemary-store/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type contextKey int

const (
	requestIDKey contextKey = iota
	actorKey
	sessionKey
)

// Header and cookie names understood by the middleware.
const (
	RequestIDHeader   = "X-Request-ID"
	ActorTypeHeader   = "X-Actor-Type"
	ActorIDHeader     = "X-Actor-ID"
	SessionCookieName = "cart_session"
)

const maxRequestIDLength = 128

// RequestID assigns every request an id, reusing a sane inbound X-Request-ID.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(RequestIDHeader))
		if id == "" || len(id) > maxRequestIDLength {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

// RequestIDFrom returns the request id, or "" outside RequestID.
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// Actor resolves the acting customer or employee from the headers set by the
// upstream session layer. Requests without actor headers pass through
// anonymously; malformed headers are rejected.
func Actor(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			kindHeader := r.Header.Get(ActorTypeHeader)
			idHeader := r.Header.Get(ActorIDHeader)
			if kindHeader == "" && idHeader == "" {
				next.ServeHTTP(w, r)
				return
			}

			kind, err := model.ParseActorKind(strings.ToLower(strings.TrimSpace(kindHeader)))
			if err != nil {
				logger.Warn().Str("actor_type", kindHeader).Msg("unknown actor type")
				writeError(w, r, http.StatusUnauthorized, model.ErrCodeUnauthorised, "unknown actor type")
				return
			}

			id, err := strconv.ParseInt(strings.TrimSpace(idHeader), 10, 64)
			if err != nil || id <= 0 {
				logger.Warn().Str("actor_id", idHeader).Msg("invalid actor id")
				writeError(w, r, http.StatusUnauthorized, model.ErrCodeUnauthorised, "invalid actor id")
				return
			}

			actor := model.Actor{Kind: kind, ID: id}
			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		})
	}
}

// WithActor stores actor in ctx.
func WithActor(ctx context.Context, actor model.Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// ActorFrom returns the resolved actor, if any.
func ActorFrom(ctx context.Context) (model.Actor, bool) {
	actor, ok := ctx.Value(actorKey).(model.Actor)
	return actor, ok
}

// CartSession makes sure the client holds a cart session cookie and exposes
// its value to handlers.
func CartSession(maxAge time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var id string
			if cookie, err := r.Cookie(SessionCookieName); err == nil {
				if parsed, err := uuid.Parse(cookie.Value); err == nil {
					id = parsed.String()
				}
			}
			if id == "" {
				id = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     SessionCookieName,
					Value:    id,
					Path:     "/",
					MaxAge:   int(maxAge.Seconds()),
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), id)))
		})
	}
}

// WithSession stores a cart session id in ctx.
func WithSession(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionKey, id)
}

// SessionFrom returns the cart session id, or "".
func SessionFrom(ctx context.Context) string {
	id, _ := ctx.Value(sessionKey).(string)
	return id
}
