package server

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"strings"
	"time"

	"dmadmin/internal"
	"dmadmin/internal/utils"
	"dmadmin/pkg/types"

	"github.com/lestrrat-go/jwx/v3/jwt"
	"github.com/sirupsen/logrus"
)

type contextKey string

const (
	contextKeyActor     contextKey = "actor"
	contextKeyRequestID contextKey = "request_id"
)

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func actorFromContext(ctx context.Context) (types.Actor, bool) {
	actor, ok := ctx.Value(contextKeyActor).(types.Actor)
	return actor, ok
}

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(contextKeyRequestID).(string)
	return id
}

func withActor(ctx context.Context, actor types.Actor) context.Context {
	return context.WithValue(ctx, contextKeyActor, actor)
}

func (s *Service) LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		requestID := r.Header.Get("X-Request-Id")
		if !utils.ValidRequestID(requestID) {
			requestID = utils.RequestID()
		}
		rw.Header().Set("X-Request-Id", requestID)
		ctx := context.WithValue(r.Context(), contextKeyRequestID, requestID)

		next.ServeHTTP(rw, r.WithContext(ctx))

		s.logger.WithFields(logrus.Fields{
			"request_id":  requestID,
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      rw.statusCode,
			"duration_ms": time.Since(started).Milliseconds(),
		}).Info("http request")
	})
}

// RequireAuth verifies the ID token cookie and adds the actor to the context.
func (s *Service) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(internal.COOKIE_ID_TOKEN_NAME)
		if err != nil {
			s.logger.WithError(err).Debug("no id token cookie found")

			s.setRedirectCookie(w, r.URL.RequestURI(), time.Minute*5)
			s.redirectToLogin(w, r)
			return
		}

		var idToken string
		err = s.cookie.Decode(internal.COOKIE_ID_TOKEN_NAME, cookie.Value, &idToken)
		if err != nil {
			s.logger.WithError(err).Error("failed to decrypt id token")
			s.redirectToLogin(w, r)
			return
		}

		set, err := s.jwksCache.Lookup(r.Context(), s.jwksURL)
		if err != nil {
			s.logger.WithError(err).Error("failed to fetch JWKS")
			s.redirectToLogin(w, r)
			return
		}

		token, err := jwt.Parse(
			[]byte(idToken),
			jwt.WithKeySet(set),
			jwt.WithValidate(true),
		)
		if err != nil {
			s.logger.WithError(err).Warn("failed to parse JWT")
			s.redirectToLogin(w, r)
			return
		}

		actor, err := actorFromToken(token)
		if err != nil {
			s.logger.WithError(err).Error("unusable id token")
			s.redirectToLogin(w, r)
			return
		}

		s.logger.WithFields(logrus.Fields{
			"user_id": actor.ID,
			"email":   actor.Email,
			"role":    actor.Role,
		}).Debug("authenticated user")

		next.ServeHTTP(w, r.WithContext(withActor(r.Context(), actor)))
	})
}

// actorFromToken reads the administrator from ID token claims. The role is
// the custom:role attribute, falling back to the first cognito group.
func actorFromToken(token jwt.Token) (types.Actor, error) {
	userID, ok := token.Subject()
	if !ok || userID == "" {
		return types.Actor{}, errors.New("no subject claim")
	}

	var email string
	if err := token.Get("email", &email); err != nil || email == "" {
		return types.Actor{}, errors.New("no email claim")
	}

	var role string
	if err := token.Get("custom:role", &role); err != nil || role == "" {
		var groups []any
		if err := token.Get("cognito:groups", &groups); err == nil && len(groups) > 0 {
			role, _ = groups[0].(string)
		}
	}

	return types.Actor{ID: userID, Email: email, Role: types.Role(role)}, nil
}

// RequireRole rejects actors whose role is not one of roles with a 403.
func (s *Service) RequireRole(roles ...types.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := actorFromContext(r.Context())
			if !ok {
				s.redirectToLogin(w, r)
				return
			}

			if !slices.Contains(roles, actor.Role) {
				s.logger.WithFields(logrus.Fields{
					"email": actor.Email,
					"role":  actor.Role,
					"path":  r.URL.Path,
				}).Warn("role not permitted")
				s.renderError(w, r, types.ErrForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (s *Service) StripTrailingSlash(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path

		if path != "/" && strings.HasSuffix(path, "/") {
			newURL := *r.URL
			newURL.Path = strings.TrimSuffix(path, "/")

			http.Redirect(w, r, newURL.String(), http.StatusMovedPermanently)
			return
		}

		next.ServeHTTP(w, r)
	})
}
