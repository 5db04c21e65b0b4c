package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	apperrors "parkspot/pkg/errors"
	httputil "parkspot/pkg/http"
	"parkspot/pkg/logger"
	"parkspot/pkg/model"

	"github.com/golang-jwt/jwt/v5"
)

const RequesterKey contextKey = "requester"

// ErrUnknownUser is returned by a RoleResolver when the token subject does
// not exist.
var ErrUnknownUser = errors.New("unknown user")

// Claims is the payload issued by the identity service. Role is optional;
// when absent it is looked up through the RoleResolver.
type Claims struct {
	UserID string     `json:"userId"`
	Role   model.Role `json:"role,omitempty"`
	jwt.RegisteredClaims
}

type RoleResolver func(ctx context.Context, userID string) (model.Role, error)

type Authenticator struct {
	secret     []byte
	cookieName string
	roles      RoleResolver
	log        *logger.Logger
}

func NewAuthenticator(secret, cookieName string, roles RoleResolver, log *logger.Logger) *Authenticator {
	return &Authenticator{
		secret:     []byte(secret),
		cookieName: cookieName,
		roles:      roles,
		log:        log,
	}
}

// Authenticate rejects requests without a valid token and stores the
// requester in the request context.
func (a *Authenticator) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requester, err := a.requester(r)
		if err != nil {
			a.log.Warn("Authentication failed",
				"request_id", RequestIDFromContext(r.Context()),
				"path", r.URL.Path,
				"error", err,
			)
			_ = httputil.WriteError(w, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithRequester(r.Context(), requester)))
	})
}

func (a *Authenticator) requester(r *http.Request) (model.Requester, error) {
	raw := a.token(r)
	if raw == "" {
		return model.Requester{}, apperrors.Unauthorized("Not authorized, no token")
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || claims.UserID == "" {
		return model.Requester{}, apperrors.Unauthorized("Not authorized, token failed")
	}

	role := claims.Role
	if role == "" && a.roles != nil {
		role, err = a.roles(r.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, ErrUnknownUser) {
				return model.Requester{}, apperrors.Unauthorized("Not authorized, user not found")
			}
			return model.Requester{}, apperrors.Internal("Failed to resolve user role", err)
		}
	}
	if !role.IsValid() {
		role = model.RoleDriver
	}

	return model.Requester{UserID: claims.UserID, Role: role}, nil
}

// token prefers the Authorization header over the session cookie.
func (a *Authenticator) token(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
	}
	if a.cookieName != "" {
		if cookie, err := r.Cookie(a.cookieName); err == nil {
			return cookie.Value
		}
	}
	return ""
}

func WithRequester(ctx context.Context, requester model.Requester) context.Context {
	return context.WithValue(ctx, RequesterKey, requester)
}

func RequesterFromContext(ctx context.Context) (model.Requester, bool) {
	requester, ok := ctx.Value(RequesterKey).(model.Requester)
	return requester, ok
}

// SignToken issues an HS256 token for userID. It is used by tooling and tests;
// production tokens come from the identity service.
func SignToken(secret, userID string, role model.Role, claims jwt.RegisteredClaims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID:           userID,
		Role:             role,
		RegisteredClaims: claims,
	})
	return token.SignedString([]byte(secret))
}
