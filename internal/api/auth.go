package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dropdawn/dropdawn/internal/log"
)

// authenticator verifies bearer tokens and resolves them to a user ID.
type authenticator struct {
	secret []byte
	logger log.Logger
}

// claims carried by a Dropdawn access token.
type authClaims struct {
	jwt.RegisteredClaims
}

// userID parses and validates a bearer token, returning the subject.
func (a *authenticator) userID(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &authClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("parsing token: %w", err)
	}

	c, ok := token.Claims.(*authClaims)
	if !ok || !token.Valid || c.Subject == "" {
		return "", fmt.Errorf("invalid token claims")
	}
	return c.Subject, nil
}

// authMiddleware resolves an Authorization bearer token, when present, to a
// user ID in the request context. Requests without a token pass through
// anonymous; handlers requiring identity enforce it themselves so ephemeral
// chat stays reachable.
func authMiddleware(a *authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			tokenString := strings.TrimPrefix(header, "Bearer ")
			if tokenString == header {
				WriteError(w, http.StatusUnauthorized, "invalid_authorization", "authorization header must use the Bearer scheme", a.logger)
				return
			}

			uid, err := a.userID(tokenString)
			if err != nil {
				a.logger.Debug("token validation failed", "error", err)
				WriteError(w, http.StatusUnauthorized, "invalid_token", "invalid or expired token", a.logger)
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey{}, uid)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
