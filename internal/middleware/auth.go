// Package middleware provides HTTP middleware for the skill host.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// ContextKey is a type for context keys.
type ContextKey string

const (
	// CallerIDKey is the context key for the parent bot's app id.
	CallerIDKey ContextKey = "caller_id"
)

// Claims represents JWT claims presented by a parent bot.
type Claims struct {
	jwt.RegisteredClaims
	AppID string `json:"appid"`
}

// Auth creates caller authentication middleware. Only parent bots whose
// app id appears in allowedCallers may invoke the skill; a list containing
// "*" allows any authenticated caller.
func Auth(jwtSecret string, allowedCallers []string) func(http.Handler) http.Handler {
	allowAll := false
	allowed := make(map[string]struct{}, len(allowedCallers))
	for _, caller := range allowedCallers {
		if caller == "*" {
			allowAll = true
		}
		allowed[caller] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, `{"error":"missing authorization header"}`, http.StatusUnauthorized)
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				http.Error(w, `{"error":"invalid authorization header format"}`, http.StatusUnauthorized)
				return
			}

			claims := &Claims{}
			token, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(jwtSecret), nil
			})
			if err != nil || !token.Valid {
				http.Error(w, `{"error":"invalid token"}`, http.StatusUnauthorized)
				return
			}

			callerID := claims.AppID
			if callerID == "" {
				callerID = claims.Subject
			}

			if !allowAll {
				if _, ok := allowed[callerID]; !ok {
					http.Error(w, `{"error":"caller is not allowed to invoke this skill"}`, http.StatusForbidden)
					return
				}
			}

			ctx := context.WithValue(r.Context(), CallerIDKey, callerID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetCallerID gets the caller app id from context.
func GetCallerID(ctx context.Context) string {
	if v := ctx.Value(CallerIDKey); v != nil {
		return v.(string)
	}
	return ""
}
