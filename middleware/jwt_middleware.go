package middleware

import (
	"context"
	"net/http"
	"strings"
	"wayfare/utils/errors"

	"github.com/golang-jwt/jwt/v5"
)

// ParseUserID validates a signed token and returns the userID claim.
// Used by the HTTP middleware and by the websocket handler, which receives
// the token as a query parameter instead of a header.
func ParseUserID(tokenString, jwtSecret string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.NewAPIError("INVALID_TOKEN", "Unexpected signing method", http.StatusUnauthorized)
		}
		return []byte(jwtSecret), nil
	})
	if err != nil || !token.Valid {
		return "", errors.ErrUnauthorized
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.ErrUnauthorized
	}
	userID, ok := claims["userID"].(string)
	if !ok || userID == "" {
		return "", errors.ErrUnauthorized
	}
	return userID, nil
}

func JWTMiddleware(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
				WriteError(w, errors.ErrUnauthorized)
				return
			}
			tokenString := strings.TrimPrefix(authHeader, "Bearer ")

			userID, err := ParseUserID(tokenString, jwtSecret)
			if err != nil {
				WriteError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), "userID", userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
