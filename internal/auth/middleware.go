package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/taiwoajasa245/verse-courier/pkg/response"
	"github.com/taiwoajasa245/verse-courier/pkg/util"
)

type contextKey string

const gatewayContextKey contextKey = "gateway"

// GatewayMiddleware admits requests carrying a valid gateway bearer token.
func GatewayMiddleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				response.Error(w, http.StatusUnauthorized, "Missing Authorization header", "gateway not authenticated")
				return
			}

			tokenStr, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok {
				response.Error(w, http.StatusUnauthorized, "Invalid token format", "")
				return
			}

			claims, err := util.ValidateJWT(secret, tokenStr)
			if err != nil {
				response.Error(w, http.StatusUnauthorized, "Invalid or expired token", err.Error())
				return
			}

			ctx := context.WithValue(r.Context(), gatewayContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetGatewayFromContext(r *http.Request) (*util.Claims, bool) {
	claims, ok := r.Context().Value(gatewayContextKey).(*util.Claims)
	return claims, ok
}
