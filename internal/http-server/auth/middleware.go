// Package auth содержит middleware аутентификации по JWT и извлечение
// данных пользователя из контекста запроса.
package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/magabrotheeeer/yourtube-backend/internal/lib/jwt"
)

type ctxKey string

const claimsKey ctxKey = "user"

// JWTMiddleware проверяет Bearer-токен и кладет claims в контекст запроса.
func JWTMiddleware(jwtMaker jwt.Maker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				http.Error(w, "missing or invalid authorization header", http.StatusUnauthorized)
				return
			}
			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

			claims, err := jwtMaker.ParseToken(tokenStr)
			if err != nil {
				http.Error(w, "invalid or expired token", http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ContextWithClaims кладет claims в контекст, как это делает JWTMiddleware.
func ContextWithClaims(ctx context.Context, claims *jwt.CustomClaims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// ClaimsFromContext возвращает claims аутентифицированного пользователя.
func ClaimsFromContext(ctx context.Context) (*jwt.CustomClaims, bool) {
	claims, ok := ctx.Value(claimsKey).(*jwt.CustomClaims)
	return claims, ok
}
