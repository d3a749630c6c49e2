package middleware

import (
	"net/http"

	"ustat-be/internal/auth"
	"ustat-be/internal/utils"
)

// AuthMiddleware resolves the caller's identity from the access token and
// attaches it to the request context. Requests without a valid token proceed
// anonymously; per-operation authorization happens in the services.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenStr := auth.ExtractAccessToken(r)
		if tokenStr == "" {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := auth.ParseJWT(tokenStr)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		ctx := utils.SetUserContext(r.Context(), claims.UserID, claims.Email, claims.FullName, claims.IsStaff)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
