package middleware

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

const MerchantIDKey contextKey = "merchantID"

// TokenValidator resolves a bearer token to the merchant it belongs to.
// Session management itself lives in the auth collaborator; the service only
// needs the merchant scope back.
type TokenValidator func(token string) (merchantID string, ok bool)

// AuthMiddleware validates the bearer token on every request and stores the
// merchant id in the request context.
func AuthMiddleware(validate TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, `{"error": "Authorization header required"}`, http.StatusUnauthorized)
				return
			}

			token := strings.TrimPrefix(authHeader, "Bearer ")
			if token == authHeader {
				http.Error(w, `{"error": "Invalid authorization format. Use 'Bearer <token>'"}`, http.StatusUnauthorized)
				return
			}

			merchantID, ok := validate(token)
			if !ok {
				http.Error(w, `{"error": "Invalid token"}`, http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), MerchantIDKey, merchantID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// StaticTokenValidator builds a validator from a "token:merchant" pair list,
// the form the MERCHANT_TOKENS env var carries.
func StaticTokenValidator(pairs string) TokenValidator {
	table := make(map[string]string)
	for _, pair := range strings.Split(pairs, ",") {
		token, merchant, found := strings.Cut(strings.TrimSpace(pair), ":")
		if found && token != "" && merchant != "" {
			table[token] = merchant
		}
	}
	return func(token string) (string, bool) {
		merchantID, ok := table[token]
		return merchantID, ok
	}
}

// GetMerchantID extracts the authenticated merchant scope from context.
func GetMerchantID(ctx context.Context) (string, bool) {
	merchantID, ok := ctx.Value(MerchantIDKey).(string)
	return merchantID, ok
}
