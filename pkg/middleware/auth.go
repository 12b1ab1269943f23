package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

type contextKeyType string

const customerIDKey contextKeyType = "customer_id"

// Claims are the session claims extracted by the auth middleware.
type Claims struct {
	CustomerID int64  `json:"customer_id"`
	Email      string `json:"email"`
}

// TokenValidator validates a bearer token and returns its claims. The
// concrete JWT logic is injected by the application so this package stays
// free of signing-key concerns.
type TokenValidator func(token string) (*Claims, error)

// Auth validates the Authorization header and injects the customer ID into
// the request context. Requests without a valid session are rejected with
// 401 before reaching any handler.
func Auth(validate TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeAuthError(w, "missing authorization header")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				writeAuthError(w, "invalid authorization header format")
				return
			}

			claims, err := validate(parts[1])
			if err != nil {
				writeAuthError(w, "invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), customerIDKey, claims.CustomerID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CustomerIDFromContext extracts the authenticated customer ID, or 0 when the
// request carried no session.
func CustomerIDFromContext(ctx context.Context) int64 {
	if id, ok := ctx.Value(customerIDKey).(int64); ok {
		return id
	}
	return 0
}

// WithCustomerID returns a context carrying the given customer ID. Intended
// for tests that exercise handlers without the full middleware chain.
func WithCustomerID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, customerIDKey, id)
}

func writeAuthError(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"message": message,
	})
}
