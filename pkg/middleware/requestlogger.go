package middleware

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/JJ-Sinklaire/desesperanza/pkg/logger"
)

// RequestLogger builds a request-scoped logger enriched with correlation_id,
// customer_id, trace_id, and span_id, and stores it in the context so
// handlers can retrieve it with logger.FromContext.
//
// Mount after RequestLogging (sets the correlation ID), Tracing (sets the
// span context), and Auth (sets the customer ID).
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if id := CustomerIDFromContext(ctx); id != 0 {
				ctx = logger.WithCustomerID(ctx, strconv.FormatInt(id, 10))
			}

			enriched := logger.WithContext(ctx, base)
			ctx = logger.NewContext(ctx, enriched)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
