package rest

import (
	"net/http"

	"valuation-service/internal/contextkeys"
	"valuation-service/internal/core/port"
)

// APIKeyHeader carries the static key issued to each client.
const APIKeyHeader = "api_key"

const invalidAPIKeyMessage = "Invalid API Key"

// APIKeyMiddleware rejects requests whose api_key header is missing or not
// registered. Accepted requests carry the caller identity in their context.
func APIKeyMiddleware(registry port.APIKeyRegistryPort) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := contextkeys.LoggerFromContext(r.Context())

			identity, err := registry.Identify(r.Header.Get(APIKeyHeader))
			if err != nil {
				logger.Warn("Rejected request with invalid API key", nil)
				WriteJSONError(w, http.StatusUnauthorized, invalidAPIKeyMessage)
				return
			}

			ctx := contextkeys.ContextWithIdentity(r.Context(), identity)
			ctx = contextkeys.ContextWithLogger(ctx, logger.WithFields(port.Fields{"identity": identity}))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
