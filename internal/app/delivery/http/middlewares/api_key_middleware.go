package middlewares

import (
	"context"
	"crypto/subtle"
	"net/http"
	"telemed-service/internal/app/models"
	"telemed-service/internal/pkg/constvars"
	"telemed-service/internal/pkg/exceptions"
	"telemed-service/internal/pkg/utils"

	"go.uber.org/zap"
)

// APIKeyAuth marks the request as superadmin when a valid x-api-key is sent.
// Requests without the header pass through untouched.
func (m *Middlewares) APIKeyAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiKey := r.Header.Get(constvars.HeaderAPIKey)

		if apiKey == "" {
			next.ServeHTTP(w, r)
			return
		}

		if !m.isSuperadminAPIKey(apiKey) {
			requestID, _ := r.Context().Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
			utils.LogSecurityEvent(m.Log, "invalid_api_key", requestID, constvars.SecuritySeverityHigh,
				zap.String(constvars.LoggingRemoteAddrKey, r.RemoteAddr),
				zap.String(constvars.LoggingEndpointKey, r.URL.Path),
			)
			utils.BuildErrorResponse(m.Log, w, exceptions.ErrInvalidAPIKey(nil))
			return
		}

		ctx := context.WithValue(r.Context(), constvars.CONTEXT_API_KEY_AUTH_KEY, true)
		ctx = context.WithValue(ctx, constvars.CONTEXT_SESSION_DATA_KEY, &models.Session{
			UserID: constvars.API_KEY_SUBJECT,
			Role:   constvars.RoleSuperadmin,
		})

		m.Log.Info("API Key authentication successful",
			zap.String("ip", r.RemoteAddr),
			zap.String("endpoint", r.URL.Path),
			zap.String("method", r.Method),
			zap.String("user_agent", r.UserAgent()))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AdminOrAPIKey admits a valid superadmin api key, or else a bearer session
// whose stored role is admin or superadmin.
func (m *Middlewares) AdminOrAPIKey(next http.Handler) http.Handler {
	requireAdmin := m.Authenticate(m.RequireRole(constvars.RoleAdmin, constvars.RoleSuperadmin)(next))

	return m.APIKeyAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if apiKeyAuth, ok := r.Context().Value(constvars.CONTEXT_API_KEY_AUTH_KEY).(bool); ok && apiKeyAuth {
			next.ServeHTTP(w, r)
			return
		}
		requireAdmin.ServeHTTP(w, r)
	}))
}

func (m *Middlewares) isSuperadminAPIKey(apiKey string) bool {
	expected := m.InternalConfig.App.SuperadminAPIKey
	if expected == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(apiKey), []byte(expected)) == 1
}
