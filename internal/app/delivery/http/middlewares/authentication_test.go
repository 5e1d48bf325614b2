package middlewares

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"telemed-service/internal/app/models"
	"telemed-service/internal/pkg/constvars"
	"telemed-service/internal/pkg/exceptions"
	"telemed-service/internal/pkg/utils"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const testJWTSecret = "test-jwt-secret"

type stubUserRepository struct {
	users map[string]*models.User
	err   error
}

func (s *stubUserRepository) FindByID(ctx context.Context, userID string) (*models.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.users[userID], nil
}

func (s *stubUserRepository) CountAll(ctx context.Context) (int64, error) {
	return int64(len(s.users)), nil
}

func (s *stubUserRepository) CountByRole(ctx context.Context, role string) (int64, error) {
	return 0, nil
}

func newStoredUser(role string) *models.User {
	return &models.User{ID: primitive.NewObjectID(), Name: "Test " + role, Email: role + "@example.com", Role: role}
}

func signToken(t *testing.T, userID, role string) string {
	t.Helper()
	token, err := utils.GenerateSessionJWT(userID, role, testJWTSecret, time.Hour)
	require.NoError(t, err)
	return token
}

func serveAuthenticated(m *Middlewares, authHeader string) (*httptest.ResponseRecorder, *models.Session) {
	var session *models.Session
	handler := m.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, _ = r.Context().Value(constvars.CONTEXT_SESSION_DATA_KEY).(*models.Session)
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/appointments", nil)
	if authHeader != "" {
		req.Header.Set(constvars.HeaderAuthorization, authHeader)
	}
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr, session
}

func TestAuthenticate(t *testing.T) {
	doctor := newStoredUser(constvars.RoleDoctor)
	banned := newStoredUser(constvars.RolePatient)
	banned.Status = models.UserStatusBanned

	m := newAPIKeyMiddlewares(testAPIKey)
	m.UserRepository = &stubUserRepository{users: map[string]*models.User{
		doctor.ID.Hex(): doctor,
		banned.ID.Hex(): banned,
	}}

	t.Run("role comes from the stored user", func(t *testing.T) {
		token := signToken(t, doctor.ID.Hex(), constvars.RoleAdmin)
		rr, session := serveAuthenticated(m, "Bearer "+token)

		assert.Equal(t, http.StatusOK, rr.Code)
		require.NotNil(t, session)
		assert.Equal(t, doctor.ID.Hex(), session.UserID)
		assert.Equal(t, constvars.RoleDoctor, session.Role)
	})

	t.Run("missing header", func(t *testing.T) {
		rr, session := serveAuthenticated(m, "")
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Nil(t, session)
	})

	t.Run("wrong scheme", func(t *testing.T) {
		rr, _ := serveAuthenticated(m, "Basic abc")
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("bad signature", func(t *testing.T) {
		token, err := utils.GenerateSessionJWT(doctor.ID.Hex(), constvars.RoleDoctor, "other-secret", time.Hour)
		require.NoError(t, err)
		rr, _ := serveAuthenticated(m, "Bearer "+token)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("expired", func(t *testing.T) {
		token, err := utils.GenerateSessionJWT(doctor.ID.Hex(), constvars.RoleDoctor, testJWTSecret, -time.Minute)
		require.NoError(t, err)
		rr, _ := serveAuthenticated(m, "Bearer "+token)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("unknown user", func(t *testing.T) {
		token := signToken(t, primitive.NewObjectID().Hex(), constvars.RolePatient)
		rr, _ := serveAuthenticated(m, "Bearer "+token)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("banned user", func(t *testing.T) {
		token := signToken(t, banned.ID.Hex(), constvars.RolePatient)
		rr, _ := serveAuthenticated(m, "Bearer "+token)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestAuthenticate_RepositoryFailure(t *testing.T) {
	m := newAPIKeyMiddlewares(testAPIKey)
	m.UserRepository = &stubUserRepository{err: exceptions.ErrMongoDBFindDocument(errors.New("no reachable servers"))}

	token := signToken(t, primitive.NewObjectID().Hex(), constvars.RolePatient)
	rr, session := serveAuthenticated(m, "Bearer "+token)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Nil(t, session)
}

func TestRequireRole(t *testing.T) {
	m := newAPIKeyMiddlewares(testAPIKey)
	handler := m.RequireRole(constvars.RoleDoctor)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	serve := func(session *models.Session) int {
		req := httptest.NewRequest(http.MethodPut, "/appointments/x/complete", nil)
		if session != nil {
			req = req.WithContext(context.WithValue(req.Context(), constvars.CONTEXT_SESSION_DATA_KEY, session))
		}
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr.Code
	}

	assert.Equal(t, http.StatusOK, serve(&models.Session{UserID: "u1", Role: constvars.RoleDoctor}))
	assert.Equal(t, http.StatusForbidden, serve(&models.Session{UserID: "u2", Role: constvars.RolePatient}))
	assert.Equal(t, http.StatusUnauthorized, serve(nil))
}

func TestSecurityEvents_UseRegisteredNames(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	m := newAPIKeyMiddlewares(testAPIKey)
	m.Log = zap.New(core)

	rr, _ := serveAuthenticated(m, "Bearer not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	handler := m.RequireRole(constvars.RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	req := httptest.NewRequest(http.MethodGet, "/admin/stats", nil)
	req = req.WithContext(context.WithValue(req.Context(), constvars.CONTEXT_SESSION_DATA_KEY,
		&models.Session{UserID: "u1", Role: constvars.RolePatient}))
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	var events []string
	for _, entry := range logs.FilterMessage("Security event detected").All() {
		events = append(events, entry.ContextMap()["security_event"].(string))
	}
	assert.Equal(t, []string{
		constvars.SecurityEventInvalidBearerToken,
		constvars.SecurityEventRoleNotAllowed,
	}, events)
}
