package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/mesworks/mes-auth/internal/domain/auth"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireAuth_Unauthenticated(t *testing.T) {
	svc := &stubAuthService{authenticated: false}
	handler := RequireAuth(svc)(okHandler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/routers", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuth_PutsUserInContext(t *testing.T) {
	user := domainauth.User{Username: "jane", Role: domainauth.RoleOperator}
	svc := &stubAuthService{authenticated: true, user: &user}

	var got *domainauth.User
	handler := RequireAuth(svc)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = UserFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/routers", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, got)
	assert.Equal(t, "jane", got.Username)
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name     string
		userRole domainauth.Role
		required domainauth.Role
		status   int
	}{
		{"admin passes supervisor gate", domainauth.RoleAdmin, domainauth.RoleSupervisor, http.StatusOK},
		{"exact role passes", domainauth.RoleSupervisor, domainauth.RoleSupervisor, http.StatusOK},
		{"viewer blocked from supervisor gate", domainauth.RoleViewer, domainauth.RoleSupervisor, http.StatusForbidden},
		{"operator blocked from admin gate", domainauth.RoleOperator, domainauth.RoleAdmin, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := domainauth.User{Username: "jane", Role: tt.userRole}
			svc := &stubAuthService{authenticated: true, user: &user}
			handler := RequireAuth(svc)(RequireRole(tt.required)(okHandler()))

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestRecoverMiddleware(t *testing.T) {
	handler := Recover(testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("handler blew up")
	}))

	rec := httptest.NewRecorder()
	require.NotPanics(t, func() {
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestLoggingMiddlewarePassesThrough(t *testing.T) {
	handler := Logging(testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}
