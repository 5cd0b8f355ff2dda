package httpx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesworks/mes-auth/internal/adapters/mesbackend"
	apperrors "github.com/mesworks/mes-auth/internal/errors"
)

type stubScanner struct {
	records  []mesbackend.RouterRecord
	err      error
	gotToken string
	gotScan  mesbackend.ScanRequest
}

func (s *stubScanner) Scan(_ context.Context, accessToken string, scan mesbackend.ScanRequest) ([]mesbackend.RouterRecord, error) {
	s.gotToken = accessToken
	s.gotScan = scan
	return s.records, s.err
}

type stubTokenReader struct{ token string }

func (s *stubTokenReader) AccessToken(_ context.Context) (string, error) { return s.token, nil }

func TestRouterList_Success(t *testing.T) {
	scanner := &stubScanner{records: []mesbackend.RouterRecord{
		{PartNumber: "PN-1", RouterID: "R-1", Status: "active"},
	}}
	h := &RouterHandlers{Scanner: scanner, Tokens: &stubTokenReader{token: "access-token"}, Logger: testLogger()}

	req := httptest.NewRequest(http.MethodGet, "/api/routers?partNumber=PN-1&currentProcess=assembly", nil)
	rec := httptest.NewRecorder()
	h.List(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "access-token", scanner.gotToken)
	assert.Equal(t, "PN-1", scanner.gotScan.PartNumber)
	assert.Equal(t, "assembly", scanner.gotScan.CurrentProcess)
	assert.Contains(t, rec.Body.String(), "PN-1")
}

func TestRouterList_NoSessionToken(t *testing.T) {
	h := &RouterHandlers{Scanner: &stubScanner{}, Tokens: &stubTokenReader{}, Logger: testLogger()}

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/api/routers", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouterList_ExpiredSession(t *testing.T) {
	scanner := &stubScanner{err: apperrors.InvalidCredentials("session is not authorized for router data")}
	h := &RouterHandlers{Scanner: scanner, Tokens: &stubTokenReader{token: "stale"}, Logger: testLogger()}

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/api/routers", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouterList_BackendDown(t *testing.T) {
	scanner := &stubScanner{err: apperrors.Transport("dial tcp: connection refused")}
	h := &RouterHandlers{Scanner: scanner, Tokens: &stubTokenReader{token: "access-token"}, Logger: testLogger()}

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/api/routers", nil))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.NotContains(t, rec.Body.String(), "dial tcp")
}
