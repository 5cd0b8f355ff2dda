package staticauth

import (
	"context"
	"encoding/base64"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/mesworks/mes-auth/internal/domain/auth"
	apperrors "github.com/mesworks/mes-auth/internal/errors"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewAdapterRequiresCredentialPair(t *testing.T) {
	_, err := NewAdapter(Config{Username: "admin"}, discardLogger())
	require.Error(t, err)
	_, err = NewAdapter(Config{Password: "admin"}, discardLogger())
	require.Error(t, err)
}

func TestLoginSuccess(t *testing.T) {
	a, err := NewAdapter(Config{Username: "admin", Password: "admin"}, discardLogger())
	require.NoError(t, err)
	a.now = func() time.Time { return time.UnixMilli(1700000000000) }

	res, err := a.Login(context.Background(), domainauth.Credentials{Username: "admin", Password: "admin"})
	require.NoError(t, err)
	require.True(t, res.Success)
	require.NotNil(t, res.User)

	assert.Equal(t, "admin", res.User.Username)
	assert.Equal(t, domainauth.RoleAdmin, res.User.Role)
	assert.Equal(t, domainauth.MethodBasic, res.User.AuthMethod)

	decoded, err := base64.StdEncoding.DecodeString(res.Tokens.IdentityToken)
	require.NoError(t, err)
	assert.Equal(t, "admin:1700000000000", string(decoded))
}

func TestLoginWrongPassword(t *testing.T) {
	a, err := NewAdapter(Config{Username: "admin", Password: "admin"}, discardLogger())
	require.NoError(t, err)

	res, err := a.Login(context.Background(), domainauth.Credentials{Username: "admin", Password: "nope"})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Nil(t, res.User)
	assert.Equal(t, apperrors.MsgInvalidCredentials, res.Message)
	assert.True(t, res.Tokens.Empty())
}

func TestLoginDelayHonorsContext(t *testing.T) {
	a, err := NewAdapter(Config{Username: "admin", Password: "admin", Delay: time.Minute}, discardLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err = a.Login(ctx, domainauth.Credentials{Username: "admin", Password: "admin"})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "deadline"))
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestConfigDefaults(t *testing.T) {
	a, err := NewAdapter(Config{Username: "demo", Password: "demo", Role: "nonsense"}, discardLogger())
	require.NoError(t, err)

	res, err := a.Login(context.Background(), domainauth.Credentials{Username: "demo", Password: "demo"})
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.Equal(t, "demo@mes.local", res.User.Email)
	assert.Equal(t, "Demo User", res.User.Name)
	assert.Equal(t, domainauth.RoleAdmin, res.User.Role)
}
