package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/mesworks/mes-auth/internal/domain/auth"
	apperrors "github.com/mesworks/mes-auth/internal/errors"
	"github.com/mesworks/mes-auth/internal/ports"
	"github.com/mesworks/mes-auth/internal/store"
)

type stubAdapter struct {
	method domainauth.Method
	result domainauth.Result
	err    error
	panics bool
	calls  int
}

func (s *stubAdapter) Method() domainauth.Method { return s.method }

func (s *stubAdapter) Login(_ context.Context, _ domainauth.Credentials) (domainauth.Result, error) {
	s.calls++
	if s.panics {
		panic("adapter blew up")
	}
	return s.result, s.err
}

type stubFederated struct {
	initRes     *domainauth.Result
	initRedir   *ports.RedirectLogin
	initErr     error
	resumeRes   *domainauth.Result
	resumeErr   error
	signOutErr  error
	signOutHits int
}

func (s *stubFederated) Initiate(_ context.Context) (*domainauth.Result, *ports.RedirectLogin, error) {
	return s.initRes, s.initRedir, s.initErr
}

func (s *stubFederated) Resume(_ context.Context, _ ports.Callback) (*domainauth.Result, error) {
	return s.resumeRes, s.resumeErr
}

func (s *stubFederated) SignOut(_ context.Context) error {
	s.signOutHits++
	return s.signOutErr
}

func newTestStore(t *testing.T) ports.TokenStore {
	t.Helper()
	mem := store.NewMemory()
	ts, err := store.NewTiered([]ports.KeyValue{mem}, mem)
	require.NoError(t, err)
	return ts
}

func successResult(method domainauth.Method) domainauth.Result {
	user := domainauth.User{
		ID:         "jane.doe@factory.example",
		Username:   "jane.doe@factory.example",
		Email:      "jane.doe@factory.example",
		Name:       "Jane Doe",
		Role:       domainauth.RoleOperator,
		AuthMethod: method,
	}
	return domainauth.Result{
		Success: true,
		User:    &user,
		Tokens:  domainauth.TokenBundle{IdentityToken: "id-token", AccessToken: "access-token"},
		TechID:  "T-1",
	}
}

func newService(t *testing.T, adapters []ports.CredentialAdapter, fed ports.FederatedProvider) (*AuthService, ports.TokenStore) {
	t.Helper()
	ts := newTestStore(t)
	svc := NewAuthService(AuthServiceOptions{
		Adapters:  adapters,
		Federated: fed,
		Store:     ts,
		Logger:    testLogger(),
	})
	return svc, ts
}

func TestLoginPersistsBeforeReturning(t *testing.T) {
	adapter := &stubAdapter{method: domainauth.MethodCognito, result: successResult(domainauth.MethodCognito)}
	svc, ts := newService(t, []ports.CredentialAdapter{adapter}, nil)

	res := svc.Login(context.Background(), domainauth.MethodCognito, domainauth.Credentials{Username: "jane", Password: "x"})
	require.True(t, res.Success)

	assert.True(t, ts.IsAuthenticated(context.Background()))
	user, err := ts.User(context.Background())
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "jane.doe@factory.example", user.Email)

	method, err := ts.AuthMethod(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domainauth.MethodCognito, method)
}

func TestLoginDefaultsToCognitoMethod(t *testing.T) {
	cognito := &stubAdapter{method: domainauth.MethodCognito, result: successResult(domainauth.MethodCognito)}
	static := &stubAdapter{method: domainauth.MethodBasic, result: successResult(domainauth.MethodBasic)}
	svc, _ := newService(t, []ports.CredentialAdapter{cognito, static}, nil)

	res := svc.Login(context.Background(), "", domainauth.Credentials{Username: "jane", Password: "x"})
	require.True(t, res.Success)
	assert.Equal(t, 1, cognito.calls)
	assert.Equal(t, 0, static.calls)
}

func TestLoginUnknownMethodFailsSoft(t *testing.T) {
	svc, ts := newService(t, nil, nil)

	res := svc.Login(context.Background(), domainauth.MethodBasic, domainauth.Credentials{Username: "x", Password: "y"})
	assert.False(t, res.Success)
	assert.Equal(t, apperrors.MsgInternal, res.Message)
	assert.False(t, ts.IsAuthenticated(context.Background()))
}

func TestLoginFailedResultIsNotPersisted(t *testing.T) {
	adapter := &stubAdapter{
		method: domainauth.MethodCognito,
		result: domainauth.Result{Message: "Invalid credentials"},
	}
	svc, ts := newService(t, []ports.CredentialAdapter{adapter}, nil)

	res := svc.Login(context.Background(), domainauth.MethodCognito, domainauth.Credentials{Username: "jane", Password: "bad"})
	assert.False(t, res.Success)
	assert.Equal(t, "Invalid credentials", res.Message)
	assert.False(t, ts.IsAuthenticated(context.Background()))
}

func TestLoginAdapterErrorFailsSoft(t *testing.T) {
	adapter := &stubAdapter{method: domainauth.MethodCognito, err: errors.New("boom")}
	svc, _ := newService(t, []ports.CredentialAdapter{adapter}, nil)

	res := svc.Login(context.Background(), domainauth.MethodCognito, domainauth.Credentials{Username: "x", Password: "y"})
	assert.False(t, res.Success)
	assert.Equal(t, apperrors.MsgInternal, res.Message)
}

func TestLoginContainsAdapterPanic(t *testing.T) {
	adapter := &stubAdapter{method: domainauth.MethodCognito, panics: true}
	svc, ts := newService(t, []ports.CredentialAdapter{adapter}, nil)

	res := svc.Login(context.Background(), domainauth.MethodCognito, domainauth.Credentials{Username: "x", Password: "y"})
	assert.False(t, res.Success)
	assert.Equal(t, apperrors.MsgInternal, res.Message)
	assert.False(t, ts.IsAuthenticated(context.Background()))
}

func TestFederatedLoginSilentSuccess(t *testing.T) {
	result := successResult(domainauth.MethodAzure)
	fed := &stubFederated{initRes: &result}
	svc, ts := newService(t, nil, fed)

	res, redirect, err := svc.LoginWithFederatedIdentity(context.Background())
	require.NoError(t, err)
	assert.Nil(t, redirect)
	assert.True(t, res.Success)
	assert.True(t, ts.IsAuthenticated(context.Background()))
}

func TestFederatedLoginRedirect(t *testing.T) {
	fed := &stubFederated{initRedir: &ports.RedirectLogin{
		AuthURL: "https://idp.example/auth?state=s1",
		State:   "s1",
		Nonce:   "n1",
	}}
	svc, ts := newService(t, nil, fed)

	res, redirect, err := svc.LoginWithFederatedIdentity(context.Background())
	require.NoError(t, err)
	require.NotNil(t, redirect)
	assert.False(t, res.Success)
	assert.Equal(t, "https://idp.example/auth?state=s1", res.RedirectURL)
	assert.False(t, ts.IsAuthenticated(context.Background()))
}

func TestFederatedLoginNotConfigured(t *testing.T) {
	svc, _ := newService(t, nil, nil)

	_, _, err := svc.LoginWithFederatedIdentity(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsFederatedFlow(err))
}

func TestHandleRedirectResponsePersists(t *testing.T) {
	result := successResult(domainauth.MethodAzure)
	fed := &stubFederated{resumeRes: &result}
	svc, ts := newService(t, nil, fed)

	res, err := svc.HandleRedirectResponse(context.Background(), ports.Callback{Code: "code", State: "s1"})
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.True(t, res.Success)
	assert.True(t, ts.IsAuthenticated(context.Background()))
}

func TestHandleRedirectResponseNothingPending(t *testing.T) {
	fed := &stubFederated{}
	svc, _ := newService(t, nil, fed)

	res, err := svc.HandleRedirectResponse(context.Background(), ports.Callback{})
	require.NoError(t, err)
	assert.Nil(t, res)
}

func TestLogoutClearsSession(t *testing.T) {
	adapter := &stubAdapter{method: domainauth.MethodCognito, result: successResult(domainauth.MethodCognito)}
	svc, ts := newService(t, []ports.CredentialAdapter{adapter}, nil)

	res := svc.Login(context.Background(), domainauth.MethodCognito, domainauth.Credentials{Username: "x", Password: "y"})
	require.True(t, res.Success)

	require.NoError(t, svc.Logout(context.Background()))
	assert.False(t, ts.IsAuthenticated(context.Background()))

	user, err := ts.User(context.Background())
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestLogoutIsIdempotent(t *testing.T) {
	svc, _ := newService(t, nil, nil)
	require.NoError(t, svc.Logout(context.Background()))
	require.NoError(t, svc.Logout(context.Background()))
}

func TestLogoutNotifiesFederatedProvider(t *testing.T) {
	result := successResult(domainauth.MethodAzure)
	fed := &stubFederated{resumeRes: &result}
	svc, _ := newService(t, nil, fed)

	_, err := svc.HandleRedirectResponse(context.Background(), ports.Callback{Code: "code", State: "s"})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background()))
	assert.Equal(t, 1, fed.signOutHits)
}

func TestLogoutProceedsWhenSignOutFails(t *testing.T) {
	result := successResult(domainauth.MethodAzure)
	fed := &stubFederated{resumeRes: &result, signOutErr: errors.New("idp unreachable")}
	svc, ts := newService(t, nil, fed)

	_, err := svc.HandleRedirectResponse(context.Background(), ports.Callback{Code: "code", State: "s"})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background()))
	assert.False(t, ts.IsAuthenticated(context.Background()))
}

func TestLogoutSkipsSignOutForCognitoSessions(t *testing.T) {
	adapter := &stubAdapter{method: domainauth.MethodCognito, result: successResult(domainauth.MethodCognito)}
	fed := &stubFederated{}
	svc, _ := newService(t, []ports.CredentialAdapter{adapter}, fed)

	res := svc.Login(context.Background(), domainauth.MethodCognito, domainauth.Credentials{Username: "x", Password: "y"})
	require.True(t, res.Success)

	require.NoError(t, svc.Logout(context.Background()))
	assert.Equal(t, 0, fed.signOutHits)
}

func TestSessionAccessors(t *testing.T) {
	adapter := &stubAdapter{method: domainauth.MethodCognito, result: successResult(domainauth.MethodCognito)}
	svc, _ := newService(t, []ports.CredentialAdapter{adapter}, nil)

	require.True(t, svc.Login(context.Background(), domainauth.MethodCognito, domainauth.Credentials{Username: "x", Password: "y"}).Success)

	token, err := svc.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "id-token", token)

	access, err := svc.AccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "access-token", access)

	method, err := svc.GetAuthMethod(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domainauth.MethodCognito, method)

	user, err := svc.CurrentUser(context.Background())
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "Jane Doe", user.Name)

	assert.True(t, svc.IsAuthenticated(context.Background()))
}
