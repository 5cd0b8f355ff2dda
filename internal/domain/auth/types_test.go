package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRole_Valid(t *testing.T) {
	for _, r := range []Role{RoleAdmin, RoleSupervisor, RoleOperator, RoleViewer} {
		assert.True(t, r.Valid(), "role %q should be valid", r)
	}
	assert.False(t, Role("manager").Valid())
	assert.False(t, Role("").Valid())
}

func TestRole_AtLeast(t *testing.T) {
	assert.True(t, RoleAdmin.AtLeast(RoleViewer))
	assert.True(t, RoleSupervisor.AtLeast(RoleOperator))
	assert.True(t, RoleOperator.AtLeast(RoleOperator))
	assert.False(t, RoleViewer.AtLeast(RoleOperator))
	assert.False(t, Role("bogus").AtLeast(RoleViewer))
	assert.False(t, RoleAdmin.AtLeast(Role("bogus")))
}

func TestMethod_Valid(t *testing.T) {
	assert.True(t, MethodAzure.Valid())
	assert.True(t, MethodCognito.Valid())
	assert.True(t, MethodBasic.Valid())
	assert.False(t, Method("saml").Valid())
}

func TestTokenBundle_Empty(t *testing.T) {
	assert.True(t, TokenBundle{}.Empty())
	assert.True(t, TokenBundle{AccessToken: "a"}.Empty())
	assert.False(t, TokenBundle{IdentityToken: "id"}.Empty())
}

func TestResult_Record(t *testing.T) {
	u := User{ID: "1", Email: "jane.doe@example.com", Role: RoleOperator, AuthMethod: MethodCognito}
	r := Result{
		Success:     true,
		User:        &u,
		Tokens:      TokenBundle{IdentityToken: "id", AccessToken: "at"},
		TechID:      "T-42",
		AccessLevel: "5",
	}

	rec := r.Record()
	assert.Equal(t, u, rec.User)
	assert.Equal(t, "id", rec.Tokens.IdentityToken)
	assert.Equal(t, "T-42", rec.TechID)
	assert.Equal(t, "5", rec.AccessLevel)

	// Nil user leaves the record's user zero-valued.
	empty := Result{Tokens: TokenBundle{IdentityToken: "id"}}.Record()
	assert.Equal(t, User{}, empty.User)
}
