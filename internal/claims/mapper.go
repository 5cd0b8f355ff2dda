package claims

// Package claims normalizes raw adapter output (JWT claims, backend
// response fields, static constants) into the canonical User record.
// Every function here is pure and must never panic on malformed input:
// the login path degrades to safe defaults instead.

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/golang-jwt/jwt/v5"

	domainauth "github.com/mesworks/mes-auth/internal/domain/auth"
	apperrors "github.com/mesworks/mes-auth/internal/errors"
)

// DefaultRole is the role assigned when no access level is available or
// claim decoding fails.
const DefaultRole = domainauth.RoleOperator

// RoleForAccessLevel maps an MES access-level code to the application
// role. This is the single canonical threshold table:
//
//	0 -> admin, 1-3 -> supervisor, 4-7 -> operator, 8-10 -> viewer
//
// Unparsable or out-of-range input degrades to DefaultRole.
func RoleForAccessLevel(accessLevel string) domainauth.Role {
	level, err := strconv.Atoi(strings.TrimSpace(accessLevel))
	if err != nil || level < 0 || level > 10 {
		return DefaultRole
	}
	switch {
	case level == 0:
		return domainauth.RoleAdmin
	case level <= 3:
		return domainauth.RoleSupervisor
	case level <= 7:
		return domainauth.RoleOperator
	default:
		return domainauth.RoleViewer
	}
}

// NameFromEmail derives a display name from an email local part:
// "john.doe@x.com" -> "John Doe". When splitting yields nothing useful
// the raw local part comes back unchanged.
func NameFromEmail(email string) string {
	local := email
	if at := strings.Index(email, "@"); at >= 0 {
		local = email[:at]
	}
	if local == "" {
		return email
	}

	parts := strings.Split(local, ".")
	words := make([]string, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			continue
		}
		words = append(words, capitalize(p))
	}
	if len(words) == 0 {
		return local
	}
	return strings.Join(words, " ")
}

// capitalize upper-cases the first rune, not the first byte, so
// multi-byte initials ("josé") survive intact.
func capitalize(word string) string {
	r, size := utf8.DecodeRuneInString(word)
	if r == utf8.RuneError && size <= 1 {
		return word
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(word[size:])
}

// IDTokenClaims is the typed subset of identity-token claims the claim
// mapper consumes. Custom MES claims (employee id, role array) ride
// alongside the standard OIDC profile claims.
type IDTokenClaims struct {
	Subject           string
	ObjectID          string
	Email             string
	PreferredUsername string
	Name              string
	EmployeeID        string
	AccessLevel       string
}

// DecodeIDToken decodes the payload segment of a JWT without verifying
// its signature. Verification belongs to the federated adapter; this
// decode only extracts claims. Every malformed-input shape (not a JWT,
// bad base64, bad JSON) returns a malformed_claims error; callers
// degrade to defaults rather than failing the login on it.
func DecodeIDToken(raw string) (IDTokenClaims, error) {
	var claims IDTokenClaims

	mapClaims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(raw, mapClaims); err != nil {
		return claims, apperrors.Wrap(err, apperrors.ErrCodeMalformedClaims, "decode id token")
	}

	claims.Subject = stringClaim(mapClaims, "sub")
	claims.ObjectID = stringClaim(mapClaims, "oid")
	claims.Email = stringClaim(mapClaims, "email")
	claims.PreferredUsername = stringClaim(mapClaims, "preferred_username")
	claims.Name = stringClaim(mapClaims, "name")

	// Custom MES claims appear under either naming convention.
	claims.EmployeeID = stringClaim(mapClaims, "employeeId")
	if claims.EmployeeID == "" {
		claims.EmployeeID = stringClaim(mapClaims, "employee_id")
	}

	// Access level rides in a roles array when present, or a bare role claim.
	if roles, ok := mapClaims["roles"].([]any); ok && len(roles) > 0 {
		if s, ok := roles[0].(string); ok {
			claims.AccessLevel = s
		}
	}
	if claims.AccessLevel == "" {
		claims.AccessLevel = stringClaim(mapClaims, "role")
	}

	return claims, nil
}

func stringClaim(m jwt.MapClaims, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

// MapBackendUser builds the canonical user for a service-exchange login
// from the backend-confirmed email and access level. The email doubles
// as the stable id and login identifier for this path.
func MapBackendUser(email, accessLevel string) domainauth.User {
	return domainauth.User{
		ID:         email,
		Username:   email,
		Email:      email,
		Name:       NameFromEmail(email),
		Role:       RoleForAccessLevel(accessLevel),
		AuthMethod: domainauth.MethodCognito,
	}
}

// MapFederatedUser builds the canonical user for a federated login.
// username is the IdP account's login identifier (a UPN/email); claims
// may be zero-valued when decoding failed, in which case everything
// degrades: DefaultRole, name synthesized from the username.
func MapFederatedUser(username string, c IDTokenClaims) domainauth.User {
	id := c.ObjectID
	if id == "" {
		id = c.Subject
	}
	if id == "" {
		id = username
	}

	email := c.Email
	if email == "" {
		email = username
	}

	name := c.Name
	if name == "" {
		name = NameFromEmail(email)
	}

	role := DefaultRole
	if c.AccessLevel != "" {
		role = RoleForAccessLevel(c.AccessLevel)
	}

	return domainauth.User{
		ID:         id,
		Username:   username,
		Email:      email,
		Name:       name,
		Role:       role,
		AuthMethod: domainauth.MethodAzure,
	}
}
