package auth

// Package auth contains domain-level types for authentication and sessions.
// It is pure and free of framework/adapter concerns.

// Role represents an application's authorization role.
// Roles form an ordered scale from admin (most privileged) to viewer.
// Keep string form for easy persistence and JSON serialization.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleSupervisor Role = "supervisor"
	RoleOperator   Role = "operator"
	RoleViewer     Role = "viewer"
)

// roleRank orders roles for privilege comparisons. Lower rank = more privileged.
var roleRank = map[Role]int{
	RoleAdmin:      0,
	RoleSupervisor: 1,
	RoleOperator:   2,
	RoleViewer:     3,
}

// Valid reports whether r is one of the four enumerated roles.
func (r Role) Valid() bool {
	_, ok := roleRank[r]
	return ok
}

// AtLeast reports whether r carries at least the privilege of other.
// Unknown roles never satisfy any requirement.
func (r Role) AtLeast(other Role) bool {
	rr, ok := roleRank[r]
	if !ok {
		return false
	}
	or, ok := roleRank[other]
	if !ok {
		return false
	}
	return rr <= or
}

// Method tags which credential source adapter produced a session.
// It is used only to pick the correct logout routine, never for
// authorization decisions.
type Method string

const (
	MethodAzure   Method = "azure"
	MethodCognito Method = "cognito"
	MethodBasic   Method = "basic"
)

// Valid reports whether m is a known auth method.
func (m Method) Valid() bool {
	switch m {
	case MethodAzure, MethodCognito, MethodBasic:
		return true
	}
	return false
}

// User is the canonical identity record used throughout the application
// after login. It is constructed fresh on every successful login and is
// immutable thereafter.
type User struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	Role       Role   `json:"role"`
	AuthMethod Method `json:"authMethod"`
}

// TokenBundle is the set of opaque bearer strings for one session.
// IdentityToken proves who the user is and is the primary "session
// active" signal. AccessToken authorizes calls to the protected
// business backend. RefreshToken is present only for the
// service-exchange path.
type TokenBundle struct {
	IdentityToken string
	AccessToken   string
	RefreshToken  string
}

// Empty reports whether the bundle carries no identity token.
func (t TokenBundle) Empty() bool { return t.IdentityToken == "" }

// Credentials is a user-supplied username/password pair. It is never
// stored and must never appear in logs.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// SessionRecord is everything the token/session store persists for one
// login: the canonical user, the token bundle, and the MES side keys.
type SessionRecord struct {
	User        User
	Tokens      TokenBundle
	TechID      string
	AccessLevel string
}

// Result is the outcome shape every credential adapter and the session
// orchestrator return. Expected failures are reported here rather than
// as errors; Message is safe to show to the end user.
type Result struct {
	Success bool
	User    *User
	Tokens  TokenBundle
	Message string

	// TechID and AccessLevel are MES side values persisted alongside
	// the user record when present.
	TechID      string
	AccessLevel string

	// RedirectURL is set when a federated login requires a full
	// redirect to the identity provider instead of completing inline.
	RedirectURL string
}

// Record assembles the session record to persist for a successful result.
func (r Result) Record() SessionRecord {
	rec := SessionRecord{
		Tokens:      r.Tokens,
		TechID:      r.TechID,
		AccessLevel: r.AccessLevel,
	}
	if r.User != nil {
		rec.User = *r.User
	}
	return rec
}
