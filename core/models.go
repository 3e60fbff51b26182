package core

// Role is the closed set of roles the backend assigns to a principal.
//
// A role always applies within one organization scope; the same human can
// hold different roles in different organizations.
type Role string

const (
	RoleSuperAdmin    Role = "SuperAdmin"
	RoleCompanyAdmin  Role = "CompanyAdmin"
	RoleManager       Role = "Manager"
	RoleSessionAdmin  Role = "SessionAdmin"
	RoleEndUser       Role = "EndUser"
	RolePlatformOwner Role = "PlatformOwner"
)

// Derived capability flags are pure projections of Role. They are computed
// on read and never stored, so they cannot drift from the role value.

func (r Role) IsSuperAdmin() bool    { return r == RoleSuperAdmin }
func (r Role) IsCompanyAdmin() bool  { return r == RoleCompanyAdmin }
func (r Role) IsManager() bool       { return r == RoleManager }
func (r Role) IsSessionAdmin() bool  { return r == RoleSessionAdmin }
func (r Role) IsEndUser() bool       { return r == RoleEndUser }
func (r Role) IsPlatformOwner() bool { return r == RolePlatformOwner }

// Known reports whether the role is one of the closed enumeration.
// Unknown roles are preserved verbatim but grant no capabilities.
func (r Role) Known() bool {
	switch r {
	case RoleSuperAdmin, RoleCompanyAdmin, RoleManager, RoleSessionAdmin, RoleEndUser, RolePlatformOwner:
		return true
	}
	return false
}

// Capabilities is the boolean projection handed to rendering code.
type Capabilities struct {
	SuperAdmin    bool `json:"superAdmin"`
	CompanyAdmin  bool `json:"companyAdmin"`
	Manager       bool `json:"manager"`
	SessionAdmin  bool `json:"sessionAdmin"`
	EndUser       bool `json:"endUser"`
	PlatformOwner bool `json:"platformOwner"`
}

// Capabilities computes the flag projection for a role.
func (r Role) Capabilities() Capabilities {
	return Capabilities{
		SuperAdmin:    r.IsSuperAdmin(),
		CompanyAdmin:  r.IsCompanyAdmin(),
		Manager:       r.IsManager(),
		SessionAdmin:  r.IsSessionAdmin(),
		EndUser:       r.IsEndUser(),
		PlatformOwner: r.IsPlatformOwner(),
	}
}

// Profile carries the human-facing identity fields.
type Profile struct {
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	Phone     *string `json:"phone,omitempty"`
}

// UserProfile is the resolved identity behind the current bearer token.
//
// It is replaced wholesale on every successful login, verification, refetch,
// or organization switch; nothing mutates it field by field.
type UserProfile struct {
	ID                string  `json:"id"`
	Email             string  `json:"email"`
	Role              Role    `json:"role"`
	Profile           Profile `json:"profile"`
	ProfilePicture    *string `json:"profilePicture,omitempty"`
	MustResetPassword bool    `json:"mustResetPassword"`

	// CollectionPrefix identifies the organization the token is scoped to.
	CollectionPrefix string `json:"collectionPrefix"`
}

// OrganizationMembership is one organization a principal belongs to.
//
// Membership lists exist only while an organization is being chosen; they are
// never part of steady-state session data.
type OrganizationMembership struct {
	OrganizationName string `json:"organizationName"`
	Prefix           string `json:"prefix"`
	Role             Role   `json:"role"`
	UserID           string `json:"userId"`
}

// State enumerates the session lifecycle.
type State int

const (
	StateUninitialized State = iota
	StateVerifying
	StateAnonymous
	// StatePendingSelection: the password was accepted but the principal
	// belongs to several organizations and none has been chosen yet.
	// No bearer token exists in this state.
	StatePendingSelection
	StateAuthenticated
	StateSwitching
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateVerifying:
		return "verifying"
	case StateAnonymous:
		return "anonymous"
	case StatePendingSelection:
		return "pending-selection"
	case StateAuthenticated:
		return "authenticated"
	case StateSwitching:
		return "switching"
	}
	return "unknown"
}

// Session is the read-only snapshot handed to consumers. Invariant: User is
// non-nil only when Token is non-empty.
type Session struct {
	State State        `json:"state"`
	Token string       `json:"-"`
	User  *UserProfile `json:"user,omitempty"`

	// IsLoading is true exactly while a verification or credential
	// exchange is outstanding and no resolved identity exists yet.
	IsLoading bool `json:"isLoading"`
}

// Authenticated reports whether the snapshot carries a resolved identity.
func (s Session) Authenticated() bool {
	return s.State == StateAuthenticated && s.User != nil
}

// Capabilities returns the role projection for the snapshot's user, or the
// zero value when anonymous.
func (s Session) Capabilities() Capabilities {
	if s.User == nil {
		return Capabilities{}
	}
	return s.User.Role.Capabilities()
}

// Credentials are what a principal submits to begin authentication.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResult is the outcome of a credential check.
//
// Exactly one of the two branches is populated: a resolved token/user pair,
// or a temporary token plus the memberships to choose from.
type LoginResult struct {
	Token string       `json:"token,omitempty"`
	User  *UserProfile `json:"user,omitempty"`

	TempToken     string                   `json:"tempToken,omitempty"`
	Organizations []OrganizationMembership `json:"organizations,omitempty"`
}

// NeedsSelection reports whether the result requires an organization choice
// before a session exists.
func (r *LoginResult) NeedsSelection() bool {
	return r != nil && r.TempToken != ""
}

// AttendanceMark is the payload for recording presence at a session.
// DeviceID is the durable per-device identifier used for anti-fraud checks.
type AttendanceMark struct {
	SessionCode string   `json:"sessionCode"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
	DeviceID    string   `json:"deviceId"`
}
