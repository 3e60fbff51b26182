package core

import (
	"context"
	"time"
)

// Ports define interfaces for external collaborators

// ============================================
// API PORT (outbound REST calls)
// ============================================

// API is the outbound surface of the backend consumed by the session
// manager. Implementations own the wire format; the manager only sees
// domain types and sentinel errors (ErrUnauthorized, ErrInvalidCredentials).
type API interface {
	// Me resolves the identity behind the currently attached bearer token.
	Me(ctx context.Context) (*UserProfile, error)

	// Login submits credentials. The result is either a resolved
	// token/user pair or a temp token plus the memberships to pick from.
	Login(ctx context.Context, creds Credentials) (*LoginResult, error)

	// SelectOrganization exchanges a temp token and a chosen prefix for a
	// full token/user pair.
	SelectOrganization(ctx context.Context, tempToken, prefix string) (*LoginResult, error)

	// SwitchOrganization re-scopes the attached token to another
	// organization the principal belongs to.
	SwitchOrganization(ctx context.Context, prefix string) (*LoginResult, error)

	// MyOrganizations lists the memberships of the authenticated principal.
	MyOrganizations(ctx context.Context) ([]OrganizationMembership, error)

	// ForceResetPassword replaces a provisional password.
	ForceResetPassword(ctx context.Context, oldPassword, newPassword string) error

	// MarkAttendance records presence at a session.
	MarkAttendance(ctx context.Context, mark AttendanceMark) error

	// SetBearer attaches a token to all subsequent requests;
	// ClearBearer detaches it. Both are safe for concurrent use.
	SetBearer(token string)
	ClearBearer()
}

// ============================================
// CREDENTIAL STORE PORT (persisted state)
// ============================================

// CredentialStore persists the bearer token and the device identifier
// across process restarts.
type CredentialStore interface {
	// LoadToken returns the persisted token, or ErrNoStoredToken.
	LoadToken() (string, error)
	SaveToken(token string) error
	// ClearToken removes the token but keeps the device identifier.
	ClearToken() error

	// DeviceID returns the durable device identifier, creating and
	// persisting one on first call.
	DeviceID() (string, error)
}

// ============================================
// CACHE PORT
// ============================================

// Cache holds short-lived organization directory entries keyed by user ID.
type Cache interface {
	Get(key string) ([]OrganizationMembership, error)
	Set(key string, orgs []OrganizationMembership) error
	Delete(key string) error
	Clear() error
}

// CacheWithStats extends Cache with statistics tracking
type CacheWithStats interface {
	Cache
	Stats() CacheStats
}

// CacheConfig configures cache behavior
type CacheConfig struct {
	TTL     time.Duration
	MaxSize int
}

// CacheStats tracks cache performance metrics
type CacheStats struct {
	Hits      int64         `json:"hits"`
	Misses    int64         `json:"misses"`
	Sets      int64         `json:"sets"`
	Deletes   int64         `json:"deletes"`
	Evictions int64         `json:"evictions"`
	Size      int           `json:"size"`
	TTL       time.Duration `json:"ttl"`
}

// ============================================
// INVALIDATION PORT (inbound notifications)
// ============================================

// Event marks a transition the rest of the application must react to.
type Event int

const (
	// EventOrganizationSwitched: every piece of organization-scoped state
	// fetched under the previous token is now invalid and must be
	// re-fetched. This replaces the blunt full-reload a browser client
	// would perform.
	EventOrganizationSwitched Event = iota

	// EventSessionCleared: the session ended (logout or revoked token);
	// consumers should drop all private state and show the login surface.
	EventSessionCleared
)

func (e Event) String() string {
	switch e {
	case EventOrganizationSwitched:
		return "organization-switched"
	case EventSessionCleared:
		return "session-cleared"
	}
	return "unknown"
}

// Listener receives invalidation events. Callbacks run synchronously on the
// goroutine that completed the transition and must not call back into the
// session manager's credential-mutating operations.
type Listener func(Event)
