package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Mukul-Bhagat/AttendanceMark-sub003/core"
	"github.com/Mukul-Bhagat/AttendanceMark-sub003/pkg/token"
)

// SessionManager is the single source of truth for "who is calling the API
// right now". It owns the bearer token, the resolved profile, and every
// transition that changes either. All other packages read it through
// Session() snapshots and mutate it only through the operations below.
//
// The manager guarantees two invariants:
//   - a resolved user never exists without a token, and
//   - persisting the token and attaching it to the API client happen inside
//     the same critical section as the state update, so memory, storage, and
//     the wire never disagree.
type SessionManager struct {
	api    core.API
	store  core.CredentialStore
	cache  core.Cache // optional, nil disables the org directory cache
	logger *zap.SugaredLogger

	mu        sync.Mutex
	state     core.State
	token     string
	user      *core.UserProfile
	pendingTT string // temp token retained while an organization is being chosen

	// gen increments on every credential mutation. In-flight operations
	// capture it before releasing the lock and re-check it before applying
	// their result, so a slow completion can never resurrect a session
	// that was cleared or replaced underneath it.
	gen uint64

	listeners []core.Listener
}

func NewSessionManager(api core.API, store core.CredentialStore, cache core.Cache, logger *zap.SugaredLogger) *SessionManager {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &SessionManager{
		api:    api,
		store:  store,
		cache:  cache,
		logger: logger.Named("session"),
		state:  core.StateUninitialized,
	}
}

// Session returns a read-only snapshot of the current session.
func (sm *SessionManager) Session() core.Session {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	s := core.Session{
		State:     sm.state,
		Token:     sm.token,
		IsLoading: sm.state == core.StateVerifying && sm.user == nil,
	}
	if sm.user != nil {
		u := *sm.user
		s.User = &u
	}
	return s
}

// Subscribe registers a listener for invalidation events. Listeners run
// synchronously after a transition completes and must not call credential-
// mutating operations.
func (sm *SessionManager) Subscribe(l core.Listener) {
	sm.mu.Lock()
	sm.listeners = append(sm.listeners, l)
	sm.mu.Unlock()
}

// Initialize resolves the persisted token, if any, into a session. It runs
// once at process start; a missing or rejected token ends in Anonymous, a
// verified one in Authenticated. Transient network failures revert to
// Uninitialized and are returned so the caller can retry; the persisted
// token is kept for that retry.
func (sm *SessionManager) Initialize(ctx context.Context) error {
	sm.mu.Lock()
	if sm.state != core.StateUninitialized {
		sm.mu.Unlock()
		return core.ErrAlreadyInitialized
	}

	stored, err := sm.store.LoadToken()
	if err != nil {
		if !errors.Is(err, core.ErrNoStoredToken) {
			sm.logger.Warnw("Could not read persisted token", "error", err)
		}
		sm.state = core.StateAnonymous
		sm.mu.Unlock()
		return nil
	}

	// A token whose exp claim is already in the past cannot verify; skip
	// the doomed network call and purge directly.
	if token.ExpiredAt(stored, time.Now()) {
		sm.logger.Infow("Persisted token expired, discarding")
		sm.purgeLocked()
		sm.mu.Unlock()
		return nil
	}

	sm.state = core.StateVerifying
	sm.token = stored
	sm.api.SetBearer(stored)
	gen := sm.gen
	sm.mu.Unlock()

	user, err := sm.api.Me(ctx)

	sm.mu.Lock()
	if sm.gen != gen || sm.state != core.StateVerifying {
		// Superseded by a later operation; discard silently.
		sm.mu.Unlock()
		return nil
	}
	if err != nil {
		if errors.Is(err, core.ErrUnauthorized) {
			sm.logger.Infow("Persisted token rejected, discarding")
			sm.purgeLocked()
			sm.mu.Unlock()
			return nil
		}
		// Transient failure: keep the persisted token, go back to the
		// start state so Initialize can be retried.
		sm.state = core.StateUninitialized
		sm.token = ""
		sm.api.ClearBearer()
		sm.mu.Unlock()
		return err
	}

	sm.user = user
	sm.state = core.StateAuthenticated
	sm.mu.Unlock()
	return nil
}

// Login submits credentials. A single-organization principal ends up
// Authenticated. A multi-organization principal receives the membership
// list back and the manager moves to PendingSelection, retaining only the
// temp token; no session exists until SelectOrganization succeeds.
func (sm *SessionManager) Login(ctx context.Context, creds core.Credentials) (*core.LoginResult, error) {
	sm.mu.Lock()
	if sm.state == core.StateVerifying || sm.state == core.StateSwitching {
		sm.mu.Unlock()
		return nil, core.ErrOperationOutstanding
	}
	prev := sm.state
	sm.state = core.StateVerifying
	gen := sm.gen
	sm.mu.Unlock()

	result, err := sm.api.Login(ctx, creds)

	sm.mu.Lock()
	if sm.gen != gen || sm.state != core.StateVerifying {
		sm.mu.Unlock()
		return nil, core.ErrSuperseded
	}
	if err != nil {
		sm.state = prev
		sm.mu.Unlock()
		return nil, err
	}

	if result.NeedsSelection() {
		sm.pendingTT = result.TempToken
		sm.state = core.StatePendingSelection
		sm.mu.Unlock()
		return result, nil
	}

	sm.applyAuthenticatedLocked(result.Token, result.User)
	sm.mu.Unlock()
	return result, nil
}

// SelectOrganization exchanges the retained temp token and the chosen prefix
// for a full session. Calling it without a pending selection (including a
// second time after success) fails with ErrNoPendingSelection and never
// touches an established session.
func (sm *SessionManager) SelectOrganization(ctx context.Context, prefix string) error {
	sm.mu.Lock()
	if sm.state != core.StatePendingSelection || sm.pendingTT == "" {
		sm.mu.Unlock()
		return core.ErrNoPendingSelection
	}
	tempToken := sm.pendingTT
	gen := sm.gen
	sm.mu.Unlock()

	result, err := sm.api.SelectOrganization(ctx, tempToken, prefix)

	sm.mu.Lock()
	if sm.gen != gen || sm.state != core.StatePendingSelection {
		sm.mu.Unlock()
		return core.ErrSuperseded
	}
	if err != nil {
		// Still pending; the caller may pick another membership or retry.
		sm.mu.Unlock()
		return err
	}

	sm.applyAuthenticatedLocked(result.Token, result.User)
	sm.mu.Unlock()
	return nil
}

// SwitchOrganization re-scopes an authenticated session to another
// organization. Token and user are replaced together or not at all; on
// success every subscriber is told that organization-scoped state is now
// invalid. On failure the existing session is left fully intact.
func (sm *SessionManager) SwitchOrganization(ctx context.Context, prefix string) error {
	sm.mu.Lock()
	if sm.state != core.StateAuthenticated {
		sm.mu.Unlock()
		return core.ErrNotAuthenticated
	}
	sm.state = core.StateSwitching
	gen := sm.gen
	sm.mu.Unlock()

	result, err := sm.api.SwitchOrganization(ctx, prefix)

	sm.mu.Lock()
	if sm.gen != gen || sm.state != core.StateSwitching {
		sm.mu.Unlock()
		return core.ErrSuperseded
	}
	if err != nil {
		if errors.Is(err, core.ErrUnauthorized) {
			sm.purgeLocked()
			sm.mu.Unlock()
			sm.notify(core.EventSessionCleared)
			return err
		}
		sm.state = core.StateAuthenticated
		sm.mu.Unlock()
		return err
	}

	sm.applyAuthenticatedLocked(result.Token, result.User)
	sm.mu.Unlock()

	sm.notify(core.EventOrganizationSwitched)
	return nil
}

// Refetch refreshes the resolved profile with the current token, e.g. after
// a profile edit or a forced password reset. An unauthorized answer means
// the token is dead: the session is purged exactly as an explicit Logout
// would, and the rejection is returned.
func (sm *SessionManager) Refetch(ctx context.Context) error {
	sm.mu.Lock()
	if sm.state != core.StateAuthenticated {
		sm.mu.Unlock()
		return core.ErrNotAuthenticated
	}
	gen := sm.gen
	sm.mu.Unlock()

	user, err := sm.api.Me(ctx)

	sm.mu.Lock()
	if sm.gen != gen || sm.state != core.StateAuthenticated {
		sm.mu.Unlock()
		return core.ErrSuperseded
	}
	if err != nil {
		if errors.Is(err, core.ErrUnauthorized) {
			sm.purgeLocked()
			sm.mu.Unlock()
			sm.notify(core.EventSessionCleared)
			return err
		}
		sm.mu.Unlock()
		return err
	}

	// Only the profile is replaced; token and state are untouched.
	sm.user = user
	sm.mu.Unlock()
	return nil
}

// Logout unconditionally clears the session: token and user gone, persisted
// token purged, bearer detached. Safe to call from any state.
func (sm *SessionManager) Logout() {
	sm.mu.Lock()
	wasAnonymous := sm.state == core.StateAnonymous
	sm.purgeLocked()
	sm.mu.Unlock()

	if !wasAnonymous {
		sm.notify(core.EventSessionCleared)
	}
}

// ForceResetPassword replaces a provisional password and refetches the
// profile so MustResetPassword clears.
func (sm *SessionManager) ForceResetPassword(ctx context.Context, oldPassword, newPassword string) error {
	sm.mu.Lock()
	if sm.state != core.StateAuthenticated {
		sm.mu.Unlock()
		return core.ErrNotAuthenticated
	}
	sm.mu.Unlock()

	if err := sm.api.ForceResetPassword(ctx, oldPassword, newPassword); err != nil {
		return sm.checkUnauthorized(err)
	}
	return sm.Refetch(ctx)
}

// Organizations lists the authenticated principal's memberships, serving
// repeat calls from the directory cache until it expires or the session
// changes.
func (sm *SessionManager) Organizations(ctx context.Context) ([]core.OrganizationMembership, error) {
	sm.mu.Lock()
	if sm.state != core.StateAuthenticated {
		sm.mu.Unlock()
		return nil, core.ErrNotAuthenticated
	}
	userID := sm.user.ID
	sm.mu.Unlock()

	if sm.cache != nil {
		if orgs, err := sm.cache.Get(userID); err == nil {
			return orgs, nil
		}
	}

	orgs, err := sm.api.MyOrganizations(ctx)
	if err != nil {
		return nil, sm.checkUnauthorized(err)
	}

	if sm.cache != nil {
		_ = sm.cache.Set(userID, orgs)
	}
	return orgs, nil
}

// MarkAttendance records presence at a session, stamping the request with
// this device's durable identifier.
func (sm *SessionManager) MarkAttendance(ctx context.Context, sessionCode string, latitude, longitude *float64) error {
	sm.mu.Lock()
	if sm.state != core.StateAuthenticated {
		sm.mu.Unlock()
		return core.ErrNotAuthenticated
	}
	sm.mu.Unlock()

	deviceID, err := sm.store.DeviceID()
	if err != nil {
		return err
	}

	err = sm.api.MarkAttendance(ctx, core.AttendanceMark{
		SessionCode: sessionCode,
		Latitude:    latitude,
		Longitude:   longitude,
		DeviceID:    deviceID,
	})
	if err != nil {
		return sm.checkUnauthorized(err)
	}
	return nil
}

// applyAuthenticatedLocked installs a freshly issued token/user pair. The
// caller must hold sm.mu. Persisting and attaching the token happen here,
// in the same critical section as the state update.
func (sm *SessionManager) applyAuthenticatedLocked(tok string, user *core.UserProfile) {
	sm.token = tok
	sm.user = user
	sm.pendingTT = ""
	sm.state = core.StateAuthenticated
	sm.gen++

	sm.api.SetBearer(tok)
	if err := sm.store.SaveToken(tok); err != nil {
		// The in-memory session stays valid; it just won't survive a
		// restart.
		sm.logger.Warnw("Could not persist token", "error", err)
	}
	if sm.cache != nil {
		_ = sm.cache.Clear()
	}
}

// purgeLocked drops every trace of the session. The caller must hold sm.mu.
func (sm *SessionManager) purgeLocked() {
	sm.token = ""
	sm.user = nil
	sm.pendingTT = ""
	sm.state = core.StateAnonymous
	sm.gen++

	sm.api.ClearBearer()
	if err := sm.store.ClearToken(); err != nil {
		sm.logger.Warnw("Could not clear persisted token", "error", err)
	}
	if sm.cache != nil {
		_ = sm.cache.Clear()
	}
}

// checkUnauthorized downgrades the session when any authenticated call
// reports a dead token. A stale credential is never retried silently.
func (sm *SessionManager) checkUnauthorized(err error) error {
	if !errors.Is(err, core.ErrUnauthorized) {
		return err
	}

	sm.mu.Lock()
	cleared := false
	if sm.state == core.StateAuthenticated {
		sm.purgeLocked()
		cleared = true
	}
	sm.mu.Unlock()

	if cleared {
		sm.notify(core.EventSessionCleared)
	}
	return err
}

func (sm *SessionManager) notify(event core.Event) {
	sm.mu.Lock()
	listeners := make([]core.Listener, len(sm.listeners))
	copy(listeners, sm.listeners)
	sm.mu.Unlock()

	for _, l := range listeners {
		l(event)
	}
}
