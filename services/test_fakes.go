package services

import (
	"context"
	"sync"

	"github.com/Mukul-Bhagat/AttendanceMark-sub003/core"
)

// FakeAPI is a test-only fake implementing core.API. Responses are scripted
// per endpoint and error fields allow behavior injection. The attached
// bearer is recorded so tests can assert the header side effect.
type FakeAPI struct {
	mu     sync.Mutex
	bearer string

	meUser  *core.UserProfile
	meErr   error
	meCalls int
	// meGate, when non-nil, blocks Me until the channel closes. Tests use
	// it to let a later operation overtake an in-flight verification.
	meGate chan struct{}

	loginResult *core.LoginResult
	loginErr    error

	selectResult *core.LoginResult
	selectErr    error
	selectCalls  int

	switchResult *core.LoginResult
	switchErr    error

	orgs     []core.OrganizationMembership
	orgsErr  error
	orgCalls int

	resetErr error

	marks   []core.AttendanceMark
	markErr error
}

var _ core.API = (*FakeAPI)(nil)

func NewFakeAPI() *FakeAPI {
	return &FakeAPI{}
}

func (f *FakeAPI) SetBearer(token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bearer = token
}

func (f *FakeAPI) ClearBearer() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bearer = ""
}

func (f *FakeAPI) Bearer() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bearer
}

func (f *FakeAPI) Me(ctx context.Context) (*core.UserProfile, error) {
	f.mu.Lock()
	gate := f.meGate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.meCalls++
	if f.meErr != nil {
		return nil, f.meErr
	}
	if f.meUser == nil {
		return nil, core.ErrUnauthorized
	}
	u := *f.meUser
	return &u, nil
}

func (f *FakeAPI) Login(ctx context.Context, creds core.Credentials) (*core.LoginResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return f.loginResult, nil
}

func (f *FakeAPI) SelectOrganization(ctx context.Context, tempToken, prefix string) (*core.LoginResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.selectCalls++
	if f.selectErr != nil {
		return nil, f.selectErr
	}
	return f.selectResult, nil
}

func (f *FakeAPI) SwitchOrganization(ctx context.Context, prefix string) (*core.LoginResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.switchErr != nil {
		return nil, f.switchErr
	}
	return f.switchResult, nil
}

func (f *FakeAPI) MyOrganizations(ctx context.Context) ([]core.OrganizationMembership, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orgCalls++
	if f.orgsErr != nil {
		return nil, f.orgsErr
	}
	return f.orgs, nil
}

func (f *FakeAPI) ForceResetPassword(ctx context.Context, oldPassword, newPassword string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.resetErr
}

func (f *FakeAPI) MarkAttendance(ctx context.Context, mark core.AttendanceMark) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.markErr != nil {
		return f.markErr
	}
	f.marks = append(f.marks, mark)
	return nil
}

// FakeCredentialStore is a test-only fake implementing core.CredentialStore.
type FakeCredentialStore struct {
	mu       sync.Mutex
	token    string
	deviceID string

	loadErr error
	saveErr error
}

var _ core.CredentialStore = (*FakeCredentialStore)(nil)

func NewFakeCredentialStore() *FakeCredentialStore {
	return &FakeCredentialStore{deviceID: "device-0001"}
}

func (f *FakeCredentialStore) LoadToken() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return "", f.loadErr
	}
	if f.token == "" {
		return "", core.ErrNoStoredToken
	}
	return f.token, nil
}

func (f *FakeCredentialStore) SaveToken(token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.token = token
	return nil
}

func (f *FakeCredentialStore) ClearToken() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = ""
	return nil
}

func (f *FakeCredentialStore) DeviceID() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.deviceID, nil
}

func (f *FakeCredentialStore) StoredToken() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token
}

// FakeCache is a test-only fake implementing core.Cache.
type FakeCache struct {
	mu      sync.Mutex
	entries map[string][]core.OrganizationMembership
	clears  int
}

var _ core.Cache = (*FakeCache)(nil)

func NewFakeCache() *FakeCache {
	return &FakeCache{entries: make(map[string][]core.OrganizationMembership)}
}

func (f *FakeCache) Get(key string) ([]core.OrganizationMembership, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	orgs, ok := f.entries[key]
	if !ok {
		return nil, core.ErrCacheNotFound
	}
	return orgs, nil
}

func (f *FakeCache) Set(key string, orgs []core.OrganizationMembership) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[key] = orgs
	return nil
}

func (f *FakeCache) Delete(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.entries, key)
	return nil
}

func (f *FakeCache) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = make(map[string][]core.OrganizationMembership)
	f.clears++
	return nil
}
