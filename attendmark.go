package attendmark

import (
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/Mukul-Bhagat/AttendanceMark-sub003/adapters/filestore"
	"github.com/Mukul-Bhagat/AttendanceMark-sub003/adapters/rest"
	"github.com/Mukul-Bhagat/AttendanceMark-sub003/core"
	"github.com/Mukul-Bhagat/AttendanceMark-sub003/pkg/cache"
	"github.com/Mukul-Bhagat/AttendanceMark-sub003/services"
)

// interfaces
type (
	API             = core.API
	CredentialStore = core.CredentialStore
	Cache           = core.Cache

	Listener = core.Listener
)

// structs
type (
	Session      = core.Session
	UserProfile  = core.UserProfile
	Profile      = core.Profile
	Credentials  = core.Credentials
	LoginResult  = core.LoginResult
	Capabilities = core.Capabilities
	CacheConfig  = core.CacheConfig
	CacheStats   = core.CacheStats

	OrganizationMembership = core.OrganizationMembership

	SessionManager = services.SessionManager
)

type (
	Role  = core.Role
	State = core.State
	Event = core.Event
)

// Constructors & helpers (convenience re-exports)
var (
	NewInMemoryCache = cache.NewInMemoryCache
)

var (
	ErrInvalidCredentials = core.ErrInvalidCredentials
	ErrUnauthorized       = core.ErrUnauthorized
)

var (
	ErrNotAuthenticated     = core.ErrNotAuthenticated
	ErrNoPendingSelection   = core.ErrNoPendingSelection
	ErrSuperseded           = core.ErrSuperseded
	ErrAlreadyInitialized   = core.ErrAlreadyInitialized
	ErrOperationOutstanding = core.ErrOperationOutstanding
)

var (
	ErrNoStoredToken = core.ErrNoStoredToken
	ErrCacheNotFound = core.ErrCacheNotFound
)

var (
	ErrBaseURLRequired = core.ErrBaseURLRequired
	ErrAPIRequired     = core.ErrAPIRequired
	ErrStoreRequired   = core.ErrStoreRequired
)

type Config struct {
	// BaseURL locates the attendance backend, e.g. "https://api.example.com".
	BaseURL string

	// Optional config
	CredentialDir string
	HTTPClient    *http.Client
	Logger        *zap.SugaredLogger
	CacheConfig   *CacheConfig
	DisableCache  bool
}

// Client bundles the session manager with the adapters it was wired from.
type Client struct {
	Sessions *SessionManager
	API      API
	Store    CredentialStore
}

// New wires the default adapters: the REST client, the on-disk credential
// store, and the in-memory organization directory cache.
func New(config Config) (*Client, error) {
	if config.BaseURL == "" {
		return nil, ErrBaseURLRequired
	}
	baseURL, err := url.Parse(config.BaseURL)
	if err != nil {
		return nil, err
	}

	// Set Defaults

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	restOpts := []rest.Option{rest.WithLogger(logger)}
	if config.HTTPClient != nil {
		restOpts = append(restOpts, rest.WithHTTPClient(config.HTTPClient))
	}
	api, err := rest.Open(*baseURL, restOpts...)
	if err != nil {
		return nil, err
	}

	store, err := filestore.New(config.CredentialDir)
	if err != nil {
		return nil, err
	}

	var orgCache Cache
	if !config.DisableCache {
		cacheConfig := CacheConfig{}
		if config.CacheConfig != nil {
			cacheConfig = *config.CacheConfig
		}
		orgCache = NewInMemoryCache(cacheConfig)
	}

	return &Client{
		Sessions: services.NewSessionManager(api, store, orgCache, logger),
		API:      api,
		Store:    store,
	}, nil
}

// NewWith wires a client from caller-provided ports. Tests and embedders
// use it to swap the transport or the credential store.
func NewWith(api API, store CredentialStore, orgCache Cache, logger *zap.SugaredLogger) (*Client, error) {
	if api == nil {
		return nil, ErrAPIRequired
	}
	if store == nil {
		return nil, ErrStoreRequired
	}
	return &Client{
		Sessions: services.NewSessionManager(api, store, orgCache, logger),
		API:      api,
		Store:    store,
	}, nil
}
