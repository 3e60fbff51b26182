package core

import "errors"

// Credential errors
var (
	ErrInvalidCredentials = errors.New("invalid email or password") // 401 from login/select
	ErrUnauthorized       = errors.New("token expired or revoked")  // 401 on any authenticated call
)

// Session lifecycle errors
var (
	ErrNotAuthenticated     = errors.New("no authenticated session")
	ErrNoPendingSelection   = errors.New("no organization selection pending")
	ErrSuperseded           = errors.New("session changed while the operation was in flight")
	ErrAlreadyInitialized   = errors.New("session already initialized")
	ErrOperationOutstanding = errors.New("another credential operation is outstanding")
)

// Cache errors
var (
	ErrCacheNotFound = errors.New("entry not found in cache")
)

// Credential store errors
var (
	ErrNoStoredToken = errors.New("no persisted token")
)

// Config errors (wiring-time)
var (
	ErrBaseURLRequired = errors.New("base URL is required")
	ErrAPIRequired     = errors.New("api client is required")
	ErrStoreRequired   = errors.New("credential store is required")
)
