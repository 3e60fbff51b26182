// Package filestore persists the bearer token and the device identifier in a
// single JSON file, the way a browser client would use its local storage.
//
// The device identifier is stored in the clear; it must survive logout since
// attendance anti-fraud checks key on it. The token is sealed at rest with a
// key derived from the device identifier, which keeps a copied credentials
// file useless on another machine without also cloning the identifier.
package filestore

import (
	"encoding/base64"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/Mukul-Bhagat/AttendanceMark-sub003/core"
	"github.com/Mukul-Bhagat/AttendanceMark-sub003/pkg/sealbox"
)

const credentialsFile = "credentials.json"

type Store struct {
	dir string
	mu  sync.Mutex
}

var _ core.CredentialStore = (*Store)(nil)

type credentials struct {
	DeviceID string `json:"deviceId"`
	// Token is the base64 of the sealed bearer token, empty when logged out.
	Token string `json:"token,omitempty"`
}

// New opens a store rooted at dir, creating it if needed. An empty dir
// defaults to ~/.attendmark.
func New(dir string) (*Store, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, errors.Wrap(err, "resolving home directory")
		}
		dir = filepath.Join(home, ".attendmark")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, errors.Wrapf(err, "creating credential directory %s", dir)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) LoadToken() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	creds, err := s.read()
	if err != nil {
		return "", err
	}
	if creds.Token == "" {
		return "", core.ErrNoStoredToken
	}

	sealed, err := base64.StdEncoding.DecodeString(creds.Token)
	if err != nil {
		return "", errors.Wrap(err, "decoding stored token")
	}
	plaintext, err := sealbox.Open(sealed, creds.DeviceID)
	if err != nil {
		return "", errors.Wrap(err, "unsealing stored token")
	}
	return string(plaintext), nil
}

func (s *Store) SaveToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	creds, err := s.readOrInit()
	if err != nil {
		return err
	}

	sealed, err := sealbox.Seal([]byte(token), creds.DeviceID)
	if err != nil {
		return errors.Wrap(err, "sealing token")
	}
	creds.Token = base64.StdEncoding.EncodeToString(sealed)
	return s.write(creds)
}

func (s *Store) ClearToken() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	creds, err := s.read()
	if err != nil {
		if errors.Is(err, core.ErrNoStoredToken) {
			return nil
		}
		return err
	}
	if creds.Token == "" {
		return nil
	}
	creds.Token = ""
	return s.write(creds)
}

func (s *Store) DeviceID() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	creds, err := s.readOrInit()
	if err != nil {
		return "", err
	}
	return creds.DeviceID, nil
}

// read loads the credentials file. A missing file maps to ErrNoStoredToken.
func (s *Store) read() (*credentials, error) {
	raw, err := os.ReadFile(s.path())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, core.ErrNoStoredToken
		}
		return nil, errors.Wrap(err, "reading credentials file")
	}

	var creds credentials
	if err := json.Unmarshal(raw, &creds); err != nil {
		return nil, errors.Wrap(err, "parsing credentials file")
	}
	if creds.DeviceID == "" {
		return nil, errors.New("credentials file missing device id")
	}
	return &creds, nil
}

// readOrInit loads the credentials file, minting a fresh device identifier
// when no file exists yet.
func (s *Store) readOrInit() (*credentials, error) {
	creds, err := s.read()
	if err == nil {
		return creds, nil
	}
	if !errors.Is(err, core.ErrNoStoredToken) {
		return nil, err
	}

	creds = &credentials{DeviceID: uuid.NewString()}
	if err := s.write(creds); err != nil {
		return nil, err
	}
	return creds, nil
}

// write replaces the credentials file atomically.
func (s *Store) write(creds *credentials) error {
	raw, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding credentials")
	}

	tmp := s.path() + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return errors.Wrap(err, "writing credentials file")
	}
	if err := os.Rename(tmp, s.path()); err != nil {
		return errors.Wrap(err, "replacing credentials file")
	}
	return nil
}

func (s *Store) path() string {
	return filepath.Join(s.dir, credentialsFile)
}
