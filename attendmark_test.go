package attendmark

import (
	"errors"
	"testing"

	"github.com/Mukul-Bhagat/AttendanceMark-sub003/services"
)

func TestNewRequiresBaseURL(t *testing.T) {
	_, err := New(Config{})
	if !errors.Is(err, ErrBaseURLRequired) {
		t.Fatalf("New() error = %v, want ErrBaseURLRequired", err)
	}
}

func TestNewWiresDefaultAdapters(t *testing.T) {
	client, err := New(Config{
		BaseURL:       "https://api.example.com",
		CredentialDir: t.TempDir(),
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if client.Sessions == nil || client.API == nil || client.Store == nil {
		t.Fatalf("client not fully wired: %+v", client)
	}
}

func TestNewWithValidatesPorts(t *testing.T) {
	api := services.NewFakeAPI()
	store := services.NewFakeCredentialStore()

	if _, err := NewWith(nil, store, nil, nil); !errors.Is(err, ErrAPIRequired) {
		t.Errorf("NewWith(nil api) error = %v, want ErrAPIRequired", err)
	}
	if _, err := NewWith(api, nil, nil, nil); !errors.Is(err, ErrStoreRequired) {
		t.Errorf("NewWith(nil store) error = %v, want ErrStoreRequired", err)
	}
	if _, err := NewWith(api, store, nil, nil); err != nil {
		t.Errorf("NewWith() error = %v", err)
	}
}
