package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"

	"github.com/Mukul-Bhagat/AttendanceMark-sub003/core"
)

func openTestClient(t *testing.T, handler http.Handler, opts ...Option) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	serverURL, err := url.Parse(server.URL)
	if err != nil {
		t.Fatalf("parsing test server URL: %v", err)
	}
	client, err := Open(*serverURL, opts...)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	return client, server
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func TestMeSendsBearerAndDecodesUser(t *testing.T) {
	var gotAuth string
	client, _ := openTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/auth/me" {
			t.Errorf("path = %q, want /api/auth/me", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"user": map[string]interface{}{
				"id":               "u1",
				"email":            "a@x.com",
				"role":             "Manager",
				"collectionPrefix": "acme",
			},
		})
	}))

	client.SetBearer("tok-1")
	user, err := client.Me(context.Background())
	if err != nil {
		t.Fatalf("Me failed: %v", err)
	}
	if gotAuth != "Bearer tok-1" {
		t.Errorf("Authorization = %q, want Bearer tok-1", gotAuth)
	}
	if user.Email != "a@x.com" || user.Role != core.RoleManager {
		t.Errorf("user = %+v", user)
	}

	client.ClearBearer()
	if _, err := client.Me(context.Background()); err != nil {
		t.Fatalf("Me failed: %v", err)
	}
	if gotAuth != "" {
		t.Errorf("Authorization after ClearBearer = %q, want empty", gotAuth)
	}
}

func TestMeMapsUnauthorized(t *testing.T) {
	client, _ := openTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "token expired"})
	}))

	_, err := client.Me(context.Background())
	if !errors.Is(err, core.ErrUnauthorized) {
		t.Fatalf("Me error = %v, want ErrUnauthorized", err)
	}
	if !IsStatus(err, http.StatusUnauthorized) {
		t.Errorf("IsStatus(401) = false for %v", err)
	}
}

func TestLoginMapsRejectionsToInvalidCredentials(t *testing.T) {
	tests := []struct {
		name   string
		status int
	}{
		{name: "bad request", status: http.StatusBadRequest},
		{name: "unauthorized", status: http.StatusUnauthorized},
		{name: "forbidden", status: http.StatusForbidden},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			client, _ := openTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, test.status, map[string]string{"error": "invalid email or password"})
			}))

			_, err := client.Login(context.Background(), core.Credentials{Email: "a@x.com", Password: "nope"})
			if !errors.Is(err, core.ErrInvalidCredentials) {
				t.Fatalf("Login error = %v, want ErrInvalidCredentials", err)
			}
		})
	}
}

func TestLoginDecodesBothBranches(t *testing.T) {
	tests := []struct {
		name          string
		body          interface{}
		wantSelection bool
	}{
		{
			name: "single organization",
			body: map[string]interface{}{
				"token": "tok-1",
				"user":  map[string]interface{}{"id": "u1", "email": "a@x.com", "role": "EndUser"},
			},
		},
		{
			name: "multiple organizations",
			body: map[string]interface{}{
				"tempToken": "temp-1",
				"organizations": []map[string]interface{}{
					{"organizationName": "Acme", "prefix": "acme", "role": "Manager", "userId": "u1"},
					{"organizationName": "Globex", "prefix": "globex", "role": "EndUser", "userId": "u2"},
				},
			},
			wantSelection: true,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			client, _ := openTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost || r.URL.Path != "/api/auth/login" {
					t.Errorf("got %s %s", r.Method, r.URL.Path)
				}
				var req loginRequest
				if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email != "a@x.com" {
					t.Errorf("request body = %+v, err %v", req, err)
				}
				writeJSON(w, http.StatusOK, test.body)
			}))

			result, err := client.Login(context.Background(), core.Credentials{Email: "a@x.com", Password: "secret1"})
			if err != nil {
				t.Fatalf("Login failed: %v", err)
			}
			if result.NeedsSelection() != test.wantSelection {
				t.Errorf("NeedsSelection = %t, want %t", result.NeedsSelection(), test.wantSelection)
			}
			if test.wantSelection && len(result.Organizations) != 2 {
				t.Errorf("organizations = %d, want 2", len(result.Organizations))
			}
		})
	}
}

func TestGETRetriesServerErrors(t *testing.T) {
	var calls int32
	client, _ := openTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			writeJSON(w, http.StatusBadGateway, map[string]string{"error": "upstream down"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"organizations": []map[string]interface{}{{"prefix": "acme"}},
		})
	}))

	orgs, err := client.MyOrganizations(context.Background())
	if err != nil {
		t.Fatalf("MyOrganizations failed: %v", err)
	}
	if len(orgs) != 1 {
		t.Errorf("orgs = %d, want 1", len(orgs))
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Errorf("calls = %d, want 3", got)
	}
}

func TestGETGivesUpAfterMaxAttempts(t *testing.T) {
	var calls int32
	client, _ := openTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "upstream down"})
	}), WithMaxAttempts(2))

	_, err := client.MyOrganizations(context.Background())
	if err == nil {
		t.Fatal("MyOrganizations expected error")
	}
	if !IsStatus(err, http.StatusBadGateway) {
		t.Errorf("error = %v, want 502 status error", err)
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Errorf("calls = %d, want 2", got)
	}
}

func TestGETDoesNotRetryUnauthorized(t *testing.T) {
	var calls int32
	client, _ := openTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "nope"})
	}))

	_, err := client.Me(context.Background())
	if !errors.Is(err, core.ErrUnauthorized) {
		t.Fatalf("Me error = %v, want ErrUnauthorized", err)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("calls = %d, want 1 (no retry on 401)", got)
	}
}

func TestSwitchOrganizationPassesUnauthorizedThrough(t *testing.T) {
	client, _ := openTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "revoked"})
	}))

	_, err := client.SwitchOrganization(context.Background(), "globex")
	if !errors.Is(err, core.ErrUnauthorized) {
		t.Fatalf("SwitchOrganization error = %v, want ErrUnauthorized", err)
	}
	// A switch rejection is not a credential rejection.
	if errors.Is(err, core.ErrInvalidCredentials) {
		t.Error("switch 401 must not map to ErrInvalidCredentials")
	}
}

func TestMarkAttendancePostsPayload(t *testing.T) {
	var got core.AttendanceMark
	client, _ := openTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/attendance/mark" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decoding mark: %v", err)
		}
		writeJSON(w, http.StatusOK, map[string]string{"msg": "recorded"})
	}))

	lat := 1.25
	err := client.MarkAttendance(context.Background(), core.AttendanceMark{
		SessionCode: "SES-1",
		Latitude:    &lat,
		DeviceID:    "device-0001",
	})
	if err != nil {
		t.Fatalf("MarkAttendance failed: %v", err)
	}
	if got.SessionCode != "SES-1" || got.DeviceID != "device-0001" || got.Latitude == nil {
		t.Errorf("payload = %+v", got)
	}
}
