package core

import "testing"

// Requirement: capability flags are pure projections of the role; exactly
// one flag is set for a known role and none for an unknown one.
func TestRoleCapabilities(t *testing.T) {
	tests := []struct {
		role Role
		want Capabilities
	}{
		{role: RoleSuperAdmin, want: Capabilities{SuperAdmin: true}},
		{role: RoleCompanyAdmin, want: Capabilities{CompanyAdmin: true}},
		{role: RoleManager, want: Capabilities{Manager: true}},
		{role: RoleSessionAdmin, want: Capabilities{SessionAdmin: true}},
		{role: RoleEndUser, want: Capabilities{EndUser: true}},
		{role: RolePlatformOwner, want: Capabilities{PlatformOwner: true}},
		{role: Role("Intern"), want: Capabilities{}},
		{role: Role(""), want: Capabilities{}},
	}

	for _, test := range tests {
		t.Run(string(test.role), func(t *testing.T) {
			if got := test.role.Capabilities(); got != test.want {
				t.Errorf("Capabilities() = %+v, want %+v", got, test.want)
			}
		})
	}
}

func TestRoleKnown(t *testing.T) {
	for _, role := range []Role{RoleSuperAdmin, RoleCompanyAdmin, RoleManager, RoleSessionAdmin, RoleEndUser, RolePlatformOwner} {
		if !role.Known() {
			t.Errorf("Known() = false for %s", role)
		}
	}
	if Role("Intern").Known() {
		t.Error("Known() = true for an out-of-enumeration role")
	}
}

func TestSessionAuthenticated(t *testing.T) {
	user := &UserProfile{ID: "u1", Email: "a@x.com", Role: RoleEndUser}

	tests := []struct {
		name    string
		session Session
		want    bool
	}{
		{name: "authenticated with user", session: Session{State: StateAuthenticated, Token: "t", User: user}, want: true},
		{name: "anonymous", session: Session{State: StateAnonymous}, want: false},
		{name: "pending selection", session: Session{State: StatePendingSelection}, want: false},
		{name: "verifying", session: Session{State: StateVerifying}, want: false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := test.session.Authenticated(); got != test.want {
				t.Errorf("Authenticated() = %t, want %t", got, test.want)
			}
		})
	}
}

func TestSessionCapabilitiesWhenAnonymous(t *testing.T) {
	var s Session
	if got := s.Capabilities(); got != (Capabilities{}) {
		t.Errorf("Capabilities() = %+v, want zero value", got)
	}
}

func TestStateString(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateUninitialized, "uninitialized"},
		{StateVerifying, "verifying"},
		{StateAnonymous, "anonymous"},
		{StatePendingSelection, "pending-selection"},
		{StateAuthenticated, "authenticated"},
		{StateSwitching, "switching"},
		{State(99), "unknown"},
	}
	for _, test := range tests {
		if got := test.state.String(); got != test.want {
			t.Errorf("State(%d).String() = %q, want %q", test.state, got, test.want)
		}
	}
}

func TestLoginResultNeedsSelection(t *testing.T) {
	resolved := &LoginResult{Token: "t", User: &UserProfile{ID: "u1"}}
	if resolved.NeedsSelection() {
		t.Error("NeedsSelection() = true for a resolved result")
	}

	pending := &LoginResult{TempToken: "temp", Organizations: []OrganizationMembership{{Prefix: "acme"}}}
	if !pending.NeedsSelection() {
		t.Error("NeedsSelection() = false for a pending result")
	}

	var nilResult *LoginResult
	if nilResult.NeedsSelection() {
		t.Error("NeedsSelection() = true for nil")
	}
}
