package rest

import (
	"github.com/Mukul-Bhagat/AttendanceMark-sub003/core"
)

// Wire shapes for the auth endpoints. Successful login-family responses
// decode straight into core.LoginResult, whose field tags match the wire.

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type selectOrganizationRequest struct {
	TempToken string `json:"tempToken"`
	Prefix    string `json:"prefix"`
}

type switchOrganizationRequest struct {
	Prefix string `json:"prefix"`
}

type forceResetPasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

type meResponse struct {
	User *core.UserProfile `json:"user"`
}

type organizationsResponse struct {
	Organizations []core.OrganizationMembership `json:"organizations"`
}

type messageResponse struct {
	Msg string `json:"msg"`
}
