// Package auth holds the request/response bodies of /api/account.
package auth

import "time"

// RegisterRequest is the body of POST /api/account/register.
// Roles distinguishes absent/null (default role) from [] (no roles).
type RegisterRequest struct {
	Email       string   `json:"email"`
	FullName    string   `json:"fullName"`
	Password    string   `json:"password"`
	PhoneNumber string   `json:"phoneNumber,omitempty"`
	Roles       []string `json:"roles"`
}

// RegisterResult is returned by the register service.
type RegisterResult struct {
	UserID      string
	FailedRoles []string
}

// LoginRequest is the body of POST /api/account/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResult is returned by the login service.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	UserID    string
}

// AuthResponse is the envelope of register and login.
type AuthResponse struct {
	Token       string     `json:"token,omitempty"`
	IsSuccess   bool       `json:"isSuccess"`
	Message     string     `json:"message"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
	FailedRoles []string   `json:"failedRoles,omitempty"`
}

// UserDetail is the body of GET /api/account/user-detail.
type UserDetail struct {
	ID                   string   `json:"id"`
	FullName             string   `json:"fullName"`
	Email                string   `json:"email"`
	Roles                []string `json:"roles"`
	PhoneNumber          string   `json:"phoneNumber"`
	TwoFactorEnabled     bool     `json:"twoFactorEnabled"`
	PhoneNumberConfirmed bool     `json:"phoneNumberConfirmed"`
	AccessFailedCount    int      `json:"accessFailedCount"`
}

// UserItem is one element of GET /api/account/get-users.
type UserItem struct {
	ID       string   `json:"id"`
	Email    string   `json:"email"`
	FullName string   `json:"fullName"`
	Roles    []string `json:"roles"`
}
