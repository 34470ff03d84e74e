package auth

import (
	"github.com/coverline/coverline-backend/internal/users"
)

// TokenPair is an access token plus the refresh credential that renews it.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// LoginResult bundles the issued tokens with the authenticated identity.
type LoginResult struct {
	TokenPair
	User *users.UserDTO `json:"user"`
}
