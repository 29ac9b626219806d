package client

import (
	"context"
	"encoding/json"

	"github.com/dmitrijs2005/peermirror/internal/client/models"
)

// Client is the remote API used by the session and query services.
//
// Payloads of the authentication family are sent as JSON as given; the
// server decides which fields it needs.
type Client interface {
	Register(ctx context.Context, payload any) (*models.AuthResult, error)
	Activate(ctx context.Context, payload any) (*models.AuthResult, error)
	Reset(ctx context.Context, payload any) (json.RawMessage, error)
	UpdateUsername(ctx context.Context, payload any) (*models.AuthResult, error)
	UpdatePassword(ctx context.Context, payload any) (*models.AuthResult, error)
	Login(ctx context.Context, payload any) (*models.AuthResult, error)
	Me(ctx context.Context) (*models.AuthResult, error)

	GetPeers(ctx context.Context) ([]models.Peer, error)
	GetPeer(ctx context.Context, id string) (*models.Peer, error)

	Close() error
}

// Credentials is the login payload.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration is the register payload.
type Registration struct {
	Email    string `json:"email"`
	Username string `json:"username,omitempty"`
	Password string `json:"password"`
}

// Activation confirms an account with the code sent by mail.
type Activation struct {
	Token string `json:"token"`
}

// ResetRequest asks for a password reset mail.
type ResetRequest struct {
	Email string `json:"email"`
}

// UsernameChange is the update-username payload.
type UsernameChange struct {
	Username string `json:"username"`
}

// PasswordChange is the update-password payload.
type PasswordChange struct {
	Password    string `json:"password"`
	NewPassword string `json:"new_password"`
}
