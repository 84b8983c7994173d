// Package identity is the user-identity store behind the HTTP API's
// registration and login endpoints. The chat relay never consults it; the
// relay trusts whatever display name a client presents on connect.
package identity

import (
	"errors"
	"time"
)

var (
	ErrUserExists         = errors.New("identity: username already taken")
	ErrInvalidCredentials = errors.New("identity: invalid username or password")
)

type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
}
