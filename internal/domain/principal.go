package domain

import "context"

// AuthMethod describes how a caller authenticated with the API.
type AuthMethod string

const (
	AuthMethodJWT AuthMethod = "jwt"
)

// Principal captures normalized caller identity independent of auth mechanism.
type Principal struct {
	ID         string
	AuthMethod AuthMethod
	Subject    string
	Issuer     string
	Email      string
	Name       string
	Scopes     []string
}

// Authenticated reports whether the principal resolved to a user.
func (p Principal) Authenticated() bool {
	return p.ID != ""
}

// Transactor runs fn inside a storage transaction. Repositories called with the ctx passed to fn
// participate in that transaction.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
