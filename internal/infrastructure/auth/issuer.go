package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenRequest describes a locally signed development token.
type TokenRequest struct {
	Subject  string
	Email    string
	Name     string
	Issuer   string
	Audience string
	Scopes   []string
	TTL      time.Duration
}

// IssueHS256 signs a token the Validator accepts when configured with the same secret. It exists for
// local development and tests; production tokens come from the identity provider.
func IssueHS256(secret string, req TokenRequest) (string, error) {
	if secret == "" {
		return "", errors.New("signing secret is empty")
	}
	if req.Subject == "" {
		return "", errors.New("subject is required")
	}
	if req.TTL <= 0 {
		req.TTL = time.Hour
	}

	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub": req.Subject,
		"iat": now.Unix(),
		"exp": now.Add(req.TTL).Unix(),
		"jti": uuid.NewString(),
	}
	if req.Issuer != "" {
		claims["iss"] = req.Issuer
	}
	if req.Audience != "" {
		claims["aud"] = req.Audience
	}
	if req.Email != "" {
		claims["email"] = req.Email
	}
	if req.Name != "" {
		claims["name"] = req.Name
	}
	if len(req.Scopes) > 0 {
		claims["scope"] = strings.Join(req.Scopes, " ")
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
