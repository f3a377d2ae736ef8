package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateHS256(t *testing.T) {
	v, err := NewValidator(context.Background(), Options{Secret: "s3cret", Issuer: "persona", Audience: "chat", ClockSkew: time.Second}, zerolog.Nop())
	require.NoError(t, err)
	assert.True(t, v.Ready())

	valid, err := IssueHS256("s3cret", TokenRequest{Subject: "user-1", Email: "a@example.com", Issuer: "persona", Audience: "chat", Scopes: []string{"chat", "usage"}})
	require.NoError(t, err)

	claims, err := v.Validate(context.Background(), valid)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "a@example.com", claims.Email)
	assert.Equal(t, []string{"chat", "usage"}, claims.Scopes)
	assert.Equal(t, []string{"chat"}, claims.Audience)

	tests := []struct {
		name  string
		token func() string
	}{
		{"wrong secret", func() string {
			tok, _ := IssueHS256("other", TokenRequest{Subject: "user-1", Issuer: "persona", Audience: "chat"})
			return tok
		}},
		{"wrong issuer", func() string {
			tok, _ := IssueHS256("s3cret", TokenRequest{Subject: "user-1", Issuer: "elsewhere", Audience: "chat"})
			return tok
		}},
		{"wrong audience", func() string {
			tok, _ := IssueHS256("s3cret", TokenRequest{Subject: "user-1", Issuer: "persona", Audience: "admin"})
			return tok
		}},
		{"expired", func() string {
			tok, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
				"sub": "user-1", "iss": "persona", "aud": "chat", "exp": time.Now().Add(-time.Hour).Unix(),
			}).SignedString([]byte("s3cret"))
			return tok
		}},
		{"no subject", func() string {
			tok, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
				"iss": "persona", "aud": "chat", "exp": time.Now().Add(time.Hour).Unix(),
			}).SignedString([]byte("s3cret"))
			return tok
		}},
		{"garbage", func() string { return "not.a.token" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Validate(context.Background(), tt.token())
			assert.Error(t, err)
		})
	}
}

func TestValidateRS256ViaJWKS(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	jwks := map[string]any{"keys": []map[string]string{{
		"kty": "RSA",
		"kid": "test-key",
		"alg": "RS256",
		"use": "sig",
		"n":   base64.RawURLEncoding.EncodeToString(key.N.Bytes()),
		"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(key.E)).Bytes()),
	}}}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(jwks)
	}))
	defer server.Close()

	v, err := NewValidator(context.Background(), Options{JWKSURL: server.URL, RefreshEvery: time.Hour}, zerolog.Nop())
	require.NoError(t, err)
	defer v.Close()
	assert.True(t, v.Ready())

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
		"sub": "user-rs",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	token.Header["kid"] = "test-key"
	signed, err := token.SignedString(key)
	require.NoError(t, err)

	claims, err := v.Validate(context.Background(), signed)
	require.NoError(t, err)
	assert.Equal(t, "user-rs", claims.Subject)

	// hmac tokens are refused when no secret is configured
	hs, err := IssueHS256("whatever", TokenRequest{Subject: "user-rs"})
	require.NoError(t, err)
	_, err = v.Validate(context.Background(), hs)
	assert.Error(t, err)
}

func TestNewValidatorRequiresKeySource(t *testing.T) {
	_, err := NewValidator(context.Background(), Options{}, zerolog.Nop())
	assert.Error(t, err)
}
