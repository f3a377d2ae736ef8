package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
)

// PrincipalClaims represent the subset of JWT claims we care about.
type PrincipalClaims struct {
	Subject   string
	Issuer    string
	Audience  []string
	Email     string
	Name      string
	Scopes    []string
	ExpiresAt time.Time
	IssuedAt  time.Time
	TokenID   string
}

// Options configures token validation. At least one of Secret and JWKSURL is required; HS256 tokens are
// checked against Secret and RS256 tokens against the JWKS.
type Options struct {
	Secret       string
	JWKSURL      string
	Issuer       string
	Audience     string
	RefreshEvery time.Duration
	ClockSkew    time.Duration
}

// Validator validates bearer tokens.
type Validator struct {
	opts    Options
	secret  []byte
	methods []string
	logger  zerolog.Logger
	jwks    atomic.Pointer[keyfunc.JWKS]
	lastErr atomic.Value // stores lastErrWrap
}

// lastErrWrap is a sentinel wrapper to avoid storing bare nil in atomic.Value.
type lastErrWrap struct{ Err error }

const (
	jwksInitialRetryInterval   = time.Second
	jwksInitialRetryMaxBackoff = 10 * time.Second
	jwksInitialRetryTimeout    = 2 * time.Minute
)

// NewValidator builds a validator, fetching the JWKS first when one is configured.
func NewValidator(ctx context.Context, opts Options, logger zerolog.Logger) (*Validator, error) {
	if opts.Secret == "" && opts.JWKSURL == "" {
		return nil, errors.New("either a signing secret or a jwks url is required")
	}

	v := &Validator{
		opts:   opts,
		logger: logger.With().Str("component", "jwt-validator").Logger(),
	}
	v.lastErr.Store(lastErrWrap{Err: nil})
	if opts.Secret != "" {
		v.secret = []byte(opts.Secret)
		v.methods = append(v.methods, jwt.SigningMethodHS256.Alg())
	}
	if opts.JWKSURL != "" {
		v.methods = append(v.methods, jwt.SigningMethodRS256.Alg())
		if err := v.initJWKS(ctx); err != nil {
			return nil, err
		}
	}
	return v, nil
}

func (v *Validator) initJWKS(ctx context.Context) error {
	options := keyfunc.Options{
		Ctx: ctx,
		RefreshErrorHandler: func(err error) {
			v.lastErr.Store(lastErrWrap{Err: err})
			if err != nil {
				v.logger.Error().Err(err).Msg("jwks refresh failed")
			}
		},
		RefreshInterval:   v.opts.RefreshEvery,
		RefreshUnknownKID: true,
	}

	backoff := jwksInitialRetryInterval
	deadline := time.Now().Add(jwksInitialRetryTimeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}

	for attempt := 1; ; attempt++ {
		jwks, err := keyfunc.Get(v.opts.JWKSURL, options)
		if err == nil {
			v.lastErr.Store(lastErrWrap{Err: nil})
			v.jwks.Store(jwks)
			return nil
		}

		v.logger.Warn().
			Err(err).
			Str("jwks_url", v.opts.JWKSURL).
			Int("attempt", attempt).
			Msg("initial jwks fetch failed, retrying")

		select {
		case <-ctx.Done():
			return fmt.Errorf("fetch jwks: %w", ctx.Err())
		case <-time.After(backoff):
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("fetch jwks: %w", err)
		}
		backoff = min(backoff*2, jwksInitialRetryMaxBackoff)
	}
}

func (v *Validator) keyFor(token *jwt.Token) (any, error) {
	switch token.Method.Alg() {
	case jwt.SigningMethodHS256.Alg():
		if v.secret == nil {
			return nil, errors.New("hmac tokens are not accepted")
		}
		return v.secret, nil
	case jwt.SigningMethodRS256.Alg():
		jwks := v.jwks.Load()
		if jwks == nil {
			return nil, errors.New("jwks not initialised")
		}
		return jwks.Keyfunc(token)
	default:
		return nil, fmt.Errorf("unexpected signing method %s", token.Method.Alg())
	}
}

// Validate parses and validates the given JWT returning principal claims.
func (v *Validator) Validate(_ context.Context, rawToken string) (*PrincipalClaims, error) {
	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods(v.methods),
		jwt.WithLeeway(v.opts.ClockSkew),
		jwt.WithIssuedAt(),
	}
	if v.opts.Issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(v.opts.Issuer))
	}
	if v.opts.Audience != "" {
		parserOpts = append(parserOpts, jwt.WithAudience(v.opts.Audience))
	}

	token, err := jwt.NewParser(parserOpts...).ParseWithClaims(rawToken, jwt.MapClaims{}, v.keyFor)
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid claims")
	}

	sub, _ := mapClaims.GetSubject()
	if sub == "" {
		return nil, errors.New("sub claim missing")
	}
	iss, _ := mapClaims.GetIssuer()
	audiences, _ := mapClaims.GetAudience()

	var scopes []string
	if scopeStr, ok := mapClaims["scope"].(string); ok && scopeStr != "" {
		scopes = strings.Fields(scopeStr)
	}

	return &PrincipalClaims{
		Subject:   sub,
		Issuer:    iss,
		Audience:  audiences,
		Email:     claimString(mapClaims["email"]),
		Name:      claimString(mapClaims["name"]),
		Scopes:    scopes,
		ExpiresAt: jwtNumericTime(mapClaims["exp"]),
		IssuedAt:  jwtNumericTime(mapClaims["iat"]),
		TokenID:   claimString(mapClaims["jti"]),
	}, nil
}

// Ready indicates whether signing keys are available.
func (v *Validator) Ready() bool {
	if v.opts.JWKSURL == "" {
		return true
	}
	if v.jwks.Load() == nil {
		return false
	}
	if wrap, ok := v.lastErr.Load().(lastErrWrap); ok && wrap.Err != nil {
		return false
	}
	return true
}

// Close stops background JWKS refreshes.
func (v *Validator) Close() {
	if jwks := v.jwks.Load(); jwks != nil {
		jwks.EndBackground()
	}
}

func jwtNumericTime(value any) time.Time {
	switch timeValue := value.(type) {
	case float64:
		return time.Unix(int64(timeValue), 0).UTC()
	case int64:
		return time.Unix(timeValue, 0).UTC()
	case json.Number:
		if unixTime, err := timeValue.Int64(); err == nil {
			return time.Unix(unixTime, 0).UTC()
		}
	}
	return time.Time{}
}

func claimString(value any) string {
	if str, ok := value.(string); ok {
		return str
	}
	return ""
}
