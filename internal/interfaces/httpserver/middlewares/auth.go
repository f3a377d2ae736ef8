package middlewares

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"persona-chat/internal/domain"
	"persona-chat/internal/infrastructure/auth"
	"persona-chat/internal/infrastructure/metrics"
	"persona-chat/internal/interfaces/httpserver/responses"
	"persona-chat/internal/utils/platformerrors"
)

const (
	principalContextKey = "principal"
	// ConversationIDHeader carries the resolved conversation id of a chat turn.
	ConversationIDHeader = "X-Conversation-Id"
)

// TokenValidator turns a bearer token into claims.
type TokenValidator interface {
	Validate(ctx context.Context, rawToken string) (*auth.PrincipalClaims, error)
}

// UserProvisioner makes sure a local user row exists for an authenticated principal.
type UserProvisioner interface {
	EnsureUser(ctx context.Context, principal domain.Principal) error
}

// AuthMiddleware requires a valid bearer token and stores the resolved principal on the context.
func AuthMiddleware(validator TokenValidator, users UserProvisioner, logger zerolog.Logger) gin.HandlerFunc {
	log := logger.With().Str("component", "auth-middleware").Logger()

	return func(c *gin.Context) {
		ctx := c.Request.Context()

		principal, ok := principalFromJWT(c, validator)
		if !ok {
			metrics.RecordAuth(false)
			responses.HandleNewError(c, platformerrors.ErrorTypeUnauthorized, "authentication required", "0b7e2a51-6c3d-4f8e-9a1b-2c4d6e8f0a13")
			c.Abort()
			return
		}
		metrics.RecordAuth(true)

		if users != nil {
			if err := users.EnsureUser(ctx, principal); err != nil {
				log.Error().Err(err).Str("request_id", RequestIDFromContext(c)).Msg("failed to provision user")
				responses.HandleError(c, err, "failed to load user")
				c.Abort()
				return
			}
		}

		SetPrincipal(c, principal)
		c.Next()
	}
}

func principalFromJWT(c *gin.Context, validator TokenValidator) (domain.Principal, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return domain.Principal{}, false
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return domain.Principal{}, false
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.Principal{}, false
	}

	claims, err := validator.Validate(c.Request.Context(), token)
	if err != nil {
		return domain.Principal{}, false
	}

	return domain.Principal{
		ID:         claims.Subject,
		AuthMethod: domain.AuthMethodJWT,
		Subject:    claims.Subject,
		Issuer:     claims.Issuer,
		Email:      claims.Email,
		Name:       claims.Name,
		Scopes:     claims.Scopes,
	}, true
}

// SetPrincipal stores principal on the gin context.
func SetPrincipal(c *gin.Context, principal domain.Principal) {
	c.Set(principalContextKey, principal)
}

// PrincipalFromContext returns the principal set by AuthMiddleware.
func PrincipalFromContext(c *gin.Context) (domain.Principal, bool) {
	value, ok := c.Get(principalContextKey)
	if !ok {
		return domain.Principal{}, false
	}
	principal, ok := value.(domain.Principal)
	if !ok || !principal.Authenticated() {
		return domain.Principal{}, false
	}
	return principal, true
}
