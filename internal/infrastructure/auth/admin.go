package auth

import (
	"context"
	"crypto/subtle"
	"fmt"

	"github.com/gtfsreview/backend/internal/domain/shared"
	"github.com/gtfsreview/backend/internal/infrastructure/config"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned for a wrong username or password
var ErrInvalidCredentials = shared.NewDomainError("UNAUTHORIZED", "Invalid username or password")

// AdminAuthenticator checks the configured admin credentials and manages
// the lifecycle of the tokens it issues
type AdminAuthenticator struct {
	username     string
	passwordHash []byte
	tokens       *JWTService
	blacklist    TokenBlacklist
	logger       *zap.Logger
}

// NewAdminAuthenticator creates an authenticator. With an empty password
// hash, authentication is disabled and Enabled reports false.
func NewAdminAuthenticator(cfg config.AdminConfig, tokens *JWTService, blacklist TokenBlacklist, logger *zap.Logger) *AdminAuthenticator {
	if blacklist == nil {
		blacklist = NewInMemoryTokenBlacklist()
	}
	return &AdminAuthenticator{
		username:     cfg.Username,
		passwordHash: []byte(cfg.PasswordHash),
		tokens:       tokens,
		blacklist:    blacklist,
		logger:       logger,
	}
}

// Enabled reports whether admin routes are protected
func (a *AdminAuthenticator) Enabled() bool {
	return len(a.passwordHash) > 0
}

// Login verifies the credentials and issues an access token
func (a *AdminAuthenticator) Login(ctx context.Context, username, password string) (*AccessToken, error) {
	if !a.Enabled() {
		return nil, shared.NewDomainError("INVALID_STATE", "Admin authentication is not configured")
	}
	userMatch := subtle.ConstantTimeCompare([]byte(username), []byte(a.username)) == 1
	// always run bcrypt so a wrong username costs the same as a wrong password
	passErr := bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password))
	if !userMatch || passErr != nil {
		a.logger.Warn("Admin login failed", zap.String("username", username))
		return nil, ErrInvalidCredentials
	}

	token, err := a.tokens.Generate(username)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	a.logger.Info("Admin logged in", zap.String("username", username))
	return token, nil
}

// Authenticate validates a bearer token and rejects revoked ones
func (a *AdminAuthenticator) Authenticate(ctx context.Context, tokenString string) (*Claims, error) {
	claims, err := a.tokens.Validate(tokenString)
	if err != nil {
		return nil, err
	}
	revoked, err := a.blacklist.IsBlacklisted(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check token revocation: %w", err)
	}
	if revoked {
		return nil, ErrTokenRevoked
	}
	return claims, nil
}

// Logout revokes the token for the rest of its lifetime
func (a *AdminAuthenticator) Logout(ctx context.Context, claims *Claims) error {
	ttl := claims.RemainingTTL()
	if ttl <= 0 {
		return nil
	}
	if err := a.blacklist.AddToBlacklist(ctx, claims.ID, ttl); err != nil {
		return err
	}
	a.logger.Info("Admin logged out", zap.String("username", claims.Username))
	return nil
}

// HashPassword returns the bcrypt hash to put in admin.password_hash
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
