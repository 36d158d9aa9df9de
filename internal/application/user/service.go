// Package user provides the application layer for sessions and preferences
package user

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pantrysense/v2/internal/domain/user"
	"github.com/pantrysense/v2/internal/ports/inbound"
	"github.com/pantrysense/v2/internal/ports/outbound"
	"github.com/pantrysense/v2/pkg/errors"
	"go.uber.org/zap"
)

const revokedKeyPrefix = "auth:revoked:"

// AuthConfig holds session token settings
type AuthConfig struct {
	JWTSecret  string
	Issuer     string
	SessionTTL time.Duration
}

// AuthService implements inbound.AuthService on top of a hosted provider
type AuthService struct {
	provider  outbound.AuthProvider
	cache     outbound.CacheRepository
	validate  *validator.Validate
	jwtSecret []byte
	issuer    string
	ttl       time.Duration
	now       func() time.Time
	logger    *zap.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(
	cfg AuthConfig,
	provider outbound.AuthProvider,
	cache outbound.CacheRepository,
	validate *validator.Validate,
	logger *zap.Logger,
) *AuthService {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 24 * time.Hour
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AuthService{
		provider:  provider,
		cache:     cache,
		validate:  validate,
		jwtSecret: []byte(cfg.JWTSecret),
		issuer:    cfg.Issuer,
		ttl:       cfg.SessionTTL,
		now:       time.Now,
		logger:    logger.Named("auth-service"),
	}
}

// SessionTokenClaims represents JWT token claims
type SessionTokenClaims struct {
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"name,omitempty"`
	PhotoURL    string `json:"picture,omitempty"`
	jwt.RegisteredClaims
}

// SignUp creates an account with the provider and opens a session
func (s *AuthService) SignUp(ctx context.Context, creds user.Credentials) (*inbound.Session, error) {
	creds = creds.Normalize()
	if err := s.validate.StructCtx(ctx, creds); err != nil {
		return nil, errors.FromValidator(err)
	}

	s.logger.Info("Sign-up attempt", zap.String("email", creds.Email))

	identity, err := s.provider.SignUp(ctx, creds)
	if err != nil {
		return nil, s.authFailure(err, user.ReasonSignUp)
	}
	return s.open(identity)
}

// SignIn authenticates with the provider and opens a session
func (s *AuthService) SignIn(ctx context.Context, creds user.Credentials) (*inbound.Session, error) {
	creds = creds.Normalize()
	if err := s.validate.StructCtx(ctx, creds); err != nil {
		return nil, errors.FromValidator(err)
	}

	s.logger.Info("Sign-in attempt", zap.String("email", creds.Email))

	identity, err := s.provider.SignIn(ctx, creds)
	if err != nil {
		return nil, s.authFailure(err, user.ReasonSignIn)
	}
	return s.open(identity)
}

// SignOut signs the user out with the provider and revokes the session token
// until it would have expired anyway
func (s *AuthService) SignOut(ctx context.Context, claims *inbound.SessionClaims) error {
	if claims == nil {
		return errors.NewUnauthorizedError("")
	}

	if err := s.provider.SignOut(ctx, claims.User.UID); err != nil {
		return s.authFailure(err, user.ReasonSignOut)
	}

	ttl := claims.ExpiresAt.Sub(s.now())
	if ttl > 0 {
		if err := s.cache.Set(ctx, revokedKeyPrefix+claims.SessionID, []byte("1"), ttl); err != nil {
			return errors.NewAuthError(user.ReasonSignOut, err)
		}
	}

	s.logger.Info("Signed out", zap.String("uid", claims.User.UID))
	return nil
}

// Verify validates a session token and checks it has not been revoked
func (s *AuthService) Verify(ctx context.Context, tokenString string) (*inbound.SessionClaims, error) {
	claims := &SessionTokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return nil, errors.NewUnauthorizedError("Invalid or expired session").WithCause(err)
	}
	if claims.ID == "" || claims.Subject == "" {
		return nil, errors.NewUnauthorizedError("Invalid session claims")
	}

	revoked, err := s.cache.Exists(ctx, revokedKeyPrefix+claims.ID)
	if err != nil {
		s.logger.Error("Failed to check session revocation", zap.Error(err))
		return nil, errors.NewUnauthorizedError("Session could not be verified").WithCause(err)
	}
	if revoked {
		return nil, errors.NewUnauthorizedError("Session has been signed out").WithCause(user.ErrSessionRevoked)
	}

	out := &inbound.SessionClaims{
		SessionID: claims.ID,
		User: user.Identity{
			UID:         claims.Subject,
			Email:       claims.Email,
			DisplayName: claims.DisplayName,
			PhotoURL:    claims.PhotoURL,
		},
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}

func (s *AuthService) open(identity *user.Identity) (*inbound.Session, error) {
	now := s.now()
	expiresAt := now.Add(s.ttl)

	claims := &SessionTokenClaims{
		Email:       identity.Email,
		DisplayName: identity.DisplayName,
		PhotoURL:    identity.PhotoURL,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   identity.UID,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return nil, errors.NewInternalError("Failed to issue session").WithCause(err)
	}

	s.logger.Info("Session opened", zap.String("uid", identity.UID))
	return &inbound.Session{Token: signed, ExpiresAt: expiresAt, User: *identity}, nil
}

// authFailure keeps the provider's reason when it gave one and falls back to
// the generic sentence for the operation otherwise
func (s *AuthService) authFailure(err error, fallback string) error {
	s.logger.Warn("Authentication provider rejected request", zap.Error(err))

	var appErr *errors.AppError
	if stderrors.As(err, &appErr) && appErr.Code == errors.CodeAuthFailed && appErr.Message != "" {
		return appErr
	}
	if stderrors.Is(err, user.ErrInvalidCredentials) || stderrors.Is(err, user.ErrEmailExists) {
		return errors.NewAuthError(capitalize(err.Error()), err)
	}
	return errors.NewAuthError(fallback, err)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

var _ inbound.AuthService = (*AuthService)(nil)
