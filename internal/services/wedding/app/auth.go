package app

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/louisbranch/wedding.rsvp/internal/platform/errors"
	"github.com/louisbranch/wedding.rsvp/internal/platform/id"
	"github.com/louisbranch/wedding.rsvp/internal/platform/logging"
	"github.com/louisbranch/wedding.rsvp/internal/platform/telemetry/metrics"
)

// SessionTTL is how long an admin session stays valid without activity.
const SessionTTL = 30 * time.Minute

const (
	adminSubject  = "admin"
	sessionIssuer = "wedding.rsvp"
	minSecretLen  = 32
)

// AuthConfig holds the admin credentials.
type AuthConfig struct {
	PasswordHash string
	// Password is hashed at startup when no hash is configured.
	Password string
	Secret   []byte
	TTL      time.Duration
}

// AuthService checks the admin password and issues session tokens.
type AuthService struct {
	hash    []byte
	secret  []byte
	ttl     time.Duration
	metrics *metrics.Metrics
	logger  *zap.Logger
	clock   func() time.Time
}

// Session is a verified admin session.
type Session struct {
	ID        string
	ExpiresAt time.Time
}

// NewAuth builds the admin authenticator. A missing secret is replaced by
// a random one, so sessions do not survive restarts.
func NewAuth(cfg AuthConfig, m *metrics.Metrics, logger *zap.Logger, clock func() time.Time) (*AuthService, error) {
	logger = logging.OrNop(logger)
	if clock == nil {
		clock = time.Now
	}
	hash := strings.TrimSpace(cfg.PasswordHash)
	if hash == "" {
		if cfg.Password == "" {
			return nil, errors.New("admin password or password hash is required")
		}
		computed, err := HashPassword(cfg.Password)
		if err != nil {
			return nil, err
		}
		hash = computed
	} else if _, err := bcrypt.Cost([]byte(hash)); err != nil {
		return nil, fmt.Errorf("admin password hash: %w", err)
	}

	secret := cfg.Secret
	if len(secret) == 0 {
		secret = make([]byte, minSecretLen)
		if _, err := rand.Read(secret); err != nil {
			return nil, fmt.Errorf("generate session secret: %w", err)
		}
		logger.Warn("session secret not configured, using a random one")
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = SessionTTL
	}
	return &AuthService{
		hash:    []byte(hash),
		secret:  secret,
		ttl:     ttl,
		metrics: m,
		logger:  logger,
		clock:   clock,
	}, nil
}

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("password is required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// Login checks password and issues a session token.
func (s *AuthService) Login(ctx context.Context, password string) (string, error) {
	if bcrypt.CompareHashAndPassword(s.hash, []byte(password)) != nil {
		s.metrics.RecordAdminLogin(false)
		s.logger.Warn("admin login failed")
		return "", apperrors.New(apperrors.CodeUnauthorized, "invalid password")
	}
	s.metrics.RecordAdminLogin(true)
	s.logger.Info("admin logged in")
	return s.Issue()
}

// Issue signs a fresh session token.
func (s *AuthService) Issue() (string, error) {
	sessionID, err := id.NewID()
	if err != nil {
		return "", err
	}
	now := s.clock()
	claims := jwt.RegisteredClaims{
		Issuer:    sessionIssuer,
		Subject:   adminSubject,
		ID:        sessionID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign session: %w", err)
	}
	return signed, nil
}

// Verify parses a session token.
func (s *AuthService) Verify(token string) (Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Session{}, apperrors.New(apperrors.CodeUnauthorized, "session is required")
	}
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(sessionIssuer),
		jwt.WithSubject(adminSubject),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.clock),
	)
	if err != nil {
		return Session{}, apperrors.Wrap(apperrors.CodeUnauthorized, "invalid session", err)
	}
	return Session{ID: claims.ID, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// TTL is the session lifetime.
func (s *AuthService) TTL() time.Duration {
	return s.ttl
}
