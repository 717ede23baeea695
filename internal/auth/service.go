// Package auth issues and validates HMAC-signed JWT bearer tokens and
// exposes them as authorization policies.
package auth

import (
	"crypto/rand"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const generatedSecretSize = 32

// ErrInvalidToken is returned by Parse for tokens that fail validation.
var ErrInvalidToken = errors.New("auth: invalid token")

// Config configures the token service.
type Config struct {
	// Secret is the HMAC-SHA256 key. When empty a random key is generated,
	// so only tokens issued by this process validate.
	Secret string

	// Issuer is the "iss" claim. Checked on parse when set.
	Issuer string

	// Audience is the "aud" claim. Checked on parse when set.
	Audience string

	// TokenTTL is the lifetime of issued tokens. Defaults to one hour.
	TokenTTL time.Duration
}

// Claims are the token claims.
type Claims struct {
	jwt.RegisteredClaims
	Scopes []string `json:"scope,omitempty"`
}

// HasScope reports whether the claims grant scope.
func (c *Claims) HasScope(scope string) bool {
	return slices.Contains(c.Scopes, scope)
}

// Service generates and parses tokens.
type Service struct {
	cfg       Config
	key       []byte
	generated bool
	now       func() time.Time
}

// New creates a token service.
func New(cfg Config) (*Service, error) {
	if cfg.TokenTTL < 0 {
		return nil, fmt.Errorf("auth: token ttl must not be negative: %s", cfg.TokenTTL)
	}
	if cfg.TokenTTL == 0 {
		cfg.TokenTTL = time.Hour
	}

	s := &Service{cfg: cfg, now: time.Now}

	if cfg.Secret == "" {
		s.key = make([]byte, generatedSecretSize)
		if _, err := rand.Read(s.key); err != nil {
			return nil, fmt.Errorf("auth: generate secret: %w", err)
		}
		s.generated = true
	} else {
		s.key = []byte(cfg.Secret)
	}

	return s, nil
}

// GeneratedSecret reports whether the signing key was generated because
// none was configured.
func (s *Service) GeneratedSecret() bool {
	return s.generated
}

// Generate issues a token for subject with the given scopes.
func (s *Service) Generate(subject string, scopes ...string) (string, error) {
	now := s.now()

	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    s.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.TokenTTL)),
		},
		Scopes: scopes,
	}
	if s.cfg.Audience != "" {
		claims.Audience = jwt.ClaimStrings{s.cfg.Audience}
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, nil
}

// Parse validates the signature, the time claims and, when configured,
// the issuer and audience.
func (s *Service) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, s.keyFunc, s.parserOptions()...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

func (s *Service) keyFunc(token *jwt.Token) (any, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %s", token.Method.Alg())
	}
	return s.key, nil
}

func (s *Service) parserOptions() []jwt.ParserOption {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	}
	if s.cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.cfg.Issuer))
	}
	if s.cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(s.cfg.Audience))
	}
	return opts
}
