// Package callertoken verifies the signed caller tokens a gateway may put in
// front of the game API instead of a plain user id header.
//
// Tokens are EdDSA JWTs whose subject is the user id. An "admin" claim marks
// moderators.
package callertoken

import (
	"crypto/ed25519"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/louisbranch/jinrou/internal/platform/config"
	apperrors "github.com/louisbranch/jinrou/internal/platform/errors"
)

// callerTokenEnv holds raw env values before post-parse validation.
type callerTokenEnv struct {
	Issuer    string `env:"ISSUER" envDefault:"jinrou"`
	Audience  string `env:"AUDIENCE" envDefault:"jinrou-game"`
	PublicKey string `env:"PUBLIC_KEY"`
}

// Config defines how caller tokens are verified.
type Config struct {
	Issuer   string
	Audience string
	Key      ed25519.PublicKey
	Now      func() time.Time
}

// Claims are the validated contents of a caller token.
type Claims struct {
	UserID    string
	Admin     bool
	ExpiresAt time.Time
}

type tokenClaims struct {
	jwt.RegisteredClaims
	Admin bool `json:"admin,omitempty"`
}

// LoadConfigFromEnv reads verification settings. ok is false when no public
// key is configured, meaning tokens are not in use.
func LoadConfigFromEnv(now func() time.Time) (cfg Config, ok bool, err error) {
	var raw callerTokenEnv
	if err := config.ParseEnv("CALLER_TOKEN_", &raw); err != nil {
		return Config{}, false, err
	}
	publicKey := strings.TrimSpace(raw.PublicKey)
	if publicKey == "" {
		return Config{}, false, nil
	}
	keyBytes, err := decodeBase64(publicKey)
	if err != nil {
		return Config{}, false, fmt.Errorf("decode caller token public key: %w", err)
	}
	if len(keyBytes) != ed25519.PublicKeySize {
		return Config{}, false, fmt.Errorf("caller token public key must be %d bytes", ed25519.PublicKeySize)
	}
	if now == nil {
		now = time.Now
	}
	return Config{
		Issuer:   strings.TrimSpace(raw.Issuer),
		Audience: strings.TrimSpace(raw.Audience),
		Key:      ed25519.PublicKey(keyBytes),
		Now:      now,
	}, true, nil
}

// Verify checks token against cfg and returns its claims. Every failure is an
// UNAUTHENTICATED error.
func Verify(token string, cfg Config) (Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Claims{}, apperrors.New(apperrors.CodeUnauthenticated, "caller token is required")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Issuer == "" || cfg.Audience == "" || len(cfg.Key) != ed25519.PublicKeySize {
		return Claims{}, errors.New("caller token verifier is not configured")
	}

	var parsed tokenClaims
	_, err := jwt.ParseWithClaims(token, &parsed, func(*jwt.Token) (any, error) {
		return cfg.Key, nil
	},
		jwt.WithValidMethods([]string{"EdDSA"}),
		jwt.WithIssuer(cfg.Issuer),
		jwt.WithAudience(cfg.Audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(cfg.Now),
	)
	if err != nil {
		return Claims{}, mapJWTError(err)
	}
	userID := strings.TrimSpace(parsed.Subject)
	if userID == "" {
		return Claims{}, apperrors.New(apperrors.CodeUnauthenticated, "caller token subject is required")
	}
	return Claims{
		UserID:    userID,
		Admin:     parsed.Admin,
		ExpiresAt: parsed.ExpiresAt.Time.UTC(),
	}, nil
}

// Sign issues a caller token for userID valid for ttl.
func Sign(key ed25519.PrivateKey, issuer, audience, userID string, admin bool, now time.Time, ttl time.Duration) (string, error) {
	if len(key) != ed25519.PrivateKeySize {
		return "", errors.New("caller token private key is invalid")
	}
	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   userID,
			Audience:  jwt.ClaimStrings{audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Admin: admin,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims).SignedString(key)
	if err != nil {
		return "", fmt.Errorf("sign caller token: %w", err)
	}
	return signed, nil
}

func mapJWTError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return apperrors.New(apperrors.CodeUnauthenticated, "caller token is expired")
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrEd25519Verification):
		return apperrors.New(apperrors.CodeUnauthenticated, "caller token signature is invalid")
	case errors.Is(err, jwt.ErrTokenInvalidIssuer), errors.Is(err, jwt.ErrTokenInvalidAudience):
		return apperrors.New(apperrors.CodeUnauthenticated, "caller token was issued for another service")
	default:
		return apperrors.New(apperrors.CodeUnauthenticated, "caller token is invalid")
	}
}

func decodeBase64(value string) ([]byte, error) {
	if value == "" {
		return nil, errors.New("empty base64 value")
	}
	decoded, err := base64.RawStdEncoding.DecodeString(value)
	if err == nil {
		return decoded, nil
	}
	return base64.StdEncoding.DecodeString(value)
}
