// Package callerkey generates caller token keys and signs development
// tokens for the game API.
package callerkey

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/louisbranch/jinrou/internal/platform/callertoken"
)

// Config holds the tool options. Without a user the tool emits a new key
// pair; with one it signs a token using PrivateKey.
type Config struct {
	UserID     string
	Admin      bool
	TTL        time.Duration
	Issuer     string
	Audience   string
	PrivateKey string
}

// ParseConfig parses flags into a Config. The private key comes from
// JINROU_CALLER_TOKEN_PRIVATE_KEY unless -key is given.
func ParseConfig(fs *flag.FlagSet, args []string, getenv func(string) string) (Config, error) {
	if getenv == nil {
		getenv = func(string) string { return "" }
	}
	cfg := Config{
		TTL:        24 * time.Hour,
		Issuer:     "jinrou",
		Audience:   "jinrou-game",
		PrivateKey: getenv("JINROU_CALLER_TOKEN_PRIVATE_KEY"),
	}
	fs.StringVar(&cfg.UserID, "user", cfg.UserID, "sign a token for this user id instead of generating keys")
	fs.BoolVar(&cfg.Admin, "admin", cfg.Admin, "mark the token as an admin token")
	fs.DurationVar(&cfg.TTL, "ttl", cfg.TTL, "token lifetime")
	fs.StringVar(&cfg.Issuer, "issuer", cfg.Issuer, "token issuer")
	fs.StringVar(&cfg.Audience, "audience", cfg.Audience, "token audience")
	fs.StringVar(&cfg.PrivateKey, "key", cfg.PrivateKey, "base64 private key used to sign")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run writes either a key pair or a signed token to out.
func Run(cfg Config, out io.Writer, reader io.Reader, now time.Time) error {
	if out == nil {
		return errors.New("output is required")
	}
	if strings.TrimSpace(cfg.UserID) == "" {
		return generate(out, reader)
	}
	if cfg.TTL <= 0 {
		return errors.New("ttl must be greater than zero")
	}
	key, err := decodeKey(cfg.PrivateKey)
	if err != nil {
		return fmt.Errorf("decode private key: %w", err)
	}
	if len(key) != ed25519.PrivateKeySize {
		return fmt.Errorf("private key must be %d bytes", ed25519.PrivateKeySize)
	}
	token, err := callertoken.Sign(ed25519.PrivateKey(key), cfg.Issuer, cfg.Audience, strings.TrimSpace(cfg.UserID), cfg.Admin, now, cfg.TTL)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, token)
	return err
}

func generate(out io.Writer, reader io.Reader) error {
	if reader == nil {
		reader = rand.Reader
	}
	publicKey, privateKey, err := ed25519.GenerateKey(reader)
	if err != nil {
		return fmt.Errorf("generate caller token key: %w", err)
	}
	if _, err := fmt.Fprintf(out, "export JINROU_CALLER_TOKEN_PRIVATE_KEY=%s\n", base64.RawStdEncoding.EncodeToString(privateKey)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(out, "export JINROU_CALLER_TOKEN_PUBLIC_KEY=%s\n", base64.RawStdEncoding.EncodeToString(publicKey)); err != nil {
		return err
	}
	return nil
}

func decodeKey(value string) ([]byte, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, errors.New("private key is required")
	}
	decoded, err := base64.RawStdEncoding.DecodeString(value)
	if err == nil {
		return decoded, nil
	}
	return base64.StdEncoding.DecodeString(value)
}
