package callertoken

import (
	"bytes"
	"crypto/ed25519"
	"encoding/base64"
	"testing"
	"time"

	apperrors "github.com/louisbranch/jinrou/internal/platform/errors"
)

var issuedAt = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func testKeys(t *testing.T) (ed25519.PublicKey, ed25519.PrivateKey) {
	t.Helper()
	public, private, err := ed25519.GenerateKey(bytes.NewReader(bytes.Repeat([]byte{7}, 64)))
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	return public, private
}

func testConfig(public ed25519.PublicKey, now time.Time) Config {
	return Config{Issuer: "jinrou", Audience: "jinrou-game", Key: public, Now: func() time.Time { return now }}
}

func TestVerifyRoundTrip(t *testing.T) {
	public, private := testKeys(t)
	token, err := Sign(private, "jinrou", "jinrou-game", "user-1", true, issuedAt, time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	claims, err := Verify(token, testConfig(public, issuedAt.Add(time.Minute)))
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.UserID != "user-1" || !claims.Admin {
		t.Fatalf("claims = %+v", claims)
	}
	if !claims.ExpiresAt.Equal(issuedAt.Add(time.Hour)) {
		t.Fatalf("expires at = %v", claims.ExpiresAt)
	}
}

func TestVerifyRejects(t *testing.T) {
	public, private := testKeys(t)
	otherPublic, _, err := ed25519.GenerateKey(bytes.NewReader(bytes.Repeat([]byte{9}, 64)))
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	valid, err := Sign(private, "jinrou", "jinrou-game", "user-1", false, issuedAt, time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	foreign, err := Sign(private, "jinrou", "another-service", "user-1", false, issuedAt, time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	anonymous, err := Sign(private, "jinrou", "jinrou-game", " ", false, issuedAt, time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	tests := []struct {
		name  string
		token string
		cfg   Config
	}{
		{name: "empty", token: " ", cfg: testConfig(public, issuedAt)},
		{name: "expired", token: valid, cfg: testConfig(public, issuedAt.Add(2*time.Hour))},
		{name: "wrong key", token: valid, cfg: testConfig(otherPublic, issuedAt)},
		{name: "wrong audience", token: foreign, cfg: testConfig(public, issuedAt)},
		{name: "no subject", token: anonymous, cfg: testConfig(public, issuedAt)},
		{name: "garbage", token: "not.a.token", cfg: testConfig(public, issuedAt)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Verify(tc.token, tc.cfg)
			if got := apperrors.CodeOf(err); got != apperrors.CodeUnauthenticated {
				t.Fatalf("code = %s (%v), want %s", got, err, apperrors.CodeUnauthenticated)
			}
		})
	}
}

func TestVerifyRequiresConfiguredVerifier(t *testing.T) {
	_, private := testKeys(t)
	token, err := Sign(private, "jinrou", "jinrou-game", "user-1", false, issuedAt, time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := Verify(token, Config{}); err == nil {
		t.Fatal("expected error for unconfigured verifier")
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("JINROU_CALLER_TOKEN_PUBLIC_KEY", "")
	if _, ok, err := LoadConfigFromEnv(nil); err != nil || ok {
		t.Fatalf("empty key: ok = %v, err = %v", ok, err)
	}

	public, _ := testKeys(t)
	t.Setenv("JINROU_CALLER_TOKEN_PUBLIC_KEY", base64.RawStdEncoding.EncodeToString(public))
	cfg, ok, err := LoadConfigFromEnv(nil)
	if err != nil || !ok {
		t.Fatalf("load: ok = %v, err = %v", ok, err)
	}
	if cfg.Issuer != "jinrou" || cfg.Audience != "jinrou-game" || !bytes.Equal(cfg.Key, public) || cfg.Now == nil {
		t.Fatalf("config = %+v", cfg)
	}

	t.Setenv("JINROU_CALLER_TOKEN_PUBLIC_KEY", base64.StdEncoding.EncodeToString([]byte("short")))
	if _, _, err := LoadConfigFromEnv(nil); err == nil {
		t.Fatal("expected error for short key")
	}
}
