package callerkey

import (
	"bytes"
	"crypto/ed25519"
	"encoding/base64"
	"flag"
	"strings"
	"testing"
	"time"

	"github.com/louisbranch/jinrou/internal/platform/callertoken"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestRunRequiresOutput(t *testing.T) {
	if err := Run(Config{}, nil, bytes.NewReader([]byte{1}), now); err == nil {
		t.Fatal("expected error when output is nil")
	}
}

func TestRunWritesKeys(t *testing.T) {
	buf := &bytes.Buffer{}
	reader := bytes.NewReader(bytes.Repeat([]byte{1}, 64))
	if err := Run(Config{}, buf, reader, now); err != nil {
		t.Fatalf("run: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	private := strings.TrimPrefix(lines[0], "export JINROU_CALLER_TOKEN_PRIVATE_KEY=")
	public := strings.TrimPrefix(lines[1], "export JINROU_CALLER_TOKEN_PUBLIC_KEY=")
	if private == lines[0] || public == lines[1] {
		t.Fatalf("unexpected output format: %q", buf.String())
	}
	privateBytes, err := base64.RawStdEncoding.DecodeString(private)
	if err != nil {
		t.Fatalf("decode private key: %v", err)
	}
	publicBytes, err := base64.RawStdEncoding.DecodeString(public)
	if err != nil {
		t.Fatalf("decode public key: %v", err)
	}
	if len(privateBytes) != 64 || len(publicBytes) != 32 {
		t.Fatalf("key lengths = %d/%d, want 64/32", len(privateBytes), len(publicBytes))
	}
}

func TestRunSignsToken(t *testing.T) {
	public, private, err := ed25519.GenerateKey(bytes.NewReader(bytes.Repeat([]byte{3}, 64)))
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	fs := flag.NewFlagSet("callerkey", flag.ContinueOnError)
	env := map[string]string{"JINROU_CALLER_TOKEN_PRIVATE_KEY": base64.StdEncoding.EncodeToString(private)}
	cfg, err := ParseConfig(fs, []string{"-user", "user-9", "-admin", "-ttl", "1h"}, func(key string) string { return env[key] })
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}

	buf := &bytes.Buffer{}
	if err := Run(cfg, buf, nil, now); err != nil {
		t.Fatalf("run: %v", err)
	}
	claims, err := callertoken.Verify(strings.TrimSpace(buf.String()), callertoken.Config{
		Issuer:   "jinrou",
		Audience: "jinrou-game",
		Key:      public,
		Now:      func() time.Time { return now.Add(time.Minute) },
	})
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.UserID != "user-9" || !claims.Admin {
		t.Fatalf("claims = %+v", claims)
	}
}

func TestRunSignRequiresKey(t *testing.T) {
	if err := Run(Config{UserID: "user-1", TTL: time.Hour}, &bytes.Buffer{}, nil, now); err == nil {
		t.Fatal("expected error without a private key")
	}
}
