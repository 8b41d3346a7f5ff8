package config

import (
	"bytes"
	"os"
	"testing"
)

func TestExitf(t *testing.T) {
	var out bytes.Buffer
	code := -1
	stderr = &out
	exit = func(c int) { code = c }
	t.Cleanup(func() {
		stderr = os.Stderr
		exit = os.Exit
	})

	Exitf("parse flags: %s", "bad port")

	if code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	if got := out.String(); got != "parse flags: bad port\n" {
		t.Fatalf("stderr = %q", got)
	}
}
