package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/example/kdyvoda/internal/application"
)

func TestHashPassword_FromPipe(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stdin")
	if err := os.WriteFile(path, []byte("open-sesame\n"), 0o600); err != nil {
		t.Fatalf("failed to write stdin file: %v", err)
	}
	stdin, err := os.Open(path)
	if err != nil {
		t.Fatalf("failed to open stdin file: %v", err)
	}
	defer stdin.Close()

	var stdout, stderr bytes.Buffer
	if err := HashPassword(stdin, &stdout, &stderr); err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}

	hash := strings.TrimSpace(stdout.String())
	if !strings.HasPrefix(hash, "$argon2id$") {
		t.Fatalf("expected argon2id hash, got %q", hash)
	}
	if err := application.VerifyPassword(hash, "open-sesame"); err != nil {
		t.Fatalf("expected hash to verify, got %v", err)
	}
	if err := application.VerifyPassword(hash, "wrong"); err == nil {
		t.Fatalf("expected wrong password to fail verification")
	}
}

func TestHashPassword_RejectsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stdin")
	if err := os.WriteFile(path, []byte("\n"), 0o600); err != nil {
		t.Fatalf("failed to write stdin file: %v", err)
	}
	stdin, err := os.Open(path)
	if err != nil {
		t.Fatalf("failed to open stdin file: %v", err)
	}
	defer stdin.Close()

	var stdout, stderr bytes.Buffer
	if err := HashPassword(stdin, &stdout, &stderr); err == nil {
		t.Fatalf("expected error for empty password")
	}
}
