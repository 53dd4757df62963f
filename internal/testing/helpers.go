package testing

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/heuermh/eggo/internal/util/keygen"
)

// TestContext returns a context with a reasonable timeout for tests.
func TestContext(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// WritePrivateKey writes a fresh OpenSSH private key into a temp dir and
// returns its path.
func WritePrivateKey(t *testing.T) string {
	t.Helper()
	kp, err := keygen.GenerateEd25519KeyPair("test")
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}
	path := filepath.Join(t.TempDir(), "id.pem")
	if err := os.WriteFile(path, kp.PrivateKey, 0o600); err != nil {
		t.Fatalf("failed to write key: %v", err)
	}
	return path
}
