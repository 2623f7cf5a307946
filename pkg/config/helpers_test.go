package config_test

import (
	"os"
	"testing"
)

// unsetForTest removes key from the environment for the duration of t. It
// must follow a t.Setenv call for the same key so the original value is
// restored on cleanup.
func unsetForTest(t *testing.T, key string) {
	t.Helper()
	if err := os.Unsetenv(key); err != nil {
		t.Fatalf("unset %s: %v", key, err)
	}
}
