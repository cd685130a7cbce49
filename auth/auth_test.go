package auth

import (
	"strings"
	"testing"
)

func TestGenerateTokenKey(t *testing.T) {
	key, err := GenerateTokenKey()
	if err != nil {
		t.Fatalf("GenerateTokenKey failed: %v", err)
	}

	if len(key) != TokenKeyLength {
		t.Errorf("expected %d characters, got %d (%q)", TokenKeyLength, len(key), key)
	}

	for _, c := range key {
		if !strings.ContainsRune(tokenAlphabet, c) {
			t.Errorf("key %q contains %q outside the token alphabet", key, c)
		}
	}
}

func TestGenerateTokenKey_Varies(t *testing.T) {
	// Not a uniqueness proof, but 50 draws colliding would mean the RNG is
	// broken rather than unlucky.
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		key, err := GenerateTokenKey()
		if err != nil {
			t.Fatalf("GenerateTokenKey failed: %v", err)
		}
		if seen[key] {
			t.Fatalf("duplicate key %q after %d draws", key, i)
		}
		seen[key] = true
	}
}

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("s3cret-pass!")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}

	if hash == "s3cret-pass!" {
		t.Error("hash must not equal the plain password")
	}

	if err := CheckPassword(hash, "s3cret-pass!"); err != nil {
		t.Errorf("expected matching password to verify: %v", err)
	}

	if err := CheckPassword(hash, "wrong"); err != ErrInvalidCredentials {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}
