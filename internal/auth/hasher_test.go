package auth

import (
	"strings"
	"testing"
)

func TestHashAndVerify(t *testing.T) {
	h := NewPBKDF2Hasher()

	stored, err := h.Hash("s3cret")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !strings.Contains(stored, "$") {
		t.Fatalf("stored form should be salt$hash, got %q", stored)
	}
	if stored == "s3cret" {
		t.Fatalf("hash must not be the plaintext")
	}

	if !h.Verify("s3cret", stored) {
		t.Fatalf("correct password should verify")
	}
	if h.Verify("wrong", stored) {
		t.Fatalf("wrong password should not verify")
	}
}

func TestHashIsSalted(t *testing.T) {
	h := NewPBKDF2Hasher()
	a, err := h.Hash("same")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	b, err := h.Hash("same")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if a == b {
		t.Fatalf("equal passwords must hash differently under fresh salts")
	}
}

func TestVerifyRejectsMalformed(t *testing.T) {
	h := NewPBKDF2Hasher()
	for _, stored := range []string{"", "no-separator", "bad!base64$x", "$"} {
		if h.Verify("pw", stored) {
			t.Fatalf("malformed stored value %q should not verify", stored)
		}
	}
	if h.Verify("", "salt$hash") {
		t.Fatalf("empty password should not verify")
	}
}

func TestHashEmptyPassword(t *testing.T) {
	if _, err := NewPBKDF2Hasher().Hash(""); err == nil {
		t.Fatalf("empty password should be rejected")
	}
}
