package service

import (
	"strings"
	"testing"
)

func TestBcryptHasher_HashAndVerify(t *testing.T) {
	h := NewBcryptHasher()

	first, err := h.Hash("adminpass")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}
	second, err := h.Hash("adminpass")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}

	if first == "adminpass" {
		t.Fatalf("expected password to be hashed")
	}
	if first == second {
		t.Fatalf("expected different digests for the same plaintext")
	}
	if !strings.HasPrefix(first, "$2a$10$") {
		t.Fatalf("expected bcrypt cost 10 digest, got %q", first)
	}
	if !h.Verify("adminpass", first) || !h.Verify("adminpass", second) {
		t.Fatalf("expected both digests to verify")
	}
	if h.Verify("wrong", first) {
		t.Fatalf("wrong password must not verify")
	}
}

func TestBcryptHasher_MalformedDigest(t *testing.T) {
	h := NewBcryptHasher()
	for _, digest := range []string{"", "not-a-hash", "$2a$10$short"} {
		if h.Verify("anything", digest) {
			t.Fatalf("malformed digest %q must not verify", digest)
		}
	}
}
