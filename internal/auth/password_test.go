package auth

import (
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
)

func TestHasherDefaultCost(t *testing.T) {
	h, err := NewHasher(0)
	if err != nil {
		t.Fatalf("NewHasher: %v", err)
	}
	if h.Cost() != 12 {
		t.Fatalf("expected cost 12, got %d", h.Cost())
	}
	hash, err := h.Hash("secret1")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	cost, err := bcrypt.Cost([]byte(hash))
	if err != nil {
		t.Fatalf("bcrypt.Cost: %v", err)
	}
	if cost != 12 {
		t.Fatalf("stored hash has cost %d", cost)
	}
}

func TestHashAndVerify(t *testing.T) {
	h, err := NewHasher(bcrypt.MinCost)
	if err != nil {
		t.Fatalf("NewHasher: %v", err)
	}
	hash, err := h.Hash("secret1")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if hash == "secret1" || strings.Contains(hash, "secret1") {
		t.Fatal("hash must not contain plaintext")
	}
	if !h.Verify("secret1", hash) {
		t.Fatal("expected password to verify")
	}
	if h.Verify("wrong", hash) {
		t.Fatal("expected mismatch")
	}
	if h.Verify("secret1", "not-a-bcrypt-hash") {
		t.Fatal("malformed hash must not verify")
	}
	if h.Verify("secret1", "") {
		t.Fatal("empty hash must not verify")
	}
}

func TestHashRejectsEmptyAndBadCost(t *testing.T) {
	h, _ := NewHasher(bcrypt.MinCost)
	if _, err := h.Hash(""); err == nil {
		t.Fatal("expected error for empty password")
	}
	if _, err := NewHasher(64); err == nil {
		t.Fatal("expected error for cost out of range")
	}
}

func TestVerifyMalformedHashCostsLikeMismatch(t *testing.T) {
	h, err := NewHasher(10)
	if err != nil {
		t.Fatalf("NewHasher: %v", err)
	}
	hash, err := h.Hash("secret1")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}

	start := time.Now()
	if h.Verify("wrong", hash) {
		t.Fatal("expected mismatch")
	}
	mismatch := time.Since(start)

	for _, malformed := range []string{"not-a-bcrypt-hash", "$2a$10$short", ""} {
		start = time.Now()
		if h.Verify("secret1", malformed) {
			t.Fatalf("malformed hash %q must not verify", malformed)
		}
		if took := time.Since(start); took < mismatch/4 {
			t.Fatalf("malformed hash %q returned in %s, mismatch took %s", malformed, took, mismatch)
		}
	}
}
