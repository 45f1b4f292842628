package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultHashCost is the bcrypt work factor used for stored passwords.
const DefaultHashCost = 12

// Hasher hashes and verifies passwords using bcrypt.
type Hasher struct {
	cost int
	// decoy is compared against when the account does not exist so that
	// unknown identifiers cost the same as wrong passwords.
	decoy []byte
}

// NewHasher builds a Hasher with the given bcrypt cost.
func NewHasher(cost int) (*Hasher, error) {
	if cost == 0 {
		cost = DefaultHashCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d out of range [%d,%d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return nil, err
	}
	decoy, err := bcrypt.GenerateFromPassword([]byte(hex.EncodeToString(buf)), cost)
	if err != nil {
		return nil, err
	}
	return &Hasher{cost: cost, decoy: decoy}, nil
}

// Cost returns the configured work factor.
func (h *Hasher) Cost() int { return h.cost }

// Hash hashes plaintext password using bcrypt.
func (h *Hasher) Hash(password string) (string, error) {
	if len(password) == 0 {
		return "", errors.New("password is empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify compares plaintext password with stored hash. A missing or malformed
// hash is reported the same way as a mismatch and costs the same.
func (h *Hasher) Verify(password, hash string) bool {
	if _, err := bcrypt.Cost([]byte(hash)); err != nil {
		h.Burn(password)
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// Burn runs a comparison against the decoy hash and discards the result.
func (h *Hasher) Burn(password string) {
	_ = bcrypt.CompareHashAndPassword(h.decoy, []byte(password))
}
