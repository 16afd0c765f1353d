package services

import (
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Hasher is the credential service: one-way hashing and comparison.
type Hasher interface {
	Hash(plaintext string) (string, error)
	Compare(plaintext, hashed string) bool
	// IsHashed reports whether stored looks like output of Hash rather than a legacy plaintext value.
	IsHashed(stored string) bool
}

type BcryptHasher struct {
	Cost int
}

func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{Cost: cost}
}

func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.Cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (h *BcryptHasher) Compare(plaintext, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plaintext)) == nil
}

func (h *BcryptHasher) IsHashed(stored string) bool {
	if len(stored) != 60 {
		return false
	}
	for _, prefix := range []string{"$2a$", "$2b$", "$2y$"} {
		if strings.HasPrefix(stored, prefix) {
			return true
		}
	}
	return false
}
