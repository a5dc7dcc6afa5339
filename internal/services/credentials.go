package services

import (
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/bcrypt"
)

// CredentialHasher turns a plaintext secret into an opaque one-way hash.
type CredentialHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
}

// BcryptHasher hashes passwords with bcrypt.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher creates a hasher; a cost of 0 uses bcrypt.DefaultCost.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

func (h *BcryptHasher) Verify(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}

// PhoneDigester maps a phone number to a keyed BLAKE2b-256 digest. Unlike a
// salted password hash the digest is deterministic, so the unique index on
// phone and the email-or-phone existence checks keep working.
type PhoneDigester struct {
	key []byte
}

// NewPhoneDigester requires a key of 1 to 64 bytes.
func NewPhoneDigester(key string) (*PhoneDigester, error) {
	if len(key) == 0 || len(key) > blake2b.Size {
		return nil, errors.New("phone hash key must be 1 to 64 bytes")
	}
	return &PhoneDigester{key: []byte(key)}, nil
}

func (d *PhoneDigester) Digest(phone string) string {
	h, err := blake2b.New256(d.key)
	if err != nil {
		// key length is checked by the constructor
		panic(err)
	}
	h.Write([]byte(phone))
	return hex.EncodeToString(h.Sum(nil))
}
