package entity

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

const (
	// KeyBytes is the length of a raw device secret.
	KeyBytes = 20
	// KeyHexLength is the length of the stored hex encoding of a secret.
	KeyHexLength = KeyBytes * 2
	// NoStep is the watermark value of a device that has never verified a token.
	NoStep int64 = -1
)

// Device is one SMS second-factor enrollment: an (account, phone number)
// pairing with its own secret and replay watermark.
type Device struct {
	ID        int64
	UserID    int64
	Number    string
	Key       string // hex-encoded secret, KeyHexLength chars
	LastStep  int64  // highest time step ever accepted; only increases
	Confirmed bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// BinKey decodes the stored hex key into the raw secret bytes the engine consumes.
func (d Device) BinKey() ([]byte, error) {
	return hex.DecodeString(d.Key)
}

// RandomKey generates a fresh device secret and returns its hex encoding.
func RandomKey() (string, error) {
	raw := make([]byte, KeyBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}

	return hex.EncodeToString(raw), nil
}

// UpdateDevice carries an administrative edit of a device record.
//
// Nil fields are left untouched. Changing the key resets nothing else: the
// watermark keeps its value so previously accepted steps stay burned.
type UpdateDevice struct {
	ID     int64
	UserID int64
	Number *string
	Key    *string
}
