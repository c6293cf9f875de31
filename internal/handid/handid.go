// Package handid generates sortable identifiers for recorded hands: a UUIDv7
// written as 26 characters of Crockford base32.
package handid

import (
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
)

// Length is the number of characters in an ID
const Length = 26

// Crockford's base32, as used by TypeID
const alphabet = "0123456789abcdefghjkmnpqrstvwxyz"

// New returns a fresh ID
func New() (string, error) {
	u, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate hand id: %w", err)
	}
	return Encode(u), nil
}

// FromReader returns an ID whose random bits are read from r
func FromReader(r io.Reader) (string, error) {
	u, err := uuid.NewV7FromReader(r)
	if err != nil {
		return "", fmt.Errorf("generate hand id: %w", err)
	}
	return Encode(u), nil
}

// Encode writes the 128 bits of u, left padded to 130, as 26 base32 characters
func Encode(u uuid.UUID) string {
	hi, lo := split(u)
	var out [Length]byte
	for i := range out {
		shift := uint(125 - 5*i)
		out[i] = alphabet[shr128(hi, lo, shift)&0x1f]
	}
	return string(out[:])
}

// Decode parses an ID back into its UUID
func Decode(id string) (uuid.UUID, error) {
	if err := Validate(id); err != nil {
		return uuid.Nil, err
	}
	var hi, lo uint64
	for i := range len(id) {
		v := uint64(strings.IndexByte(alphabet, id[i]))
		hi = hi<<5 | lo>>59
		lo = lo<<5 | v
	}

	var u uuid.UUID
	for i := range 8 {
		u[i] = byte(hi >> (56 - 8*i))
		u[8+i] = byte(lo >> (56 - 8*i))
	}
	return u, nil
}

// Validate checks that id has the right length and alphabet
func Validate(id string) error {
	if len(id) != Length {
		return fmt.Errorf("hand ID must be exactly %d characters, got %d", Length, len(id))
	}
	// the two padding bits keep the first character within 0-7
	if id[0] > '7' {
		return fmt.Errorf("hand ID first character must be 0-7, got %c", id[0])
	}
	for i := range len(id) {
		if strings.IndexByte(alphabet, id[i]) < 0 {
			return fmt.Errorf("invalid character %c at position %d", id[i], i)
		}
	}
	return nil
}

func split(u uuid.UUID) (hi, lo uint64) {
	for i := range 8 {
		hi = hi<<8 | uint64(u[i])
		lo = lo<<8 | uint64(u[8+i])
	}
	return hi, lo
}

func shr128(hi, lo uint64, s uint) uint64 {
	switch {
	case s == 0:
		return lo
	case s >= 64:
		return hi >> (s - 64)
	default:
		return lo>>s | hi<<(64-s)
	}
}
