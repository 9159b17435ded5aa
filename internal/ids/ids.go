// Package ids generates the identifiers used for rooms, games and players.
package ids

import (
	"encoding/base32"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
)

// Crockford's base32, lowercase.
const alphabet = "0123456789abcdefghjkmnpqrstvwxyz"

// Length is the length of every generated id.
const Length = 26

var encoding = base32.NewEncoding(alphabet).WithPadding(base32.NoPadding)

// Generator mints time-ordered ids from UUIDv7 values.
type Generator struct {
	rand io.Reader
}

// NewGenerator returns a generator reading its random bits from r. A nil r
// uses crypto/rand.
func NewGenerator(r io.Reader) *Generator {
	return &Generator{rand: r}
}

// New returns a fresh 26 character id.
func (g *Generator) New() (string, error) {
	var (
		u   uuid.UUID
		err error
	)
	if g == nil || g.rand == nil {
		u, err = uuid.NewV7()
	} else {
		u, err = uuid.NewV7FromReader(g.rand)
	}
	if err != nil {
		return "", fmt.Errorf("generate id: %w", err)
	}
	return Encode(u), nil
}

// Generate returns a new id using crypto/rand.
func Generate() (string, error) {
	return NewGenerator(nil).New()
}

// Encode renders a UUID in the id text form.
func Encode(u uuid.UUID) string {
	return encoding.EncodeToString(u[:])
}

// Decode parses an id back into its UUID.
func Decode(id string) (uuid.UUID, error) {
	if err := Validate(id); err != nil {
		return uuid.Nil, err
	}
	raw, err := encoding.DecodeString(id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("decode id %q: %w", id, err)
	}
	return uuid.FromBytes(raw)
}

// Validate checks that id is 26 characters from the id alphabet.
func Validate(id string) error {
	if len(id) != Length {
		return fmt.Errorf("id must be exactly %d characters, got %d", Length, len(id))
	}
	for i, c := range id {
		if !strings.ContainsRune(alphabet, c) {
			return fmt.Errorf("invalid character %c at position %d", c, i)
		}
	}
	return nil
}
