// Package ticket issues booking references handed to guests.
package ticket

import (
	"strings"

	"github.com/google/uuid"
)

// Crockford's base32 alphabet: no I, L, O or U, so references survive being read aloud.
const alphabet = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

const (
	prefix     = "HB"
	groups     = 3
	groupWidth = 4
)

// Generator produces booking references.
type Generator interface {
	Generate() string
}

// RandomGenerator draws references from a random (v4) UUID, so a reference
// says nothing about the booking, hotel, guest or booking volume.
type RandomGenerator struct{}

// NewGenerator returns the default reference generator.
func NewGenerator() Generator {
	return RandomGenerator{}
}

// Generate returns a reference such as "HB-7K2M-Q9XD-4TAZ" carrying 60 random bits.
func (RandomGenerator) Generate() string {
	id := uuid.New()

	// Bytes 6 and 8 carry the version and variant; skip them.
	var bits uint64
	for _, b := range append(id[0:6:6], id[10:12]...) {
		bits = bits<<8 | uint64(b)
	}

	var sb strings.Builder
	sb.WriteString(prefix)
	for g := 0; g < groups; g++ {
		sb.WriteByte('-')
		for i := 0; i < groupWidth; i++ {
			sb.WriteByte(alphabet[bits&31])
			bits >>= 5
		}
	}
	return sb.String()
}

// Func adapts a plain function to a Generator.
type Func func() string

func (f Func) Generate() string { return f() }
