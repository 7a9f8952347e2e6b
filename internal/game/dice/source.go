package dice

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand"
)

// seededSource is a deterministic Source. Two sources built from the same
// seed yield identical sequences for identical call sequences.
type seededSource struct {
	rng *rand.Rand
}

// NewSeededSource returns a deterministic Source for seed.
//
// Postcondition: Every value returned by Intn is in [0, n).
func NewSeededSource(seed int64) Source {
	return &seededSource{rng: rand.New(rand.NewSource(seed))}
}

// Intn returns a pseudo-random int in [0, n).
//
// Precondition: n > 0.
func (s *seededSource) Intn(n int) int {
	if n <= 0 {
		panic("dice: Intn called with n <= 0")
	}
	return s.rng.Intn(n)
}

// NewSeed generates a fresh seed from crypto/rand for callers that do not
// pin one.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("dice: read random seed: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(b[:])), nil
}
