// Package random seeds the pseudo-random sources handed to the game engine.
package random

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand/v2"
)

// NewSeed reads a seed from crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

// New returns a PCG source seeded from crypto/rand. The source is not safe
// for concurrent use; take one per update attempt.
func New() (*rand.Rand, error) {
	hi, err := NewSeed()
	if err != nil {
		return nil, err
	}
	lo, err := NewSeed()
	if err != nil {
		return nil, err
	}
	return FromSeed(uint64(hi), uint64(lo)), nil
}

// FromSeed returns a reproducible PCG source.
func FromSeed(hi, lo uint64) *rand.Rand {
	return rand.New(rand.NewPCG(hi, lo))
}
