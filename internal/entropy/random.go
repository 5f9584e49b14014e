// Package entropy hands out the simulation's random streams. Every stream is
// derived from one session seed so a run can be replayed; a zero seed is
// replaced by one drawn from crypto/rand.
package entropy

import (
	"crypto/rand"
	"encoding/binary"
	mrand "math/rand"
)

// Stream offsets keep independent consumers from sharing a sequence.
const (
	StreamTerrain int64 = 100
	StreamFlora   int64 = 200
	StreamAgents  int64 = 300
	StreamActions int64 = 400
)

// ResolveSeed returns seed, or a crypto-random non-zero seed when seed is 0.
func ResolveSeed(seed int64) int64 {
	for seed == 0 {
		seed = int64(cryptoUint64() >> 1)
	}
	return seed
}

// New returns the random stream for a consumer. generation distinguishes
// successive map regenerations within one session.
func New(seed, stream int64, generation int) *mrand.Rand {
	return mrand.New(mrand.NewSource(seed + stream + int64(generation)*1_000_003))
}

func cryptoUint64() uint64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// This should never happen; fall back to a fixed value.
		return 0x9E3779B97F4A7C15
	}
	return binary.LittleEndian.Uint64(buf[:])
}
