package engine

import (
	"crypto/sha256"
	"encoding/hex"
	"math/rand/v2"
)

// Source is the randomness a shoe is shuffled with. IntN returns a value in [0, n).
// Implementations are not safe for concurrent use; every simulation shard owns its own.
type Source interface {
	IntN(n int) int
}

// Seeds identifies a provably-fair stream. Server is used as the HMAC key as-is.
type Seeds struct {
	Server string `json:"server"`
	Client string `json:"client"`
}

// ServerHash returns the hex SHA-256 of the server seed, the value safe to publish before play.
func (s Seeds) ServerHash() string {
	if s.Server == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(s.Server))
	return hex.EncodeToString(sum[:])
}

// SeededSource is a PCG generator. Two sources built from the same seed produce
// identical sequences, which is what makes simulations reproducible.
type SeededSource struct {
	seed uint64
	rng  *rand.Rand
}

// NewSeededSource creates a PCG-backed source for seed.
func NewSeededSource(seed uint64) *SeededSource {
	return &SeededSource{
		seed: seed,
		rng:  rand.New(rand.NewPCG(seed, splitmix64(seed))),
	}
}

// IntN returns a uniform integer in [0, n).
func (s *SeededSource) IntN(n int) int {
	return s.rng.IntN(n)
}

// Seed returns the seed the source was created with.
func (s *SeededSource) Seed() uint64 {
	return s.seed
}

// FairSource draws integers from the HMAC-SHA256 float stream, so a shoe
// shuffled with it can be re-derived by anyone holding the seeds.
type FairSource struct {
	stream *hmacStream
}

// NewFairSource starts the stream for seeds and nonce at round 0.
func NewFairSource(seeds Seeds, nonce uint64) *FairSource {
	return &FairSource{stream: newHMACStream(seeds, nonce)}
}

// IntN maps the next float onto [0, n).
func (f *FairSource) IntN(n int) int {
	idx := int(f.stream.float() * float64(n))
	if idx >= n {
		return n - 1
	}
	return idx
}

// ShardSeed derives an independent seed for shard i of a run seeded with seed.
// Shard 0 keeps the run seed so a single-shard run matches an unsharded one.
func ShardSeed(seed uint64, shard int) uint64 {
	if shard == 0 {
		return seed
	}
	return splitmix64(seed + uint64(shard)*0x9e3779b97f4a7c15)
}

func splitmix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}
