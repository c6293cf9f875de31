package randutil

import (
	rand "math/rand/v2"
	"time"
)

const (
	goldenRatio64 = 0x9e3779b97f4a7c15
)

// New returns a *rand.Rand seeded deterministically from the provided int64.
// A zero seed selects a time-based seed; use Seed to learn which one.
func New(seed int64) *rand.Rand {
	u := uint64(Seed(seed))
	return rand.New(rand.NewPCG(mix(u), mix(u+goldenRatio64)))
}

// Seed resolves the zero seed to the current time and returns others unchanged
func Seed(seed int64) int64 {
	if seed == 0 {
		return time.Now().UnixNano()
	}
	return seed
}

// Derive returns the seed of the n-th independent stream below base,
// so parallel workers never share a sequence.
func Derive(base int64, n int) int64 {
	s := int64(mix(uint64(base) + uint64(n+1)*goldenRatio64))
	if s == 0 {
		return 1
	}
	return s
}

// Roll100 returns a uniform integer in [0, 100)
func Roll100(rng *rand.Rand) int {
	return rng.IntN(100)
}

func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
