package synth

import (
	"math/rand/v2"
	"sync"
)

// Rand is the random source the synthesizers draw from.
// *rand.Rand from math/rand/v2 satisfies it.
type Rand interface {
	IntN(n int) int
}

// lockedRand makes a Rand safe for concurrent pipelines.
type lockedRand struct {
	mu sync.Mutex
	r  Rand
}

func (l *lockedRand) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.IntN(n)
}

// NewSeeded returns a deterministic source, mainly for tests.
func NewSeeded(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// NewRandom returns a source seeded from the runtime's entropy.
func NewRandom() *rand.Rand {
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// Locked wraps r so several synthesizers can share it across goroutines.
func Locked(r Rand) Rand {
	return guard(r)
}

func guard(r Rand) Rand {
	if r == nil {
		r = NewRandom()
	}
	if _, ok := r.(*lockedRand); ok {
		return r
	}
	return &lockedRand{r: r}
}

func pick(r Rand, items []string) string {
	return items[r.IntN(len(items))]
}
