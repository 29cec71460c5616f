// Package hprandom replaces the source's process-wide Randomize singleton
// with an explicit handle: every component that consumes random bits takes
// a *Random in its constructor instead of calling a package-level rand
// function, so tests stay deterministic without hidden global state.
package hprandom

import "math/rand"

type Random struct {
	r *rand.Rand
}

// New seeds a single sequence once, at the top of a run.
func New(seed int64) *Random {
	return &Random{r: rand.New(rand.NewSource(seed))}
}

func (rnd *Random) Intn(n int) int {
	return rnd.r.Intn(n)
}

func (rnd *Random) Int63() int64 {
	return rnd.r.Int63()
}

func (rnd *Random) Float64() float64 {
	return rnd.r.Float64()
}

// Bool returns true with the given probability in [0,1].
func (rnd *Random) Bool(probability float64) bool {
	return rnd.r.Float64() < probability
}

// Shuffle permutes n elements in place via swap.
func (rnd *Random) Shuffle(n int, swap func(i, j int)) {
	rnd.r.Shuffle(n, swap)
}

// Fork derives an independent, deterministic sub-sequence for goroutine k of
// a parallel phase (see SPEC_FULL §5): each forked stream is seeded from the
// master stream's output xored with the trial index, so concurrent trials
// never share one *rand.Rand but remain reproducible given the master seed.
func (rnd *Random) Fork(trialIndex int) *Random {
	return New(rnd.Int63() ^ int64(trialIndex))
}
