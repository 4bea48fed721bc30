package mcts

import (
	"sync"
	"time"

	rng "github.com/leesper/go_rng"
)

// noise generates Dirichlet(1, ..., 1) noise, built from Gamma(1, 1) draws.
//
// One generator is shared by all the workers of a tree.
type noise struct {
	sync.Mutex
	gen *rng.GammaGenerator
}

func newNoise(seed int64) *noise {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &noise{gen: rng.NewGammaGenerator(seed)}
}

// sample returns a sample of the noise spread over the legal actions. Illegal actions get 0.
func (n *noise) sample(mask []bool) []float32 {
	retVal := make([]float32, len(mask))
	var sum float64
	n.Lock()
	for a, ok := range mask {
		if !ok {
			continue
		}
		g := n.gen.Gamma(1, 1)
		retVal[a] = float32(g)
		sum += g
	}
	n.Unlock()

	if sum == 0 {
		return retVal
	}
	for a := range retVal {
		retVal[a] = float32(float64(retVal[a]) / sum)
	}
	return retVal
}
