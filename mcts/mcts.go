package mcts

import (
	"context"
	"runtime"

	"github.com/gorgonia/weiqi/game"
)

// Inferencer is essentially the neural network.
//
// Given the feature planes of a state, it returns a prior over every action (including pass) and the
// value of the state from the perspective of the player to move, in [-1, 1]. Infer may block; it is the
// only place a simulation ever waits.
type Inferencer interface {
	Infer(ctx context.Context, features []float32) (policy []float32, value float32, err error)
}

// InferFunc is a function that implements Inferencer.
type InferFunc func(ctx context.Context, features []float32) ([]float32, float32, error)

func (f InferFunc) Infer(ctx context.Context, features []float32) ([]float32, float32, error) {
	return f(ctx, features)
}

const (
	// epsilon is FLT_EPSILON. Priors smaller than this do not get a child.
	epsilon = 1.1920929e-07

	// greedyTemperature is the temperature below which the search reduces to picking the most visited action.
	greedyTemperature = 1e-3
)

// Config is the structure to configure the MCTS tree
type Config struct {
	PUCT        float32 // weight of the exploration term
	VirtualLoss float32 // weight of each pending virtual loss in the exploitation term

	Budget      int // simulations per search
	NumWorkers  int // goroutines running simulations
	ActionSpace int // number of actions, including pass

	Explore     bool    // blend exploration noise into the priors of every expanded node
	NoiseWeight float32 // share of the noise in the blended priors
	Seed        int64   // seed for the noise. 0 seeds from the clock
}

func DefaultConfig(boardSize int) Config {
	return Config{
		PUCT:        5,
		VirtualLoss: 3,
		Budget:      800,
		NumWorkers:  runtime.NumCPU(),
		ActionSpace: boardSize*boardSize + 1,
		Explore:     true,
		NoiseWeight: 0.2,
	}
}

func (c Config) IsValid() bool {
	return c.PUCT > 0 &&
		c.VirtualLoss >= 0 &&
		c.Budget >= 0 &&
		c.NumWorkers >= 1 &&
		c.ActionSpace >= 1 &&
		c.NoiseWeight >= 0 && c.NoiseWeight <= 1
}

func init() {
	if !game.Pass.IsPass() {
		panic("Pass has to be Pass")
	}
}
