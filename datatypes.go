package weiqi

import (
	"context"
	"io"

	dual "github.com/gorgonia/weiqi/dualnet"
	"github.com/gorgonia/weiqi/game"
	"github.com/gorgonia/weiqi/mcts"
)

// Config configures the engine.
type Config struct {
	Name     string
	Size     int // board width
	NNConf   dual.Config
	MCTSConf mcts.Config

	RandomTurns        int // the first RandomTurns plies of a self play game are sampled from the search policy
	ContestRandomTurns int // RandomTurns for contests between two networks
	Workers            int // number of inferencers each agent keeps in its pool

	// UseDummy uses a uniform estimator instead of the network. Useful before a network is loaded.
	UseDummy bool

	// extensions
	OutputEncoder OutputEncoder
	Augmenter     Augmenter
}

// DefaultConfig is the self play setup on a board of the given size.
func DefaultConfig(size int) Config {
	actionSpace := size*size + 1
	mconf := mcts.DefaultConfig(size)
	return Config{
		Name:               "weiqi",
		Size:               size,
		NNConf:             dual.DefaultConf(size, size, actionSpace),
		MCTSConf:           mconf,
		RandomTurns:        8,
		ContestRandomTurns: 12,
		Workers:            mconf.NumWorkers,
		Augmenter:          Augment(size),
	}
}

func (c Config) IsValid() bool {
	actionSpace := c.Size*c.Size + 1
	return c.Size >= 2 && c.Size <= game.MaxNotationWidth &&
		c.Workers >= 1 &&
		c.RandomTurns >= 0 && c.ContestRandomTurns >= 0 &&
		c.MCTSConf.IsValid() && c.MCTSConf.ActionSpace == actionSpace &&
		(c.UseDummy || (c.NNConf.IsValid() && c.NNConf.ActionSpace == actionSpace))
}

// OutputEncoder encodes the entire meta state as whatever.
//
// An example OutputEncoder is the GifEncoder. Another example would be a logger.
type OutputEncoder interface {
	Encode(ms game.MetaState) error
	Flush() error
}

// Augmenter takes an example, and creates more examples from it.
type Augmenter func(a Example) []Example

// Example is a representation of an example.
type Example struct {
	Features []float32 // the input planes of the position
	Policy   []float32 // the search policy at the position
	Value    float32   // the result of the game for the player to move: 1, -1, or 0 if unfinished

	SearchValue float32 // the value of the position according to the search
}

// Dualer is anything that holds a network: a *dual.Dual itself, or an inferencer built from one.
type Dualer interface {
	Dual() *dual.Dual
}

// Inferer is anything that can infer given an input.
type Inferer interface {
	Infer(ctx context.Context, features []float32) (policy []float32, value float32, err error)
	io.Closer
}

// ExecLogger is anything that can return the execution log.
type ExecLogger interface {
	ExecLog() string
}
