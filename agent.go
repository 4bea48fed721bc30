package weiqi

import (
	"context"
	"sync"

	dual "github.com/gorgonia/weiqi/dualnet"
	"github.com/gorgonia/weiqi/game"
	"github.com/gorgonia/weiqi/mcts"
	"github.com/pkg/errors"
)

// An Agent is an AI player: a search tree backed by a pool of inferencers.
type Agent struct {
	Name   string
	NN     *dual.Dual
	MCTS   *mcts.MCTS
	Player game.Player

	// Statistics
	Wins float32
	Loss float32
	Draw float32
	sync.Mutex

	inferer  chan Inferer
	inferers []Inferer
}

// NewAgent creates an agent that evaluates positions with the network, or with a uniform estimator if nn is nil.
// The agent keeps workers inferencers, so that many simulations may be evaluated at once.
func NewAgent(name string, nn *dual.Dual, conf mcts.Config, workers int) (*Agent, error) {
	a := &Agent{
		Name:     name,
		NN:       nn,
		inferers: make([]Inferer, 0, workers),
	}
	var err error
	if nn == nil {
		a.useDummy(conf.ActionSpace, workers)
	} else if err = a.SwitchToInference(workers); err != nil {
		return nil, err
	}
	a.MCTS = mcts.New(conf, a)
	return a, nil
}

// SwitchToInference uses the inference mode neural network.
func (a *Agent) SwitchToInference(workers int) (err error) {
	a.Lock()
	defer a.Unlock()
	a.inferer = make(chan Inferer, workers)

	for i := 0; i < workers; i++ {
		var inf *dual.Inferencer
		if inf, err = dual.Infer(a.NN, false); err != nil {
			return errors.WithMessage(err, "Unable to create an inferencer")
		}
		a.inferers = append(a.inferers, inf)
		a.inferer <- inf
	}
	return nil
}

// Infer borrows an inferencer from the pool to evaluate the position. This is mainly used to implement a
// mcts.Inferencer such that the MCTS search can use it.
func (a *Agent) Infer(ctx context.Context, features []float32) (policy []float32, value float32, err error) {
	var inf Inferer
	select {
	case inf = <-a.inferer:
	case <-ctx.Done():
		return nil, 0, ctx.Err()
	}
	defer func() { a.inferer <- inf }()

	if policy, value, err = inf.Infer(ctx, features); err != nil {
		if el, ok := inf.(ExecLogger); ok {
			return nil, 0, errors.WithMessagef(err, "Inference failed. Exec log:\n%v", el.ExecLog())
		}
		return nil, 0, err
	}
	return
}

// Search searches the game state and returns the search policy.
func (a *Agent) Search(ctx context.Context, g game.State, temperature float32) ([]float32, error) {
	return a.MCTS.Search(ctx, g, temperature)
}

// GenMove searches the position from a fresh tree and returns the most visited action.
// The position may have changed arbitrarily since the last call, so no subtree is kept.
func (a *Agent) GenMove(ctx context.Context, g game.State) (game.Single, error) {
	a.MCTS.Reset()
	policy, err := a.MCTS.Search(ctx, g, 0)
	if err != nil {
		return game.Pass, err
	}
	return bestChoice(policy, g.ActionSpace()), nil
}

// NNOutput returns the output of the neural network
func (a *Agent) NNOutput(ctx context.Context, g game.State) (policy []float32, value float32, err error) {
	return a.Infer(ctx, g.Features())
}

func (a *Agent) Close() error {
	a.Lock()
	defer a.Unlock()
	var allErrs manyErr
	for _, inferer := range a.inferers {
		if err := inferer.Close(); err != nil {
			allErrs = append(allErrs, err)
		}
	}
	a.inferers = a.inferers[:0]
	if len(allErrs) > 0 {
		return allErrs
	}
	return nil
}

func (a *Agent) useDummy(actionSpace, workers int) {
	a.inferer = make(chan Inferer, workers)
	for i := 0; i < workers; i++ {
		a.inferer <- dummyInferer{outputSize: actionSpace}
	}
}
