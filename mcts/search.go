package mcts

import (
	"context"

	"github.com/chewxy/math32"
	"github.com/gorgonia/weiqi/game"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"gorgonia.org/vecf32"
)

/*
Here lies the majority of the MCTS search code, while node.go and tree.go handles the data structure stuff.

A search runs Budget simulations spread over NumWorkers goroutines. Each simulation gets its own copy of the
state, descends the shared tree with virtual losses keeping the workers apart, evaluates the leaf with the
Inferencer (or with the result of the game, if it is over), expands it and backs the value up to the root.
*/

// Search runs the simulations from the given state, which must be the position at the root, and returns the
// distribution over actions that the visit counts of the root's children induce at the given temperature.
//
// If any simulation fails, the tree is reset and the error is returned.
func (t *MCTS) Search(ctx context.Context, state game.State, temperature float32) ([]float32, error) {
	if state.ActionSpace() != t.ActionSpace {
		return nil, errors.Errorf("Search: expected an action space of %d. Got %d", t.ActionSpace, state.ActionSpace())
	}
	t.log("SEARCH. Player %v. Temperature %v\n%v", state.ToMove(), temperature, state)

	tasks := make(chan game.State)
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < t.NumWorkers; i++ {
		g.Go(func() error {
			for s := range tasks {
				if err := t.simulate(gctx, s); err != nil {
					return err
				}
			}
			return nil
		})
	}

dispatch:
	for i := 0; i < t.Budget; i++ {
		select {
		case tasks <- state.Clone():
		case <-gctx.Done():
			break dispatch
		}
	}
	close(tasks)

	if err := g.Wait(); err != nil {
		t.Reset()
		return nil, errors.WithMessage(err, "Search failed")
	}
	if err := ctx.Err(); err != nil {
		t.Reset()
		return nil, errors.WithMessage(err, "Search cancelled")
	}
	t.log("Searched %d. Root %v", t.Budget, t.Root())
	return t.policy(temperature), nil
}

// simulate runs one simulation on its own copy of the state.
func (t *MCTS) simulate(ctx context.Context, state game.State) error {
	node := t.Root()
	for !node.IsLeaf() {
		a := node.Select(t.PUCT, t.VirtualLoss)
		if a < 0 {
			break
		}
		if !state.Apply(a) {
			return errors.Errorf("simulate: action %d cannot be applied. The state does not match the tree", a)
		}
		node = node.Child(a)
	}

	var value float32
	if ended, winner := state.Ended(); ended {
		value = -1
		if winner == state.ToMove() {
			value = 1
		}
	} else {
		policy, v, err := t.nn.Infer(ctx, state.Features())
		if err != nil {
			return errors.WithMessage(err, "Inference failed")
		}
		if len(policy) != t.ActionSpace {
			return errors.Errorf("Expected a policy of %d actions. Got %d", t.ActionSpace, len(policy))
		}
		node.Expand(t.priors(state, policy))
		value = v
	}

	// the value is from the point of view of the player to move at the leaf.
	// The leaf holds the value of the move that led to it, which was made by the opponent.
	node.Backup(-value)
	return nil
}

// priors masks the illegal actions out of the policy and renormalizes it. When exploring, noise is blended in.
func (t *MCTS) priors(state game.State, policy []float32) []float32 {
	mask := state.LegalMask(state.ToMove())
	legal := make([]float32, len(policy))
	for a, ok := range mask {
		if ok {
			legal[a] = 1
		}
	}

	priors := make([]float32, len(policy))
	copy(priors, policy)
	vecf32.Mul(priors, legal)
	if sum := vecf32.Sum(priors); sum > math32.SmallestNonzeroFloat32 {
		vecf32.Scale(priors, 1/sum)
	} else {
		// the estimator put all its mass on illegal moves. Pass is always legal so the sum is never 0
		copy(priors, legal)
		vecf32.Scale(priors, 1/vecf32.Sum(legal))
	}

	if t.Explore {
		noise := t.noise.sample(mask)
		vecf32.Scale(priors, 1-t.NoiseWeight)
		vecf32.Scale(noise, t.NoiseWeight)
		vecf32.Add(priors, noise)
	}
	return priors
}

// policy reduces the visit counts of the root's children to a distribution over the actions.
func (t *MCTS) policy(temperature float32) []float32 {
	retVal := make([]float32, t.ActionSpace)
	root := t.Root()

	visits := make([]float32, t.ActionSpace)
	var max float32
	if !root.IsLeaf() {
		for a, kid := range root.children {
			if !kid.isValid() {
				continue
			}
			v := float32(t.nodeFromNaughty(kid).Visits())
			visits[a] = v
			if v > max {
				max = v
			}
		}
	}
	if max == 0 {
		retVal[game.Pass] = 1
		return retVal
	}

	if temperature < greedyTemperature {
		retVal[argmax(visits)] = 1
		return retVal
	}

	// normalizing by the max visits first keeps the power from overflowing at low temperatures
	for a, v := range visits {
		if v > 0 {
			retVal[a] = math32.Pow(v/max, 1/temperature)
		}
	}
	vecf32.Scale(retVal, 1/vecf32.Sum(retVal))
	return retVal
}
