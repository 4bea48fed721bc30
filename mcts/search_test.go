package mcts

import (
	"context"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gorgonia/weiqi/game"
	wq "github.com/gorgonia/weiqi/game/wq"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uniformInferencer(actionSpace int, calls *int32) Inferencer {
	return InferFunc(func(ctx context.Context, features []float32) ([]float32, float32, error) {
		if calls != nil {
			atomic.AddInt32(calls, 1)
		}
		policy := make([]float32, actionSpace)
		for i := range policy {
			policy[i] = 1 / float32(actionSpace)
		}
		return policy, 0.1, nil
	})
}

// checkVirtualLosses checks that no virtual loss is left anywhere in the tree.
func checkVirtualLosses(t *testing.T, n *Node) {
	if vl := n.VirtualLoss(); vl != 0 {
		t.Errorf("Expected no virtual loss left. Node %v", n)
	}
	if n.IsLeaf() {
		return
	}
	for a := range n.children {
		if kid := n.Child(game.Single(a)); kid != nil {
			checkVirtualLosses(t, kid)
		}
	}
}

func TestMCTS_Search(t *testing.T) {
	assert := assert.New(t)
	g := wq.New(wq.DefaultSize)
	g.Apply(1) // A8
	conf := testConfig(g.ActionSpace())
	conf.Explore = true

	var calls int32
	tree := New(conf, uniformInferencer(conf.ActionSpace, &calls))
	policy, err := tree.Search(context.Background(), g, 1)
	require.NoError(t, err)

	assert.Len(policy, 65)
	var sum float32
	for _, p := range policy {
		sum += p
	}
	assert.InDelta(1, sum, 1e-5)
	assert.Equal(float32(0), policy[1], "occupied squares get no mass")

	root := tree.Root()
	assert.Equal(uint32(conf.Budget), root.Visits())
	assert.True(atomic.LoadInt32(&calls) <= int32(conf.Budget), "finished games are not sent to the estimator")
	assert.True(atomic.LoadInt32(&calls) > 0)
	assert.Nil(root.Child(1))
	checkVirtualLosses(t, root)

	// at temperature 1 the policy is proportional to the visits
	var visits float32
	for a := range root.children {
		if kid := root.Child(game.Single(a)); kid != nil {
			visits += float32(kid.Visits())
		}
	}
	for a, p := range policy {
		if kid := root.Child(game.Single(a)); kid != nil {
			assert.InDelta(float32(kid.Visits())/visits, p, 1e-5)
		}
	}
	ended, _ := g.Ended()
	assert.False(ended)
	assert.Equal(1, g.MoveNumber(), "search does not touch the state it is given")
}

func TestMCTS_SearchGreedy(t *testing.T) {
	g := wq.New(5)
	conf := testConfig(g.ActionSpace())
	tree := New(conf, uniformInferencer(conf.ActionSpace, nil))
	policy, err := tree.Search(context.Background(), g, 0)
	require.NoError(t, err)

	var best game.Single
	var ones int
	for a, p := range policy {
		switch p {
		case 1:
			ones++
			best = game.Single(a)
		case 0:
		default:
			t.Errorf("Expected a one hot policy. Got %v at %d", p, a)
		}
	}
	assert.Equal(t, 1, ones)

	max := tree.Root().Child(best).Visits()
	for a := range tree.Root().children {
		kid := tree.Root().Child(game.Single(a))
		if kid == nil {
			continue
		}
		assert.True(t, kid.Visits() <= max)
		if kid.Visits() == max {
			assert.Equal(t, best, game.Single(a), "ties go to the lowest action")
			break
		}
	}
}

func TestMCTS_SearchEnded(t *testing.T) {
	assert := assert.New(t)
	g := wq.New(5)
	g.Apply(game.Pass)
	g.Apply(game.Pass)
	ended, _ := g.Ended()
	require.True(t, ended)

	var calls int32
	conf := testConfig(g.ActionSpace())
	tree := New(conf, uniformInferencer(conf.ActionSpace, &calls))
	policy, err := tree.Search(context.Background(), g, 1)
	require.NoError(t, err)

	assert.Equal(int32(0), calls, "finished games are never sent to the estimator")
	assert.Equal(float32(1), policy[game.Pass])
	assert.True(tree.Root().IsLeaf())

	// an empty board goes to White, and Black is to move
	assert.Equal(float32(-1), tree.Value())
}

func TestMCTS_SearchErrors(t *testing.T) {
	g := wq.New(5)
	conf := testConfig(g.ActionSpace())

	failing := InferFunc(func(ctx context.Context, features []float32) ([]float32, float32, error) {
		return nil, 0, errors.New("estimator is on fire")
	})
	tree := New(conf, failing)
	_, err := tree.Search(context.Background(), g, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "estimator is on fire")
	assert.Equal(t, 1, tree.Nodes(), "a failed search resets the tree")
	assert.True(t, tree.Root().IsLeaf())

	short := InferFunc(func(ctx context.Context, features []float32) ([]float32, float32, error) {
		return make([]float32, 3), 0, nil
	})
	tree = New(conf, short)
	_, err = tree.Search(context.Background(), g, 1)
	assert.Error(t, err)

	tree = New(testConfig(82), uniformInferencer(82, nil))
	_, err = tree.Search(context.Background(), g, 1)
	assert.Error(t, err, "the action space has to match the game")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	tree = New(conf, uniformInferencer(conf.ActionSpace, nil))
	_, err = tree.Search(ctx, g, 1)
	assert.Error(t, err)
}

// A position that moved on without Advance no longer matches the tree.
func TestMCTS_SearchOutOfSync(t *testing.T) {
	g := wq.New(5)
	conf := testConfig(g.ActionSpace())
	conf.Budget = 8
	// all the mass on A5, so that A5 is the only child of the root
	onlyA5 := InferFunc(func(ctx context.Context, features []float32) ([]float32, float32, error) {
		policy := make([]float32, conf.ActionSpace)
		policy[1] = 1
		return policy, 0, nil
	})
	tree := New(conf, onlyA5)

	policy, err := tree.Search(context.Background(), g, 0)
	require.NoError(t, err)
	require.Equal(t, float32(1), policy[1])
	require.True(t, g.Apply(1))

	_, err = tree.Search(context.Background(), g, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not match the tree")
	assert.Equal(t, uint32(0), tree.Root().Visits(), "the tree is reset")
}

func TestMCTS_Advance(t *testing.T) {
	assert := assert.New(t)
	g := wq.New(5)
	conf := testConfig(g.ActionSpace())
	tree := New(conf, uniformInferencer(conf.ActionSpace, nil))
	policy, err := tree.Search(context.Background(), g, 0)
	require.NoError(t, err)

	best := game.Single(argmax(policy))
	kid := tree.Root().Child(best)
	visits := kid.Visits()
	before := tree.Nodes()

	tree.Advance(best)
	root := tree.Root()
	assert.Equal(kid, root, "the child becomes the root")
	assert.Equal(visits, root.Visits())
	assert.False(root.parent.isValid())
	assert.Equal(root.countChildren()+1, tree.Nodes())
	assert.True(tree.Nodes() < before)

	// freed nodes are reused
	g.Apply(best)
	_, err = tree.Search(context.Background(), g, 1)
	require.NoError(t, err)
	checkVirtualLosses(t, tree.Root())

	// an action that was never expanded starts a fresh tree
	tree.Reset()
	assert.Equal(1, tree.Nodes())
	tree.Advance(3)
	assert.Equal(1, tree.Nodes())
	assert.True(tree.Root().IsLeaf())
	assert.Equal(uint32(0), tree.Root().Visits())
}

func TestMCTS_Priors(t *testing.T) {
	assert := assert.New(t)
	g := wq.New(3)
	g.Apply(5) // centre
	conf := testConfig(g.ActionSpace())
	tree := New(conf, nopInferencer())

	policy := make([]float32, 10)
	policy[5] = 0.5
	policy[1] = 0.25
	policy[2] = 0.25
	priors := tree.priors(g, policy)
	assert.Equal(float32(0), priors[5])
	assert.InDelta(0.5, priors[1], 1e-6)
	assert.InDelta(0.5, priors[2], 1e-6)

	// all the mass on an illegal move falls back to uniform over the legal moves
	policy = make([]float32, 10)
	policy[5] = 1
	priors = tree.priors(g, policy)
	for a, p := range priors {
		if a == 5 {
			assert.Equal(float32(0), p)
			continue
		}
		assert.InDelta(1.0/9, p, 1e-6)
	}

	// noise keeps the priors a distribution over the legal moves
	tree.Explore = true
	priors = tree.priors(g, policy)
	var sum float32
	for _, p := range priors {
		sum += p
	}
	assert.InDelta(1, sum, 1e-5)
	assert.Equal(float32(0), priors[5])
}

func TestMCTS_ToDot(t *testing.T) {
	g := wq.New(3)
	conf := testConfig(g.ActionSpace())
	conf.Budget = 20
	tree := New(conf, uniformInferencer(conf.ActionSpace, nil))
	_, err := tree.Search(context.Background(), g, 1)
	require.NoError(t, err)

	dot := tree.ToDot(game.Notation(3).Encode)
	assert.True(t, strings.HasPrefix(dot, "digraph"))
	assert.Contains(t, dot, "root")
	assert.Contains(t, dot, "->")
}
