package mcts

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/chewxy/math32"
	"github.com/gorgonia/weiqi/game"
)

type Node struct {
	sync.Mutex // guards expansion and the value update

	// atomic access only pl0x
	leaf        uint32 // 1 until the node is expanded
	visits      uint32 // visits to this node - N(s, a) in the literature
	virtualLoss int32  // number of simulations currently passing through this node

	// float32s
	prior uint32 // actually float32. P(s, a) from the estimator. Fixed at creation
	value uint32 // actually float32. Running mean of the backed up values - Q(s, a)

	// children is indexed by action. It is written once, before leaf is cleared, and only read afterwards.
	children []naughty

	// naughty things
	parent naughty
	id     naughty
	tree   *MCTS
}

func (n *Node) Format(s fmt.State, c rune) {
	fmt.Fprintf(s, "{NodeID: %v Parent: %v, Prior: %v, Mean %v Visits %v VirtualLoss %v Leaf: %t}", n.id, n.parent, n.Prior(), n.Mean(), n.Visits(), n.VirtualLoss(), n.IsLeaf())
}

// IsLeaf returns true if the node has not been expanded
func (n *Node) IsLeaf() bool { return atomic.LoadUint32(&n.leaf) == 1 }

// Visits returns the number of backups through this node
func (n *Node) Visits() uint32 { return atomic.LoadUint32(&n.visits) }

// VirtualLoss returns the number of pending simulations that selected this node
func (n *Node) VirtualLoss() int32 { return atomic.LoadInt32(&n.virtualLoss) }

// Prior returns the probability the estimator gave the move leading to this node
func (n *Node) Prior() float32 { return math32.Float32frombits(atomic.LoadUint32(&n.prior)) }

// Mean returns the mean value of this node, from the perspective of the player who moved into it
func (n *Node) Mean() float32 { return math32.Float32frombits(atomic.LoadUint32(&n.value)) }

func (n *Node) ID() int { return int(n.id) }

// Child returns the child reached by the action, or nil if there is none.
func (n *Node) Child(a game.Single) *Node {
	if n.IsLeaf() || a < 0 || int(a) >= len(n.children) {
		return nil
	}
	kid := n.children[a]
	if !kid.isValid() {
		return nil
	}
	return n.tree.nodeFromNaughty(kid)
}

// Select selects the action with the highest upper confidence bound, and adds a virtual loss to the child.
// It returns -1 if the node has no children.
//
// The upper bound formula is as such
//	U(s, a) = Q'(s, a) + PUCT * P(s, a) * sqrt(N(s) + 1) / (1 + N(s, a))
// where Q' is the mean value, penalized by the pending virtual losses, and is left out for unvisited children.
// Ties go to the lowest action.
func (n *Node) Select(puct, virtualLoss float32) game.Single {
	tree := n.tree
	numerator := math32.Sqrt(float32(n.Visits()) + 1)

	best := game.Single(-1)
	var bestChild *Node
	var bestValue float32 = math32.Inf(-1)
	for a, kid := range n.children {
		if !kid.isValid() {
			continue
		}
		child := tree.nodeFromNaughty(kid)
		visits := float32(child.Visits())
		usa := puct * child.Prior() * numerator / (1 + visits)
		if visits > 0 {
			usa += (child.Mean()*visits - virtualLoss*float32(child.VirtualLoss())) / visits
		}
		if usa > bestValue {
			bestValue = usa
			best = game.Single(a)
			bestChild = child
		}
	}
	if bestChild != nil {
		atomic.AddInt32(&bestChild.virtualLoss, 1)
	}
	return best
}

// Expand creates a child for every action with a non zero prior. Only the first expansion of a node has any effect.
func (n *Node) Expand(priors []float32) {
	n.Lock()
	defer n.Unlock()
	if !n.IsLeaf() {
		return
	}

	children := n.children[:0]
	for _, p := range priors {
		kid := nilNode
		if math32.Abs(p) > epsilon {
			kid = n.tree.newNode(n.id, p)
		}
		children = append(children, kid)
	}
	n.children = children
	atomic.StoreUint32(&n.leaf, 0)
}

// Backup propagates the value up to the root, flipping its sign at every ply,
// then removes the virtual loss Select placed on this node and updates the mean.
//
// The mean and the visits are updated under the same lock, so a visit count always
// accounts for the values in the mean.
func (n *Node) Backup(value float32) {
	if n.parent.isValid() {
		n.tree.nodeFromNaughty(n.parent).Backup(-value)
		atomic.AddInt32(&n.virtualLoss, -1)
	}

	n.Lock()
	visits := float32(n.Visits())
	mean := (n.Mean()*visits + value) / (visits + 1)
	atomic.StoreUint32(&n.value, math32.Float32bits(mean))
	atomic.AddUint32(&n.visits, 1)
	n.Unlock()
}

// countChildren counts the number of children node a node has and number of grandkids recursively
func (n *Node) countChildren() (retVal int) {
	if n.IsLeaf() {
		return 0
	}
	for _, kid := range n.children {
		if kid.isValid() {
			retVal += n.tree.nodeFromNaughty(kid).countChildren() + 1
		}
	}
	return
}

func (n *Node) reset(parent naughty, prior float32) {
	n.children = n.children[:0]
	n.parent = parent
	atomic.StoreUint32(&n.leaf, 1)
	atomic.StoreUint32(&n.visits, 0)
	atomic.StoreInt32(&n.virtualLoss, 0)
	atomic.StoreUint32(&n.prior, math32.Float32bits(prior))
	atomic.StoreUint32(&n.value, 0)
}
