package mcts

import (
	"sync"

	"github.com/gorgonia/weiqi/game"
)

const (
	blockShift = 10
	blockSize  = 1 << blockShift
	blockMask  = blockSize - 1
)

// block is a fixed size chunk of the arena. Blocks are never moved once allocated,
// so a *Node stays valid while the arena grows.
type block [blockSize]Node

// MCTS is essentially a "global" manager of sorts for the memories. The goal is to build MCTS without much pointer chasing.
//
// A tree is built for one player of one game. Search may run simulations concurrently; Advance, Reset and
// ToDot must not be called while a search is running.
type MCTS struct {
	sync.RWMutex // guards the arena
	Config
	nn    Inferencer
	noise *noise

	// memory related fields
	blocks   []*block
	count    int // slots handed out so far
	freelist []naughty

	root naughty

	lumberjack
}

// New creates a new tree with a fresh, unexpanded root. It panics if the config is not valid.
func New(conf Config, nn Inferencer) *MCTS {
	if !conf.IsValid() {
		panic("MCTS Config is not valid. Unable to proceed")
	}
	retVal := &MCTS{
		Config:     conf,
		nn:         nn,
		noise:      newNoise(conf.Seed),
		blocks:     make([]*block, 0, 8),
		lumberjack: makeLumberJack(),
	}
	go retVal.start()
	retVal.root = retVal.newNode(nilNode, 1)
	return retVal
}

// newNode creates a new unexpanded node
func (t *MCTS) newNode(parent naughty, prior float32) naughty {
	n := t.alloc()
	t.nodeFromNaughty(n).reset(parent, prior)
	return n
}

// alloc tries to get a node from the free list. If none is found a new node is allocated into the master arena
func (t *MCTS) alloc() naughty {
	t.Lock()
	defer t.Unlock()
	if l := len(t.freelist); l > 0 {
		n := t.freelist[l-1]
		t.freelist = t.freelist[:l-1]
		return n
	}

	if t.count == len(t.blocks)*blockSize {
		t.blocks = append(t.blocks, new(block))
	}
	n := naughty(t.count)
	t.count++
	N := &t.blocks[n>>blockShift][n&blockMask]
	N.id = n
	N.tree = t
	return n
}

func (t *MCTS) nodeFromNaughty(n naughty) *Node {
	t.RLock()
	b := t.blocks[n>>blockShift]
	t.RUnlock()
	return &b[n&blockMask]
}

// freeTree puts the node and all its descendants back into the freelist.
func (t *MCTS) freeTree(n naughty) {
	N := t.nodeFromNaughty(n)
	for _, kid := range N.children {
		if kid.isValid() {
			t.freeTree(kid)
		}
	}
	N.reset(nilNode, 0)
	t.Lock()
	t.freelist = append(t.freelist, n)
	t.Unlock()
}

// Root returns the root node of the tree.
func (t *MCTS) Root() *Node { return t.nodeFromNaughty(t.root) }

// Nodes returns the number of live nodes
func (t *MCTS) Nodes() int {
	t.RLock()
	defer t.RUnlock()
	return t.count - len(t.freelist)
}

// Value returns the evaluation of the root position, from the perspective of the player to move there.
func (t *MCTS) Value() float32 { return -t.Root().Mean() }

// Advance moves the root to the child reached by the action that was just played, keeping its subtree.
// Every other node is freed. If there is no such child, the tree starts over from a fresh root.
func (t *MCTS) Advance(last game.Single) {
	old := t.Root()
	if kid := old.Child(last); kid != nil {
		newRoot := kid.id
		old.children[last] = nilNode
		t.freeTree(t.root)
		kid.parent = nilNode
		t.root = newRoot
		t.log("Advanced to %v. Reused %d nodes", last, t.Nodes())
		return
	}
	t.freeTree(t.root)
	t.root = t.newNode(nilNode, 1)
	t.log("Advanced to %v. Fresh root", last)
}

// Reset throws away the whole tree and starts over from a fresh root.
func (t *MCTS) Reset() {
	t.Lock()
	t.freelist = t.freelist[:0]
	for i := 0; i < t.count; i++ {
		t.freelist = append(t.freelist, naughty(t.count-1-i))
	}
	t.Unlock()
	t.root = t.newNode(nilNode, 1)
	t.lumberjack.Reset()
}
