package 围碁

import (
	"math/rand"
	"sync"

	"github.com/gorgonia/weiqi/game"
)

// zobrist is a data structure for calculating Zobrist hashes.
// https://en.wikipedia.org/wiki/Zobrist_hashing
//
// The table can be thought of as a matrix of (BOARDSIZE * BOARDSIZE + 1, 2): one key per
// cell per colour. Row 0 is the pass sentinel and is never used.
//
// Tables are generated from a fixed seed and shared by every game of the same size,
// so two games that reach the same position agree on its hash.
type zobrist struct {
	table []game.Zobrist
	white game.Zobrist // xored in when White is to move
}

var (
	zobristMu     sync.Mutex
	zobristTables = make(map[int]*zobrist)
)

func zobristFor(size int) *zobrist {
	zobristMu.Lock()
	defer zobristMu.Unlock()
	if z, ok := zobristTables[size]; ok {
		return z
	}
	r := rand.New(rand.NewSource(int64(size)*7919 + 1))
	z := &zobrist{
		table: make([]game.Zobrist, (size*size+1)*2),
		white: game.Zobrist(r.Uint64()),
	}
	for i := range z.table {
		z.table[i] = game.Zobrist(r.Uint64())
	}
	zobristTables[size] = z
	return z
}

// hash computes the hash of the cells with the given player to move.
func (z *zobrist) hash(cells []game.Colour, next game.Player) (retVal game.Zobrist) {
	for i, c := range cells {
		switch c {
		case game.Black:
			retVal ^= z.table[2*i]
		case game.White:
			retVal ^= z.table[2*i+1]
		}
	}
	if game.Colour(next) == game.White {
		retVal ^= z.white
	}
	return retVal
}
