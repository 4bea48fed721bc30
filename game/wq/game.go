package 围碁

import (
	"fmt"

	"github.com/gorgonia/weiqi/game"
	"github.com/pkg/errors"
)

var _ game.State = &Game{}

// historicalBoard is a position that has occurred in the game: the board and the player to move.
type historicalBoard struct {
	board []game.Colour
	next  game.Player
}

// Game implements game.State.
//
// A Game enforces positional superko: a move may not recreate a (board, player to move) pair
// that has already occurred earlier in the same game.
type Game struct {
	board      *Board
	history    []game.PlayerMove
	historical map[game.Zobrist][]historicalBoard // positions seen so far, bucketed by hash
	nextToMove game.Player
	keys       *zobrist

	threshold float32 // Black wins when its area score is above this
	passes    int     // count of consecutive passes
}

// New creates a new game on an empty board of the given size. Black moves first.
func New(boardSize int) *Game {
	if boardSize < 2 || boardSize > game.MaxNotationWidth {
		panic(fmt.Sprintf("Unsupported board size %d", boardSize))
	}
	return &Game{
		board:      newBoard(boardSize),
		historical: make(map[game.Zobrist][]historicalBoard),
		history:    make([]game.PlayerMove, 0, boardSize*boardSize),
		nextToMove: BlackP,
		keys:       zobristFor(boardSize),
		threshold:  float32(boardSize*boardSize)/2 + TieBreak,
	}
}

func (g *Game) BoardSize() int { return int(g.board.size) }

// Board returns a copy of the board state, rowmajor from the top left.
// The cells of the game are shared with its superko history, so they are never handed out.
func (g *Game) Board() []game.Colour {
	retVal := make([]game.Colour, len(g.board.data)-1)
	copy(retVal, g.board.data[1:])
	return retVal
}

func (g *Game) Hash() game.Zobrist { return g.keys.hash(g.board.data, g.nextToMove) }

func (g *Game) ActionSpace() int { return len(g.board.data) }

func (g *Game) SetToMove(p game.Player) { g.nextToMove = p }

func (g *Game) ToMove() game.Player { return g.nextToMove }

func (g *Game) LastMove() game.PlayerMove {
	if len(g.history) > 0 {
		return g.history[len(g.history)-1]
	}
	return game.PlayerMove{Player: game.Player(game.None), Single: game.Pass}
}

// History returns a copy of the moves made so far.
func (g *Game) History() []game.PlayerMove {
	retVal := make([]game.PlayerMove, len(g.history))
	copy(retVal, g.history)
	return retVal
}

func (g *Game) Passes() int { return g.passes }

func (g *Game) MoveNumber() int { return len(g.history) }

// Threshold is the score Black needs to exceed in order to win.
func (g *Game) Threshold() float32 { return g.threshold }

// Score returns the area score of Black.
func (g *Game) Score() float32 { return g.board.Score() }

// Ended reports whether the game is over. Two consecutive passes is the only way a game ends.
func (g *Game) Ended() (ended bool, winner game.Player) {
	if g.passes < 2 {
		return false, game.Player(game.None)
	}
	if g.Score() > g.threshold {
		return true, BlackP
	}
	return true, WhiteP
}

// seen checks if the position has occurred before.
func (g *Game) seen(cells []game.Colour, next game.Player) bool {
	for _, h := range g.historical[g.keys.hash(cells, next)] {
		if h.next == next && sameCells(h.board, cells) {
			return true
		}
	}
	return false
}

func (g *Game) record(b *Board, next game.Player) {
	h := g.keys.hash(b.data, next)
	if g.seen(b.data, next) {
		return
	}
	g.historical[h] = append(g.historical[h], historicalBoard{board: b.data, next: next})
}

// legal checks a move for the given player, including the superko rule.
func (g *Game) legal(a game.Single, p game.Player) bool {
	if a.IsPass() {
		return true
	}
	next, ok := g.board.tryMove(a, game.Colour(p), false)
	if !ok {
		return false
	}
	return !g.seen(next.data, Opponent(p))
}

// LegalMask returns the legality of every action for the given player, indexed by action.
// Pass is always legal.
func (g *Game) LegalMask(p game.Player) []bool {
	retVal := make([]bool, g.ActionSpace())
	for i := range retVal {
		retVal[i] = g.legal(game.Single(i), p)
	}
	return retVal
}

// LegalMoves lists the legal actions for the given player, starting with pass.
func (g *Game) LegalMoves(p game.Player) []game.Single {
	retVal := []game.Single{game.Pass}
	for i := 1; i < g.ActionSpace(); i++ {
		if g.legal(game.Single(i), p) {
			retVal = append(retVal, game.Single(i))
		}
	}
	return retVal
}

// Check checks if the move is legal.
func (g *Game) Check(m game.PlayerMove) bool {
	if !IsValid(m.Player) || m.Single < 0 || int(m.Single) >= g.ActionSpace() {
		return false
	}
	return g.legal(m.Single, m.Player)
}

// Apply plays the action for the player to move. The superko rule is not checked; callers are expected
// to only apply actions from LegalMask. Apply returns false, leaving the game untouched, if no stone
// can be placed there.
func (g *Game) Apply(a game.Single) bool { return g.apply(a, g.nextToMove) }

// Play plays a move for the given player, who then becomes the player who moved last.
// Unlike Apply, illegal moves (including superko violations) are reported as an error.
func (g *Game) Play(m game.PlayerMove) error {
	if !IsValid(m.Player) {
		return errors.WithMessage(moveError(m), "Impossible player")
	}
	if m.Single < 0 || int(m.Single) >= g.ActionSpace() {
		return errors.WithMessage(moveError(m), "Impossible move")
	}
	if !m.Single.IsPass() && g.board.data[m.Single] != game.None {
		return errors.WithMessage(moveError(m), "Application Failure - board location not empty.")
	}
	if !g.legal(m.Single, m.Player) {
		return errors.WithMessage(moveError(m), "Suicide or superko")
	}
	g.apply(m.Single, m.Player)
	return nil
}

func (g *Game) apply(a game.Single, p game.Player) bool {
	opponent := Opponent(p)
	if a.IsPass() {
		g.passes++
	} else {
		next, ok := g.board.tryMove(a, game.Colour(p), false)
		if !ok {
			return false
		}
		g.passes = 0
		g.board = next
	}
	g.record(g.board, opponent)
	g.history = append(g.history, game.PlayerMove{Player: p, Single: a})
	g.nextToMove = opponent
	return true
}

// Features returns the input planes for the estimator, each size*size long:
// Black stones, White stones, and a plane of ones if White is to move.
func (g *Game) Features() []float32 {
	cells := g.board.data[1:]
	size := len(cells)
	retVal := make([]float32, 3*size)
	for i, c := range cells {
		switch c {
		case game.Black:
			retVal[i] = 1
		case game.White:
			retVal[size+i] = 1
		}
	}
	if g.nextToMove == WhiteP {
		plane := retVal[2*size:]
		for i := range plane {
			plane[i] = 1
		}
	}
	return retVal
}

// Reset resets the game to an empty board with Black to move.
func (g *Game) Reset() {
	g.board = newBoard(int(g.board.size))
	g.history = g.history[:0]
	g.historical = make(map[game.Zobrist][]historicalBoard)
	g.nextToMove = BlackP
	g.passes = 0
}

func (g *Game) Eq(other game.State) bool {
	ot, ok := other.(*Game)
	if !ok {
		return false
	}

	// easy to check stuff first
	if g.nextToMove != ot.nextToMove ||
		g.passes != ot.passes ||
		g.threshold != ot.threshold ||
		len(g.history) != len(ot.history) ||
		len(g.historical) != len(ot.historical) {
		return false
	}

	// heavier checks
	if !g.board.Eq(ot.board) {
		return false
	}
	for i, pm := range g.history {
		if !pm.Eq(ot.history[i]) {
			return false
		}
	}
	for _, hs := range g.historical {
		for _, h := range hs {
			if !ot.seen(h.board, h.next) {
				return false
			}
		}
	}
	return true
}

// Clone returns an independent copy of the game. The recorded positions are never mutated, so only
// the buckets holding them are copied.
func (g *Game) Clone() game.State {
	newState := &Game{
		board:      g.board.Clone(),
		history:    make([]game.PlayerMove, len(g.history), len(g.history)+1),
		historical: make(map[game.Zobrist][]historicalBoard, len(g.historical)+1),
		nextToMove: g.nextToMove,
		keys:       g.keys,
		threshold:  g.threshold,
		passes:     g.passes,
	}
	copy(newState.history, g.history)
	for h, bucket := range g.historical {
		newState.historical[h] = append([]historicalBoard(nil), bucket...)
	}
	return newState
}

// Format implements fmt.Formatter
func (g *Game) Format(s fmt.State, c rune) {
	switch c {
	case 's', 'v':
		fmt.Fprintf(s, "%s", g.board)
		if ended, winner := g.Ended(); ended {
			fmt.Fprintf(s, "Score %v. Winner %v\n", g.Score(), winner)
			return
		}
		fmt.Fprintf(s, "Move %d. %v to move\n", g.MoveNumber(), g.nextToMove)
	}
}
