package game

import (
	"fmt"
)

type Colour int32

const (
	None Colour = iota
	Black
	White
)

func (cl Colour) Format(s fmt.State, c rune) {
	switch c {
	case 'v': // used in debug
		switch cl {
		case None:
			fmt.Fprint(s, "None")
		case Black:
			fmt.Fprint(s, "Black")
		case White:
			fmt.Fprint(s, "White")
		default:
			fmt.Fprintf(s, "Colour(%d)", int32(cl))
		}
	case 's': // used in board games
		switch cl {
		case Black:
			fmt.Fprint(s, "X")
		case White:
			fmt.Fprint(s, "O")
		default:
			fmt.Fprint(s, "·")
		}
	}
}

// Player represents a player. It's also a colour. Black always moves first.
type Player Colour

func (p Player) Format(s fmt.State, c rune) { Colour(p).Format(s, c) }

// PlayerMove is a tuple indicating the player and the move to be made.
type PlayerMove struct {
	Player
	Single
}

// Eq returns true if both are equal
func (p PlayerMove) Eq(other PlayerMove) bool {
	return p.Player == other.Player && p.Single == other.Single
}

func (p PlayerMove) Format(s fmt.State, c rune) { fmt.Fprintf(s, "%v@%d", p.Player, p.Single) }

// Coord represents a (row, col) coordinate.
//
// The Coord uses a standard computer cartesian coordinates
//		- (0, 0) represents the top left
//		- (7, 7) represents the bottom right of a 8x8 board
//		- (-1, -1) represents a "pass" move
type Coord struct {
	X, Y int16
}

func (c Coord) Eq(other Coord) bool { return c.X == other.X && c.Y == other.Y }

// IsPass returns true when the coordinate represents a "pass" move
func (c Coord) IsPass() bool { return c.X == -1 && c.Y == -1 }

// Single is an action. Board squares are numbered in a rowmajor fashion starting from 1.
//		- 0 represents the "pass" move
//		- 1 represents the top left
//		- 8 represents the top right of a 8x8 board
//		- 9 represents (1, 0)
type Single int32

// Pass is the pass action. It is always legal.
const Pass Single = 0

// IsPass returns true when the action is a "pass" move
func (c Single) IsPass() bool { return c == Pass }

// State is any game that implements these and are able to report back.
//
// The search only ever works on these methods, so any game with pass-terminated,
// alternating turns may be searched.
type State interface {
	// These methods represent the game state
	BoardSize() int       // returns the width of the square board
	Board() []Colour      // returns the board state, without the pass sentinel
	ActionSpace() int     // returns the number of permissible actions, including pass
	Hash() Zobrist        // returns the hash of the board and the player to move
	ToMove() Player       // returns the next player to move (terminology is a bit confusing - this means the current player)
	Passes() int          // returns number of consecutive passes that have been made
	MoveNumber() int      // returns count of moves so far that led to this point.
	LastMove() PlayerMove // returns the last move that was made

	// Meta-game stuff
	Score() float32                     // area score of the first player
	Ended() (ended bool, winner Player) // has the game ended? if yes, then who's the winner?

	// interactions
	LegalMask(p Player) []bool // legality of every action for the player, indexed by action
	Apply(a Single) bool       // applies the action for the player to move. Returns false if the action could not be applied.

	// For MCTS
	Features() []float32 // input planes for the estimator

	// generics
	Reset()
	Eq(other State) bool
	Clone() State
}

// Zobrist is a type representing a "zobrist" hash.
type Zobrist uint64

// MetaState is the state of whatever is playing the game: an arena, a GTP session.
type MetaState interface {
	Name() string // name of the game
	GameNumber() int
	State() State
}

type CoordConverter interface {
	Ltoi(Coord) Single
	Itol(Single) Coord
}
