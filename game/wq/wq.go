// package 围碁 implements Go (the board game) related code
//
// 围碁 is a bastardized word.
// The first character is read "wei" in Chinese. The second is read "qi" in Chinese.
// However, the charcter 碁 is no longer actively used in Chinese.
// It is however, actively used in Japanese. Specifically, it's read "go" in Japanese.
//
// The main reason why this package is named with unicode characters instead of `package go`
// is because the standard library of the Go language have the prefix "go"
package 围碁

import (
	"fmt"

	"github.com/gorgonia/weiqi/game"
)

const (
	None  = game.None
	Black = game.Black
	White = game.White

	BlackP = game.Player(game.Black)
	WhiteP = game.Player(game.White)

	// DefaultSize is the width of the board the engine is tuned for.
	DefaultSize = 8

	// TieBreak is added to half the board to form the winning threshold, so a game can never be drawn.
	TieBreak = 0.75
)

// colours that only ever appear on a scratch copy of the board while scoring
const (
	marked  game.Colour = -1
	neutral game.Colour = -2
)

// Opponent returns the colour of the opponent player
func Opponent(p game.Player) game.Player {
	switch game.Colour(p) {
	case game.White:
		return game.Player(game.Black)
	case game.Black:
		return game.Player(game.White)
	}
	panic("Unreachaable")
}

// IsValid checks that a player is indeed valid
func IsValid(p game.Player) bool { return game.Colour(p) == game.Black || game.Colour(p) == game.White }

// Board represents a board.
//
// The backing data has size*size+1 cells. Cell 0 is a sentinel standing in for the pass action
// and never holds a stone, so that an action indexes the board directly.
//
// A Board that has been recorded in a game's history is never mutated; moves produce new boards.
type Board struct {
	size int32
	data []game.Colour
}

func newBoard(size int) *Board {
	return &Board{
		size: int32(size),
		data: make([]game.Colour, size*size+1),
	}
}

// Clone clones the board
func (b *Board) Clone() *Board {
	data := make([]game.Colour, len(b.data))
	copy(data, b.data)
	return &Board{
		size: b.size,
		data: data,
	}
}

// Eq checks that both are equal
func (b *Board) Eq(other *Board) bool {
	if b == other {
		return true
	}
	if b.size != other.size || len(b.data) != len(other.data) {
		return false
	}
	return sameCells(b.data, other.data)
}

// Format implements fmt.Formatter. Columns are labelled with letters and rows are numbered from the bottom.
func (b *Board) Format(s fmt.State, c rune) {
	switch c {
	case 's', 'v':
		size := int(b.size)
		fmt.Fprint(s, "  ")
		for col := 0; col < size; col++ {
			fmt.Fprintf(s, " %c", 'A'+col)
		}
		fmt.Fprint(s, "\n")
		for row := 0; row < size; row++ {
			fmt.Fprintf(s, "%d ⎢", size-row)
			for _, cell := range b.row(row) {
				fmt.Fprintf(s, "%s ", cell)
			}
			fmt.Fprint(s, "⎥\n")
		}
	}
}

// Reset resets the board state
func (b *Board) Reset() {
	for i := range b.data {
		b.data[i] = game.None
	}
}

// row returns the cells of a row, counted from the top
func (b *Board) row(r int) []game.Colour {
	start := 1 + r*int(b.size)
	return b.data[start : start+int(b.size)]
}

// neighbours returns the on-board orthogonal neighbours of a position in the order up, right, down, left.
func (b *Board) neighbours(pos int32) (retVal [4]int32, n int) {
	r, c := (pos-1)/b.size, (pos-1)%b.size
	if r > 0 {
		retVal[n] = pos - b.size
		n++
	}
	if c < b.size-1 {
		retVal[n] = pos + 1
		n++
	}
	if r < b.size-1 {
		retVal[n] = pos + b.size
		n++
	}
	if c > 0 {
		retVal[n] = pos - 1
		n++
	}
	return
}

// group returns the maximal 4-connected set of same coloured cells that contain pos.
func (b *Board) group(pos int32) []int32 {
	colour := b.data[pos]
	visited := make([]bool, len(b.data))
	visited[pos] = true
	retVal := []int32{pos}
	for i := 0; i < len(retVal); i++ {
		adj, n := b.neighbours(retVal[i])
		for _, a := range adj[:n] {
			if !visited[a] && b.data[a] == colour {
				visited[a] = true
				retVal = append(retVal, a)
			}
		}
	}
	return retVal
}

// liberties counts the distinct empty cells adjacent to the group.
func (b *Board) liberties(group []int32) int {
	seen := make(map[int32]struct{}, 4)
	for _, p := range group {
		adj, n := b.neighbours(p)
		for _, a := range adj[:n] {
			if b.data[a] == game.None {
				seen[a] = struct{}{}
			}
		}
	}
	return len(seen)
}

// capture removes the group from the board and returns the number of stones removed.
func (b *Board) capture(group []int32) int {
	for _, p := range group {
		b.data[p] = game.None
	}
	return len(group)
}

// tryMove checks whether a stone of the given colour may be placed at the action.
//
// Captures are resolved before the suicide check. When the move is illegal, or when probe is true,
// the receiver itself is returned. Otherwise a new board with the move played is returned.
func (b *Board) tryMove(a game.Single, colour game.Colour, probe bool) (*Board, bool) {
	if a.IsPass() {
		return b, true
	}
	pos := int32(a)
	if pos < 1 || pos >= int32(len(b.data)) {
		return b, false
	}
	if b.data[pos] != game.None {
		return b, false
	}

	next := b.Clone()
	next.data[pos] = colour
	opponent := game.Colour(Opponent(game.Player(colour)))
	adj, n := next.neighbours(pos)
	for _, nb := range adj[:n] {
		if next.data[nb] != opponent {
			continue
		}
		if g := next.group(nb); next.liberties(g) == 0 {
			next.capture(g)
		}
	}

	if next.liberties(next.group(pos)) == 0 {
		return b, false // suicide
	}
	if probe {
		return b, true
	}
	return next, true
}

// Score is the area score of Black: Black stones, plus the empty regions bordered only by Black,
// plus half of the empty regions that are bordered by both colours or by neither.
func (b *Board) Score() float32 {
	cells := make([]game.Colour, len(b.data))
	copy(cells, b.data)

	var region []int32
	for first := int32(1); first < int32(len(cells)); first++ {
		if cells[first] != game.None {
			continue
		}

		// flood fill the empty region
		region = append(region[:0], first)
		cells[first] = marked
		var nearBlack, nearWhite bool
		for i := 0; i < len(region); i++ {
			adj, n := b.neighbours(region[i])
			for _, a := range adj[:n] {
				switch cells[a] {
				case game.None:
					cells[a] = marked
					region = append(region, a)
				case game.Black:
					nearBlack = true
				case game.White:
					nearWhite = true
				}
			}
		}

		owner := neutral
		switch {
		case nearBlack && !nearWhite:
			owner = game.Black
		case nearWhite && !nearBlack:
			owner = game.White
		}
		for _, p := range region {
			cells[p] = owner
		}
	}

	var black, shared float32
	for _, c := range cells[1:] {
		switch c {
		case game.Black:
			black++
		case neutral:
			shared++
		}
	}
	return black + shared/2
}

func sameCells(a, b []game.Colour) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
