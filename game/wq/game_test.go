package 围碁

import (
	"fmt"
	"testing"

	"github.com/gorgonia/weiqi/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// at returns the action of the square at row r (from the top) and column c on a 8x8 board.
func at(r, c int) game.Single { return game.Single(r*DefaultSize + c + 1) }

func TestGameBasics(t *testing.T) {
	g := New(DefaultSize)
	g2 := g.Clone()
	if !g.Eq(g2) {
		t.Fatal("Expected clones to be equal")
	}

	g.SetToMove(WhiteP)
	if g.Eq(g2) {
		t.Fatal("Expected clones to be unequal after the parent object has changed")
	}

	assert := assert.New(t)
	assert.Equal(65, g.ActionSpace())
	assert.Equal(64, len(g.Board()))
	assert.Equal(float32(32.75), g.Threshold())
	assert.Equal(game.PlayerMove{Player: game.Player(game.None), Single: game.Pass}, g.LastMove())
}

func TestGame_Apply(t *testing.T) {
	assert := assert.New(t)
	g := New(DefaultSize)

	assert.True(g.Apply(at(3, 3)))
	assert.Equal(WhiteP, g.ToMove())
	assert.Equal(Black, g.Board()[27])
	assert.Equal(0, g.Passes())

	assert.True(g.Apply(game.Pass))
	assert.Equal(1, g.Passes())
	assert.Equal(BlackP, g.ToMove())

	assert.False(g.Apply(at(3, 3)), "occupied")
	assert.Equal(BlackP, g.ToMove(), "a failed apply changes nothing")
	assert.Equal(2, g.MoveNumber())

	assert.True(g.Apply(at(4, 4)))
	assert.Equal(0, g.Passes(), "a stone resets the passes")
	assert.Equal(game.PlayerMove{Player: BlackP, Single: at(4, 4)}, g.LastMove())
	assert.Len(g.History(), 3)
}

func TestGame_Ended(t *testing.T) {
	assert := assert.New(t)

	g := New(DefaultSize)
	ended, _ := g.Ended()
	assert.False(ended)

	g.Apply(game.Pass)
	ended, _ = g.Ended()
	assert.False(ended, "a single pass does not end the game")

	g.Apply(game.Pass)
	ended, winner := g.Ended()
	assert.True(ended)
	assert.Equal(float32(32), g.Score())
	assert.Equal(WhiteP, winner, "an empty board is below the threshold")

	full := New(DefaultSize)
	for i := 1; i < len(full.board.data); i++ {
		full.board.data[i] = Black
	}
	full.passes = 2
	ended, winner = full.Ended()
	assert.True(ended)
	assert.Equal(float32(64), full.Score())
	assert.Equal(BlackP, winner)
}

// koGame sets up a ko in the top left corner with Black to move:
//
//	· X O · ·
//	X O · O ·
//	· X O · ·
func koGame(t *testing.T) *Game {
	g := New(DefaultSize)
	moves := []game.PlayerMove{
		{Player: BlackP, Single: at(0, 1)},
		{Player: WhiteP, Single: at(1, 1)},
		{Player: BlackP, Single: at(1, 0)},
		{Player: WhiteP, Single: at(0, 2)},
		{Player: BlackP, Single: at(2, 1)},
		{Player: WhiteP, Single: at(2, 2)},
		{Player: BlackP, Single: at(7, 7)},
		{Player: WhiteP, Single: at(1, 3)},
	}
	for _, m := range moves {
		require.NoError(t, g.Play(m))
	}
	return g
}

func TestGame_Superko(t *testing.T) {
	assert := assert.New(t)
	g := koGame(t)

	// Black takes the ko
	require.True(t, g.LegalMask(BlackP)[at(1, 2)])
	require.True(t, g.Apply(at(1, 2)))
	assert.Equal(None, g.Board()[at(1, 1)-1], "the white stone is captured")

	// White retaking immediately recreates the position after White's last move
	_, ok := g.board.tryMove(at(1, 1), White, true)
	assert.True(ok, "without history the recapture is a legal capture")
	assert.False(g.LegalMask(WhiteP)[at(1, 1)], "superko")
	assert.NotContains(g.LegalMoves(WhiteP), at(1, 1))
	assert.False(g.Check(game.PlayerMove{Player: WhiteP, Single: at(1, 1)}))

	err := g.Play(game.PlayerMove{Player: WhiteP, Single: at(1, 1)})
	assert.Error(err)
	assert.True(IsMoveError(err))

	// pass is still legal
	assert.True(g.LegalMask(WhiteP)[game.Pass])
	assert.Equal(game.Pass, g.LegalMoves(WhiteP)[0])
}

func TestGame_SuperkoNotShared(t *testing.T) {
	g := koGame(t)
	fresh := New(DefaultSize)

	// the same board built in another game has no history of the ko
	fresh.board = g.board.Clone()
	fresh.nextToMove = BlackP
	fresh.Apply(at(1, 2))
	if !fresh.LegalMask(WhiteP)[at(1, 1)] {
		t.Errorf("Seen positions must be scoped to one game")
	}
}

func TestGame_LegalMask(t *testing.T) {
	assert := assert.New(t)
	g := New(DefaultSize)
	mask := g.LegalMask(BlackP)
	assert.Len(mask, g.ActionSpace())
	for i, ok := range mask {
		assert.True(ok, "every action is legal on an empty board: %d", i)
	}
	assert.Len(g.LegalMoves(BlackP), g.ActionSpace())

	g.Apply(at(0, 0))
	mask = g.LegalMask(WhiteP)
	assert.False(mask[at(0, 0)])
	assert.Len(g.LegalMoves(WhiteP), g.ActionSpace()-1)
}

func TestGame_Play(t *testing.T) {
	assert := assert.New(t)
	g := New(DefaultSize)

	assert.NoError(g.Play(game.PlayerMove{Player: WhiteP, Single: at(0, 0)}))
	assert.Equal(BlackP, g.ToMove())
	assert.Error(g.Play(game.PlayerMove{Player: BlackP, Single: at(0, 0)}))
	assert.Error(g.Play(game.PlayerMove{Player: game.Player(None), Single: at(1, 1)}))
	assert.Error(g.Play(game.PlayerMove{Player: BlackP, Single: 65}))
	assert.NoError(g.Play(game.PlayerMove{Player: BlackP, Single: game.Pass}))
	assert.Equal(1, g.Passes())
}

func TestGame_Features(t *testing.T) {
	assert := assert.New(t)
	g := New(DefaultSize)
	const planeSize = DefaultSize * DefaultSize

	f := g.Features()
	assert.Len(f, 3*planeSize)
	for _, v := range f {
		assert.Equal(float32(0), v)
	}

	g.Apply(at(0, 0))
	g.Apply(at(7, 7))
	g.Apply(at(3, 4))
	f = g.Features()
	assert.Equal(float32(1), f[0])
	assert.Equal(float32(1), f[3*DefaultSize+4])
	assert.Equal(float32(1), f[planeSize+planeSize-1])
	assert.Equal(float32(0), f[planeSize])
	for _, v := range f[2*planeSize:] {
		assert.Equal(float32(1), v, "White is to move")
	}

	var sum float32
	for _, v := range f[:2*planeSize] {
		sum += v
	}
	assert.Equal(float32(3), sum)
}

func TestGame_Clone(t *testing.T) {
	assert := assert.New(t)
	g := New(DefaultSize)
	g.Apply(at(2, 2))

	c := g.Clone().(*Game)
	assert.True(g.Eq(c))
	c.Apply(at(5, 5))
	c.Apply(game.Pass)

	assert.False(g.Eq(c))
	assert.Equal(1, g.MoveNumber())
	assert.Equal(None, g.Board()[at(5, 5)-1])
	assert.Len(g.historical, 1)
	assert.Len(c.historical, 3)
	assert.NotEqual(g.Hash(), c.Hash())
}

func TestGame_BoardIsACopy(t *testing.T) {
	g := New(DefaultSize)
	g.Apply(at(2, 2))
	h := g.Hash()

	cells := g.Board()
	cells[at(2, 2)-1] = None
	cells[at(3, 3)-1] = White
	assert.Equal(t, Black, g.Board()[at(2, 2)-1])
	assert.Equal(t, None, g.Board()[at(3, 3)-1])
	assert.Equal(t, h, g.Hash())
	assert.True(t, g.seen(g.board.data, WhiteP), "the history is untouched")
}

func TestGame_Hash(t *testing.T) {
	a, b := New(DefaultSize), New(DefaultSize)
	a.Apply(at(1, 1))
	a.Apply(at(2, 2))
	b.Apply(at(1, 1))
	b.Apply(at(2, 2))
	if a.Hash() != b.Hash() {
		t.Errorf("Same positions should have the same hash")
	}
	b.SetToMove(WhiteP)
	if a.Hash() == b.Hash() {
		t.Errorf("The player to move is part of the hash")
	}
}

func TestGame_Reset(t *testing.T) {
	g := koGame(t)
	g.Reset()
	if !g.Eq(New(DefaultSize)) {
		t.Errorf("Reset game should equal a new game\n%v", g)
	}
}

func TestGame_Format(t *testing.T) {
	g := koGame(t)
	s := fmt.Sprintf("%v", g)
	t.Logf("\n%v", s)
	assert.Contains(t, s, "Black to move")
}
