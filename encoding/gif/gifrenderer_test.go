package gif

import (
	"bytes"
	"image/gif"
	"testing"

	"github.com/gorgonia/weiqi/game"
	wq "github.com/gorgonia/weiqi/game/wq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type meta struct {
	g *wq.Game
}

func (m meta) Name() string      { return "test" }
func (m meta) GameNumber() int   { return 1 }
func (m meta) State() game.State { return m.g }

func TestEncoder(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf, 800, 600)
	g := wq.New(5)
	moves := []game.Single{7, 13, game.Pass, game.Pass}
	require.NoError(t, enc.Encode(meta{g}))
	for _, m := range moves {
		require.True(t, g.Apply(m))
		require.NoError(t, enc.Encode(meta{g}))
	}
	assert.Equal(t, len(moves)+1, enc.Frames())
	assert.True(t, enc.W > 0 && enc.W <= 600)
	assert.True(t, enc.H > 0 && enc.H <= 800)

	require.NoError(t, enc.Flush())
	assert.Equal(t, 0, enc.Frames())

	out, err := gif.DecodeAll(&buf)
	require.NoError(t, err)
	assert.Len(t, out.Image, len(moves)+1)
	assert.Equal(t, 0, out.Delay[0])
	assert.Equal(t, endDelay, out.Delay[len(moves)], "the game is over")

	// nothing left to write
	require.NoError(t, enc.Flush())
	assert.Equal(t, 0, buf.Len())
}

func TestEncoder_NoWriter(t *testing.T) {
	enc := NewEncoder(nil, 100, 100)
	require.NoError(t, enc.Encode(meta{wq.New(3)}))
	assert.Error(t, enc.Flush())
}
