// Package gif renders the games of an arena as an animated GIF, one frame per position.
package gif

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/gif"
	"io"
	"math"
	"strings"

	"github.com/golang/freetype/truetype"
	"github.com/gorgonia/weiqi/game"
	"github.com/pkg/errors"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/math/fixed"
)

var regular *truetype.Font

const (
	dpi             = 144.0
	fontsize        = 12.0
	lineheight      = 1.2
	dummyLongString = `Game 10000, Move 100. Score 100.5`

	endDelay = 300 // hundredths of a second spent on the final position
)

func init() {
	var err error
	if regular, err = truetype.Parse(gomono.TTF); err != nil {
		panic(err)
	}
}

var globPalette = color.Palette{
	color.Gray{0},
	color.Gray{253},
}

// Encoder encodes game states as the frames of a GIF. It is a weiqi.OutputEncoder.
type Encoder struct {
	H, W int
	font.Drawer

	out *gif.GIF
	io.Writer
	face font.Face

	maxH, maxW  int // maxHeight and maxWidth
	padH, padW  int // padding so everything don't start at the topleft
	initialized bool
}

// NewEncoder creates an encoder that writes to w the frames it collected, each at most h by wid pixels.
func NewEncoder(w io.Writer, h, wid int) *Encoder {
	return &Encoder{
		H:      -1,
		W:      -1,
		Writer: w,
		maxH:   h,
		maxW:   wid,
		padH:   10,
		padW:   10,

		Drawer: font.Drawer{
			Src: image.Black,
		},
		out: &gif.GIF{LoopCount: -1},
	}
}

func lineHeight() int { return int(math.Ceil(fontsize * lineheight * dpi / 72)) }

// Encode adds a frame showing the board, the name of the game and its progress.
func (enc *Encoder) Encode(ms game.MetaState) error {
	g := ms.State()
	repr := fmt.Sprintf("%s", g)
	dy := lineHeight()

	if !enc.initialized {
		// lazy init of the frame size
		enc.face = truetype.NewFace(regular, &truetype.Options{
			Size:    fontsize,
			DPI:     dpi,
			Hinting: font.HintingFull,
		})
		enc.Drawer.Face = enc.face

		// first calculate how long the max length will be
		splits := strings.Split(repr, "\n")
		maxW := font.MeasureString(enc.Face, dummyLongString).Ceil()
		for _, line := range splits {
			maxW = maxInt(maxW, font.MeasureString(enc.Face, line).Ceil())
		}
		w := maxW + 2*enc.padW
		h := (len(splits)+3)*dy + 2*enc.padH // + 3 is for the 3 extra lines: game name, progress, and winner

		w = minInt(w, enc.maxW)
		h = minInt(h, enc.maxH)

		if w == enc.maxW {
			enc.padW = 0
		}
		if h == enc.maxH {
			enc.padH = 0
		}

		enc.H = h
		enc.W = w
		enc.initialized = true
	}

	im := image.NewPaletted(image.Rect(0, 0, enc.W, enc.H), globPalette)
	draw.Draw(im, im.Bounds(), image.White, image.Point{}, draw.Src)
	enc.Dst = im

	y := enc.padH + dy
	line := func(s string) {
		enc.Dot = fixed.P(enc.padW, y)
		enc.DrawString(s)
		y += dy
	}
	for _, s := range strings.Split(repr, "\n") {
		line(s)
	}
	line(ms.Name())
	line(fmt.Sprintf("Game %d, Move %d. Score %v", ms.GameNumber(), g.MoveNumber(), g.Score()))

	var delay int
	if ok, winner := g.Ended(); ok {
		delay = endDelay
		line(fmt.Sprintf("Winner: %v", winner))
	}
	enc.out.Image = append(enc.out.Image, im)
	enc.out.Delay = append(enc.out.Delay, delay)
	return nil
}

// Frames is the number of frames waiting to be flushed.
func (enc *Encoder) Frames() int { return len(enc.out.Image) }

// Flush writes the gif into the writer, and starts a new one.
func (enc *Encoder) Flush() error {
	if enc.Writer == nil {
		return errors.New("gif: no writer to flush to")
	}
	if len(enc.out.Image) == 0 {
		return nil
	}
	if err := gif.EncodeAll(enc.Writer, enc.out); err != nil {
		return errors.Wrap(err, "gif: unable to encode")
	}
	enc.out = &gif.GIF{LoopCount: -1}
	return nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
