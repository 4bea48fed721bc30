package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/gorgonia/weiqi/game"
	"github.com/muesli/termenv"
)

// multiEncoder sends every position to all its encoders.
type multiEncoder []interface {
	Encode(ms game.MetaState) error
	Flush() error
}

func (m multiEncoder) Encode(ms game.MetaState) error {
	for _, enc := range m {
		if err := enc.Encode(ms); err != nil {
			return err
		}
	}
	return nil
}

func (m multiEncoder) Flush() error {
	for _, enc := range m {
		if err := enc.Flush(); err != nil {
			return err
		}
	}
	return nil
}

// boardPrinter prints the final position of every game.
type boardPrinter struct {
	out    *termenv.Output
	colour bool
}

func newBoardPrinter(w io.Writer, colour bool) *boardPrinter {
	return &boardPrinter{out: termenv.NewOutput(w), colour: colour}
}

func (p *boardPrinter) Encode(ms game.MetaState) error {
	g := ms.State()
	ended, winner := g.Ended()
	if !ended {
		return nil
	}
	repr := fmt.Sprintf("%s", g)
	if p.colour {
		repr = p.paint(repr)
	}
	_, err := fmt.Fprintf(p.out, "%s game %d. %v wins\n%s", ms.Name(), ms.GameNumber(), winner, repr)
	return err
}

func (p *boardPrinter) Flush() error { return nil }

// paint colours the stones of a formatted board.
func (p *boardPrinter) paint(board string) string {
	black := p.out.String("X").Bold().Foreground(p.out.Color("1")).String()
	white := p.out.String("O").Bold().Foreground(p.out.Color("4")).String()
	return strings.NewReplacer("X", black, "O", white).Replace(board)
}
