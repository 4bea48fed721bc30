package game

import "strings"

// MaxNotationWidth is the widest board a Notation can describe: rows are a single digit.
const MaxNotationWidth = 9

// Notation converts actions to and from coordinate strings for a square board of the given width.
//
// A square is written as a column letter starting at 'A' followed by a row digit, with rows numbered
// from the bottom starting at '1'. On a 8x8 board the top left square (action 1) is "A8" and the bottom
// right square (action 64) is "H1". The pass action is written "pass".
type Notation int

// Encode renders the action as a coordinate string.
func (w Notation) Encode(a Single) string {
	if a.IsPass() {
		return "pass"
	}
	width := int(w)
	i := int(a) - 1
	return string([]byte{
		byte('A' + i%width),
		byte('0' + width - i/width),
	})
}

// Decode converts a coordinate string into an action. The string must have been checked with Valid first;
// decoding an invalid string returns a meaningless action.
func (w Notation) Decode(s string) Single {
	if isPass(s) {
		return Pass
	}
	if len(s) < 2 {
		return Single(-1)
	}
	width := int(w)
	return Single(1 + int(s[0]-'A') + width*(width-int(s[1]-'0')))
}

// Valid reports whether the string names the pass action or a square of the board.
func (w Notation) Valid(s string) bool {
	if isPass(s) {
		return true
	}
	if len(s) != 2 {
		return false
	}
	width := byte(w)
	col, row := s[0], s[1]
	return col >= 'A' && col < 'A'+width && row >= '1' && row <= '0'+width
}

// Ltoi converts a coordinate into an action.
func (w Notation) Ltoi(c Coord) Single {
	if c.IsPass() {
		return Pass
	}
	return Single(int(c.X)*int(w) + int(c.Y) + 1)
}

// Itol converts an action into a coordinate.
func (w Notation) Itol(a Single) Coord {
	if a.IsPass() {
		return Coord{-1, -1}
	}
	i := int(a) - 1
	return Coord{X: int16(i / int(w)), Y: int16(i % int(w))}
}

func isPass(s string) bool { return s == "pass" || s == "PASS" }

// ParseVertex normalises free-form user input (surrounding space, lower case letters) into the form
// accepted by Valid and Decode.
func ParseVertex(s string) string {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "pass") {
		return "pass"
	}
	return strings.ToUpper(s)
}
