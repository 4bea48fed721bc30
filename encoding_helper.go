package weiqi

import (
	"github.com/gorgonia/weiqi/game"
	"github.com/pkg/errors"
)

// Symmetries is the number of symmetries of a square board: 4 rotations, with and without mirroring.
const Symmetries = 8

// symmetry maps the square at row r, column c to where the k-th symmetry sends it.
// Symmetry k mirrors the board left to right if k >= 4, then rotates it k%4 quarter turns anticlockwise.
func symmetry(r, c, size, k int) (int, int) {
	if k >= 4 {
		c = size - 1 - c
	}
	for i := 0; i < k%4; i++ {
		r, c = size-1-c, r
	}
	return r, c
}

// InverseSymmetry returns the symmetry that undoes the k-th symmetry.
func InverseSymmetry(k int) int {
	if k >= 4 {
		// mirrored transforms are their own inverse
		return k
	}
	return (4 - k) % 4
}

// Symmetry applies the k-th symmetry to each size*size plane in planes.
func Symmetry(planes []float32, size, k int) []float32 {
	area := size * size
	retVal := make([]float32, len(planes))
	for start := 0; start+area <= len(planes); start += area {
		for r := 0; r < size; r++ {
			for c := 0; c < size; c++ {
				r2, c2 := symmetry(r, c, size, k)
				retVal[start+r2*size+c2] = planes[start+r*size+c]
			}
		}
	}
	return retVal
}

// SymmetryPolicy applies the k-th symmetry to a policy. Pass stays where it is.
func SymmetryPolicy(policy []float32, size, k int) []float32 {
	retVal := make([]float32, len(policy))
	retVal[game.Pass] = policy[game.Pass]
	copy(retVal[1:], Symmetry(policy[1:], size, k))
	return retVal
}

// SymmetryAction applies the k-th symmetry to an action.
func SymmetryAction(a game.Single, size, k int) game.Single {
	if a.IsPass() {
		return a
	}
	i := int(a) - 1
	r, c := symmetry(i/size, i%size, size, k)
	return game.Single(r*size + c + 1)
}

// Augment creates an Augmenter that turns an example into its 8 symmetric examples, the original first.
func Augment(size int) Augmenter {
	return func(ex Example) []Example {
		retVal := make([]Example, 0, Symmetries)
		for k := 0; k < Symmetries; k++ {
			retVal = append(retVal, Example{
				Features:    Symmetry(ex.Features, size, k),
				Policy:      SymmetryPolicy(ex.Policy, size, k),
				Value:       ex.Value,
				SearchValue: ex.SearchValue,
			})
		}
		return retVal
	}
}

// RotateBoard rotates a m*n board a quarter turn anticlockwise.
func RotateBoard(board []float32, m, n int) ([]float32, error) {
	if m != n {
		return nil, errors.Errorf("Cannot handle m %d, n %d. This function only takes square boards", m, n)
	}
	if len(board) != m*n {
		return nil, errors.Errorf("Expected a board of %d. Got %d", m*n, len(board))
	}
	return Symmetry(board, m, 1), nil
}
