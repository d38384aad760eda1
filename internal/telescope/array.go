package telescope

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// MatrixArray is a dense buffer of transfer matrix blocks. Entry i holds one
// (baseline, frequency) pair; each entry carries PolShape polarisation
// slots, and each slot an (LSide+1)×(2·LSide+1) block indexed [l, m] with
// negative m stored after the non-negative ones.
type MatrixArray struct {
	N        int
	PolShape []int
	LSide    int
	Data     []complex128
}

func newMatrixArray(n, lside int, polShape ...int) *MatrixArray {
	a := &MatrixArray{N: n, PolShape: polShape, LSide: lside}
	a.Data = make([]complex128, a.Len())
	return a
}

// Rows returns the number of l rows of a block.
func (a *MatrixArray) Rows() int {
	return a.LSide + 1
}

// Cols returns the number of m columns of a block.
func (a *MatrixArray) Cols() int {
	return 2*a.LSide + 1
}

func (a *MatrixArray) slots() int {
	n := 1
	for _, s := range a.PolShape {
		n *= s
	}
	return n
}

// Shape returns the full array shape.
func (a *MatrixArray) Shape() []int {
	shape := []int{a.N}
	shape = append(shape, a.PolShape...)
	return append(shape, a.Rows(), a.Cols())
}

// Len returns the number of complex elements.
func (a *MatrixArray) Len() int {
	return a.N * a.slots() * a.Rows() * a.Cols()
}

// Bytes returns the memory held by the buffer.
func (a *MatrixArray) Bytes() uint64 {
	return uint64(a.Len()) * 16
}

// Block returns a view of one block sharing the array's storage. pol must
// hold one index per polarisation axis.
func (a *MatrixArray) Block(i int, pol ...int) *mat.CDense {
	if i < 0 || i >= a.N {
		panic(fmt.Sprintf("telescope: entry %d out of range [0, %d)", i, a.N))
	}
	if len(pol) != len(a.PolShape) {
		panic(fmt.Sprintf("telescope: %d polarisation indices for %d axes", len(pol), len(a.PolShape)))
	}

	slot := 0
	for k, p := range pol {
		if p < 0 || p >= a.PolShape[k] {
			panic(fmt.Sprintf("telescope: polarisation index %d out of range [0, %d)", p, a.PolShape[k]))
		}
		slot = slot*a.PolShape[k] + p
	}

	size := a.Rows() * a.Cols()
	off := (i*a.slots() + slot) * size
	return mat.NewCDense(a.Rows(), a.Cols(), a.Data[off:off+size:off+size])
}

// setBlock copies src into the top-left corner of block (i, pol...).
func (a *MatrixArray) setBlock(src *mat.CDense, i int, pol ...int) {
	dst := a.Block(i, pol...)
	r, c := src.Dims()
	cols := a.Cols()
	for l := 0; l < r; l++ {
		for m := 0; m < c; m++ {
			// Negative orders keep their distance from the end of the row.
			col := m
			if m > (c-1)/2 {
				col = cols - (c - m)
			}
			dst.Set(l, col, src.At(l, m))
		}
	}
}
