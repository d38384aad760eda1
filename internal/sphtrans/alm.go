package sphtrans

import (
	"math/cmplx"

	"gonum.org/v1/gonum/mat"
)

// Layout selects where negative orders are placed in a full [l, m] array.
type Layout int

const (
	// FFTLayout stores m >= 0 in the first half of each row and m < 0 after
	// it, so that column c >= M holds order c - ncols.
	FFTLayout Layout = iota

	// Centered stores order m at column m + M - 1, with m = 0 in the middle.
	Centered
)

func (l Layout) String() string {
	switch l {
	case FFTLayout:
		return "fft"
	case Centered:
		return "centered"
	default:
		return "unknown"
	}
}

// Size returns the number of packed coefficients with non-negative m up to lmax.
func Size(lmax int) int {
	return (lmax + 1) * (lmax + 2) / 2
}

// Index returns the position of (l, m) in the packed triangular storage,
// which is m-major with l running from m to lmax.
func Index(l, m, lmax int) int {
	return m*(2*lmax+1-m)/2 + l
}

// Column returns the column of order m in a full array with mside
// non-negative orders.
func Column(m, mside int, layout Layout) int {
	if layout == Centered {
		return m + mside - 1
	}
	if m >= 0 {
		return m
	}
	return 2*mside - 1 + m
}

// Unpack expands packed coefficients into an (lmax+1)×(lmax+1) [l, m] array.
// Entries with m > l are zero.
func Unpack(alm []complex128, lmax int) *mat.CDense {
	out := mat.NewCDense(lmax+1, lmax+1, nil)
	for m := 0; m <= lmax; m++ {
		for l := m; l <= lmax; l++ {
			out.Set(l, m, alm[Index(l, m, lmax)])
		}
	}
	return out
}

// UnpackFull expands packed coefficients into an array carrying both signs of m.
func UnpackFull(alm []complex128, lmax int, layout Layout) *mat.CDense {
	return Full(Unpack(alm, lmax), layout)
}

// Pack flattens an [l, m] array into packed triangular storage. An array
// holding both signs of m in FFT layout is reduced to its non-negative half
// first.
func Pack(a *mat.CDense) []complex128 {
	r, c := a.Dims()
	if r > 1 && c == 2*r-1 {
		a = Half(a, FFTLayout)
	}
	lmax := r - 1

	alm := make([]complex128, Size(lmax))
	for m := 0; m <= lmax; m++ {
		for l := m; l <= lmax; l++ {
			alm[Index(l, m, lmax)] = a.At(l, m)
		}
	}
	return alm
}

// Full builds the array of both signs of m from the non-negative half using
// the reality condition a(l, -m) = (-1)^m conj(a(l, m)).
func Full(half *mat.CDense, layout Layout) *mat.CDense {
	r, mside := half.Dims()
	out := mat.NewCDense(r, 2*mside-1, nil)
	for l := 0; l < r; l++ {
		for m := 0; m < mside; m++ {
			v := half.At(l, m)
			out.Set(l, Column(m, mside, layout), v)
			if m == 0 {
				continue
			}
			neg := cmplx.Conj(v)
			if m%2 == 1 {
				neg = -neg
			}
			out.Set(l, Column(-m, mside, layout), neg)
		}
	}
	return out
}

// Half extracts the non-negative orders of a full array.
func Half(full *mat.CDense, layout Layout) *mat.CDense {
	r, c := full.Dims()
	mside := (c + 1) / 2
	out := mat.NewCDense(r, mside, nil)
	for l := 0; l < r; l++ {
		for m := 0; m < mside; m++ {
			out.Set(l, m, full.At(l, Column(m, mside, layout)))
		}
	}
	return out
}

// embed writes packed coefficients up to lmax into the top-left corner of an
// (lside+1)×(lside+1) array.
func embed(alm []complex128, lmax, lside int) *mat.CDense {
	out := mat.NewCDense(lside+1, lside+1, nil)
	for m := 0; m <= lmax; m++ {
		for l := m; l <= lmax; l++ {
			out.Set(l, m, alm[Index(l, m, lmax)])
		}
	}
	return out
}

// combine returns re + i·im elementwise.
func combine(re, im *mat.CDense) *mat.CDense {
	r, c := re.Dims()
	out := mat.NewCDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			out.Set(i, j, re.At(i, j)+1i*im.At(i, j))
		}
	}
	return out
}
