package telescope

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/dustin/go-humanize"
)

// TransferMatrices computes the transfer matrices of baselines bl at
// frequencies f. The two index slices must have equal length, or one of them
// length one, in which case it is repeated. When globalLmax is set every
// block is sized for the telescope's largest bandlimit, otherwise for the
// largest bandlimit among the requested pairs.
//
// Pairs are computed in ascending bandlimit order so that the sky pixelisation
// is rebuilt as few times as possible. Any invalid index fails the whole call
// before computation starts.
func (t *Telescope) TransferMatrices(bl, f []int, globalLmax bool) (*MatrixArray, error) {
	bl, f, err := broadcast(bl, f)
	if err != nil {
		return nil, err
	}
	if err = t.checkIndices(bl, f); err != nil {
		return nil, err
	}

	width := t.geometry.UWidth()
	lmax := make([]int, len(bl))
	for i := range bl {
		l, _ := maxLM(t.baselines[bl[i]], t.frequency(f[i]).Wavelength, width)
		lmax[i] = 2 * l
	}

	var lside int
	if globalLmax {
		lside = 2 * t.Lmax()
	} else if len(lmax) > 0 {
		lside = slices.Max(lmax)
	}

	arr := t.polarisation.newArray(len(bl), lside)
	t.logger.Info("transfer array allocated",
		"pairs", len(bl),
		"lside", lside,
		"elements", humanize.Comma(int64(arr.Len())),
		"memory", humanize.IBytes(arr.Bytes()),
	)

	order := make([]int, len(bl))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(lmax[a], lmax[b])
	})

	for done, i := range order {
		t.logger.Debug("computing transfer matrix",
			"baseline", bl[i],
			"frequency", f[i],
			"lmax", lmax[i],
		)

		s, err := t.polarisation.transferSingle(t, bl[i], f[i], lmax[i], lside)
		if err != nil {
			return nil, err
		}
		t.polarisation.insert(arr, s, i)

		if t.progress != nil {
			t.progress(done+1, len(order))
		}
	}

	return arr, nil
}

// TransferForFrequency computes the transfer matrices of every baseline at frequency f.
func (t *Telescope) TransferForFrequency(f int) (*MatrixArray, error) {
	return t.TransferMatrices(t.allBaselines(), []int{f}, true)
}

// TransferForBaseline computes the transfer matrices of baseline b at every frequency.
func (t *Telescope) TransferForBaseline(b int) (*MatrixArray, error) {
	freqs := make([]int, t.NFreq())
	for i := range freqs {
		freqs[i] = i
	}
	return t.TransferMatrices([]int{b}, freqs, true)
}

func (t *Telescope) allBaselines() []int {
	bl := make([]int, t.NBase())
	for i := range bl {
		bl[i] = i
	}
	return bl
}

func (t *Telescope) checkIndices(bl, f []int) error {
	nbase, nfreq := t.NBase(), t.NFreq()
	for _, b := range bl {
		if b < 0 || b >= nbase {
			return &IndexError{Axis: "baseline", Index: b, Limit: nbase}
		}
	}
	for _, fi := range f {
		if fi < 0 || fi >= nfreq {
			return &IndexError{Axis: "frequency", Index: fi, Limit: nfreq}
		}
	}
	return nil
}

func broadcast(bl, f []int) ([]int, []int, error) {
	switch {
	case len(bl) == len(f):
		return bl, f, nil
	case len(bl) == 1:
		return repeat(bl[0], len(f)), f, nil
	case len(f) == 1:
		return bl, repeat(f[0], len(bl)), nil
	default:
		return nil, nil, fmt.Errorf("%w: %d baselines and %d frequencies", ErrShapeMismatch, len(bl), len(f))
	}
}

func repeat(v, n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = v
	}
	return out
}
