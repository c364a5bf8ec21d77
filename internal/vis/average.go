package vis

// binAccumulator carries the running state for one output bin of one
// polarisation: weighted sum, weight sum and whether every constituent
// seen so far was flagged. It is reset each time a new output bin begins.
type binAccumulator struct {
	sum        complex128
	weightSum  float64
	count      int
	total      int
	last       complex128
	lastWeight float32
	lastAny    complex128
	allFlagged bool
}

func (a *binAccumulator) reset() {
	*a = binAccumulator{allFlagged: true}
}

// add folds in one constituent sample. Flagged samples contribute
// nothing, whatever their stored weight says: the flag dominates.
func (a *binAccumulator) add(v complex128, w float32, flagged bool) {
	a.total++
	a.lastAny = v
	if flagged {
		return
	}
	a.allFlagged = false
	a.count++
	a.sum += complex(float64(w), 0) * v
	a.weightSum += float64(w)
	a.last = v
	a.lastWeight = w
}

// resolve returns the output sample for the bin. An all-flagged bin is
// flagged with weight exactly zero; when it held a single constituent the
// value passes through so factor-1 averaging only forces the weight. A
// single unflagged constituent passes through untouched, which makes
// factor-1 averaging the identity.
func (a *binAccumulator) resolve() (v complex128, w float32, flagged bool) {
	switch {
	case a.allFlagged && a.total == 1:
		return a.lastAny, 0, true
	case a.allFlagged:
		return 0, 0, true
	case a.count == 1:
		return a.last, a.lastWeight, false
	case a.weightSum > 0:
		return a.sum / complex(a.weightSum, 0), float32(a.weightSum), false
	default:
		// Unflagged constituents that all carry zero weight: nothing to
		// weight by, so keep the zero weight and a zero value.
		return 0, 0, false
	}
}

// avgAxis describes the binning of one axis: input length, averaging
// factor and resulting output length (final bin may be ragged).
type avgAxis struct {
	in     int
	factor int
	out    int
}

func newAvgAxis(in, factor int) avgAxis {
	if factor < 1 {
		factor = 1
	}
	return avgAxis{in: in, factor: factor, out: (in + factor - 1) / factor}
}

// binRange returns the input index range [lo, hi) of one output bin.
func (a avgAxis) binRange(bin int) (lo, hi int) {
	lo = bin * a.factor
	hi = lo + a.factor
	if hi > a.in {
		hi = a.in
	}
	return lo, hi
}

// averageBaseline folds one baseline of the input block into the output
// block. Constituents are visited in ascending (time, channel) order so
// the floating-point sums are reproducible regardless of how baselines
// are distributed across workers.
func averageBaseline(in, out *Block, bl int, tAxis, cAxis avgAxis) {
	var acc binAccumulator
	for outT := 0; outT < tAxis.out; outT++ {
		tLo, tHi := tAxis.binRange(outT)
		for outC := 0; outC < cAxis.out; outC++ {
			cLo, cHi := cAxis.binRange(outC)
			for p := 0; p < NumPols; p++ {
				acc.reset()
				for t := tLo; t < tHi; t++ {
					for c := cLo; c < cHi; c++ {
						i := in.Idx(t, bl, c, p)
						acc.add(in.Data[i], in.Weights[i], in.Flags[i])
					}
				}
				v, w, flagged := acc.resolve()
				o := out.Idx(outT, bl, outC, p)
				out.Data[o] = v
				out.Weights[o] = w
				out.Flags[o] = flagged
			}
		}
	}
}
