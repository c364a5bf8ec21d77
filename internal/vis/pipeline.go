package vis

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/arraydata/visibility.report/internal/astro"
	"github.com/arraydata/visibility.report/internal/monitoring"
	"github.com/arraydata/visibility.report/internal/pos"
)

// defaultSingularEpsilon rejects Jones determinants below this magnitude
// when no epsilon is configured.
const defaultSingularEpsilon = 1e-12

// Options configures a Pipeline.
type Options struct {
	// TimeAvg and FreqAvg are the averaging factors; values below 1 mean
	// no averaging on that axis.
	TimeAvg int
	FreqAvg int

	// TargetPhaseCentre, when set and different from the native centre,
	// makes the pipeline phase-rotate every sample to the new centre.
	TargetPhaseCentre *pos.RADec

	// InvertSolutions applies the inverse of each supplied Jones matrix
	// instead of the matrix itself, the usual direction when the
	// solutions are instrument gains.
	InvertSolutions bool

	// SingularEpsilon is the determinant-magnitude floor for inversion.
	SingularEpsilon float64

	// Workers is the number of goroutines partitioning the baseline
	// axis. Below 1 means one per CPU.
	Workers int

	// Engine selects the Jones-application implementation. Nil means
	// CellEngine.
	Engine ApplyEngine
}

// Pipeline turns raw visibility blocks into calibrated, phase-rotated,
// averaged blocks with per-baseline UVWs. It is stateless across blocks:
// the only accumulators are scoped to one output bin during Process.
type Pipeline struct {
	layout       *pos.ArrayLayout
	nativeCentre pos.RADec
	sols         *JonesSet
	opts         Options
}

// NewPipeline builds a pipeline for one observation. layout and
// nativeCentre come from the observation metadata; sols may be nil when
// no calibration is to be applied.
func NewPipeline(layout *pos.ArrayLayout, nativeCentre pos.RADec, sols *JonesSet, opts Options) (*Pipeline, error) {
	if layout == nil {
		return nil, &pos.ConfigError{Msg: "pipeline requires an array layout"}
	}
	if opts.TimeAvg < 1 {
		opts.TimeAvg = 1
	}
	if opts.FreqAvg < 1 {
		opts.FreqAvg = 1
	}
	if opts.Workers < 1 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	if opts.SingularEpsilon <= 0 {
		opts.SingularEpsilon = defaultSingularEpsilon
	}
	if opts.Engine == nil {
		opts.Engine = CellEngine{}
	}
	return &Pipeline{
		layout:       layout,
		nativeCentre: nativeCentre,
		sols:         sols,
		opts:         opts,
	}, nil
}

// Process runs one block through the pipeline stages and returns the
// output block and per-block statistics. The input block is mutated in
// place by the rotation and calibration stages; the averaged output is a
// fresh block. On error no output is produced, and later blocks may
// still be processed.
func (p *Pipeline) Process(ctx context.Context, in *Block) (*Block, *Stats, error) {
	if err := in.CheckShape(); err != nil {
		return nil, nil, err
	}
	numT := len(in.Epochs)
	numB := len(in.Baselines)
	numC := len(in.ChannelFreqsHz)
	for _, axis := range []struct {
		name string
		n    int
	}{{"epochs", numT}, {"baselines", numB}, {"channels", numC}} {
		if axis.n == 0 {
			return nil, nil, &ShapeMismatchError{Buffer: axis.name, Want: 1, Got: 0}
		}
	}
	if p.sols != nil && p.sols.NumChannels() != numC {
		return nil, nil, &ShapeMismatchError{
			Buffer: "jones solutions",
			Want:   numC,
			Got:    p.sols.NumChannels(),
		}
	}
	nAnt := p.layout.Len()
	for _, bl := range in.Baselines {
		if bl.A < 0 || bl.B < 0 || bl.A >= nAnt || bl.B >= nAnt {
			return nil, nil, &pos.ConfigError{
				Msg: fmt.Sprintf("baseline (%d,%d) outside layout of %d antennas", bl.A, bl.B, nAnt),
			}
		}
	}

	xyzs := p.layout.XYZs()
	loc := p.layout.Location

	centre := p.nativeCentre
	rephase := false
	if p.opts.TargetPhaseCentre != nil && *p.opts.TargetPhaseCentre != p.nativeCentre {
		centre = *p.opts.TargetPhaseCentre
		rephase = true
	}

	// Per (time, baseline) w deltas between the old and new centres.
	// Computed up front so a FrameError surfaces before any cell is
	// touched.
	var dW [][]float64
	if rephase {
		dW = make([][]float64, numT)
		for t, e := range in.Epochs {
			infoOld, err := astro.PrecessTime(e, p.nativeCentre, loc)
			if err != nil {
				return nil, nil, err
			}
			infoNew, err := astro.PrecessTime(e, centre, loc)
			if err != nil {
				return nil, nil, err
			}
			xyzOld := infoOld.PrecessXYZs(xyzs)
			xyzNew := infoNew.PrecessXYZs(xyzs)
			row := make([]float64, numB)
			for i, bl := range in.Baselines {
				wOld := pos.UVWFromXYZ(xyzOld[bl.A].Sub(xyzOld[bl.B]), infoOld.HADecJ2000).W
				wNew := pos.UVWFromXYZ(xyzNew[bl.A].Sub(xyzNew[bl.B]), infoNew.HADecJ2000).W
				row[i] = wNew - wOld
			}
			dW[t] = row
		}
	}

	tAxis := newAvgAxis(numT, p.opts.TimeAvg)
	cAxis := newAvgAxis(numC, p.opts.FreqAvg)

	outEpochs := make([]astro.Epoch, tAxis.out)
	for ot := range outEpochs {
		lo, hi := tAxis.binRange(ot)
		sum := 0.0
		for t := lo; t < hi; t++ {
			sum += in.Epochs[t].GPSSeconds()
		}
		outEpochs[ot] = astro.FromGPSSeconds(sum / float64(hi-lo))
	}
	outFreqs := make([]float64, cAxis.out)
	for oc := range outFreqs {
		lo, hi := cAxis.binRange(oc)
		sum := 0.0
		for c := lo; c < hi; c++ {
			sum += in.ChannelFreqsHz[c]
		}
		outFreqs[oc] = sum / float64(hi-lo)
	}

	out := NewBlock(outEpochs, in.Baselines, outFreqs)
	out.IntegrationSec = in.IntegrationSec * float64(tAxis.factor)
	out.ChannelWidthHz = in.ChannelWidthHz * float64(cAxis.factor)

	// UVWs at each output bin's representative (centroid) epoch, in the
	// frame of the centre the data ends up phased to.
	for ot, e := range outEpochs {
		info, err := astro.PrecessTime(e, centre, loc)
		if err != nil {
			return nil, nil, err
		}
		pXYZ := info.PrecessXYZs(xyzs)
		for i, bl := range in.Baselines {
			out.UVWs[out.UVWIdx(ot, i)] = pos.UVWFromXYZ(pXYZ[bl.A].Sub(pXYZ[bl.B]), info.HADecJ2000)
		}
	}

	var prep *preparedSolutions
	if p.sols != nil {
		prep = prepareSolutions(p.sols, p.opts.InvertSolutions, p.opts.SingularEpsilon)
	}

	stats := &Stats{
		TimeSteps:    numT,
		Baselines:    numB,
		Channels:     numC,
		OutTimeSteps: tAxis.out,
		OutChannels:  cAxis.out,
	}
	if prep != nil {
		stats.SolutionsSingular = prep.singular
	}

	// Workers own disjoint baseline ranges end to end, so no cell is
	// shared and the per-bin reduction order is fixed regardless of the
	// worker count.
	workers := p.opts.Workers
	if workers > numB {
		workers = numB
	}
	workerStats := make([]Stats, workers)
	workerErrs := make([]error, workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		lo := w * numB / workers
		hi := (w + 1) * numB / workers
		wg.Add(1)
		go func(w, lo, hi int) {
			defer wg.Done()
			for bl := lo; bl < hi; bl++ {
				if err := ctx.Err(); err != nil {
					workerErrs[w] = err
					return
				}
				p.processBaseline(in, out, bl, dW, prep, tAxis, cAxis, &workerStats[w])
			}
		}(w, lo, hi)
	}
	wg.Wait()
	for _, err := range workerErrs {
		if err != nil {
			return nil, nil, err
		}
	}
	for _, ws := range workerStats {
		stats.merge(ws)
	}

	flaggedCellCount.Add(int64(stats.FlaggedForError()))
	monitoring.Logf("vis: block %dx%dx%d -> %dx%dx%d, %d cells flagged for errors (%d missing, %d invalid solutions)",
		numT, numB, numC, tAxis.out, numB, cAxis.out,
		stats.FlaggedForError(), stats.CellsMissingSolution, stats.CellsInvalidSolution)
	return out, stats, nil
}

// processBaseline runs every stage for one baseline: phase rotation,
// calibration, averaging and the flagged-implies-zero-weight
// post-condition.
func (p *Pipeline) processBaseline(in, out *Block, bl int, dW [][]float64, prep *preparedSolutions, tAxis, cAxis avgAxis, st *Stats) {
	pair := in.Baselines[bl]
	numC := len(in.ChannelFreqsHz)

	for t := 0; t < len(in.Epochs); t++ {
		base := in.Idx(t, bl, 0, 0)
		row := in.Data[base : base+numC*NumPols]

		if dW != nil {
			rotateRow(row, in.ChannelFreqsHz, dW[t][bl])
		}

		if prep == nil {
			continue
		}
		ja, okA := prep.matrices[pair.A]
		jb, okB := prep.matrices[pair.B]
		if !okA || !okB {
			// No solution for an antenna: flag, never pass through
			// uncalibrated data silently.
			for c := 0; c < numC; c++ {
				in.FlagCell(t, bl, c)
			}
			st.CellsMissingSolution += numC
			continue
		}
		validA := prep.valid[pair.A]
		validB := prep.valid[pair.B]
		for c := 0; c < numC; c++ {
			if !validA[c] || !validB[c] {
				in.FlagCell(t, bl, c)
				st.CellsInvalidSolution++
			}
		}
		// Invalid channels carry identity matrices, so applying the
		// whole row leaves their (now flagged) data untouched.
		p.opts.Engine.ApplyRow(row, ja, jb)
	}

	averageBaseline(in, out, bl, tAxis, cAxis)

	// Post-condition: a flagged output element has weight exactly zero.
	for ot := 0; ot < tAxis.out; ot++ {
		for oc := 0; oc < cAxis.out; oc++ {
			for pol := 0; pol < NumPols; pol++ {
				i := out.Idx(ot, bl, oc, pol)
				if out.Flags[i] {
					out.Weights[i] = 0
					st.OutputFlaggedElements++
				}
			}
		}
	}
}
