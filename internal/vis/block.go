// Package vis implements the visibility pipeline: phase rotation to a
// target phase centre, per-antenna Jones calibration, weighted averaging
// across time and frequency bins, and flag propagation.
//
// Visibility data lives in flat index-addressed buffers, not nested
// slices. The axis order is time, baseline, channel, polarisation with
// the polarisation axis innermost; Idx documents the strides. Flat
// buffers keep per-cell access predictable and let workers take disjoint
// sub-slices without locking.
package vis

import (
	"fmt"

	"github.com/arraydata/visibility.report/internal/astro"
	"github.com/arraydata/visibility.report/internal/pos"
)

// NumPols is the size of the polarisation axis: XX, XY, YX, YY.
const NumPols = 4

// ShapeMismatchError reports that the parallel data, weight and flag
// buffers of a block disagree about their extents. It is fatal for the
// block that raised it; later blocks may still be processed.
type ShapeMismatchError struct {
	Buffer string
	Want   int
	Got    int
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("shape mismatch: %s has %d elements, want %d", e.Buffer, e.Got, e.Want)
}

// Block is a dense visibility chunk spanning a contiguous time range, all
// baselines and all channels. Data, Weights and Flags are parallel flat
// buffers of length len(Epochs)*len(Baselines)*len(ChannelFreqsHz)*NumPols.
//
// A flagged element's weight must be treated as zero in any average even
// when the stored weight is non-zero: the flag dominates the weight.
type Block struct {
	// Epochs is the time axis, one entry per integration.
	Epochs []astro.Epoch
	// IntegrationSec is the duration of one integration.
	IntegrationSec float64
	// Baselines is the baseline axis in canonical ascending order, with
	// antenna indices referring to the observation's array layout.
	Baselines []pos.Baseline
	// ChannelFreqsHz is the frequency axis of channel centres.
	ChannelFreqsHz []float64
	// ChannelWidthHz is the width of one channel.
	ChannelWidthHz float64

	// UVWs holds one coordinate per (time, baseline), filled in by the
	// pipeline at each time range's representative epoch. Nil on input.
	UVWs []pos.UVW

	Data    []complex128
	Weights []float32
	Flags   []bool
}

// NewBlock allocates a zeroed block for the given axes.
func NewBlock(epochs []astro.Epoch, baselines []pos.Baseline, freqsHz []float64) *Block {
	n := len(epochs) * len(baselines) * len(freqsHz) * NumPols
	return &Block{
		Epochs:         epochs,
		Baselines:      baselines,
		ChannelFreqsHz: freqsHz,
		UVWs:           make([]pos.UVW, len(epochs)*len(baselines)),
		Data:           make([]complex128, n),
		Weights:        make([]float32, n),
		Flags:          make([]bool, n),
	}
}

// NumCells returns the expected buffer length implied by the axes.
func (b *Block) NumCells() int {
	return len(b.Epochs) * len(b.Baselines) * len(b.ChannelFreqsHz) * NumPols
}

// Idx returns the flat buffer index of (time, baseline, channel, pol).
// The strides follow from the axis order: pol varies fastest, then
// channel, then baseline, then time.
func (b *Block) Idx(t, bl, ch, p int) int {
	return ((t*len(b.Baselines)+bl)*len(b.ChannelFreqsHz)+ch)*NumPols + p
}

// UVWIdx returns the index into UVWs for (time, baseline).
func (b *Block) UVWIdx(t, bl int) int {
	return t*len(b.Baselines) + bl
}

// CheckShape verifies that the parallel buffers match the axes. It is the
// structural gate the pipeline runs before touching any cell.
func (b *Block) CheckShape() error {
	want := b.NumCells()
	if len(b.Data) != want {
		return &ShapeMismatchError{Buffer: "data", Want: want, Got: len(b.Data)}
	}
	if len(b.Weights) != want {
		return &ShapeMismatchError{Buffer: "weights", Want: want, Got: len(b.Weights)}
	}
	if len(b.Flags) != want {
		return &ShapeMismatchError{Buffer: "flags", Want: want, Got: len(b.Flags)}
	}
	if b.UVWs != nil && len(b.UVWs) != len(b.Epochs)*len(b.Baselines) {
		return &ShapeMismatchError{
			Buffer: "uvws",
			Want:   len(b.Epochs) * len(b.Baselines),
			Got:    len(b.UVWs),
		}
	}
	return nil
}

// FlagCell flags all polarisations of one (time, baseline, channel) cell.
func (b *Block) FlagCell(t, bl, ch int) {
	base := b.Idx(t, bl, ch, 0)
	for p := 0; p < NumPols; p++ {
		b.Flags[base+p] = true
	}
}

// Clone returns a deep copy of the block.
func (b *Block) Clone() *Block {
	c := *b
	c.Epochs = append([]astro.Epoch(nil), b.Epochs...)
	c.Baselines = append([]pos.Baseline(nil), b.Baselines...)
	c.ChannelFreqsHz = append([]float64(nil), b.ChannelFreqsHz...)
	c.UVWs = append([]pos.UVW(nil), b.UVWs...)
	c.Data = append([]complex128(nil), b.Data...)
	c.Weights = append([]float32(nil), b.Weights...)
	c.Flags = append([]bool(nil), b.Flags...)
	return &c
}
