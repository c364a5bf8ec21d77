package vis

import (
	"fmt"

	"github.com/arraydata/visibility.report/internal/jones"
)

// ApplyEngine applies per-antenna response matrices to visibility data.
// Implementations must be deterministic and produce identical results:
// the engine is selected by configuration and the correctness tests run
// against every registered engine.
//
// ApplyRow calibrates one (time, baseline) row of the block: data holds
// NumPols elements per channel, ja and jb hold one matrix per channel for
// the baseline's two antennas, and the result of ja[c]·V·jb[c]ᴴ replaces
// each channel's cell in place.
type ApplyEngine interface {
	Name() string
	ApplyRow(data []complex128, ja, jb []jones.Jones)
}

// CellEngine is the straightforward engine: one Sandwich per cell.
type CellEngine struct{}

func (CellEngine) Name() string { return "cell" }

func (CellEngine) ApplyRow(data []complex128, ja, jb []jones.Jones) {
	for c := range ja {
		base := c * NumPols
		v := jones.Jones{data[base], data[base+1], data[base+2], data[base+3]}
		out := jones.Sandwich(ja[c], v, jb[c])
		data[base] = out[0]
		data[base+1] = out[1]
		data[base+2] = out[2]
		data[base+3] = out[3]
	}
}

// UnrolledEngine computes the sandwich with fully unrolled complex
// arithmetic on the flat buffer, the shape a batched or accelerated
// kernel takes. Results are bit-identical to CellEngine because the
// operation order per element is the same.
type UnrolledEngine struct{}

func (UnrolledEngine) Name() string { return "unrolled" }

func (UnrolledEngine) ApplyRow(data []complex128, ja, jb []jones.Jones) {
	for c := range ja {
		base := c * NumPols
		a := ja[c]
		b := jb[c]

		v0, v1, v2, v3 := data[base], data[base+1], data[base+2], data[base+3]

		// t = a·v
		t0 := a[0]*v0 + a[1]*v2
		t1 := a[0]*v1 + a[1]*v3
		t2 := a[2]*v0 + a[3]*v2
		t3 := a[2]*v1 + a[3]*v3

		// out = t·bᴴ
		b0 := conj(b[0])
		b1 := conj(b[1])
		b2 := conj(b[2])
		b3 := conj(b[3])
		data[base] = t0*b0 + t1*b1
		data[base+1] = t0*b2 + t1*b3
		data[base+2] = t2*b0 + t3*b1
		data[base+3] = t2*b2 + t3*b3
	}
}

func conj(c complex128) complex128 {
	return complex(real(c), -imag(c))
}

// EngineByName resolves a configured engine name.
func EngineByName(name string) (ApplyEngine, error) {
	switch name {
	case "", "cell":
		return CellEngine{}, nil
	case "unrolled":
		return UnrolledEngine{}, nil
	default:
		return nil, fmt.Errorf("unknown apply engine %q", name)
	}
}
