package vis

import (
	"math/cmplx"
	"testing"

	"github.com/arraydata/visibility.report/internal/testutil"
)

func TestPhaseFactorZeroDelta(t *testing.T) {
	testutil.AssertComplexClose(t, phaseFactor(150e6, 0), 1, 1e-15)
}

func TestPhaseFactorUnitMagnitude(t *testing.T) {
	for _, dw := range []float64{-312.5, -0.01, 0.7, 55.5} {
		f := phaseFactor(167e6, dw)
		testutil.AssertClose(t, cmplx.Abs(f), 1, 1e-14)
	}
}

func TestRotateRowRoundTrip(t *testing.T) {
	freqs := []float64{150e6, 150.04e6, 150.08e6}
	row := makeRow(len(freqs))
	orig := append([]complex128(nil), row...)

	const dw = 12.75
	rotateRow(row, freqs, dw)
	rotateRow(row, freqs, -dw)

	for i := range row {
		testutil.AssertComplexClose(t, row[i], orig[i], 1e-10)
	}
}

func TestRotateRowTurnsAllPolsEqually(t *testing.T) {
	freqs := []float64{150e6}
	row := []complex128{1, 1, 1, 1}
	rotateRow(row, freqs, 3.3)
	for p := 1; p < NumPols; p++ {
		testutil.AssertComplexClose(t, row[p], row[0], 1e-15)
	}
}
