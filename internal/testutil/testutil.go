// Package testutil provides shared test utilities and fixtures.
//
// This package centralises common numeric test helpers to reduce code
// duplication across test files and improve test maintainability.
package testutil

import (
	"math"
	"math/cmplx"
	"testing"
)

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// AssertClose checks that got is within eps of want.
func AssertClose(t *testing.T, got, want, eps float64) {
	t.Helper()
	if math.IsNaN(got) || math.Abs(got-want) > eps {
		t.Errorf("got %v, want %v (eps %v)", got, want, eps)
	}
}

// AssertComplexClose checks that got is within eps of want in both parts.
func AssertComplexClose(t *testing.T, got, want complex128, eps float64) {
	t.Helper()
	if cmplx.IsNaN(got) || cmplx.Abs(got-want) > eps {
		t.Errorf("got %v, want %v (eps %v)", got, want, eps)
	}
}

// ArcsecToRadians converts arcseconds to radians, for frame-accuracy assertions.
func ArcsecToRadians(arcsec float64) float64 {
	return arcsec * math.Pi / (180.0 * 3600.0)
}
