// Package testutil provides shared test infrastructure for the reco packages:
// repository testdata resolution and floating point assertion helpers used
// across reco/ and its sub-packages.
package testutil

import (
	"math"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

// TestdataPath resolves a file under the repository testdata directory.
// The path is resolved relative to this source file: reco/internal/testutil/ → testdata/.
func TestdataPath(t *testing.T, name string) string {
	t.Helper()

	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("Failed to get current file path")
	}
	path := filepath.Join(filepath.Dir(thisFile), "..", "..", "..", "testdata", name)
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("Failed to locate testdata %s: %v", name, err)
	}
	return path
}

// WriteTempFile writes content to a fresh file in t.TempDir and returns its path.
func WriteTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == got {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}

// AssertVecNear compares two vectors component-wise with absolute tolerance.
func AssertVecNear(t *testing.T, name string, want, got r3.Vec, absTol float64) {
	t.Helper()
	if d := r3.Norm(r3.Sub(want, got)); d > absTol {
		t.Errorf("%s: got %v, want %v (distance=%v)", name, got, want, d)
	}
}
