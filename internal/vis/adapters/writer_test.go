package adapters

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arraydata/visibility.report/internal/astro"
	"github.com/arraydata/visibility.report/internal/pos"
	"github.com/arraydata/visibility.report/internal/vis"
)

func smallBlock() *vis.Block {
	epochs := []astro.Epoch{astro.FromGPSSeconds(1090008642)}
	freqs := []float64{150e6, 150.04e6}
	b := vis.NewBlock(epochs, pos.CrossBaselines(2), freqs)
	for i := range b.Data {
		b.Data[i] = complex(float64(i), 1)
		b.Weights[i] = 1
	}
	return b
}

func TestMemoryWriterStoresCopies(t *testing.T) {
	w := NewMemoryWriter()
	blk := smallBlock()
	want := blk.Clone()
	stats := &vis.Stats{TimeSteps: 1}

	require.NoError(t, w.WriteBlock(context.Background(), blk, stats))

	// Mutating the original must not affect the stored copy.
	blk.Data[0] = complex(99, 99)
	stats.TimeSteps = 42

	got := w.Blocks()
	require.Len(t, got, 1)
	if diff := cmp.Diff(want.Data, got[0].Data); diff != "" {
		t.Errorf("stored data mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 1, w.Stats()[0].TimeSteps)
}

func TestMemoryWriterClosed(t *testing.T) {
	w := NewMemoryWriter()
	require.NoError(t, w.Close())

	err := w.WriteBlock(context.Background(), smallBlock(), &vis.Stats{})
	require.Error(t, err)
	assert.Empty(t, w.Blocks())
}

func TestMemoryWriterCancelledContext(t *testing.T) {
	w := NewMemoryWriter()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := w.WriteBlock(ctx, smallBlock(), &vis.Stats{})
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, w.Blocks())
}
