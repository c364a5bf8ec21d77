package adapters

import (
	"context"
	"sync"

	"github.com/arraydata/visibility.report/internal/vis"
)

// Writer is an output sink for processed visibility blocks. WriteBlock
// may buffer; Close flushes anything pending and releases resources.
// Implementations must be safe for use from a single goroutine; the
// pipeline serialises block delivery.
type Writer interface {
	WriteBlock(ctx context.Context, blk *vis.Block, stats *vis.Stats) error
	Close() error
}

// MemoryWriter retains every written block in memory. It exists for
// tests and for the "memory" writer configuration, where callers want
// the processed blocks back without touching disk.
type MemoryWriter struct {
	mu     sync.Mutex
	blocks []*vis.Block
	stats  []*vis.Stats
	closed bool
}

// NewMemoryWriter returns an empty in-memory sink.
func NewMemoryWriter() *MemoryWriter {
	return &MemoryWriter{}
}

// WriteBlock stores a deep copy of the block, so the caller may reuse
// or mutate it afterwards.
func (w *MemoryWriter) WriteBlock(ctx context.Context, blk *vis.Block, stats *vis.Stats) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return &WriterClosedError{}
	}
	w.blocks = append(w.blocks, blk.Clone())
	statsCopy := *stats
	w.stats = append(w.stats, &statsCopy)
	return nil
}

// Close marks the writer closed. Further writes fail.
func (w *MemoryWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	return nil
}

// Blocks returns the blocks written so far.
func (w *MemoryWriter) Blocks() []*vis.Block {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]*vis.Block(nil), w.blocks...)
}

// Stats returns the per-block stats written so far.
func (w *MemoryWriter) Stats() []*vis.Stats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]*vis.Stats(nil), w.stats...)
}

// WriterClosedError reports a write attempted after Close.
type WriterClosedError struct{}

func (e *WriterClosedError) Error() string { return "writer is closed" }
