package adapters

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/arraydata/visibility.report/internal/pos"
	"github.com/arraydata/visibility.report/internal/vis"
)

// visibilityColumns is the expected header of a visibility data CSV:
// one row per (time step, baseline, channel, polarisation) sample.
var visibilityColumns = []string{
	"time_step", "ant_a", "ant_b", "channel", "pol",
	"re", "im", "weight", "flagged",
}

// LoadVisibilityData reads a visibility CSV into a block shaped by the
// observation. Cells absent from the file stay zero with zero weight.
// Rows referencing times, antennas or channels outside the observation
// are a pos.ConfigError.
func LoadVisibilityData(path string, obs *ObsContext) (*vis.Block, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open visibility data: %w", err)
	}
	defer f.Close()

	b := obs.NewBlock()
	baselineIdx := make(map[pos.Baseline]int, len(b.Baselines))
	for i, bl := range b.Baselines {
		baselineIdx[bl] = i
	}

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, configErrorf("visibility data file is empty")
	}
	if len(header) != len(visibilityColumns) {
		return nil, configErrorf("visibility data header has %d columns, want %d", len(header), len(visibilityColumns))
	}
	for i, col := range header {
		if strings.TrimSpace(strings.ToLower(col)) != visibilityColumns[i] {
			return nil, configErrorf("visibility data column %d is %q, want %q", i, col, visibilityColumns[i])
		}
	}

	for line := 2; ; line++ {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read visibility data: %w", err)
		}
		if err := loadVisibilityRecord(b, baselineIdx, rec); err != nil {
			return nil, configErrorf("visibility data line %d: %v", line, err)
		}
	}
	return b, nil
}

func loadVisibilityRecord(b *vis.Block, baselineIdx map[pos.Baseline]int, rec []string) error {
	ints := make([]int, 5)
	for i := range ints {
		v, err := strconv.Atoi(rec[i])
		if err != nil {
			return fmt.Errorf("bad %s %q", visibilityColumns[i], rec[i])
		}
		ints[i] = v
	}
	tIdx, antA, antB, ch, pol := ints[0], ints[1], ints[2], ints[3], ints[4]

	if tIdx < 0 || tIdx >= len(b.Epochs) {
		return fmt.Errorf("time step %d outside [0, %d)", tIdx, len(b.Epochs))
	}
	bl, ok := baselineIdx[pos.Baseline{A: antA, B: antB}]
	if !ok {
		return fmt.Errorf("baseline (%d, %d) not in observation", antA, antB)
	}
	if ch < 0 || ch >= len(b.ChannelFreqsHz) {
		return fmt.Errorf("channel %d outside [0, %d)", ch, len(b.ChannelFreqsHz))
	}
	if pol < 0 || pol >= vis.NumPols {
		return fmt.Errorf("pol %d outside [0, %d)", pol, vis.NumPols)
	}

	re, err := strconv.ParseFloat(rec[5], 64)
	if err != nil {
		return fmt.Errorf("bad re %q", rec[5])
	}
	im, err := strconv.ParseFloat(rec[6], 64)
	if err != nil {
		return fmt.Errorf("bad im %q", rec[6])
	}
	weight, err := strconv.ParseFloat(rec[7], 64)
	if err != nil {
		return fmt.Errorf("bad weight %q", rec[7])
	}
	flagged, err := strconv.ParseBool(rec[8])
	if err != nil {
		return fmt.Errorf("bad flagged %q", rec[8])
	}

	i := b.Idx(tIdx, bl, ch, pol)
	b.Data[i] = complex(re, im)
	b.Weights[i] = float32(weight)
	b.Flags[i] = flagged
	return nil
}
