package adapters

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/arraydata/visibility.report/internal/jones"
	"github.com/arraydata/visibility.report/internal/vis"
)

// solutionColumns is the expected header of a solutions CSV: one row
// per (antenna, channel) with the four Jones entries as re/im pairs.
var solutionColumns = []string{
	"antenna", "channel",
	"xx_re", "xx_im", "xy_re", "xy_im",
	"yx_re", "yx_im", "yy_re", "yy_im",
}

// LoadJonesSolutions reads a per-antenna, per-channel solutions CSV into
// a JonesSet with numChannels channels. Every antenna that appears must
// cover all channels exactly once; antennas absent from the file simply
// have no solution and get flagged downstream.
func LoadJonesSolutions(path string, numChannels int) (*vis.JonesSet, error) {
	if numChannels < 1 {
		return nil, configErrorf("solutions need at least 1 channel, got %d", numChannels)
	}
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open solutions file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, configErrorf("solutions file is empty")
	}
	if len(header) != len(solutionColumns) {
		return nil, configErrorf("solutions header has %d columns, want %d", len(header), len(solutionColumns))
	}
	for i, col := range header {
		if strings.TrimSpace(strings.ToLower(col)) != solutionColumns[i] {
			return nil, configErrorf("solutions column %d is %q, want %q", i, col, solutionColumns[i])
		}
	}

	perAntenna := make(map[int][]jones.Jones)
	seen := make(map[int][]bool)
	for line := 2; ; line++ {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read solutions file: %w", err)
		}
		ant, ch, j, err := parseSolutionRecord(rec)
		if err != nil {
			return nil, configErrorf("solutions line %d: %v", line, err)
		}
		if ch < 0 || ch >= numChannels {
			return nil, configErrorf("solutions line %d: channel %d outside [0, %d)", line, ch, numChannels)
		}
		if perAntenna[ant] == nil {
			perAntenna[ant] = make([]jones.Jones, numChannels)
			seen[ant] = make([]bool, numChannels)
		}
		if seen[ant][ch] {
			return nil, configErrorf("solutions line %d: duplicate entry for antenna %d channel %d", line, ant, ch)
		}
		perAntenna[ant][ch] = j
		seen[ant][ch] = true
	}

	set := vis.NewJonesSet(numChannels)
	ants := make([]int, 0, len(perAntenna))
	for ant := range perAntenna {
		ants = append(ants, ant)
	}
	sort.Ints(ants)
	for _, ant := range ants {
		for ch, ok := range seen[ant] {
			if !ok {
				return nil, configErrorf("antenna %d has no solution for channel %d", ant, ch)
			}
		}
		if err := set.Set(ant, perAntenna[ant]); err != nil {
			return nil, err
		}
	}
	return set, nil
}

func parseSolutionRecord(rec []string) (ant, ch int, j jones.Jones, err error) {
	ant, err = strconv.Atoi(rec[0])
	if err != nil {
		return 0, 0, jones.Jones{}, fmt.Errorf("bad antenna %q", rec[0])
	}
	ch, err = strconv.Atoi(rec[1])
	if err != nil {
		return 0, 0, jones.Jones{}, fmt.Errorf("bad channel %q", rec[1])
	}
	var parts [8]float64
	for i := range parts {
		parts[i], err = strconv.ParseFloat(rec[2+i], 64)
		if err != nil {
			return 0, 0, jones.Jones{}, fmt.Errorf("bad value %q in column %s", rec[2+i], solutionColumns[2+i])
		}
	}
	for i := 0; i < 4; i++ {
		j[i] = complex(parts[2*i], parts[2*i+1])
	}
	return ant, ch, j, nil
}
