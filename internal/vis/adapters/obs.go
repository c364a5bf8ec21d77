// Package adapters loads observation inputs from their on-disk formats
// and carries processed blocks to their output sinks.
//
// The pipeline itself is format-agnostic; everything that knows about
// JSON metadata, CSV antenna tables or CSV solution dumps lives here.
package adapters

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/arraydata/visibility.report/internal/astro"
	"github.com/arraydata/visibility.report/internal/pos"
	"github.com/arraydata/visibility.report/internal/vis"
)

// ObsContext is the fully validated metadata of one observation: where
// the array is, where it was pointed, and the time and frequency axes
// of the recorded visibilities.
type ObsContext struct {
	ObsID string

	Layout      *pos.ArrayLayout
	PhaseCentre pos.RADec

	// Epochs are the centroids of each integration.
	Epochs         []astro.Epoch
	IntegrationSec float64

	ChannelFreqsHz []float64
	ChannelWidthHz float64
}

// obsMeta is the wire form of the observation metadata file.
type obsMeta struct {
	ObsID string `json:"obs_id"`

	LatitudeRad  *float64 `json:"latitude_rad"`
	LongitudeRad *float64 `json:"longitude_rad"`
	HeightM      float64  `json:"height_m"`

	PhaseCentreRADeg  *float64 `json:"phase_centre_ra_deg"`
	PhaseCentreDecDeg *float64 `json:"phase_centre_dec_deg"`

	StartTimeGPS   *float64 `json:"start_time_gps"`
	NumTimeSteps   int      `json:"num_time_steps"`
	IntegrationSec float64  `json:"integration_sec"`

	StartFreqHz    *float64 `json:"start_freq_hz"`
	NumChannels    int      `json:"num_channels"`
	ChannelWidthHz float64  `json:"channel_width_hz"`
}

func configErrorf(format string, v ...interface{}) *pos.ConfigError {
	return &pos.ConfigError{Msg: fmt.Sprintf(format, v...)}
}

// LoadObsContext reads the observation metadata JSON and the antenna
// table CSV and returns a validated context. Structural problems in
// either file surface as a pos.ConfigError.
func LoadObsContext(metaPath, antennaPath string) (*ObsContext, error) {
	meta, err := loadObsMeta(metaPath)
	if err != nil {
		return nil, err
	}
	antennas, err := loadAntennaTable(antennaPath)
	if err != nil {
		return nil, err
	}

	layout, err := pos.NewArrayLayout(pos.LatLonAlt{
		LatitudeRad:  *meta.LatitudeRad,
		LongitudeRad: *meta.LongitudeRad,
		HeightM:      meta.HeightM,
	}, antennas)
	if err != nil {
		return nil, err
	}

	epochs := make([]astro.Epoch, meta.NumTimeSteps)
	for i := range epochs {
		epochs[i] = astro.FromGPSSeconds(*meta.StartTimeGPS + float64(i)*meta.IntegrationSec)
	}
	freqs := make([]float64, meta.NumChannels)
	for i := range freqs {
		freqs[i] = *meta.StartFreqHz + float64(i)*meta.ChannelWidthHz
	}

	return &ObsContext{
		ObsID:          meta.ObsID,
		Layout:         layout,
		PhaseCentre:    pos.RADecFromDegrees(*meta.PhaseCentreRADeg, *meta.PhaseCentreDecDeg),
		Epochs:         epochs,
		IntegrationSec: meta.IntegrationSec,
		ChannelFreqsHz: freqs,
		ChannelWidthHz: meta.ChannelWidthHz,
	}, nil
}

func loadObsMeta(path string) (*obsMeta, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, configErrorf("observation metadata must have .json extension, got %q", ext)
	}
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read observation metadata: %w", err)
	}
	var meta obsMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("failed to parse observation metadata: %w", err)
	}
	if err := meta.validate(); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (m *obsMeta) validate() error {
	switch {
	case m.LatitudeRad == nil || m.LongitudeRad == nil:
		return configErrorf("observation metadata missing array location")
	case m.PhaseCentreRADeg == nil || m.PhaseCentreDecDeg == nil:
		return configErrorf("observation metadata missing phase centre")
	case m.StartTimeGPS == nil:
		return configErrorf("observation metadata missing start_time_gps")
	case m.StartFreqHz == nil:
		return configErrorf("observation metadata missing start_freq_hz")
	}
	if *m.PhaseCentreDecDeg < -90 || *m.PhaseCentreDecDeg > 90 {
		return configErrorf("phase centre dec %f out of range", *m.PhaseCentreDecDeg)
	}
	if m.NumTimeSteps < 1 {
		return configErrorf("num_time_steps must be at least 1, got %d", m.NumTimeSteps)
	}
	if m.IntegrationSec <= 0 {
		return configErrorf("integration_sec must be positive, got %f", m.IntegrationSec)
	}
	if m.NumChannels < 1 {
		return configErrorf("num_channels must be at least 1, got %d", m.NumChannels)
	}
	if m.ChannelWidthHz <= 0 {
		return configErrorf("channel_width_hz must be positive, got %f", m.ChannelWidthHz)
	}
	return nil
}

// loadAntennaTable parses the antenna CSV. Expected header:
//
//	id,name,east,north,height,flagged
func loadAntennaTable(path string) ([]pos.Antenna, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open antenna table: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, configErrorf("antenna table is empty")
	}
	want := []string{"id", "name", "east", "north", "height", "flagged"}
	if len(header) != len(want) {
		return nil, configErrorf("antenna table header has %d columns, want %d", len(header), len(want))
	}
	for i, col := range header {
		if strings.TrimSpace(strings.ToLower(col)) != want[i] {
			return nil, configErrorf("antenna table column %d is %q, want %q", i, col, want[i])
		}
	}

	var antennas []pos.Antenna
	for line := 2; ; line++ {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read antenna table: %w", err)
		}
		ant, err := parseAntennaRecord(rec)
		if err != nil {
			return nil, configErrorf("antenna table line %d: %v", line, err)
		}
		antennas = append(antennas, ant)
	}
	return antennas, nil
}

func parseAntennaRecord(rec []string) (pos.Antenna, error) {
	id, err := strconv.Atoi(rec[0])
	if err != nil {
		return pos.Antenna{}, fmt.Errorf("bad antenna id %q", rec[0])
	}
	east, err := strconv.ParseFloat(rec[2], 64)
	if err != nil {
		return pos.Antenna{}, fmt.Errorf("bad east %q", rec[2])
	}
	north, err := strconv.ParseFloat(rec[3], 64)
	if err != nil {
		return pos.Antenna{}, fmt.Errorf("bad north %q", rec[3])
	}
	height, err := strconv.ParseFloat(rec[4], 64)
	if err != nil {
		return pos.Antenna{}, fmt.Errorf("bad height %q", rec[4])
	}
	flagged, err := strconv.ParseBool(rec[5])
	if err != nil {
		return pos.Antenna{}, fmt.Errorf("bad flagged %q", rec[5])
	}
	return pos.Antenna{
		ID:       id,
		Name:     rec[1],
		Position: pos.ENH{E: east, N: north, H: height},
		Flagged:  flagged,
	}, nil
}

// NewBlock allocates an empty visibility block shaped by this
// observation, covering the cross baselines of the full array.
func (o *ObsContext) NewBlock() *vis.Block {
	b := vis.NewBlock(o.Epochs, pos.CrossBaselines(o.Layout.Len()), o.ChannelFreqsHz)
	b.IntegrationSec = o.IntegrationSec
	b.ChannelWidthHz = o.ChannelWidthHz
	return b
}
