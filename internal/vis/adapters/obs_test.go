package adapters

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arraydata/visibility.report/internal/pos"
)

const testMetaJSON = `{
  "obs_id": "1090008640",
  "latitude_rad": -0.4660608448386394,
  "longitude_rad": 2.0362898668561042,
  "height_m": 377.827,
  "phase_centre_ra_deg": 0.0,
  "phase_centre_dec_deg": -27.0,
  "start_time_gps": 1090008642,
  "num_time_steps": 4,
  "integration_sec": 2.0,
  "start_freq_hz": 150e6,
  "num_channels": 3,
  "channel_width_hz": 40e3
}`

const testAntennaCSV = `id,name,east,north,height,flagged
0,Tile000,0,0,0,false
1,Tile001,100,0,0,false
2,Tile002,0,150,2,true
`

func writeObsFixtures(t *testing.T, metaJSON, antennaCSV string) (metaPath, antPath string) {
	t.Helper()
	dir := t.TempDir()
	metaPath = filepath.Join(dir, "obs.json")
	antPath = filepath.Join(dir, "antennas.csv")
	require.NoError(t, os.WriteFile(metaPath, []byte(metaJSON), 0644))
	require.NoError(t, os.WriteFile(antPath, []byte(antennaCSV), 0644))
	return metaPath, antPath
}

func TestLoadObsContext(t *testing.T) {
	metaPath, antPath := writeObsFixtures(t, testMetaJSON, testAntennaCSV)

	obs, err := LoadObsContext(metaPath, antPath)
	require.NoError(t, err)

	assert.Equal(t, "1090008640", obs.ObsID)
	assert.Equal(t, 3, obs.Layout.Len())
	assert.Equal(t, 4, len(obs.Epochs))
	assert.Equal(t, 3, len(obs.ChannelFreqsHz))

	// Epochs step by the integration time.
	assert.InDelta(t, 1090008642, obs.Epochs[0].GPSSeconds(), 1e-9)
	assert.InDelta(t, 1090008648, obs.Epochs[3].GPSSeconds(), 1e-9)
	assert.InDelta(t, 150.08e6, obs.ChannelFreqsHz[2], 1e-3)

	// Flagged antennas stay in the layout; data flags exclude them later.
	ant, err := obs.Layout.Get(2)
	require.NoError(t, err)
	assert.True(t, ant.Flagged)
	assert.Equal(t, "Tile002", ant.Name)

	want := pos.RADecFromDegrees(0, -27)
	assert.InDelta(t, want.RA, obs.PhaseCentre.RA, 1e-12)
	assert.InDelta(t, want.Dec, obs.PhaseCentre.Dec, 1e-12)
}

func TestLoadObsContextMissingFields(t *testing.T) {
	tests := []struct {
		name string
		json string
	}{
		{"no location", `{"obs_id":"x","phase_centre_ra_deg":0,"phase_centre_dec_deg":-27,"start_time_gps":1,"num_time_steps":1,"integration_sec":2,"start_freq_hz":1,"num_channels":1,"channel_width_hz":1}`},
		{"no phase centre", `{"obs_id":"x","latitude_rad":0,"longitude_rad":0,"start_time_gps":1,"num_time_steps":1,"integration_sec":2,"start_freq_hz":1,"num_channels":1,"channel_width_hz":1}`},
		{"zero channels", `{"obs_id":"x","latitude_rad":0,"longitude_rad":0,"phase_centre_ra_deg":0,"phase_centre_dec_deg":-27,"start_time_gps":1,"num_time_steps":1,"integration_sec":2,"start_freq_hz":1,"num_channels":0,"channel_width_hz":1}`},
		{"negative integration", `{"obs_id":"x","latitude_rad":0,"longitude_rad":0,"phase_centre_ra_deg":0,"phase_centre_dec_deg":-27,"start_time_gps":1,"num_time_steps":1,"integration_sec":-1,"start_freq_hz":1,"num_channels":1,"channel_width_hz":1}`},
		{"dec out of range", `{"obs_id":"x","latitude_rad":0,"longitude_rad":0,"phase_centre_ra_deg":0,"phase_centre_dec_deg":-95,"start_time_gps":1,"num_time_steps":1,"integration_sec":2,"start_freq_hz":1,"num_channels":1,"channel_width_hz":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			metaPath, antPath := writeObsFixtures(t, tt.json, testAntennaCSV)
			_, err := LoadObsContext(metaPath, antPath)
			require.Error(t, err)
			var cfg *pos.ConfigError
			assert.True(t, errors.As(err, &cfg), "want ConfigError, got %T", err)
		})
	}
}

func TestLoadObsContextBadAntennaTable(t *testing.T) {
	tests := []struct {
		name string
		csv  string
	}{
		{"empty file", ""},
		{"wrong header", "id,name,x,y,z,flagged\n0,a,0,0,0,false\n"},
		{"bad id", "id,name,east,north,height,flagged\nxx,a,0,0,0,false\n"},
		{"bad flag", "id,name,east,north,height,flagged\n0,a,0,0,0,maybe\n"},
		{"duplicate id", "id,name,east,north,height,flagged\n0,a,0,0,0,false\n0,b,1,0,0,false\n"},
		{"no antennas", "id,name,east,north,height,flagged\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			metaPath, antPath := writeObsFixtures(t, testMetaJSON, tt.csv)
			_, err := LoadObsContext(metaPath, antPath)
			require.Error(t, err)
			var cfg *pos.ConfigError
			assert.True(t, errors.As(err, &cfg), "want ConfigError, got %T", err)
		})
	}
}

func TestLoadObsContextRejectsNonJSON(t *testing.T) {
	_, antPath := writeObsFixtures(t, testMetaJSON, testAntennaCSV)
	_, err := LoadObsContext("/some/path/obs.yaml", antPath)
	require.Error(t, err)
}

func TestObsContextNewBlock(t *testing.T) {
	metaPath, antPath := writeObsFixtures(t, testMetaJSON, testAntennaCSV)
	obs, err := LoadObsContext(metaPath, antPath)
	require.NoError(t, err)

	b := obs.NewBlock()
	require.NoError(t, b.CheckShape())
	assert.Equal(t, 3, len(b.Baselines)) // 3 antennas -> 3 cross baselines
	assert.Equal(t, 2.0, b.IntegrationSec)
	assert.Equal(t, 40e3, b.ChannelWidthHz)
}
