package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/arraydata/visibility.report/internal/units"
)

// DefaultConfigPath is the path to the canonical tuning defaults file.
// This is the single source of truth for all default tuning values.
const DefaultConfigPath = "config/tuning.defaults.json"

// TuningConfig represents the root configuration for pipeline tuning
// parameters. Fields are pointers so a partial JSON file only overrides
// what it mentions; the Get* accessors supply defaults for the rest.
type TuningConfig struct {
	// Averaging params
	TimeAverage *int `json:"time_average,omitempty"`
	FreqAverage *int `json:"freq_average,omitempty"`

	// Calibration params
	SingularEpsilon *float64 `json:"singular_epsilon,omitempty"`
	InvertSolutions *bool    `json:"invert_solutions,omitempty"`
	ApplyEngine     *string  `json:"apply_engine,omitempty"` // "cell" or "unrolled"

	// Rephasing params: both angles must be set to request a new phase
	// centre. The unit applies to both and defaults to degrees.
	PhaseCentreRA   *float64 `json:"phase_centre_ra,omitempty"`
	PhaseCentreDec  *float64 `json:"phase_centre_dec,omitempty"`
	PhaseCentreUnit *string  `json:"phase_centre_unit,omitempty"` // "deg" or "rad"

	// Worker params
	Workers *int `json:"workers,omitempty"`

	// Writer params
	Writer         *string `json:"writer,omitempty"`         // "sqlite" or "memory"
	DBPath         *string `json:"db_path,omitempty"`        // sqlite database file
	FlushInterval  *string `json:"flush_interval,omitempty"` // duration string like "5s"
	FlushBatchRows *int    `json:"flush_batch_rows,omitempty"`
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrBool(v bool) *bool          { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }

// EmptyTuningConfig returns a TuningConfig with all fields set to nil.
// Use LoadTuningConfig to load actual values from the defaults file.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// LoadTuningConfig loads a TuningConfig from a JSON file.
// The file is validated to ensure it has a .json extension and is under the max file size.
// Fields omitted from the JSON file retain their default values, so
// partial configs are safe.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	// Validate the config file path.
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	// Check file size for safety (max 1MB)
	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse JSON into empty config. The Get* methods provide fallback
	// defaults for any fields not specified in the JSON.
	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	// Validate the configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical tuning defaults from DefaultConfigPath.
// It searches for the file in the current directory and common parent directories.
// Panics if the file cannot be loaded, intended for test setup.
func MustLoadDefaultConfig() *TuningConfig {
	// Try paths from current dir up to repo root
	candidates := []string{
		DefaultConfigPath,
		"../../" + DefaultConfigPath,    // from internal/config/
		"../../../" + DefaultConfigPath, // from internal/vis/storage/sqlite/
		"../../../../" + DefaultConfigPath,
	}
	for _, path := range candidates {
		if cfg, err := LoadTuningConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are valid.
func (c *TuningConfig) Validate() error {
	if c.TimeAverage != nil && *c.TimeAverage < 1 {
		return fmt.Errorf("time_average must be at least 1, got %d", *c.TimeAverage)
	}
	if c.FreqAverage != nil && *c.FreqAverage < 1 {
		return fmt.Errorf("freq_average must be at least 1, got %d", *c.FreqAverage)
	}

	if c.SingularEpsilon != nil {
		if *c.SingularEpsilon <= 0 || *c.SingularEpsilon >= 1 {
			return fmt.Errorf("singular_epsilon must be in (0, 1), got %g", *c.SingularEpsilon)
		}
	}

	if c.ApplyEngine != nil {
		switch *c.ApplyEngine {
		case "", "cell", "unrolled":
		default:
			return fmt.Errorf("unknown apply_engine %q", *c.ApplyEngine)
		}
	}

	// Rephasing needs both angles or neither.
	if (c.PhaseCentreRA == nil) != (c.PhaseCentreDec == nil) {
		return fmt.Errorf("phase_centre_ra and phase_centre_dec must be set together")
	}
	if c.PhaseCentreUnit != nil && *c.PhaseCentreUnit != "" {
		if !units.IsValidAngleUnit(*c.PhaseCentreUnit) {
			return fmt.Errorf("unknown phase_centre_unit %q, want one of %v", *c.PhaseCentreUnit, units.ValidAngleUnits)
		}
	}
	if c.PhaseCentreDec != nil {
		decRad := units.ToRadians(*c.PhaseCentreDec, c.GetPhaseCentreUnit())
		if decRad < -math.Pi/2 || decRad > math.Pi/2 {
			return fmt.Errorf("phase_centre_dec must be within a quarter turn of the equator, got %f %s",
				*c.PhaseCentreDec, c.GetPhaseCentreUnit())
		}
	}

	if c.Workers != nil && *c.Workers < 0 {
		return fmt.Errorf("workers must be non-negative, got %d", *c.Workers)
	}

	if c.Writer != nil {
		switch *c.Writer {
		case "", "sqlite", "memory":
		default:
			return fmt.Errorf("unknown writer %q", *c.Writer)
		}
	}

	// Validate FlushInterval can be parsed if set
	if c.FlushInterval != nil && *c.FlushInterval != "" {
		if _, err := time.ParseDuration(*c.FlushInterval); err != nil {
			return fmt.Errorf("invalid flush_interval '%s': %w", *c.FlushInterval, err)
		}
	}

	if c.FlushBatchRows != nil && *c.FlushBatchRows < 1 {
		return fmt.Errorf("flush_batch_rows must be at least 1, got %d", *c.FlushBatchRows)
	}

	return nil
}

// GetTimeAverage returns the time_average value or the default.
func (c *TuningConfig) GetTimeAverage() int {
	if c.TimeAverage == nil {
		return 1 // default: no time averaging
	}
	return *c.TimeAverage
}

// GetFreqAverage returns the freq_average value or the default.
func (c *TuningConfig) GetFreqAverage() int {
	if c.FreqAverage == nil {
		return 1 // default: no frequency averaging
	}
	return *c.FreqAverage
}

// GetSingularEpsilon returns the singular_epsilon value or the default.
func (c *TuningConfig) GetSingularEpsilon() float64 {
	if c.SingularEpsilon == nil {
		return 1e-12
	}
	return *c.SingularEpsilon
}

// GetInvertSolutions returns the invert_solutions value or the default.
func (c *TuningConfig) GetInvertSolutions() bool {
	if c.InvertSolutions == nil {
		return true // default: supplied matrices are gains to undo
	}
	return *c.InvertSolutions
}

// GetApplyEngine returns the apply_engine value or the default.
func (c *TuningConfig) GetApplyEngine() string {
	if c.ApplyEngine == nil {
		return "cell"
	}
	return *c.ApplyEngine
}

// GetPhaseCentreUnit returns the phase_centre_unit value or the default.
func (c *TuningConfig) GetPhaseCentreUnit() string {
	if c.PhaseCentreUnit == nil || *c.PhaseCentreUnit == "" {
		return units.Degrees
	}
	return *c.PhaseCentreUnit
}

// PhaseCentreRadians returns the configured target phase centre in
// radians, converted from the configured unit, or ok=false when no
// rephasing was requested.
func (c *TuningConfig) PhaseCentreRadians() (ra, dec float64, ok bool) {
	if c.PhaseCentreRA == nil || c.PhaseCentreDec == nil {
		return 0, 0, false
	}
	unit := c.GetPhaseCentreUnit()
	return units.ToRadians(*c.PhaseCentreRA, unit), units.ToRadians(*c.PhaseCentreDec, unit), true
}

// GetWorkers returns the workers value or the default.
func (c *TuningConfig) GetWorkers() int {
	if c.Workers == nil {
		return 0 // default: one worker per CPU
	}
	return *c.Workers
}

// GetWriter returns the writer value or the default.
func (c *TuningConfig) GetWriter() string {
	if c.Writer == nil {
		return "sqlite"
	}
	return *c.Writer
}

// GetDBPath returns the db_path value or the default.
func (c *TuningConfig) GetDBPath() string {
	if c.DBPath == nil {
		return "visibilities.db"
	}
	return *c.DBPath
}

// GetFlushInterval parses and returns the FlushInterval as a time.Duration.
func (c *TuningConfig) GetFlushInterval() time.Duration {
	if c.FlushInterval == nil || *c.FlushInterval == "" {
		return 5 * time.Second // default
	}
	d, err := time.ParseDuration(*c.FlushInterval)
	if err != nil {
		return 5 * time.Second // default on parse error
	}
	return d
}

// GetFlushBatchRows returns the flush_batch_rows value or the default.
func (c *TuningConfig) GetFlushBatchRows() int {
	if c.FlushBatchRows == nil {
		return 4096
	}
	return *c.FlushBatchRows
}
