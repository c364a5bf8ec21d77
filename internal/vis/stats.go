package vis

import "github.com/arraydata/visibility.report/internal/monitoring"

// flaggedCellCount accumulates, process-wide, the number of cells flagged
// because of missing or unusable calibration solutions. Per-block figures
// live in Stats; this counter feeds long-running diagnostics.
var flaggedCellCount monitoring.Counter

// FlaggedCellTotal returns the process-wide count of cells flagged due to
// solution errors since startup.
func FlaggedCellTotal() int64 { return flaggedCellCount.Value() }

// Stats summarises the processing of one block. A cell is one
// (time, baseline, channel) triple; element counts include the
// polarisation axis.
type Stats struct {
	// Input dimensions.
	TimeSteps int
	Baselines int
	Channels  int

	// Output dimensions after averaging.
	OutTimeSteps int
	OutChannels  int

	// CellsMissingSolution counts cells flagged because one of the
	// baseline's antennas had no calibration solution at all.
	CellsMissingSolution int

	// CellsInvalidSolution counts cells flagged because an antenna's
	// solution for that channel was singular or NaN.
	CellsInvalidSolution int

	// SolutionsSingular counts (antenna, channel) solutions rejected
	// during preparation because inversion was singular.
	SolutionsSingular int

	// OutputFlaggedElements counts flagged elements in the output block.
	OutputFlaggedElements int
}

// FlaggedForError returns the number of cells flagged by the pipeline
// itself, as opposed to flags already present in the input.
func (s Stats) FlaggedForError() int {
	return s.CellsMissingSolution + s.CellsInvalidSolution
}

func (s *Stats) merge(o Stats) {
	s.CellsMissingSolution += o.CellsMissingSolution
	s.CellsInvalidSolution += o.CellsInvalidSolution
	s.OutputFlaggedElements += o.OutputFlaggedElements
}
