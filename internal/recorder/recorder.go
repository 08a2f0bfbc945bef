package recorder

import "PhysioAlign/internal/model"

// RunSummary holds aggregate data for one pipeline run.
type RunSummary struct {
	RunID      string
	StartedAt  int64 // unix seconds
	FinishedAt int64
	Subjects   int
	OK         int
	Skipped    int
	Failed     int
}

// MergeSummary records the merge stage result for one subject.
type MergeSummary struct {
	RunID      string
	Subject    string
	JoinMode   string
	ScalarRows int
	WaveRows   int
	MergedRows int
	OutputPath string
}

// Recorder persists pipeline run history for later inspection.
type Recorder interface {
	RecordRun(run *RunSummary) error
	RecordOutcome(runID string, o model.FileOutcome) error
	RecordMerge(m *MergeSummary) error
	Close() error
}
