package recorder

import "PhysioAlign/internal/model"

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordRun(_ *RunSummary) error                      { return nil }
func (n *NoopRecorder) RecordOutcome(_ string, _ model.FileOutcome) error  { return nil }
func (n *NoopRecorder) RecordMerge(_ *MergeSummary) error                  { return nil }
func (n *NoopRecorder) Close() error                                       { return nil }
