package model

import "fmt"

// JoinMode selects how the merge stage combines scalar and waveform timestamps.
type JoinMode string

const (
	// JoinInner keeps only timestamps present in both series.
	JoinInner JoinMode = "inner"
	// JoinOuter keeps the union of timestamps, interpolates each column a
	// second time, then drops rows still missing a value.
	JoinOuter JoinMode = "outer"
)

// ParseJoinMode validates a join mode string.
func ParseJoinMode(s string) (JoinMode, error) {
	switch JoinMode(s) {
	case JoinInner, JoinOuter:
		return JoinMode(s), nil
	}
	return "", fmt.Errorf("unknown join mode %q (want inner or outer)", s)
}

// Status classifies how one unit of work (one file, one merge) ended.
type Status string

const (
	StatusOK      Status = "OK"
	StatusSkipped Status = "SKIPPED"
	StatusFailed  Status = "FAILED"
)

// Pipeline stage names used in outcomes and recorder rows.
const (
	StageResampleECG = "resample_ecg"
	StageResampleCGM = "resample_cgm"
	StageMerge       = "merge"
)

// FileOutcome records how one unit of work ended. Failures never escape as
// errors from the pipeline; they travel as outcomes so the skip/abort policy
// stays testable.
type FileOutcome struct {
	Subject string
	Stage   string
	Path    string
	Status  Status
	Rows    int
	Reason  string
}

// OK reports whether the unit produced usable output.
func (o FileOutcome) OK() bool {
	return o.Status == StatusOK
}
