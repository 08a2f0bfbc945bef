package model

import (
	"math"
	"time"
)

// Column labels shared by every stage so merge keys line up across sources.
const (
	ColTimestamp = "Timestamp"
	ColGlucose   = "Glucose"
	ColWaveform  = "EcgWaveform"
)

// RawECGRecord is one row of a waveform input file as read: two positional
// columns, timestamp text and amplitude text.
type RawECGRecord struct {
	Time     string
	Waveform string
}

// RawCGMRecord is one row of a glucose input file as read. Date and Time are
// separate columns; Type discriminates record categories within the same file.
type RawCGMRecord struct {
	Date    string
	Time    string
	Type    string
	Glucose string
}

// Sample is a single normalized measurement. A NaN Value marks a gap on a
// resampled grid.
type Sample struct {
	Time  time.Time
	Value float64
}

// Gap reports whether the sample carries no value.
func (s Sample) Gap() bool {
	return math.IsNaN(s.Value)
}

// Series holds one quantity's samples for a single source. Before resampling
// the samples need not be sorted or unique by timestamp; after resampling they
// are exactly the 1-minute grid points of the observed range.
type Series struct {
	Label   string
	Samples []Sample
}

// Empty reports whether the series has no samples.
func (s Series) Empty() bool {
	return len(s.Samples) == 0
}

// MergedRow is one row of the final aligned table.
type MergedRow struct {
	Timestamp   time.Time
	Glucose     float64
	EcgWaveform float64
}
