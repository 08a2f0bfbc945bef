// Package merge combines one resampled scalar series with the concatenation
// of all resampled waveform series for a subject into a single aligned table.
package merge

import (
	"math"
	"sort"
	"time"

	"PhysioAlign/internal/model"
	"PhysioAlign/internal/resample"
)

// roundDecimals is the fixed precision of merged value columns.
const roundDecimals = 2

// SideStats summarizes one side of the join for diagnostics. Helps debug
// non-overlapping recording windows before the join runs.
type SideStats struct {
	Rows  int
	First time.Time
	Last  time.Time
}

// Stats computes row count and timestamp range of a series. Gap samples are
// not counted as rows.
func Stats(s model.Series) SideStats {
	var st SideStats
	for _, smp := range s.Samples {
		if smp.Gap() {
			continue
		}
		if st.Rows == 0 || smp.Time.Before(st.First) {
			st.First = smp.Time
		}
		if st.Rows == 0 || smp.Time.After(st.Last) {
			st.Last = smp.Time
		}
		st.Rows++
	}
	return st
}

// Concat unions several resampled series into one, re-sorted globally by
// timestamp, dropping samples still missing a value after each file's own
// interpolation (residual edge gaps are discarded here, not propagated).
func Concat(series []model.Series) model.Series {
	out := model.Series{}
	for _, s := range series {
		if out.Label == "" {
			out.Label = s.Label
		}
		for _, smp := range s.Samples {
			if smp.Gap() {
				continue
			}
			out.Samples = append(out.Samples, smp)
		}
	}
	sort.Slice(out.Samples, func(i, j int) bool {
		return out.Samples[i].Time.Before(out.Samples[j].Time)
	})
	return out
}

// Merge joins the scalar series and the pre-concatenated waveform series on
// exact timestamp equality under the given mode, then rounds both value
// columns. An empty side yields an empty (never nil) row slice so callers can
// still emit a well-formed artifact.
func Merge(scalar, waveform model.Series, mode model.JoinMode) []model.MergedRow {
	scalarAt := valueMap(scalar)
	waveAt := valueMap(waveform)

	var keys []time.Time
	switch mode {
	case model.JoinOuter:
		keys = unionKeys(scalarAt, waveAt)
	default:
		keys = intersectKeys(scalarAt, waveAt)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Before(keys[j]) })

	glucose := columnOf(keys, scalarAt)
	ecg := columnOf(keys, waveAt)
	if mode == model.JoinOuter {
		// Second interpolation pass per column to fill gaps introduced by
		// timestamps present in only one source.
		resample.Interpolate(glucose)
		resample.Interpolate(ecg)
	}

	rows := make([]model.MergedRow, 0, len(keys))
	for i, t := range keys {
		if math.IsNaN(glucose[i]) || math.IsNaN(ecg[i]) {
			continue
		}
		rows = append(rows, model.MergedRow{
			Timestamp:   t,
			Glucose:     round(glucose[i]),
			EcgWaveform: round(ecg[i]),
		})
	}
	return rows
}

func valueMap(s model.Series) map[time.Time]float64 {
	m := make(map[time.Time]float64, len(s.Samples))
	for _, smp := range s.Samples {
		if smp.Gap() {
			continue
		}
		m[smp.Time] = smp.Value
	}
	return m
}

func intersectKeys(a, b map[time.Time]float64) []time.Time {
	keys := make([]time.Time, 0, len(a))
	for t := range a {
		if _, ok := b[t]; ok {
			keys = append(keys, t)
		}
	}
	return keys
}

func unionKeys(a, b map[time.Time]float64) []time.Time {
	seen := make(map[time.Time]struct{}, len(a)+len(b))
	keys := make([]time.Time, 0, len(a)+len(b))
	for t := range a {
		seen[t] = struct{}{}
		keys = append(keys, t)
	}
	for t := range b {
		if _, ok := seen[t]; !ok {
			keys = append(keys, t)
		}
	}
	return keys
}

func columnOf(keys []time.Time, at map[time.Time]float64) []float64 {
	col := make([]float64, len(keys))
	for i, t := range keys {
		v, ok := at[t]
		if !ok {
			v = math.NaN()
		}
		col[i] = v
	}
	return col
}

func round(v float64) float64 {
	shift := math.Pow(10, roundDecimals)
	return math.Round(v*shift) / shift
}
