// Package resample bins an irregular Series onto a fixed 1-minute grid.
// The operation is three composable steps with distinct edge-case policy:
// bin assignment, per-bin mean reduction, and linear gap interpolation.
package resample

import (
	"errors"
	"math"
	"time"

	"PhysioAlign/internal/model"
)

// BinWidth is the fixed grid interval.
const BinWidth = time.Minute

// ErrEmptySeries signals that a series has no samples and therefore no grid.
// Callers treat this as a skip, not a zero-row success.
var ErrEmptySeries = errors.New("resample: empty series")

// Grid returns the 1-minute grid points from the floor of min to the ceiling
// of max, inclusive. The span is determined entirely by the data.
func Grid(min, max time.Time) []time.Time {
	start := min.Truncate(BinWidth)
	end := max.Truncate(BinWidth)
	if !end.Equal(max) {
		end = end.Add(BinWidth)
	}
	var grid []time.Time
	for t := start; !t.After(end); t = t.Add(BinWidth) {
		grid = append(grid, t)
	}
	return grid
}

// Bin assigns each sample to the grid point at the floor of its timestamp.
// Input order does not matter.
func Bin(samples []model.Sample) map[time.Time][]float64 {
	bins := make(map[time.Time][]float64, len(samples))
	for _, s := range samples {
		key := s.Time.Truncate(BinWidth)
		bins[key] = append(bins[key], s.Value)
	}
	return bins
}

// ReduceMean collapses each grid point's bin to its arithmetic mean. Grid
// points with no samples become NaN gaps.
func ReduceMean(bins map[time.Time][]float64, grid []time.Time) []float64 {
	values := make([]float64, len(grid))
	for i, t := range grid {
		vs := bins[t]
		if len(vs) == 0 {
			values[i] = math.NaN()
			continue
		}
		sum := 0.0
		for _, v := range vs {
			sum += v
		}
		values[i] = sum / float64(len(vs))
	}
	return values
}

// Interpolate fills interior NaN runs by linear interpolation between the
// nearest known neighbors. Leading and trailing gaps stay NaN; there is no
// extrapolation. The input slice is returned modified in place.
func Interpolate(values []float64) []float64 {
	prev := -1 // index of last known value
	for i := 0; i < len(values); i++ {
		if math.IsNaN(values[i]) {
			continue
		}
		if prev >= 0 && i-prev > 1 {
			step := (values[i] - values[prev]) / float64(i-prev)
			for j := prev + 1; j < i; j++ {
				values[j] = values[prev] + step*float64(j-prev)
			}
		}
		prev = i
	}
	return values
}

// Resample runs the full chain: grid construction, bin assignment, per-bin
// mean, gap interpolation. The result has exactly one sample per grid point;
// unfilled edge gaps remain as NaN samples. Returns ErrEmptySeries when the
// input has no samples.
func Resample(s model.Series) (model.Series, error) {
	if s.Empty() {
		return model.Series{}, ErrEmptySeries
	}

	min, max := s.Samples[0].Time, s.Samples[0].Time
	for _, smp := range s.Samples[1:] {
		if smp.Time.Before(min) {
			min = smp.Time
		}
		if smp.Time.After(max) {
			max = smp.Time
		}
	}

	grid := Grid(min, max)
	values := Interpolate(ReduceMean(Bin(s.Samples), grid))

	out := model.Series{
		Label:   s.Label,
		Samples: make([]model.Sample, len(grid)),
	}
	for i, t := range grid {
		out.Samples[i] = model.Sample{Time: t, Value: values[i]}
	}
	return out, nil
}
