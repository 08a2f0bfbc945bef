// Package normalize turns raw CSV records into Series with canonical, parsed
// timestamps. Records whose timestamp or value fails its format are dropped,
// never defaulted; dropping is per record, not per file.
package normalize

import (
	"strconv"
	"strings"
	"time"

	"PhysioAlign/internal/model"
)

// ECG timestamps are day/month/year with an optional fractional-seconds part.
const ecgLayout = "02/01/2006 15:04:05.999999"

// CGM timestamps arrive as separate date and time columns; the time column
// sometimes omits seconds.
var cgmLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// cgmKeepType is the record category retained from glucose files.
const cgmKeepType = "cgm"

// ParseECGTime parses a waveform timestamp. Timestamps are wall-clock local
// readings with no zone information; they are anchored to UTC so minute
// truncation and comparisons behave uniformly.
func ParseECGTime(s string) (time.Time, error) {
	return time.ParseInLocation(ecgLayout, strings.TrimSpace(s), time.UTC)
}

// ParseCGMTime assembles a scalar timestamp from its date and time fields,
// joined by a single space, and parses it.
func ParseCGMTime(date, clock string) (time.Time, error) {
	raw := strings.TrimSpace(date) + " " + strings.TrimSpace(clock)
	var firstErr error
	for _, layout := range cgmLayouts {
		t, err := time.ParseInLocation(layout, raw, time.UTC)
		if err == nil {
			return t, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}

// ECGSeries converts raw waveform records into a Series labeled EcgWaveform.
// Returns the series and the number of records dropped as unparseable.
func ECGSeries(records []model.RawECGRecord) (model.Series, int) {
	series := model.Series{Label: model.ColWaveform}
	dropped := 0
	for _, rec := range records {
		t, err := ParseECGTime(rec.Time)
		if err != nil {
			dropped++
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(rec.Waveform), 64)
		if err != nil {
			dropped++
			continue
		}
		series.Samples = append(series.Samples, model.Sample{Time: t, Value: v})
	}
	return series, dropped
}

// CGMSeries converts raw glucose records into a Series labeled Glucose,
// keeping only records whose type is "cgm". Returns the series and the number
// of records dropped (unparseable or other categories).
func CGMSeries(records []model.RawCGMRecord) (model.Series, int) {
	series := model.Series{Label: model.ColGlucose}
	dropped := 0
	for _, rec := range records {
		t, err := ParseCGMTime(rec.Date, rec.Time)
		if err != nil {
			dropped++
			continue
		}
		if strings.TrimSpace(rec.Type) != cgmKeepType {
			dropped++
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(rec.Glucose), 64)
		if err != nil {
			dropped++
			continue
		}
		series.Samples = append(series.Samples, model.Sample{Time: t, Value: v})
	}
	return series, dropped
}
