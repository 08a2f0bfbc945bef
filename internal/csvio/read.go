// Package csvio is the I/O boundary: reading raw input CSVs into raw records
// and writing resampled/merged CSVs. It does no timestamp or value parsing of
// raw inputs beyond column mapping; that belongs to normalize.
package csvio

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"PhysioAlign/internal/model"
)

// timeLayout is the timestamp format of every output artifact.
const timeLayout = "2006-01-02 15:04:05"

// ReadECG reads a waveform input file. The two columns are positional and
// renamed on read to Time and EcgWaveform; the first row is treated as a
// header and discarded. Short rows are skipped.
func ReadECG(path string) ([]model.RawECGRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open ecg file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	var records []model.RawECGRecord
	first := true
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read ecg file: %w", err)
		}
		if first {
			first = false
			continue
		}
		if len(row) < 2 {
			continue
		}
		records = append(records, model.RawECGRecord{Time: row[0], Waveform: row[1]})
	}
	return records, nil
}

// ReadCGM reads a glucose input file. Columns are located by header name;
// date, time, type and glucose are all required.
func ReadCGM(path string) ([]model.RawCGMRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open cgm file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read cgm header: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.TrimSpace(strings.ToLower(name))] = i
	}
	for _, required := range []string{"date", "time", "type", "glucose"} {
		if _, ok := idx[required]; !ok {
			return nil, fmt.Errorf("cgm file missing column %q", required)
		}
	}

	var records []model.RawCGMRecord
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read cgm file: %w", err)
		}
		max := idx["glucose"]
		for _, i := range []int{idx["date"], idx["time"], idx["type"]} {
			if i > max {
				max = i
			}
		}
		if len(row) <= max {
			continue
		}
		records = append(records, model.RawCGMRecord{
			Date:    row[idx["date"]],
			Time:    row[idx["time"]],
			Type:    row[idx["type"]],
			Glucose: row[idx["glucose"]],
		})
	}
	return records, nil
}

// ReadSeries reads back a staged resampled file written by WriteSeries.
// Empty value cells become gap samples.
func ReadSeries(path, label string) (model.Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return model.Series{}, fmt.Errorf("open resampled file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	series := model.Series{Label: label}
	first := true
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return model.Series{}, fmt.Errorf("read resampled file: %w", err)
		}
		if first {
			first = false
			continue
		}
		if len(row) < 2 {
			continue
		}
		t, err := time.ParseInLocation(timeLayout, row[0], time.UTC)
		if err != nil {
			continue
		}
		v := math.NaN()
		if cell := strings.TrimSpace(row[1]); cell != "" {
			v, err = strconv.ParseFloat(cell, 64)
			if err != nil {
				continue
			}
		}
		series.Samples = append(series.Samples, model.Sample{Time: t, Value: v})
	}
	return series, nil
}
