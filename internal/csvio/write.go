package csvio

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"PhysioAlign/internal/model"
)

// WriteSeries persists a resampled series with a Timestamp column plus the
// series' own value column. Gap samples are written as empty cells. Output
// directories are created if missing.
func WriteSeries(path string, s model.Series) error {
	f, err := createFile(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{model.ColTimestamp, s.Label}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, smp := range s.Samples {
		cell := ""
		if !smp.Gap() {
			cell = strconv.FormatFloat(smp.Value, 'f', -1, 64)
		}
		if err := w.Write([]string{smp.Time.Format(timeLayout), cell}); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return nil
}

// WriteMerged persists the merged table. The header is always written, even
// for zero rows, so downstream consumers find a well-formed artifact.
func WriteMerged(path string, rows []model.MergedRow) error {
	f, err := createFile(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{model.ColTimestamp, model.ColGlucose, model.ColWaveform}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, row := range rows {
		record := []string{
			row.Timestamp.Format(timeLayout),
			strconv.FormatFloat(row.Glucose, 'f', 2, 64),
			strconv.FormatFloat(row.EcgWaveform, 'f', 2, 64),
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return nil
}

func createFile(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create output dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create output file: %w", err)
	}
	return f, nil
}
