package csvio

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PhysioAlign/internal/model"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadECG(t *testing.T) {
	// Columns are positional; the header names do not matter.
	path := writeFile(t, "ecg.csv",
		"ts,mv\n"+
			"01/10/2014 00:00:01.000,0.5\n"+
			"01/10/2014 00:00:02.000,0.6\n")

	records, err := ReadECG(path)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "01/10/2014 00:00:01.000", records[0].Time)
	assert.Equal(t, "0.6", records[1].Waveform)
}

func TestReadECG_MissingFile(t *testing.T) {
	_, err := ReadECG(filepath.Join(t.TempDir(), "nope.csv"))
	assert.Error(t, err)
}

func TestReadCGM(t *testing.T) {
	// Columns are located by name, in any order.
	path := writeFile(t, "glucose.csv",
		"glucose,type,date,time\n"+
			"100,cgm,2014-10-01,00:00:05\n"+
			"105,calibration,2014-10-01,00:01:00\n")

	records, err := ReadCGM(path)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "100", records[0].Glucose)
	assert.Equal(t, "cgm", records[0].Type)
	assert.Equal(t, "2014-10-01", records[0].Date)
	assert.Equal(t, "calibration", records[1].Type)
}

func TestReadCGM_MissingColumn(t *testing.T) {
	path := writeFile(t, "glucose.csv", "date,time,glucose\n2014-10-01,00:00:05,100\n")
	_, err := ReadCGM(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "type")
}

func TestWriteSeriesRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "out", "ecg_processed.csv")

	s := model.Series{
		Label: model.ColWaveform,
		Samples: []model.Sample{
			{Time: time.Date(2014, 10, 1, 0, 0, 0, 0, time.UTC), Value: 0.55},
			{Time: time.Date(2014, 10, 1, 0, 1, 0, 0, time.UTC), Value: math.NaN()},
			{Time: time.Date(2014, 10, 1, 0, 2, 0, 0, time.UTC), Value: 0.30},
		},
	}
	require.NoError(t, WriteSeries(path, s), "output directories are created if missing")

	got, err := ReadSeries(path, model.ColWaveform)
	require.NoError(t, err)
	require.Len(t, got.Samples, 3)
	assert.Equal(t, 0.55, got.Samples[0].Value)
	assert.True(t, got.Samples[1].Gap(), "empty cell reads back as a gap")
	assert.Equal(t, 0.30, got.Samples[2].Value)
	assert.True(t, got.Samples[0].Time.Equal(s.Samples[0].Time))
}

func TestWriteMerged_ZeroRowsKeepsHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "merged.csv")
	require.NoError(t, WriteMerged(path, nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Timestamp,Glucose,EcgWaveform\n", string(data))
}

func TestWriteMerged_FixedPrecision(t *testing.T) {
	path := filepath.Join(t.TempDir(), "merged.csv")
	rows := []model.MergedRow{
		{
			Timestamp:   time.Date(2014, 10, 1, 0, 0, 0, 0, time.UTC),
			Glucose:     100,
			EcgWaveform: 0.55,
		},
	}
	require.NoError(t, WriteMerged(path, rows))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t,
		"Timestamp,Glucose,EcgWaveform\n2014-10-01 00:00:00,100.00,0.55\n",
		string(data))
}
