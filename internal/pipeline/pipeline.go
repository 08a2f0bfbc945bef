// Package pipeline orchestrates the per-subject cleaning run: each raw input
// file is normalized and resampled independently, then the subject's staged
// outputs are merged. Failures are isolated at the smallest unit (file, then
// subject) and travel as FileOutcome values, never as run-ending errors.
package pipeline

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"PhysioAlign/internal/config"
	"PhysioAlign/internal/csvio"
	"PhysioAlign/internal/merge"
	"PhysioAlign/internal/model"
	"PhysioAlign/internal/normalize"
	"PhysioAlign/internal/recorder"
	"PhysioAlign/internal/resample"
)

// Pipeline runs the clean-resample-merge sequence for configured subjects.
type Pipeline struct {
	Join     model.JoinMode
	Recorder recorder.Recorder
	RunID    string
}

// New creates a Pipeline. A nil recorder falls back to the noop recorder.
func New(join model.JoinMode, rec recorder.Recorder, runID string) *Pipeline {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Pipeline{Join: join, Recorder: rec, RunID: runID}
}

// Run processes every subject in order and returns all outcomes.
func (p *Pipeline) Run(subjects []config.Subject) []model.FileOutcome {
	var all []model.FileOutcome
	for _, sub := range subjects {
		all = append(all, p.RunSubject(sub)...)
	}
	return all
}

// RunSubject resamples each of the subject's input files, then merges the
// staged results. The merge stage runs even when some files were skipped;
// it aborts only when a staged file that should exist cannot be read back.
func (p *Pipeline) RunSubject(sub config.Subject) []model.FileOutcome {
	log.Printf("[INFO] subject %s: processing %d ecg file(s) and 1 cgm file", sub.ID, len(sub.ECGFiles))

	var outcomes []model.FileOutcome
	var ecgOutcomes []model.FileOutcome

	for _, in := range sub.ECGFiles {
		o := p.runStage(sub.ID, model.StageResampleECG, in, func() model.FileOutcome {
			return p.resampleECG(sub, in)
		})
		outcomes = append(outcomes, o)
		ecgOutcomes = append(ecgOutcomes, o)
	}

	cgmOutcome := p.runStage(sub.ID, model.StageResampleCGM, sub.CGMFile, func() model.FileOutcome {
		return p.resampleCGM(sub)
	})
	outcomes = append(outcomes, cgmOutcome)

	mergeOutcome := p.runStage(sub.ID, model.StageMerge, "", func() model.FileOutcome {
		return p.mergeSubject(sub, cgmOutcome, ecgOutcomes)
	})
	outcomes = append(outcomes, mergeOutcome)

	return outcomes
}

// runStage executes one unit of work behind a panic guard: an unexpected
// failure is logged with its file context and becomes a failed outcome for
// that unit only.
func (p *Pipeline) runStage(subject, stage, path string, fn func() model.FileOutcome) (o model.FileOutcome) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[ERROR] subject %s stage %s (%s): unexpected failure: %v", subject, stage, path, r)
			o = model.FileOutcome{
				Subject: subject, Stage: stage, Path: path,
				Status: model.StatusFailed, Reason: fmt.Sprintf("unexpected failure: %v", r),
			}
		}
		if err := p.Recorder.RecordOutcome(p.RunID, o); err != nil {
			log.Printf("[WARN] record outcome: %v", err)
		}
	}()
	return fn()
}

func (p *Pipeline) resampleECG(sub config.Subject, in string) model.FileOutcome {
	o := model.FileOutcome{Subject: sub.ID, Stage: model.StageResampleECG, Path: in}
	if _, err := os.Stat(in); err != nil {
		log.Printf("[WARN] file not found: %s, skipping", in)
		return skipped(o, "file not found")
	}
	log.Printf("[INFO] processing ecg file: %s", in)

	records, err := csvio.ReadECG(in)
	if err != nil {
		log.Printf("[ERROR] %s: %v", in, err)
		return failed(o, err)
	}
	series, dropped := normalize.ECGSeries(records)
	if dropped > 0 {
		log.Printf("[WARN] %s: dropped %d unparseable record(s)", in, dropped)
	}
	return p.writeResampled(o, sub, in, series)
}

func (p *Pipeline) resampleCGM(sub config.Subject) model.FileOutcome {
	in := sub.CGMFile
	o := model.FileOutcome{Subject: sub.ID, Stage: model.StageResampleCGM, Path: in}
	if _, err := os.Stat(in); err != nil {
		log.Printf("[WARN] file not found: %s, skipping", in)
		return skipped(o, "file not found")
	}
	log.Printf("[INFO] processing cgm file: %s", in)

	records, err := csvio.ReadCGM(in)
	if err != nil {
		log.Printf("[ERROR] %s: %v", in, err)
		return failed(o, err)
	}
	series, dropped := normalize.CGMSeries(records)
	if dropped > 0 {
		log.Printf("[WARN] %s: dropped %d record(s) (unparseable or non-cgm)", in, dropped)
	}
	return p.writeResampled(o, sub, in, series)
}

func (p *Pipeline) writeResampled(o model.FileOutcome, sub config.Subject, in string, series model.Series) model.FileOutcome {
	res, err := resample.Resample(series)
	if errors.Is(err, resample.ErrEmptySeries) {
		log.Printf("[WARN] %s: no parseable samples, no output produced", in)
		return skipped(o, "no parseable samples")
	}
	if err != nil {
		log.Printf("[ERROR] %s: %v", in, err)
		return failed(o, err)
	}

	out := ProcessedPath(sub.OutputDir, in)
	if err := csvio.WriteSeries(out, res); err != nil {
		log.Printf("[ERROR] %s: %v", in, err)
		return failed(o, err)
	}
	log.Printf("[INFO] resampled %s -> %s (%d grid points)", in, out, len(res.Samples))
	o.Path = out
	o.Status = model.StatusOK
	o.Rows = len(res.Samples)
	return o
}

func (p *Pipeline) mergeSubject(sub config.Subject, cgmOutcome model.FileOutcome, ecgOutcomes []model.FileOutcome) model.FileOutcome {
	out := MergedPath(sub)
	o := model.FileOutcome{Subject: sub.ID, Stage: model.StageMerge, Path: out}

	// An empty scalar or waveform side still merges into a headers-only
	// artifact; only a staged file that vanished aborts the merge stage.
	scalar := model.Series{Label: model.ColGlucose}
	if cgmOutcome.OK() {
		s, err := csvio.ReadSeries(cgmOutcome.Path, model.ColGlucose)
		if err != nil {
			log.Printf("[ERROR] subject %s: required processed file unavailable at merge: %v", sub.ID, err)
			return failed(o, err)
		}
		scalar = s
	}

	var waves []model.Series
	for _, eo := range ecgOutcomes {
		if !eo.OK() {
			continue
		}
		s, err := csvio.ReadSeries(eo.Path, model.ColWaveform)
		if err != nil {
			log.Printf("[ERROR] subject %s: required processed file unavailable at merge: %v", sub.ID, err)
			return failed(o, err)
		}
		waves = append(waves, s)
	}
	wave := merge.Concat(waves)

	sStats, wStats := merge.Stats(scalar), merge.Stats(wave)
	log.Printf("[INFO] subject %s: merging cgm rows=%d [%s .. %s] with ecg rows=%d [%s .. %s] (join=%s)",
		sub.ID, sStats.Rows, fmtTime(sStats.First), fmtTime(sStats.Last),
		wStats.Rows, fmtTime(wStats.First), fmtTime(wStats.Last), p.Join)

	rows := merge.Merge(scalar, wave, p.Join)
	if len(rows) == 0 {
		log.Printf("[WARN] subject %s: merge produced zero rows, likely non-overlapping recording windows", sub.ID)
	}

	if err := csvio.WriteMerged(out, rows); err != nil {
		log.Printf("[ERROR] subject %s: %v", sub.ID, err)
		return failed(o, err)
	}
	log.Printf("[INFO] subject %s: merged data saved to %s (%d rows)", sub.ID, out, len(rows))

	if err := p.Recorder.RecordMerge(&recorder.MergeSummary{
		RunID:      p.RunID,
		Subject:    sub.ID,
		JoinMode:   string(p.Join),
		ScalarRows: sStats.Rows,
		WaveRows:   wStats.Rows,
		MergedRows: len(rows),
		OutputPath: out,
	}); err != nil {
		log.Printf("[WARN] record merge: %v", err)
	}

	o.Status = model.StatusOK
	o.Rows = len(rows)
	return o
}

// ProcessedPath stages a resampled file under the subject's output directory,
// named after the input with a _processed suffix.
func ProcessedPath(outputDir, in string) string {
	base := strings.TrimSuffix(filepath.Base(in), filepath.Ext(in))
	return filepath.Join(outputDir, base+"_processed.csv")
}

// MergedPath is the subject's final artifact path.
func MergedPath(sub config.Subject) string {
	return filepath.Join(sub.OutputDir, sub.ID+"_merged_data.csv")
}

func skipped(o model.FileOutcome, reason string) model.FileOutcome {
	o.Status = model.StatusSkipped
	o.Reason = reason
	return o
}

func failed(o model.FileOutcome, err error) model.FileOutcome {
	o.Status = model.StatusFailed
	o.Reason = err.Error()
	return o
}

func fmtTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02 15:04")
}
