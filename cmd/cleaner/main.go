package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"PhysioAlign/internal/config"
	"PhysioAlign/internal/model"
	"PhysioAlign/internal/pipeline"
	"PhysioAlign/internal/recorder"
	"PhysioAlign/internal/scheduler"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] PhysioAlign cleaner starting...")

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}
	log.Printf("[INFO] %d subject(s) configured, join mode: %s", len(cfg.Subjects), cfg.Join)

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	runBatch := func() {
		runID := uuid.NewString()
		started := time.Now()
		log.Printf("[INFO] run %s started", runID)

		p := pipeline.New(cfg.JoinMode(), rec, runID)
		outcomes := p.Run(cfg.Subjects)

		summary := recorder.RunSummary{
			RunID:      runID,
			StartedAt:  started.Unix(),
			FinishedAt: time.Now().Unix(),
			Subjects:   len(cfg.Subjects),
		}
		for _, o := range outcomes {
			switch o.Status {
			case model.StatusOK:
				summary.OK++
			case model.StatusSkipped:
				summary.Skipped++
			case model.StatusFailed:
				summary.Failed++
			}
		}
		if err := rec.RecordRun(&summary); err != nil {
			log.Printf("[WARN] record run: %v", err)
		}
		log.Printf("[INFO] run %s finished: %d ok, %d skipped, %d failed",
			runID, summary.OK, summary.Skipped, summary.Failed)
	}

	// One-shot batch is the default; a cron schedule keeps the process up
	// and re-runs the batch.
	runBatch()
	if cfg.Schedule.Cron == "" {
		log.Println("[INFO] data processing pipeline complete")
		return
	}

	sched := scheduler.NewScheduler()
	if err := sched.Register(cfg.Schedule.Cron, runBatch); err != nil {
		log.Fatalf("[FATAL] register cron schedule: %v", err)
	}
	sched.Start()
	defer sched.Stop()
	log.Printf("[INFO] scheduled re-run enabled (%s). Press Ctrl+C to stop.", cfg.Schedule.Cron)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Println("[INFO] shutdown signal received, stopping...")
}
