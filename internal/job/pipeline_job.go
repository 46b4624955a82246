package job

import (
	"context"
	"log"
	"time"

	"ptre-signal-engine/internal/service"

	"go.opentelemetry.io/otel/trace"
)

type PipelineRunner interface {
	RunAll(ctx context.Context) service.PipelineResult
}

// PipelineJob reruns the full batch pipeline once per day at a fixed UTC
// hour, after the US close.
type PipelineJob struct {
	tracer  trace.Tracer
	service PipelineRunner
	runHour int
}

func NewPipelineJob(tracer trace.Tracer, svc PipelineRunner, runHourUTC int) *PipelineJob {
	if runHourUTC < 0 || runHourUTC > 23 {
		runHourUTC = 1
	}
	return &PipelineJob{tracer: tracer, service: svc, runHour: runHourUTC}
}

func (j *PipelineJob) Start(ctx context.Context) {
	if j.service == nil {
		log.Println("pipeline job disabled: no service")
		<-ctx.Done()
		return
	}
	for {
		next := nextRunUTC(time.Now().UTC(), j.runHour)
		wait := time.Until(next)
		if wait < time.Second {
			wait = time.Second
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			j.runOnce(ctx)
		}
	}
}

func (j *PipelineJob) runOnce(ctx context.Context) {
	ctx, span := j.tracer.Start(ctx, "pipeline-job.run-once")
	defer span.End()

	result := j.service.RunAll(ctx)
	for ticker, err := range result.Failed {
		log.Printf("pipeline job: %s failed: %v", ticker, err)
	}
}

func nextRunUTC(now time.Time, hour int) time.Time {
	run := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, time.UTC)
	if !run.After(now) {
		run = run.Add(24 * time.Hour)
	}
	return run
}
