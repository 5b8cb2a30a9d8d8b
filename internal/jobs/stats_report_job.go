package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"taxi/internal/domain"
)

// StatsSource provides order statistics.
type StatsSource interface {
	Stats(ctx context.Context) (*domain.OrderStats, error)
}

// StatsReportJob periodically logs order counts per status.
type StatsReportJob struct {
	source   StatsSource
	schedule string
	cron     *cron.Cron
	logger   *slog.Logger
}

// NewStatsReportJob creates a job running on a six-field cron schedule
// (seconds first).
func NewStatsReportJob(source StatsSource, schedule string, logger *slog.Logger) *StatsReportJob {
	return &StatsReportJob{
		source:   source,
		schedule: schedule,
		cron:     cron.New(cron.WithSeconds()),
		logger:   logger.With("component", "stats_report_job"),
	}
}

// Start schedules the report. An empty schedule disables the job.
func (j *StatsReportJob) Start() error {
	if j.schedule == "" {
		j.logger.InfoContext(context.Background(), "Stats report job disabled")
		return nil
	}

	if _, err := j.cron.AddFunc(j.schedule, j.Run); err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Stats report job started", "schedule", j.schedule)
	return nil
}

// Run logs one report.
func (j *StatsReportJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	stats, err := j.source.Stats(ctx)
	if err != nil {
		j.logger.ErrorContext(ctx, "Stats report job failed", "error", err)
		return
	}

	attrs := []any{"total", stats.Total}
	for _, status := range domain.OrderStatuses {
		attrs = append(attrs, string(status), stats.Count(status))
	}
	j.logger.InfoContext(ctx, "Order stats", attrs...)
}

// Stop stops the job and waits for a running report to finish.
func (j *StatsReportJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Stats report job stopped")
}
