package jobs

import (
	"fmt"
	"log/slog"
)

// JobManager coordinates all scheduled jobs in the application.
type JobManager struct {
	statsReportJob *StatsReportJob
}

// NewJobManager creates a new job manager with all required jobs.
func NewJobManager(stats StatsSource, statsSchedule string, logger *slog.Logger) *JobManager {
	return &JobManager{
		statsReportJob: NewStatsReportJob(stats, statsSchedule, logger),
	}
}

// StartAll starts all scheduled jobs.
func (jm *JobManager) StartAll() error {
	if err := jm.statsReportJob.Start(); err != nil {
		return fmt.Errorf("failed to start stats report job: %w", err)
	}
	return nil
}

// StopAll stops all scheduled jobs gracefully.
func (jm *JobManager) StopAll() {
	jm.statsReportJob.Stop()
}
