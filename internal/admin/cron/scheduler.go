package cronjob

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/shoplist-app/shoplist-backend/internal/admin/repository"
	"github.com/shoplist-app/shoplist-backend/internal/admin/service"
)

// Scheduler runs the nightly maintenance jobs: audit log retention and the
// dangling group-link report.
type Scheduler struct {
	admin         *service.AdminService
	audit         *repository.AuditRepository
	retentionDays int
}

func NewScheduler(admin *service.AdminService, audit *repository.AuditRepository, retentionDays int) *Scheduler {
	return &Scheduler{admin: admin, audit: audit, retentionDays: retentionDays}
}

// Start initializes cron tasks
func (s *Scheduler) Start() {
	c := cron.New(cron.WithSeconds())

	//  (12:00 AM)
	_, err := c.AddFunc("0 0 0 * * *", func() {
		s.runNightlyJobs()
	})

	if err != nil {
		slog.Error("failed to create cron job", "error", err)
		return
	}

	slog.Info("cron scheduler started (running nightly at 12:00AM)")
	c.Start()
}

func (s *Scheduler) runNightlyJobs() {
	slog.Info("nightly maintenance started")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if s.audit != nil && s.retentionDays > 0 {
		retention := time.Duration(s.retentionDays) * 24 * time.Hour
		purged, err := s.audit.PurgeOlderThan(ctx, retention)
		if err != nil {
			slog.Error("audit purge failed", "error", err)
		} else {
			slog.Info("audit purge completed", "purged", purged, "retentionDays", s.retentionDays)
		}
	}

	dangling, err := s.admin.ReportDanglingGroupLinks(ctx)
	if err != nil {
		slog.Error("dangling group-link report failed", "error", err)
	} else {
		slog.Info("dangling group-link report completed", "dangling", len(dangling))
	}

	slog.Info("nightly maintenance completed", "at", time.Now().Format(time.RFC1123))
}
