// Package health reports process and dependency health for the readiness
// endpoint.
package health

import (
	"context"
	"database/sql"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/commercegrid/backoffice/pkg/logger"
)

// Report is the payload served by the health endpoint.
type Report struct {
	Status     string        `json:"status"`
	Uptime     string        `json:"uptime"`
	Database   string        `json:"database"`
	Goroutines int           `json:"goroutines"`
	Memory     MemoryStats   `json:"memory"`
	CPUPercent float64       `json:"cpu_percent"`
	CheckedIn  time.Duration `json:"-"`
}

// MemoryStats summarises host memory usage.
type MemoryStats struct {
	TotalMB     uint64  `json:"total_mb"`
	UsedMB      uint64  `json:"used_mb"`
	UsedPercent float64 `json:"used_percent"`
}

// Service assembles health reports.
type Service struct {
	db      *sql.DB
	started time.Time
	log     *logger.Logger
}

// New constructs a health service. db may be nil when the process runs on
// the in-memory store.
func New(db *sql.DB, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("health")
	}
	return &Service{db: db, started: time.Now().UTC(), log: log}
}

// Check pings the database and samples host metrics. Status degrades to
// "degraded" when the database is unreachable; metric sampling failures are
// logged but never fail the check.
func (s *Service) Check(ctx context.Context) Report {
	start := time.Now()
	report := Report{
		Status:     "ok",
		Uptime:     time.Since(s.started).Round(time.Second).String(),
		Database:   "ok",
		Goroutines: runtime.NumGoroutine(),
	}

	if s.db == nil {
		report.Database = "memory"
	} else {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := s.db.PingContext(pingCtx); err != nil {
			s.log.WithError(err).Warn("database ping failed")
			report.Database = "unreachable"
			report.Status = "degraded"
		}
	}

	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		report.Memory = MemoryStats{
			TotalMB:     vm.Total / 1024 / 1024,
			UsedMB:      vm.Used / 1024 / 1024,
			UsedPercent: vm.UsedPercent,
		}
	} else {
		s.log.WithError(err).Debug("memory sample failed")
	}
	if pcts, err := cpu.PercentWithContext(ctx, 0, false); err == nil && len(pcts) > 0 {
		report.CPUPercent = pcts[0]
	}

	report.CheckedIn = time.Since(start)
	return report
}
