package scheduler

import (
	"context"
	"time"

	"github.com/plantdesklabs/plantdesk/internal/config"
	rentaldomain "github.com/plantdesklabs/plantdesk/internal/rental/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Scheduler periodically runs the same catch-up sweep the rentals list
// endpoint performs, so invoices keep accruing on contracts nobody reads.
type Scheduler struct {
	cfg       config.Config
	log       *zap.Logger
	rentalSvc rentaldomain.Service
}

type SchedulerParam struct {
	fx.In

	Cfg       config.Config
	Log       *zap.Logger
	RentalSvc rentaldomain.Service
}

var Module = fx.Module("scheduler",
	fx.Provide(NewScheduler),
)

func NewScheduler(p SchedulerParam) *Scheduler {
	return &Scheduler{
		cfg:       p.Cfg,
		log:       p.Log.Named("scheduler"),
		rentalSvc: p.RentalSvc,
	}
}

func (s *Scheduler) RunForever(ctx context.Context) {
	if !s.cfg.Scheduler.Enabled {
		s.log.Info("scheduler disabled")
		return
	}

	interval := s.cfg.Scheduler.SweepInterval
	if interval <= 0 {
		interval = time.Hour
	}
	s.log.Info("scheduler started", zap.Duration("interval", interval))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.runSweep(ctx)
	for {
		select {
		case <-ctx.Done():
			s.log.Info("scheduler stopped")
			return
		case <-ticker.C:
			s.runSweep(ctx)
		}
	}
}

func (s *Scheduler) runSweep(ctx context.Context) {
	advanced, err := s.rentalSvc.CatchUpAll(ctx)
	if err != nil {
		s.log.Error("billing catch-up sweep failed", zap.Error(err))
		return
	}
	if advanced > 0 {
		s.log.Info("billing catch-up sweep completed", zap.Int("contracts_advanced", advanced))
	}
}
