package scheduler

import (
	"log/slog"
	"sync"

	"github.com/robfig/cron"
)

// Scheduler is the process-wide handle for recurring jobs. It is created
// once by the process entry point; Start is idempotent so a second call is
// a no-op rather than a crash.
type Scheduler struct {
	c         *cron.Cron
	startOnce sync.Once
}

func New() *Scheduler {
	return &Scheduler{c: cron.New()}
}

func (s *Scheduler) Add(spec string, cmd func()) error {
	return s.c.AddFunc(spec, cmd)
}

func (s *Scheduler) Start() {
	s.startOnce.Do(func() {
		s.c.Start()
		slog.Info("scheduler started")
	})
}

func (s *Scheduler) Stop() {
	s.c.Stop()
}
