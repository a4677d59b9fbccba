package job

import (
	"context"
	"log/slog"

	"github.com/devrobins/linkpost/internal/service"
)

type StatsRefreshJob struct {
	ss service.StatsService
}

func NewStatsRefreshJob(ss service.StatsService) *StatsRefreshJob {
	return &StatsRefreshJob{ss: ss}
}

func (j *StatsRefreshJob) Run() {
	ctx := context.Background()

	updated, err := j.ss.RefreshAll(ctx)
	if err != nil {
		slog.Info(err.Error())
		return
	}
	slog.Info("post stats refreshed", "updated", updated)
}
