package queue

import (
	"context"

	"github.com/hibiken/asynq"
)

func (q *Queue) HandleDispatchTask(ctx context.Context, task *asynq.Task) error {
	return q.pj.Run(ctx)
}
