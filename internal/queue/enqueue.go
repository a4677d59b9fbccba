package queue

import (
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
)

// EnqueueDispatch schedules a dispatch run after delay. Used with the
// time-until-due at schedule time so a post publishes promptly instead of
// waiting for the next timer tick, and with zero delay by the manual
// run-now endpoint.
func EnqueueDispatch(asynqClient *asynq.Client, delay time.Duration) error {
	task := asynq.NewTask(TaskTypeDispatch, nil)

	_, err := asynqClient.Enqueue(task, asynq.ProcessIn(delay))
	if err != nil {
		return err
	}

	slog.Info("dispatch run scheduled", "delay", delay)
	return nil
}
