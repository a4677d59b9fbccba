package queue

import (
	job "github.com/devrobins/linkpost/internal/jobs"
)

// Queue adapts the dispatch worker to asynq. A dispatch task carries no
// payload: running the worker drains every due row, so overlapping tasks
// are harmless.
type Queue struct {
	pj *job.PublishJob
}

func NewQueue(pj *job.PublishJob) *Queue {
	return &Queue{pj: pj}
}

const TaskTypeDispatch = "dispatch:due_posts"
