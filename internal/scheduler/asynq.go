package scheduler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
)

const TaskTypeStoryPublish = "story:publish"

// PublishTaskPayload is what the asynq backend stores until the trigger fires.
type PublishTaskPayload struct {
	Name    string          `json:"name"`
	Target  string          `json:"target"`
	Payload json.RawMessage `json:"payload"`
}

type TaskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

type TaskInspector interface {
	DeleteTask(queue, id string) error
}

// AsynqScheduler keeps one-shot schedules as delayed asynq tasks whose task
// id is the schedule name.
type AsynqScheduler struct {
	client    TaskEnqueuer
	inspector TaskInspector
	queue     string
	maxRetry  int
}

func NewAsynqScheduler(client TaskEnqueuer, inspector TaskInspector, queue string) *AsynqScheduler {
	if queue == "" {
		queue = "default"
	}
	return &AsynqScheduler{
		client:    client,
		inspector: inspector,
		queue:     queue,
		maxRetry:  3,
	}
}

func (s *AsynqScheduler) CreateSchedule(ctx context.Context, in CreateScheduleInput) error {
	at, err := ParseCronExpression(in.Expression)
	if err != nil {
		return err
	}

	body, err := json.Marshal(PublishTaskPayload{
		Name:    in.Name,
		Target:  in.Target,
		Payload: json.RawMessage(in.Payload),
	})
	if err != nil {
		return err
	}

	task := asynq.NewTask(TaskTypeStoryPublish, body)
	_, err = s.client.EnqueueContext(ctx, task,
		asynq.TaskID(in.Name),
		asynq.ProcessAt(at),
		asynq.Queue(s.queue),
		asynq.MaxRetry(s.maxRetry),
	)
	if err != nil {
		if errors.Is(err, asynq.ErrTaskIDConflict) || errors.Is(err, asynq.ErrDuplicateTask) {
			return fmt.Errorf("%w: %s", ErrScheduleExists, in.Name)
		}
		slog.Info(err.Error())
		return fmt.Errorf("enqueue schedule %s: %w", in.Name, err)
	}

	slog.Info("schedule created", "name", in.Name, "process_at", at)
	return nil
}

func (s *AsynqScheduler) DeleteSchedule(ctx context.Context, name string) error {
	err := s.inspector.DeleteTask(s.queue, name)
	if err != nil {
		if errors.Is(err, asynq.ErrTaskNotFound) || errors.Is(err, asynq.ErrQueueNotFound) {
			return fmt.Errorf("%w: %s", ErrScheduleNotFound, name)
		}
		slog.Info(err.Error())
		return fmt.Errorf("delete schedule %s: %w", name, err)
	}
	return nil
}
