// Package scheduler talks to the external service that fires one-shot jobs
// at a given UTC instant. A schedule is addressed only by its name, and the
// name of a story's schedule is always the story id (see Handle).
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
)

var (
	// ErrScheduleNotFound is returned by DeleteSchedule when no schedule with
	// the given name exists. Callers treat it as an idempotent no-op.
	ErrScheduleNotFound = errors.New("schedule not found")
	// ErrScheduleExists is returned by CreateSchedule when the name is taken.
	ErrScheduleExists = errors.New("schedule already exists")
)

type CreateScheduleInput struct {
	Name       string
	Expression string // one-shot cron expression, see CronExpression
	Target     string
	RoleArn    string
	Payload    []byte
}

type Scheduler interface {
	CreateSchedule(ctx context.Context, in CreateScheduleInput) error
	DeleteSchedule(ctx context.Context, name string) error
}

// Handle identifies the schedule that belongs to a story. The schedule name
// is the decimal story id and is the only link between a story and its job.
type Handle struct {
	storyID int64
}

func HandleFor(storyID int64) Handle {
	return Handle{storyID: storyID}
}

func (h Handle) StoryID() int64 { return h.storyID }

func (h Handle) Name() string { return strconv.FormatInt(h.storyID, 10) }

func (h Handle) String() string { return h.Name() }

// ParseHandle is the inverse of Handle.Name.
func ParseHandle(name string) (Handle, error) {
	id, err := strconv.ParseInt(name, 10, 64)
	if err != nil || id <= 0 || strconv.FormatInt(id, 10) != name {
		return Handle{}, fmt.Errorf("invalid schedule name %q", name)
	}
	return Handle{storyID: id}, nil
}
