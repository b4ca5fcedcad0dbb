package queue_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/maheshrc27/storyflow/internal/mocks"
	"github.com/maheshrc27/storyflow/internal/models"
	"github.com/maheshrc27/storyflow/internal/queue"
	"github.com/maheshrc27/storyflow/internal/scheduler"
	"github.com/maheshrc27/storyflow/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fakeEnqueuer struct {
	task *asynq.Task
	opts []asynq.Option
	err  error
}

func (f *fakeEnqueuer) EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	f.task, f.opts = task, opts
	if f.err != nil {
		return nil, f.err
	}
	return &asynq.TaskInfo{ID: "ok"}, nil
}

func optionValue(opts []asynq.Option, typ asynq.OptionType) interface{} {
	for _, o := range opts {
		if o.Type() == typ {
			return o.Value()
		}
	}
	return nil
}

func TestPublisher_Publish(t *testing.T) {
	enq := &fakeEnqueuer{}
	p := queue.NewPublisher(enq, "events")

	ev := &models.StoryEvent{ID: "V1StGXR8", StoryID: 4, Operation: models.OperationUpdate, Attempts: 2}
	require.NoError(t, p.Publish(context.Background(), ev))

	require.NotNil(t, enq.task)
	assert.Equal(t, queue.TaskTypeStoryChanged, enq.task.Type())
	assert.JSONEq(t, `{"event_id":"V1StGXR8"}`, string(enq.task.Payload()))
	assert.Equal(t, "story-event-V1StGXR8-2", optionValue(enq.opts, asynq.TaskIDOpt))
	assert.Equal(t, "events", optionValue(enq.opts, asynq.QueueOpt))
	assert.Equal(t, 0, optionValue(enq.opts, asynq.MaxRetryOpt))
}

func TestPublisher_ConflictIsQueued(t *testing.T) {
	p := queue.NewPublisher(&fakeEnqueuer{err: asynq.ErrTaskIDConflict}, "")
	assert.NoError(t, p.Publish(context.Background(), &models.StoryEvent{ID: "a"}))
}

func TestPublisher_EnqueueError(t *testing.T) {
	boom := errors.New("redis down")
	p := queue.NewPublisher(&fakeEnqueuer{err: boom}, "")
	assert.ErrorIs(t, p.Publish(context.Background(), &models.StoryEvent{ID: "a"}), boom)
}

func changedTask(t *testing.T, id string) *asynq.Task {
	t.Helper()
	body, err := json.Marshal(queue.StoryChangedPayload{EventID: id})
	require.NoError(t, err)
	return asynq.NewTask(queue.TaskTypeStoryChanged, body)
}

func TestHandleStoryChangedTask(t *testing.T) {
	er := &mocks.MockStoryEventRepository{}
	h := &mocks.MockStatusHandler{}
	q := queue.NewQueue(er, service.NewEventDispatcher(h, er), nil)

	ev := &models.StoryEvent{ID: "ev1", StoryID: 9, Operation: models.OperationCreate, Status: models.EventStatusPending}
	er.On("GetByID", mock.Anything, "ev1").Return(ev, nil).Once()
	h.On("HandleEvent", mock.Anything, ev).Return(&service.HandleResult{StoryID: 9}, nil).Once()
	er.On("MarkDone", mock.Anything, "ev1").Return(nil).Once()

	require.NoError(t, q.HandleStoryChangedTask(context.Background(), changedTask(t, "ev1")))
	er.AssertExpectations(t)
	h.AssertExpectations(t)
}

func TestHandleStoryChangedTask_SkipsHandledEvents(t *testing.T) {
	er := &mocks.MockStoryEventRepository{}
	h := &mocks.MockStatusHandler{}
	q := queue.NewQueue(er, service.NewEventDispatcher(h, er), nil)

	er.On("GetByID", mock.Anything, "done").Return(&models.StoryEvent{ID: "done", Status: models.EventStatusDone}, nil).Once()
	er.On("GetByID", mock.Anything, "gone").Return(nil, nil).Once()

	require.NoError(t, q.HandleStoryChangedTask(context.Background(), changedTask(t, "done")))
	require.NoError(t, q.HandleStoryChangedTask(context.Background(), changedTask(t, "gone")))
	h.AssertNotCalled(t, "HandleEvent", mock.Anything, mock.Anything)
}

func TestHandleStoryChangedTask_DispatchError(t *testing.T) {
	er := &mocks.MockStoryEventRepository{}
	h := &mocks.MockStatusHandler{}
	q := queue.NewQueue(er, service.NewEventDispatcher(h, er), nil)

	boom := errors.New("scheduler unavailable")
	ev := &models.StoryEvent{ID: "ev2", StoryID: 9, Operation: models.OperationUpdate, Status: models.EventStatusFailed}
	er.On("GetByID", mock.Anything, "ev2").Return(ev, nil).Once()
	h.On("HandleEvent", mock.Anything, ev).Return(nil, boom).Once()
	er.On("MarkFailed", mock.Anything, "ev2", "scheduler unavailable").Return(nil).Once()

	assert.ErrorIs(t, q.HandleStoryChangedTask(context.Background(), changedTask(t, "ev2")), boom)
	er.AssertExpectations(t)
}

func TestHandleStoryChangedTask_BadPayload(t *testing.T) {
	q := queue.NewQueue(&mocks.MockStoryEventRepository{}, nil, nil)
	err := q.HandleStoryChangedTask(context.Background(), asynq.NewTask(queue.TaskTypeStoryChanged, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func publishTask(t *testing.T, target string) *asynq.Task {
	t.Helper()
	body, err := json.Marshal(scheduler.PublishTaskPayload{
		Name:    "12",
		Target:  target,
		Payload: json.RawMessage(`{"story_id":12}`),
	})
	require.NoError(t, err)
	return asynq.NewTask(scheduler.TaskTypeStoryPublish, body)
}

func TestHandleStoryPublishTask(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "12", r.Header.Get("X-Schedule-Name"))
		body, _ := io.ReadAll(r.Body)
		got = string(body)
		if r.URL.Path == "/fail" {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	q := queue.NewQueue(nil, nil, srv.Client())

	require.NoError(t, q.HandleStoryPublishTask(context.Background(), publishTask(t, srv.URL+"/publish")))
	assert.JSONEq(t, `{"story_id":12}`, got)

	err := q.HandleStoryPublishTask(context.Background(), publishTask(t, srv.URL+"/fail"))
	assert.ErrorContains(t, err, "502")
}

func TestHandleStoryPublishTask_NoTarget(t *testing.T) {
	q := queue.NewQueue(nil, nil, nil)
	err := q.HandleStoryPublishTask(context.Background(), publishTask(t, ""))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}
