package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsscheduler "github.com/aws/aws-sdk-go-v2/service/scheduler"
	"github.com/aws/aws-sdk-go-v2/service/scheduler/types"
)

// EventBridgeAPI is the subset of the EventBridge Scheduler client in use.
type EventBridgeAPI interface {
	CreateSchedule(ctx context.Context, params *awsscheduler.CreateScheduleInput, optFns ...func(*awsscheduler.Options)) (*awsscheduler.CreateScheduleOutput, error)
	DeleteSchedule(ctx context.Context, params *awsscheduler.DeleteScheduleInput, optFns ...func(*awsscheduler.Options)) (*awsscheduler.DeleteScheduleOutput, error)
}

type EventBridgeScheduler struct {
	api   EventBridgeAPI
	group string
}

func NewEventBridgeScheduler(api EventBridgeAPI, group string) *EventBridgeScheduler {
	return &EventBridgeScheduler{api: api, group: group}
}

func (s *EventBridgeScheduler) CreateSchedule(ctx context.Context, in CreateScheduleInput) error {
	input := &awsscheduler.CreateScheduleInput{
		Name:                       aws.String(in.Name),
		ScheduleExpression:         aws.String(in.Expression),
		ScheduleExpressionTimezone: aws.String("UTC"),
		FlexibleTimeWindow: &types.FlexibleTimeWindow{
			Mode: types.FlexibleTimeWindowModeOff,
		},
		ActionAfterCompletion: types.ActionAfterCompletionDelete,
		State:                 types.ScheduleStateEnabled,
		Target: &types.Target{
			Arn:     aws.String(in.Target),
			RoleArn: aws.String(in.RoleArn),
			Input:   aws.String(string(in.Payload)),
		},
	}
	if s.group != "" {
		input.GroupName = aws.String(s.group)
	}

	_, err := s.api.CreateSchedule(ctx, input)
	if err != nil {
		var conflict *types.ConflictException
		if errors.As(err, &conflict) {
			return fmt.Errorf("%w: %s", ErrScheduleExists, in.Name)
		}
		slog.Info(err.Error())
		return fmt.Errorf("create schedule %s: %w", in.Name, err)
	}
	return nil
}

func (s *EventBridgeScheduler) DeleteSchedule(ctx context.Context, name string) error {
	input := &awsscheduler.DeleteScheduleInput{
		Name: aws.String(name),
	}
	if s.group != "" {
		input.GroupName = aws.String(s.group)
	}

	_, err := s.api.DeleteSchedule(ctx, input)
	if err != nil {
		var notFound *types.ResourceNotFoundException
		if errors.As(err, &notFound) {
			return fmt.Errorf("%w: %s", ErrScheduleNotFound, name)
		}
		slog.Info(err.Error())
		return fmt.Errorf("delete schedule %s: %w", name, err)
	}
	return nil
}
