package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"vexoj/internal/pipeline/dispatch"
	"vexoj/internal/pipeline/model"
	"vexoj/internal/pipeline/policy"
	appErr "vexoj/pkg/errors"
)

// ReminderScheduler is the contest reminder surface the service exposes to
// the contest-mutation flow.
type ReminderScheduler interface {
	ScheduleStartReminder(ctx context.Context, contestID, title string, startTime time.Time) error
	CancelStartReminder(ctx context.Context, contestID string) error
	RescheduleStartReminder(ctx context.Context, contestID, title string, startTime time.Time) error
}

// PipelineService is the intake orchestration: validate then dispatch,
// plus reminder pass-throughs. It sits between the external API tier and
// the pipeline components.
type PipelineService struct {
	validator  *policy.Validator
	dispatcher *dispatch.Dispatcher
	scheduler  ReminderScheduler
}

// SubmitInput describes a submission entering the pipeline. SourceSnippets
// is the ordered list of editable regions; they are scanned as one unit.
type SubmitInput struct {
	SubmissionID   string
	Language       string
	SourceSnippets []string
	Request        model.JudgeRequest
	IsTest         bool
	IsUserTest     bool
	IsRejudge      bool
}

// NewPipelineService creates the service.
func NewPipelineService(validator *policy.Validator, dispatcher *dispatch.Dispatcher, scheduler ReminderScheduler) (*PipelineService, error) {
	if validator == nil {
		return nil, fmt.Errorf("validator is required")
	}
	if dispatcher == nil {
		return nil, fmt.Errorf("dispatcher is required")
	}
	if scheduler == nil {
		return nil, fmt.Errorf("scheduler is required")
	}
	return &PipelineService{validator: validator, dispatcher: dispatcher, scheduler: scheduler}, nil
}

// Submit gates the submission through the policy filter and dispatches it.
// A policy rejection fails the whole submission creation with a
// client-visible unprocessable error; a dispatch failure propagates so the
// submission is never recorded as judging.
func (s *PipelineService) Submit(ctx context.Context, input SubmitInput) error {
	if input.SubmissionID == "" {
		return appErr.ValidationError("submission_id", "required")
	}
	if strings.TrimSpace(input.Language) == "" {
		return appErr.ValidationError("language", "required")
	}
	if len(input.SourceSnippets) == 0 {
		return appErr.ValidationError("source_snippets", "required")
	}

	if err := s.validator.Validate(input.Language, input.SourceSnippets); err != nil {
		return err
	}

	return s.dispatcher.Dispatch(ctx, dispatch.Input{
		SubmissionID: input.SubmissionID,
		Request:      input.Request,
		IsTest:       input.IsTest,
		IsUserTest:   input.IsUserTest,
		IsRejudge:    input.IsRejudge,
	})
}

// ScheduleContestReminder schedules the start reminder for a new contest.
func (s *PipelineService) ScheduleContestReminder(ctx context.Context, contestID, title string, startTime time.Time) error {
	return s.scheduler.ScheduleStartReminder(ctx, contestID, title, startTime)
}

// RescheduleContestReminder replaces the reminder after a contest update.
func (s *PipelineService) RescheduleContestReminder(ctx context.Context, contestID, title string, startTime time.Time) error {
	return s.scheduler.RescheduleStartReminder(ctx, contestID, title, startTime)
}

// CancelContestReminder removes the reminder on contest deletion.
func (s *PipelineService) CancelContestReminder(ctx context.Context, contestID string) error {
	return s.scheduler.CancelStartReminder(ctx, contestID)
}
