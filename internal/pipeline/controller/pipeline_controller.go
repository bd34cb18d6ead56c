package controller

import (
	"time"

	"vexoj/internal/pipeline/model"
	"vexoj/internal/pipeline/service"
	appErr "vexoj/pkg/errors"
	"vexoj/pkg/utils/response"

	"github.com/gin-gonic/gin"
)

// PipelineController exposes the pipeline to the API tier.
type PipelineController struct {
	service *service.PipelineService
}

// NewPipelineController creates the controller.
func NewPipelineController(svc *service.PipelineService) *PipelineController {
	return &PipelineController{service: svc}
}

// DispatchRequest is the body of POST /internal/v1/submissions/dispatch.
type DispatchRequest struct {
	SubmissionID   string             `json:"submission_id" binding:"required"`
	Language       string             `json:"language" binding:"required"`
	SourceSnippets []string           `json:"source_snippets" binding:"required"`
	Request        model.JudgeRequest `json:"request"`
	IsTest         bool               `json:"is_test"`
	IsUserTest     bool               `json:"is_user_test"`
	IsRejudge      bool               `json:"is_rejudge"`
}

// Dispatch validates and dispatches one submission.
func (ctl *PipelineController) Dispatch(c *gin.Context) {
	var req DispatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	err := ctl.service.Submit(c.Request.Context(), service.SubmitInput{
		SubmissionID:   req.SubmissionID,
		Language:       req.Language,
		SourceSnippets: req.SourceSnippets,
		Request:        req.Request,
		IsTest:         req.IsTest,
		IsUserTest:     req.IsUserTest,
		IsRejudge:      req.IsRejudge,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"submission_id": req.SubmissionID})
}

// ReminderRequest is the body of PUT /internal/v1/contests/:id/start-reminder.
type ReminderRequest struct {
	Title     string `json:"title"`
	StartTime string `json:"start_time" binding:"required"`
}

// UpsertReminder schedules or reschedules the contest start reminder.
func (ctl *PipelineController) UpsertReminder(c *gin.Context) {
	contestID := c.Param("id")
	if contestID == "" {
		response.BadRequest(c, "contest id is required")
		return
	}

	var req ReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	startTime, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		response.ErrorWithCode(c, appErr.InvalidParams, "start_time must be RFC3339")
		return
	}

	if err := ctl.service.RescheduleContestReminder(c.Request.Context(), contestID, req.Title, startTime); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"contest_id": contestID})
}

// DeleteReminder cancels the contest start reminder.
func (ctl *PipelineController) DeleteReminder(c *gin.Context) {
	contestID := c.Param("id")
	if contestID == "" {
		response.BadRequest(c, "contest id is required")
		return
	}

	if err := ctl.service.CancelContestReminder(c.Request.Context(), contestID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"contest_id": contestID})
}
