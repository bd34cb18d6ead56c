package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"vexoj/internal/common/mq"
	"vexoj/internal/pipeline/dispatch"
	"vexoj/internal/pipeline/policy"
	"vexoj/internal/pipeline/service"
	appErr "vexoj/pkg/errors"

	"github.com/gin-gonic/gin"
)

type fakeProducer struct {
	published []*mq.Message
}

func (f *fakeProducer) Publish(ctx context.Context, message *mq.Message) error {
	f.published = append(f.published, message)
	return nil
}

type fakeScheduler struct {
	scheduled   []string
	rescheduled []string
	cancelled   []string
}

func (f *fakeScheduler) ScheduleStartReminder(ctx context.Context, contestID, title string, startTime time.Time) error {
	f.scheduled = append(f.scheduled, contestID)
	return nil
}

func (f *fakeScheduler) CancelStartReminder(ctx context.Context, contestID string) error {
	f.cancelled = append(f.cancelled, contestID)
	return nil
}

func (f *fakeScheduler) RescheduleStartReminder(ctx context.Context, contestID, title string, startTime time.Time) error {
	f.rescheduled = append(f.rescheduled, contestID)
	return nil
}

func newTestRouter(t *testing.T) (*gin.Engine, *fakeProducer, *fakeScheduler) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	producer := &fakeProducer{}
	scheduler := &fakeScheduler{}
	dispatcher, err := dispatch.NewDispatcher(producer)
	if err != nil {
		t.Fatalf("NewDispatcher: %v", err)
	}
	svc, err := service.NewPipelineService(policy.NewValidator(), dispatcher, scheduler)
	if err != nil {
		t.Fatalf("NewPipelineService: %v", err)
	}

	ctl := NewPipelineController(svc)
	engine := gin.New()
	api := engine.Group("/internal/v1")
	api.POST("/submissions/dispatch", ctl.Dispatch)
	api.PUT("/contests/:id/start-reminder", ctl.UpsertReminder)
	api.DELETE("/contests/:id/start-reminder", ctl.DeleteReminder)
	return engine, producer, scheduler
}

func doJSON(t *testing.T, engine *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestDispatchEndpoint(t *testing.T) {
	engine, producer, _ := newTestRouter(t)

	rec := doJSON(t, engine, http.MethodPost, "/internal/v1/submissions/dispatch", gin.H{
		"submission_id":   "sub-1",
		"language":        "cpp",
		"source_snippets": []string{"int main(){ return 0; }"},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %s", rec.Code, rec.Body.String())
	}
	if len(producer.published) != 1 {
		t.Fatalf("want one dispatch, got %d", len(producer.published))
	}
}

func TestDispatchEndpointPolicyRejection(t *testing.T) {
	engine, producer, _ := newTestRouter(t)

	rec := doJSON(t, engine, http.MethodPost, "/internal/v1/submissions/dispatch", gin.H{
		"submission_id":   "sub-2",
		"language":        "python",
		"source_snippets": []string{"import os"},
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status: got %d, want 422", rec.Code)
	}

	var resp struct {
		Code    appErr.ErrorCode `json:"code"`
		Message string           `json:"message"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Code != appErr.PolicyViolation {
		t.Errorf("code: got %d", resp.Code)
	}
	if len(producer.published) != 0 {
		t.Fatal("rejected submission must not be dispatched")
	}
}

func TestDispatchEndpointBadBody(t *testing.T) {
	engine, _, _ := newTestRouter(t)

	rec := doJSON(t, engine, http.MethodPost, "/internal/v1/submissions/dispatch", gin.H{
		"language": "cpp",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want 400", rec.Code)
	}
}

func TestUpsertReminderEndpoint(t *testing.T) {
	engine, _, scheduler := newTestRouter(t)

	rec := doJSON(t, engine, http.MethodPut, "/internal/v1/contests/c-1/start-reminder", gin.H{
		"title":      "Night Round",
		"start_time": time.Now().Add(3 * time.Hour).Format(time.RFC3339),
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %s", rec.Code, rec.Body.String())
	}
	if len(scheduler.rescheduled) != 1 || scheduler.rescheduled[0] != "c-1" {
		t.Errorf("rescheduled: got %v", scheduler.rescheduled)
	}
}

func TestUpsertReminderEndpointRejectsBadTime(t *testing.T) {
	engine, _, scheduler := newTestRouter(t)

	rec := doJSON(t, engine, http.MethodPut, "/internal/v1/contests/c-2/start-reminder", gin.H{
		"title":      "Broken",
		"start_time": "next tuesday",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want 400", rec.Code)
	}
	if len(scheduler.rescheduled) != 0 {
		t.Fatal("nothing may be scheduled for an unparseable time")
	}
}

func TestDeleteReminderEndpoint(t *testing.T) {
	engine, _, scheduler := newTestRouter(t)

	rec := doJSON(t, engine, http.MethodDelete, "/internal/v1/contests/c-3/start-reminder", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %s", rec.Code, rec.Body.String())
	}
	if len(scheduler.cancelled) != 1 || scheduler.cancelled[0] != "c-3" {
		t.Errorf("cancelled: got %v", scheduler.cancelled)
	}
}
