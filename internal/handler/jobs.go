package handler

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/arturoeanton/foxops-dashboard/internal/domain"
	"github.com/arturoeanton/foxops-dashboard/internal/middleware"
	"github.com/arturoeanton/foxops-dashboard/internal/port"
	"github.com/arturoeanton/foxops-dashboard/internal/service"
	"github.com/gofiber/fiber/v3"
)

// JobsHandler handles job-related endpoints.
type JobsHandler struct {
	tracker       *service.JobTracker
	streamTimeout time.Duration
}

// NewJobsHandler creates a new jobs handler.
func NewJobsHandler(tracker *service.JobTracker) *JobsHandler {
	return &JobsHandler{tracker: tracker, streamTimeout: 10 * time.Minute}
}

// Register sets up job routes.
func (h *JobsHandler) Register(router fiber.Router) {
	jobs := router.Group("/jobs")
	jobs.Get("/:id", h.GetStatus)
	jobs.Get("/:id/stream", h.StreamSSE)
}

// ownJob returns the job when it belongs to the caller. Jobs of other users
// look like missing jobs.
func (h *JobsHandler) ownJob(c fiber.Ctx) (domain.BulkJob, error) {
	uc := middleware.GetUserContext(c)
	if uc == nil {
		return domain.BulkJob{}, port.ErrUnauthorized
	}
	job, err := h.tracker.Get(c.Params("id"))
	if err != nil {
		return domain.BulkJob{}, err
	}
	if job.UserID != uc.UserID {
		return domain.BulkJob{}, port.ErrJobNotFound
	}
	return job, nil
}

// GetStatus returns the current job status.
func (h *JobsHandler) GetStatus(c fiber.Ctx) error {
	job, err := h.ownJob(c)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(job)
}

// StreamSSE streams job updates via Server-Sent Events.
func (h *JobsHandler) StreamSSE(c fiber.Ctx) error {
	job, err := h.ownJob(c)
	if err != nil {
		return writeError(c, err)
	}
	id := job.ID

	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")

	if job.Done() {
		data, _ := json.Marshal(job)
		return c.SendString(fmt.Sprintf("event: %s\ndata: %s\n\n", job.Status, string(data)))
	}

	ch := h.tracker.Subscribe(id)

	return c.SendStreamWriter(func(w *bufio.Writer) {
		defer h.tracker.Unsubscribe(id, ch)

		// The job may have moved on between Get and Subscribe.
		current, err := h.tracker.Get(id)
		if err != nil {
			return
		}
		if !writeJobEvent(w, current) || current.Done() {
			return
		}

		timeout := time.After(h.streamTimeout)
		for {
			select {
			case update, ok := <-ch:
				if !ok {
					return
				}
				if !writeJobEvent(w, update) || update.Done() {
					return
				}
			case <-timeout:
				slog.Warn("SSE timeout", "job_id", id)
				return
			}
		}
	})
}

// writeJobEvent writes one event and reports whether the client is still there.
func writeJobEvent(w *bufio.Writer, job domain.BulkJob) bool {
	eventType := "progress"
	if job.Done() {
		eventType = job.Status
	}
	data, _ := json.Marshal(job)
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", eventType, string(data))
	return w.Flush() == nil
}
