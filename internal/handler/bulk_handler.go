package handler

import (
	"encoding/json"

	"github.com/arturoeanton/foxops-dashboard/internal/domain"
	"github.com/arturoeanton/foxops-dashboard/internal/middleware"
	"github.com/arturoeanton/foxops-dashboard/internal/service"
	"github.com/gofiber/fiber/v3"
)

// BulkHandler starts bulk updates.
type BulkHandler struct {
	bulk     *service.BulkUpdateService
	sessions ClientResolver
	audit    middleware.AuditWriter
}

// NewBulkHandler creates a new bulk update handler.
func NewBulkHandler(bulk *service.BulkUpdateService, sessions ClientResolver, audit middleware.AuditWriter) *BulkHandler {
	return &BulkHandler{bulk: bulk, sessions: sessions, audit: audit}
}

// Register sets up bulk update routes.
func (h *BulkHandler) Register(router fiber.Router) {
	router.Post("/bulk-updates", h.Start)
}

// Start validates the request and launches the job. Progress is read from
// /jobs/:id or streamed from /jobs/:id/stream.
func (h *BulkHandler) Start(c fiber.Ctx) error {
	uc, api, err := sessionClient(c, h.sessions)
	if err != nil {
		return writeError(c, err)
	}

	var req domain.BulkUpdateRequest
	if err := c.Bind().JSON(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	jobID, err := h.bulk.Start(api, uc.UserID, req)
	if err != nil {
		return writeError(c, err)
	}

	details, _ := json.Marshal(fiber.Map{
		"incarnation_ids":   req.UniqueIDs(),
		"requested_version": domain.StringValue(req.RequestedVersion),
	})
	middleware.Audit(h.audit, uc.UserID, domain.AuditActionBulkUpdate, "job", jobID, string(details), c.IP(), c.Get("User-Agent"))

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"job_id": jobID,
		"total":  len(req.UniqueIDs()),
	})
}
