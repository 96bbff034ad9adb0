package handler

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/arturoeanton/foxops-dashboard/internal/domain"
	"github.com/arturoeanton/foxops-dashboard/internal/middleware"
	"github.com/arturoeanton/foxops-dashboard/internal/service"
	"github.com/gofiber/fiber/v3"
)

// IncarnationHandler serves the incarnation list, detail and mutations.
type IncarnationHandler struct {
	incarnations *service.IncarnationService
	settings     *service.SettingsService
	sessions     ClientResolver
	events       *service.EventBus
	audit        middleware.AuditWriter

	streamTimeout time.Duration
}

// NewIncarnationHandler creates a new incarnation handler.
func NewIncarnationHandler(
	incarnations *service.IncarnationService,
	settings *service.SettingsService,
	sessions ClientResolver,
	events *service.EventBus,
	audit middleware.AuditWriter,
) *IncarnationHandler {
	return &IncarnationHandler{
		incarnations: incarnations,
		settings:     settings,
		sessions:     sessions,
		events:       events,
		audit:        audit,

		streamTimeout: 10 * time.Minute,
	}
}

// Register sets up incarnation routes on a protected group.
func (h *IncarnationHandler) Register(api fiber.Router) {
	inc := api.Group("/incarnations")
	inc.Get("/", h.List)
	inc.Post("/", h.Create)
	inc.Get("/events", h.StreamEvents)
	inc.Get("/:id", h.Get)
	inc.Put("/:id", h.Update)
	inc.Patch("/:id", h.Patch)
	inc.Delete("/:id", h.Delete)
	inc.Post("/:id/reset", h.Reset)
	inc.Get("/:id/diff", h.Diff)
}

// List returns one page of the searched and sorted incarnation list.
// Sort, direction and page size fall back to the caller's saved settings.
func (h *IncarnationHandler) List(c fiber.Ctx) error {
	uc, api, err := sessionClient(c, h.sessions)
	if err != nil {
		return writeError(c, err)
	}

	q := service.ListQuery{
		Search: c.Query("search"),
		Page:   queryInt(c, "page", 1),
		Enrich: queryBool(c, "enrich", false),
	}

	switch scope := c.Query("scope", "narrow"); scope {
	case "narrow":
	case "broad":
		q.Broad = true
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "scope must be broad or narrow"})
	}

	sort, perPage := c.Query("sort"), c.Query("per_page")
	saved := domain.DefaultTableSettings(uc.UserID, domain.TableIncarnations)
	if sort == "" || perPage == "" {
		if saved, err = h.settings.Get(c.Context(), uc.UserID, domain.TableIncarnations); err != nil {
			return writeError(c, err)
		}
	}

	if sort == "" {
		q.Sort = saved.Sort
		q.Asc = queryBool(c, "asc", saved.Asc)
	} else {
		q.Sort = sort
		q.Asc = queryBool(c, "asc", true)
	}

	// per_page=0 asks for everything.
	q.PerPage = queryInt(c, "per_page", saved.PageSize)
	if q.PerPage > domain.MaxPageSize {
		q.PerPage = domain.MaxPageSize
	}

	res, err := h.incarnations.List(c.Context(), api, q)
	if err != nil {
		forgetOnUnauthorized(h.sessions, uc.UserID, err)
		return writeError(c, err)
	}
	return c.JSON(res)
}

// Get returns the detailed record.
func (h *IncarnationHandler) Get(c fiber.Ctx) error {
	_, api, err := sessionClient(c, h.sessions)
	if err != nil {
		return writeError(c, err)
	}
	id, err := paramID(c)
	if err != nil {
		return writeError(c, err)
	}

	inc, err := h.incarnations.Get(c.Context(), api, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(inc)
}

// Create creates an incarnation, or imports an existing one with ?allow_import=true.
func (h *IncarnationHandler) Create(c fiber.Ctx) error {
	uc, api, err := sessionClient(c, h.sessions)
	if err != nil {
		return writeError(c, err)
	}

	var req domain.CreateIncarnationRequest
	if err := c.Bind().JSON(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	inc, err := h.incarnations.Create(c.Context(), api, uc.UserID, req, queryBool(c, "allow_import", false))
	if err != nil {
		return writeError(c, err)
	}

	h.record(c, uc, domain.AuditActionIncarnationCreate, inc.ID, fiber.Map{"incarnation_repository": req.IncarnationRepository})
	return c.Status(fiber.StatusCreated).JSON(inc)
}

// Update replaces template version and data (PUT).
func (h *IncarnationHandler) Update(c fiber.Ctx) error {
	uc, api, err := sessionClient(c, h.sessions)
	if err != nil {
		return writeError(c, err)
	}
	id, err := paramID(c)
	if err != nil {
		return writeError(c, err)
	}

	var req domain.UpdateIncarnationRequest
	if err := c.Bind().JSON(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	inc, err := h.incarnations.Update(c.Context(), api, uc.UserID, id, req)
	if err != nil {
		return writeError(c, err)
	}

	h.record(c, uc, domain.AuditActionIncarnationUpdate, id, fiber.Map{"method": "PUT", "version": req.TemplateRepositoryVersion})
	return c.JSON(inc)
}

// Patch changes the requested version and/or data keys (PATCH).
func (h *IncarnationHandler) Patch(c fiber.Ctx) error {
	uc, api, err := sessionClient(c, h.sessions)
	if err != nil {
		return writeError(c, err)
	}
	id, err := paramID(c)
	if err != nil {
		return writeError(c, err)
	}

	var req domain.PatchIncarnationRequest
	if err := c.Bind().JSON(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	inc, err := h.incarnations.Patch(c.Context(), api, uc.UserID, id, req)
	if err != nil {
		return writeError(c, err)
	}

	h.record(c, uc, domain.AuditActionIncarnationUpdate, id, fiber.Map{"method": "PATCH", "version": domain.StringValue(req.RequestedVersion)})
	return c.JSON(inc)
}

// Reset discards manual changes in the incarnation repository.
func (h *IncarnationHandler) Reset(c fiber.Ctx) error {
	uc, api, err := sessionClient(c, h.sessions)
	if err != nil {
		return writeError(c, err)
	}
	id, err := paramID(c)
	if err != nil {
		return writeError(c, err)
	}

	if err := h.incarnations.Reset(c.Context(), api, uc.UserID, id); err != nil {
		return writeError(c, err)
	}

	h.record(c, uc, domain.AuditActionIncarnationReset, id, nil)
	return c.JSON(fiber.Map{"id": id, "status": "reset"})
}

// Delete removes the incarnation from foxops.
func (h *IncarnationHandler) Delete(c fiber.Ctx) error {
	uc, api, err := sessionClient(c, h.sessions)
	if err != nil {
		return writeError(c, err)
	}
	id, err := paramID(c)
	if err != nil {
		return writeError(c, err)
	}

	if err := h.incarnations.Delete(c.Context(), api, uc.UserID, id); err != nil {
		return writeError(c, err)
	}

	h.record(c, uc, domain.AuditActionIncarnationDelete, id, nil)
	return c.SendStatus(fiber.StatusNoContent)
}

// Diff returns the template diff with per-file counts, or the raw diff
// with ?format=raw.
func (h *IncarnationHandler) Diff(c fiber.Ctx) error {
	_, api, err := sessionClient(c, h.sessions)
	if err != nil {
		return writeError(c, err)
	}
	id, err := paramID(c)
	if err != nil {
		return writeError(c, err)
	}

	summary, err := h.incarnations.Diff(c.Context(), api, id)
	if err != nil {
		return writeError(c, err)
	}

	if strings.EqualFold(c.Query("format"), "raw") {
		c.Set("Content-Type", "text/plain; charset=utf-8")
		return c.SendString(summary.Raw)
	}
	return c.JSON(summary)
}

// StreamEvents streams incarnation changes via SSE. The stream closes after
// streamTimeout and EventSource clients reconnect.
func (h *IncarnationHandler) StreamEvents(c fiber.Ctx) error {
	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")

	ch := h.events.Subscribe()

	return c.SendStreamWriter(func(w *bufio.Writer) {
		defer h.events.Unsubscribe(ch)

		fmt.Fprintf(w, ": connected\n\n")
		if err := w.Flush(); err != nil {
			return
		}

		heartbeat := time.NewTicker(30 * time.Second)
		defer heartbeat.Stop()
		timeout := time.After(h.streamTimeout)

		for {
			select {
			case evt, ok := <-ch:
				if !ok {
					return
				}
				data, _ := json.Marshal(evt)
				fmt.Fprintf(w, "event: incarnation\ndata: %s\n\n", string(data))
				if err := w.Flush(); err != nil {
					return
				}
				slog.Debug("SSE incarnation event", "incarnation_id", evt.IncarnationID, "action", evt.Action)
			case <-heartbeat.C:
				// A failed flush means the client went away.
				fmt.Fprintf(w, ": ping\n\n")
				if err := w.Flush(); err != nil {
					return
				}
			case <-timeout:
				return
			}
		}
	})
}

func (h *IncarnationHandler) record(c fiber.Ctx, uc *domain.UserContext, action string, id int, details fiber.Map) {
	if details == nil {
		details = fiber.Map{}
	}
	data, _ := json.Marshal(details)
	middleware.Audit(h.audit, uc.UserID, action, "incarnation", strconv.Itoa(id), string(data), c.IP(), c.Get("User-Agent"))
}

var _ ClientResolver = (*service.SessionRegistry)(nil)
