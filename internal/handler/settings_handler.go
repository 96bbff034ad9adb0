package handler

import (
	"github.com/arturoeanton/foxops-dashboard/internal/middleware"
	"github.com/arturoeanton/foxops-dashboard/internal/port"
	"github.com/arturoeanton/foxops-dashboard/internal/service"
	"github.com/gofiber/fiber/v3"
)

// SettingsHandler reads and writes per-user table settings.
type SettingsHandler struct {
	settings *service.SettingsService
}

// NewSettingsHandler creates a new settings handler.
func NewSettingsHandler(settings *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

// Register sets up settings routes.
func (h *SettingsHandler) Register(router fiber.Router) {
	tables := router.Group("/settings/tables")
	tables.Get("/:table", h.Get)
	tables.Put("/:table", h.Put)
}

// Get returns the saved settings or the defaults.
func (h *SettingsHandler) Get(c fiber.Ctx) error {
	uc := middleware.GetUserContext(c)
	if uc == nil {
		return writeError(c, port.ErrUnauthorized)
	}

	ts, err := h.settings.Get(c.Context(), uc.UserID, c.Params("table"))
	if err != nil {
		return writeError(c, err)
	}
	data, err := h.settings.Encode(ts)
	if err != nil {
		return writeError(c, err)
	}
	c.Set("Content-Type", "application/json")
	return c.Send(data)
}

// Put replaces the settings. Unknown sort columns fall back to the default
// and the page size is clamped.
func (h *SettingsHandler) Put(c fiber.Ctx) error {
	uc := middleware.GetUserContext(c)
	if uc == nil {
		return writeError(c, port.ErrUnauthorized)
	}
	table := c.Params("table")

	ts, err := h.settings.Decode(uc.UserID, table, c.Body())
	if err != nil {
		return writeError(c, err)
	}

	saved, err := h.settings.Save(c.Context(), uc.UserID, table, ts)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(saved)
}
