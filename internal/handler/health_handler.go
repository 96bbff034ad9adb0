package handler

import "github.com/gofiber/fiber/v3"

// HealthHandler reports liveness.
type HealthHandler struct {
	appName string
	version string
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(appName, version string) *HealthHandler {
	return &HealthHandler{appName: appName, version: version}
}

// Register sets up the public health route.
func (h *HealthHandler) Register(app *fiber.App) {
	app.Get("/api/v1/health", h.Health)
}

// Health answers with the app name and version.
func (h *HealthHandler) Health(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "healthy",
		"app":     h.appName,
		"version": h.version,
	})
}
