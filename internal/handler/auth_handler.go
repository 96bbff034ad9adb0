package handler

import (
	"errors"

	"github.com/arturoeanton/foxops-dashboard/internal/domain"
	"github.com/arturoeanton/foxops-dashboard/internal/middleware"
	"github.com/arturoeanton/foxops-dashboard/internal/port"
	"github.com/arturoeanton/foxops-dashboard/internal/service"
	"github.com/gofiber/fiber/v3"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService *service.AuthService
	users       port.UserStore
	audit       middleware.AuditWriter
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService *service.AuthService, users port.UserStore, audit middleware.AuditWriter) *AuthHandler {
	return &AuthHandler{authService: authService, users: users, audit: audit}
}

// Register sets up the public login route.
func (h *AuthHandler) Register(app *fiber.App) {
	app.Post("/api/v1/auth/login", h.Login)
}

// RegisterProtected sets up auth routes that need a session.
func (h *AuthHandler) RegisterProtected(router fiber.Router) {
	router.Get("/auth/me", h.Me)
}

// Login exchanges a foxops API token for a session JWT.
func (h *AuthHandler) Login(c fiber.Ctx) error {
	var body struct {
		Token string `json:"token"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	jwt, user, err := h.authService.Login(c.Context(), body.Token)
	if err != nil {
		if errors.Is(err, port.ErrUnauthorized) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "foxops rejected the token"})
		}
		return writeError(c, err)
	}

	middleware.Audit(h.audit, user.ID, domain.AuditActionLogin, "auth", user.ID, "{}", c.IP(), c.Get("User-Agent"))

	return c.JSON(fiber.Map{"token": jwt, "user": user})
}

// Me returns the logged-in user.
func (h *AuthHandler) Me(c fiber.Ctx) error {
	uc := middleware.GetUserContext(c)
	if uc == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	user, err := h.users.GetUserByID(c.Context(), uc.UserID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(user)
}
