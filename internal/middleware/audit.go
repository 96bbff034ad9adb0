package middleware

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/arturoeanton/foxops-dashboard/internal/domain"
	"github.com/gofiber/fiber/v3"
)

// AuditWriter defines how audit records are persisted.
type AuditWriter interface {
	WriteAudit(userID, action, resource, resourceID, details, ip, userAgent string) error
}

// AuditMiddleware records every request. The write happens in the
// background so a slow database never delays the response.
func AuditMiddleware(writer AuditWriter) fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()

		// Fiber reuses context objects, capture before the handler runs.
		method := c.Method()
		path := c.Path()
		ip := c.IP()
		userAgent := c.Get("User-Agent")

		err := c.Next()

		userID := "anonymous"
		if uc := GetUserContext(c); uc != nil {
			userID = uc.UserID
		}

		details, _ := json.Marshal(map[string]any{
			"method":      method,
			"path":        path,
			"status":      c.Response().StatusCode(),
			"duration_ms": time.Since(start).Milliseconds(),
		})

		Audit(writer, userID, domain.AuditActionHTTPRequest, "api", path, string(details), ip, userAgent)

		return err
	}
}

// Audit writes one record asynchronously and logs a failed write.
func Audit(writer AuditWriter, userID, action, resource, resourceID, details, ip, userAgent string) {
	if writer == nil {
		return
	}
	go func() {
		if err := writer.WriteAudit(userID, action, resource, resourceID, details, ip, userAgent); err != nil {
			slog.Error("failed to write audit log", "action", action, "error", err)
		}
	}()
}
