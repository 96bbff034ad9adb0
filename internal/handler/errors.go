package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/arturoeanton/foxops-dashboard/internal/adapter/foxops"
	"github.com/arturoeanton/foxops-dashboard/internal/port"
	"github.com/gofiber/fiber/v3"
)

// writeError maps err onto a status code and an {"error": ...} body.
func writeError(c fiber.Ctx, err error) error {
	status, msg := errorStatus(err)
	if status >= fiber.StatusInternalServerError {
		slog.Error("request failed", "method", c.Method(), "path", c.Path(), "status", status, "error", err)
	}
	return c.Status(status).JSON(fiber.Map{"error": msg})
}

func errorStatus(err error) (int, string) {
	var apiErr *foxops.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusBadRequest, http.StatusConflict, http.StatusUnprocessableEntity:
			return apiErr.StatusCode, apiErr.Message
		}
	}

	switch {
	case errors.Is(err, port.ErrInvalidInput):
		return fiber.StatusBadRequest, err.Error()
	case errors.Is(err, port.ErrIncarnationNotFound):
		return fiber.StatusNotFound, "incarnation not found"
	case errors.Is(err, port.ErrJobNotFound):
		return fiber.StatusNotFound, "job not found"
	case errors.Is(err, port.ErrUserNotFound):
		return fiber.StatusUnauthorized, "unknown session"
	case errors.Is(err, port.ErrTokenExpired), errors.Is(err, port.ErrTokenInvalid), errors.Is(err, port.ErrUnauthorized):
		return fiber.StatusUnauthorized, "unauthorized"
	case apiErr != nil, errors.Is(err, port.ErrUpstreamUnavailable):
		return fiber.StatusBadGateway, err.Error()
	}
	return fiber.StatusInternalServerError, "internal error"
}

// queryInt reads an integer query param with a default value.
func queryInt(c fiber.Ctx, key string, defaultVal int) int {
	v := c.Query(key)
	if v == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return n
}

// queryBool reads a boolean query param with a default value.
func queryBool(c fiber.Ctx, key string, defaultVal bool) bool {
	v := c.Query(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal
	}
	return b
}

// paramID parses the :id route parameter.
func paramID(c fiber.Ctx) (int, error) {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil || id < 1 {
		return 0, fmt.Errorf("%w: invalid incarnation id %q", port.ErrInvalidInput, c.Params("id"))
	}
	return id, nil
}
