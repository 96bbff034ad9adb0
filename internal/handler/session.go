package handler

import (
	"context"
	"errors"

	"github.com/arturoeanton/foxops-dashboard/internal/domain"
	"github.com/arturoeanton/foxops-dashboard/internal/middleware"
	"github.com/arturoeanton/foxops-dashboard/internal/port"
	"github.com/gofiber/fiber/v3"
)

// ClientResolver returns the foxops client of a logged-in user.
type ClientResolver interface {
	ClientFor(ctx context.Context, userID string) (port.IncarnationAPI, error)
}

// sessionClient resolves the caller and their foxops client.
func sessionClient(c fiber.Ctx, sessions ClientResolver) (*domain.UserContext, port.IncarnationAPI, error) {
	uc := middleware.GetUserContext(c)
	if uc == nil {
		return nil, nil, port.ErrUnauthorized
	}
	api, err := sessions.ClientFor(c.Context(), uc.UserID)
	if err != nil {
		return nil, nil, err
	}
	return uc, api, nil
}

// forgetOnUnauthorized drops a memoised token that foxops stopped accepting.
func forgetOnUnauthorized(sessions ClientResolver, userID string, err error) {
	type forgetter interface{ Forget(userID string) }
	if f, ok := sessions.(forgetter); ok && errors.Is(err, port.ErrUnauthorized) {
		f.Forget(userID)
	}
}
