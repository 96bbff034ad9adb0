package port

import (
	"context"

	"github.com/arturoeanton/foxops-dashboard/internal/domain"
)

// UserStore persists dashboard users and their foxops tokens.
type UserStore interface {
	UpsertUserByFingerprint(ctx context.Context, fingerprint, accessToken string) (*domain.User, error)
	GetUserByID(ctx context.Context, id string) (*domain.User, error)
}

// SettingsStore persists per-user table settings.
type SettingsStore interface {
	// GetTableSettings returns ErrSettingsNotFound when nothing was saved yet.
	GetTableSettings(ctx context.Context, userID, table string) (*domain.TableSettings, error)
	SaveTableSettings(ctx context.Context, s *domain.TableSettings) (*domain.TableSettings, error)
}

// AuditStore reads back the audit trail.
type AuditStore interface {
	ListAuditLogs(ctx context.Context, limit int, action string) ([]domain.AuditLog, error)
}
