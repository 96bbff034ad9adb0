// Package mocks holds testify mocks for the port interfaces.
package mocks

import (
	"context"

	"github.com/arturoeanton/foxops-dashboard/internal/domain"
	"github.com/arturoeanton/foxops-dashboard/internal/port"
	"github.com/stretchr/testify/mock"
)

// IncarnationAPI is a mock for port.IncarnationAPI.
type IncarnationAPI struct {
	mock.Mock
}

func (m *IncarnationAPI) TestAuth(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *IncarnationAPI) ListIncarnations(ctx context.Context) ([]domain.IncarnationSummary, error) {
	args := m.Called(ctx)
	if list, ok := args.Get(0).([]domain.IncarnationSummary); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *IncarnationAPI) GetIncarnation(ctx context.Context, id int) (*domain.Incarnation, error) {
	args := m.Called(ctx, id)
	if inc, ok := args.Get(0).(*domain.Incarnation); ok {
		return inc, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *IncarnationAPI) CreateIncarnation(ctx context.Context, req domain.CreateIncarnationRequest, allowImport bool) (*domain.Incarnation, error) {
	args := m.Called(ctx, req, allowImport)
	if inc, ok := args.Get(0).(*domain.Incarnation); ok {
		return inc, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *IncarnationAPI) UpdateIncarnation(ctx context.Context, id int, req domain.UpdateIncarnationRequest) (*domain.Incarnation, error) {
	args := m.Called(ctx, id, req)
	if inc, ok := args.Get(0).(*domain.Incarnation); ok {
		return inc, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *IncarnationAPI) PatchIncarnation(ctx context.Context, id int, req domain.PatchIncarnationRequest) (*domain.Incarnation, error) {
	args := m.Called(ctx, id, req)
	if inc, ok := args.Get(0).(*domain.Incarnation); ok {
		return inc, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *IncarnationAPI) ResetIncarnation(ctx context.Context, id int) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *IncarnationAPI) DeleteIncarnation(ctx context.Context, id int) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *IncarnationAPI) GetIncarnationDiff(ctx context.Context, id int) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

// ClientFactory is a mock for port.ClientFactory.
type ClientFactory struct {
	mock.Mock
}

func (m *ClientFactory) ClientFor(token string) port.IncarnationAPI {
	args := m.Called(token)
	return args.Get(0).(port.IncarnationAPI)
}

func (m *ClientFactory) Evict(token string) {
	m.Called(token)
}

// UserStore is a mock for port.UserStore.
type UserStore struct {
	mock.Mock
}

func (m *UserStore) UpsertUserByFingerprint(ctx context.Context, fingerprint, accessToken string) (*domain.User, error) {
	args := m.Called(ctx, fingerprint, accessToken)
	if u, ok := args.Get(0).(*domain.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *UserStore) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if u, ok := args.Get(0).(*domain.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

// SettingsStore is a mock for port.SettingsStore.
type SettingsStore struct {
	mock.Mock
}

func (m *SettingsStore) GetTableSettings(ctx context.Context, userID, table string) (*domain.TableSettings, error) {
	args := m.Called(ctx, userID, table)
	if s, ok := args.Get(0).(*domain.TableSettings); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *SettingsStore) SaveTableSettings(ctx context.Context, s *domain.TableSettings) (*domain.TableSettings, error) {
	args := m.Called(ctx, s)
	if saved, ok := args.Get(0).(*domain.TableSettings); ok {
		return saved, args.Error(1)
	}
	return nil, args.Error(1)
}

// AuditStore is a mock for port.AuditStore.
type AuditStore struct {
	mock.Mock
}

func (m *AuditStore) ListAuditLogs(ctx context.Context, limit int, action string) ([]domain.AuditLog, error) {
	args := m.Called(ctx, limit, action)
	if logs, ok := args.Get(0).([]domain.AuditLog); ok {
		return logs, args.Error(1)
	}
	return nil, args.Error(1)
}

// WriteAudit satisfies middleware.AuditWriter; recorded calls are optional.
func (m *AuditStore) WriteAudit(userID, action, resource, resourceID, details, ip, userAgent string) error {
	return nil
}
