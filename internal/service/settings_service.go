package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/arturoeanton/foxops-dashboard/internal/domain"
	"github.com/arturoeanton/foxops-dashboard/internal/finder"
	"github.com/arturoeanton/foxops-dashboard/internal/port"
)

// SettingsService loads and saves the per-user table view state.
type SettingsService struct {
	store port.SettingsStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(store port.SettingsStore) *SettingsService {
	return &SettingsService{store: store}
}

// Get returns the saved settings, or the defaults when none were saved.
func (s *SettingsService) Get(ctx context.Context, userID, table string) (*domain.TableSettings, error) {
	if err := validTable(table); err != nil {
		return nil, err
	}

	ts, err := s.store.GetTableSettings(ctx, userID, table)
	if errors.Is(err, port.ErrSettingsNotFound) {
		return domain.DefaultTableSettings(userID, table), nil
	}
	if err != nil {
		return nil, fmt.Errorf("get table settings: %w", err)
	}
	ts.Normalize(finder.IsSortField)
	return ts, nil
}

// Save normalizes and persists the settings for userID.
func (s *SettingsService) Save(ctx context.Context, userID, table string, ts domain.TableSettings) (*domain.TableSettings, error) {
	if err := validTable(table); err != nil {
		return nil, err
	}

	ts.UserID = userID
	ts.Table = table
	ts.Normalize(finder.IsSortField)

	saved, err := s.store.SaveTableSettings(ctx, &ts)
	if err != nil {
		return nil, fmt.Errorf("save table settings: %w", err)
	}
	return saved, nil
}

// Encode serializes settings to their JSON wire form.
func (s *SettingsService) Encode(ts *domain.TableSettings) ([]byte, error) {
	data, err := json.Marshal(ts)
	if err != nil {
		return nil, fmt.Errorf("encode table settings: %w", err)
	}
	return data, nil
}

// Decode parses the JSON wire form. Missing keys keep their defaults.
func (s *SettingsService) Decode(userID, table string, data []byte) (domain.TableSettings, error) {
	ts := *domain.DefaultTableSettings(userID, table)
	if err := json.Unmarshal(data, &ts); err != nil {
		return domain.TableSettings{}, fmt.Errorf("%w: decode table settings: %v", port.ErrInvalidInput, err)
	}
	ts.UserID = userID
	ts.Table = table
	ts.Normalize(finder.IsSortField)
	return ts, nil
}

func validTable(table string) error {
	if strings.TrimSpace(table) == "" {
		return fmt.Errorf("%w: table is required", port.ErrInvalidInput)
	}
	if table != domain.TableIncarnations {
		return fmt.Errorf("%w: unknown table %q", port.ErrInvalidInput, table)
	}
	return nil
}
