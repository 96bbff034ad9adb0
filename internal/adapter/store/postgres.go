package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/arturoeanton/foxops-dashboard/internal/domain"
	"github.com/arturoeanton/foxops-dashboard/internal/port"
	"github.com/lib/pq"
)

// PostgresStore handles all relational database operations.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens a connection and returns a store instance.
func NewPostgresStore(databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// NewPostgresStoreWithDB wraps an already opened database.
func NewPostgresStoreWithDB(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Close closes the database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// Migrate creates the tables the dashboard needs. It is idempotent.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// --- Users ---

// UpsertUserByFingerprint inserts the user for a token fingerprint or
// refreshes its stored token and login time.
func (s *PostgresStore) UpsertUserByFingerprint(ctx context.Context, fingerprint, accessToken string) (*domain.User, error) {
	query := `
		INSERT INTO users (token_fingerprint, access_token)
		VALUES ($1, $2)
		ON CONFLICT (token_fingerprint) DO UPDATE SET
			access_token = EXCLUDED.access_token,
			updated_at = NOW(),
			last_login_at = NOW()
		RETURNING id, token_fingerprint, access_token, created_at, updated_at, last_login_at`

	var user domain.User
	err := s.db.QueryRowContext(ctx, query, fingerprint, accessToken).Scan(
		&user.ID, &user.TokenFingerprint, &user.AccessToken,
		&user.CreatedAt, &user.UpdatedAt, &user.LastLoginAt,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert user: %w", err)
	}
	return &user, nil
}

// GetUserByID retrieves a user by ID.
func (s *PostgresStore) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT id, token_fingerprint, access_token, created_at, updated_at, last_login_at
	          FROM users WHERE id = $1`

	var user domain.User
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID, &user.TokenFingerprint, &user.AccessToken,
		&user.CreatedAt, &user.UpdatedAt, &user.LastLoginAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, port.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &user, nil
}

// --- Table settings ---

// GetTableSettings returns the saved settings of one table for a user.
func (s *PostgresStore) GetTableSettings(ctx context.Context, userID, table string) (*domain.TableSettings, error) {
	query := `SELECT user_id, table_name, search, sort, asc_order, page_size, hidden_columns, updated_at
	          FROM table_settings WHERE user_id = $1 AND table_name = $2`

	var ts domain.TableSettings
	err := s.db.QueryRowContext(ctx, query, userID, table).Scan(
		&ts.UserID, &ts.Table, &ts.Search, &ts.Sort, &ts.Asc, &ts.PageSize,
		pq.Array(&ts.HiddenColumns), &ts.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, port.ErrSettingsNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get table settings: %w", err)
	}
	if ts.HiddenColumns == nil {
		ts.HiddenColumns = []string{}
	}
	return &ts, nil
}

// SaveTableSettings upserts the settings and returns the stored row.
func (s *PostgresStore) SaveTableSettings(ctx context.Context, ts *domain.TableSettings) (*domain.TableSettings, error) {
	query := `
		INSERT INTO table_settings (user_id, table_name, search, sort, asc_order, page_size, hidden_columns)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id, table_name) DO UPDATE SET
			search = EXCLUDED.search,
			sort = EXCLUDED.sort,
			asc_order = EXCLUDED.asc_order,
			page_size = EXCLUDED.page_size,
			hidden_columns = EXCLUDED.hidden_columns,
			updated_at = NOW()
		RETURNING updated_at`

	saved := *ts
	saved.HiddenColumns = append([]string{}, ts.HiddenColumns...)
	err := s.db.QueryRowContext(ctx, query,
		ts.UserID, ts.Table, ts.Search, ts.Sort, ts.Asc, ts.PageSize, pq.Array(ts.HiddenColumns),
	).Scan(&saved.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("save table settings: %w", err)
	}
	return &saved, nil
}

// --- Audit Logs ---

// WriteAudit implements middleware.AuditWriter.
func (s *PostgresStore) WriteAudit(userID, action, resource, resourceID, details, ip, userAgent string) error {
	if !json.Valid([]byte(details)) {
		wrapped, _ := json.Marshal(map[string]string{"raw": details})
		details = string(wrapped)
	}

	query := `INSERT INTO audit_logs (user_id, action, resource, resource_id, details, ip, user_agent)
	          VALUES ($1, $2, $3, $4, $5::jsonb, $6, $7)`
	_, err := s.db.ExecContext(context.Background(), query,
		userID, action, resource, resourceID, details, ip, userAgent,
	)
	return err
}

// ListAuditLogs returns recent audit logs with optional filters.
func (s *PostgresStore) ListAuditLogs(ctx context.Context, limit int, action string) ([]domain.AuditLog, error) {
	query := `SELECT id, user_id, action, resource, resource_id, details, ip, user_agent, created_at
	          FROM audit_logs`
	args := []interface{}{}
	argIdx := 1

	if action != "" {
		query += fmt.Sprintf(" WHERE action = $%d", argIdx)
		args = append(args, action)
		argIdx++
	}

	query += " ORDER BY created_at DESC"

	if limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list audit logs: %w", err)
	}
	defer rows.Close()

	logs := []domain.AuditLog{}
	for rows.Next() {
		var l domain.AuditLog
		if err := rows.Scan(
			&l.ID, &l.UserID, &l.Action, &l.Resource, &l.ResourceID,
			&l.Details, &l.IP, &l.UserAgent, &l.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan audit log: %w", err)
		}
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit logs: %w", err)
	}
	return logs, nil
}
