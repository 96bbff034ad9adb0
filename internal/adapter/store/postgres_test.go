package store

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/arturoeanton/foxops-dashboard/internal/domain"
	"github.com/arturoeanton/foxops-dashboard/internal/port"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresStoreWithDB(db), mock
}

func TestMigrate(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS users").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, s.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertUserByFingerprint(t *testing.T) {
	s, mock := newMockStore(t)
	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "token_fingerprint", "access_token", "created_at", "updated_at", "last_login_at"}).
		AddRow("u-1", "fp", "tok", now, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs("fp", "tok").
		WillReturnRows(rows)

	user, err := s.UpsertUserByFingerprint(context.Background(), "fp", "tok")
	require.NoError(t, err)
	assert.Equal(t, "u-1", user.ID)
	assert.Equal(t, "tok", user.AccessToken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUserByID_NotFound(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery("FROM users WHERE id").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := s.GetUserByID(context.Background(), "missing")
	assert.ErrorIs(t, err, port.ErrUserNotFound)
}

func TestGetTableSettings(t *testing.T) {
	s, mock := newMockStore(t)
	now := time.Now()
	rows := sqlmock.NewRows([]string{"user_id", "table_name", "search", "sort", "asc_order", "page_size", "hidden_columns", "updated_at"}).
		AddRow("u-1", "incarnations", "api", "revision", false, 50, "{commit_url,created_at}", now)
	mock.ExpectQuery("FROM table_settings").
		WithArgs("u-1", "incarnations").
		WillReturnRows(rows)

	ts, err := s.GetTableSettings(context.Background(), "u-1", "incarnations")
	require.NoError(t, err)
	assert.Equal(t, "api", ts.Search)
	assert.Equal(t, "revision", ts.Sort)
	assert.False(t, ts.Asc)
	assert.Equal(t, 50, ts.PageSize)
	assert.Equal(t, []string{"commit_url", "created_at"}, ts.HiddenColumns)
}

func TestGetTableSettings_NotFound(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery("FROM table_settings").WillReturnError(sql.ErrNoRows)

	_, err := s.GetTableSettings(context.Background(), "u-1", "incarnations")
	assert.ErrorIs(t, err, port.ErrSettingsNotFound)
}

func TestSaveTableSettings(t *testing.T) {
	s, mock := newMockStore(t)
	now := time.Now()
	in := &domain.TableSettings{
		UserID: "u-1", Table: "incarnations", Sort: "id", Asc: true, PageSize: 25,
		HiddenColumns: []string{"commit_url"},
	}
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO table_settings")).
		WithArgs("u-1", "incarnations", "", "id", true, 25, pq.Array([]string{"commit_url"})).
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(now))

	out, err := s.SaveTableSettings(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, now, out.UpdatedAt)
	assert.Equal(t, []string{"commit_url"}, out.HiddenColumns)
	assert.True(t, in.UpdatedAt.IsZero(), "input must not be mutated")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWriteAudit_WrapsInvalidJSON(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO audit_logs")).
		WithArgs("u-1", domain.AuditActionLogin, "auth", "", `{"raw":"not json"}`, "127.0.0.1", "test").
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, s.WriteAudit("u-1", domain.AuditActionLogin, "auth", "", "not json", "127.0.0.1", "test"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListAuditLogs_WithFilter(t *testing.T) {
	s, mock := newMockStore(t)
	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "user_id", "action", "resource", "resource_id", "details", "ip", "user_agent", "created_at"}).
		AddRow(int64(7), "u-1", "login", "auth", "", []byte(`{}`), "::1", "curl", now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM audit_logs WHERE action = $1 ORDER BY created_at DESC LIMIT $2")).
		WithArgs("login", 10).
		WillReturnRows(rows)

	logs, err := s.ListAuditLogs(context.Background(), 10, "login")
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "7", logs[0].ID)
	assert.Equal(t, "{}", logs[0].Details)
}

func TestListAuditLogs_Empty(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery("FROM audit_logs ORDER BY").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "action", "resource", "resource_id", "details", "ip", "user_agent", "created_at"}))

	logs, err := s.ListAuditLogs(context.Background(), 0, "")
	require.NoError(t, err)
	assert.NotNil(t, logs)
	assert.Empty(t, logs)
}
