package postgres

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/portfolio/workitems-api/internal/core/domain"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return db, mock
}

var ts = time.Date(2026, 4, 2, 8, 30, 0, 0, time.UTC)

// ---------------------------------------------------------------------------
// Users
// ---------------------------------------------------------------------------

func TestUserRepository_Create(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)

	mock.ExpectExec(`(?s)^\s*INSERT\s+INTO\s+users\s*\(id,\s*username,\s*email,\s*password_hash,\s*created_at,\s*updated_at\)`).
		WithArgs("u1", "alice", "alice@example.com", "hash", ts, ts).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Create(context.Background(), &domain.User{
		ID: "u1", Username: "alice", Email: "alice@example.com", PasswordHash: "hash", CreatedAt: ts, UpdatedAt: ts,
	})
	require.NoError(t, err)
}

func TestUserRepository_Create_UniqueViolation(t *testing.T) {
	cases := map[string]string{
		usernameConstraint: "username",
		emailConstraint:    "email",
		"users_pkey":       "",
	}
	for constraint, field := range cases {
		db, mock := newMock(t)
		repo := NewUserRepository(db)

		mock.ExpectExec(`INSERT\s+INTO\s+users`).
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: constraint})

		err := repo.Create(context.Background(), &domain.User{ID: "u1", CreatedAt: ts, UpdatedAt: ts})

		var dup *domain.DuplicateCredentialError
		require.ErrorAs(t, err, &dup, constraint)
		assert.Equal(t, field, dup.Field, constraint)
	}
}

func TestUserRepository_Create_DBError(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)

	mock.ExpectExec(`INSERT\s+INTO\s+users`).WillReturnError(errors.New("db down"))

	err := repo.Create(context.Background(), &domain.User{ID: "u1", CreatedAt: ts, UpdatedAt: ts})
	require.Error(t, err)
	assert.Regexp(t, regexp.MustCompile(`db error: .*db down`), err.Error())
	assert.False(t, errors.Is(err, domain.ErrDuplicateCredential))
}

func TestUserRepository_Exists(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(`SELECT\s+EXISTS\s*\(SELECT\s+1\s+FROM\s+users\s+WHERE\s+username\s*=\s*\$1\)`).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(`SELECT\s+EXISTS\s*\(SELECT\s+1\s+FROM\s+users\s+WHERE\s+email\s*=\s*\$1\)`).
		WithArgs("x@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	byName, err := repo.ExistsByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.True(t, byName)

	byEmail, err := repo.ExistsByEmail(context.Background(), "x@example.com")
	require.NoError(t, err)
	assert.False(t, byEmail)
}

func TestUserRepository_FindByUsernameOrEmail(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)

	q := `(?s)SELECT\s+id,\s*username,\s*email,\s*password_hash,\s*created_at,\s*updated_at\s+FROM\s+users\s+WHERE\s+username\s*=\s*\$1\s+OR\s+email\s*=\s*\$1`

	mock.ExpectQuery(q).
		WithArgs("alice@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email", "password_hash", "created_at", "updated_at"}).
			AddRow("u1", "alice", "alice@example.com", "hash", ts, ts))
	mock.ExpectQuery(q).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	u, err := repo.FindByUsernameOrEmail(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
	assert.Equal(t, "hash", u.PasswordHash)

	_, err = repo.FindByUsernameOrEmail(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

// ---------------------------------------------------------------------------
// Work items
// ---------------------------------------------------------------------------

var workItemCols = []string{"id", "title", "description", "status", "priority", "created_at", "updated_at"}

func TestWorkItemRepository_Create(t *testing.T) {
	db, mock := newMock(t)
	repo := NewWorkItemRepository(db)

	mock.ExpectExec(`INSERT\s+INTO\s+work_items`).
		WithArgs("w1", "Write docs", nil, 0, 1, ts, ts).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Create(context.Background(), &domain.WorkItem{
		ID: "w1", Title: "Write docs", Status: domain.StatusTodo, Priority: domain.PriorityMedium, CreatedAt: ts, UpdatedAt: ts,
	})
	require.NoError(t, err)
}

func TestWorkItemRepository_FindByID(t *testing.T) {
	db, mock := newMock(t)
	repo := NewWorkItemRepository(db)

	q := `SELECT\s+id,\s*title,\s*description,\s*status,\s*priority,\s*created_at,\s*updated_at\s+FROM\s+work_items\s+WHERE\s+id\s*=\s*\$1`
	mock.ExpectQuery(q).WithArgs("w1").
		WillReturnRows(sqlmock.NewRows(workItemCols).AddRow("w1", "Write docs", "details", 2, 0, ts, ts))
	mock.ExpectQuery(q).WithArgs("w2").WillReturnError(sql.ErrNoRows)

	w, err := repo.FindByID(context.Background(), "w1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDone, w.Status)
	assert.Equal(t, domain.PriorityLow, w.Priority)
	require.NotNil(t, w.Description)
	assert.Equal(t, "details", *w.Description)

	_, err = repo.FindByID(context.Background(), "w2")
	assert.ErrorIs(t, err, domain.ErrWorkItemNotFound)
}

func TestWorkItemRepository_UpdateAndDelete_NotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewWorkItemRepository(db)

	mock.ExpectExec(`UPDATE\s+work_items\s+SET`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`DELETE\s+FROM\s+work_items\s+WHERE\s+id\s*=\s*\$1`).WithArgs("w9").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`DELETE\s+FROM\s+work_items\s+WHERE\s+id\s*=\s*\$1`).WithArgs("w1").WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Update(context.Background(), &domain.WorkItem{ID: "w9", Title: "x", UpdatedAt: ts})
	assert.ErrorIs(t, err, domain.ErrWorkItemNotFound)

	assert.ErrorIs(t, repo.Delete(context.Background(), "w9"), domain.ErrWorkItemNotFound)
	assert.NoError(t, repo.Delete(context.Background(), "w1"))
}

func TestWorkItemRepository_List_FiltersSortAndPaging(t *testing.T) {
	db, mock := newMock(t)
	repo := NewWorkItemRepository(db)

	status := domain.StatusInProgress
	priority := domain.PriorityHigh
	q := domain.WorkItemQuery{
		Status:   &status,
		Priority: &priority,
		SortBy:   domain.SortByPriority,
		SortDir:  domain.SortDesc,
		Page:     3,
		PageSize: 5,
	}

	mock.ExpectQuery(`SELECT\s+COUNT\(\*\)\s+FROM\s+work_items\s+WHERE\s+status\s*=\s*\$1\s+AND\s+priority\s*=\s*\$2`).
		WithArgs(1, 2).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(11))
	mock.ExpectQuery(`FROM\s+work_items\s+WHERE\s+status\s*=\s*\$1\s+AND\s+priority\s*=\s*\$2\s+ORDER\s+BY\s+priority\s+DESC,\s*id\s+ASC\s+LIMIT\s+\$3\s+OFFSET\s+\$4`).
		WithArgs(1, 2, 5, 10).
		WillReturnRows(sqlmock.NewRows(workItemCols).AddRow("w11", "Last", nil, 1, 2, ts, ts))

	items, total, err := repo.List(context.Background(), q)
	require.NoError(t, err)
	assert.EqualValues(t, 11, total)
	require.Len(t, items, 1)
	assert.Nil(t, items[0].Description)
}

func TestWorkItemRepository_List_NoFilters(t *testing.T) {
	db, mock := newMock(t)
	repo := NewWorkItemRepository(db)

	mock.ExpectQuery(`^SELECT\s+COUNT\(\*\)\s+FROM\s+work_items$`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`ORDER\s+BY\s+created_at\s+ASC,\s*id\s+ASC\s+LIMIT\s+\$1\s+OFFSET\s+\$2`).
		WithArgs(10, 0).
		WillReturnRows(sqlmock.NewRows(workItemCols))

	items, total, err := repo.List(context.Background(), domain.WorkItemQuery{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, items)
	assert.NotNil(t, items)
}

func TestMigrate_UsesEmbeddedMigrations(t *testing.T) {
	db, _ := newMock(t)

	var gotDir string
	orig := gooseUp
	gooseUp = func(_ context.Context, _ *sql.DB, dir string) error {
		gotDir = dir
		return nil
	}
	t.Cleanup(func() { gooseUp = orig })

	require.NoError(t, Migrate(context.Background(), db))
	assert.Equal(t, ".", gotDir)
}
