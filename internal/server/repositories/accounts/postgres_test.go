package accounts

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/credkeeper/internal/common"
	"github.com/dmitrijs2005/credkeeper/internal/server/models"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

var (
	selectQ          = `(?s)^SELECT\s+id,\s*firstname,\s*lastname,\s*email,\s*password,\s*created_at\s+FROM\s+users\s+WHERE\s+email\s*=\s*\$1\s*$`
	selectForUpdateQ = `(?s)^SELECT\s+id,\s*firstname,\s*lastname,\s*email,\s*password,\s*created_at\s+FROM\s+users\s+WHERE\s+email\s*=\s*\$1\s+FOR\s+UPDATE\s*$`
	insertQ          = `(?s)^INSERT\s+INTO\s+users\s*\(id,\s*firstname,\s*lastname,\s*email,\s*password\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5\)\s*RETURNING\s+id\s*$`
	updateEmailQ     = `(?s)^UPDATE\s+users\s+SET\s+email\s*=\s*\$1\s+WHERE\s+id\s*=\s*\$2\s*$`
	updatePasswordQ  = `(?s)^UPDATE\s+users\s+SET\s+password\s*=\s*\$1\s+WHERE\s+id\s*=\s*\$2\s*$`

	accountColumns = []string{"id", "firstname", "lastname", "email", "password", "created_at"}
	uniqueErr      = &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "users_email_key"}
)

func TestFindByEmail_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	mock.ExpectQuery(selectQ).
		WithArgs("ada@x.com").
		WillReturnRows(sqlmock.NewRows(accountColumns).
			AddRow("u-1", "Ada", "Lovelace", "ada@x.com", "$2a$hash", created))

	got, err := repo.FindByEmail(context.Background(), "ada@x.com")
	if err != nil {
		t.Fatalf("FindByEmail error: %v", err)
	}
	want := models.Account{ID: "u-1", FirstName: "Ada", LastName: "Lovelace", Email: "ada@x.com", PasswordHash: "$2a$hash", CreatedAt: created}
	if *got != want {
		t.Fatalf("unexpected account: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestFindByEmail_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(selectQ).
		WithArgs("ghost@x.com").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByEmail(context.Background(), "ghost@x.com")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestFindByEmail_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(selectQ).
		WithArgs("ada@x.com").
		WillReturnError(errors.New("db down"))

	_, err := repo.FindByEmail(context.Background(), "ada@x.com")
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestFindByEmailForUpdate_LocksRow(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(selectForUpdateQ).
		WithArgs("ada@x.com").
		WillReturnRows(sqlmock.NewRows(accountColumns).
			AddRow("u-1", "Ada", "Lovelace", "ada@x.com", "$2a$hash", time.Now()))

	got, err := repo.FindByEmailForUpdate(context.Background(), "ada@x.com")
	if err != nil {
		t.Fatalf("FindByEmailForUpdate error: %v", err)
	}
	if got.ID != "u-1" {
		t.Fatalf("unexpected account: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestInsert_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(insertQ).
		WithArgs("u-1", "Ada", "Lovelace", "ada@x.com", "$2a$hash").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("u-1"))

	id, err := repo.Insert(context.Background(), &models.Account{
		ID: "u-1", FirstName: "Ada", LastName: "Lovelace", Email: "ada@x.com", PasswordHash: "$2a$hash",
	})
	if err != nil {
		t.Fatalf("Insert error: %v", err)
	}
	if id != "u-1" {
		t.Fatalf("unexpected id: %q", id)
	}
}

func TestInsert_GeneratesID(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(insertQ).
		WithArgs(sqlmock.AnyArg(), "Ada", "Lovelace", "ada@x.com", "$2a$hash").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("generated"))

	a := &models.Account{FirstName: "Ada", LastName: "Lovelace", Email: "ada@x.com", PasswordHash: "$2a$hash"}
	if _, err := repo.Insert(context.Background(), a); err != nil {
		t.Fatalf("Insert error: %v", err)
	}
	if a.ID == "" {
		t.Fatal("expected id to be assigned before insert")
	}
}

func TestInsert_DuplicateEmailIsConflict(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(insertQ).
		WithArgs("u-2", "Ada", "Lovelace", "ada@x.com", "$2a$hash").
		WillReturnError(uniqueErr)

	_, err := repo.Insert(context.Background(), &models.Account{
		ID: "u-2", FirstName: "Ada", LastName: "Lovelace", Email: "ada@x.com", PasswordHash: "$2a$hash",
	})
	if !errors.Is(err, common.ErrorConflict) {
		t.Fatalf("want common.ErrorConflict, got %v", err)
	}
}

func TestInsert_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(insertQ).
		WithArgs("u-1", "Ada", "Lovelace", "ada@x.com", "$2a$hash").
		WillReturnError(errors.New("db down"))

	_, err := repo.Insert(context.Background(), &models.Account{
		ID: "u-1", FirstName: "Ada", LastName: "Lovelace", Email: "ada@x.com", PasswordHash: "$2a$hash",
	})
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestUpdateEmail(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(mock sqlmock.Sqlmock)
		wantErr error
	}{
		{
			name: "success",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(updateEmailQ).WithArgs("new@x.com", "u-1").WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name: "duplicate",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(updateEmailQ).WithArgs("new@x.com", "u-1").WillReturnError(uniqueErr)
			},
			wantErr: common.ErrorConflict,
		},
		{
			name: "unknown id",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(updateEmailQ).WithArgs("new@x.com", "u-1").WillReturnResult(sqlmock.NewResult(0, 0))
			},
			wantErr: common.ErrorNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, db := newRepoWithMock(t)
			defer db.Close()
			tt.setup(mock)

			err := repo.UpdateEmail(context.Background(), "u-1", "new@x.com")
			if tt.wantErr == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("want %v, got %v", tt.wantErr, err)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Fatalf("unmet expectations: %v", err)
			}
		})
	}
}

func TestUpdatePassword_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(updatePasswordQ).
		WithArgs("$2a$new", "u-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.UpdatePassword(context.Background(), "u-1", "$2a$new"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestUpdatePassword_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(updatePasswordQ).
		WithArgs("$2a$new", "u-1").
		WillReturnError(errors.New("db err"))

	err := repo.UpdatePassword(context.Background(), "u-1", "$2a$new")
	if err == nil || !regexp.MustCompile(`db error: .*db err`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}
