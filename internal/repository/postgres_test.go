package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func setupMock(t *testing.T) (*PostgresDocumentRepository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	repo := NewPostgresDocumentRepository(db)
	cleanup := func() {
		db.Close()
	}
	return repo, mock, cleanup
}

func TestPostgresListAll_Success(t *testing.T) {
	repo, mock, cleanup := setupMock(t)
	defer cleanup()

	rows := sqlmock.NewRows([]string{"id", "fields"}).
		AddRow("1", []byte(`{"fname":"Ann","lname":"Lee","city":"NY"}`)).
		AddRow("2", []byte(`{"fname":"Bo"}`))

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, fields FROM documents WHERE collection = $1 AND deleted = false ORDER BY seq`)).
		WithArgs("users").
		WillReturnRows(rows)

	docs, err := repo.ListAll(context.Background(), "users")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(docs))
	}
	if docs[0].ID != "1" || docs[0].Fields["city"] != "NY" {
		t.Errorf("unexpected first document: %+v", docs[0])
	}
	if docs[1].Fields["fname"] != "Bo" {
		t.Errorf("unexpected second document: %+v", docs[1])
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestPostgresListAll_EmptyIsNotNil(t *testing.T) {
	repo, mock, cleanup := setupMock(t)
	defer cleanup()

	mock.ExpectQuery("SELECT id, fields FROM documents").
		WithArgs("users").
		WillReturnRows(sqlmock.NewRows([]string{"id", "fields"}))

	docs, err := repo.ListAll(context.Background(), "users")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if docs == nil || len(docs) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", docs)
	}
}

func TestPostgresListAll_Errors(t *testing.T) {
	t.Run("query", func(t *testing.T) {
		repo, mock, cleanup := setupMock(t)
		defer cleanup()

		mock.ExpectQuery("SELECT id, fields FROM documents").
			WillReturnError(errors.New("query fail"))

		_, err := repo.ListAll(context.Background(), "users")
		if err == nil || !regexp.MustCompile(`ListAll`).MatchString(err.Error()) {
			t.Errorf("expected ListAll error, got %v", err)
		}
	})

	t.Run("bad json", func(t *testing.T) {
		repo, mock, cleanup := setupMock(t)
		defer cleanup()

		mock.ExpectQuery("SELECT id, fields FROM documents").
			WillReturnRows(sqlmock.NewRows([]string{"id", "fields"}).AddRow("1", []byte(`{`)))

		_, err := repo.ListAll(context.Background(), "users")
		if err == nil || !regexp.MustCompile(`decode fields`).MatchString(err.Error()) {
			t.Errorf("expected decode error, got %v", err)
		}
	})
}

func TestPostgresCreate(t *testing.T) {
	repo, mock, cleanup := setupMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO documents (collection, id, fields, created_at)`)).
		WithArgs("users", "abc", []byte(`{"city":"SF","fname":"Bo","lname":""}`), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.Create(context.Background(), "users", "abc", map[string]any{"fname": "Bo", "lname": "", "city": "SF"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestPostgresUpdateFields(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		execErr  error
		wantErr  error
	}{
		{name: "updated", affected: 1},
		{name: "missing", affected: 0, wantErr: ErrNotFound},
		{name: "exec error", execErr: errors.New("boom")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupMock(t)
			defer cleanup()

			exp := mock.ExpectExec(regexp.QuoteMeta(`UPDATE documents SET fields = fields || $3::jsonb`)).
				WithArgs("users", "1", []byte(`{"city":"LA"}`))
			if tt.execErr != nil {
				exp.WillReturnError(tt.execErr)
			} else {
				exp.WillReturnResult(sqlmock.NewResult(0, tt.affected))
			}

			err := repo.UpdateFields(context.Background(), "users", "1", map[string]any{"city": "LA"})
			switch {
			case tt.execErr != nil:
				if err == nil {
					t.Fatal("expected error")
				}
			case tt.wantErr != nil:
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v; want %v", err, tt.wantErr)
				}
			default:
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
			}
		})
	}
}

func TestPostgresDelete_NotFound(t *testing.T) {
	repo, mock, cleanup := setupMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE documents SET deleted = true, deleted_at = $3`)).
		WithArgs("users", "gone", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Delete(context.Background(), "users", "gone"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("error = %v; want ErrNotFound", err)
	}
}

func TestPostgresPurge(t *testing.T) {
	repo, mock, cleanup := setupMock(t)
	defer cleanup()

	cutoff := time.Unix(1000, 0)
	mock.ExpectExec("DELETE FROM documents").
		WithArgs(int64(1000)).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := repo.Purge(context.Background(), cutoff)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 3 {
		t.Errorf("removed = %d; want 3", n)
	}
}
