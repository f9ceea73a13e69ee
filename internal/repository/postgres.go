package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/atinyakov/GophRoster/internal/models"
)

// PostgresDocumentRepository stores documents in a PostgreSQL JSONB column.
type PostgresDocumentRepository struct {
	// DB is the database handle for executing queries and transactions.
	DB *sql.DB
}

// NewPostgresDocumentRepository creates a repository on top of db.
// db must be a valid connection to a PostgreSQL instance.
func NewPostgresDocumentRepository(db *sql.DB) *PostgresDocumentRepository {
	return &PostgresDocumentRepository{DB: db}
}

// ListAll returns every live document of the collection in creation order.
func (r *PostgresDocumentRepository) ListAll(ctx context.Context, collection string) ([]models.Document, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, fields FROM documents WHERE collection = $1 AND deleted = false ORDER BY seq
	`, collection)
	if err != nil {
		return nil, fmt.Errorf("ListAll: %w", err)
	}
	defer rows.Close()

	docs := []models.Document{}
	for rows.Next() {
		var (
			doc models.Document
			raw []byte
		)
		if err := rows.Scan(&doc.ID, &raw); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		if doc.Fields, err = decodeFields(raw); err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListAll: %w", err)
	}
	return docs, nil
}

// Create inserts a new document under the given id.
func (r *PostgresDocumentRepository) Create(ctx context.Context, collection, id string, fields map[string]any) error {
	raw, err := encodeFields(fields)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx, `
		INSERT INTO documents (collection, id, fields, created_at) VALUES ($1, $2, $3, $4)
	`, collection, id, raw, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

// UpdateFields merges fields into the stored document. Keys not present in
// fields are left untouched.
func (r *PostgresDocumentRepository) UpdateFields(ctx context.Context, collection, id string, fields map[string]any) error {
	raw, err := encodeFields(fields)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx, `
		UPDATE documents SET fields = fields || $3::jsonb
		WHERE collection = $1 AND id = $2 AND deleted = false
	`, collection, id, raw)
	if err != nil {
		return fmt.Errorf("UpdateFields: %w", err)
	}
	return expectOne(res)
}

// Delete soft-deletes the document; the cleaner purges it later.
func (r *PostgresDocumentRepository) Delete(ctx context.Context, collection, id string) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE documents SET deleted = true, deleted_at = $3
		WHERE collection = $1 AND id = $2 AND deleted = false
	`, collection, id, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	return expectOne(res)
}

// Purge removes documents soft-deleted before the cutoff.
func (r *PostgresDocumentRepository) Purge(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `
		DELETE FROM documents WHERE deleted = true AND deleted_at < $1
	`, before.Unix())
	if err != nil {
		return 0, fmt.Errorf("Purge: %w", err)
	}
	return res.RowsAffected()
}

func expectOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
