package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/atinyakov/GophRoster/internal/models"
)

// SQLiteDocumentRepository stores documents as JSON text in SQLite.
type SQLiteDocumentRepository struct {
	DB *sql.DB
}

// NewSQLiteDocumentRepository creates a repository on top of db.
func NewSQLiteDocumentRepository(db *sql.DB) *SQLiteDocumentRepository {
	return &SQLiteDocumentRepository{DB: db}
}

// ListAll returns every live document of the collection in creation order.
func (r *SQLiteDocumentRepository) ListAll(ctx context.Context, collection string) ([]models.Document, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, fields FROM documents WHERE collection = ? AND deleted = 0 ORDER BY seq`,
		collection)
	if err != nil {
		return nil, fmt.Errorf("ListAll: %w", err)
	}
	defer rows.Close()

	docs := []models.Document{}
	for rows.Next() {
		var (
			doc models.Document
			raw string
		)
		if err := rows.Scan(&doc.ID, &raw); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		if doc.Fields, err = decodeFields([]byte(raw)); err != nil {
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
func (r *SQLiteDocumentRepository) Create(ctx context.Context, collection, id string, fields map[string]any) error {
	raw, err := encodeFields(fields)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx,
		`INSERT INTO documents (collection, id, fields, created_at) VALUES (?, ?, ?, ?)`,
		collection, id, string(raw), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

// UpdateFields merges fields into the stored document with json_patch.
func (r *SQLiteDocumentRepository) UpdateFields(ctx context.Context, collection, id string, fields map[string]any) error {
	raw, err := encodeFields(fields)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx,
		`UPDATE documents SET fields = json_patch(fields, ?) WHERE collection = ? AND id = ? AND deleted = 0`,
		string(raw), collection, id)
	if err != nil {
		return fmt.Errorf("UpdateFields: %w", err)
	}
	return expectOne(res)
}

// Delete soft-deletes the document.
func (r *SQLiteDocumentRepository) Delete(ctx context.Context, collection, id string) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE documents SET deleted = 1, deleted_at = ? WHERE collection = ? AND id = ? AND deleted = 0`,
		time.Now().Unix(), collection, id)
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	return expectOne(res)
}

// Purge removes documents soft-deleted before the cutoff.
func (r *SQLiteDocumentRepository) Purge(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.DB.ExecContext(ctx,
		`DELETE FROM documents WHERE deleted = 1 AND deleted_at < ?`, before.Unix())
	if err != nil {
		return 0, fmt.Errorf("Purge: %w", err)
	}
	return res.RowsAffected()
}
