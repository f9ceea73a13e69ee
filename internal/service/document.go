// Package service provides the document store business logic, delegating
// persistence to a DocumentRepository.
package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/atinyakov/GophRoster/internal/models"
	"github.com/atinyakov/GophRoster/internal/repository"
	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when the addressed document does not exist.
	ErrNotFound = errors.New("document not found")
	// ErrInvalidCollection is returned for malformed collection names.
	ErrInvalidCollection = errors.New("invalid collection name")
	// ErrInvalidID is returned for an empty document id.
	ErrInvalidID = errors.New("invalid document id")
)

var collectionName = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// DocumentRepository defines the persistence operations needed by the
// DocumentService.
type DocumentRepository interface {
	// ListAll returns all live documents of a collection in creation order.
	ListAll(ctx context.Context, collection string) ([]models.Document, error)
	// Create stores a new document under id.
	Create(ctx context.Context, collection, id string, fields map[string]any) error
	// UpdateFields merges fields into an existing document.
	// Returns repository.ErrNotFound if the document is absent.
	UpdateFields(ctx context.Context, collection, id string, fields map[string]any) error
	// Delete removes a document. Returns repository.ErrNotFound if absent.
	Delete(ctx context.Context, collection, id string) error
}

// DocumentService implements the document store operations.
type DocumentService struct {
	repo  DocumentRepository
	newID func() string
}

// NewDocumentService constructs a DocumentService that assigns random UUIDs
// to new documents.
func NewDocumentService(repo DocumentRepository) *DocumentService {
	return &DocumentService{repo: repo, newID: uuid.NewString}
}

// ListAll returns every document of the collection.
func (s *DocumentService) ListAll(ctx context.Context, collection string) ([]models.Document, error) {
	if err := validateCollection(collection); err != nil {
		return nil, err
	}
	return s.repo.ListAll(ctx, collection)
}

// Create stores fields as a new document and returns its generated id.
func (s *DocumentService) Create(ctx context.Context, collection string, fields map[string]any) (string, error) {
	if err := validateCollection(collection); err != nil {
		return "", err
	}
	id := s.newID()
	if err := s.repo.Create(ctx, collection, id, fields); err != nil {
		return "", err
	}
	return id, nil
}

// UpdateFields applies a partial update to the document with the given id.
func (s *DocumentService) UpdateFields(ctx context.Context, collection, id string, fields map[string]any) error {
	if err := validate(collection, id); err != nil {
		return err
	}
	return mapNotFound(s.repo.UpdateFields(ctx, collection, id, fields))
}

// Delete removes the document with the given id.
func (s *DocumentService) Delete(ctx context.Context, collection, id string) error {
	if err := validate(collection, id); err != nil {
		return err
	}
	return mapNotFound(s.repo.Delete(ctx, collection, id))
}

func validate(collection, id string) error {
	if err := validateCollection(collection); err != nil {
		return err
	}
	if id == "" {
		return ErrInvalidID
	}
	return nil
}

func validateCollection(collection string) error {
	if !collectionName.MatchString(collection) {
		return fmt.Errorf("%w: %q", ErrInvalidCollection, collection)
	}
	return nil
}

func mapNotFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
