package app

import (
	"context"
	"errors"

	"bookstore/internal/clock"
	"bookstore/internal/domain"

	"github.com/google/uuid"
)

const defaultPageSize = 20

// BookService encapsulates catalog use cases. Search/filter query building
// and cover upload are handled by outer layers.
type BookService struct {
	repo  domain.BookRepository
	clock clock.Clock
}

// NewBookService creates a BookService backed by the given repository.
func NewBookService(repo domain.BookRepository, clk clock.Clock) *BookService {
	return &BookService{repo: repo, clock: clk}
}

// List returns a page of the catalog.
func (s *BookService) List(ctx context.Context, limit, offset int) ([]domain.Book, error) {
	if limit <= 0 || limit > 100 {
		limit = defaultPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, limit, offset)
}

// Get returns one catalog entry.
func (s *BookService) Get(ctx context.Context, id string) (*domain.Book, error) {
	book, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if book == nil {
		return nil, domain.ErrBookNotFound
	}
	return book, nil
}

// Create adds a catalog entry and returns its generated id.
func (s *BookService) Create(ctx context.Context, book domain.Book) (string, error) {
	if book.Title == "" {
		return "", errors.New("title is required")
	}
	book.ID = uuid.NewString()
	book.CreatedAt = s.clock.Now()
	if err := s.repo.Create(ctx, book); err != nil {
		return "", err
	}
	return book.ID, nil
}

// Update replaces a catalog entry.
func (s *BookService) Update(ctx context.Context, book domain.Book) error {
	if book.Title == "" {
		return errors.New("title is required")
	}
	existing, err := s.repo.Get(ctx, book.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		return domain.ErrBookNotFound
	}
	book.CreatedAt = existing.CreatedAt
	return s.repo.Update(ctx, book)
}

// Delete removes a catalog entry.
func (s *BookService) Delete(ctx context.Context, id string) error {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return domain.ErrBookNotFound
	}
	return s.repo.Delete(ctx, id)
}
