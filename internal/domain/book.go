package domain

import (
	"context"
	"time"
)

// Book is a catalog entry. Cover upload and search/filter live outside this
// core; CoverImage stores whatever the upload pipeline produced.
type Book struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Author        string    `json:"author"`
	Genres        []string  `json:"genres"`
	Description   string    `json:"description"`
	PublishedYear string    `json:"publishedYear"`
	Price         float64   `json:"price"`
	CoverImage    string    `json:"coverImage,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// BookRepository is the port for catalog persistence.
type BookRepository interface {
	List(ctx context.Context, limit, offset int) ([]Book, error)
	Get(ctx context.Context, id string) (*Book, error)
	Create(ctx context.Context, book Book) error
	Update(ctx context.Context, book Book) error
	Delete(ctx context.Context, id string) error
}
