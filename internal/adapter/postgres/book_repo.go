package postgres

import (
	"context"
	"database/sql"
	"errors"

	"bookstore/internal/domain"

	"github.com/lib/pq"
)

// BookRepo implements the catalog repository on DB.
type BookRepo struct {
	db *DB
}

// NewBookRepo wraps a DB as a BookRepository.
func NewBookRepo(db *DB) *BookRepo {
	return &BookRepo{db: db}
}

const bookColumns = `id, title, author, genres, description, published_year, price, cover_image, created_at`

func scanBook(row interface{ Scan(...any) error }) (domain.Book, error) {
	var b domain.Book
	err := row.Scan(&b.ID, &b.Title, &b.Author, pq.Array(&b.Genres), &b.Description,
		&b.PublishedYear, &b.Price, &b.CoverImage, &b.CreatedAt)
	return b, err
}

// List returns a page of the catalog, newest first.
func (r *BookRepo) List(ctx context.Context, limit, offset int) ([]domain.Book, error) {
	rows, err := r.db.sql.QueryContext(ctx,
		`SELECT `+bookColumns+` FROM books ORDER BY created_at DESC, id LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Book, 0, limit)
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// Get retrieves one book, or nil when it does not exist.
func (r *BookRepo) Get(ctx context.Context, id string) (*domain.Book, error) {
	row := r.db.sql.QueryRowContext(ctx, `SELECT `+bookColumns+` FROM books WHERE id = $1`, id)
	b, err := scanBook(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// Create inserts a catalog entry.
func (r *BookRepo) Create(ctx context.Context, book domain.Book) error {
	_, err := r.db.sql.ExecContext(ctx,
		`INSERT INTO books (`+bookColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		book.ID, book.Title, book.Author, pq.Array(book.Genres), book.Description,
		book.PublishedYear, book.Price, book.CoverImage, book.CreatedAt.UTC(),
	)
	return err
}

// Update replaces a catalog entry.
func (r *BookRepo) Update(ctx context.Context, book domain.Book) error {
	_, err := r.db.sql.ExecContext(ctx,
		`UPDATE books SET title = $2, author = $3, genres = $4, description = $5,
			published_year = $6, price = $7, cover_image = $8 WHERE id = $1`,
		book.ID, book.Title, book.Author, pq.Array(book.Genres), book.Description,
		book.PublishedYear, book.Price, book.CoverImage,
	)
	return err
}

// Delete removes a catalog entry.
func (r *BookRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.sql.ExecContext(ctx, `DELETE FROM books WHERE id = $1`, id)
	return err
}
