// Package memory implements in-memory repositories for development and testing.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"bookstore/internal/domain"
)

// DB implements every domain repository on in-process maps.
type DB struct {
	mu     sync.Mutex
	creds  map[string]*domain.Credential
	events map[string]domain.OrderEvent
	books  map[string]domain.Book
}

// New creates an empty in-memory database.
func New() *DB {
	return &DB{
		creds:  make(map[string]*domain.Credential),
		events: make(map[string]domain.OrderEvent),
		books:  make(map[string]domain.Book),
	}
}

// Ensure interfaces are met.
var _ domain.CredentialRepository = (*DB)(nil)
var _ domain.EventRepository = (*EventRepo)(nil)
var _ domain.BookRepository = (*BookRepo)(nil)

// --- CredentialRepository ---

// Get returns a copy of the stored credential, or nil when absent.
func (db *DB) Get(ctx context.Context, username string) (*domain.Credential, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	cred, ok := db.creds[username]
	if !ok {
		return nil, nil
	}
	out := *cred
	out.EventRefs = append([]string(nil), cred.EventRefs...)
	if cred.LastLogoutAt != nil {
		t := *cred.LastLogoutAt
		out.LastLogoutAt = &t
	}
	return &out, nil
}

// Create stores a new credential.
func (db *DB) Create(ctx context.Context, cred domain.Credential) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.creds[cred.Username]; ok {
		return domain.ErrUserExists
	}
	stored := cred
	stored.EventRefs = append([]string(nil), cred.EventRefs...)
	db.creds[cred.Username] = &stored
	return nil
}

// SetLastLogoutAt stamps the revocation marker.
func (db *DB) SetLastLogoutAt(ctx context.Context, username string, t time.Time) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	cred, ok := db.creds[username]
	if !ok {
		return domain.ErrUserNotFound
	}
	stamp := t.UTC()
	cred.LastLogoutAt = &stamp
	return nil
}

// AppendEventRef appends an event reference to the subject's list.
func (db *DB) AppendEventRef(ctx context.Context, username, eventID string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	cred, ok := db.creds[username]
	if !ok {
		return domain.ErrUserNotFound
	}
	cred.EventRefs = append(cred.EventRefs, eventID)
	return nil
}

// SetPasswordHash replaces the stored hash.
func (db *DB) SetPasswordHash(ctx context.Context, username, hash string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	cred, ok := db.creds[username]
	if !ok {
		return domain.ErrUserNotFound
	}
	cred.PasswordHash = hash
	return nil
}

// --- EventRepository ---

// CreateEvent stores an immutable order event.
func (db *DB) CreateEvent(ctx context.Context, event domain.OrderEvent) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	stored := event
	stored.ItemIDs = append([]string(nil), event.ItemIDs...)
	db.events[event.ID] = stored
	return nil
}

// GetEvent returns a copy of the stored event, or nil when absent.
func (db *DB) GetEvent(ctx context.Context, id string) (*domain.OrderEvent, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	event, ok := db.events[id]
	if !ok {
		return nil, nil
	}
	out := event
	out.ItemIDs = append([]string(nil), event.ItemIDs...)
	return &out, nil
}

// DeleteEvent removes the event and every subject's reference to it, like
// the cascading foreign key in the postgres adapter.
func (db *DB) DeleteEvent(ctx context.Context, id string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	delete(db.events, id)
	for _, cred := range db.creds {
		refs := cred.EventRefs[:0]
		for _, ref := range cred.EventRefs {
			if ref != id {
				refs = append(refs, ref)
			}
		}
		cred.EventRefs = refs
	}
	return nil
}

// --- BookRepository ---

// ListBooks returns a page of the catalog, newest first.
func (db *DB) ListBooks(ctx context.Context, limit, offset int) ([]domain.Book, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	all := make([]domain.Book, 0, len(db.books))
	for _, b := range db.books {
		all = append(all, b)
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID < all[j].ID
	})

	if offset >= len(all) {
		return []domain.Book{}, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

// GetBook returns a copy of the stored book, or nil when absent.
func (db *DB) GetBook(ctx context.Context, id string) (*domain.Book, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	b, ok := db.books[id]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

// CreateBook stores a catalog entry.
func (db *DB) CreateBook(ctx context.Context, book domain.Book) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.books[book.ID] = book
	return nil
}

// UpdateBook replaces a catalog entry.
func (db *DB) UpdateBook(ctx context.Context, book domain.Book) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.books[book.ID] = book
	return nil
}

// DeleteBook removes a catalog entry.
func (db *DB) DeleteBook(ctx context.Context, id string) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	delete(db.books, id)
	return nil
}

// EventRepo exposes DB's event storage with the EventRepository method set;
// the credential methods already claim the plain Create/Get names on DB.
type EventRepo struct {
	db *DB
}

// NewEventRepo wraps a DB as an EventRepository.
func NewEventRepo(db *DB) *EventRepo {
	return &EventRepo{db: db}
}

func (r *EventRepo) Create(ctx context.Context, event domain.OrderEvent) error {
	return r.db.CreateEvent(ctx, event)
}

func (r *EventRepo) Get(ctx context.Context, id string) (*domain.OrderEvent, error) {
	return r.db.GetEvent(ctx, id)
}

func (r *EventRepo) Delete(ctx context.Context, id string) error {
	return r.db.DeleteEvent(ctx, id)
}

// BookRepo exposes DB's catalog storage with the BookRepository method set.
type BookRepo struct {
	db *DB
}

// NewBookRepo wraps a DB as a BookRepository.
func NewBookRepo(db *DB) *BookRepo {
	return &BookRepo{db: db}
}

func (r *BookRepo) List(ctx context.Context, limit, offset int) ([]domain.Book, error) {
	return r.db.ListBooks(ctx, limit, offset)
}

func (r *BookRepo) Get(ctx context.Context, id string) (*domain.Book, error) {
	return r.db.GetBook(ctx, id)
}

func (r *BookRepo) Create(ctx context.Context, book domain.Book) error {
	return r.db.CreateBook(ctx, book)
}

func (r *BookRepo) Update(ctx context.Context, book domain.Book) error {
	return r.db.UpdateBook(ctx, book)
}

func (r *BookRepo) Delete(ctx context.Context, id string) error {
	return r.db.DeleteBook(ctx, id)
}
