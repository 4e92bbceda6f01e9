package app

import (
	"context"
	"testing"
	"time"

	"bookstore/internal/adapter/memory"
	"bookstore/internal/clock"
	"bookstore/internal/domain"
)

func newBookFixture(t *testing.T) (*BookService, clock.Clock) {
	t.Helper()
	clk := clock.NewFixed(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	return NewBookService(memory.NewBookRepo(memory.New()), clk), clk
}

func TestBookService_CreateAndGet(t *testing.T) {
	svc, clk := newBookFixture(t)
	ctx := context.Background()

	id, err := svc.Create(ctx, domain.Book{
		Title:  "The Go Programming Language",
		Author: "Donovan & Kernighan",
		Genres: []string{"programming"},
		Price:  39.99,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if id == "" {
		t.Fatal("expected generated id")
	}

	book, err := svc.Get(ctx, id)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if book.Title != "The Go Programming Language" {
		t.Errorf("unexpected title %q", book.Title)
	}
	if !book.CreatedAt.Equal(clk.Now()) {
		t.Errorf("expected createdAt %v, got %v", clk.Now(), book.CreatedAt)
	}
}

func TestBookService_Create_RequiresTitle(t *testing.T) {
	svc, _ := newBookFixture(t)
	if _, err := svc.Create(context.Background(), domain.Book{Author: "anon"}); err == nil {
		t.Error("expected error for missing title")
	}
}

func TestBookService_Get_NotFound(t *testing.T) {
	svc, _ := newBookFixture(t)
	if _, err := svc.Get(context.Background(), "missing"); err != domain.ErrBookNotFound {
		t.Errorf("expected ErrBookNotFound, got %v", err)
	}
}

func TestBookService_Update_PreservesCreatedAt(t *testing.T) {
	svc, clk := newBookFixture(t)
	ctx := context.Background()

	id, err := svc.Create(ctx, domain.Book{Title: "First Edition"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	err = svc.Update(ctx, domain.Book{
		ID:        id,
		Title:     "Second Edition",
		CreatedAt: clk.Now().Add(time.Hour), // must be ignored
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	book, err := svc.Get(ctx, id)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if book.Title != "Second Edition" {
		t.Errorf("unexpected title %q", book.Title)
	}
	if !book.CreatedAt.Equal(clk.Now()) {
		t.Errorf("update must not change createdAt, got %v", book.CreatedAt)
	}
}

func TestBookService_Update_NotFound(t *testing.T) {
	svc, _ := newBookFixture(t)
	err := svc.Update(context.Background(), domain.Book{ID: "missing", Title: "x"})
	if err != domain.ErrBookNotFound {
		t.Errorf("expected ErrBookNotFound, got %v", err)
	}
}

func TestBookService_Delete(t *testing.T) {
	svc, _ := newBookFixture(t)
	ctx := context.Background()

	id, err := svc.Create(ctx, domain.Book{Title: "Ephemeral"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := svc.Delete(ctx, id); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, err := svc.Get(ctx, id); err != domain.ErrBookNotFound {
		t.Errorf("expected ErrBookNotFound after delete, got %v", err)
	}
	if err := svc.Delete(ctx, id); err != domain.ErrBookNotFound {
		t.Errorf("expected ErrBookNotFound on second delete, got %v", err)
	}
}

func TestBookService_List_ClampsLimit(t *testing.T) {
	svc, _ := newBookFixture(t)
	ctx := context.Background()

	for i := 0; i < 25; i++ {
		if _, err := svc.Create(ctx, domain.Book{Title: "Book"}); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	}

	books, err := svc.List(ctx, 0, 0)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(books) != defaultPageSize {
		t.Errorf("expected default page of %d, got %d", defaultPageSize, len(books))
	}

	books, err = svc.List(ctx, 1000, 0)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(books) != defaultPageSize {
		t.Errorf("out-of-range limit should fall back to %d, got %d", defaultPageSize, len(books))
	}
}
