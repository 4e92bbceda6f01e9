package memory

import (
	"context"
	"testing"
	"time"

	"bookstore/internal/domain"
)

func TestCredentialRoundTrip(t *testing.T) {
	db := New()
	ctx := context.Background()

	err := db.Create(ctx, domain.Credential{
		Username:     "alice",
		PasswordHash: "hash",
		Role:         domain.RoleUser,
		CreatedAt:    time.Now(),
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if err := db.Create(ctx, domain.Credential{Username: "alice"}); err != domain.ErrUserExists {
		t.Errorf("expected ErrUserExists, got %v", err)
	}

	cred, err := db.Get(ctx, "alice")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cred == nil || cred.PasswordHash != "hash" {
		t.Fatalf("unexpected credential %+v", cred)
	}

	missing, err := db.Get(ctx, "nobody")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for unknown user, got %+v", missing)
	}
}

func TestGetReturnsCopy(t *testing.T) {
	db := New()
	ctx := context.Background()

	if err := db.Create(ctx, domain.Credential{Username: "alice"}); err != nil {
		t.Fatal(err)
	}
	if err := db.AppendEventRef(ctx, "alice", "e1"); err != nil {
		t.Fatal(err)
	}

	cred, _ := db.Get(ctx, "alice")
	cred.EventRefs[0] = "tampered"
	cred.PasswordHash = "tampered"

	fresh, _ := db.Get(ctx, "alice")
	if fresh.EventRefs[0] != "e1" || fresh.PasswordHash != "" {
		t.Error("mutating a returned credential must not affect the store")
	}
}

func TestAppendEventRefKeepsOrder(t *testing.T) {
	db := New()
	ctx := context.Background()

	if err := db.Create(ctx, domain.Credential{Username: "alice"}); err != nil {
		t.Fatal(err)
	}
	for _, ref := range []string{"e1", "e2", "e3"} {
		if err := db.AppendEventRef(ctx, "alice", ref); err != nil {
			t.Fatal(err)
		}
	}

	cred, _ := db.Get(ctx, "alice")
	if len(cred.EventRefs) != 3 || cred.EventRefs[0] != "e1" || cred.EventRefs[2] != "e3" {
		t.Errorf("expected refs in append order, got %v", cred.EventRefs)
	}

	if err := db.AppendEventRef(ctx, "nobody", "e9"); err != domain.ErrUserNotFound {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

func TestDeleteEventRemovesReferences(t *testing.T) {
	db := New()
	events := NewEventRepo(db)
	ctx := context.Background()

	for _, u := range []string{"alice", "bob"} {
		if err := db.Create(ctx, domain.Credential{Username: u}); err != nil {
			t.Fatal(err)
		}
	}
	if err := events.Create(ctx, domain.OrderEvent{ID: "e1", Kind: domain.OrderAcquire, ItemIDs: []string{"a"}}); err != nil {
		t.Fatal(err)
	}
	for _, u := range []string{"alice", "bob"} {
		if err := db.AppendEventRef(ctx, u, "e1"); err != nil {
			t.Fatal(err)
		}
	}

	if err := events.Delete(ctx, "e1"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	got, err := events.Get(ctx, "e1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got != nil {
		t.Error("expected event gone after delete")
	}
	for _, u := range []string{"alice", "bob"} {
		cred, _ := db.Get(ctx, u)
		if len(cred.EventRefs) != 0 {
			t.Errorf("expected %s's reference removed, got %v", u, cred.EventRefs)
		}
	}
}

func TestListBooksPagination(t *testing.T) {
	db := New()
	books := NewBookRepo(db)
	ctx := context.Background()

	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"b1", "b2", "b3"} {
		err := books.Create(ctx, domain.Book{
			ID:        id,
			Title:     "Book " + id,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	page, err := books.List(ctx, 2, 0)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(page) != 2 || page[0].ID != "b3" || page[1].ID != "b2" {
		t.Errorf("expected newest first [b3 b2], got %v", page)
	}

	page, err = books.List(ctx, 2, 2)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(page) != 1 || page[0].ID != "b1" {
		t.Errorf("expected [b1], got %v", page)
	}

	page, err = books.List(ctx, 2, 10)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(page) != 0 {
		t.Errorf("expected empty page past the end, got %v", page)
	}
}
