package app

import (
	"context"
	"errors"
	"sync"

	"bookstore/internal/clock"
	"bookstore/internal/domain"

	"github.com/google/uuid"
)

// OrderService is the write side of the ownership ledger. It validates a
// proposed transaction against the current projection, then appends an
// immutable event and records a reference to it on the subject's credential.
//
// The two writes share no transaction: a crash in between leaves an orphan
// event that is never referenced and therefore never observed. Validation
// and the write pair are serialized per subject, so two racing conflicting
// transactions for the same subject cannot both pass validation.
type OrderService struct {
	creds     domain.CredentialRepository
	events    domain.EventRepository
	projector *OwnershipProjector
	clock     clock.Clock

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewOrderService creates an OrderService over the given stores.
func NewOrderService(creds domain.CredentialRepository, events domain.EventRepository, projector *OwnershipProjector, clk clock.Clock) *OrderService {
	return &OrderService{
		creds:     creds,
		events:    events,
		projector: projector,
		clock:     clk,
		locks:     make(map[string]*sync.Mutex),
	}
}

// subjectLock returns the mutex serializing writes for subject.
func (s *OrderService) subjectLock(subject string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[subject]
	if !ok {
		l = &sync.Mutex{}
		s.locks[subject] = l
	}
	return l
}

// RecordTransaction validates and appends one acquire or release event for
// the subject. Item ids are deduplicated; either the whole set is recorded
// or none of it. Business rejections come back as *domain.LedgerError with
// the offending ids.
func (s *OrderService) RecordTransaction(ctx context.Context, subject string, kind domain.OrderKind, itemIDs []string) (string, error) {
	unique := dedupe(itemIDs)
	if len(unique) == 0 {
		return "", &domain.LedgerError{Code: domain.LedgerEmptyRequest}
	}

	var malformed []string
	for _, id := range unique {
		if _, err := uuid.Parse(id); err != nil {
			malformed = append(malformed, id)
		}
	}
	if len(malformed) > 0 {
		return "", &domain.LedgerError{Code: domain.LedgerInvalidItemID, ItemIDs: malformed}
	}

	lock := s.subjectLock(subject)
	lock.Lock()
	defer lock.Unlock()

	owned, err := s.projector.OwnedItems(ctx, subject)
	if err != nil {
		return "", err
	}

	switch kind {
	case domain.OrderRelease:
		var notOwned []string
		for _, id := range unique {
			if !owned[id] {
				notOwned = append(notOwned, id)
			}
		}
		if len(notOwned) > 0 {
			return "", &domain.LedgerError{Code: domain.LedgerNotOwned, ItemIDs: notOwned}
		}
	case domain.OrderAcquire:
		var alreadyOwned []string
		for _, id := range unique {
			if owned[id] {
				alreadyOwned = append(alreadyOwned, id)
			}
		}
		if len(alreadyOwned) > 0 {
			return "", &domain.LedgerError{Code: domain.LedgerAlreadyOwned, ItemIDs: alreadyOwned}
		}
	default:
		return "", errors.New("unknown transaction kind")
	}

	event := domain.OrderEvent{
		ID:        uuid.NewString(),
		Kind:      kind,
		ItemIDs:   unique,
		CreatedAt: s.clock.Now(),
	}
	if err := s.events.Create(ctx, event); err != nil {
		return "", err
	}
	if err := s.creds.AppendEventRef(ctx, subject, event.ID); err != nil {
		// The event is now an orphan: harmless, since nothing references it.
		return "", err
	}
	return event.ID, nil
}

// Orders returns the subject's event references, oldest first.
func (s *OrderService) Orders(ctx context.Context, subject string) ([]string, error) {
	cred, err := s.creds.Get(ctx, subject)
	if err != nil {
		return nil, err
	}
	if cred == nil {
		return nil, domain.ErrUserNotFound
	}
	return cred.EventRefs, nil
}

// Order returns one event. Admins may read any event; everyone else only
// events they reference, with foreign events reported as not found.
func (s *OrderService) Order(ctx context.Context, subject string, role domain.Role, eventID string) (*domain.OrderEvent, error) {
	if role != domain.RoleAdmin {
		refs, err := s.Orders(ctx, subject)
		if err != nil {
			return nil, err
		}
		found := false
		for _, ref := range refs {
			if ref == eventID {
				found = true
				break
			}
		}
		if !found {
			return nil, domain.ErrOrderNotFound
		}
	}
	event, err := s.events.Get(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, domain.ErrOrderNotFound
	}
	return event, nil
}

// DeleteEvent removes an event and every reference to it. Administrative
// cleanup only; the store performs both removals atomically.
func (s *OrderService) DeleteEvent(ctx context.Context, eventID string) error {
	event, err := s.events.Get(ctx, eventID)
	if err != nil {
		return err
	}
	if event == nil {
		return domain.ErrOrderNotFound
	}
	return s.events.Delete(ctx, eventID)
}

// dedupe preserves first-seen order while dropping repeats and blanks.
func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
