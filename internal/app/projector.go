package app

import (
	"context"

	"bookstore/internal/domain"
)

// OwnershipProjector derives a subject's currently owned items from the
// ledger. Ownership is never stored: every call re-walks the subject's
// referenced events and folds them into a net count per item. Cost is
// O(events × items per event) per call.
type OwnershipProjector struct {
	creds  domain.CredentialRepository
	events domain.EventRepository
}

// NewOwnershipProjector creates a projector over the given stores.
func NewOwnershipProjector(creds domain.CredentialRepository, events domain.EventRepository) *OwnershipProjector {
	return &OwnershipProjector{creds: creds, events: events}
}

// OwnedItems returns the set of item ids the subject currently holds:
// +1 per item in an acquire event, -1 per release, keeping items whose net
// count is positive. References to events that no longer exist are skipped,
// not treated as fatal.
func (p *OwnershipProjector) OwnedItems(ctx context.Context, subject string) (map[string]bool, error) {
	cred, err := p.creds.Get(ctx, subject)
	if err != nil {
		return nil, err
	}
	owned := make(map[string]bool)
	if cred == nil || len(cred.EventRefs) == 0 {
		return owned, nil
	}

	counts := make(map[string]int)
	for _, ref := range cred.EventRefs {
		event, err := p.events.Get(ctx, ref)
		if err != nil {
			return nil, err
		}
		if event == nil {
			continue
		}
		delta := 1
		if event.Kind == domain.OrderRelease {
			delta = -1
		}
		for _, itemID := range event.ItemIDs {
			counts[itemID] += delta
		}
	}

	for itemID, n := range counts {
		if n > 0 {
			owned[itemID] = true
		}
	}
	return owned, nil
}
