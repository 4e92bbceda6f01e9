package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrBookNotFound  = errors.New("book not found")
	ErrOrderNotFound = errors.New("order not found")
	ErrUserExists    = errors.New("username already taken")
	ErrUserNotFound  = errors.New("user not found")
)

// LedgerCode identifies why a ledger transaction was rejected.
type LedgerCode string

const (
	LedgerEmptyRequest  LedgerCode = "empty_request"
	LedgerInvalidItemID LedgerCode = "invalid_item_id"
	LedgerNotOwned      LedgerCode = "not_owned"
	LedgerAlreadyOwned  LedgerCode = "already_owned"
)

// LedgerError is a caller-correctable rejection of a proposed transaction.
// ItemIDs lists the offending ids, when the rejection is per-item.
type LedgerError struct {
	Code    LedgerCode
	ItemIDs []string
}

func (e *LedgerError) Error() string {
	if len(e.ItemIDs) == 0 {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Code, strings.Join(e.ItemIDs, ", "))
}

// AsLedgerError unwraps err into a LedgerError, or returns nil.
func AsLedgerError(err error) *LedgerError {
	var le *LedgerError
	if errors.As(err, &le) {
		return le
	}
	return nil
}
