// Package journal records committed ledger operations.
package journal

import "presaleLedger/internal/model"

// Sink defines a destination for ledger events.
type Sink interface {
	PutEvents(events []model.LedgerEvent) error
}

// Discard drops every event.
type Discard struct{}

func (Discard) PutEvents([]model.LedgerEvent) error { return nil }
