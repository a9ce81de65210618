// Package memory keeps all state in process. It backs the memory storage
// driver and the core package tests.
package memory

import (
	"sync"

	"multicurrency/internal/domain"

	"github.com/google/uuid"
)

// DB is shared by the repositories so a single lock covers currency rates and
// their history.
type DB struct {
	mu         sync.RWMutex
	currencies map[string]*record
	history    []domain.HistoryEntry
	nextID     int64
	payments   map[uuid.UUID]domain.CurrencyPayment
	settings   *domain.Settings
}

type record struct {
	currency domain.Currency
	deleted  bool
}

func New() *DB {
	return &DB{
		currencies: make(map[string]*record),
		payments:   make(map[uuid.UUID]domain.CurrencyPayment),
	}
}

// append must be called with mu held for writing.
func (db *DB) append(e domain.HistoryEntry) domain.HistoryEntry {
	db.nextID++
	e.ID = db.nextID
	e.RecordedAt = e.RecordedAt.UTC()
	db.history = append(db.history, e)
	return e
}

// lastAccepted must be called with mu held.
func (db *DB) lastAccepted(code string) *domain.HistoryEntry {
	for i := len(db.history) - 1; i >= 0; i-- {
		e := db.history[i]
		if e.Currency == code && !e.Failed() {
			return &e
		}
	}
	return nil
}

func (db *DB) active(code string) (*record, bool) {
	r, ok := db.currencies[code]
	if !ok || r.deleted {
		return nil, false
	}
	return r, true
}
