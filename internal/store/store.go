package store

import (
	"github.com/dewvow/housepulse/internal/models"
)

// RecordStore is the persistence façade for canonical suburb records. The
// collection is keyed by record id; List imposes no ordering guarantee.
// Implementations are single-writer-at-a-time: a save fully overwrites the
// stored state, and concurrent saves from multiple processes risk lost
// updates.
type RecordStore interface {
	// List returns every stored record.
	List() ([]models.SuburbRecord, error)

	// Get returns the record with the given id, if present.
	Get(id string) (models.SuburbRecord, bool, error)

	// Upsert matches by id and replaces the existing record or appends a
	// new one. The stored DateAdded always survives a replace; it is set
	// once at creation and never overwritten.
	Upsert(record models.SuburbRecord) error

	// Remove deletes the record with the given id. Removing an unknown id
	// is not an error.
	Remove(id string) error

	// Clear deletes every record.
	Clear() error
}
