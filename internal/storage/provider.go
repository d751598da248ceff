// Package storage defines the card library file-system abstraction.
package storage

import "github.com/starford/cardsmith/internal/models"

// Ext is the file extension of card records.
const Ext = ".json"

// Provider is the interface for card record files. Records are addressed by
// card id; the provider maps ids to files.
type Provider interface {
	// List returns metadata for every card record in the library.
	List() ([]models.CardMetadata, error)
	// Read returns the raw record of card id.
	Read(id string) ([]byte, error)
	// Write atomically replaces the record of card id.
	Write(id string, content []byte) error
	// Delete removes the record of card id.
	Delete(id string) error
	// Exists reports whether a record for id is present.
	Exists(id string) (bool, error)
}
