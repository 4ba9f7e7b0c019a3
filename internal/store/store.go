// Package store is the persistence layer: whole-collection load/save with
// no partial updates. The default backend is one JSON file per collection;
// a gorm-backed variant keeps the same semantics in sqlite or postgres.
//
// There is no cross-process locking. Two concurrent writers to the same
// collection race and the later save wins.
package store

// Collection names used by the service.
const (
	CollectionUsers    = "users"
	CollectionContacts = "contacts"
	CollectionMessages = "messages"
)

// Store reads and writes whole collections. Load fills out from the stored
// value, leaving it untouched (zero) when the collection does not exist
// yet. Save replaces the stored value entirely.
type Store interface {
	Load(collection string, out interface{}) error
	Save(collection string, value interface{}) error
}
