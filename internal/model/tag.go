package model

// Tag is a row of the `tags` table.  Names are not guaranteed to be
// unique by the store.
type Tag struct {
	ID   uint64 // tags.id
	Name string // tags.name
}
