package lunar

import "sync/atomic"

// Store holds the live reference table. Readers always see a complete,
// validated snapshot; updates replace the whole table and never mutate one
// in place.
type Store struct {
	current atomic.Pointer[Table]
}

// NewStore returns a Store serving t. t must not be nil.
func NewStore(t *Table) *Store {
	s := &Store{}
	s.current.Store(t)
	return s
}

// Table returns the current snapshot.
func (s *Store) Table() *Table {
	return s.current.Load()
}

// Swap installs t as the current snapshot and returns the previous one.
// A nil t is ignored.
func (s *Store) Swap(t *Table) *Table {
	if t == nil {
		return s.current.Load()
	}
	return s.current.Swap(t)
}
