package library

import "slices"

// MemoryStore keeps saved collections in process memory. Nothing survives the
// process; it backs demo sessions and tests.
type MemoryStore struct {
	members      []Member
	books        []Book
	transactions []Transaction
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (s *MemoryStore) LoadMembers() ([]Member, error) { return slices.Clone(s.members), nil }
func (s *MemoryStore) LoadBooks() ([]Book, error)     { return slices.Clone(s.books), nil }

func (s *MemoryStore) LoadTransactions() ([]Transaction, error) {
	return slices.Clone(s.transactions), nil
}

func (s *MemoryStore) SaveMembers(m []Member) error { s.members = slices.Clone(m); return nil }
func (s *MemoryStore) SaveBooks(b []Book) error     { s.books = slices.Clone(b); return nil }

func (s *MemoryStore) SaveTransactions(t []Transaction) error {
	s.transactions = slices.Clone(t)
	return nil
}

func (s *MemoryStore) Close() error { return nil }
