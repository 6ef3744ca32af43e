package library

import (
	"fmt"
	"log/slog"
	"slices"
	"time"
)

// LibraryManager is a thin facade over the store and the three engine
// components, keeping CLI code simple.
type LibraryManager struct {
	store   Store
	roster  *Roster
	catalog *Catalog
	ledger  *Ledger

	log    *slog.Logger
	now    func() time.Time
	policy FinePolicy
}

// Option configures a LibraryManager.
type Option func(*LibraryManager) error

// WithLogger sets the logger passed to every component.
func WithLogger(log *slog.Logger) Option {
	return func(m *LibraryManager) error {
		if log == nil {
			return fmt.Errorf("nil logger")
		}
		m.log = log
		return nil
	}
}

// WithClock overrides the source of "today" for issue and return dates.
func WithClock(now func() time.Time) Option {
	return func(m *LibraryManager) error {
		if now == nil {
			return fmt.Errorf("nil clock")
		}
		m.now = now
		return nil
	}
}

// WithFinePolicy replaces DefaultFinePolicy.
func WithFinePolicy(p FinePolicy) Option {
	return func(m *LibraryManager) error {
		if p.AllowedDays < 0 || p.RatePerDay < 0 {
			return fmt.Errorf("fine policy must not be negative: %+v", p)
		}
		m.policy = p
		return nil
	}
}

// NewLibraryManager loads members, books and transactions from store.
func NewLibraryManager(store Store, opts ...Option) (*LibraryManager, error) {
	m := &LibraryManager{
		store:  store,
		log:    slog.Default(),
		now:    time.Now,
		policy: DefaultFinePolicy,
	}
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}

	var err error
	if m.roster, err = NewRoster(store, m.log.With("component", "roster")); err != nil {
		return nil, err
	}
	if m.catalog, err = NewCatalog(store, m.log.With("component", "catalog")); err != nil {
		return nil, err
	}
	m.ledger, err = NewLedger(store, m.catalog, m.roster, m.policy, m.now, m.log.With("component", "ledger"))
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Close closes the underlying store.
func (m *LibraryManager) Close() error { return m.store.Close() }

func (m *LibraryManager) Roster() *Roster   { return m.roster }
func (m *LibraryManager) Catalog() *Catalog { return m.catalog }
func (m *LibraryManager) Ledger() *Ledger   { return m.ledger }

// Today returns the current calendar date as the engine sees it.
func (m *LibraryManager) Today() time.Time { return CalendarDate(m.now()) }

// ------------------ Audit ------------------

// Discrepancy is one violated invariant found by Audit.
type Discrepancy struct {
	BookID  int
	Problem string
}

func (d Discrepancy) String() string { return fmt.Sprintf("book %d: %s", d.BookID, d.Problem) }

// Audit re-checks the copy-count invariants against the ledger: every book's
// counts are in range and its issued copies equal its open loans.
func (m *LibraryManager) Audit() []Discrepancy {
	open := make(map[int]int)
	for t := range m.ledger.ListTransactions() {
		if t.Open() {
			open[t.BookID]++
		}
	}

	var out []Discrepancy
	seen := make(map[int]bool)
	for b := range m.catalog.List() {
		if seen[b.ID] {
			out = append(out, Discrepancy{b.ID, "duplicate id in catalog"})
		}
		seen[b.ID] = true
		if b.AvailableCopies < 0 || b.AvailableCopies > b.TotalCopies {
			out = append(out, Discrepancy{b.ID, fmt.Sprintf("available %d outside 0..%d", b.AvailableCopies, b.TotalCopies)})
		}
		if b.Issued() != open[b.ID] {
			out = append(out, Discrepancy{b.ID, fmt.Sprintf("%d copies issued but %d open loans", b.Issued(), open[b.ID])})
		}
	}
	var missing []int
	for id := range open {
		if !seen[id] {
			missing = append(missing, id)
		}
	}
	slices.Sort(missing)
	for _, id := range missing {
		out = append(out, Discrepancy{id, fmt.Sprintf("%d open loans for a book not in the catalog", open[id])})
	}
	if len(out) > 0 {
		m.log.Warn("audit found discrepancies", "count", len(out))
	}
	return out
}
