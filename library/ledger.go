package library

import (
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"strings"
	"time"
)

// MemberDirectory answers whether a member is registered. *Roster satisfies it.
type MemberDirectory interface {
	Exists(name string) bool
}

// Ledger owns the loan transactions and keeps the catalog's available counts
// in step with them.
type Ledger struct {
	transactions []Transaction
	store        TransactionStore
	catalog      *Catalog
	members      MemberDirectory
	policy       FinePolicy
	now          func() time.Time
	log          *slog.Logger
}

// Receipt is the result of returning a book.
type Receipt struct {
	Transaction Transaction
	// LateDays is zero for an on-time return.
	LateDays int
	Fine     int
}

// NewLedger loads the ledger from store.
func NewLedger(store TransactionStore, catalog *Catalog, members MemberDirectory, policy FinePolicy, now func() time.Time, log *slog.Logger) (*Ledger, error) {
	txns, err := store.LoadTransactions()
	if err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}
	log.Debug("ledger loaded", "transactions", len(txns))
	return &Ledger{
		transactions: txns,
		store:        store,
		catalog:      catalog,
		members:      members,
		policy:       policy,
		now:          now,
		log:          log,
	}, nil
}

func (l *Ledger) today() time.Time { return CalendarDate(l.now()) }

func (l *Ledger) save() error {
	if err := l.store.SaveTransactions(l.transactions); err != nil {
		l.log.Warn("save transactions failed", "error", err)
		return fmt.Errorf("%w: save transactions: %v", ErrPersistence, err)
	}
	return nil
}

// Policy returns the fine policy applied on return.
func (l *Ledger) Policy() FinePolicy { return l.policy }

// Issue lends one copy of bookID to member and opens a transaction dated
// today. A member may hold several open loans, including of the same title.
func (l *Ledger) Issue(bookID int, member string) (Transaction, error) {
	b, err := l.catalog.Get(bookID)
	if err != nil {
		return Transaction{}, err
	}
	if b.AvailableCopies <= 0 {
		return Transaction{}, fmt.Errorf("%w: book %d", ErrNoCopiesAvailable, bookID)
	}
	if !l.members.Exists(member) {
		return Transaction{}, fmt.Errorf("%w: %q", ErrUnknownMember, member)
	}

	t := Transaction{BookID: bookID, MemberName: member, IssueDate: l.today()}
	catErr := l.catalog.checkout(bookID)
	l.transactions = append(l.transactions, t)
	l.log.Info("book issued", "book", bookID, "member", member, "date", FormatDate(t.IssueDate))
	return t, errors.Join(catErr, l.save())
}

// Return closes the earliest open loan of bookID held by member and reports
// any fine due.
func (l *Ledger) Return(bookID int, member string) (Receipt, error) {
	if _, err := l.catalog.Get(bookID); err != nil {
		return Receipt{}, err
	}
	i := l.firstOpen(bookID, member)
	if i < 0 {
		return Receipt{}, fmt.Errorf("%w: book %d, member %q", ErrNoOpenLoan, bookID, member)
	}

	l.transactions[i].ReturnDate = l.today()
	t := l.transactions[i]
	catErr := l.catalog.checkin(bookID)

	late, fine := l.policy.Assess(t.IssueDate, t.ReturnDate)
	l.log.Info("book returned", "book", bookID, "member", t.MemberName,
		"date", FormatDate(t.ReturnDate), "late_days", late, "fine", fine)
	return Receipt{Transaction: t, LateDays: late, Fine: fine}, errors.Join(catErr, l.save())
}

func (l *Ledger) firstOpen(bookID int, member string) int {
	for i, t := range l.transactions {
		if t.BookID == bookID && t.Open() && strings.EqualFold(t.MemberName, member) {
			return i
		}
	}
	return -1
}

// ListTransactions yields every transaction in insertion order.
func (l *Ledger) ListTransactions() iter.Seq[Transaction] {
	return func(yield func(Transaction) bool) {
		for _, t := range l.transactions {
			if !yield(t) {
				return
			}
		}
	}
}

// ListOpenFor yields the open loans held by member in insertion order.
func (l *Ledger) ListOpenFor(member string) iter.Seq[Transaction] {
	return func(yield func(Transaction) bool) {
		for _, t := range l.transactions {
			if t.Open() && strings.EqualFold(t.MemberName, member) && !yield(t) {
				return
			}
		}
	}
}

// AccruedFine is the fine a loan would incur if it were returned today.
func (l *Ledger) AccruedFine(t Transaction) (lateDays, fine int) {
	end := t.ReturnDate
	if t.Open() {
		end = l.today()
	}
	return l.policy.Assess(t.IssueDate, end)
}
