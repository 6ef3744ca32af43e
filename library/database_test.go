package library

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tempDB(t *testing.T) (*Database, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "test.db")
	db, err := NewDatabase(path)
	if err != nil {
		t.Fatalf("new db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, path
}

func TestDatabaseEmpty(t *testing.T) {
	db, _ := tempDB(t)

	members, err := db.LoadMembers()
	require.NoError(t, err)
	assert.Empty(t, members)
	books, err := db.LoadBooks()
	require.NoError(t, err)
	assert.Empty(t, books)
	txns, err := db.LoadTransactions()
	require.NoError(t, err)
	assert.Empty(t, txns)
}

func TestDatabaseUnreadableSchemaVersion(t *testing.T) {
	db, path := tempDB(t)
	_, err := db.db.Exec(`UPDATE meta SET value='v1' WHERE key='schema_version'`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	_, err = NewDatabase(path)
	assert.ErrorContains(t, err, "read schema version")
}

func TestDatabaseRoundTripAcrossReopen(t *testing.T) {
	db, path := tempDB(t)

	members := []Member{
		{Name: "zed", Password: "pw", Role: RoleMember},
		{Name: "Alice", Password: "Secret", Role: RoleLibrarian},
	}
	books := []Book{
		{ID: 9, Title: "Dune", Author: "Frank Herbert", TotalCopies: 3, AvailableCopies: 2},
		{ID: 2, Title: "Emma", Author: "Jane Austen", TotalCopies: 1, AvailableCopies: 1},
	}
	txns := []Transaction{
		{BookID: 9, MemberName: "zed", IssueDate: date(t, "2024-01-01"), ReturnDate: date(t, "2024-01-03")},
		{BookID: 9, MemberName: "Alice", IssueDate: date(t, "2024-01-02")},
	}
	require.NoError(t, db.SaveMembers(members))
	require.NoError(t, db.SaveBooks(books))
	require.NoError(t, db.SaveTransactions(txns))
	require.NoError(t, db.Close())

	again, err := NewDatabase(path)
	require.NoError(t, err)
	defer again.Close()

	gotMembers, err := again.LoadMembers()
	require.NoError(t, err)
	assert.Equal(t, members, gotMembers)
	gotBooks, err := again.LoadBooks()
	require.NoError(t, err)
	assert.Equal(t, books, gotBooks)
	gotTxns, err := again.LoadTransactions()
	require.NoError(t, err)
	assert.Equal(t, txns, gotTxns)
}

func TestDatabaseSaveReplacesRows(t *testing.T) {
	db, _ := tempDB(t)

	require.NoError(t, db.SaveBooks([]Book{
		{ID: 1, Title: "A", Author: "x", TotalCopies: 1, AvailableCopies: 1},
		{ID: 2, Title: "B", Author: "y", TotalCopies: 1, AvailableCopies: 1},
	}))
	require.NoError(t, db.SaveBooks([]Book{
		{ID: 2, Title: "B", Author: "y", TotalCopies: 4, AvailableCopies: 0},
	}))

	books, err := db.LoadBooks()
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, 4, books[0].TotalCopies)

	require.NoError(t, db.SaveBooks(nil))
	books, err = db.LoadBooks()
	require.NoError(t, err)
	assert.Empty(t, books)
}

func TestDatabaseBatchedInsertKeepsOrder(t *testing.T) {
	db, _ := tempDB(t)

	var txns []Transaction
	for i := range 3*insertBatch + 7 {
		txns = append(txns, Transaction{
			BookID:     (i * 37) % 11,
			MemberName: fmt.Sprintf("m%03d", i),
			IssueDate:  date(t, "2024-01-01"),
		})
	}
	require.NoError(t, db.SaveTransactions(txns))

	got, err := db.LoadTransactions()
	require.NoError(t, err)
	assert.Equal(t, txns, got)
}

func TestDatabaseDuplicateBookIDFailsAtomically(t *testing.T) {
	db, _ := tempDB(t)
	keep := []Book{{ID: 1, Title: "A", Author: "x", TotalCopies: 1, AvailableCopies: 1}}
	require.NoError(t, db.SaveBooks(keep))

	err := db.SaveBooks([]Book{
		{ID: 5, Title: "B", Author: "y", TotalCopies: 1, AvailableCopies: 1},
		{ID: 5, Title: "C", Author: "z", TotalCopies: 1, AvailableCopies: 1},
	})
	require.Error(t, err)

	books, err := db.LoadBooks()
	require.NoError(t, err)
	assert.Equal(t, keep, books)
}

func TestDatabaseCorruptRows(t *testing.T) {
	db, _ := tempDB(t)

	_, err := db.db.Exec(`INSERT INTO members(seq, name, password, role) VALUES (1, 'a', 'b', 'wizard')`)
	require.NoError(t, err)
	_, err = db.LoadMembers()
	assert.ErrorIs(t, err, ErrCorruptStore)

	_, err = db.db.Exec(`INSERT INTO books(seq, id, title, author, total_copies, available_copies) VALUES (1, 1, 't', 'a', 1, 3)`)
	require.NoError(t, err)
	_, err = db.LoadBooks()
	assert.ErrorIs(t, err, ErrCorruptStore)

	_, err = db.db.Exec(`INSERT INTO transactions(seq, book_id, member_name, issue_date) VALUES (1, 1, 'a', 'soon')`)
	require.NoError(t, err)
	_, err = db.LoadTransactions()
	assert.ErrorIs(t, err, ErrCorruptStore)
}

func TestManagerOverDatabase(t *testing.T) {
	clock := newTestClock("2024-01-01")
	db, path := tempDB(t)
	mgr, err := NewLibraryManager(db, WithLogger(discardLogger()), WithClock(clock.Now))
	require.NoError(t, err)
	_, err = mgr.Roster().Register("alice", "pw", "member")
	require.NoError(t, err)
	_, err = mgr.Catalog().AddBook(1, "Dune", "Frank Herbert", 2)
	require.NoError(t, err)
	_, err = mgr.Ledger().Issue(1, "alice")
	require.NoError(t, err)
	clock.Advance(20)
	_, err = mgr.Ledger().Return(1, "alice")
	require.NoError(t, err)
	require.NoError(t, mgr.Close())

	reopened, err := NewDatabase(path)
	require.NoError(t, err)
	again := newManager(t, reopened, clock)
	txns := again.Report().Transactions
	require.Len(t, txns, 1)
	assert.Equal(t, "2024-01-21", txns[0].ReturnDate)
	assert.Equal(t, 60, txns[0].Fine)
	requireConsistent(t, again)
}
