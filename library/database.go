package library

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

const (
	dialectSQLite = "sqlite3"

	tableMembers      = "members"
	tableBooks        = "books"
	tableTransactions = "transactions"

	colSeq = "seq"

	// insertBatch keeps multi-row inserts well below SQLite's bound
	// parameter limit.
	insertBatch = 100
)

// Database is a Store backed by a SQLite file. Each table carries a seq
// column holding the insertion order, and every save rewrites the table in a
// single SQL transaction.
type Database struct {
	db *sqlx.DB
}

// NewDatabase opens (or creates) the SQLite database at dbPath and applies
// schema migrations.
func NewDatabase(dbPath string) (*Database, error) {
	// Ensure directory exists so first-run succeeds.
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000", dbPath)
	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One connection: the session is single-threaded and this keeps every
	// statement on the same SQLite handle.
	db.SetMaxOpenConns(1)

	if err := applyMigrations(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Database{db: db}, nil
}

// Close closes the DB.
func (d *Database) Close() error { return d.db.Close() }

// ---------------------------------------------------------------------------
// Schema migration
// ---------------------------------------------------------------------------

const schemaVersion = 1

func applyMigrations(db *sqlx.DB) error {
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return fmt.Errorf("enable WAL: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS meta (key TEXT PRIMARY KEY, value TEXT);`); err != nil {
		return err
	}

	var current int
	err := db.Get(&current, `SELECT value FROM meta WHERE key='schema_version';`)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("read schema version: %w", err)
	}
	if current >= schemaVersion {
		return nil
	}

	tx, err := db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS members (
            seq INTEGER PRIMARY KEY,
            name TEXT NOT NULL,
            password TEXT NOT NULL,
            role TEXT NOT NULL
        );`,
		`CREATE TABLE IF NOT EXISTS books (
            seq INTEGER PRIMARY KEY,
            id INTEGER NOT NULL UNIQUE,
            title TEXT NOT NULL,
            author TEXT NOT NULL,
            total_copies INTEGER NOT NULL,
            available_copies INTEGER NOT NULL
        );`,
		`CREATE TABLE IF NOT EXISTS transactions (
            seq INTEGER PRIMARY KEY,
            book_id INTEGER NOT NULL,
            member_name TEXT NOT NULL,
            issue_date TEXT NOT NULL,
            return_date TEXT NOT NULL DEFAULT ''
        );`,
	}
	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("apply migration: %w", err)
		}
	}
	if _, err := tx.Exec(`INSERT INTO meta(key,value) VALUES('schema_version',?)
        ON CONFLICT(key) DO UPDATE SET value=excluded.value;`, schemaVersion); err != nil {
		return fmt.Errorf("apply migration: %w", err)
	}

	return tx.Commit()
}

// ---------------------------------------------------------------------------
// Load
// ---------------------------------------------------------------------------

func (d *Database) selectOrdered(dest any, table string, cols ...any) error {
	query, _, err := goqu.Dialect(dialectSQLite).
		From(table).
		Select(cols...).
		Order(goqu.C(colSeq).Asc()).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build select %s: %w", table, err)
	}
	if err := d.db.Select(dest, query); err != nil {
		return fmt.Errorf("select %s: %w", table, err)
	}
	return nil
}

func (d *Database) LoadMembers() ([]Member, error) {
	var members []Member
	if err := d.selectOrdered(&members, tableMembers, "name", "password", "role"); err != nil {
		return nil, err
	}
	for i, m := range members {
		role, err := ParseRole(string(m.Role))
		if err != nil {
			return nil, fmt.Errorf("%w: members row %d: unknown role %q", ErrCorruptStore, i+1, m.Role)
		}
		members[i].Role = role
	}
	return members, nil
}

func (d *Database) LoadBooks() ([]Book, error) {
	var books []Book
	err := d.selectOrdered(&books, tableBooks, "id", "title", "author", "total_copies", "available_copies")
	if err != nil {
		return nil, err
	}
	for i, b := range books {
		if b.AvailableCopies < 0 || b.AvailableCopies > b.TotalCopies {
			return nil, fmt.Errorf("%w: books row %d: available %d outside 0..%d",
				ErrCorruptStore, i+1, b.AvailableCopies, b.TotalCopies)
		}
	}
	return books, nil
}

type transactionRow struct {
	BookID     int    `db:"book_id"`
	MemberName string `db:"member_name"`
	IssueDate  string `db:"issue_date"`
	ReturnDate string `db:"return_date"`
}

func (d *Database) LoadTransactions() ([]Transaction, error) {
	var rows []transactionRow
	err := d.selectOrdered(&rows, tableTransactions, "book_id", "member_name", "issue_date", "return_date")
	if err != nil {
		return nil, err
	}
	txns := make([]Transaction, 0, len(rows))
	for i, r := range rows {
		issued, err := ParseDate(r.IssueDate)
		if err != nil || issued.IsZero() {
			return nil, fmt.Errorf("%w: transactions row %d: invalid issue date %q", ErrCorruptStore, i+1, r.IssueDate)
		}
		returned, err := ParseDate(r.ReturnDate)
		if err != nil {
			return nil, fmt.Errorf("%w: transactions row %d: invalid return date %q", ErrCorruptStore, i+1, r.ReturnDate)
		}
		txns = append(txns, Transaction{BookID: r.BookID, MemberName: r.MemberName, IssueDate: issued, ReturnDate: returned})
	}
	return txns, nil
}

// ---------------------------------------------------------------------------
// Save
// ---------------------------------------------------------------------------

// replaceAll deletes every row of table and inserts records in order, all in
// one SQL transaction.
func (d *Database) replaceAll(table string, records []goqu.Record) error {
	dialect := goqu.Dialect(dialectSQLite)

	tx, err := d.db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query, _, err := dialect.Delete(table).ToSQL()
	if err != nil {
		return fmt.Errorf("build delete %s: %w", table, err)
	}
	if _, err := tx.Exec(query); err != nil {
		return fmt.Errorf("clear %s: %w", table, err)
	}

	for start := 0; start < len(records); start += insertBatch {
		end := min(start+insertBatch, len(records))
		rows := make([]any, 0, end-start)
		for _, r := range records[start:end] {
			rows = append(rows, r)
		}
		query, args, err := dialect.Insert(table).Rows(rows...).Prepared(true).ToSQL()
		if err != nil {
			return fmt.Errorf("build insert %s: %w", table, err)
		}
		if _, err := tx.Exec(query, args...); err != nil {
			return fmt.Errorf("insert %s: %w", table, err)
		}
	}
	return tx.Commit()
}

func (d *Database) SaveMembers(members []Member) error {
	records := make([]goqu.Record, len(members))
	for i, m := range members {
		records[i] = goqu.Record{colSeq: i + 1, "name": m.Name, "password": m.Password, "role": string(m.Role)}
	}
	return d.replaceAll(tableMembers, records)
}

func (d *Database) SaveBooks(books []Book) error {
	records := make([]goqu.Record, len(books))
	for i, b := range books {
		records[i] = goqu.Record{
			colSeq:             i + 1,
			"id":               b.ID,
			"title":            b.Title,
			"author":           b.Author,
			"total_copies":     b.TotalCopies,
			"available_copies": b.AvailableCopies,
		}
	}
	return d.replaceAll(tableBooks, records)
}

func (d *Database) SaveTransactions(txns []Transaction) error {
	records := make([]goqu.Record, len(txns))
	for i, t := range txns {
		records[i] = goqu.Record{
			colSeq:        i + 1,
			"book_id":     t.BookID,
			"member_name": t.MemberName,
			"issue_date":  FormatDate(t.IssueDate),
			"return_date": FormatDate(t.ReturnDate),
		}
	}
	return d.replaceAll(tableTransactions, records)
}
