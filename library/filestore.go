package library

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// File names used by FileStore inside its directory.
const (
	MembersFile      = "members.txt"
	BooksFile        = "books.txt"
	TransactionsFile = "transactions.txt"
)

// FileStore keeps each collection in its own line-oriented text file. Every
// record is a fixed-size group of lines; every save rewrites the whole file.
type FileStore struct {
	dir string
}

// NewFileStore returns a store rooted at dir, creating the directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := ensureDir(dir); err != nil {
		return nil, err
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) Close() error { return nil }

func (s *FileStore) path(name string) string { return filepath.Join(s.dir, name) }

// ---------------------------------------------------------------------------
// Members: name / password / role
// ---------------------------------------------------------------------------

func (s *FileStore) LoadMembers() ([]Member, error) {
	var members []Member
	err := readGroups(s.path(MembersFile), 3, func(g group) error {
		name, pass, roleLine := g.field(0), g.field(1), g.field(2)
		if name == "" {
			return g.corrupt(0, "empty username")
		}
		role, err := ParseRole(roleLine)
		if err != nil {
			return g.corrupt(2, "unknown role %q", roleLine)
		}
		members = append(members, Member{Name: name, Password: pass, Role: role})
		return nil
	})
	return members, err
}

func (s *FileStore) SaveMembers(members []Member) error {
	var buf bytes.Buffer
	for _, m := range members {
		if err := writeLines(&buf, m.Name, m.Password, string(m.Role)); err != nil {
			return err
		}
	}
	return writeFileAtomic(s.path(MembersFile), buf.Bytes())
}

// ---------------------------------------------------------------------------
// Books: id / title / author / "total available"
// ---------------------------------------------------------------------------

func (s *FileStore) LoadBooks() ([]Book, error) {
	var books []Book
	err := readGroups(s.path(BooksFile), 4, func(g group) error {
		id, err := strconv.Atoi(g.field(0))
		if err != nil {
			return g.corrupt(0, "invalid book id %q", g.field(0))
		}
		counts := strings.Fields(g.field(3))
		if len(counts) != 2 {
			return g.corrupt(3, "want \"total available\", got %q", g.field(3))
		}
		total, err1 := strconv.Atoi(counts[0])
		avail, err2 := strconv.Atoi(counts[1])
		if err1 != nil || err2 != nil {
			return g.corrupt(3, "invalid copy counts %q", g.field(3))
		}
		if avail < 0 || avail > total {
			return g.corrupt(3, "available %d outside 0..%d", avail, total)
		}
		books = append(books, Book{
			ID:              id,
			Title:           g.field(1),
			Author:          g.field(2),
			TotalCopies:     total,
			AvailableCopies: avail,
		})
		return nil
	})
	return books, err
}

func (s *FileStore) SaveBooks(books []Book) error {
	var buf bytes.Buffer
	for _, b := range books {
		counts := fmt.Sprintf("%d %d", b.TotalCopies, b.AvailableCopies)
		if err := writeLines(&buf, strconv.Itoa(b.ID), b.Title, b.Author, counts); err != nil {
			return err
		}
	}
	return writeFileAtomic(s.path(BooksFile), buf.Bytes())
}

// ---------------------------------------------------------------------------
// Transactions: bookId / member / issueDate / returnDate ("" while open)
// ---------------------------------------------------------------------------

func (s *FileStore) LoadTransactions() ([]Transaction, error) {
	var txns []Transaction
	err := readGroups(s.path(TransactionsFile), 4, func(g group) error {
		id, err := strconv.Atoi(g.field(0))
		if err != nil {
			return g.corrupt(0, "invalid book id %q", g.field(0))
		}
		if g.field(1) == "" {
			return g.corrupt(1, "empty member name")
		}
		issued, err := ParseDate(g.field(2))
		if err != nil || issued.IsZero() {
			return g.corrupt(2, "invalid issue date %q", g.field(2))
		}
		returned, err := ParseDate(g.field(3))
		if err != nil {
			return g.corrupt(3, "invalid return date %q", g.field(3))
		}
		txns = append(txns, Transaction{BookID: id, MemberName: g.field(1), IssueDate: issued, ReturnDate: returned})
		return nil
	})
	return txns, err
}

func (s *FileStore) SaveTransactions(txns []Transaction) error {
	var buf bytes.Buffer
	for _, t := range txns {
		err := writeLines(&buf, strconv.Itoa(t.BookID), t.MemberName, FormatDate(t.IssueDate), FormatDate(t.ReturnDate))
		if err != nil {
			return err
		}
	}
	return writeFileAtomic(s.path(TransactionsFile), buf.Bytes())
}

// ---------------------------------------------------------------------------
// Line groups
// ---------------------------------------------------------------------------

type group struct {
	file  string
	start int // 1-based line number of the first field
	lines []string
}

func (g group) field(i int) string { return g.lines[i] }

func (g group) corrupt(i int, format string, args ...any) error {
	return fmt.Errorf("%w: %s line %d: %s", ErrCorruptStore, g.file, g.start+i, fmt.Sprintf(format, args...))
}

// readGroups splits the file at path into groups of size lines and hands each
// to fn. A missing file has no groups. Blank lines after the last complete
// group are ignored; any other leftover is reported as a truncated record.
func readGroups(path string, size int, fn func(group) error) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}

	lines := strings.Split(string(data), "\n")
	for i := range lines {
		lines[i] = strings.TrimSuffix(lines[i], "\r")
	}

	name := filepath.Base(path)
	for i := 0; i < len(lines); i += size {
		if allBlank(lines[i:]) {
			return nil
		}
		if len(lines)-i < size {
			return fmt.Errorf("%w: %s line %d: truncated record", ErrCorruptStore, name, i+1)
		}
		if err := fn(group{file: name, start: i + 1, lines: lines[i : i+size]}); err != nil {
			return err
		}
	}
	return nil
}

func allBlank(lines []string) bool {
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			return false
		}
	}
	return true
}

func writeLines(buf *bytes.Buffer, fields ...string) error {
	for _, f := range fields {
		if strings.ContainsAny(f, "\r\n") {
			return fmt.Errorf("field %q contains a line break", f)
		}
		buf.WriteString(f)
		buf.WriteByte('\n')
	}
	return nil
}

// writeFileAtomic replaces path with data via a temp file and rename, so a
// reader never sees a half-written file.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace %s: %w", filepath.Base(path), err)
	}
	return nil
}
