package library

import (
	"fmt"
	"iter"
	"log/slog"
	"slices"
	"strconv"
	"strings"
)

// Catalog owns the book records and their copy counts.
type Catalog struct {
	books []Book
	store BookStore
	log   *slog.Logger
}

// DeleteResult describes the outcome of DeleteCopies.
type DeleteResult struct {
	Book      Book
	Deleted   int
	Remaining int
	// Removed is set when the last copy went and the title left the catalog.
	Removed bool
}

// NewCatalog loads the catalog from store.
func NewCatalog(store BookStore, log *slog.Logger) (*Catalog, error) {
	books, err := store.LoadBooks()
	if err != nil {
		return nil, fmt.Errorf("load books: %w", err)
	}
	log.Debug("catalog loaded", "books", len(books))
	return &Catalog{books: books, store: store, log: log}, nil
}

func (c *Catalog) indexOf(id int) int {
	return slices.IndexFunc(c.books, func(b Book) bool { return b.ID == id })
}

func (c *Catalog) save() error {
	if err := c.store.SaveBooks(c.books); err != nil {
		c.log.Warn("save books failed", "error", err)
		return fmt.Errorf("%w: save books: %v", ErrPersistence, err)
	}
	return nil
}

// AddBook creates a title with copies total and available copies.
func (c *Catalog) AddBook(id int, title, author string, copies int) (Book, error) {
	if c.indexOf(id) >= 0 {
		return Book{}, fmt.Errorf("%w: %d", ErrDuplicateID, id)
	}
	if copies <= 0 {
		return Book{}, fmt.Errorf("%w: got %d", ErrInvalidCopyCount, copies)
	}
	if err := checkText("title", title, true); err != nil {
		return Book{}, err
	}
	if err := checkText("author", author, true); err != nil {
		return Book{}, err
	}

	b := Book{ID: id, Title: title, Author: author, TotalCopies: copies, AvailableCopies: copies}
	c.books = append(c.books, b)
	c.log.Info("book added", "id", id, "title", title, "copies", copies)
	return b, c.save()
}

// UpdateBook changes a title's metadata and resizes its total copy count.
// An empty title or author keeps the current value; a blank or multi-line one
// is rejected. The total may not drop below the number of copies currently
// issued.
func (c *Catalog) UpdateBook(id int, title, author string, total int) (Book, error) {
	i := c.indexOf(id)
	if i < 0 {
		return Book{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	b := c.books[i]
	issued := b.Issued()
	if total < issued || total < 0 {
		return Book{}, fmt.Errorf("%w: %d issued, requested %d", ErrInvalidResize, issued, total)
	}
	if title != "" {
		if err := checkText("title", title, true); err != nil {
			return Book{}, err
		}
	}
	if author != "" {
		if err := checkText("author", author, true); err != nil {
			return Book{}, err
		}
	}

	if title != "" {
		b.Title = title
	}
	if author != "" {
		b.Author = author
	}
	b.TotalCopies = total
	b.AvailableCopies = total - issued
	c.books[i] = b
	c.log.Info("book updated", "id", id, "total", b.TotalCopies, "available", b.AvailableCopies)
	return b, c.save()
}

// DeleteCopies removes count copies from the available stock. Issued copies
// can't be deleted. When the total reaches zero the title is dropped.
func (c *Catalog) DeleteCopies(id, count int) (DeleteResult, error) {
	i := c.indexOf(id)
	if i < 0 {
		return DeleteResult{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	b := c.books[i]
	if count <= 0 {
		return DeleteResult{Book: b}, fmt.Errorf("%w: got %d", ErrInvalidCount, count)
	}
	if count > b.AvailableCopies {
		return DeleteResult{Book: b}, fmt.Errorf("%w: only %d of %d available (%d issued)",
			ErrInsufficientAvailable, b.AvailableCopies, count, b.Issued())
	}

	b.TotalCopies -= count
	b.AvailableCopies -= count
	res := DeleteResult{Book: b, Deleted: count, Remaining: b.TotalCopies}
	if b.TotalCopies == 0 {
		c.books = slices.Delete(c.books, i, i+1)
		res.Removed = true
		c.log.Info("book removed", "id", id)
	} else {
		c.books[i] = b
		c.log.Info("copies deleted", "id", id, "deleted", count, "remaining", b.TotalCopies)
	}
	return res, c.save()
}

// Get returns the book with the given id.
func (c *Catalog) Get(id int) (Book, error) {
	i := c.indexOf(id)
	if i < 0 {
		return Book{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return c.books[i], nil
}

// Len returns the number of titles in the catalog.
func (c *Catalog) Len() int { return len(c.books) }

// List yields every book in insertion order.
func (c *Catalog) List() iter.Seq[Book] {
	return func(yield func(Book) bool) {
		for _, b := range c.books {
			if !yield(b) {
				return
			}
		}
	}
}

// Search yields books matching keyword. An all-digit keyword matches the id
// exactly; anything else matches a case-insensitive title substring.
func (c *Catalog) Search(keyword string) iter.Seq[Book] {
	match := titleMatcher(keyword)
	if isDigits(keyword) {
		match = func(b Book) bool { return strconv.Itoa(b.ID) == keyword }
	}
	return func(yield func(Book) bool) {
		for _, b := range c.books {
			if match(b) && !yield(b) {
				return
			}
		}
	}
}

func titleMatcher(keyword string) func(Book) bool {
	kw := strings.ToLower(keyword)
	return func(b Book) bool { return strings.Contains(strings.ToLower(b.Title), kw) }
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// checkout takes one copy off the shelf for a new loan.
func (c *Catalog) checkout(id int) error {
	i := c.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	c.books[i].AvailableCopies--
	return c.save()
}

// checkin puts one copy back on the shelf.
func (c *Catalog) checkin(id int) error {
	i := c.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	c.books[i].AvailableCopies++
	return c.save()
}
