package library

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := NewCatalog(NewMemoryStore(), discardLogger())
	require.NoError(t, err)
	return c
}

func ids(books []Book) []int {
	out := make([]int, len(books))
	for i, b := range books {
		out[i] = b.ID
	}
	return out
}

func TestAddBook(t *testing.T) {
	c := newCatalog(t)

	b, err := c.AddBook(1, "Dune", "Frank Herbert", 3)
	require.NoError(t, err)
	assert.Equal(t, Book{ID: 1, Title: "Dune", Author: "Frank Herbert", TotalCopies: 3, AvailableCopies: 3}, b)

	_, err = c.AddBook(1, "Other", "Someone", 1)
	assert.ErrorIs(t, err, ErrDuplicateID)

	_, err = c.AddBook(2, "Empty", "Nobody", 0)
	assert.ErrorIs(t, err, ErrInvalidCopyCount)
	_, err = c.AddBook(2, "Negative", "Nobody", -4)
	assert.ErrorIs(t, err, ErrInvalidCopyCount)

	assert.Equal(t, 1, c.Len())
}

func TestUpdateBookResize(t *testing.T) {
	c := newCatalog(t)
	_, err := c.AddBook(1, "Dune", "Frank Herbert", 5)
	require.NoError(t, err)
	for range 3 {
		require.NoError(t, c.checkout(1))
	}

	// total=5, available=2, issued=3
	_, err = c.UpdateBook(1, "", "", 2)
	require.ErrorIs(t, err, ErrInvalidResize)
	b, _ := c.Get(1)
	assert.Equal(t, 5, b.TotalCopies)
	assert.Equal(t, 2, b.AvailableCopies)

	b, err = c.UpdateBook(1, "", "", 4)
	require.NoError(t, err)
	assert.Equal(t, 4, b.TotalCopies)
	assert.Equal(t, 1, b.AvailableCopies)
	assert.Equal(t, 3, b.Issued())

	b, err = c.UpdateBook(1, "", "", 3)
	require.NoError(t, err)
	assert.Equal(t, 0, b.AvailableCopies)
}

func TestUpdateBookMetadata(t *testing.T) {
	c := newCatalog(t)
	_, err := c.AddBook(1, "Dune", "Frank Herbert", 2)
	require.NoError(t, err)

	b, err := c.UpdateBook(1, "Dune Messiah", "", 2)
	require.NoError(t, err)
	assert.Equal(t, "Dune Messiah", b.Title)
	assert.Equal(t, "Frank Herbert", b.Author)

	b, err = c.UpdateBook(1, "", "F. Herbert", 2)
	require.NoError(t, err)
	assert.Equal(t, "Dune Messiah", b.Title)
	assert.Equal(t, "F. Herbert", b.Author)

	_, err = c.UpdateBook(99, "x", "y", 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateBookFailedResizeLeavesTitle(t *testing.T) {
	c := newCatalog(t)
	_, err := c.AddBook(1, "Dune", "Frank Herbert", 2)
	require.NoError(t, err)
	require.NoError(t, c.checkout(1))

	_, err = c.UpdateBook(1, "Renamed", "Someone", 0)
	require.ErrorIs(t, err, ErrInvalidResize)
	b, err := c.UpdateBook(1, "Renamed", "Someone", -1)
	require.ErrorIs(t, err, ErrInvalidResize)
	assert.Equal(t, Book{}, b)

	b, _ = c.Get(1)
	assert.Equal(t, "Dune", b.Title)
	assert.Equal(t, "Frank Herbert", b.Author)
}

func TestBookFieldsAreValidatedBeforeSaving(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	c, err := NewCatalog(store, discardLogger())
	require.NoError(t, err)
	_, err = c.AddBook(1, "Dune", "Frank Herbert", 2)
	require.NoError(t, err)

	for _, tc := range []struct{ title, author string }{
		{"a\nb", "x"},
		{"Emma", "Jane\r\nAusten"},
		{"   ", "Anon"},
		{"Emma", ""},
	} {
		_, err := c.AddBook(2, tc.title, tc.author, 1)
		assert.ErrorIs(t, err, ErrInvalidField, "%q by %q", tc.title, tc.author)
		assert.NotErrorIs(t, err, ErrPersistence)
	}

	b, err := c.UpdateBook(1, "Dune\nMessiah", "", 2)
	assert.ErrorIs(t, err, ErrInvalidField)
	assert.Equal(t, Book{}, b)
	_, err = c.UpdateBook(1, "", " ", 2)
	assert.ErrorIs(t, err, ErrInvalidField)

	assert.Equal(t, 1, c.Len())
	got, err := c.Get(1)
	require.NoError(t, err)
	assert.Equal(t, Book{ID: 1, Title: "Dune", Author: "Frank Herbert", TotalCopies: 2, AvailableCopies: 2}, got)

	// Later saves still succeed and the file reloads cleanly.
	_, err = c.AddBook(3, "Ulysses", "James Joyce", 1)
	require.NoError(t, err)
	reloaded, err := NewCatalog(store, discardLogger())
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3}, ids(slices.Collect(reloaded.List())))
}

func TestUpdateBookToZeroKeepsTitle(t *testing.T) {
	c := newCatalog(t)
	_, err := c.AddBook(1, "Dune", "Frank Herbert", 2)
	require.NoError(t, err)

	b, err := c.UpdateBook(1, "", "", 0)
	require.NoError(t, err)
	assert.Equal(t, 0, b.TotalCopies)
	assert.Equal(t, 1, c.Len())
}

func TestDeleteCopies(t *testing.T) {
	c := newCatalog(t)
	_, err := c.AddBook(1, "Dune", "Frank Herbert", 5)
	require.NoError(t, err)
	require.NoError(t, c.checkout(1))
	require.NoError(t, c.checkout(1))

	_, err = c.DeleteCopies(99, 1)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = c.DeleteCopies(1, 0)
	assert.ErrorIs(t, err, ErrInvalidCount)

	// Only the 3 shelved copies may go.
	_, err = c.DeleteCopies(1, 4)
	require.ErrorIs(t, err, ErrInsufficientAvailable)
	b, _ := c.Get(1)
	assert.Equal(t, 5, b.TotalCopies)

	res, err := c.DeleteCopies(1, 3)
	require.NoError(t, err)
	assert.False(t, res.Removed)
	assert.Equal(t, 2, res.Remaining)
	assert.Equal(t, 0, res.Book.AvailableCopies)
	assert.Equal(t, 2, res.Book.Issued())
}

func TestDeleteAllCopiesRemovesBook(t *testing.T) {
	c := newCatalog(t)
	_, err := c.AddBook(1, "Dune", "Frank Herbert", 3)
	require.NoError(t, err)
	_, err = c.AddBook(2, "Emma", "Jane Austen", 1)
	require.NoError(t, err)

	res, err := c.DeleteCopies(1, 3)
	require.NoError(t, err)
	assert.True(t, res.Removed)
	assert.Equal(t, 0, res.Remaining)

	_, err = c.Get(1)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, []int{2}, ids(slices.Collect(c.List())))
}

func TestSearch(t *testing.T) {
	c := newCatalog(t)
	for _, b := range []Book{
		{ID: 1, Title: "Dune", Author: "Frank Herbert"},
		{ID: 12, Title: "Children of Dune", Author: "Frank Herbert"},
		{ID: 3, Title: "Emma", Author: "Jane Austen"},
		{ID: 2024, Title: "The Year 2024", Author: "Anon"},
	} {
		_, err := c.AddBook(b.ID, b.Title, b.Author, 1)
		require.NoError(t, err)
	}

	assert.Equal(t, []int{1, 12}, ids(slices.Collect(c.Search("dUnE"))))
	assert.Equal(t, []int{12}, ids(slices.Collect(c.Search("12"))))
	assert.Equal(t, []int{1}, ids(slices.Collect(c.Search("1"))))
	// Digits search ids only, never titles.
	assert.Equal(t, []int{2024}, ids(slices.Collect(c.Search("2024"))))
	assert.Empty(t, slices.Collect(c.Search("01")))
	assert.Empty(t, slices.Collect(c.Search("herbert")))
	// Mixed input is a title search.
	assert.Equal(t, []int{2024}, ids(slices.Collect(c.Search("year 20"))))
}

func TestSearchIsRecomputedPerCall(t *testing.T) {
	c := newCatalog(t)
	_, err := c.AddBook(1, "Dune", "Frank Herbert", 1)
	require.NoError(t, err)

	seq := c.Search("dune")
	assert.Len(t, slices.Collect(seq), 1)

	_, err = c.AddBook(2, "Dune Messiah", "Frank Herbert", 1)
	require.NoError(t, err)
	assert.Len(t, slices.Collect(seq), 2)
}

func TestListPreservesInsertionOrder(t *testing.T) {
	c := newCatalog(t)
	for _, id := range []int{30, 10, 20} {
		_, err := c.AddBook(id, "T", "A", 1)
		require.NoError(t, err)
	}
	assert.Equal(t, []int{30, 10, 20}, ids(slices.Collect(c.List())))

	// Stopping early is honoured.
	var first []int
	for b := range c.List() {
		first = append(first, b.ID)
		break
	}
	assert.Equal(t, []int{30}, first)
}
