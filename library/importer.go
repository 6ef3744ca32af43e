package library

import (
	"errors"
	"fmt"
	"io"

	jsoniter "github.com/json-iterator/go"
)

// ImportEntry is one book in an import manifest.
type ImportEntry struct {
	ID     int    `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author"`
	Copies int    `json:"copies"`
}

// ImportFailure records why one manifest entry was skipped.
type ImportFailure struct {
	Entry ImportEntry
	Err   error
}

// ImportResult lists what an import added and what it skipped.
type ImportResult struct {
	Added  []Book
	Failed []ImportFailure
}

// ImportCatalog reads a JSON array of ImportEntry from r and adds each entry
// to c. Entries the catalog rejects are collected in Failed; only a decode
// error or a persistence failure aborts the import.
func ImportCatalog(c *Catalog, r io.Reader) (ImportResult, error) {
	var entries []ImportEntry
	if err := jsoniter.ConfigCompatibleWithStandardLibrary.NewDecoder(r).Decode(&entries); err != nil {
		return ImportResult{}, fmt.Errorf("decode manifest: %w", err)
	}

	var res ImportResult
	for _, e := range entries {
		b, err := c.AddBook(e.ID, e.Title, e.Author, e.Copies)
		switch {
		case err == nil:
			res.Added = append(res.Added, b)
		case errors.Is(err, ErrPersistence):
			res.Added = append(res.Added, b)
			return res, err
		default:
			res.Failed = append(res.Failed, ImportFailure{e, err})
		}
	}
	return res, nil
}
