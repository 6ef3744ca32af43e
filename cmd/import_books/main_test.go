package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-ledger/library"
)

func writeManifest(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "books.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestSeedFreshWithAdmin(t *testing.T) {
	for _, backend := range []string{library.BackendFile, library.BackendSQLite} {
		t.Run(backend, func(t *testing.T) {
			dir := t.TempDir()
			manifest := writeManifest(t, `[
				{"id": 1, "title": "1984", "author": "George Orwell", "copies": 3},
				{"id": 2, "title": "Animal Farm", "author": "George Orwell", "copies": 0}
			]`)
			opts := options{dataDir: dir, backend: backend, admin: "root:secret"}

			var out bytes.Buffer
			require.NoError(t, seed(&out, opts, manifest))
			assert.Contains(t, out.String(), "Successfully imported: 1 books")
			assert.Contains(t, out.String(), "Errors: 1")

			// A second fresh run starts over, so the admin can be created again.
			out.Reset()
			opts.fresh = true
			require.NoError(t, seed(&out, opts, manifest))
			assert.Contains(t, out.String(), "Cleaning up existing library data...")

			store, err := library.OpenStore(backend, dir)
			require.NoError(t, err)
			defer store.Close()
			members, err := store.LoadMembers()
			require.NoError(t, err)
			assert.Equal(t, []library.Member{{Name: "root", Password: "secret", Role: library.RoleAdmin}}, members)
			books, err := store.LoadBooks()
			require.NoError(t, err)
			require.Len(t, books, 1)
			assert.Equal(t, "1984", books[0].Title)
		})
	}
}

func TestSeedWithoutFreshKeepsData(t *testing.T) {
	dir := t.TempDir()
	manifest := writeManifest(t, `[{"id": 1, "title": "1984", "author": "George Orwell", "copies": 1}]`)
	opts := options{dataDir: dir, backend: library.BackendFile, admin: "root:pw"}

	var out bytes.Buffer
	require.NoError(t, seed(&out, opts, manifest))
	err := seed(&out, opts, manifest)
	assert.ErrorIs(t, err, library.ErrDuplicateUsername)
}

func TestSeedRejectsBadOptions(t *testing.T) {
	manifest := writeManifest(t, `[]`)
	var out bytes.Buffer
	assert.Error(t, seed(&out, options{dataDir: t.TempDir(), admin: "root"}, manifest))
	assert.Error(t, seed(&out, options{dataDir: t.TempDir(), backend: library.BackendMemory}, manifest))
	assert.Error(t, seed(&out, options{dataDir: t.TempDir()}, filepath.Join(t.TempDir(), "missing.json")))
}
