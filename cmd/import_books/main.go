// Command import_books seeds a library data directory from a JSON manifest,
// optionally wiping existing data and creating a first admin account.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"library-ledger/library"
)

func main() {
	if err := newCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type options struct {
	dataDir string
	backend string
	fresh   bool
	admin   string
}

func newCmd() *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:          "import_books <manifest.json>",
		Short:        "Seed a library data directory from a JSON manifest",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return seed(cmd.OutOrStdout(), opts, args[0])
		},
	}
	cmd.Flags().StringVar(&opts.dataDir, "data-dir", envOr("LIBRARY_DATA_DIR", "."), "Directory holding the library data")
	cmd.Flags().StringVar(&opts.backend, "backend", envOr("LIBRARY_BACKEND", library.BackendFile), "Storage backend: file or sqlite")
	cmd.Flags().BoolVar(&opts.fresh, "fresh", false, "Remove existing library data before importing")
	cmd.Flags().StringVar(&opts.admin, "admin", "", "Create an admin account, given as name:password")
	return cmd
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func seed(out io.Writer, opts options, manifest string) error {
	if opts.backend == library.BackendMemory {
		return errors.New("the memory backend keeps nothing; use file or sqlite")
	}
	var adminName, adminPass string
	if opts.admin != "" {
		var ok bool
		adminName, adminPass, ok = strings.Cut(opts.admin, ":")
		if !ok || adminName == "" || adminPass == "" {
			return fmt.Errorf("--admin must be name:password")
		}
	}

	f, err := os.Open(manifest)
	if err != nil {
		return err
	}
	defer f.Close()

	if opts.fresh {
		fmt.Fprintln(out, "Cleaning up existing library data...")
		for _, name := range dataFiles(opts.backend) {
			path := filepath.Join(opts.dataDir, name)
			if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
				fmt.Fprintf(out, "Warning: could not remove %s: %v\n", path, err)
			}
		}
	}

	store, err := library.OpenStore(opts.backend, opts.dataDir)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	mgr, err := library.NewLibraryManager(store, library.WithLogger(log))
	if err != nil {
		store.Close()
		return err
	}
	defer mgr.Close()

	if adminName != "" {
		if _, err := mgr.Roster().Register(adminName, adminPass, string(library.RoleAdmin)); err != nil {
			return fmt.Errorf("create admin: %w", err)
		}
		fmt.Fprintf(out, "Created admin account %q\n", adminName)
	}

	fmt.Fprintf(out, "Importing books from %s...\n", manifest)
	res, err := library.ImportCatalog(mgr.Catalog(), f)
	for _, b := range res.Added {
		fmt.Fprintf(out, "Importing: %s by %s... SUCCESS (ID: %d)\n", b.Title, b.Author, b.ID)
	}
	for _, fail := range res.Failed {
		fmt.Fprintf(out, "Importing: %s by %s... ERROR - %v\n", fail.Entry.Title, fail.Entry.Author, fail.Err)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "\nImport complete!\n")
	fmt.Fprintf(out, "Successfully imported: %d books\n", len(res.Added))
	fmt.Fprintf(out, "Errors: %d\n", len(res.Failed))

	if len(res.Added) > 0 {
		fmt.Fprintln(out, "\nCatalog:")
		fmt.Fprintf(out, "%-6s %-50s %-30s %s\n", "ID", "Title", "Author", "Copies")
		fmt.Fprintln(out, strings.Repeat("-", 95))
		for b := range mgr.Catalog().List() {
			fmt.Fprintf(out, "%-6d %-50s %-30s %d\n", b.ID, library.Truncate(b.Title, 50), library.Truncate(b.Author, 30), b.TotalCopies)
		}
	}
	return nil
}

// dataFiles names the files a backend keeps in its data directory.
func dataFiles(backend string) []string {
	if backend == library.BackendSQLite {
		db := library.SQLiteFile
		return []string{db, db + "-shm", db + "-wal"}
	}
	return []string{library.MembersFile, library.BooksFile, library.TransactionsFile}
}
