package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"library-ledger/library"
)

func (a *app) booksCmd() *cobra.Command {
	var search string
	cmd := &cobra.Command{
		Use:   "books",
		Short: "List the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withManager(cmd, func(mgr *library.LibraryManager, _ *slog.Logger) error {
				out := newPrinter(cmd.OutOrStdout())
				seq := mgr.Catalog().List()
				if search != "" {
					seq = mgr.Catalog().Search(search)
				}
				if out.Books(seq) == 0 {
					out.Muted("No books found.")
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "Only show books matching this id or title fragment")
	return cmd
}

func (a *app) reportCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show every transaction with accrued fines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withManager(cmd, func(mgr *library.LibraryManager, _ *slog.Logger) error {
				r := mgr.Report()
				if asJSON {
					return r.WriteJSON(cmd.OutOrStdout())
				}
				newPrinter(cmd.OutOrStdout()).Report(r)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output in JSON format")
	return cmd
}

func (a *app) checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify copy counts against open loans",
		Long: `Check loads the library and verifies that every book's available count lies
within its total and that its issued count equals its open loans. It exits
non-zero when any discrepancy is found.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withManager(cmd, func(mgr *library.LibraryManager, log *slog.Logger) error {
				out := newPrinter(cmd.OutOrStdout())
				problems := mgr.Audit()
				if len(problems) == 0 {
					out.Success("Library is consistent.")
					return nil
				}
				for _, d := range problems {
					out.Error("%s", d)
				}
				log.Warn("audit failed", "discrepancies", len(problems))
				return fmt.Errorf("%d discrepancies found", len(problems))
			})
		},
	}
}

func (a *app) importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <manifest.json>",
		Short: "Add books from a JSON manifest",
		Long: `Import reads a JSON array of {"id", "title", "author", "copies"} objects and
adds each book to the catalog. Entries that clash with existing ids or carry
invalid counts are reported and skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			return a.withManager(cmd, func(mgr *library.LibraryManager, log *slog.Logger) error {
				res, err := library.ImportCatalog(mgr.Catalog(), f)
				printImport(newPrinter(cmd.OutOrStdout()), res)
				log.Info("import finished", "manifest", args[0], "added", len(res.Added), "skipped", len(res.Failed))
				return err
			})
		},
	}
}

func printImport(out *printer, res library.ImportResult) {
	for _, b := range res.Added {
		out.Success("Imported %d: %s by %s (%d copies)", b.ID, b.Title, b.Author, b.TotalCopies)
	}
	for _, f := range res.Failed {
		out.Error("Skipped %d %q: %s", f.Entry.ID, f.Entry.Title, describe(f.Err))
	}
	out.Println()
	out.Printf("Imported: %d  Skipped: %d\n", len(res.Added), len(res.Failed))
}
