package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"library-ledger/library"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// app carries the resolved configuration into every subcommand.
type app struct {
	cfg config
}

// withManager opens the configured logger and store, hands the manager to fn
// and closes everything afterwards.
func (a *app) withManager(cmd *cobra.Command, fn func(*library.LibraryManager, *slog.Logger) error) error {
	log, closeLog, err := a.cfg.newLogger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer closeLog()

	store, err := library.OpenStore(a.cfg.backend, a.cfg.dataDir)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	mgr, err := library.NewLibraryManager(store,
		library.WithLogger(log),
		library.WithFinePolicy(a.cfg.policy()),
	)
	if err != nil {
		store.Close()
		log.Error("load failed", "backend", a.cfg.backend, "dir", a.cfg.dataDir, "error", err)
		return err
	}
	defer mgr.Close()
	log.Debug("library opened", "backend", a.cfg.backend, "dir", a.cfg.dataDir)

	return fn(mgr, log)
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "library",
		Short: "Library inventory and lending ledger",
		Long: `A single-operator library tracker: a roster of users with roles, a catalog
of books with copy counts and a ledger of loans with late fines.

Run without a subcommand to start the interactive menu.`,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE:         a.runSession,
	}
	a.cfg.bind(root.PersistentFlags())

	root.AddCommand(
		&cobra.Command{
			Use:   "run",
			Short: "Start the interactive menu",
			Args:  cobra.NoArgs,
			RunE:  a.runSession,
		},
		a.booksCmd(),
		a.reportCmd(),
		a.checkCmd(),
		a.importCmd(),
	)
	return root
}

func (a *app) runSession(cmd *cobra.Command, _ []string) error {
	return a.withManager(cmd, func(mgr *library.LibraryManager, log *slog.Logger) error {
		return newSession(mgr, cmd.InOrStdin(), cmd.OutOrStdout(), log.With("component", "session")).Run()
	})
}
