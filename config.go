package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"library-ledger/library"
)

// Environment variables that supply flag defaults.
const (
	envDataDir = "LIBRARY_DATA_DIR"
	envBackend = "LIBRARY_BACKEND"
)

type config struct {
	dataDir   string
	backend   string
	logLevel  string
	logFile   string
	graceDays int
	fineRate  int
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func (c *config) bind(fs *pflag.FlagSet) {
	fs.StringVar(&c.dataDir, "data-dir", envOr(envDataDir, "."), "Directory holding the library data (env "+envDataDir+")")
	fs.StringVar(&c.backend, "backend", envOr(envBackend, library.BackendFile),
		"Storage backend: file, sqlite or memory (env "+envBackend+")")
	fs.StringVar(&c.logLevel, "log-level", "warn", "Log level: debug, info, warn or error")
	fs.StringVar(&c.logFile, "log-file", "", "Append logs to this file instead of stderr")
	fs.IntVar(&c.graceDays, "grace-days", library.LoanPeriodDays, "Days a loan may run before fines accrue")
	fs.IntVar(&c.fineRate, "fine-rate", library.FinePerDay, "Fine per late day")
}

func (c *config) policy() library.FinePolicy {
	return library.FinePolicy{AllowedDays: c.graceDays, RatePerDay: c.fineRate}
}

// newLogger builds the text logger described by c. Logs go to stderr unless
// a log file is configured; the returned close func releases that file.
func (c *config) newLogger(stderr io.Writer) (*slog.Logger, func() error, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(c.logLevel))); err != nil {
		return nil, nil, fmt.Errorf("invalid --log-level %q: %w", c.logLevel, err)
	}

	w, closeFn := stderr, func() error { return nil }
	if c.logFile != "" {
		f, err := os.OpenFile(c.logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		w, closeFn = f, f.Close
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), closeFn, nil
}
