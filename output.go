package main

import (
	"fmt"
	"io"
	"iter"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"library-ledger/library"
)

var (
	colorSuccess = lipgloss.Color("#10B981")
	colorWarning = lipgloss.Color("#F59E0B")
	colorError   = lipgloss.Color("#EF4444")
	colorInfo    = lipgloss.Color("#3B82F6")
	colorMuted   = lipgloss.Color("#6B7280")
	colorPrimary = lipgloss.Color("#7C3AED")
)

// printer writes styled text to w. Colours are dropped automatically when w
// is not a terminal.
type printer struct {
	w io.Writer

	successStyle lipgloss.Style
	warningStyle lipgloss.Style
	errorStyle   lipgloss.Style
	infoStyle    lipgloss.Style
	mutedStyle   lipgloss.Style
	primaryStyle lipgloss.Style
	cellStyle    lipgloss.Style
}

func newPrinter(w io.Writer) *printer {
	r := lipgloss.NewRenderer(w)
	return &printer{
		w:            w,
		successStyle: r.NewStyle().Foreground(colorSuccess).Bold(true),
		warningStyle: r.NewStyle().Foreground(colorWarning).Bold(true),
		errorStyle:   r.NewStyle().Foreground(colorError).Bold(true),
		infoStyle:    r.NewStyle().Foreground(colorInfo),
		mutedStyle:   r.NewStyle().Foreground(colorMuted),
		primaryStyle: r.NewStyle().Foreground(colorPrimary).Bold(true),
		cellStyle:    r.NewStyle(),
	}
}

func (p *printer) Println(a ...any)               { fmt.Fprintln(p.w, a...) }
func (p *printer) Printf(format string, a ...any) { fmt.Fprintf(p.w, format, a...) }

// Success prints a success message
func (p *printer) Success(format string, args ...any) {
	fmt.Fprint(p.w, p.successStyle.Render("✓ "))
	fmt.Fprintf(p.w, format+"\n", args...)
}

// Warning prints a warning message
func (p *printer) Warning(format string, args ...any) {
	fmt.Fprint(p.w, p.warningStyle.Render("⚠ "))
	fmt.Fprintf(p.w, format+"\n", args...)
}

// Error prints an error message
func (p *printer) Error(format string, args ...any) {
	fmt.Fprint(p.w, p.errorStyle.Render("✗ "))
	fmt.Fprintf(p.w, format+"\n", args...)
}

// Info prints an info message
func (p *printer) Info(format string, args ...any) {
	fmt.Fprint(p.w, p.infoStyle.Render("ℹ "))
	fmt.Fprintf(p.w, format+"\n", args...)
}

func (p *printer) Muted(format string, args ...any) {
	fmt.Fprintln(p.w, p.mutedStyle.Render(fmt.Sprintf(format, args...)))
}

// Section prints a section header
func (p *printer) Section(title string) {
	fmt.Fprintln(p.w)
	fmt.Fprintln(p.w, p.primaryStyle.Render(title))
	fmt.Fprintln(p.w, p.mutedStyle.Render(strings.Repeat("═", len([]rune(title)))))
}

// Menu prints numbered options under a section header.
func (p *printer) Menu(title string, options []string) {
	p.Section(title)
	for i, opt := range options {
		fmt.Fprintf(p.w, "  [%d] %s\n", i+1, opt)
	}
	fmt.Fprintln(p.w)
}

// Table prints rows in fixed-width columns. Cells longer than their column
// are truncated.
func (p *printer) Table(headers []string, widths []int, rows [][]string) {
	total := 0
	for _, w := range widths {
		total += w
	}
	p.row(p.primaryStyle, headers, widths)
	fmt.Fprintln(p.w, p.mutedStyle.Render(strings.Repeat("=", total)))
	for _, r := range rows {
		p.row(p.cellStyle, r, widths)
	}
}

func (p *printer) row(style lipgloss.Style, cells []string, widths []int) {
	var b strings.Builder
	for i, w := range widths {
		var cell string
		if i < len(cells) {
			cell = library.Truncate(cells[i], w-1)
		}
		b.WriteString(style.Width(w).Render(cell))
	}
	fmt.Fprintln(p.w, strings.TrimRight(b.String(), " "))
}

var (
	bookHeaders = []string{"ID", "Title", "Author", "Available", "Total", "Issued"}
	bookWidths  = []int{6, 30, 25, 12, 12, 12}
)

// Books prints the catalog columns for every book in seq and returns how
// many were printed.
func (p *printer) Books(seq iter.Seq[library.Book]) int {
	var rows [][]string
	for b := range seq {
		rows = append(rows, []string{
			strconv.Itoa(b.ID),
			b.Title,
			b.Author,
			strconv.Itoa(b.AvailableCopies),
			strconv.Itoa(b.TotalCopies),
			strconv.Itoa(b.Issued()),
		})
	}
	p.Table(bookHeaders, bookWidths, rows)
	return len(rows)
}

// Report prints every transaction followed by the loan summary.
func (p *printer) Report(r library.Report) {
	rows := make([][]string, 0, len(r.Transactions))
	for _, t := range r.Transactions {
		fine := ""
		if t.Fine > 0 {
			fine = strconv.Itoa(t.Fine)
		}
		rows = append(rows, []string{strconv.Itoa(t.BookID), t.Title, t.Member, t.IssueDate, t.ReturnDate, fine})
	}
	p.Table(
		[]string{"BookID", "Title", "Member", "Issued", "Returned", "Fine"},
		[]int{8, 26, 20, 15, 15, 8},
		rows,
	)
	p.Println()
	p.Printf("Report date: %s (loan period %d days, fine %d per day)\n", r.Date, r.AllowedDays, r.FinePerDay)
	p.Printf("Titles: %d  Copies: %d  Issued: %d  Members: %d\n", r.Titles, r.TotalCopies, r.IssuedCopies, r.Members)
	p.Printf("Open loans: %d  Overdue: %d  Accrued fines: %d\n", r.OpenLoans, r.OverdueLoans, r.AccruedFines)
}
