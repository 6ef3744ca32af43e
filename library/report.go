package library

import (
	"fmt"
	"io"

	jsoniter "github.com/json-iterator/go"
)

// LoanLine is one transaction as shown in reports.
type LoanLine struct {
	BookID     int    `json:"book_id"`
	Title      string `json:"title"`
	Member     string `json:"member"`
	IssueDate  string `json:"issue_date"`
	ReturnDate string `json:"return_date,omitempty"`
	LateDays   int    `json:"late_days"`
	Fine       int    `json:"fine"`
}

// Report summarises the catalog and ledger as of Date.
type Report struct {
	Date         string     `json:"date"`
	Titles       int        `json:"titles"`
	TotalCopies  int        `json:"total_copies"`
	IssuedCopies int        `json:"issued_copies"`
	Members      int        `json:"members"`
	Transactions []LoanLine `json:"transactions"`
	OpenLoans    int        `json:"open_loans"`
	OverdueLoans int        `json:"overdue_loans"`
	AccruedFines int        `json:"accrued_fines"`
	AllowedDays  int        `json:"allowed_days"`
	FinePerDay   int        `json:"fine_per_day"`
}

// Report builds a snapshot of every transaction. Open loans carry the fine
// they would incur if returned today.
func (m *LibraryManager) Report() Report {
	policy := m.ledger.Policy()
	r := Report{
		Date:         FormatDate(m.Today()),
		Members:      m.roster.Len(),
		Titles:       m.catalog.Len(),
		Transactions: []LoanLine{},
		AllowedDays:  policy.AllowedDays,
		FinePerDay:   policy.RatePerDay,
	}
	for b := range m.catalog.List() {
		r.TotalCopies += b.TotalCopies
		r.IssuedCopies += b.Issued()
	}
	for t := range m.ledger.ListTransactions() {
		late, fine := m.ledger.AccruedFine(t)
		r.Transactions = append(r.Transactions, LoanLine{
			BookID:     t.BookID,
			Title:      m.TitleOf(t.BookID),
			Member:     t.MemberName,
			IssueDate:  FormatDate(t.IssueDate),
			ReturnDate: FormatDate(t.ReturnDate),
			LateDays:   late,
			Fine:       fine,
		})
		if t.Open() {
			r.OpenLoans++
			if late > 0 {
				r.OverdueLoans++
				r.AccruedFines += fine
			}
		}
	}
	return r
}

// TitleOf returns the title of bookID, or "Unknown" when it has left the
// catalog.
func (m *LibraryManager) TitleOf(bookID int) string {
	b, err := m.catalog.Get(bookID)
	if err != nil {
		return "Unknown"
	}
	return b.Title
}

// WriteJSON encodes r as indented JSON.
func (r Report) WriteJSON(w io.Writer) error {
	data, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	_, err = w.Write(append(data, '\n'))
	return err
}
