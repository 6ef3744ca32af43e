package library

import (
	"fmt"
	"strings"
	"time"
)

// Role controls which menu commands a member may run.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleLibrarian Role = "librarian"
	RoleMember    Role = "member"
)

// ParseRole normalises s to one of the known roles.
func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleAdmin, RoleLibrarian, RoleMember:
		return r, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
	}
}

// checkText rejects text the stores can't hold as a single line. A required
// value must also contain something other than spaces.
func checkText(field, value string, required bool) error {
	if required && strings.TrimSpace(value) == "" {
		return fmt.Errorf("%w: %s is empty", ErrInvalidField, field)
	}
	if strings.ContainsAny(value, "\r\n") {
		return fmt.Errorf("%w: %s contains a line break", ErrInvalidField, field)
	}
	return nil
}

// Member is a registered user of the system.
type Member struct {
	Name     string `json:"name" db:"name"`
	Password string `json:"-" db:"password"`
	Role     Role   `json:"role" db:"role"`
}

// Book represents a catalog title and its copy counts.
type Book struct {
	ID              int    `json:"id" db:"id"`
	Title           string `json:"title" db:"title"`
	Author          string `json:"author" db:"author"`
	TotalCopies     int    `json:"total_copies" db:"total_copies"`
	AvailableCopies int    `json:"available_copies" db:"available_copies"`
}

// Issued returns the number of copies currently out on loan.
func (b Book) Issued() int { return b.TotalCopies - b.AvailableCopies }

// Transaction records one loan. A zero ReturnDate marks it open.
type Transaction struct {
	BookID     int
	MemberName string
	IssueDate  time.Time
	ReturnDate time.Time
}

// Open reports whether the book is still checked out.
func (t Transaction) Open() bool { return t.ReturnDate.IsZero() }
