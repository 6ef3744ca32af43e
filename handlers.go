package main

import (
	"errors"
	"strconv"

	"library-ledger/library"
)

// describe turns an engine error into the line shown to the operator.
func describe(err error) string {
	switch {
	case errors.Is(err, library.ErrDuplicateUsername):
		return "Username already exists."
	case errors.Is(err, library.ErrInvalidRole):
		return "Invalid role. Try again."
	case errors.Is(err, library.ErrDuplicateID):
		return "Book ID already exists."
	case errors.Is(err, library.ErrInvalidCopyCount):
		return "Copies must be at least 1."
	case errors.Is(err, library.ErrNotFound):
		return "Book not found."
	case errors.Is(err, library.ErrInvalidCount):
		return "Invalid number. No copies deleted."
	case errors.Is(err, library.ErrNoCopiesAvailable):
		return "No copies available to issue."
	case errors.Is(err, library.ErrUnknownMember):
		return "Member not found."
	case errors.Is(err, library.ErrNoOpenLoan):
		return "No outstanding issue record found for this book and member."
	case errors.Is(err, library.ErrInvalidCredentials):
		return "Invalid credentials. Try again."
	case errors.Is(err, library.ErrInvalidField):
		return "Input must be a single non-empty line."
	default:
		return err.Error()
	}
}

// settled reports an operation's error, if any, and whether the change took
// effect. A persistence failure still counts: the change is live for this
// session but was not written out.
func (s *session) settled(err error) bool {
	switch {
	case err == nil:
		return true
	case errors.Is(err, library.ErrPersistence):
		s.log.Warn("change not saved", "error", err)
		s.out.Warning("Change applied but not saved: %v", err)
		return true
	default:
		s.out.Error("%s", describe(err))
		return false
	}
}

func (s *session) addMember() error {
	name, err := s.in.nonEmpty("Enter username: ")
	if err != nil {
		return err
	}
	if s.mgr.Roster().Exists(name) {
		s.out.Error("%s", describe(library.ErrDuplicateUsername))
		return nil
	}
	pass, err := s.in.password("Enter password: ")
	if err != nil {
		return err
	}
	var role library.Role
	for {
		answer, err := s.in.nonEmpty("Enter role (admin/librarian/member): ")
		if err != nil {
			return err
		}
		if role, err = library.ParseRole(answer); err == nil {
			break
		}
		s.out.Error("%s", describe(err))
	}

	if _, err := s.mgr.Roster().Register(name, pass, string(role)); s.settled(err) {
		s.out.Success("Member added.")
	}
	return nil
}

func (s *session) addBook() error {
	id, err := s.in.number("Enter book ID: ")
	if err != nil {
		return err
	}
	if _, err := s.mgr.Catalog().Get(id); err == nil {
		s.out.Error("%s", describe(library.ErrDuplicateID))
		return nil
	}
	title, err := s.in.nonEmpty("Enter title: ")
	if err != nil {
		return err
	}
	author, err := s.in.nonEmpty("Enter author: ")
	if err != nil {
		return err
	}
	copies, err := s.in.number("Enter number of copies: ")
	if err != nil {
		return err
	}

	if _, err := s.mgr.Catalog().AddBook(id, title, author, copies); s.settled(err) {
		s.out.Success("Book added.")
	}
	return nil
}

func (s *session) viewBooks() error {
	s.out.Section("Books List")
	if s.out.Books(s.mgr.Catalog().List()) == 0 {
		s.out.Muted("No books in library.")
	}
	return nil
}

func (s *session) searchBook() error {
	s.out.Section("Search Book")
	keyword, err := s.in.nonEmpty("Enter Book ID or Title: ")
	if err != nil {
		return err
	}
	if s.out.Books(s.mgr.Catalog().Search(keyword)) == 0 {
		s.out.Info("No book found matching '%s'.", keyword)
	}
	return nil
}

func (s *session) updateBook() error {
	id, err := s.in.number("Enter book ID to update: ")
	if err != nil {
		return err
	}
	book, err := s.mgr.Catalog().Get(id)
	if err != nil {
		s.out.Error("%s", describe(err))
		return nil
	}
	title, err := s.in.line("Enter new title (leave blank to keep current): ")
	if err != nil {
		return err
	}
	author, err := s.in.line("Enter new author (leave blank to keep current): ")
	if err != nil {
		return err
	}
	total, err := s.in.number("Enter new total copies: ")
	if err != nil {
		return err
	}

	_, err = s.mgr.Catalog().UpdateBook(id, title, author, total)
	if errors.Is(err, library.ErrInvalidResize) {
		if total < 0 {
			s.out.Error("Total copies cannot be negative.")
		} else {
			s.out.Error("Cannot set total copies less than issued copies (%d).", book.Issued())
		}
		return nil
	}
	if s.settled(err) {
		s.out.Success("Book updated.")
	}
	return nil
}

func (s *session) deleteCopies() error {
	if err := s.viewBooks(); err != nil {
		return err
	}
	id, err := s.in.number("Enter Book ID to delete copies from: ")
	if err != nil {
		return err
	}
	book, err := s.mgr.Catalog().Get(id)
	if err != nil {
		s.out.Error("%s", describe(err))
		return nil
	}
	s.out.Printf("Book found: %s by %s\n", book.Title, book.Author)
	s.out.Printf("Total copies: %d, Available copies: %d, Issued copies: %d\n",
		book.TotalCopies, book.AvailableCopies, book.Issued())

	count, err := s.in.number("How many copies should be deleted? ")
	if err != nil {
		return err
	}
	res, err := s.mgr.Catalog().DeleteCopies(id, count)
	if errors.Is(err, library.ErrInsufficientAvailable) {
		s.out.Error("Cannot delete %d copies.", count)
		s.out.Printf("Only %d copies are available to delete. %d copies are currently issued.\n",
			book.AvailableCopies, book.Issued())
		return nil
	}
	if !s.settled(err) {
		return nil
	}
	if res.Removed {
		s.out.Success("All copies removed. Book deleted from library.")
	} else {
		s.out.Success("Deleted %d copies. Remaining total: %d", res.Deleted, res.Remaining)
	}
	return nil
}

func (s *session) issueBook() error {
	id, err := s.in.number("Enter book ID to issue: ")
	if err != nil {
		return err
	}
	// Check the book before asking for a member, as Issue would.
	book, err := s.mgr.Catalog().Get(id)
	if err != nil {
		s.out.Error("%s", describe(err))
		return nil
	}
	if book.AvailableCopies <= 0 {
		s.out.Error("%s", describe(library.ErrNoCopiesAvailable))
		return nil
	}
	member, err := s.in.nonEmpty("Enter member username to issue book to: ")
	if err != nil {
		return err
	}

	if txn, err := s.mgr.Ledger().Issue(id, member); s.settled(err) {
		s.out.Success("Book issued on %s.", library.FormatDate(txn.IssueDate))
	}
	return nil
}

func (s *session) returnBook() error {
	id, err := s.in.number("Enter book ID to return: ")
	if err != nil {
		return err
	}
	member, err := s.in.nonEmpty("Enter member username returning the book: ")
	if err != nil {
		return err
	}

	r, err := s.mgr.Ledger().Return(id, member)
	if !s.settled(err) {
		return nil
	}
	if r.LateDays > 0 {
		s.out.Warning("Book returned late by %d days.", r.LateDays)
		s.out.Println("Fine to be paid: " + strconv.Itoa(r.Fine) + " units.")
	} else {
		s.out.Success("Book returned on time. No fine.")
	}
	return nil
}

func (s *session) viewReports() error {
	s.out.Section("Transactions")
	s.out.Report(s.mgr.Report())
	return nil
}

func (s *session) viewMembers() error {
	s.out.Section("Members List")
	var rows [][]string
	for m := range s.mgr.Roster().List() {
		rows = append(rows, []string{m.Name, string(m.Role)})
	}
	s.out.Table([]string{"Username", "Role"}, []int{20, 15}, rows)
	return nil
}

func (s *session) myBorrowedBooks() error {
	s.out.Section("Borrowed Books for " + s.user.Name)
	var rows [][]string
	for t := range s.mgr.Ledger().ListOpenFor(s.user.Name) {
		rows = append(rows, []string{strconv.Itoa(t.BookID), s.mgr.TitleOf(t.BookID), library.FormatDate(t.IssueDate)})
	}
	if len(rows) == 0 {
		s.out.Muted("No borrowed books.")
		return nil
	}
	s.out.Table([]string{"BookID", "Title", "Issued Date"}, []int{8, 30, 15}, rows)
	return nil
}
