package main

import (
	"errors"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"library-ledger/library"
)

// session is one interactive run of the menu: the home menu, then a role
// menu for whoever logs in.
type session struct {
	mgr *library.LibraryManager
	in  *prompter
	out *printer
	log *slog.Logger

	base *slog.Logger
	user library.Member
}

func newSession(mgr *library.LibraryManager, in io.Reader, out io.Writer, log *slog.Logger) *session {
	log = log.With("session", uuid.NewString())
	return &session{
		mgr:  mgr,
		in:   newPrompter(in, out),
		out:  newPrinter(out),
		log:  log,
		base: log,
	}
}

// command is one role menu entry.
type command struct {
	label string
	op    library.Operation
	run   func(*session) error
}

var commands = []command{
	{"Add Member", library.OpRegisterMember, (*session).addMember},
	{"Add Book", library.OpAddBook, (*session).addBook},
	{"View Books", library.OpListBooks, (*session).viewBooks},
	{"Update Book", library.OpUpdateBook, (*session).updateBook},
	{"Delete Book Copies", library.OpDeleteCopies, (*session).deleteCopies},
	{"Issue Book", library.OpIssueBook, (*session).issueBook},
	{"Return Book", library.OpReturnBook, (*session).returnBook},
	{"View Reports", library.OpViewReports, (*session).viewReports},
	{"View Members", library.OpViewMembers, (*session).viewMembers},
	{"Search Book", library.OpSearchBooks, (*session).searchBook},
	{"My Borrowed Books", library.OpViewOwnLoans, (*session).myBorrowedBooks},
}

// menuFor returns the commands role may run, in menu order.
func menuFor(role library.Role) []command {
	var out []command
	for _, c := range commands {
		if library.Allows(role, c.op) {
			out = append(out, c)
		}
	}
	return out
}

// Run shows the home menu until the user exits or input runs out.
func (s *session) Run() error {
	s.log.Debug("session started")
	for {
		s.out.Menu("LIBRARY MAIN MENU", []string{"Login", "Create Account", "Exit"})
		choice, err := s.in.number("Choose an option: ")
		if err != nil {
			return s.end(err)
		}
		switch choice {
		case 1:
			if err := s.login(); err != nil {
				return s.end(err)
			}
			if err := s.roleMenu(); err != nil {
				return s.end(err)
			}
		case 2:
			if err := s.addMember(); err != nil {
				return s.end(err)
			}
		case 0, 3:
			s.out.Println("Exiting... Goodbye!")
			return s.end(nil)
		default:
			s.out.Error("Invalid option. Try again.")
		}
	}
}

func (s *session) end(err error) error {
	if errors.Is(err, io.EOF) {
		s.out.Println()
		err = nil
	}
	s.log.Debug("session ended", "error", err)
	return err
}

// login prompts until a registered name and password match.
func (s *session) login() error {
	for {
		name, err := s.in.nonEmpty("Username: ")
		if err != nil {
			return err
		}
		pass, err := s.in.password("Password: ")
		if err != nil {
			return err
		}
		m, err := s.mgr.Roster().Authenticate(name, pass)
		if err != nil {
			s.log.Info("login failed", "user", name)
			s.out.Error("%s", describe(err))
			continue
		}
		s.user = m
		s.log = s.base.With("user", m.Name, "role", m.Role)
		s.log.Info("login")
		s.out.Success("Login successful (%s).", m.Role)
		return nil
	}
}

func (s *session) roleMenu() error {
	menu := menuFor(s.user.Role)
	labels := make([]string, 0, len(menu)+1)
	for _, c := range menu {
		labels = append(labels, c.label)
	}
	labels = append(labels, "Logout")
	title := "WELCOME " + s.user.Name + " (" + string(s.user.Role) + ")"

	for {
		s.out.Menu(title, labels)
		choice, err := s.in.number("Enter choice: ")
		if err != nil {
			return err
		}
		switch {
		case choice == 0 || choice == len(menu)+1:
			s.log.Info("logout")
			s.out.Println("Logging out...")
			s.user = library.Member{}
			s.log = s.base
			return nil
		case choice < 1 || choice > len(menu):
			s.out.Error("Invalid choice.")
		default:
			c := menu[choice-1]
			s.log.Debug("command", "op", c.op)
			if err := c.run(s); err != nil {
				return err
			}
		}
	}
}
