package library

// Operation names a user-facing command that is subject to role checks.
type Operation int

const (
	OpRegisterMember Operation = iota
	OpAddBook
	OpListBooks
	OpUpdateBook
	OpDeleteCopies
	OpSearchBooks
	OpIssueBook
	OpReturnBook
	OpViewReports
	OpViewMembers
	OpViewOwnLoans
)

var operationNames = map[Operation]string{
	OpRegisterMember: "register-member",
	OpAddBook:        "add-book",
	OpListBooks:      "list-books",
	OpUpdateBook:     "update-book",
	OpDeleteCopies:   "delete-copies",
	OpSearchBooks:    "search-books",
	OpIssueBook:      "issue-book",
	OpReturnBook:     "return-book",
	OpViewReports:    "view-reports",
	OpViewMembers:    "view-members",
	OpViewOwnLoans:   "view-own-loans",
}

func (o Operation) String() string {
	if n, ok := operationNames[o]; ok {
		return n
	}
	return "unknown"
}

var memberOps = map[Operation]bool{
	OpListBooks:    true,
	OpSearchBooks:  true,
	OpViewOwnLoans: true,
}

// Allows reports whether role may perform op. Admins may do everything,
// librarians everything but registering members, and members may only
// browse the catalog and their own loans.
func Allows(role Role, op Operation) bool {
	switch role {
	case RoleAdmin:
		return true
	case RoleLibrarian:
		return op != OpRegisterMember
	case RoleMember:
		return memberOps[op]
	default:
		return false
	}
}
