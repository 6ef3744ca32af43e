package library

import (
	"fmt"
	"iter"
	"log/slog"
	"slices"
	"strings"
)

// Roster owns the registered members.
type Roster struct {
	members []Member
	store   MemberStore
	log     *slog.Logger
}

// NewRoster loads the roster from store.
func NewRoster(store MemberStore, log *slog.Logger) (*Roster, error) {
	members, err := store.LoadMembers()
	if err != nil {
		return nil, fmt.Errorf("load members: %w", err)
	}
	log.Debug("roster loaded", "members", len(members))
	return &Roster{members: members, store: store, log: log}, nil
}

func (r *Roster) find(name string) int {
	return slices.IndexFunc(r.members, func(m Member) bool { return strings.EqualFold(m.Name, name) })
}

// Register adds a member. Usernames are unique regardless of case and the
// role is stored lowercased.
func (r *Roster) Register(name, password, role string) (Member, error) {
	if err := checkText("username", name, true); err != nil {
		return Member{}, err
	}
	if err := checkText("password", password, false); err != nil {
		return Member{}, err
	}
	if r.find(name) >= 0 {
		return Member{}, fmt.Errorf("%w: %q", ErrDuplicateUsername, name)
	}
	parsed, err := ParseRole(role)
	if err != nil {
		return Member{}, err
	}

	m := Member{Name: name, Password: password, Role: parsed}
	r.members = append(r.members, m)
	r.log.Info("member registered", "name", name, "role", parsed)
	if err := r.store.SaveMembers(r.members); err != nil {
		r.log.Warn("save members failed", "error", err)
		return m, fmt.Errorf("%w: save members: %v", ErrPersistence, err)
	}
	return m, nil
}

// Authenticate matches name and password, both case-insensitively.
func (r *Roster) Authenticate(name, password string) (Member, error) {
	for _, m := range r.members {
		if strings.EqualFold(m.Name, name) && strings.EqualFold(m.Password, password) {
			return m, nil
		}
	}
	r.log.Debug("authentication failed", "name", name)
	return Member{}, ErrInvalidCredentials
}

// Exists reports whether a member with this name is registered.
func (r *Roster) Exists(name string) bool { return r.find(name) >= 0 }

// Len returns the number of registered members.
func (r *Roster) Len() int { return len(r.members) }

// List yields members in registration order.
func (r *Roster) List() iter.Seq[Member] {
	return func(yield func(Member) bool) {
		for _, m := range r.members {
			if !yield(m) {
				return
			}
		}
	}
}
