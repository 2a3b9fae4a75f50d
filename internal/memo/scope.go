package memo

import "strings"

// Identity is the requester as supplied by the identity provider.
type Identity struct {
	UserID   int64
	Username string
}

func (id Identity) Authenticated() bool {
	return id.UserID > 0 && strings.TrimSpace(id.Username) != ""
}

// Scope restricts store access to a single owner. Stores must add the owner
// to every memo statement; the only way to obtain a usable Scope is Authorize.
type Scope struct {
	owner int64
}

func Authorize(id Identity) (Scope, error) {
	if !id.Authenticated() {
		return Scope{}, ErrUnauthenticated
	}
	return Scope{owner: id.UserID}, nil
}

func (s Scope) Owner() int64 {
	return s.owner
}

func (s Scope) Valid() bool {
	return s.owner > 0
}

// Check is the guard stores call before touching data.
func (s Scope) Check() error {
	if !s.Valid() {
		return ErrUnauthenticated
	}
	return nil
}

// Owns reports whether m belongs to the scope's owner.
func (s Scope) Owns(m Memo) bool {
	return s.Valid() && m.OwnerID == s.owner
}
