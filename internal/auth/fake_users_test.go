package auth

import (
	"context"
	"sort"
	"sync"
	"time"
)

type memUsers struct {
	mu     sync.Mutex
	nextID int64
	byName map[string]User
}

func newMemUsers() *memUsers {
	return &memUsers{byName: make(map[string]User)}
}

func (m *memUsers) CreateUser(_ context.Context, u User) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byName[u.Username]; ok {
		return User{}, ErrUserExists
	}
	m.nextID++
	u.ID = m.nextID
	m.byName[u.Username] = u
	return u, nil
}

func (m *memUsers) UserByName(_ context.Context, username string) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byName[username]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return u, nil
}

func (m *memUsers) UserByID(_ context.Context, id int64) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byName {
		if u.ID == id {
			return u, nil
		}
	}
	return User{}, ErrUserNotFound
}

func (m *memUsers) SetPasswordHash(_ context.Context, username, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byName[username]
	if !ok {
		return ErrUserNotFound
	}
	u.PasswordHash = hash
	m.byName[username] = u
	return nil
}

func (m *memUsers) TouchLastLogin(_ context.Context, id int64, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for name, u := range m.byName {
		if u.ID == id {
			u.LastLogin = &at
			m.byName[name] = u
			return nil
		}
	}
	return ErrUserNotFound
}

func (m *memUsers) ListUsers(_ context.Context) ([]User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]User, 0, len(m.byName))
	for _, u := range m.byName {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (m *memUsers) DeleteUser(_ context.Context, username string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byName[username]; !ok {
		return ErrUserNotFound
	}
	delete(m.byName, username)
	return nil
}
