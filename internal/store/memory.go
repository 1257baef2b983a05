package store

import (
	"context"
	"sync"
	"time"
)

// MemoryUsers is an in-memory Users implementation with the same active-only
// read semantics as the MongoDB store. Used by tests.
type MemoryUsers struct {
	mu    sync.RWMutex
	users map[string]*User
	now   func() time.Time
}

var _ Users = (*MemoryUsers)(nil)

func NewMemoryUsers() *MemoryUsers {
	return &MemoryUsers{
		users: map[string]*User{},
		now:   time.Now,
	}
}

func (s *MemoryUsers) Create(_ context.Context, user *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == user.Email {
			return ErrDuplicateEmail
		}
	}

	now := s.now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.RefreshTokens == nil {
		user.RefreshTokens = []string{}
	}

	s.users[user.ID] = cloneUser(user)
	return nil
}

func (s *MemoryUsers) GetByID(_ context.Context, id string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok || !u.Active {
		return nil, ErrNotFound
	}
	return cloneUser(u), nil
}

func (s *MemoryUsers) GetByEmail(_ context.Context, email string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	email = NormalizeEmail(email)
	for _, u := range s.users {
		if u.Email == email && u.Active {
			return cloneUser(u), nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryUsers) List(_ context.Context) ([]*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []*User{}
	for _, u := range s.users {
		if u.Active {
			out = append(out, cloneUser(u))
		}
	}
	return out, nil
}

func (s *MemoryUsers) Update(_ context.Context, id string, upd UserUpdate) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok || !u.Active {
		return nil, ErrNotFound
	}

	if upd.Email != nil {
		email := NormalizeEmail(*upd.Email)
		for otherID, other := range s.users {
			if otherID != id && other.Email == email {
				return nil, ErrDuplicateEmail
			}
		}
		u.Email = email
	}
	if upd.Name != nil {
		u.Name = *upd.Name
	}
	if upd.Photo != nil {
		u.Photo = *upd.Photo
	}
	if upd.Role != nil {
		u.Role = *upd.Role
	}
	u.UpdatedAt = s.now().UTC()

	return cloneUser(u), nil
}

func (s *MemoryUsers) SetRefreshTokens(_ context.Context, id string, tokens []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok || !u.Active {
		return ErrNotFound
	}

	if tokens == nil {
		tokens = []string{}
	}
	u.RefreshTokens = append([]string{}, tokens...)
	u.UpdatedAt = s.now().UTC()
	return nil
}

func (s *MemoryUsers) Deactivate(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok || !u.Active {
		return ErrNotFound
	}
	u.Active = false
	u.RefreshTokens = []string{}
	u.UpdatedAt = s.now().UTC()
	return nil
}

func (s *MemoryUsers) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return ErrNotFound
	}
	delete(s.users, id)
	return nil
}

func cloneUser(u *User) *User {
	c := *u
	c.RefreshTokens = append([]string{}, u.RefreshTokens...)
	return &c
}
