package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"userbase.dev/internal/auth"
)

var _ auth.UserStore = (*Store)(nil)

// Store implements auth.UserStore with in-process concurrency safety. It
// enforces the same username/email uniqueness the Postgres schema does.
type Store struct {
	mu      sync.RWMutex
	byID    map[string]*auth.User
	byName  map[string]string
	byEmail map[string]string
}

// New creates an empty store.
func New() *Store {
	return &Store{
		byID:    make(map[string]*auth.User),
		byName:  make(map[string]string),
		byEmail: make(map[string]string),
	}
}

func (s *Store) FindByUsernameOrEmail(ctx context.Context, identifier string) (*auth.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if id, ok := s.byName[identifier]; ok {
		return s.copyOf(id), nil
	}
	if id, ok := s.byEmail[strings.ToLower(identifier)]; ok {
		return s.copyOf(id), nil
	}
	return nil, auth.ErrNotFound
}

func (s *Store) FindByID(ctx context.Context, id string) (*auth.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.byID[id]; !ok {
		return nil, auth.ErrNotFound
	}
	return s.copyOf(id), nil
}

func (s *Store) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, nameTaken := s.byName[username]
	_, emailTaken := s.byEmail[strings.ToLower(email)]
	return nameTaken || emailTaken, nil
}

func (s *Store) Insert(ctx context.Context, nu auth.NewUser) (*auth.User, error) {
	email := strings.ToLower(nu.Email)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byName[nu.Username]; ok {
		return nil, auth.ErrConflict
	}
	if _, ok := s.byEmail[email]; ok {
		return nil, auth.ErrConflict
	}
	if _, ok := s.byID[nu.ID]; ok {
		return nil, auth.ErrConflict
	}
	u := &auth.User{
		ID:           nu.ID,
		Username:     nu.Username,
		Email:        email,
		PasswordHash: nu.PasswordHash,
		Role:         nu.Role,
		CreatedAt:    nu.CreatedAt,
	}
	s.byID[u.ID] = u
	s.byName[u.Username] = u.ID
	s.byEmail[u.Email] = u.ID
	out := *u
	return &out, nil
}

func (s *Store) UpdateRole(ctx context.Context, id string, role auth.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[id]
	if !ok {
		return auth.ErrNotFound
	}
	u.Role = role
	return nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[id]
	if !ok {
		return auth.ErrNotFound
	}
	delete(s.byID, id)
	delete(s.byName, u.Username)
	delete(s.byEmail, u.Email)
	return nil
}

func (s *Store) ListAll(ctx context.Context) ([]auth.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := make([]auth.User, 0, len(s.byID))
	for _, u := range s.byID {
		cp := *u
		cp.PasswordHash = ""
		users = append(users, cp)
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].ID > users[j].ID
		}
		return users[i].CreatedAt.After(users[j].CreatedAt)
	})
	return users, nil
}

func (s *Store) Ping(ctx context.Context) error { return ctx.Err() }

// caller holds s.mu.
func (s *Store) copyOf(id string) *auth.User {
	out := *s.byID[id]
	return &out
}
