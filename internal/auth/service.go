package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"userbase.dev/internal/ids"
)

// Service orchestrates signup, login, profile lookup and admin user management.
type Service struct {
	store  UserStore
	hasher *Hasher
	tokens *TokenIssuer
	now    func() time.Time
	newID  func() string
}

// ServiceOption configures Service behavior.
type ServiceOption func(*Service)

// WithClock overrides time source (useful for tests).
func WithClock(fn func() time.Time) ServiceOption {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
		}
	}
}

// WithIDGenerator overrides the user id generator.
func WithIDGenerator(fn func() string) ServiceOption {
	return func(s *Service) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// NewService constructs Service. All collaborators are required.
func NewService(store UserStore, hasher *Hasher, tokens *TokenIssuer, opts ...ServiceOption) (*Service, error) {
	if store == nil {
		return nil, errors.New("auth: user store is required")
	}
	if hasher == nil {
		return nil, errors.New("auth: hasher is required")
	}
	if tokens == nil {
		return nil, errMissingSecret
	}
	svc := &Service{
		store:  store,
		hasher: hasher,
		tokens: tokens,
		now:    time.Now,
		newID:  ids.New,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Signup validates input, creates a user with the default role and issues a token.
func (s *Service) Signup(ctx context.Context, in SignupInput) (AuthResult, error) {
	in = in.Normalize()
	if err := Validate(in); err != nil {
		return AuthResult{}, err
	}

	exists, err := s.store.ExistsByUsernameOrEmail(ctx, in.Username, in.Email)
	if err != nil {
		return AuthResult{}, storeErr("exists", err)
	}
	if exists {
		return AuthResult{}, ErrConflict
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return AuthResult{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.store.Insert(ctx, NewUser{
		ID:           s.newID(),
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         RoleUser,
		CreatedAt:    s.now().UTC(),
	})
	if err != nil {
		if errors.Is(err, ErrConflict) {
			return AuthResult{}, ErrConflict
		}
		return AuthResult{}, storeErr("insert", err)
	}

	return s.issue(*user)
}

// Login verifies credentials. Unknown identifiers and wrong passwords both
// yield ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, in LoginInput) (AuthResult, error) {
	in.Identifier = strings.TrimSpace(in.Identifier)
	if err := Validate(in); err != nil {
		return AuthResult{}, err
	}

	user, err := s.store.FindByUsernameOrEmail(ctx, in.Identifier)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.hasher.Burn(in.Password)
			return AuthResult{}, ErrInvalidCredentials
		}
		return AuthResult{}, storeErr("find", err)
	}
	if !s.hasher.Verify(in.Password, user.PasswordHash) {
		return AuthResult{}, ErrInvalidCredentials
	}

	return s.issue(*user)
}

// Authenticate verifies a bearer token and returns the principal it names.
func (s *Service) Authenticate(token string) (Principal, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return Principal{}, err
	}
	return claims.Principal(), nil
}

// Profile loads the current record for the subject of a valid token.
func (s *Service) Profile(ctx context.Context, userID string) (User, error) {
	user, err := s.store.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, ErrNotFound
		}
		return User{}, storeErr("find", err)
	}
	return *user, nil
}

// ListUsers returns every account.
func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	users, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, storeErr("list", err)
	}
	for i := range users {
		users[i].PasswordHash = ""
	}
	return users, nil
}

// UpdateRole changes the role of the given user.
func (s *Service) UpdateRole(ctx context.Context, userID, rawRole string) (Role, error) {
	role, err := ParseRole(rawRole)
	if err != nil {
		return "", &ValidationError{Violations: []string{"Role must be either 'user' or 'admin'"}}
	}
	if err := s.store.UpdateRole(ctx, userID, role); err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", ErrNotFound
		}
		return "", storeErr("update role", err)
	}
	return role, nil
}

// DeleteUser removes the given user.
func (s *Service) DeleteUser(ctx context.Context, userID string) error {
	if err := s.store.Delete(ctx, userID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return storeErr("delete", err)
	}
	return nil
}

// Ping checks the store is reachable.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func (s *Service) issue(user User) (AuthResult, error) {
	token, expiresAt, err := s.tokens.Issue(user)
	if err != nil {
		return AuthResult{}, err
	}
	user.PasswordHash = ""
	return AuthResult{User: user, Token: token, ExpiresAt: expiresAt}, nil
}
