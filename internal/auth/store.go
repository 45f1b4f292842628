package auth

import "context"

// UserStore describes the persistence operations required by the auth subsystem.
//
// Lookups return ErrNotFound when no row matches. Insert returns ErrConflict when
// a uniqueness constraint on username or email rejects the row; that constraint,
// not ExistsByUsernameOrEmail, is what keeps concurrent signups from duplicating.
type UserStore interface {
	FindByUsernameOrEmail(ctx context.Context, identifier string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
	Insert(ctx context.Context, u NewUser) (*User, error)
	UpdateRole(ctx context.Context, id string, role Role) error
	Delete(ctx context.Context, id string) error
	// ListAll returns every user without password hashes.
	ListAll(ctx context.Context) ([]User, error)
	Ping(ctx context.Context) error
}
