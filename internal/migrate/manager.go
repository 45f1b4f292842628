// Package migrate applies the embedded users schema with goose and bootstraps
// the first administrator account.
package migrate

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pressly/goose/v3"

	"userbase.dev/internal/auth"
	"userbase.dev/internal/ids"
)

//go:embed sql/*.sql
var Migrations embed.FS

const migrationsDir = "sql"

// seams for tests
var (
	gooseUpContext     = goose.UpContext
	gooseDownContext   = goose.DownContext
	gooseStatusContext = goose.StatusContext
)

// Manager runs schema migrations against a Postgres database.
type Manager struct {
	db *sql.DB
}

// NewManager constructs a Manager and points goose at the embedded migrations.
func NewManager(db *sql.DB) (*Manager, error) {
	if db == nil {
		return nil, errors.New("migrate: db is required")
	}
	goose.SetBaseFS(Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return nil, fmt.Errorf("set dialect: %w", err)
	}
	return &Manager{db: db}, nil
}

// Up applies all pending migrations.
func (m *Manager) Up(ctx context.Context) error {
	return gooseUpContext(ctx, m.db, migrationsDir)
}

// Down rolls back the most recent applied migration.
func (m *Manager) Down(ctx context.Context) error {
	return gooseDownContext(ctx, m.db, migrationsDir)
}

// Status prints the applied/pending state of every migration via the goose logger.
func (m *Manager) Status(ctx context.Context) error {
	return gooseStatusContext(ctx, m.db, migrationsDir)
}

// AdminSeed describes the bootstrap administrator.
type AdminSeed struct {
	Username string
	Email    string
	Password string
}

func (s AdminSeed) empty() bool {
	return strings.TrimSpace(s.Username) == "" && strings.TrimSpace(s.Email) == "" && s.Password == ""
}

// SeedAdmin creates the administrator when no account holds its username or
// email yet. It reports whether a row was inserted; re-running is a no-op.
func SeedAdmin(ctx context.Context, store auth.UserStore, hasher *auth.Hasher, seed AdminSeed) (bool, error) {
	if seed.empty() {
		return false, nil
	}
	in := auth.SignupInput{Username: seed.Username, Email: seed.Email, Password: seed.Password}.Normalize()
	if err := auth.Validate(in); err != nil {
		return false, fmt.Errorf("admin seed: %w", err)
	}

	exists, err := store.ExistsByUsernameOrEmail(ctx, in.Username, in.Email)
	if err != nil {
		return false, fmt.Errorf("admin seed: %w", err)
	}
	if exists {
		return false, nil
	}

	hash, err := hasher.Hash(in.Password)
	if err != nil {
		return false, fmt.Errorf("admin seed: hash password: %w", err)
	}
	_, err = store.Insert(ctx, auth.NewUser{
		ID:           ids.New(),
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         auth.RoleAdmin,
		CreatedAt:    time.Now().UTC(),
	})
	if errors.Is(err, auth.ErrConflict) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("admin seed: %w", err)
	}
	return true, nil
}
