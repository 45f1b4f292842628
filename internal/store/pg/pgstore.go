package pg

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"userbase.dev/internal/auth"
)

const pgErrUniqueViolation = "23505"

var _ auth.UserStore = (*Store)(nil)

// Store implements auth.UserStore on top of a single users table.
type Store struct {
	db *sql.DB
}

// PoolOptions tunes the database/sql pool.
type PoolOptions struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// Open connects using the pgx stdlib driver.
func Open(dsn string, opts PoolOptions) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if opts.MaxOpenConns <= 0 {
		opts.MaxOpenConns = 20
	}
	if opts.MaxIdleConns <= 0 {
		opts.MaxIdleConns = opts.MaxOpenConns / 2
	}
	if opts.ConnMaxLifetime <= 0 {
		opts.ConnMaxLifetime = 15 * time.Minute
	}
	if opts.ConnMaxIdleTime <= 0 {
		opts.ConnMaxIdleTime = 5 * time.Minute
	}
	db.SetMaxOpenConns(opts.MaxOpenConns)
	db.SetMaxIdleConns(opts.MaxIdleConns)
	db.SetConnMaxLifetime(opts.ConnMaxLifetime)
	db.SetConnMaxIdleTime(opts.ConnMaxIdleTime)
	return &Store{db: db}, nil
}

// New wraps an existing handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Ping(ctx context.Context) error {
	if s.db == nil {
		return errors.New("database connection unavailable")
	}
	return s.db.PingContext(ctx)
}

func (s *Store) FindByUsernameOrEmail(ctx context.Context, identifier string) (*auth.User, error) {
	row := s.db.QueryRowContext(ctx, `
		select id, username, email, password_hash, role, created_at
		from users
		where username = $1 or email = $2
		limit 1
	`, identifier, strings.ToLower(identifier))
	return scanUser(row)
}

func (s *Store) FindByID(ctx context.Context, id string) (*auth.User, error) {
	row := s.db.QueryRowContext(ctx, `
		select id, username, email, password_hash, role, created_at
		from users
		where id = $1
	`, id)
	return scanUser(row)
}

func (s *Store) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		select exists(select 1 from users where username = $1 or email = $2)
	`, username, strings.ToLower(email)).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func (s *Store) Insert(ctx context.Context, nu auth.NewUser) (*auth.User, error) {
	row := s.db.QueryRowContext(ctx, `
		insert into users (id, username, email, password_hash, role, created_at)
		values ($1, $2, $3, $4, $5, $6)
		returning id, username, email, password_hash, role, created_at
	`, nu.ID, nu.Username, strings.ToLower(nu.Email), nu.PasswordHash, string(nu.Role), nu.CreatedAt)
	user, err := scanUser(row)
	if err != nil {
		if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrUniqueViolation {
			return nil, auth.ErrConflict
		}
		return nil, err
	}
	return user, nil
}

func (s *Store) UpdateRole(ctx context.Context, id string, role auth.Role) error {
	res, err := s.db.ExecContext(ctx, `update users set role = $1 where id = $2`, string(role), id)
	if err != nil {
		return err
	}
	return expectAffected(res)
}

func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `delete from users where id = $1`, id)
	if err != nil {
		return err
	}
	return expectAffected(res)
}

func (s *Store) ListAll(ctx context.Context) ([]auth.User, error) {
	rows, err := s.db.QueryContext(ctx, `
		select id, username, email, role, created_at
		from users
		order by created_at desc
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []auth.User
	for rows.Next() {
		var (
			u    auth.User
			role string
		)
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &role, &u.CreatedAt); err != nil {
			return nil, err
		}
		u.Role = auth.Role(role)
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*auth.User, error) {
	var (
		u    auth.User
		role string
	)
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &role, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, auth.ErrNotFound
		}
		return nil, err
	}
	u.Role = auth.Role(role)
	return &u, nil
}

func expectAffected(res sql.Result) error {
	aff, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if aff == 0 {
		return auth.ErrNotFound
	}
	return nil
}

func maybePgError(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr, true
	}
	return nil, false
}
