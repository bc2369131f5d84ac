package users

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/federicogioffre/finance-tracker/internal/domain"
)

var (
	ErrNotFound  = errors.New("user not found")
	ErrDuplicate = errors.New("email already registered")
	ErrInvalid   = errors.New("invalid signup")
)

const (
	uniqueViolation   = "23505"
	minPasswordLength = 8
)

const columns = `id::text, email, password_hash, full_name, is_active, created_at`

type Repo struct {
	Pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{Pool: pool}
}

type SignupInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

// Normalize lowercases the email and checks the password length.
func (in *SignupInput) Normalize() error {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.FullName = strings.TrimSpace(in.FullName)
	if in.Email == "" || in.Password == "" {
		return fmt.Errorf("%w: email and password required", ErrInvalid)
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return fmt.Errorf("%w: invalid email", ErrInvalid)
	}
	if len(in.Password) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", ErrInvalid, minPasswordLength)
	}
	return nil
}

func scanUser(row pgx.Row) (domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &u.IsActive, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, ErrNotFound
	}
	return u, err
}

func (r *Repo) Create(ctx context.Context, email, passwordHash, fullName string) (domain.User, error) {
	u, err := scanUser(r.Pool.QueryRow(ctx,
		`INSERT INTO users (email, password_hash, full_name)
		 VALUES ($1, $2, $3)
		 RETURNING `+columns,
		email, passwordHash, fullName,
	))
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return domain.User{}, ErrDuplicate
	}
	return u, err
}

func (r *Repo) ByEmail(ctx context.Context, email string) (domain.User, error) {
	return scanUser(r.Pool.QueryRow(ctx,
		`SELECT `+columns+` FROM users WHERE email = $1`,
		strings.ToLower(strings.TrimSpace(email)),
	))
}

func (r *Repo) Get(ctx context.Context, id string) (domain.User, error) {
	return scanUser(r.Pool.QueryRow(ctx,
		`SELECT `+columns+` FROM users WHERE id = $1::uuid`, id,
	))
}
