package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Triltsch/DiWeiWei-Nano-Market/internal/domain"
	"github.com/Triltsch/DiWeiWei-Nano-Market/pkg/database"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

const userColumns = `id, email, username, password_hash, first_name, last_name, bio,
		preferred_language, status, role, email_verified, verified_at,
		login_attempts, locked_until, created_at, updated_at, last_login`

// userRepository implements UserRepository on PostgreSQL
type userRepository struct {
	db *database.Postgres
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.Postgres) UserRepository {
	return &userRepository{db: db}
}

// Create creates a new user in the database
func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (id, email, username, password_hash, first_name, last_name, bio,
			preferred_language, status, role, email_verified, verified_at,
			login_attempts, locked_until, created_at, updated_at, last_login)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`

	if user.ID == "" {
		user.ID = uuid.New().String()
	}

	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = now
	}

	_, err := r.db.DB.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.Username,
		user.PasswordHash,
		user.FirstName,
		user.LastName,
		user.Bio,
		user.PreferredLanguage,
		user.Status,
		user.Role,
		user.EmailVerified,
		user.VerifiedAt,
		user.LoginAttempts,
		user.LockedUntil,
		user.CreatedAt,
		user.UpdatedAt,
		user.LastLogin,
	)

	if err != nil {
		if dupErr := mapUniqueViolation(err); dupErr != nil {
			return dupErr
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetByEmail retrieves a user by email. Callers pass the lowercased
// email; stored values are already normalized.
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE email = $1`, userColumns)
	return r.getOne(ctx, query, email)
}

// GetByID retrieves a user by ID
func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1`, userColumns)
	return r.getOne(ctx, query, id)
}

// GetByUsername retrieves a user by username
func (r *userRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE username = $1`, userColumns)
	return r.getOne(ctx, query, username)
}

func (r *userRepository) getOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	user := &domain.User{}
	var (
		firstName, lastName, bio       sql.NullString
		verifiedAt, lockedUntil, login sql.NullTime
	)

	err := r.db.DB.QueryRowContext(ctx, query, arg).Scan(
		&user.ID,
		&user.Email,
		&user.Username,
		&user.PasswordHash,
		&firstName,
		&lastName,
		&bio,
		&user.PreferredLanguage,
		&user.Status,
		&user.Role,
		&user.EmailVerified,
		&verifiedAt,
		&user.LoginAttempts,
		&lockedUntil,
		&user.CreatedAt,
		&user.UpdatedAt,
		&login,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user not found: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if firstName.Valid {
		user.FirstName = &firstName.String
	}
	if lastName.Valid {
		user.LastName = &lastName.String
	}
	if bio.Valid {
		user.Bio = &bio.String
	}
	if verifiedAt.Valid {
		t := verifiedAt.Time
		user.VerifiedAt = &t
	}
	if lockedUntil.Valid {
		t := lockedUntil.Time
		user.LockedUntil = &t
	}
	if login.Valid {
		t := login.Time
		user.LastLogin = &t
	}

	return user, nil
}

// Update persists the mutable fields of an existing user
func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	query := `
		UPDATE users
		SET email = $2, username = $3, password_hash = $4, first_name = $5, last_name = $6,
			bio = $7, preferred_language = $8, status = $9, role = $10,
			email_verified = $11, verified_at = $12, login_attempts = $13,
			locked_until = $14, last_login = $15, updated_at = $16
		WHERE id = $1
	`

	user.UpdatedAt = time.Now()

	result, err := r.db.DB.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.Username,
		user.PasswordHash,
		user.FirstName,
		user.LastName,
		user.Bio,
		user.PreferredLanguage,
		user.Status,
		user.Role,
		user.EmailVerified,
		user.VerifiedAt,
		user.LoginAttempts,
		user.LockedUntil,
		user.LastLogin,
		user.UpdatedAt,
	)

	if err != nil {
		if dupErr := mapUniqueViolation(err); dupErr != nil {
			return dupErr
		}
		return fmt.Errorf("failed to update user: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("user with id %s not found: %w", user.ID, ErrNotFound)
	}

	return nil
}

// mapUniqueViolation maps a pq unique_violation to the matching
// duplicate sentinel, or returns nil for any other error.
func mapUniqueViolation(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != "23505" {
		return nil
	}
	if strings.Contains(pqErr.Constraint, "username") {
		return fmt.Errorf("duplicate username: %w", ErrDuplicateUsername)
	}
	return fmt.Errorf("duplicate email: %w", ErrDuplicateEmail)
}
