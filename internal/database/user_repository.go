package database

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/bookit/booking-backend/internal/models"
	"github.com/bookit/booking-backend/pkg/apperrors"
)

// UserRepository handles database operations for users
type UserRepository struct {
	db DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user
func (r *UserRepository) Create(user *models.User) error {
	query := `
		INSERT INTO users (id, name, email, password_hash, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.Role == "" {
		user.Role = models.RoleUser
	}

	err := r.db.QueryRow(
		query,
		user.ID, user.Name, user.Email, user.PasswordHash, user.Role,
	).Scan(&user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.Conflict("email is already registered")
		}
		if isConnectionFailure(err) {
			return apperrors.Unavailable("user store")
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(userID uuid.UUID) (*models.User, error) {
	query := `
		SELECT id, name, email, password_hash, role, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	user, err := r.scanUser(r.db.QueryRow(query, userID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.NotFound("User")
		}
		if isConnectionFailure(err) {
			return nil, apperrors.Unavailable("user store")
		}
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}

	return user, nil
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(email string) (*models.User, error) {
	query := `
		SELECT id, name, email, password_hash, role, created_at, updated_at
		FROM users
		WHERE email = $1
	`

	user, err := r.scanUser(r.db.QueryRow(query, email))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.NotFound("User")
		}
		if isConnectionFailure(err) {
			return nil, apperrors.Unavailable("user store")
		}
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}

	return user, nil
}

// Update persists the user's profile fields
func (r *UserRepository) Update(user *models.User) error {
	query := `
		UPDATE users
		SET name = $2, email = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.db.QueryRow(query, user.ID, user.Name, user.Email).Scan(&user.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return apperrors.NotFound("User")
		}
		if isUniqueViolation(err) {
			return apperrors.Conflict("email is already registered")
		}
		if isConnectionFailure(err) {
			return apperrors.Unavailable("user store")
		}
		return fmt.Errorf("failed to update user: %w", err)
	}

	return nil
}

// scanUser scans a single user
func (r *UserRepository) scanUser(row scanner) (*models.User, error) {
	user := &models.User{}

	err := row.Scan(
		&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.Role,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return user, nil
}
