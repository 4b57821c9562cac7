package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/gulfbridge/mortgage-crm-backend/internal/models"
)

// UserRepository handles database operations for broker users
type UserRepository struct {
	db DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create creates a new broker user
func (r *UserRepository) Create(user *models.User) error {
	query := `
		INSERT INTO users (id, email, full_name, phone, role, password_hash, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRow(
		query,
		user.ID, user.Email, user.FullName, user.Phone, user.Role,
		user.PasswordHash, user.Active,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(email string) (*models.User, error) {
	query := `
		SELECT id, email, full_name, phone, role, password_hash, active,
		       last_login_at, created_at, updated_at
		FROM users
		WHERE email = $1
	`

	user := &models.User{}
	err := r.db.Get(user, query, email)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(userID uuid.UUID) (*models.User, error) {
	query := `
		SELECT id, email, full_name, phone, role, password_hash, active,
		       last_login_at, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	user := &models.User{}
	err := r.db.Get(user, query, userID)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// List retrieves all broker users
func (r *UserRepository) List() ([]models.User, error) {
	query := `
		SELECT id, email, full_name, phone, role, password_hash, active,
		       last_login_at, created_at, updated_at
		FROM users
		ORDER BY created_at ASC
	`

	users := []models.User{}
	if err := r.db.Select(&users, query); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// Update applies a partial update to a broker user
func (r *UserRepository) Update(userID uuid.UUID, req *models.UpdateUserRequest) error {
	query := `
		UPDATE users
		SET full_name = COALESCE($2, full_name),
		    phone = COALESCE($3, phone),
		    role = COALESCE($4, role),
		    active = COALESCE($5, active),
		    updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.Exec(query, userID, req.FullName, req.Phone, req.Role, req.Active)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// TouchLastLogin stamps the last successful login time
func (r *UserRepository) TouchLastLogin(userID uuid.UUID, at time.Time) error {
	_, err := r.db.Exec(`UPDATE users SET last_login_at = $2 WHERE id = $1`, userID, at)
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}
	return nil
}
