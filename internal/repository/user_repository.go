package repository

import (
	"context"
	"errors"
	"fmt"

	"marketplace/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// userRepository implements the UserRepository interface using PostgreSQL.
type userRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewUserRepository creates a new PostgreSQL-backed user repository.
func NewUserRepository(pool *pgxpool.Pool, logger zerolog.Logger) UserRepository {
	return &userRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "user").Logger(),
	}
}

// GetByID retrieves a user.
func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	query := `
		SELECT id, username, role, phone_number, default_address, seller_lat, seller_lng
		FROM users
		WHERE id = $1
	`

	var u model.User
	var lat, lng *float64
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&u.ID, &u.Username, &u.Role, &u.PhoneNumber, &u.DefaultAddress, &lat, &lng,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("user_id", id.String()).Msg("failed to query user")
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	u.Location = model.NewPoint(lat, lng)

	return &u, nil
}

// Create inserts a user.
func (r *userRepository) Create(ctx context.Context, u *model.User) error {
	query := `
		INSERT INTO users (id, username, role, phone_number, default_address, seller_lat, seller_lng)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	lat, lng := u.Location.Nullable()
	_, err := r.pool.Exec(ctx, query, u.ID, u.Username, u.Role, u.PhoneNumber, u.DefaultAddress, lat, lng)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", u.ID.String()).Msg("failed to create user")
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// UpdateContact stores the user's default phone number and address.
func (r *userRepository) UpdateContact(ctx context.Context, id uuid.UUID, phone, address string) error {
	query := `
		UPDATE users
		SET phone_number = $2, default_address = $3
		WHERE id = $1
	`

	if _, err := r.pool.Exec(ctx, query, id, phone, address); err != nil {
		r.logger.Error().Err(err).Str("user_id", id.String()).Msg("failed to update user contact")
		return fmt.Errorf("failed to update user contact: %w", err)
	}

	return nil
}

// UpdateProfile replaces the user's contact details and store location.
func (r *userRepository) UpdateProfile(ctx context.Context, id uuid.UUID, phone, address string, location *model.Point) (bool, error) {
	query := `
		UPDATE users
		SET phone_number = $2, default_address = $3, seller_lat = $4, seller_lng = $5
		WHERE id = $1
	`

	lat, lng := location.Nullable()
	tag, err := r.pool.Exec(ctx, query, id, phone, address, lat, lng)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", id.String()).Msg("failed to update user profile")
		return false, fmt.Errorf("failed to update user profile: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}
