package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"messenger-service/internal/models"
)

var ErrUserNotFound = errors.New("user not found")

// UserRepository abstracts user persistence.
type UserRepository interface {
	Upsert(ctx context.Context, clerkID, email, name string, imageURL *string) (models.User, error)
	UpdateProfile(ctx context.Context, clerkID string, name *string, imageURL *string, removeAvatar bool) (models.User, error)
	GetByClerkID(ctx context.Context, clerkID string) (models.User, error)
	ListAll(ctx context.Context) ([]models.User, error)
	MissingClerkIDs(ctx context.Context, clerkIDs []string) ([]string, error)
	ByClerkIDs(ctx context.Context, clerkIDs []string) (map[string]models.User, error)
}

// UserRepo is a sqlx implementation of UserRepository.
type UserRepo struct {
	db *sqlx.DB
}

// NewUserRepo constructs a UserRepo.
func NewUserRepo(db *sqlx.DB) *UserRepo {
	return &UserRepo{db: db}
}

// Upsert creates the user row on first sign-in or patches the profile fields
// on later sign-ins. Keyed on the external identity id, so repeated calls
// with the same arguments are idempotent.
func (r *UserRepo) Upsert(ctx context.Context, clerkID, email, name string, imageURL *string) (models.User, error) {
	var user models.User
	err := r.db.QueryRowxContext(ctx, `INSERT INTO users (clerk_id, email, name, image_url)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (clerk_id) DO UPDATE SET email = EXCLUDED.email, name = EXCLUDED.name, image_url = EXCLUDED.image_url
        RETURNING id, clerk_id, email, name, image_url, created_at`, clerkID, email, name, imageURL).
		StructScan(&user)
	return user, err
}

// UpdateProfile patches name and/or avatar for the user in one statement, so
// concurrent patches touching different fields cannot overwrite each other. A
// nil or blank name leaves it untouched; removeAvatar wins over a provided
// imageURL.
func (r *UserRepo) UpdateProfile(ctx context.Context, clerkID string, name *string, imageURL *string, removeAvatar bool) (models.User, error) {
	var newName *string
	if name != nil {
		if trimmed := strings.TrimSpace(*name); trimmed != "" {
			newName = &trimmed
		}
	}

	var user models.User
	err := r.db.QueryRowxContext(ctx, `UPDATE users SET
            name = COALESCE($2, name),
            image_url = CASE WHEN $3 THEN NULL ELSE COALESCE($4, image_url) END
        WHERE clerk_id=$1
        RETURNING id, clerk_id, email, name, image_url, created_at`, clerkID, newName, removeAvatar, imageURL).
		StructScan(&user)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	return user, err
}

// GetByClerkID fetches a user by external identity id.
func (r *UserRepo) GetByClerkID(ctx context.Context, clerkID string) (models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT id, clerk_id, email, name, image_url, created_at FROM users WHERE clerk_id=$1`, clerkID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	return user, err
}

// ListAll returns every user profile, for discovery.
func (r *UserRepo) ListAll(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := r.db.SelectContext(ctx, &users, `SELECT id, clerk_id, email, name, image_url, created_at FROM users ORDER BY created_at ASC`)
	return users, err
}

// MissingClerkIDs reports which of the given ids have no user row.
func (r *UserRepo) MissingClerkIDs(ctx context.Context, clerkIDs []string) ([]string, error) {
	if len(clerkIDs) == 0 {
		return nil, nil
	}
	var existing []string
	err := r.db.SelectContext(ctx, &existing, `SELECT clerk_id FROM users WHERE clerk_id = ANY($1)`, pq.Array(clerkIDs))
	if err != nil {
		return nil, err
	}

	known := make(map[string]struct{}, len(existing))
	for _, id := range existing {
		known[id] = struct{}{}
	}
	var missing []string
	for _, id := range clerkIDs {
		if _, ok := known[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

// ByClerkIDs fetches multiple users keyed by clerk id in one query.
func (r *UserRepo) ByClerkIDs(ctx context.Context, clerkIDs []string) (map[string]models.User, error) {
	result := make(map[string]models.User, len(clerkIDs))
	if len(clerkIDs) == 0 {
		return result, nil
	}
	var users []models.User
	err := r.db.SelectContext(ctx, &users, `SELECT id, clerk_id, email, name, image_url, created_at FROM users WHERE clerk_id = ANY($1)`, pq.Array(clerkIDs))
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		result[u.ClerkID] = u
	}
	return result, nil
}
