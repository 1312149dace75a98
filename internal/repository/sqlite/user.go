package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/colaunch/colaunch-server/internal/apperror"
	"github.com/colaunch/colaunch-server/internal/model"
	"github.com/colaunch/colaunch-server/internal/repository"
)

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*DB)(nil)

const userColumns = `id, email, name, photo, type, twitter, linkedin, created_at, updated_at`

// UpsertUserByEmail implements the OAuth-callback insert-if-absent flow.
// An existing row keeps its internal ID and type; only name and photo are
// refreshed (the photo check mirrors the callback's "update photo if it
// changed" behavior; a blind update of both is equivalent and simpler).
func (db *DB) UpsertUserByEmail(ctx context.Context, user *model.User) error {
	var existing model.User
	err := db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, user.Email,
	).Scan(
		&existing.ID, &existing.Email, &existing.Name, &existing.Photo, &existing.Type,
		&existing.Twitter, &existing.LinkedIn, &existing.CreatedAt, &existing.UpdatedAt,
	)
	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("sqlite: looking up user by email %s: %w", user.Email, err)
	}

	if err == nil {
		user.ID = existing.ID
		user.Type = existing.Type
		user.Twitter = existing.Twitter
		user.LinkedIn = existing.LinkedIn
		user.CreatedAt = existing.CreatedAt
		user.UpdatedAt = time.Now()
		if user.Name == "" {
			user.Name = existing.Name
		}

		_, err = db.conn.ExecContext(ctx,
			`UPDATE users SET name = ?, photo = ?, updated_at = ? WHERE id = ?`,
			user.Name, user.Photo, user.UpdatedAt, user.ID,
		)
		if err != nil {
			return fmt.Errorf("sqlite: updating user %s: %w", user.ID, err)
		}
		return nil
	}

	now := time.Now()
	user.ID = xid.New().String()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Type == "" {
		user.Type = model.UserTypeFounder
	}

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO users (id, email, name, photo, type, twitter, linkedin, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID, user.Email, user.Name, user.Photo, user.Type,
		user.Twitter, user.LinkedIn, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting user (email=%s): %w", user.Email, err)
	}

	return nil
}

func (db *DB) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	user, err := db.scanUserRow(db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id,
	))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", id)
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", id, err)
	}
	return user, nil
}

func (db *DB) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	user, err := db.scanUserRow(db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email,
	))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", email)
		}
		return nil, fmt.Errorf("sqlite: getting user by email %s: %w", email, err)
	}
	return user, nil
}

// UpdateUser saves profile edits (name, photo, type, social links). Email
// is the upsert key and stays immutable.
func (db *DB) UpdateUser(ctx context.Context, user *model.User) error {
	user.UpdatedAt = time.Now()

	result, err := db.conn.ExecContext(ctx,
		`UPDATE users SET name = ?, photo = ?, type = ?, twitter = ?, linkedin = ?, updated_at = ?
		 WHERE id = ?`,
		user.Name, user.Photo, user.Type, user.Twitter, user.LinkedIn, user.UpdatedAt, user.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating user %s: %w", user.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("user", user.ID)
	}

	return nil
}

func (db *DB) scanUserRow(row rowScanner) (*model.User, error) {
	var u model.User
	err := row.Scan(
		&u.ID, &u.Email, &u.Name, &u.Photo, &u.Type,
		&u.Twitter, &u.LinkedIn, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
