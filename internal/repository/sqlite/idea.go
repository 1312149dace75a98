package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/colaunch/colaunch-server/internal/apperror"
	"github.com/colaunch/colaunch-server/internal/model"
	"github.com/colaunch/colaunch-server/internal/repository"
)

// compile-time check that *DB implements repository.IdeaRepository
var _ repository.IdeaRepository = (*DB)(nil)

const ideaColumns = `i.id, i.user_id, i.title, i.description, i.media, i.upvotes,
	i.downvotes, i.industry, i.tags, i.address_id, i.verified, i.embedded,
	i.created_at, i.updated_at,
	a.id, a.country, a.state, a.suburb`

// Create inserts an idea together with its address detail row. Both writes
// happen in one transaction so an idea can never exist without an address.
func (db *DB) Create(ctx context.Context, idea *model.Idea) error {
	now := time.Now()
	idea.ID = xid.New().String()
	idea.Address.ID = xid.New().String()
	idea.AddressID = idea.Address.ID
	idea.CreatedAt = now
	idea.UpdatedAt = now

	media, tags, err := encodeLists(idea)
	if err != nil {
		return err
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO address_detail (id, country, state, suburb)
		 VALUES (?, ?, ?, ?)`,
		idea.Address.ID, idea.Address.Country, idea.Address.State, idea.Address.Suburb,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting address detail: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO ideas (id, user_id, title, description, media, upvotes,
		 downvotes, industry, tags, address_id, verified, embedded, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, 0, 0, ?, ?, ?, ?, 0, ?, ?)`,
		idea.ID, idea.UserID, idea.Title, idea.Description, media,
		idea.Industry, tags, idea.AddressID, idea.Verified,
		idea.CreatedAt, idea.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating idea: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing idea: %w", err)
	}

	return nil
}

// GetByID retrieves a single idea joined with its address detail.
func (db *DB) GetByID(ctx context.Context, id string) (*model.Idea, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+ideaColumns+`
		 FROM ideas i
		 JOIN address_detail a ON a.id = i.address_id
		 WHERE i.id = ?`,
		id,
	)

	idea, err := scanIdea(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("idea", id)
		}
		return nil, fmt.Errorf("sqlite: getting idea %s: %w", id, err)
	}

	return idea, nil
}

// List returns ideas ordered by upvotes descending, the dashboard's
// default ordering, which the manual filters run over client-side.
func (db *DB) List(ctx context.Context, opts repository.ListOptions) ([]model.Idea, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+ideaColumns+`
		 FROM ideas i
		 JOIN address_detail a ON a.id = i.address_id
		 ORDER BY i.upvotes DESC, i.created_at DESC
		 LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing ideas: %w", err)
	}
	defer rows.Close()

	return collectIdeas(rows, limit)
}

func (db *DB) ListByUser(ctx context.Context, userID string) ([]model.Idea, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+ideaColumns+`
		 FROM ideas i
		 JOIN address_detail a ON a.id = i.address_id
		 WHERE i.user_id = ?
		 ORDER BY i.created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing ideas for user %s: %w", userID, err)
	}
	defer rows.Close()

	return collectIdeas(rows, 16)
}

// GetByIDs hydrates vector-search hits. The result preserves the order of
// ids (the similarity ranking); ids with no surviving row are skipped.
func (db *DB) GetByIDs(ctx context.Context, ids []string) ([]model.Idea, error) {
	if len(ids) == 0 {
		return []model.Idea{}, nil
	}

	query := `SELECT ` + ideaColumns + `
		 FROM ideas i
		 JOIN address_detail a ON a.id = i.address_id
		 WHERE i.id IN (?` + strings.Repeat(",?", len(ids)-1) + `)`
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: getting ideas by ids: %w", err)
	}
	defer rows.Close()

	fetched, err := collectIdeas(rows, len(ids))
	if err != nil {
		return nil, err
	}

	byID := make(map[string]model.Idea, len(fetched))
	for _, idea := range fetched {
		byID[idea.ID] = idea
	}

	ordered := make([]model.Idea, 0, len(ids))
	for _, id := range ids {
		if idea, ok := byID[id]; ok {
			ordered = append(ordered, idea)
		}
	}
	return ordered, nil
}

// Update modifies an idea's editable fields and its address detail.
// Counters, ownership, and timestamps of creation are immutable here.
func (db *DB) Update(ctx context.Context, idea *model.Idea) error {
	idea.UpdatedAt = time.Now()

	media, tags, err := encodeLists(idea)
	if err != nil {
		return err
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE ideas
		 SET title = ?, description = ?, media = ?, industry = ?, tags = ?,
		     verified = ?, embedded = ?, updated_at = ?
		 WHERE id = ?`,
		idea.Title, idea.Description, media, idea.Industry, tags,
		idea.Verified, idea.Embedded, idea.UpdatedAt, idea.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating idea %s: %w", idea.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("idea", idea.ID)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE address_detail SET country = ?, state = ?, suburb = ? WHERE id = ?`,
		idea.Address.Country, idea.Address.State, idea.Address.Suburb, idea.AddressID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating address detail %s: %w", idea.AddressID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing idea update: %w", err)
	}

	return nil
}

// Delete removes an idea, its address detail, and its vector index entry.
func (db *DB) Delete(ctx context.Context, id string) error {
	idea, err := db.GetByID(ctx, id)
	if err != nil {
		return err
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM vec_ideas WHERE idea_id = ?`, id); err != nil {
		return fmt.Errorf("sqlite: deleting idea embedding %s: %w", id, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM ideas WHERE id = ?`, id); err != nil {
		return fmt.Errorf("sqlite: deleting idea %s: %w", id, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM address_detail WHERE id = ?`, idea.AddressID); err != nil {
		return fmt.Errorf("sqlite: deleting address detail %s: %w", idea.AddressID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing idea delete: %w", err)
	}

	return nil
}

// Vote adjusts a counter by exactly one in a single UPDATE. The increment
// happens inside SQLite, so two concurrent votes both land and the
// read-modify-write race the hosted-backend version had cannot occur.
func (db *DB) Vote(ctx context.Context, id string, kind repository.VoteKind) (*model.Idea, error) {
	column := "upvotes"
	if kind == repository.VoteDown {
		column = "downvotes"
	}

	result, err := db.conn.ExecContext(ctx,
		fmt.Sprintf(`UPDATE ideas SET %s = %s + 1, updated_at = ? WHERE id = ?`, column, column),
		time.Now(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: voting on idea %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, apperror.NotFound("idea", id)
	}

	return db.GetByID(ctx, id)
}

// rowScanner lets scanIdea work over both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanIdea(row rowScanner) (*model.Idea, error) {
	var idea model.Idea
	var media, tags string

	err := row.Scan(
		&idea.ID, &idea.UserID, &idea.Title, &idea.Description, &media,
		&idea.Upvotes, &idea.Downvotes, &idea.Industry, &tags,
		&idea.AddressID, &idea.Verified, &idea.Embedded,
		&idea.CreatedAt, &idea.UpdatedAt,
		&idea.Address.ID, &idea.Address.Country, &idea.Address.State, &idea.Address.Suburb,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(media), &idea.Media); err != nil {
		return nil, fmt.Errorf("decoding media for idea %s: %w", idea.ID, err)
	}
	if err := json.Unmarshal([]byte(tags), &idea.Tags); err != nil {
		return nil, fmt.Errorf("decoding tags for idea %s: %w", idea.ID, err)
	}

	return &idea, nil
}

func collectIdeas(rows *sql.Rows, capacity int) ([]model.Idea, error) {
	ideas := make([]model.Idea, 0, capacity)
	for rows.Next() {
		idea, err := scanIdea(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning idea row: %w", err)
		}
		ideas = append(ideas, *idea)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating ideas: %w", err)
	}
	return ideas, nil
}

func encodeLists(idea *model.Idea) (media string, tags string, err error) {
	if idea.Media == nil {
		idea.Media = []string{}
	}
	if idea.Tags == nil {
		idea.Tags = []string{}
	}

	mediaBytes, err := json.Marshal(idea.Media)
	if err != nil {
		return "", "", fmt.Errorf("sqlite: encoding media: %w", err)
	}
	tagBytes, err := json.Marshal(idea.Tags)
	if err != nil {
		return "", "", fmt.Errorf("sqlite: encoding tags: %w", err)
	}
	return string(mediaBytes), string(tagBytes), nil
}
