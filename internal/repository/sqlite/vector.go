package sqlite

import (
	"context"
	"fmt"

	vec "github.com/asg017/sqlite-vec-go-bindings/cgo"

	"github.com/colaunch/colaunch-server/internal/repository"
)

// compile-time check that *DB implements repository.VectorIndex
var _ repository.VectorIndex = (*DB)(nil)

// UpsertEmbedding stores (or replaces) the embedding for an idea and flips the
// idea's embedded flag. vec0 tables have no ON CONFLICT support, so the
// replace is a delete+insert inside one transaction.
func (db *DB) UpsertEmbedding(ctx context.Context, ideaID string, embedding []float32) error {
	if len(embedding) != EmbeddingDim {
		return fmt.Errorf("sqlite: embedding for idea %s has %d dimensions, want %d",
			ideaID, len(embedding), EmbeddingDim)
	}

	blob, err := vec.SerializeFloat32(embedding)
	if err != nil {
		return fmt.Errorf("sqlite: serializing embedding: %w", err)
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM vec_ideas WHERE idea_id = ?`, ideaID); err != nil {
		return fmt.Errorf("sqlite: clearing embedding for idea %s: %w", ideaID, err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO vec_ideas (idea_id, embedding) VALUES (?, ?)`, ideaID, blob,
	); err != nil {
		return fmt.Errorf("sqlite: inserting embedding for idea %s: %w", ideaID, err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE ideas SET embedded = 1 WHERE id = ?`, ideaID,
	); err != nil {
		return fmt.Errorf("sqlite: marking idea %s embedded: %w", ideaID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing embedding upsert: %w", err)
	}

	return nil
}

// SearchSimilar runs a KNN query against the vec0 table. The table is declared
// with cosine distance, so similarity = 1 - distance. Hits below the
// threshold are filtered out after ranking; the MATCH query itself only
// knows about distance ordering and the result cap.
func (db *DB) SearchSimilar(ctx context.Context, embedding []float32, threshold float64, matchCount int) ([]repository.Neighbor, error) {
	if len(embedding) != EmbeddingDim {
		return nil, fmt.Errorf("sqlite: query embedding has %d dimensions, want %d",
			len(embedding), EmbeddingDim)
	}
	if matchCount <= 0 {
		matchCount = 10
	}

	blob, err := vec.SerializeFloat32(embedding)
	if err != nil {
		return nil, fmt.Errorf("sqlite: serializing query embedding: %w", err)
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT idea_id, distance
		 FROM vec_ideas
		 WHERE embedding MATCH ?
		 ORDER BY distance
		 LIMIT ?`,
		blob, matchCount,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: vector search: %w", err)
	}
	defer rows.Close()

	neighbors := make([]repository.Neighbor, 0, matchCount)
	for rows.Next() {
		var ideaID string
		var distance float64
		if err := rows.Scan(&ideaID, &distance); err != nil {
			return nil, fmt.Errorf("sqlite: scanning neighbor row: %w", err)
		}

		similarity := 1 - distance
		if similarity < threshold {
			// Results arrive distance-ordered, so everything after
			// the first miss is below threshold too.
			break
		}
		neighbors = append(neighbors, repository.Neighbor{
			IdeaID:     ideaID,
			Similarity: similarity,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating neighbors: %w", err)
	}

	return neighbors, nil
}

// DeleteEmbedding removes an idea's embedding and clears its embedded flag.
func (db *DB) DeleteEmbedding(ctx context.Context, ideaID string) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM vec_ideas WHERE idea_id = ?`, ideaID); err != nil {
		return fmt.Errorf("sqlite: deleting embedding for idea %s: %w", ideaID, err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE ideas SET embedded = 0 WHERE id = ?`, ideaID); err != nil {
		return fmt.Errorf("sqlite: clearing embedded flag for idea %s: %w", ideaID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing embedding delete: %w", err)
	}

	return nil
}
