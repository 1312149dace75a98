package sqlite

import (
	"context"
	"math"
	"testing"
)

// unitVector builds a normalized embedding whose direction is controlled by
// the leading components, so cosine similarities in tests are predictable.
func unitVector(t *testing.T, leading ...float32) []float32 {
	t.Helper()
	v := make([]float32, EmbeddingDim)
	copy(v, leading)
	var norm float64
	for _, x := range v {
		norm += float64(x) * float64(x)
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		t.Fatal("zero vector has no direction")
	}
	for i := range v {
		v[i] = float32(float64(v[i]) / norm)
	}
	return v
}

func TestUpsertEmbedding_SetsEmbeddedFlag(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	owner := createTestUser(t, db, "owner@example.com")
	idea := createTestIdea(t, db, owner.ID, "Indexed")

	if err := db.UpsertEmbedding(ctx, idea.ID, unitVector(t, 1)); err != nil {
		t.Fatalf("UpsertEmbedding() error = %v", err)
	}

	got, err := db.GetByID(ctx, idea.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if !got.Embedded {
		t.Error("Embedded = false after upsert")
	}

	// Replacing the embedding must not error on the existing row.
	if err := db.UpsertEmbedding(ctx, idea.ID, unitVector(t, 0, 1)); err != nil {
		t.Fatalf("second UpsertEmbedding() error = %v", err)
	}
}

func TestUpsertEmbedding_RejectsWrongDimension(t *testing.T) {
	db := newTestDB(t)

	owner := createTestUser(t, db, "owner@example.com")
	idea := createTestIdea(t, db, owner.ID, "Short Vector")

	if err := db.UpsertEmbedding(context.Background(), idea.ID, []float32{1, 2, 3}); err == nil {
		t.Fatal("UpsertEmbedding() accepted a 3-dimensional vector")
	}
}

func TestSearchSimilar_RanksAndThresholds(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	owner := createTestUser(t, db, "owner@example.com")
	near := createTestIdea(t, db, owner.ID, "Near")
	mid := createTestIdea(t, db, owner.ID, "Mid")
	far := createTestIdea(t, db, owner.ID, "Far")

	// Similarities against the query (1,0,...): 1.0, ~0.707, 0.0.
	query := unitVector(t, 1)
	for _, row := range []struct {
		id  string
		vec []float32
	}{
		{near.ID, unitVector(t, 1)},
		{mid.ID, unitVector(t, 1, 1)},
		{far.ID, unitVector(t, 0, 1)},
	} {
		if err := db.UpsertEmbedding(ctx, row.id, row.vec); err != nil {
			t.Fatalf("UpsertEmbedding(%s) error = %v", row.id, err)
		}
	}

	neighbors, err := db.SearchSimilar(ctx, query, 0.32, 10)
	if err != nil {
		t.Fatalf("SearchSimilar() error = %v", err)
	}
	if len(neighbors) != 2 {
		t.Fatalf("len = %d, want 2 (the orthogonal vector filtered out)", len(neighbors))
	}
	if neighbors[0].IdeaID != near.ID || neighbors[1].IdeaID != mid.ID {
		t.Errorf("order = [%s %s], want closest first", neighbors[0].IdeaID, neighbors[1].IdeaID)
	}
	if neighbors[0].Similarity < neighbors[1].Similarity {
		t.Errorf("similarities not descending: %v", neighbors)
	}

	// A tight threshold keeps only the exact match.
	neighbors, err = db.SearchSimilar(ctx, query, 0.9, 10)
	if err != nil {
		t.Fatalf("SearchSimilar() error = %v", err)
	}
	if len(neighbors) != 1 || neighbors[0].IdeaID != near.ID {
		t.Errorf("neighbors = %+v, want only the exact match", neighbors)
	}
}

func TestDeleteEmbedding_ClearsFlag(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	owner := createTestUser(t, db, "owner@example.com")
	idea := createTestIdea(t, db, owner.ID, "Unindexed")
	if err := db.UpsertEmbedding(ctx, idea.ID, unitVector(t, 1)); err != nil {
		t.Fatalf("UpsertEmbedding() error = %v", err)
	}

	if err := db.DeleteEmbedding(ctx, idea.ID); err != nil {
		t.Fatalf("DeleteEmbedding() error = %v", err)
	}

	got, err := db.GetByID(ctx, idea.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Embedded {
		t.Error("Embedded = true after delete")
	}

	neighbors, err := db.SearchSimilar(ctx, unitVector(t, 1), 0, 10)
	if err != nil {
		t.Fatalf("SearchSimilar() error = %v", err)
	}
	if len(neighbors) != 0 {
		t.Errorf("neighbors = %+v, want none", neighbors)
	}
}
