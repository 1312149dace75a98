package voice

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/colaunch/colaunch-server/internal/apperror"
	"github.com/colaunch/colaunch-server/internal/model"
	"github.com/colaunch/colaunch-server/internal/repository"
	"github.com/colaunch/colaunch-server/internal/repository/sqlite"

	"github.com/colaunch/colaunch-server/internal/ai"
)

type fakeChat struct {
	reply string
	err   error
	// last user message sent, for assertions
	gotUser string
}

func (f *fakeChat) ChatCompletion(_ context.Context, _ string, messages []ai.Message, _ int, temperature float64) (string, error) {
	if temperature != 0 {
		return "", fmt.Errorf("temperature = %v, want 0", temperature)
	}
	for _, m := range messages {
		if m.Role == "user" {
			f.gotUser = m.Content
		}
	}
	return f.reply, f.err
}

type fakeEmbedder struct {
	gotInput string
	vec      []float32
	err      error
}

func (f *fakeEmbedder) Embed(_ context.Context, _ string, input string) ([]float32, error) {
	f.gotInput = input
	return f.vec, f.err
}

type fakeIndex struct {
	gotThreshold float64
	gotCount     int
	gotVec       []float32
	neighbors    []repository.Neighbor
	err          error
}

func (f *fakeIndex) UpsertEmbedding(context.Context, string, []float32) error { return nil }
func (f *fakeIndex) DeleteEmbedding(context.Context, string) error            { return nil }
func (f *fakeIndex) SearchSimilar(_ context.Context, embedding []float32, threshold float64, matchCount int) ([]repository.Neighbor, error) {
	f.gotVec = embedding
	f.gotThreshold = threshold
	f.gotCount = matchCount
	return f.neighbors, f.err
}

type fakeHydrator struct {
	gotIDs []string
	ideas  []model.Idea
}

func (f *fakeHydrator) GetByIDs(_ context.Context, ids []string) ([]model.Idea, error) {
	f.gotIDs = ids
	return f.ideas, nil
}

type fakeTranscriber struct {
	text string
	err  error
}

func (f *fakeTranscriber) Transcribe(context.Context, string, string, io.Reader) (string, error) {
	return f.text, f.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testPipeline(chat *fakeChat, emb *fakeEmbedder, idx *fakeIndex, hyd *fakeHydrator) *Pipeline {
	cfg := PipelineConfig{
		ChatModel:           "gpt-3.5-turbo",
		EmbeddingModel:      "text-embedding-ada-002",
		AudioModel:          "whisper-1",
		StepTimeout:         time.Second,
		SimilarityThreshold: 0.32,
		MatchCount:          10,
	}
	return NewPipeline(cfg, NewInterpreter(chat, cfg.ChatModel), emb, &fakeTranscriber{}, idx, hyd, testLogger())
}

func vec1536(fill float32) []float32 {
	v := make([]float32, sqlite.EmbeddingDim)
	for i := range v {
		v[i] = fill
	}
	return v
}

func TestSearchTranscript_SearchIntent(t *testing.T) {
	chat := &fakeChat{reply: `{"command":"search","parameters":{"type":"category","value":"fintech"}}`}
	emb := &fakeEmbedder{vec: vec1536(0.1)}
	idx := &fakeIndex{neighbors: []repository.Neighbor{
		{IdeaID: "b", Similarity: 0.9},
		{IdeaID: "a", Similarity: 0.5},
	}}
	hyd := &fakeHydrator{ideas: []model.Idea{{ID: "b"}, {ID: "a"}}}

	res, err := testPipeline(chat, emb, idx, hyd).SearchTranscript(context.Background(), "show me fintech ideas")
	if err != nil {
		t.Fatalf("SearchTranscript() error = %v", err)
	}

	// The embedder must see exactly the interpreted value.
	if emb.gotInput != "fintech" {
		t.Errorf("embed input = %q, want fintech", emb.gotInput)
	}
	// The index must see exactly that embedding with the configured tuning.
	if idx.gotThreshold != 0.32 || idx.gotCount != 10 {
		t.Errorf("search tuning = (%v, %d), want (0.32, 10)", idx.gotThreshold, idx.gotCount)
	}
	if len(idx.gotVec) != sqlite.EmbeddingDim || idx.gotVec[0] != 0.1 {
		t.Errorf("search embedding does not match the embedder output")
	}
	// Hydration preserves similarity order.
	if len(hyd.gotIDs) != 2 || hyd.gotIDs[0] != "b" || hyd.gotIDs[1] != "a" {
		t.Errorf("hydrated ids = %v, want [b a]", hyd.gotIDs)
	}

	if res.ShowSearchBar {
		t.Error("ShowSearchBar = true with results present")
	}
	if res.Type != TypeCategory || res.Value != "fintech" {
		t.Errorf("interpreted (type, value) = (%q, %q)", res.Type, res.Value)
	}
	if len(res.Ideas) != 2 {
		t.Errorf("len(Ideas) = %d, want 2", len(res.Ideas))
	}
}

func TestSearchTranscript_OtherIntent(t *testing.T) {
	chat := &fakeChat{reply: `{"command":"other","parameters":{"type":"name","value":""}}`}
	emb := &fakeEmbedder{}
	idx := &fakeIndex{}

	res, err := testPipeline(chat, emb, idx, &fakeHydrator{}).SearchTranscript(context.Background(), "what time is it")
	if err != nil {
		t.Fatalf("SearchTranscript() error = %v", err)
	}
	if !res.ShowSearchBar {
		t.Error("ShowSearchBar = false for a non-search intent")
	}
	if len(res.Ideas) != 0 {
		t.Errorf("Ideas = %v, want none", res.Ideas)
	}
	if emb.gotInput != "" {
		t.Error("embedder was called for a non-search intent")
	}
}

func TestSearchTranscript_NoNeighbors(t *testing.T) {
	chat := &fakeChat{reply: `{"command":"search","parameters":{"type":"name","value":"solar"}}`}
	emb := &fakeEmbedder{vec: vec1536(0)}
	idx := &fakeIndex{neighbors: nil}

	res, err := testPipeline(chat, emb, idx, &fakeHydrator{}).SearchTranscript(context.Background(), "find solar companies")
	if err != nil {
		t.Fatalf("SearchTranscript() error = %v", err)
	}
	if !res.ShowSearchBar {
		t.Error("ShowSearchBar = false with zero matches")
	}
	if res.Value != "solar" {
		t.Errorf("Value = %q, want the interpreted value surfaced for fallback", res.Value)
	}
}

func TestSearchTranscript_MalformedIntent(t *testing.T) {
	for _, reply := range []string{
		"sure, searching now!",
		`{"command":"launch","parameters":{"type":"name","value":"x"}}`,
		`{"command":"search","parameters":{"type":"color","value":"x"}}`,
		`{"command":"search","parameters":{"type":"name","value":""}}`,
	} {
		chat := &fakeChat{reply: reply}
		_, err := testPipeline(chat, &fakeEmbedder{}, &fakeIndex{}, &fakeHydrator{}).
			SearchTranscript(context.Background(), "find things")
		if err == nil {
			t.Errorf("reply %q: want error", reply)
		}
	}
}

func TestSearchTranscript_FencedIntent(t *testing.T) {
	chat := &fakeChat{reply: "```json\n{\"command\":\"search\",\"parameters\":{\"type\":\"location\",\"value\":\"Singapore\"}}\n```"}
	emb := &fakeEmbedder{vec: vec1536(0)}
	idx := &fakeIndex{neighbors: []repository.Neighbor{{IdeaID: "a"}}}
	hyd := &fakeHydrator{ideas: []model.Idea{{ID: "a"}}}

	res, err := testPipeline(chat, emb, idx, hyd).SearchTranscript(context.Background(), "startups in Singapore")
	if err != nil {
		t.Fatalf("SearchTranscript() error = %v", err)
	}
	if res.Type != TypeLocation || res.Value != "Singapore" {
		t.Errorf("(type, value) = (%q, %q)", res.Type, res.Value)
	}
}

func TestSearchTranscript_BadEmbeddingDimension(t *testing.T) {
	chat := &fakeChat{reply: `{"command":"search","parameters":{"type":"name","value":"x"}}`}
	emb := &fakeEmbedder{vec: make([]float32, 8)}

	_, err := testPipeline(chat, emb, &fakeIndex{}, &fakeHydrator{}).SearchTranscript(context.Background(), "find x")
	if err == nil {
		t.Fatal("want error for wrong embedding dimension")
	}
}

func TestSearchTranscript_ProviderDownIsUnavailable(t *testing.T) {
	chat := &fakeChat{err: errors.New("connection refused")}
	_, err := testPipeline(chat, &fakeEmbedder{}, &fakeIndex{}, &fakeHydrator{}).
		SearchTranscript(context.Background(), "find x")
	if !errors.Is(err, apperror.ErrUnavailable) {
		t.Errorf("err = %v, want ErrUnavailable", err)
	}
}

func TestSearchAudio_TranscribesFirst(t *testing.T) {
	chat := &fakeChat{reply: `{"command":"search","parameters":{"type":"name","value":"solar"}}`}
	emb := &fakeEmbedder{vec: vec1536(0)}
	idx := &fakeIndex{neighbors: []repository.Neighbor{{IdeaID: "a"}}}
	hyd := &fakeHydrator{ideas: []model.Idea{{ID: "a"}}}

	p := testPipeline(chat, emb, idx, hyd)
	p.transcriber = &fakeTranscriber{text: "find solar companies"}

	res, err := p.SearchAudio(context.Background(), "voice.webm", nil)
	if err != nil {
		t.Fatalf("SearchAudio() error = %v", err)
	}
	if chat.gotUser != "find solar companies" {
		t.Errorf("interpreter saw %q, want the transcript", chat.gotUser)
	}
	if len(res.Ideas) != 1 {
		t.Errorf("len(Ideas) = %d, want 1", len(res.Ideas))
	}
}
