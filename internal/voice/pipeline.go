package voice

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/colaunch/colaunch-server/internal/apperror"
	"github.com/colaunch/colaunch-server/internal/model"
	"github.com/colaunch/colaunch-server/internal/repository"
	"github.com/colaunch/colaunch-server/internal/repository/sqlite"
)

// Embedder is the embedding surface of the AI client.
type Embedder interface {
	Embed(ctx context.Context, model, input string) ([]float32, error)
}

// Transcriber is the speech-to-text surface of the AI client.
type Transcriber interface {
	Transcribe(ctx context.Context, model, filename string, audio io.Reader) (string, error)
}

// IdeaHydrator resolves search hits back into full idea rows.
type IdeaHydrator interface {
	GetByIDs(ctx context.Context, ids []string) ([]model.Idea, error)
}

// PipelineConfig carries the models and search tuning the pipeline runs with.
type PipelineConfig struct {
	ChatModel      string
	EmbeddingModel string
	AudioModel     string
	// StepTimeout bounds each downstream call individually so a stuck
	// provider cannot hang a request forever.
	StepTimeout         time.Duration
	SimilarityThreshold float64
	MatchCount          int
}

// Pipeline runs the voice search steps in strict sequence:
// transcribe (optional) -> interpret -> embed -> similarity search -> hydrate.
type Pipeline struct {
	cfg         PipelineConfig
	interpreter *Interpreter
	embedder    Embedder
	transcriber Transcriber
	index       repository.VectorIndex
	ideas       IdeaHydrator
	logger      *slog.Logger
}

func NewPipeline(cfg PipelineConfig, interpreter *Interpreter, embedder Embedder, transcriber Transcriber, index repository.VectorIndex, ideas IdeaHydrator, logger *slog.Logger) *Pipeline {
	if cfg.StepTimeout <= 0 {
		cfg.StepTimeout = 15 * time.Second
	}
	return &Pipeline{
		cfg:         cfg,
		interpreter: interpreter,
		embedder:    embedder,
		transcriber: transcriber,
		index:       index,
		ideas:       ideas,
		logger:      logger,
	}
}

// Result is what a voice search resolves to. When the intent was not a
// search, or the index returned nothing, ShowSearchBar tells the client to
// fall back to the manual search bar; Type and Value carry the interpreted
// parameters so the client can pre-fill it.
type Result struct {
	Ideas         []model.Idea `json:"ideas"`
	ShowSearchBar bool         `json:"show_search_bar"`
	Type          string       `json:"type,omitempty"`
	Value         string       `json:"value,omitempty"`
}

// SearchAudio transcribes the audio first, then runs SearchTranscript.
func (p *Pipeline) SearchAudio(ctx context.Context, filename string, audio io.Reader) (*Result, error) {
	stepCtx, cancel := context.WithTimeout(ctx, p.cfg.StepTimeout)
	defer cancel()

	transcript, err := p.transcriber.Transcribe(stepCtx, p.cfg.AudioModel, filename, audio)
	if err != nil {
		return nil, p.stepFailed(ctx, "transcribe", err)
	}
	p.logger.Info("voice transcript", "text", transcript)

	return p.SearchTranscript(ctx, transcript)
}

// SearchTranscript interprets the transcript and, for a search intent,
// embeds the extracted value and looks up similar ideas. The embedding is
// computed from exactly the interpreted value, nothing else.
func (p *Pipeline) SearchTranscript(ctx context.Context, transcript string) (*Result, error) {
	intent, err := p.interpret(ctx, transcript)
	if err != nil {
		return nil, err
	}

	if intent.Command != CommandSearch {
		return &Result{Ideas: []model.Idea{}, ShowSearchBar: true}, nil
	}

	res, err := p.SearchValue(ctx, intent.Parameters.Value)
	if err != nil {
		return nil, err
	}
	res.Type = intent.Parameters.Type
	res.Value = intent.Parameters.Value
	return res, nil
}

// SearchValue embeds the given text as-is and looks up similar ideas. The
// manual vector-search endpoint calls this directly, skipping the
// interpreter.
func (p *Pipeline) SearchValue(ctx context.Context, value string) (*Result, error) {
	embedding, err := p.embed(ctx, value)
	if err != nil {
		return nil, err
	}

	searchCtx, cancel := context.WithTimeout(ctx, p.cfg.StepTimeout)
	defer cancel()
	neighbors, err := p.index.SearchSimilar(searchCtx, embedding, p.cfg.SimilarityThreshold, p.cfg.MatchCount)
	if err != nil {
		return nil, fmt.Errorf("voice: similarity search: %w", err)
	}

	if len(neighbors) == 0 {
		return &Result{Ideas: []model.Idea{}, ShowSearchBar: true}, nil
	}

	ids := make([]string, len(neighbors))
	for i, n := range neighbors {
		ids[i] = n.IdeaID
	}
	ideas, err := p.ideas.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("voice: hydrating search results: %w", err)
	}
	return &Result{Ideas: ideas}, nil
}

func (p *Pipeline) interpret(ctx context.Context, transcript string) (*Intent, error) {
	stepCtx, cancel := context.WithTimeout(ctx, p.cfg.StepTimeout)
	defer cancel()

	intent, err := p.interpreter.Interpret(stepCtx, transcript)
	if err != nil {
		return nil, p.stepFailed(ctx, "interpret", err)
	}
	return intent, nil
}

func (p *Pipeline) embed(ctx context.Context, value string) ([]float32, error) {
	stepCtx, cancel := context.WithTimeout(ctx, p.cfg.StepTimeout)
	defer cancel()

	embedding, err := p.embedder.Embed(stepCtx, p.cfg.EmbeddingModel, value)
	if err != nil {
		return nil, p.stepFailed(ctx, "embed", err)
	}
	if len(embedding) != sqlite.EmbeddingDim {
		return nil, fmt.Errorf("voice: embedding has %d dimensions, want %d", len(embedding), sqlite.EmbeddingDim)
	}
	return embedding, nil
}

// stepFailed logs the failing step and converts provider errors to the
// unavailable taxonomy so handlers answer 502 rather than 500. Caller
// cancellation keeps its own identity.
func (p *Pipeline) stepFailed(ctx context.Context, step string, err error) error {
	p.logger.Error("voice pipeline step failed", "step", step, "error", err)
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		return fmt.Errorf("voice: %s: %w", step, err)
	}
	return apperror.Unavailable("ai provider", fmt.Sprintf("%s step failed", step))
}
