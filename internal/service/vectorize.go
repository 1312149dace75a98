package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/colaunch/colaunch-server/internal/model"
	"github.com/colaunch/colaunch-server/internal/repository"
)

// Embedder is the embedding surface of the AI client.
type Embedder interface {
	Embed(ctx context.Context, model, input string) ([]float32, error)
}

// VectorizeService batch-(re)indexes idea embeddings. Per-idea failures
// are counted and logged; the batch always runs to the end.
type VectorizeService struct {
	repo     repository.IdeaRepository
	index    repository.VectorIndex
	embedder Embedder
	model    string
	logger   *slog.Logger
}

func NewVectorizeService(repo repository.IdeaRepository, index repository.VectorIndex, embedder Embedder, embeddingModel string, logger *slog.Logger) *VectorizeService {
	return &VectorizeService{
		repo:     repo,
		index:    index,
		embedder: embedder,
		model:    embeddingModel,
		logger:   logger,
	}
}

// VectorizeReport summarizes a batch run.
type VectorizeReport struct {
	Indexed int `json:"indexed"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
}

// EmbeddingContent renders the text an idea is embedded from. Searches
// embed free text against this, so it folds in the fields people search by.
func EmbeddingContent(idea *model.Idea) string {
	return fmt.Sprintf("Industry: %s Title: %s Country: %s Description: %s",
		idea.Industry, idea.Title, idea.Address.Country, idea.Description)
}

// ReindexAll walks every idea, embeds its content and upserts it into the
// vector index. Already-embedded ideas are skipped unless force is set.
func (s *VectorizeService) ReindexAll(ctx context.Context, force bool) (*VectorizeReport, error) {
	report := &VectorizeReport{}

	for offset := 0; ; offset += MaxListLimit {
		ideas, err := s.repo.List(ctx, repository.ListOptions{Limit: MaxListLimit, Offset: offset})
		if err != nil {
			return report, fmt.Errorf("service: listing ideas for reindex: %w", err)
		}
		if len(ideas) == 0 {
			break
		}

		for i := range ideas {
			if err := ctx.Err(); err != nil {
				return report, err
			}
			idea := &ideas[i]
			if idea.Embedded && !force {
				report.Skipped++
				continue
			}
			if err := s.ReindexOne(ctx, idea); err != nil {
				report.Failed++
				s.logger.Warn("could not embed idea", "ideaID", idea.ID, "error", err)
				continue
			}
			report.Indexed++
		}

		if len(ideas) < MaxListLimit {
			break
		}
	}

	s.logger.Info("vectorize batch finished",
		"indexed", report.Indexed, "failed", report.Failed, "skipped", report.Skipped)
	return report, nil
}

// ReindexOne embeds a single idea and upserts it into the index.
func (s *VectorizeService) ReindexOne(ctx context.Context, idea *model.Idea) error {
	embedding, err := s.embedder.Embed(ctx, s.model, EmbeddingContent(idea))
	if err != nil {
		return fmt.Errorf("service: embedding idea %s: %w", idea.ID, err)
	}
	if err := s.index.UpsertEmbedding(ctx, idea.ID, embedding); err != nil {
		return fmt.Errorf("service: storing embedding for idea %s: %w", idea.ID, err)
	}
	return nil
}
