package legacy

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/colaunch/colaunch-server/internal/apperror"
	"github.com/colaunch/colaunch-server/internal/model"
)

// BlobStore archives a record as a JSON file and returns its public URL.
// The media store implements it.
type BlobStore interface {
	SaveJSON(v any) (string, error)
}

// Mirrorer posts a record to the remote ledger. *LedgerClient implements
// it; a nil-safe noop is used when legacy support is disabled.
type Mirrorer interface {
	Mirror(ctx context.Context, path string, record any) error
}

// Service registers legacy asset metadata. The archive write is the source
// of truth; the ledger mirror may fail and only gets a warning log.
type Service struct {
	blobs  BlobStore
	ledger Mirrorer
	logger *slog.Logger
}

func NewService(blobs BlobStore, ledger Mirrorer, logger *slog.Logger) *Service {
	return &Service{blobs: blobs, ledger: ledger, logger: logger}
}

// RegisterGame records a game title. The returned GameData carries the
// generated ID; URI points at the archived blob when none was supplied.
func (s *Service) RegisterGame(ctx context.Context, game *model.GameData) (*model.GameData, error) {
	if strings.TrimSpace(game.Name) == "" {
		return nil, apperror.ValidationFailed("name", "game name is required")
	}
	game.ID = xid.New().String()
	game.CreatedAt = time.Now().UTC()
	return game, s.archive(ctx, "/games", game, &game.URI)
}

func (s *Service) RegisterToken(ctx context.Context, token *model.TokenData) (*model.TokenData, error) {
	if strings.TrimSpace(token.Name) == "" {
		return nil, apperror.ValidationFailed("name", "token name is required")
	}
	if token.Decimals < 0 || token.Decimals > 18 {
		return nil, apperror.ValidationFailed("decimals", "decimals must be between 0 and 18")
	}
	token.ID = xid.New().String()
	token.CreatedAt = time.Now().UTC()
	return token, s.archive(ctx, "/tokens", token, &token.URI)
}

func (s *Service) RegisterCollection(ctx context.Context, col *model.CollectionData) (*model.CollectionData, error) {
	if strings.TrimSpace(col.Name) == "" {
		return nil, apperror.ValidationFailed("name", "collection name is required")
	}
	col.ID = xid.New().String()
	col.CreatedAt = time.Now().UTC()
	return col, s.archive(ctx, "/collections", col, &col.URI)
}

func (s *Service) RegisterNFT(ctx context.Context, nft *model.NFTData) (*model.NFTData, error) {
	if strings.TrimSpace(nft.Name) == "" {
		return nil, apperror.ValidationFailed("name", "nft name is required")
	}
	if nft.CollectionID == "" {
		return nil, apperror.ValidationFailed("collectionId", "collection id is required")
	}
	nft.ID = xid.New().String()
	nft.CreatedAt = time.Now().UTC()
	return nft, s.archive(ctx, "/nfts", nft, &nft.URI)
}

// archive writes the blob, fills in the URI when empty, then mirrors.
func (s *Service) archive(ctx context.Context, path string, record any, uri *string) error {
	blobURL, err := s.blobs.SaveJSON(record)
	if err != nil {
		return err
	}
	if *uri == "" {
		*uri = blobURL
	}

	if s.ledger != nil {
		if err := s.ledger.Mirror(ctx, path, record); err != nil {
			s.logger.Warn("ledger mirror failed", "path", path, "error", err)
		}
	}
	return nil
}
