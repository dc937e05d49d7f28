package repository

import (
	"context"

	"github.com/bislerium/blog-backend/internal/domain/entity"
)

// BlogSort orders for listing.
const (
	SortRecency    = "recency"
	SortPopularity = "popularity"
	SortRandom     = "random"
)

// BlogRepository defines persistence for blog posts, reactions and history.
type BlogRepository interface {
	Create(ctx context.Context, p *entity.BlogPost) error
	GetByID(ctx context.Context, id string) (*entity.BlogPost, error)
	Update(ctx context.Context, p *entity.BlogPost) error
	Delete(ctx context.Context, id string) error

	// ListWithReactions returns one page of posts with aggregated reactions
	// plus the total post count.
	ListWithReactions(ctx context.Context, page, size int, sortType string) ([]entity.BlogWithReactions, int, error)
	ListByUser(ctx context.Context, userID string) ([]entity.BlogWithReactions, error)

	UpsertReaction(ctx context.Context, r *entity.Reaction) error

	AppendHistory(ctx context.Context, h *entity.BlogHistory) error
	HistoryByUser(ctx context.Context, userID string) ([]entity.BlogHistory, error)

	// DeleteAllOfUser removes reactions, history and posts owned by userID in
	// a single transaction.
	DeleteAllOfUser(ctx context.Context, userID string) error
}
