package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bislerium/blog-backend/internal/domain/entity"
	"github.com/bislerium/blog-backend/internal/domain/repository"
)

type BlogRepository struct {
	pool *pgxpool.Pool
}

func NewBlogRepository(pool *pgxpool.Pool) *BlogRepository {
	return &BlogRepository{pool: pool}
}

func (r *BlogRepository) Create(ctx context.Context, p *entity.BlogPost) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO blog_posts (user_id, title, body, image_url)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`, p.UserID, p.Title, p.Body, p.ImageURL)

	return row.Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

func (r *BlogRepository) GetByID(ctx context.Context, id string) (*entity.BlogPost, error) {
	p := &entity.BlogPost{}
	row := r.pool.QueryRow(ctx, `
		SELECT id, user_id, title, body, image_url, created_at, updated_at
		FROM blog_posts
		WHERE id = $1
	`, id)
	if err := row.Scan(&p.ID, &p.UserID, &p.Title, &p.Body, &p.ImageURL, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *BlogRepository) Update(ctx context.Context, p *entity.BlogPost) error {
	p.UpdatedAt = time.Now()

	res, err := r.pool.Exec(ctx, `
		UPDATE blog_posts
		SET title = $1, body = $2, image_url = $3, updated_at = $4
		WHERE id = $5
	`, p.Title, p.Body, p.ImageURL, p.UpdatedAt, p.ID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *BlogRepository) Delete(ctx context.Context, id string) error {
	res, err := r.pool.Exec(ctx, `DELETE FROM blog_posts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// listColumns aggregates reactions per post; popularity is upvotes - downvotes.
const listColumns = `
	p.id, p.user_id, p.title, p.body, p.image_url, p.created_at, p.updated_at,
	COALESCE(SUM(CASE WHEN r.type = 'upvote' THEN 1 ELSE 0 END), 0)   AS upvotes,
	COALESCE(SUM(CASE WHEN r.type = 'downvote' THEN 1 ELSE 0 END), 0) AS downvotes
`

func scanBlogWithReactions(rows pgx.Rows) (entity.BlogWithReactions, error) {
	b := entity.BlogWithReactions{}
	err := rows.Scan(&b.ID, &b.UserID, &b.Title, &b.Body, &b.ImageURL, &b.CreatedAt, &b.UpdatedAt,
		&b.Upvotes, &b.Downvotes)
	b.Popularity = b.Upvotes - b.Downvotes
	return b, err
}

func (r *BlogRepository) ListWithReactions(ctx context.Context, page, size int, sortType string) ([]entity.BlogWithReactions, int, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 10
	}

	var order string
	switch sortType {
	case repository.SortPopularity:
		order = "upvotes - downvotes DESC, p.created_at DESC"
	case repository.SortRandom:
		order = "random()"
	default: // recency
		order = "p.created_at DESC"
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+listColumns+`
		FROM blog_posts p
		LEFT JOIN blog_reactions r ON r.blog_id = p.id
		GROUP BY p.id
		ORDER BY `+order+`
		LIMIT $1 OFFSET $2
	`, size, (page-1)*size)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []entity.BlogWithReactions
	for rows.Next() {
		b, err := scanBlogWithReactions(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM blog_posts`).Scan(&total); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *BlogRepository) ListByUser(ctx context.Context, userID string) ([]entity.BlogWithReactions, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+listColumns+`
		FROM blog_posts p
		LEFT JOIN blog_reactions r ON r.blog_id = p.id
		WHERE p.user_id = $1
		GROUP BY p.id
		ORDER BY p.created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []entity.BlogWithReactions
	for rows.Next() {
		b, err := scanBlogWithReactions(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *BlogRepository) UpsertReaction(ctx context.Context, re *entity.Reaction) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO blog_reactions (blog_id, user_id, type)
		VALUES ($1, $2, $3)
		ON CONFLICT (blog_id, user_id) DO UPDATE SET type = EXCLUDED.type
		RETURNING id, created_at
	`, re.BlogID, re.UserID, re.Type)
	return row.Scan(&re.ID, &re.CreatedAt)
}

func (r *BlogRepository) AppendHistory(ctx context.Context, h *entity.BlogHistory) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO blog_history (blog_id, user_id, title, body, action)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, h.BlogID, h.UserID, h.Title, h.Body, h.Action)
	return row.Scan(&h.ID, &h.CreatedAt)
}

func (r *BlogRepository) HistoryByUser(ctx context.Context, userID string) ([]entity.BlogHistory, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, blog_id, user_id, title, body, action, created_at
		FROM blog_history
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []entity.BlogHistory
	for rows.Next() {
		h := entity.BlogHistory{}
		if err := rows.Scan(&h.ID, &h.BlogID, &h.UserID, &h.Title, &h.Body, &h.Action, &h.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// DeleteAllOfUser purges a user's reactions, history and posts in one
// transaction so account deletion never observes a half-removed state.
func (r *BlogRepository) DeleteAllOfUser(ctx context.Context, userID string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `
		DELETE FROM blog_reactions
		WHERE user_id = $1
		   OR blog_id IN (SELECT id FROM blog_posts WHERE user_id = $1)
	`, userID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM blog_history WHERE user_id = $1`, userID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM blog_posts WHERE user_id = $1`, userID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

var _ repository.BlogRepository = (*BlogRepository)(nil)
