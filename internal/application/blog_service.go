package application

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sirupsen/logrus"

	"github.com/bislerium/blog-backend/internal/domain/entity"
	repo "github.com/bislerium/blog-backend/internal/domain/repository"
	"github.com/bislerium/blog-backend/pkg/apperror"
)

// BlogService owns blog post CRUD, reaction aggregation, per-user history and
// the bulk per-user deletion consumed by account deletion. Posts are mirrored
// into Elasticsearch when a client is configured.
type BlogService struct {
	Repo         repo.BlogRepository
	Logger       *logrus.Logger
	ES           *elasticsearch.Client
	ESBlogsIndex string
}

func NewBlogService(blogRepo repo.BlogRepository, logger *logrus.Logger, es *elasticsearch.Client, esBlogsIndex string) *BlogService {
	return &BlogService{Repo: blogRepo, Logger: logger, ES: es, ESBlogsIndex: esBlogsIndex}
}

// CreateInput carries the writable post fields.
type CreateInput struct {
	Title    string
	Body     string
	ImageURL string
}

func (s *BlogService) CreatePost(ctx context.Context, userID string, in CreateInput) (*entity.BlogPost, error) {
	p := &entity.BlogPost{
		UserID:   userID,
		Title:    in.Title,
		Body:     in.Body,
		ImageURL: in.ImageURL,
	}
	if err := s.Repo.Create(ctx, p); err != nil {
		return nil, apperror.Wrap(apperror.CollaboratorUnavailable, "creating blog post failed", err)
	}
	_ = s.indexPost(ctx, p)
	return p, nil
}

// UpdatePost records the current content in history, then applies the new
// fields. Only the owner may update.
func (s *BlogService) UpdatePost(ctx context.Context, userID, blogID string, in CreateInput) (*entity.BlogPost, error) {
	p, err := s.postOwnedBy(ctx, userID, blogID)
	if err != nil {
		return nil, err
	}

	hist := &entity.BlogHistory{BlogID: p.ID, UserID: p.UserID, Title: p.Title, Body: p.Body, Action: "updated"}
	if err := s.Repo.AppendHistory(ctx, hist); err != nil {
		return nil, apperror.Wrap(apperror.CollaboratorUnavailable, "recording blog history failed", err)
	}

	if in.Title != "" {
		p.Title = in.Title
	}
	if in.Body != "" {
		p.Body = in.Body
	}
	if in.ImageURL != "" {
		p.ImageURL = in.ImageURL
	}
	if err := s.Repo.Update(ctx, p); err != nil {
		return nil, apperror.Wrap(apperror.CollaboratorUnavailable, "updating blog post failed", err)
	}
	_ = s.indexPost(ctx, p)
	return p, nil
}

func (s *BlogService) DeletePost(ctx context.Context, userID, blogID string) error {
	p, err := s.postOwnedBy(ctx, userID, blogID)
	if err != nil {
		return err
	}

	hist := &entity.BlogHistory{BlogID: p.ID, UserID: p.UserID, Title: p.Title, Body: p.Body, Action: "deleted"}
	if err := s.Repo.AppendHistory(ctx, hist); err != nil {
		return apperror.Wrap(apperror.CollaboratorUnavailable, "recording blog history failed", err)
	}
	if err := s.Repo.Delete(ctx, p.ID); err != nil {
		return apperror.Wrap(apperror.CollaboratorUnavailable, "deleting blog post failed", err)
	}
	s.deleteFromIndex(ctx, p.ID)
	return nil
}

func (s *BlogService) postOwnedBy(ctx context.Context, userID, blogID string) (*entity.BlogPost, error) {
	p, err := s.Repo.GetByID(ctx, blogID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, apperror.New(apperror.NotFound, "blog post not found")
		}
		return nil, apperror.Wrap(apperror.CollaboratorUnavailable, "blog lookup failed", err)
	}
	if p.UserID != userID {
		return nil, apperror.New(apperror.Unauthorized, "not the owner of this blog post")
	}
	return p, nil
}

func (s *BlogService) GetPost(ctx context.Context, blogID string) (*entity.BlogPost, error) {
	p, err := s.Repo.GetByID(ctx, blogID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, apperror.New(apperror.NotFound, "blog post not found")
		}
		return nil, apperror.Wrap(apperror.CollaboratorUnavailable, "blog lookup failed", err)
	}
	return p, nil
}

// GetAllBlogPosts returns one page of posts with reaction aggregates plus the
// total count. sortType is recency, popularity or random.
func (s *BlogService) GetAllBlogPosts(ctx context.Context, page, size int, sortType string) ([]entity.BlogWithReactions, int, error) {
	posts, total, err := s.Repo.ListWithReactions(ctx, page, size, sortType)
	if err != nil {
		return nil, 0, apperror.Wrap(apperror.CollaboratorUnavailable, "listing blog posts failed", err)
	}
	return posts, total, nil
}

func (s *BlogService) GetUsersBlogs(ctx context.Context, userID string) ([]entity.BlogWithReactions, error) {
	posts, err := s.Repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperror.Wrap(apperror.CollaboratorUnavailable, "listing user's blog posts failed", err)
	}
	return posts, nil
}

func (s *BlogService) GetUsersBlogHistory(ctx context.Context, userID string) ([]entity.BlogHistory, error) {
	hist, err := s.Repo.HistoryByUser(ctx, userID)
	if err != nil {
		return nil, apperror.Wrap(apperror.CollaboratorUnavailable, "listing blog history failed", err)
	}
	return hist, nil
}

// React records or replaces the caller's reaction to a post.
func (s *BlogService) React(ctx context.Context, userID, blogID, reactionType string) error {
	if reactionType != entity.ReactionUpvote && reactionType != entity.ReactionDownvote {
		return apperror.New(apperror.ValidationFailed, "reaction must be upvote or downvote")
	}
	if _, err := s.GetPost(ctx, blogID); err != nil {
		return err
	}
	r := &entity.Reaction{BlogID: blogID, UserID: userID, Type: reactionType}
	if err := s.Repo.UpsertReaction(ctx, r); err != nil {
		return apperror.Wrap(apperror.CollaboratorUnavailable, "recording reaction failed", err)
	}
	return nil
}

// DeleteAllPostsOfUser removes everything the user owns in one transaction.
// This is the collaborator entry point used by account deletion.
func (s *BlogService) DeleteAllPostsOfUser(ctx context.Context, userID string) error {
	if err := s.Repo.DeleteAllOfUser(ctx, userID); err != nil {
		return err
	}
	s.deleteUserFromIndex(ctx, userID)
	if s.Logger != nil {
		s.Logger.WithField("user_id", userID).Info("all blog content of user deleted")
	}
	return nil
}

func (s *BlogService) indexPost(ctx context.Context, p *entity.BlogPost) error {
	if s.ES == nil || s.ESBlogsIndex == "" {
		return nil
	}
	doc := map[string]any{
		"id":         p.ID,
		"user_id":    p.UserID,
		"title":      p.Title,
		"body":       p.Body,
		"created_at": p.CreatedAt.Format(time.RFC3339Nano),
		"updated_at": p.UpdatedAt.Format(time.RFC3339Nano),
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: s.ESBlogsIndex, DocumentID: p.ID, Body: strings.NewReader(string(b)), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("blog_id", p.ID).Warn("es index failed")
		}
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && s.Logger != nil {
		s.Logger.WithField("status", res.Status()).WithField("blog_id", p.ID).Warn("es index response error")
	}
	return nil
}

func (s *BlogService) deleteFromIndex(ctx context.Context, blogID string) {
	if s.ES == nil || s.ESBlogsIndex == "" {
		return
	}
	req := esapi.DeleteRequest{Index: s.ESBlogsIndex, DocumentID: blogID}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("blog_id", blogID).Warn("es delete failed")
		}
		return
	}
	_ = res.Body.Close()
}

func (s *BlogService) deleteUserFromIndex(ctx context.Context, userID string) {
	if s.ES == nil || s.ESBlogsIndex == "" {
		return
	}
	query := map[string]any{
		"query": map[string]any{
			"term": map[string]any{"user_id": userID},
		},
	}
	b, _ := json.Marshal(query)
	req := esapi.DeleteByQueryRequest{Index: []string{s.ESBlogsIndex}, Body: strings.NewReader(string(b))}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", userID).Warn("es delete-by-query failed")
		}
		return
	}
	_ = res.Body.Close()
}

// SearchBlogs performs a multi_match search on title and body. Returns an
// empty result when Elasticsearch is not configured.
func (s *BlogService) SearchBlogs(ctx context.Context, q string, size int) ([]map[string]any, error) {
	if s.ES == nil || s.ESBlogsIndex == "" {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"title^2", "body"},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := s.ES.Search(s.ES.Search.WithContext(c), s.ES.Search.WithIndex(s.ESBlogsIndex), s.ES.Search.WithBody(strings.NewReader(string(b))))
	if err != nil {
		return nil, apperror.Wrap(apperror.CollaboratorUnavailable, "search failed", err)
	}
	defer func() { _ = res.Body.Close() }()

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string         `json:"_id"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, apperror.Wrap(apperror.CollaboratorUnavailable, "search response decode failed", err)
	}

	out := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}

var _ BlogContentRemover = (*BlogService)(nil)
