package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/bislerium/blog-backend/internal/application"
	"github.com/bislerium/blog-backend/internal/domain/repository"
	"github.com/bislerium/blog-backend/pkg/response"
	"github.com/bislerium/blog-backend/pkg/validation"
)

// BlogHandler exposes blog post CRUD, listing and reactions over HTTP.
type BlogHandler struct {
	Svc    *application.BlogService
	Logger *logrus.Logger
}

func NewBlogHandler(svc *application.BlogService, logger *logrus.Logger) *BlogHandler {
	return &BlogHandler{Svc: svc, Logger: logger}
}

type blogRequest struct {
	Title    string `json:"title" binding:"required,min=3,max=200"`
	Body     string `json:"body" binding:"required"`
	ImageURL string `json:"image_url"`
}

type blogUpdateRequest struct {
	Title    string `json:"title" binding:"omitempty,min=3,max=200"`
	Body     string `json:"body"`
	ImageURL string `json:"image_url"`
}

// Create POST /api/blogs (authenticated)
func (h *BlogHandler) Create(c *gin.Context) {
	var req blogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	p, err := h.Svc.CreatePost(c.Request.Context(), c.GetString("userID"), application.CreateInput{
		Title: req.Title, Body: req.Body, ImageURL: req.ImageURL,
	})
	if err != nil {
		writeAppError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, p, "blog post created", nil)
}

// Update PUT /api/blogs/:id (authenticated, owner only)
func (h *BlogHandler) Update(c *gin.Context) {
	var req blogUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	p, err := h.Svc.UpdatePost(c.Request.Context(), c.GetString("userID"), c.Param("id"), application.CreateInput{
		Title: req.Title, Body: req.Body, ImageURL: req.ImageURL,
	})
	if err != nil {
		writeAppError(c, err)
		return
	}
	response.Success(c, http.StatusOK, p, "blog post updated", nil)
}

// Delete DELETE /api/blogs/:id (authenticated, owner only)
func (h *BlogHandler) Delete(c *gin.Context) {
	if err := h.Svc.DeletePost(c.Request.Context(), c.GetString("userID"), c.Param("id")); err != nil {
		writeAppError(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "blog post deleted", nil)
}

// List GET /api/blogs?page=&size=&sort=
func (h *BlogHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))
	sort := c.DefaultQuery("sort", repository.SortRecency)

	posts, total, err := h.Svc.GetAllBlogPosts(c.Request.Context(), page, size, sort)
	if err != nil {
		writeAppError(c, err)
		return
	}
	response.Success(c, http.StatusOK, posts, "blog posts", map[string]any{
		"page":  page,
		"size":  size,
		"total": total,
		"sort":  sort,
	})
}

// Get GET /api/blogs/:id
func (h *BlogHandler) Get(c *gin.Context) {
	p, err := h.Svc.GetPost(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeAppError(c, err)
		return
	}
	response.Success(c, http.StatusOK, p, "blog post", nil)
}

// Search GET /api/blogs/search?q=&size=
func (h *BlogHandler) Search(c *gin.Context) {
	q := c.Query("q")
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))
	hits, err := h.Svc.SearchBlogs(c.Request.Context(), q, size)
	if err != nil {
		writeAppError(c, err)
		return
	}
	response.Success(c, http.StatusOK, hits, "search results", nil)
}

// MyBlogs GET /api/me/blogs (authenticated)
func (h *BlogHandler) MyBlogs(c *gin.Context) {
	posts, err := h.Svc.GetUsersBlogs(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		writeAppError(c, err)
		return
	}
	response.Success(c, http.StatusOK, posts, "your blog posts", nil)
}

// History GET /api/me/blogs/history (authenticated)
func (h *BlogHandler) History(c *gin.Context) {
	hist, err := h.Svc.GetUsersBlogHistory(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		writeAppError(c, err)
		return
	}
	response.Success(c, http.StatusOK, hist, "your blog history", nil)
}

type reactRequest struct {
	Type string `json:"type" binding:"required,oneof=upvote downvote"`
}

// React POST /api/blogs/:id/react (authenticated)
func (h *BlogHandler) React(c *gin.Context) {
	var req reactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if err := h.Svc.React(c.Request.Context(), c.GetString("userID"), c.Param("id"), req.Type); err != nil {
		writeAppError(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "reaction recorded", nil)
}
