package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bislerium/blog-backend/internal/container"
	handlers "github.com/bislerium/blog-backend/internal/interface/http"
	"github.com/bislerium/blog-backend/internal/interface/middleware"
	"github.com/bislerium/blog-backend/pkg/helpers"
)

// BlogModule wires blog post handlers into routes.
// Public: GET /api/blogs, GET /api/blogs/:id, GET /api/blogs/search
// Protected: create/update/delete, reactions, the caller's own posts and
// their edit history.

type BlogModule struct {
	Handler *handlers.BlogHandler
	JWT     *helpers.JWTManager
}

func NewBlogModule(h *handlers.BlogHandler, jwt *helpers.JWTManager) *BlogModule {
	return &BlogModule{Handler: h, JWT: jwt}
}

func (m *BlogModule) Register(rg *gin.RouterGroup) {
	listLimiter := middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByIP(), nil)

	rg.GET("/blogs", listLimiter, m.Handler.List)
	rg.GET("/blogs/search", listLimiter, m.Handler.Search)
	rg.GET("/blogs/:id", listLimiter, m.Handler.Get)

	auth := rg.Group("/")
	auth.Use(middleware.Auth(container.GetRedis(), m.JWT))
	auth.Use(middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.POST("/blogs", m.Handler.Create)
		auth.PUT("/blogs/:id", m.Handler.Update)
		auth.DELETE("/blogs/:id", m.Handler.Delete)
		auth.POST("/blogs/:id/react", m.Handler.React)
		auth.GET("/me/blogs", m.Handler.MyBlogs)
		auth.GET("/me/blogs/history", m.Handler.History)
	}
}
