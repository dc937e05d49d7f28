package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bislerium/blog-backend/internal/container"
	"github.com/bislerium/blog-backend/internal/domain/entity"
	handlers "github.com/bislerium/blog-backend/internal/interface/http"
	"github.com/bislerium/blog-backend/internal/interface/middleware"
	"github.com/bislerium/blog-backend/pkg/helpers"
)

// AccountModule wires account and auth HTTP handlers into routes.
// Public: POST /api/register, POST /api/login, POST /api/refresh,
// POST /api/password/forgot, POST /api/password/reset
// Protected: everything under /api behind the session-backed JWT middleware;
// user administration additionally requires the admin role.

type AccountModule struct {
	Account *handlers.AccountHandler
	Auth    *handlers.AuthHandler
	JWT     *helpers.JWTManager
}

func NewAccountModule(account *handlers.AccountHandler, auth *handlers.AuthHandler, jwt *helpers.JWTManager) *AccountModule {
	return &AccountModule{Account: account, Auth: auth, JWT: jwt}
}

func (m *AccountModule) Register(rg *gin.RouterGroup) {
	// Public with rate limiting
	registerLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIPAndPath(), nil)
	loginLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIP(), nil) // 10 req/min per IP
	refreshLimiter := middleware.RateLimit(container.GetRedis(), 60, time.Minute, middleware.KeyByIP(), nil)
	forgotLimiter := middleware.RateLimit(container.GetRedis(), 5, time.Minute, middleware.KeyByIPAndPath(), nil)
	resetLimiter := middleware.RateLimit(container.GetRedis(), 30, time.Minute, middleware.KeyByIPAndPath(), nil)

	rg.POST("/register", registerLimiter, m.Account.Register)
	rg.POST("/login", loginLimiter, m.Auth.Login)
	rg.POST("/refresh", refreshLimiter, m.Auth.Refresh)
	rg.POST("/password/forgot", forgotLimiter, m.Account.ForgotPassword)
	rg.POST("/password/reset", resetLimiter, m.Account.ResetPassword)

	// Protected
	auth := rg.Group("/")
	auth.Use(middleware.Auth(container.GetRedis(), m.JWT))
	auth.Use(
		middleware.RateLimit(container.GetRedis(), 300, time.Minute, middleware.KeyByIP(), nil),
		middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID(), nil),
	)
	{
		auth.POST("/logout", m.Auth.Logout)
		auth.GET("/profile", m.Account.GetProfile)
		auth.PUT("/profile", m.Account.UpdateProfile)
		auth.PUT("/profile/username", m.Account.UpdateUsername)
		auth.PUT("/profile/image", m.Account.UpdateImage)
		auth.POST("/password/change", m.Account.ChangePassword)
		auth.DELETE("/account", m.Account.DeleteOwnAccount)
	}

	// User administration, admin role only
	admin := auth.Group("/users")
	admin.Use(middleware.RequireRole(entity.RoleAdmin, func(c *gin.Context, userID string) ([]string, error) {
		return m.Account.Svc.Repo.GetRoles(c.Request.Context(), userID)
	}))
	{
		admin.GET("", m.Account.ListUsers)
		admin.DELETE("/:id", m.Account.DeleteUserByID)
	}
}
