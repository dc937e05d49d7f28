package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bislerium/blog-backend/pkg/helpers"
)

func newAuthRouter(t *testing.T) (*gin.Engine, *redis.Client, *helpers.JWTManager) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	jwt := helpers.NewJWTManager(helpers.JWTSettings{
		Issuer:       "blog-backend",
		Audience:     "blog-frontend",
		AccessSecret: "access-secret",
		AccessTTL:    time.Hour,
	})

	r := gin.New()
	r.GET("/me", Auth(rdb, jwt), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("userID"))
	})
	return r, rdb, jwt
}

func seedSession(t *testing.T, rdb *redis.Client, userID, sid string) {
	t.Helper()
	err := rdb.HSet(t.Context(), "user:session:"+userID, map[string]any{
		"user_id":  userID,
		"email":    "gandalf@example.com",
		"username": "gandalf",
		"sid":      sid,
	}).Err()
	require.NoError(t, err)
}

func TestAuth_ValidSession(t *testing.T) {
	r, rdb, jwt := newAuthRouter(t)
	seedSession(t, rdb, "u-1", "sid-1")

	token, _, err := jwt.GenerateAccessToken("u-1", "sid-1")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: token})
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u-1", w.Body.String())
}

func TestAuth_MissingCookie(t *testing.T) {
	r, _, _ := newAuthRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_StaleSessionID(t *testing.T) {
	r, rdb, jwt := newAuthRouter(t)
	seedSession(t, rdb, "u-1", "sid-new")

	// Token carries a rotated-out session id.
	token, _, err := jwt.GenerateAccessToken("u-1", "sid-old")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: token})
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_NoSession(t *testing.T) {
	r, _, jwt := newAuthRouter(t)

	token, _, err := jwt.GenerateAccessToken("u-1", "sid-1")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: token})
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireRole(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/admin",
		func(c *gin.Context) { c.Set("userID", "u-1") },
		RequireRole("admin", func(c *gin.Context, userID string) ([]string, error) {
			if userID == "u-1" {
				return []string{"blogger"}, nil
			}
			return nil, nil
		}),
		func(c *gin.Context) { c.String(http.StatusOK, "ok") },
	)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}
