package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/bislerium/blog-backend/internal/application"
	"github.com/bislerium/blog-backend/internal/domain/entity"
	"github.com/bislerium/blog-backend/pkg/apperror"
	"github.com/bislerium/blog-backend/pkg/response"
	"github.com/bislerium/blog-backend/pkg/validation"
)

// AccountHandler exposes the account workflow over HTTP.
type AccountHandler struct {
	Svc    *application.AccountService
	Logger *logrus.Logger
}

func NewAccountHandler(svc *application.AccountService, logger *logrus.Logger) *AccountHandler {
	return &AccountHandler{Svc: svc, Logger: logger}
}

// writeAppError translates a service error into the API envelope. Violations
// attached to the error surface as the structured error detail.
func writeAppError(c *gin.Context, err error) {
	var detail interface{}
	if v := apperror.ViolationsOf(err); len(v) > 0 {
		detail = v
	}
	response.Error[any](c, apperror.HTTPStatus(err), err.Error(), detail)
}

func userDetails(c *gin.Context, h *AccountHandler, u *entity.User) gin.H {
	role, _ := h.Svc.PrimaryRole(c.Request.Context(), u.ID)
	return gin.H{
		"id":        u.ID,
		"username":  u.Username,
		"email":     u.Email,
		"phone":     u.Phone,
		"role":      role,
		"image_url": u.ImageURL,
	}
}

type forgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ForgotPassword POST /api/password/forgot
func (h *AccountHandler) ForgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if err := h.Svc.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		writeAppError(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "OTP sent to your email address", nil)
}

type resetPasswordRequest struct {
	Email       string `json:"email" binding:"required,email"`
	OTP         string `json:"otp" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,pwd"`
}

// ResetPassword POST /api/password/reset
func (h *AccountHandler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if err := h.Svc.ResetPassword(c.Request.Context(), req.Email, req.OTP, req.NewPassword); err != nil {
		writeAppError(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "password successfully updated", nil)
}

type changePasswordRequest struct {
	Email       string `json:"email" binding:"required,email"`
	NewPassword string `json:"new_password" binding:"required,pwd"`
}

// ChangePassword POST /api/password/change (authenticated)
func (h *AccountHandler) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if err := h.Svc.ChangePassword(c.Request.Context(), req.Email, req.NewPassword); err != nil {
		writeAppError(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "password successfully updated", nil)
}

// Register POST /api/register (multipart form, optional image)
func (h *AccountHandler) Register(c *gin.Context) {
	var req struct {
		Username string `form:"username" binding:"required,username"`
		Email    string `form:"email" binding:"required,email"`
		Phone    string `form:"phone"`
		Password string `form:"password" binding:"required,pwd"`
		Role     string `form:"role" binding:"required"`
	}
	if err := c.ShouldBind(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	in := application.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
		Role:     req.Role,
	}
	if fh, err := c.FormFile("image"); err == nil && fh.Size > 0 {
		f, err := fh.Open()
		if err != nil {
			response.Error[any](c, http.StatusBadRequest, "could not read image", nil)
			return
		}
		defer func() { _ = f.Close() }()
		in.Image = f
		in.ImageName = fh.Filename
		in.ImageContentType = fh.Header.Get("Content-Type")
		in.ImageSize = fh.Size
	}

	u, err := h.Svc.Register(c.Request.Context(), in)
	if err != nil {
		writeAppError(c, err)
		return
	}
	response.Success(c, http.StatusOK, userDetails(c, h, u), "user registered successfully", nil)
}

// ListUsers GET /api/users (admin)
func (h *AccountHandler) ListUsers(c *gin.Context) {
	users, err := h.Svc.ListUsers(c.Request.Context())
	if err != nil {
		writeAppError(c, err)
		return
	}
	out := make([]gin.H, 0, len(users))
	for i := range users {
		out = append(out, userDetails(c, h, &users[i]))
	}
	response.Success(c, http.StatusOK, out, "users", nil)
}

// DeleteUserByID DELETE /api/users/:id (admin)
func (h *AccountHandler) DeleteUserByID(c *gin.Context) {
	if err := h.Svc.DeleteAccount(c.Request.Context(), c.Param("id")); err != nil {
		writeAppError(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "user deleted successfully", nil)
}

// DeleteOwnAccount DELETE /api/account (authenticated)
func (h *AccountHandler) DeleteOwnAccount(c *gin.Context) {
	uid := c.GetString("userID")
	if err := h.Svc.DeleteAccount(c.Request.Context(), uid); err != nil {
		writeAppError(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "user deleted successfully", nil)
}

type updateProfileRequest struct {
	Email    string `json:"email" binding:"omitempty,email"`
	Username string `json:"username" binding:"omitempty,username"`
	Phone    string `json:"phone" binding:"omitempty,phone"`
}

// UpdateProfile PUT /api/profile (authenticated)
func (h *AccountHandler) UpdateProfile(c *gin.Context) {
	uid := c.GetString("userID")
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	u, err := h.Svc.UpdateProfile(c.Request.Context(), uid, application.UpdateProfileInput{
		Email:    req.Email,
		Username: req.Username,
		Phone:    req.Phone,
	})
	if err != nil {
		writeAppError(c, err)
		return
	}
	response.Success(c, http.StatusOK, userDetails(c, h, u), "successfully updated", nil)
}

type updateUsernameRequest struct {
	NewUsername string `json:"new_username" binding:"required,username"`
}

// UpdateUsername PUT /api/profile/username (authenticated)
func (h *AccountHandler) UpdateUsername(c *gin.Context) {
	uid := c.GetString("userID")
	var req updateUsernameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	u, err := h.Svc.UpdateUsername(c.Request.Context(), uid, req.NewUsername)
	if err != nil {
		writeAppError(c, err)
		return
	}
	response.Success(c, http.StatusOK, userDetails(c, h, u), "username updated", nil)
}

// UpdateImage PUT /api/profile/image (authenticated, multipart form)
func (h *AccountHandler) UpdateImage(c *gin.Context) {
	uid := c.GetString("userID")

	fh, err := c.FormFile("image")
	if err != nil {
		// Empty payload: the image reference stays untouched but the update
		// still runs for any other pending fields.
		u, uerr := h.Svc.UpdateProfileImage(c.Request.Context(), uid, nil, "", "", 0)
		if uerr != nil {
			writeAppError(c, uerr)
			return
		}
		response.Success(c, http.StatusOK, userDetails(c, h, u), "profile updated", nil)
		return
	}

	f, err := fh.Open()
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "could not read image", nil)
		return
	}
	defer func() { _ = f.Close() }()

	u, err := h.Svc.UpdateProfileImage(c.Request.Context(), uid, f, fh.Filename, fh.Header.Get("Content-Type"), fh.Size)
	if err != nil {
		writeAppError(c, err)
		return
	}
	response.Success(c, http.StatusOK, userDetails(c, h, u), "profile image updated", nil)
}

// GetProfile GET /api/profile (authenticated)
func (h *AccountHandler) GetProfile(c *gin.Context) {
	uid := c.GetString("userID")
	u, err := h.Svc.GetProfile(c.Request.Context(), uid)
	if err != nil {
		writeAppError(c, err)
		return
	}
	response.Success(c, http.StatusOK, userDetails(c, h, u), "profile", nil)
}
