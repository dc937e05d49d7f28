package application

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/bislerium/blog-backend/internal/domain/entity"
	repo "github.com/bislerium/blog-backend/internal/domain/repository"
	"github.com/bislerium/blog-backend/internal/infrastructure/storage"
	"github.com/bislerium/blog-backend/pkg/apperror"
	"github.com/bislerium/blog-backend/pkg/helpers"
)

// Collaborator contracts consumed by the account workflow. Implementations
// are injected at construction; the workflow depends only on these.

// OTPService issues and verifies one-time passcodes tied to a user id.
type OTPService interface {
	Generate(ctx context.Context, userID string) (string, error)
	Verify(ctx context.Context, userID, code string) (bool, error)
}

// EmailSender delivers a subject/body message to an address.
type EmailSender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// BlogContentRemover removes all blog content owned by a user. The blog
// service satisfies this.
type BlogContentRemover interface {
	DeleteAllPostsOfUser(ctx context.Context, userID string) error
}

// AccountService orchestrates account lifecycle operations across the
// identity store, OTP service, email transport, upload storage and the blog
// service, enforcing ordering and translating collaborator outcomes into a
// single caller-visible result.
type AccountService struct {
	Repo    repo.UserRepository
	OTP     OTPService
	Email   EmailSender
	Blogs   BlogContentRemover
	Storage storage.Storage
	JWT     *helpers.JWTManager
	Redis   *redis.Client
	Logger  *logrus.Logger
}

func NewAccountService(
	userRepo repo.UserRepository,
	otp OTPService,
	email EmailSender,
	blogs BlogContentRemover,
	store storage.Storage,
	jwt *helpers.JWTManager,
	rdb *redis.Client,
	logger *logrus.Logger,
) *AccountService {
	return &AccountService{
		Repo:    userRepo,
		OTP:     otp,
		Email:   email,
		Blogs:   blogs,
		Storage: store,
		JWT:     jwt,
		Redis:   rdb,
		Logger:  logger,
	}
}

func sessionKey(userID string) string {
	return "user:session:" + userID
}

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

func (s *AccountService) userByEmail(ctx context.Context, email string) (*entity.User, error) {
	u, err := s.Repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, apperror.New(apperror.NotFound, "no user associated with the email address")
		}
		return nil, apperror.Wrap(apperror.CollaboratorUnavailable, "identity store lookup failed", err)
	}
	return u, nil
}

func (s *AccountService) userByID(ctx context.Context, id string) (*entity.User, error) {
	u, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, apperror.New(apperror.NotFound, "user not found")
		}
		return nil, apperror.Wrap(apperror.CollaboratorUnavailable, "identity store lookup failed", err)
	}
	return u, nil
}

// RegisterInput carries registration fields plus an optional profile image.
type RegisterInput struct {
	Username string
	Email    string
	Phone    string
	Password string
	Role     string

	Image            io.Reader // nil when no image was attached
	ImageName        string
	ImageContentType string
	ImageSize        int64
}

// Register creates a new user with a hashed password and exactly one role,
// storing the optional profile image first.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*entity.User, error) {
	exists, err := s.Repo.RoleExists(ctx, in.Role)
	if err != nil {
		return nil, apperror.Wrap(apperror.CollaboratorUnavailable, "role lookup failed", err)
	}
	if !exists {
		return nil, apperror.New(apperror.ValidationFailed, "invalid role specified")
	}
	if v := helpers.CheckPasswordPolicy(in.Password); len(v) > 0 {
		return nil, apperror.New(apperror.ValidationFailed, "password rejected by policy").WithViolations(v)
	}

	imageURL := ""
	if in.Image != nil && in.ImageSize > 0 {
		url, err := s.Storage.Save(ctx, in.Image, in.ImageName, in.ImageContentType)
		if err != nil {
			return nil, apperror.Wrap(apperror.CollaboratorUnavailable, "storing profile image failed", err)
		}
		imageURL = url
	}

	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, apperror.Wrap(apperror.CollaboratorUnavailable, "password hashing failed", err)
	}

	u := &entity.User{
		Username: in.Username,
		Email:    in.Email,
		Phone:    in.Phone,
		ImageURL: imageURL,
		Password: hash,
	}
	if err := s.Repo.Create(ctx, u); err != nil {
		return nil, apperror.Wrap(apperror.ValidationFailed, "user could not be created", err)
	}
	if err := s.Repo.AssignRole(ctx, u.ID, in.Role); err != nil {
		return nil, apperror.Wrap(apperror.CollaboratorUnavailable, "role assignment failed", err)
	}
	return u, nil
}

// RequestPasswordReset issues an OTP for the user behind email and delivers
// it by email. The code itself is never part of the returned result.
func (s *AccountService) RequestPasswordReset(ctx context.Context, email string) error {
	u, err := s.userByEmail(ctx, email)
	if err != nil {
		return err
	}

	code, err := s.OTP.Generate(ctx, u.ID)
	if err != nil {
		return apperror.Wrap(apperror.CollaboratorUnavailable, "error generating OTP", err)
	}

	if err := s.Email.Send(ctx, u.Email, "Password Reset OTP", "Your OTP is: "+code); err != nil {
		return apperror.Wrap(apperror.DeliveryFailed, "sending OTP email failed", err)
	}

	if s.Logger != nil {
		s.Logger.WithField("user_id", u.ID).Info("password reset OTP issued")
	}
	return nil
}

// ResetPassword verifies the OTP (consuming it), then applies the new
// password. The consumed code can never be replayed, even when the new
// password is rejected by policy.
func (s *AccountService) ResetPassword(ctx context.Context, email, otp, newPassword string) error {
	u, err := s.userByEmail(ctx, email)
	if err != nil {
		return err
	}

	ok, err := s.OTP.Verify(ctx, u.ID, otp)
	if err != nil {
		return apperror.Wrap(apperror.CollaboratorUnavailable, "OTP verification failed", err)
	}
	if !ok {
		return apperror.New(apperror.OtpInvalidOrExpired, "invalid or expired OTP")
	}

	return s.applyNewPassword(ctx, u.ID, newPassword)
}

// ChangePassword applies a new password for the user behind email without an
// OTP; callers gate this behind authentication.
func (s *AccountService) ChangePassword(ctx context.Context, email, newPassword string) error {
	u, err := s.userByEmail(ctx, email)
	if err != nil {
		return err
	}
	return s.applyNewPassword(ctx, u.ID, newPassword)
}

func (s *AccountService) applyNewPassword(ctx context.Context, userID, newPassword string) error {
	if v := helpers.CheckPasswordPolicy(newPassword); len(v) > 0 {
		return apperror.New(apperror.ValidationFailed, "password rejected by policy").WithViolations(v)
	}
	hash, err := helpers.HashPassword(newPassword)
	if err != nil {
		return apperror.Wrap(apperror.CollaboratorUnavailable, "password hashing failed", err)
	}
	if err := s.Repo.UpdatePassword(ctx, userID, hash); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return apperror.New(apperror.NotFound, "user not found")
		}
		return apperror.Wrap(apperror.CollaboratorUnavailable, "password update failed", err)
	}
	return nil
}

// DeleteAccount removes a user and all of their blog content. Ordering is
// strict: blog content first, then the user record. A failed content
// deletion aborts with the user untouched; a failed user deletion after
// successful content deletion is reported as a partial failure, distinct
// from total failure, so operators can reconcile.
//
// Two concurrent deletes for the same user are not locked against each
// other; the loser observes NotFound on the user delete.
func (s *AccountService) DeleteAccount(ctx context.Context, userID string) error {
	u, err := s.userByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.Blogs.DeleteAllPostsOfUser(ctx, u.ID); err != nil {
		return apperror.Wrap(apperror.DependentDataDeletionFailed,
			"failed to delete user's blog posts and related data", err)
	}

	if err := s.Repo.Delete(ctx, u.ID); err != nil {
		// Blog content is already gone at this point; surface that distinctly.
		return apperror.Wrap(apperror.PartialFailure,
			"blog content deleted but the user profile could not be removed", err)
	}

	if s.Redis != nil {
		_ = s.Redis.Del(ctx, sessionKey(u.ID)).Err()
	}
	if s.Logger != nil {
		s.Logger.WithField("user_id", u.ID).Info("account deleted")
	}
	return nil
}

// UpdateProfileInput carries the mutable profile fields; empty values leave
// the stored field unchanged.
type UpdateProfileInput struct {
	Email    string
	Username string
	Phone    string
}

func (s *AccountService) UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (*entity.User, error) {
	u, err := s.userByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if in.Email != "" {
		u.Email = in.Email
	}
	if in.Username != "" {
		u.Username = in.Username
	}
	if in.Phone != "" {
		u.Phone = in.Phone
	}
	if err := s.persistUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *AccountService) UpdateUsername(ctx context.Context, userID, newUsername string) (*entity.User, error) {
	u, err := s.userByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	u.Username = newUsername
	if err := s.persistUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// UpdateProfileImage stores a new profile image under a fresh
// collision-resistant name and points the user's image reference at it. An
// empty payload leaves the stored reference unchanged; the user update still
// runs so other pending fields are persisted.
func (s *AccountService) UpdateProfileImage(ctx context.Context, userID string, image io.Reader, originalFileName, contentType string, size int64) (*entity.User, error) {
	u, err := s.userByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if image != nil && size > 0 {
		url, err := s.Storage.Save(ctx, image, originalFileName, contentType)
		if err != nil {
			return nil, apperror.Wrap(apperror.CollaboratorUnavailable, "storing profile image failed", err)
		}
		u.ImageURL = url
	}

	if err := s.persistUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *AccountService) persistUser(ctx context.Context, u *entity.User) error {
	if err := s.Repo.Update(ctx, u); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return apperror.New(apperror.NotFound, "user not found")
		}
		return apperror.Wrap(apperror.ValidationFailed, "failed to update the user profile", err)
	}
	return nil
}

func (s *AccountService) GetProfile(ctx context.Context, userID string) (*entity.User, error) {
	return s.userByID(ctx, userID)
}

// PrimaryRole returns the user's single role, empty when none is assigned.
func (s *AccountService) PrimaryRole(ctx context.Context, userID string) (string, error) {
	roles, err := s.Repo.GetRoles(ctx, userID)
	if err != nil {
		return "", apperror.Wrap(apperror.CollaboratorUnavailable, "role lookup failed", err)
	}
	if len(roles) == 0 {
		return "", nil
	}
	return roles[0], nil
}

func (s *AccountService) ListUsers(ctx context.Context) ([]entity.User, error) {
	users, err := s.Repo.List(ctx)
	if err != nil {
		return nil, apperror.Wrap(apperror.CollaboratorUnavailable, "listing users failed", err)
	}
	return users, nil
}

// TokenPair is the issued access/refresh token set.
type TokenPair struct {
	AccessToken        string
	AccessTokenExpiry  time.Time
	RefreshToken       string
	RefreshTokenExpiry time.Time
}

// Authenticate validates email/password and returns the user without issuing
// tokens.
func (s *AccountService) Authenticate(ctx context.Context, email, password string) (*entity.User, error) {
	u, err := s.Repo.GetByEmail(ctx, email)
	if err != nil || u == nil {
		return nil, apperror.New(apperror.Unauthorized, "invalid credentials")
	}
	if !helpers.CompareHashAndPassword(u.Password, password) {
		return nil, apperror.New(apperror.Unauthorized, "invalid credentials")
	}
	return u, nil
}

// IssueTokens generates an access/refresh pair and records a session in Redis.
func (s *AccountService) IssueTokens(ctx context.Context, u *entity.User) (TokenPair, error) {
	sid := uuid.NewString()
	access, aexp, err := s.JWT.GenerateAccessToken(u.ID, sid)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, rexp, err := s.JWT.GenerateRefreshToken(u.ID, sid)
	if err != nil {
		return TokenPair{}, err
	}

	if s.Redis != nil {
		key := sessionKey(u.ID)
		pipe := s.Redis.Pipeline()
		pipe.HSet(ctx, key, map[string]any{
			"user_id":    u.ID,
			"email":      u.Email,
			"username":   u.Username,
			"sid":        sid,
			"created_at": nowRFC3339(),
		})
		pipe.Expire(ctx, key, 24*time.Hour)
		if _, rErr := pipe.Exec(ctx); rErr != nil && s.Logger != nil {
			s.Logger.WithError(rErr).WithField("key", key).Warn("redis pipeline failed")
		}
	}

	return TokenPair{AccessToken: access, AccessTokenExpiry: aexp, RefreshToken: refresh, RefreshTokenExpiry: rexp}, nil
}

func (s *AccountService) Login(ctx context.Context, email, password string) (*entity.User, TokenPair, error) {
	u, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, TokenPair{}, err
	}
	pair, err := s.IssueTokens(ctx, u)
	if err != nil {
		return nil, TokenPair{}, apperror.Wrap(apperror.CollaboratorUnavailable, "issuing tokens failed", err)
	}
	return u, pair, nil
}

// Refresh rotates the session id and returns a fresh token pair.
func (s *AccountService) Refresh(ctx context.Context, refreshToken string) (TokenPair, string, error) {
	claims, err := s.JWT.ParseRefreshToken(refreshToken)
	if err != nil {
		return TokenPair{}, "", apperror.New(apperror.Unauthorized, "invalid refresh token")
	}
	u, err := s.Repo.GetByID(ctx, claims.UserID)
	if err != nil || u == nil {
		return TokenPair{}, "", apperror.New(apperror.Unauthorized, "invalid refresh token")
	}
	if s.Redis != nil {
		data, rErr := s.Redis.HGetAll(ctx, sessionKey(u.ID)).Result()
		if rErr != nil || len(data) == 0 || data["sid"] != claims.SessionID {
			return TokenPair{}, "", apperror.New(apperror.Unauthorized, "session not found")
		}
	}
	pair, err := s.IssueTokens(ctx, u)
	if err != nil {
		return TokenPair{}, "", apperror.Wrap(apperror.CollaboratorUnavailable, "issuing tokens failed", err)
	}
	return pair, u.ID, nil
}

// Logout drops the user's session.
func (s *AccountService) Logout(ctx context.Context, userID string) {
	if s.Redis != nil {
		_ = s.Redis.Del(ctx, sessionKey(userID)).Err()
	}
}
