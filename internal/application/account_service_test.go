package application

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/bislerium/blog-backend/internal/domain/entity"
	repo "github.com/bislerium/blog-backend/internal/domain/repository"
	"github.com/bislerium/blog-backend/pkg/apperror"
	"github.com/bislerium/blog-backend/pkg/helpers"
)

// MockUserRepository is a testify mock over the identity store contract.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, u *entity.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context) ([]entity.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.User), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, u *entity.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	args := m.Called(ctx, id, passwordHash)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserRepository) RoleExists(ctx context.Context, name string) (bool, error) {
	args := m.Called(ctx, name)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) AssignRole(ctx context.Context, userID, roleName string) error {
	args := m.Called(ctx, userID, roleName)
	return args.Error(0)
}

func (m *MockUserRepository) GetRoles(ctx context.Context, userID string) ([]string, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type MockOTPService struct {
	mock.Mock
}

func (m *MockOTPService) Generate(ctx context.Context, userID string) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

func (m *MockOTPService) Verify(ctx context.Context, userID, code string) (bool, error) {
	args := m.Called(ctx, userID, code)
	return args.Bool(0), args.Error(1)
}

type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) Send(ctx context.Context, to, subject, body string) error {
	args := m.Called(ctx, to, subject, body)
	return args.Error(0)
}

type MockBlogRemover struct {
	mock.Mock
}

func (m *MockBlogRemover) DeleteAllPostsOfUser(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) Save(ctx context.Context, r io.Reader, originalFileName, contentType string) (string, error) {
	args := m.Called(ctx, r, originalFileName, contentType)
	return args.String(0), args.Error(1)
}

type accountMocks struct {
	Repo    *MockUserRepository
	OTP     *MockOTPService
	Email   *MockEmailSender
	Blogs   *MockBlogRemover
	Storage *MockStorage
}

func newTestAccountService(t *testing.T) (*AccountService, *accountMocks) {
	t.Helper()
	m := &accountMocks{
		Repo:    new(MockUserRepository),
		OTP:     new(MockOTPService),
		Email:   new(MockEmailSender),
		Blogs:   new(MockBlogRemover),
		Storage: new(MockStorage),
	}
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	svc := NewAccountService(m.Repo, m.OTP, m.Email, m.Blogs, m.Storage, nil, nil, logger)
	return svc, m
}

func testUser() *entity.User {
	hash, _ := helpers.HashPassword("Sw0rdfish")
	return &entity.User{
		ID:       "u-1",
		Username: "gandalf",
		Email:    "gandalf@example.com",
		Phone:    "+9779800000000",
		ImageURL: "/uploads/old.png",
		Password: hash,
	}
}

func TestRequestPasswordReset_Success(t *testing.T) {
	svc, m := newTestAccountService(t)
	u := testUser()

	m.Repo.On("GetByEmail", mock.Anything, u.Email).Return(u, nil)
	m.OTP.On("Generate", mock.Anything, u.ID).Return("482915", nil)
	m.Email.On("Send", mock.Anything, u.Email, "Password Reset OTP", mock.MatchedBy(func(body string) bool {
		return strings.Contains(body, "482915")
	})).Return(nil)

	err := svc.RequestPasswordReset(context.Background(), u.Email)

	require.NoError(t, err)
	m.Repo.AssertExpectations(t)
	m.OTP.AssertExpectations(t)
	m.Email.AssertExpectations(t)
}

func TestRequestPasswordReset_UnknownEmail(t *testing.T) {
	svc, m := newTestAccountService(t)

	m.Repo.On("GetByEmail", mock.Anything, "nobody@example.com").Return(nil, repo.ErrNotFound)

	err := svc.RequestPasswordReset(context.Background(), "nobody@example.com")

	require.Error(t, err)
	assert.Equal(t, apperror.NotFound, apperror.KindOf(err))
	m.OTP.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
	m.Email.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRequestPasswordReset_DeliveryFailure(t *testing.T) {
	svc, m := newTestAccountService(t)
	u := testUser()

	m.Repo.On("GetByEmail", mock.Anything, u.Email).Return(u, nil)
	m.OTP.On("Generate", mock.Anything, u.ID).Return("482915", nil)
	m.Email.On("Send", mock.Anything, u.Email, mock.Anything, mock.Anything).
		Return(errors.New("smtp: connection refused"))

	err := svc.RequestPasswordReset(context.Background(), u.Email)

	require.Error(t, err)
	assert.Equal(t, apperror.DeliveryFailed, apperror.KindOf(err))
}

func TestResetPassword_ConsumesOTP(t *testing.T) {
	svc, m := newTestAccountService(t)
	u := testUser()

	m.Repo.On("GetByEmail", mock.Anything, u.Email).Return(u, nil)
	m.OTP.On("Verify", mock.Anything, u.ID, "482915").Return(true, nil).Once()
	m.OTP.On("Verify", mock.Anything, u.ID, "482915").Return(false, nil)
	m.Repo.On("UpdatePassword", mock.Anything, u.ID, mock.Anything).Return(nil).Once()

	require.NoError(t, svc.ResetPassword(context.Background(), u.Email, "482915", "NewPass123"))

	// Replaying the consumed code must fail and must not touch the password.
	err := svc.ResetPassword(context.Background(), u.Email, "482915", "OtherPass123")
	require.Error(t, err)
	assert.Equal(t, apperror.OtpInvalidOrExpired, apperror.KindOf(err))
	m.Repo.AssertNumberOfCalls(t, "UpdatePassword", 1)
}

func TestResetPassword_WeakPasswordStillConsumesOTP(t *testing.T) {
	svc, m := newTestAccountService(t)
	u := testUser()

	m.Repo.On("GetByEmail", mock.Anything, u.Email).Return(u, nil)
	m.OTP.On("Verify", mock.Anything, u.ID, "482915").Return(true, nil).Once()

	err := svc.ResetPassword(context.Background(), u.Email, "482915", "weak")

	require.Error(t, err)
	assert.Equal(t, apperror.ValidationFailed, apperror.KindOf(err))
	assert.NotEmpty(t, apperror.ViolationsOf(err))
	m.OTP.AssertNumberOfCalls(t, "Verify", 1)
	m.Repo.AssertNotCalled(t, "UpdatePassword", mock.Anything, mock.Anything, mock.Anything)
}

func TestResetPassword_WrongCode(t *testing.T) {
	svc, m := newTestAccountService(t)
	u := testUser()

	m.Repo.On("GetByEmail", mock.Anything, u.Email).Return(u, nil)
	m.OTP.On("Verify", mock.Anything, u.ID, "000000").Return(false, nil)

	err := svc.ResetPassword(context.Background(), u.Email, "000000", "NewPass123")

	require.Error(t, err)
	assert.Equal(t, apperror.OtpInvalidOrExpired, apperror.KindOf(err))
	m.Repo.AssertNotCalled(t, "UpdatePassword", mock.Anything, mock.Anything, mock.Anything)
}

func TestDeleteAccount_ContentDeletedBeforeUser(t *testing.T) {
	svc, m := newTestAccountService(t)
	u := testUser()

	var calls []string
	m.Repo.On("GetByID", mock.Anything, u.ID).Return(u, nil)
	m.Blogs.On("DeleteAllPostsOfUser", mock.Anything, u.ID).Run(func(mock.Arguments) {
		calls = append(calls, "blogs")
	}).Return(nil)
	m.Repo.On("Delete", mock.Anything, u.ID).Run(func(mock.Arguments) {
		calls = append(calls, "user")
	}).Return(nil)

	require.NoError(t, svc.DeleteAccount(context.Background(), u.ID))
	assert.Equal(t, []string{"blogs", "user"}, calls)
}

func TestDeleteAccount_DependentDeletionFailureLeavesUser(t *testing.T) {
	svc, m := newTestAccountService(t)
	u := testUser()

	m.Repo.On("GetByID", mock.Anything, u.ID).Return(u, nil)
	m.Blogs.On("DeleteAllPostsOfUser", mock.Anything, u.ID).Return(errors.New("tx aborted"))

	err := svc.DeleteAccount(context.Background(), u.ID)

	require.Error(t, err)
	assert.Equal(t, apperror.DependentDataDeletionFailed, apperror.KindOf(err))
	m.Repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestDeleteAccount_UserDeleteFailureIsPartial(t *testing.T) {
	svc, m := newTestAccountService(t)
	u := testUser()

	m.Repo.On("GetByID", mock.Anything, u.ID).Return(u, nil)
	m.Blogs.On("DeleteAllPostsOfUser", mock.Anything, u.ID).Return(nil)
	m.Repo.On("Delete", mock.Anything, u.ID).Return(errors.New("deadlock detected"))

	err := svc.DeleteAccount(context.Background(), u.ID)

	require.Error(t, err)
	assert.Equal(t, apperror.PartialFailure, apperror.KindOf(err))
}

func TestDeleteAccount_UnknownUser(t *testing.T) {
	svc, m := newTestAccountService(t)

	m.Repo.On("GetByID", mock.Anything, "ghost").Return(nil, repo.ErrNotFound)

	err := svc.DeleteAccount(context.Background(), "ghost")

	require.Error(t, err)
	assert.Equal(t, apperror.NotFound, apperror.KindOf(err))
	m.Blogs.AssertNotCalled(t, "DeleteAllPostsOfUser", mock.Anything, mock.Anything)
}

func TestUpdateProfileImage_EmptyPayloadKeepsReference(t *testing.T) {
	svc, m := newTestAccountService(t)
	u := testUser()

	m.Repo.On("GetByID", mock.Anything, u.ID).Return(u, nil)
	m.Repo.On("Update", mock.Anything, mock.Anything).Return(nil)

	got, err := svc.UpdateProfileImage(context.Background(), u.ID, nil, "", "", 0)

	require.NoError(t, err)
	assert.Equal(t, "/uploads/old.png", got.ImageURL)
	m.Storage.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	m.Repo.AssertCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestUpdateProfileImage_NewImageGetsFreshReference(t *testing.T) {
	svc, m := newTestAccountService(t)
	u := testUser()
	payload := strings.NewReader("pngbytes")

	m.Repo.On("GetByID", mock.Anything, u.ID).Return(u, nil)
	m.Storage.On("Save", mock.Anything, payload, "avatar.png", "image/png").
		Return("/uploads/3f2c.png", nil)
	m.Repo.On("Update", mock.Anything, mock.Anything).Return(nil)

	got, err := svc.UpdateProfileImage(context.Background(), u.ID, payload, "avatar.png", "image/png", int64(payload.Len()))

	require.NoError(t, err)
	assert.Equal(t, "/uploads/3f2c.png", got.ImageURL)
	assert.NotEqual(t, "/uploads/old.png", got.ImageURL)
}

func TestRegister_InvalidRole(t *testing.T) {
	svc, m := newTestAccountService(t)

	m.Repo.On("RoleExists", mock.Anything, "superuser").Return(false, nil)

	_, err := svc.Register(context.Background(), RegisterInput{
		Username: "frodo",
		Email:    "frodo@example.com",
		Password: "Precious123",
		Role:     "superuser",
	})

	require.Error(t, err)
	assert.Equal(t, apperror.ValidationFailed, apperror.KindOf(err))
	m.Repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRegister_WeakPassword(t *testing.T) {
	svc, m := newTestAccountService(t)

	m.Repo.On("RoleExists", mock.Anything, entity.RoleBlogger).Return(true, nil)

	_, err := svc.Register(context.Background(), RegisterInput{
		Username: "frodo",
		Email:    "frodo@example.com",
		Password: "short",
		Role:     entity.RoleBlogger,
	})

	require.Error(t, err)
	assert.Equal(t, apperror.ValidationFailed, apperror.KindOf(err))
	assert.NotEmpty(t, apperror.ViolationsOf(err))
}

func TestRegister_WithImage(t *testing.T) {
	svc, m := newTestAccountService(t)
	payload := strings.NewReader("pngbytes")

	m.Repo.On("RoleExists", mock.Anything, entity.RoleBlogger).Return(true, nil)
	m.Storage.On("Save", mock.Anything, payload, "me.png", "image/png").
		Return("/uploads/ab12.png", nil)
	m.Repo.On("Create", mock.Anything, mock.MatchedBy(func(u *entity.User) bool {
		return u.ImageURL == "/uploads/ab12.png" && u.Password != "Precious123"
	})).Return(nil)
	m.Repo.On("AssignRole", mock.Anything, mock.Anything, entity.RoleBlogger).Return(nil)

	u, err := svc.Register(context.Background(), RegisterInput{
		Username:         "frodo",
		Email:            "frodo@example.com",
		Password:         "Precious123",
		Role:             entity.RoleBlogger,
		Image:            payload,
		ImageName:        "me.png",
		ImageContentType: "image/png",
		ImageSize:        int64(payload.Len()),
	})

	require.NoError(t, err)
	assert.True(t, helpers.CompareHashAndPassword(u.Password, "Precious123"))
	m.Repo.AssertExpectations(t)
}

func TestAuthenticate_WrongPassword(t *testing.T) {
	svc, m := newTestAccountService(t)
	u := testUser()

	m.Repo.On("GetByEmail", mock.Anything, u.Email).Return(u, nil)

	_, err := svc.Authenticate(context.Background(), u.Email, "WrongPass1")

	require.Error(t, err)
	assert.Equal(t, apperror.Unauthorized, apperror.KindOf(err))
}

func TestChangePassword_UpdatesHash(t *testing.T) {
	svc, m := newTestAccountService(t)
	u := testUser()

	m.Repo.On("GetByEmail", mock.Anything, u.Email).Return(u, nil)
	m.Repo.On("UpdatePassword", mock.Anything, u.ID, mock.MatchedBy(func(hash string) bool {
		return helpers.CompareHashAndPassword(hash, "NewPass123")
	})).Return(nil)

	require.NoError(t, svc.ChangePassword(context.Background(), u.Email, "NewPass123"))
	m.Repo.AssertExpectations(t)
}
