package application

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bislerium/blog-backend/pkg/helpers"
)

func newTestOTPService(t *testing.T) (*RedisOTPService, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisOTPService(rdb, 5*time.Minute), mr
}

func TestOTP_GenerateAndVerify(t *testing.T) {
	svc, _ := newTestOTPService(t)
	ctx := context.Background()

	code, err := svc.Generate(ctx, "u-1")
	require.NoError(t, err)
	assert.Len(t, code, 6)

	ok, err := svc.Verify(ctx, "u-1", code)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestOTP_SingleUse(t *testing.T) {
	svc, _ := newTestOTPService(t)
	ctx := context.Background()

	code, err := svc.Generate(ctx, "u-1")
	require.NoError(t, err)

	ok, err := svc.Verify(ctx, "u-1", code)
	require.NoError(t, err)
	require.True(t, ok)

	// Consumed codes never verify again.
	ok, err = svc.Verify(ctx, "u-1", code)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestOTP_NewCodeInvalidatesPrevious(t *testing.T) {
	svc, _ := newTestOTPService(t)
	ctx := context.Background()

	first, err := svc.Generate(ctx, "u-1")
	require.NoError(t, err)
	second, err := svc.Generate(ctx, "u-1")
	require.NoError(t, err)

	if first != second {
		ok, err := svc.Verify(ctx, "u-1", first)
		require.NoError(t, err)
		assert.False(t, ok)
	}

	ok, err := svc.Verify(ctx, "u-1", second)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestOTP_Expiry(t *testing.T) {
	svc, mr := newTestOTPService(t)
	ctx := context.Background()

	code, err := svc.Generate(ctx, "u-1")
	require.NoError(t, err)

	mr.FastForward(6 * time.Minute)

	ok, err := svc.Verify(ctx, "u-1", code)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestOTP_WrongUser(t *testing.T) {
	svc, _ := newTestOTPService(t)
	ctx := context.Background()

	code, err := svc.Generate(ctx, "u-1")
	require.NoError(t, err)

	ok, err := svc.Verify(ctx, "u-2", code)
	require.NoError(t, err)
	assert.False(t, ok)

	// The miss above must not consume u-1's code.
	ok, err = svc.Verify(ctx, "u-1", code)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestOTP_KeyLayout(t *testing.T) {
	svc, mr := newTestOTPService(t)
	ctx := context.Background()

	code, err := svc.Generate(ctx, "u-1")
	require.NoError(t, err)

	got, err := mr.Get(helpers.KeyPasswordResetOTP("u-1"))
	require.NoError(t, err)
	assert.Equal(t, code, got)
}
