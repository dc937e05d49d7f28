package application

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bislerium/blog-backend/pkg/helpers"
)

// consumeScript atomically compares the stored code and deletes it on match.
// A code can therefore never pass verification twice, even under concurrent
// attempts.
var consumeScript = redis.NewScript(`
local v = redis.call("GET", KEYS[1])
if v == ARGV[1] then
  redis.call("DEL", KEYS[1])
  return 1
end
return 0
`)

// RedisOTPService issues and verifies password-reset passcodes. One active
// code per user: issuing a new one overwrites the previous, and the TTL
// bounds its lifetime.
type RedisOTPService struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisOTPService(rdb *redis.Client, ttl time.Duration) *RedisOTPService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisOTPService{rdb: rdb, ttl: ttl}
}

// TTL returns the configured passcode lifetime.
func (s *RedisOTPService) TTL() time.Duration { return s.ttl }

func (s *RedisOTPService) Generate(ctx context.Context, userID string) (string, error) {
	code, err := helpers.GenOTPCode()
	if err != nil {
		return "", err
	}
	if err := s.rdb.Set(ctx, helpers.KeyPasswordResetOTP(userID), code, s.ttl).Err(); err != nil {
		return "", err
	}
	return code, nil
}

func (s *RedisOTPService) Verify(ctx context.Context, userID, code string) (bool, error) {
	if code == "" {
		return false, nil
	}
	n, err := consumeScript.Run(ctx, s.rdb, []string{helpers.KeyPasswordResetOTP(userID)}, code).Int()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

var _ OTPService = (*RedisOTPService)(nil)
