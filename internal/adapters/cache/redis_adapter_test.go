package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"

	redisclient "github.com/zatekoja/medlibrary/internal/infrastructure/clients/redis"
)

func TestRedisAdapter_KeyPrefix(t *testing.T) {
	a := &RedisAdapter{prefix: DefaultKeyPrefix}
	assert.Equal(t, "medlib:cache:abc", a.key("cache:abc"))
}

func TestRedisAdapter_UnreachableServerIsNotAMiss(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	adapter := NewRedisAdapter(redisclient.NewClientWithRedis(client))
	_, err := adapter.Get(context.Background(), "anything")

	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrCacheMiss))
}
