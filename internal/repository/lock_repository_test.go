package repository

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
)

func TestLockRepository_UnreachableRedis(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer rdb.Close()

	release, ok, err := NewLockRepository(rdb).Acquire(context.Background(), "reconcile:cs_1", time.Second)
	assert.Error(t, err)
	assert.False(t, ok)
	// 失败时也返回可调用的 release
	assert.NotPanics(t, release)
}
