package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewRejectsBadConfig(t *testing.T) {
	ctx := context.Background()

	t.Run("NoSentinels", func(t *testing.T) {
		_, err := New(ctx, Config{MasterName: "mymaster"})
		assert.Error(t, err)
	})

	t.Run("NoMasterName", func(t *testing.T) {
		_, err := New(ctx, Config{SentinelAddrs: []string{"localhost:26379"}})
		assert.Error(t, err)
	})
}

func TestNewFailsFastWhenSentinelUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	// Reserved TEST-NET-1 address; nothing listens there.
	_, err := New(ctx, Config{
		SentinelAddrs: []string{"192.0.2.1:26379"},
		MasterName:    "mymaster",
		DialTimeout:   200 * time.Millisecond,
	})
	assert.Error(t, err)
}
