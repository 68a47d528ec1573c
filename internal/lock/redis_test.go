package lock

import (
	"context"
	"os"
	"testing"
	"time"

	"inventory-orders/internal/core"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderLocker_ExclusiveUntilReleased(t *testing.T) {
	_ = godotenv.Load("../../.env")
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set, skipping redis lock test")
	}

	ctx := context.Background()
	rdb, err := NewRedisClient(ctx, url)
	require.NoError(t, err)
	defer rdb.Close()

	l := NewOrderLocker(rdb, 5*time.Second)
	orderID := uuid.NewString()

	release, err := l.LockOrder(ctx, orderID)
	require.NoError(t, err)

	_, err = l.LockOrder(ctx, orderID)
	assert.ErrorIs(t, err, core.ErrOrderLocked)

	require.NoError(t, release(ctx))
	require.NoError(t, release(ctx), "releasing twice is harmless")

	again, err := l.LockOrder(ctx, orderID)
	require.NoError(t, err)
	require.NoError(t, again(ctx))
}

func TestNewOrderLocker_DefaultTTL(t *testing.T) {
	l := NewOrderLocker(nil, 0)
	assert.Equal(t, 10*time.Second, l.ttl)
}
