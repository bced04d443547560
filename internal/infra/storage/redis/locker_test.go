package redis

import (
	"context"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookingcore/internal/app/locks"
)

func unreachableClient() *goredis.Client {
	return goredis.NewClient(&goredis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
}

func TestAcquireSurfacesConnectionErrors(t *testing.T) {
	client := unreachableClient()
	t.Cleanup(func() { _ = client.Close() })

	l := NewLocker(client, time.Second, time.Second, nil)
	release, err := l.Acquire(context.Background(), locks.PropertyKey("p1"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, locks.ErrLockTimeout)
	assert.Nil(t, release)
}

func TestAcquireHonoursCanceledContext(t *testing.T) {
	client := unreachableClient()
	t.Cleanup(func() { _ = client.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewLocker(client, time.Second, time.Second, nil).Acquire(ctx, "property:p1")
	require.ErrorIs(t, err, context.Canceled)
}

func TestNewClientRejectsBadURL(t *testing.T) {
	_, err := NewClient(context.Background(), "not-a-url://x")
	require.Error(t, err)
}
