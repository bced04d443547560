package ginserver

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	gin "github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	ginmiddleware "github.com/ulule/limiter/v3/drivers/middleware/gin"
	memorystore "github.com/ulule/limiter/v3/drivers/store/memory"
	redisstore "github.com/ulule/limiter/v3/drivers/store/redis"
)

const rateLimitPrefix = "bookingcore:rate"

// NewRateLimiter builds a per-client-IP limiter from a formatted rate such as
// "100-M". Counters live in Redis when rdb is non-nil so replicas share them.
// An empty rate disables limiting and returns nil.
func NewRateLimiter(rate string, rdb goredis.UniversalClient) (gin.HandlerFunc, error) {
	rate = strings.TrimSpace(rate)
	if rate == "" {
		return nil, nil
	}
	parsed, err := limiter.NewRateFromFormatted(rate)
	if err != nil {
		return nil, fmt.Errorf("ginserver: parse RATE_LIMIT %q: %w", rate, err)
	}

	var store limiter.Store
	if rdb != nil {
		store, err = redisstore.NewStoreWithOptions(rdb, limiter.StoreOptions{
			Prefix:          rateLimitPrefix,
			MaxRetry:        3,
			CleanUpInterval: parsed.Period,
		})
		if err != nil {
			return nil, fmt.Errorf("ginserver: rate limit store: %w", err)
		}
	} else {
		store = memorystore.NewStoreWithOptions(limiter.StoreOptions{
			Prefix:          rateLimitPrefix,
			CleanUpInterval: time.Minute,
		})
	}

	return ginmiddleware.NewMiddleware(limiter.New(store, parsed),
		ginmiddleware.WithLimitReachedHandler(func(c *gin.Context) {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
		}),
	), nil
}
