package http

import (
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/pequemaths/pequemaths-api/internal/config"
	apperrors "github.com/pequemaths/pequemaths-api/pkg/util"
)

const limiterCleanupInterval = 5 * time.Minute

type clientLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// LoginRateLimiter throttles session issuance per client address.
type LoginRateLimiter struct {
	perMinute int
	limit     rate.Limit
	burst     int
	logger    *zap.Logger

	mu       sync.Mutex
	limiters map[string]*clientLimiter

	stopCh chan struct{}
	once   sync.Once
}

// NewLoginRateLimiter builds the limiter and starts evicting idle clients.
func NewLoginRateLimiter(cfg config.RateLimitConfig, logger *zap.Logger) *LoginRateLimiter {
	rl := &LoginRateLimiter{
		perMinute: cfg.LoginPerMinute,
		limit:     rate.Limit(float64(cfg.LoginPerMinute) / 60.0),
		burst:     cfg.LoginBurst,
		logger:    logger,
		limiters:  make(map[string]*clientLimiter),
		stopCh:    make(chan struct{}),
	}
	go rl.cleanupLoop()
	return rl
}

// Stop ends the cleanup goroutine.
func (rl *LoginRateLimiter) Stop() {
	rl.once.Do(func() { close(rl.stopCh) })
}

// Handle rejects clients that exceeded their budget with 429.
func (rl *LoginRateLimiter) Handle(c *fiber.Ctx) error {
	ip := c.IP()
	if rl.limiterFor(ip).Allow() {
		return c.Next()
	}

	rl.logger.Warn("rate limit exceeded", zap.String("ip", ip), zap.String("route", c.Path()))
	c.Set(fiber.HeaderRetryAfter, strconv.Itoa(rl.retryAfterSeconds()))
	return apperrors.NewTooManyRequests("too many login attempts")
}

// Len reports how many clients are tracked.
func (rl *LoginRateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.limiters)
}

func (rl *LoginRateLimiter) limiterFor(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	if cl, ok := rl.limiters[key]; ok {
		cl.lastAccess = now
		return cl.limiter
	}
	cl := &clientLimiter{limiter: rate.NewLimiter(rl.limit, rl.burst), lastAccess: now}
	rl.limiters[key] = cl
	return cl.limiter
}

// retryAfterSeconds is the time needed to earn back one token.
func (rl *LoginRateLimiter) retryAfterSeconds() int {
	if rl.perMinute <= 0 {
		return 60
	}
	sec := (60 + rl.perMinute - 1) / rl.perMinute
	if sec < 1 {
		return 1
	}
	return sec
}

func (rl *LoginRateLimiter) cleanupLoop() {
	ticker := time.NewTicker(limiterCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.evictIdle(time.Now(), 2*limiterCleanupInterval)
		case <-rl.stopCh:
			return
		}
	}
}

func (rl *LoginRateLimiter) evictIdle(now time.Time, ttl time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for key, cl := range rl.limiters {
		if now.Sub(cl.lastAccess) > ttl {
			delete(rl.limiters, key)
		}
	}
}
