package adapter

import (
	"context"
	"sync"
	"time"

	"compliance-coursegen/internal/cache"
	"compliance-coursegen/internal/domain"
	"compliance-coursegen/internal/util"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// releaseScript deletes the lock only while it still holds our token, so an expired
// lock taken over by another request is never released by the original holder.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

const releaseTimeout = 2 * time.Second

type lockClient interface {
	redis.Scripter
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
}

// RedisDraftLock implements domain.DraftLock with SET NX and a TTL.
type RedisDraftLock struct {
	client   lockClient
	logger   *zap.Logger
	newToken func() string
}

func NewRedisDraftLock(client lockClient, logger *zap.Logger) *RedisDraftLock {
	return &RedisDraftLock{client: client, logger: logger, newToken: util.NewULID}
}

// Acquire takes the lock for draftID or returns a DRAFT_BUSY error.
func (l *RedisDraftLock) Acquire(ctx context.Context, draftID string, ttl time.Duration) (func(), error) {
	key := cache.DraftLockKey(draftID)
	token := l.newToken()

	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, domain.NewInternalError("failed to acquire draft lock", err)
	}
	if !ok {
		return nil, domain.NewDraftBusyError(draftID)
	}

	release := func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
		defer cancel()
		if err := releaseScript.Run(releaseCtx, l.client, []string{key}, token).Err(); err != nil {
			l.logger.Warn("Failed to release draft lock", zap.String("draft_id", draftID), zap.Error(err))
		}
	}
	return release, nil
}

// MemoryDraftLock is the single-process fallback used when Redis is not configured.
type MemoryDraftLock struct {
	mu      sync.Mutex
	held    map[string]memoryLease
	seq     uint64
	nowFunc func() time.Time
}

type memoryLease struct {
	token   uint64
	expires time.Time
}

func NewMemoryDraftLock() *MemoryDraftLock {
	return &MemoryDraftLock{held: make(map[string]memoryLease), nowFunc: time.Now}
}

func (l *MemoryDraftLock) Acquire(ctx context.Context, draftID string, ttl time.Duration) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.nowFunc()
	if lease, ok := l.held[draftID]; ok && now.Before(lease.expires) {
		return nil, domain.NewDraftBusyError(draftID)
	}
	l.seq++
	lease := memoryLease{token: l.seq, expires: now.Add(ttl)}
	l.held[draftID] = lease

	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		if cur, ok := l.held[draftID]; ok && cur.token == lease.token {
			delete(l.held, draftID)
		}
	}, nil
}

var (
	_ domain.DraftLock = (*RedisDraftLock)(nil)
	_ domain.DraftLock = (*MemoryDraftLock)(nil)
)
