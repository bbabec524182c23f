package memory

import (
	"context"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
	"live-quiz-service/internal/app"
	"live-quiz-service/internal/domain"
)

// CatalogCache caches quiz lookups with TTL to avoid hitting the backing
// catalog on every answer. Lookups are deduplicated with singleflight so a
// burst of joins for the same code triggers a single backing fetch.
type CatalogCache struct {
	backing app.QuizCatalog
	ttl     time.Duration
	clock   func() time.Time
	sf      singleflight.Group
	rnd     *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedQuiz
}

type cachedQuiz struct {
	quiz      domain.Quiz
	expiresAt time.Time
}

func NewCatalogCache(backing app.QuizCatalog, ttl time.Duration) *CatalogCache {
	return &CatalogCache{
		backing: backing,
		ttl:     ttl,
		clock:   time.Now,
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:   make(map[string]cachedQuiz),
	}
}

func (c *CatalogCache) FindActiveByCode(ctx context.Context, code string) (domain.Quiz, error) {
	return c.lookup(ctx, "code:"+code, func() (domain.Quiz, error) {
		return c.backing.FindActiveByCode(ctx, code)
	})
}

func (c *CatalogCache) FindByID(ctx context.Context, id int64) (domain.Quiz, error) {
	return c.lookup(ctx, "id:"+strconv.FormatInt(id, 10), func() (domain.Quiz, error) {
		return c.backing.FindByID(ctx, id)
	})
}

func (c *CatalogCache) lookup(_ context.Context, key string, fetch func() (domain.Quiz, error)) (domain.Quiz, error) {
	now := c.clock()

	c.mu.RLock()
	if entry, ok := c.cache[key]; ok && entry.expiresAt.After(now) {
		c.mu.RUnlock()
		return entry.quiz, nil
	}
	c.mu.RUnlock()

	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		now := c.clock()
		c.mu.RLock()
		if entry, ok := c.cache[key]; ok && entry.expiresAt.After(now) {
			c.mu.RUnlock()
			return entry.quiz, nil
		}
		c.mu.RUnlock()

		quiz, err := fetch()
		if err != nil {
			return domain.Quiz{}, err
		}

		c.mu.Lock()
		c.cache[key] = cachedQuiz{
			quiz:      quiz,
			expiresAt: now.Add(c.ttlWithJitter()),
		}
		c.mu.Unlock()
		return quiz, nil
	})
	if err != nil {
		return domain.Quiz{}, err
	}
	return result.(domain.Quiz), nil
}

func (c *CatalogCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
