// Package redis provides a read-through cache over the quiz catalog.
package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
	"live-quiz-service/internal/app"
	"live-quiz-service/internal/domain"
)

// CatalogCache caches whole quizzes in Redis as JSON and falls back to the
// backing catalog on a miss. Quizzes are stored under two keys so both the
// join path (by code) and the grading path (by id) hit the cache:
//
//	SET quiz:code:{code} {json}
//	SET quiz:id:{id}     {json}
//
// Only grading data passes through here; the cached JSON (including correct
// answer indexes) never leaves the server.
type CatalogCache struct {
	client  *redis.Client
	backing app.QuizCatalog
	ttl     time.Duration
	sf      singleflight.Group
	rnd     *rand.Rand
}

func NewCatalogCache(client *redis.Client, backing app.QuizCatalog, ttl time.Duration) *CatalogCache {
	return &CatalogCache{
		client:  client,
		backing: backing,
		ttl:     ttl,
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *CatalogCache) FindActiveByCode(ctx context.Context, code string) (domain.Quiz, error) {
	return c.lookup(ctx, c.codeKey(code), func() (domain.Quiz, error) {
		return c.backing.FindActiveByCode(ctx, code)
	})
}

func (c *CatalogCache) FindByID(ctx context.Context, id int64) (domain.Quiz, error) {
	return c.lookup(ctx, c.idKey(id), func() (domain.Quiz, error) {
		return c.backing.FindByID(ctx, id)
	})
}

func (c *CatalogCache) lookup(ctx context.Context, key string, fetch func() (domain.Quiz, error)) (domain.Quiz, error) {
	if quiz, ok := c.cached(ctx, key); ok {
		return quiz, nil
	}

	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if quiz, ok := c.cached(ctx, key); ok {
			return quiz, nil
		}

		quiz, err := fetch()
		if err != nil {
			return domain.Quiz{}, err
		}

		data, err := json.Marshal(quiz)
		if err != nil {
			return domain.Quiz{}, err
		}

		ttl := c.ttlWithJitter()
		pipe := c.client.Pipeline()
		pipe.Set(ctx, c.codeKey(quiz.Code), data, ttl)
		pipe.Set(ctx, c.idKey(quiz.ID), data, ttl)
		// best-effort fill; the fetched quiz is authoritative either way
		_, _ = pipe.Exec(ctx)

		return quiz, nil
	})
	if err != nil {
		return domain.Quiz{}, err
	}
	return result.(domain.Quiz), nil
}

func (c *CatalogCache) cached(ctx context.Context, key string) (domain.Quiz, bool) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		// redis.Nil and an unreachable cache both mean a miss; the backing
		// catalog answers either way.
		return domain.Quiz{}, false
	}
	var quiz domain.Quiz
	if err := json.Unmarshal(raw, &quiz); err != nil {
		return domain.Quiz{}, false
	}
	return quiz, true
}

func (c *CatalogCache) codeKey(code string) string {
	return "quiz:code:" + code
}

func (c *CatalogCache) idKey(id int64) string {
	return "quiz:id:" + strconv.FormatInt(id, 10)
}

func (c *CatalogCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
