package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"live-quiz-service/internal/domain"
	"live-quiz-service/internal/infra/memory"
)

func TestCatalogCacheCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	backing := &countingCatalog{Catalog: memory.NewCatalog([]domain.Quiz{sampleQuiz()})}
	cache := NewCatalogCache(client, backing, time.Minute)

	quiz, err := cache.FindActiveByCode(context.Background(), "ABC123")
	if err != nil {
		t.Fatalf("find by code: %v", err)
	}
	if backing.calls != 1 {
		t.Fatalf("expected one backing call, got %d", backing.calls)
	}
	if !mr.Exists("quiz:code:ABC123") || !mr.Exists("quiz:id:1") {
		t.Fatalf("expected both cache keys to be set")
	}

	// Both access paths hit the warmed cache.
	if _, err := cache.FindActiveByCode(context.Background(), "ABC123"); err != nil {
		t.Fatalf("find by code again: %v", err)
	}
	if _, err := cache.FindByID(context.Background(), quiz.ID); err != nil {
		t.Fatalf("find by id: %v", err)
	}
	if backing.calls != 1 {
		t.Fatalf("expected cache hits, backing calls %d", backing.calls)
	}
}

func TestCatalogCacheSurvivesRedisOutage(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	backing := &countingCatalog{Catalog: memory.NewCatalog([]domain.Quiz{sampleQuiz()})}
	cache := NewCatalogCache(client, backing, time.Minute)

	mr.Close()

	quiz, err := cache.FindActiveByCode(context.Background(), "ABC123")
	if err != nil {
		t.Fatalf("expected backing fallback, got %v", err)
	}
	if quiz.ID != 1 {
		t.Fatalf("unexpected quiz: %+v", quiz)
	}
}

type countingCatalog struct {
	*memory.Catalog
	calls int
}

func (c *countingCatalog) FindActiveByCode(ctx context.Context, code string) (domain.Quiz, error) {
	c.calls++
	return c.Catalog.FindActiveByCode(ctx, code)
}

func (c *countingCatalog) FindByID(ctx context.Context, id int64) (domain.Quiz, error) {
	c.calls++
	return c.Catalog.FindByID(ctx, id)
}

func sampleQuiz() domain.Quiz {
	return domain.Quiz{
		ID:       1,
		Code:     "ABC123",
		IsActive: true,
		Questions: []domain.Question{
			{
				Text:          "What is 2 + 2?",
				Options:       []string{"3", "4", "5"},
				CorrectAnswer: 1,
			},
		},
	}
}
