package memory

import (
	"context"
	"sync"

	"live-quiz-service/internal/domain"
)

// Catalog is an in-memory app.QuizCatalog backed by a fixed set of quizzes
// (useful for tests and the no-database demo mode).
type Catalog struct {
	mu     sync.RWMutex
	byID   map[int64]domain.Quiz
	byCode map[string]int64
}

func NewCatalog(quizzes []domain.Quiz) *Catalog {
	c := &Catalog{
		byID:   make(map[int64]domain.Quiz),
		byCode: make(map[string]int64),
	}
	for _, quiz := range quizzes {
		c.byID[quiz.ID] = quiz
		c.byCode[quiz.Code] = quiz.ID
	}
	return c
}

func (c *Catalog) FindActiveByCode(_ context.Context, code string) (domain.Quiz, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	id, ok := c.byCode[code]
	if !ok {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	quiz := c.byID[id]
	if !quiz.IsActive {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	return quiz, nil
}

func (c *Catalog) FindByID(_ context.Context, id int64) (domain.Quiz, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	quiz, ok := c.byID[id]
	if !ok {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	return quiz, nil
}
