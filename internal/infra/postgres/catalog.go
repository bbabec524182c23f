// Package postgres implements the catalog, participation, and user contracts
// on top of a pgx connection pool. Schema is owned by the bun migrations in
// the migrations subpackage.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"live-quiz-service/internal/domain"
)

// Catalog reads quiz content. Questions live in a jsonb column using the
// same shape the authoring side writes.
type Catalog struct {
	pool *pgxpool.Pool
}

func NewCatalog(pool *pgxpool.Pool) *Catalog {
	return &Catalog{pool: pool}
}

func (c *Catalog) FindActiveByCode(ctx context.Context, code string) (domain.Quiz, error) {
	row := c.pool.QueryRow(ctx,
		`SELECT id, title, description, code, is_active, questions, created_at
		 FROM quizzes WHERE code = $1 AND is_active`, code)
	return scanQuiz(row)
}

func (c *Catalog) FindByID(ctx context.Context, id int64) (domain.Quiz, error) {
	row := c.pool.QueryRow(ctx,
		`SELECT id, title, description, code, is_active, questions, created_at
		 FROM quizzes WHERE id = $1`, id)
	return scanQuiz(row)
}

func scanQuiz(row pgx.Row) (domain.Quiz, error) {
	var quiz domain.Quiz
	var questions []byte
	err := row.Scan(&quiz.ID, &quiz.Title, &quiz.Description, &quiz.Code, &quiz.IsActive, &questions, &quiz.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Quiz{}, domain.ErrQuizNotFound
		}
		return domain.Quiz{}, fmt.Errorf("load quiz: %w", err)
	}
	if err := json.Unmarshal(questions, &quiz.Questions); err != nil {
		return domain.Quiz{}, fmt.Errorf("unmarshal questions: %w", err)
	}
	return quiz, nil
}
