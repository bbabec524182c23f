package app

import (
	"context"

	"live-quiz-service/internal/domain"
)

// QuizCatalog is the read-only quiz content contract. Implementations must
// return domain.ErrQuizNotFound when no matching active quiz exists.
type QuizCatalog interface {
	FindActiveByCode(ctx context.Context, code string) (domain.Quiz, error)
	FindByID(ctx context.Context, id int64) (domain.Quiz, error)
}

// ParticipationStore persists per-(quiz, user) attempt records.
type ParticipationStore interface {
	// FindOrCreate returns the participation for (quizID, userID), creating
	// it with a zero score if absent. The upsert is atomic: concurrent first
	// joins for the same pair must yield a single row.
	FindOrCreate(ctx context.Context, quizID, userID int64) (domain.Participation, error)
	// AppendAnswerAndScore appends one answer record and adds scoreDelta to
	// the participation's score in a single durable operation.
	AppendAnswerAndScore(ctx context.Context, participationID int64, record domain.AnswerRecord, scoreDelta int) error
	// ListByQuiz returns every participation for the quiz ordered by score
	// descending, ties broken by ascending participation id.
	ListByQuiz(ctx context.Context, quizID int64) ([]domain.Participation, error)
}

// UserDirectory answers whether an asserted user id exists.
type UserDirectory interface {
	ExistsByID(ctx context.Context, userID int64) (bool, error)
}
