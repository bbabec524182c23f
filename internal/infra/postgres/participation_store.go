package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
	"live-quiz-service/internal/domain"
)

// ParticipationStore persists attempt records. The unique (quiz_id, user_id)
// constraint makes FindOrCreate an atomic upsert: two racing first joins for
// the same pair converge on one row.
type ParticipationStore struct {
	pool *pgxpool.Pool
}

func NewParticipationStore(pool *pgxpool.Pool) *ParticipationStore {
	return &ParticipationStore{pool: pool}
}

func (s *ParticipationStore) FindOrCreate(ctx context.Context, quizID, userID int64) (domain.Participation, error) {
	// The no-op DO UPDATE makes RETURNING yield the row on the conflict
	// path too, so find and create are a single round-trip.
	row := s.pool.QueryRow(ctx, `
		WITH upserted AS (
			INSERT INTO participations (quiz_id, user_id, score, answers)
			VALUES ($1, $2, 0, '[]'::jsonb)
			ON CONFLICT (quiz_id, user_id) DO UPDATE SET user_id = EXCLUDED.user_id
			RETURNING id, quiz_id, user_id, score, answers, joined_at
		)
		SELECT p.id, p.quiz_id, p.user_id, u.username, p.score, p.answers, p.joined_at
		FROM upserted p JOIN users u ON u.id = p.user_id`,
		quizID, userID)

	var participation domain.Participation
	var answers []byte
	err := row.Scan(&participation.ID, &participation.QuizID, &participation.UserID,
		&participation.Username, &participation.Score, &answers, &participation.JoinedAt)
	if err != nil {
		return domain.Participation{}, fmt.Errorf("upsert participation: %w", err)
	}
	if err := json.Unmarshal(answers, &participation.Answers); err != nil {
		return domain.Participation{}, fmt.Errorf("unmarshal answers: %w", err)
	}
	return participation, nil
}

func (s *ParticipationStore) AppendAnswerAndScore(ctx context.Context, participationID int64, record domain.AnswerRecord, scoreDelta int) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal answer record: %w", err)
	}

	tag, err := s.pool.Exec(ctx, `
		UPDATE participations
		SET score = score + $2, answers = answers || $3::jsonb
		WHERE id = $1`,
		participationID, scoreDelta, data)
	if err != nil {
		return fmt.Errorf("append answer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrParticipationNotFound
	}
	return nil
}

func (s *ParticipationStore) ListByQuiz(ctx context.Context, quizID int64) ([]domain.Participation, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT p.id, p.quiz_id, p.user_id, u.username, p.score, p.answers, p.joined_at
		FROM participations p JOIN users u ON u.id = p.user_id
		WHERE p.quiz_id = $1
		ORDER BY p.score DESC, p.id ASC`,
		quizID)
	if err != nil {
		return nil, fmt.Errorf("list participations: %w", err)
	}
	defer rows.Close()

	var participations []domain.Participation
	for rows.Next() {
		var participation domain.Participation
		var answers []byte
		err := rows.Scan(&participation.ID, &participation.QuizID, &participation.UserID,
			&participation.Username, &participation.Score, &answers, &participation.JoinedAt)
		if err != nil {
			return nil, fmt.Errorf("scan participation: %w", err)
		}
		if err := json.Unmarshal(answers, &participation.Answers); err != nil {
			return nil, fmt.Errorf("unmarshal answers: %w", err)
		}
		participations = append(participations, participation)
	}
	return participations, rows.Err()
}
