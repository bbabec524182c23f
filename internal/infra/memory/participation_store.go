package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"live-quiz-service/internal/domain"
)

type pairKey struct {
	quizID int64
	userID int64
}

// ParticipationStore is an in-memory app.ParticipationStore. A single mutex
// serializes the check-then-create in FindOrCreate, so concurrent first joins
// for the same (quiz, user) pair resolve to one row.
type ParticipationStore struct {
	users *UserDirectory

	mu     sync.Mutex
	nextID int64
	byID   map[int64]*domain.Participation
	byPair map[pairKey]int64
}

func NewParticipationStore(users *UserDirectory) *ParticipationStore {
	return &ParticipationStore{
		users:  users,
		nextID: 1,
		byID:   make(map[int64]*domain.Participation),
		byPair: make(map[pairKey]int64),
	}
}

func (s *ParticipationStore) FindOrCreate(_ context.Context, quizID, userID int64) (domain.Participation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := pairKey{quizID: quizID, userID: userID}
	if id, ok := s.byPair[key]; ok {
		return *s.byID[id], nil
	}

	participation := &domain.Participation{
		ID:       s.nextID,
		QuizID:   quizID,
		UserID:   userID,
		Username: s.users.Username(userID),
		Score:    0,
		Answers:  []domain.AnswerRecord{},
		JoinedAt: time.Now(),
	}
	s.nextID++
	s.byID[participation.ID] = participation
	s.byPair[key] = participation.ID
	return *participation, nil
}

func (s *ParticipationStore) AppendAnswerAndScore(_ context.Context, participationID int64, record domain.AnswerRecord, scoreDelta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	participation, ok := s.byID[participationID]
	if !ok {
		return domain.ErrParticipationNotFound
	}
	participation.Answers = append(participation.Answers, record)
	participation.Score += scoreDelta
	return nil
}

func (s *ParticipationStore) ListByQuiz(_ context.Context, quizID int64) ([]domain.Participation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows := make([]domain.Participation, 0)
	for _, participation := range s.byID {
		if participation.QuizID == quizID {
			rows = append(rows, *participation)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Score != rows[j].Score {
			return rows[i].Score > rows[j].Score
		}
		return rows[i].ID < rows[j].ID
	})
	return rows, nil
}
