package memory

import (
	"context"
	"sync"
	"testing"

	"live-quiz-service/internal/domain"
)

func newTestStore() *ParticipationStore {
	return NewParticipationStore(NewUserDirectory([]domain.User{
		{ID: 1, Username: "alice"},
		{ID: 2, Username: "bob"},
		{ID: 3, Username: "carol"},
	}))
}

func TestFindOrCreateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()

	first, err := store.FindOrCreate(ctx, 1, 1)
	if err != nil {
		t.Fatalf("find or create: %v", err)
	}
	second, err := store.FindOrCreate(ctx, 1, 1)
	if err != nil {
		t.Fatalf("find or create again: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("expected same participation, got ids %d and %d", first.ID, second.ID)
	}
	if first.Username != "alice" || first.Score != 0 {
		t.Fatalf("unexpected participation: %+v", first)
	}
}

func TestFindOrCreateConcurrent(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := store.FindOrCreate(ctx, 1, 1); err != nil {
				panic(err)
			}
		}()
	}
	wg.Wait()

	rows, err := store.ListByQuiz(ctx, 1)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected one row for the pair, got %d", len(rows))
	}
}

func TestAppendAnswerAndScore(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()

	participation, _ := store.FindOrCreate(ctx, 1, 1)
	record := domain.AnswerRecord{QuestionIndex: 0, Answer: 1, IsCorrect: true}
	if err := store.AppendAnswerAndScore(ctx, participation.ID, record, 10); err != nil {
		t.Fatalf("append: %v", err)
	}

	rows, _ := store.ListByQuiz(ctx, 1)
	if rows[0].Score != 10 || len(rows[0].Answers) != 1 || rows[0].Answers[0] != record {
		t.Fatalf("unexpected row after append: %+v", rows[0])
	}
}

func TestAppendUnknownParticipation(t *testing.T) {
	store := newTestStore()
	err := store.AppendAnswerAndScore(context.Background(), 99, domain.AnswerRecord{}, 0)
	if err != domain.ErrParticipationNotFound {
		t.Fatalf("expected participation error, got %v", err)
	}
}

func TestListByQuizOrderAndTieBreak(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()

	alice, _ := store.FindOrCreate(ctx, 1, 1)
	bob, _ := store.FindOrCreate(ctx, 1, 2)
	carol, _ := store.FindOrCreate(ctx, 1, 3)
	_, _ = store.FindOrCreate(ctx, 2, 1) // other quiz, must not appear

	// bob and carol tie on 10; bob's earlier participation id wins.
	_ = store.AppendAnswerAndScore(ctx, carol.ID, domain.AnswerRecord{IsCorrect: true}, 10)
	_ = store.AppendAnswerAndScore(ctx, bob.ID, domain.AnswerRecord{IsCorrect: true}, 10)
	_ = store.AppendAnswerAndScore(ctx, alice.ID, domain.AnswerRecord{}, 0)

	rows, err := store.ListByQuiz(ctx, 1)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	want := []string{"bob", "carol", "alice"}
	for i, username := range want {
		if rows[i].Username != username {
			t.Fatalf("position %d: want %s, got %s", i, username, rows[i].Username)
		}
	}
}
