package domain

import "time"

// Question models a single MCQ question. CorrectAnswer is the index into
// Options and is only ever consulted server-side for grading.
type Question struct {
	Text          string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"`
}

// Quiz is the read-only catalog view consumed by the coordinator. Authoring
// and activation live outside this service.
type Quiz struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Code        string     `json:"code"`
	IsActive    bool       `json:"isActive"`
	Questions   []Question `json:"questions"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// AnswerRecord is one graded submission inside a participation's history.
type AnswerRecord struct {
	QuestionIndex int  `json:"questionIndex"`
	Answer        int  `json:"answer"`
	IsCorrect     bool `json:"isCorrect"`
}

// Participation is the durable record of one user's attempt at one quiz.
// Exactly one row exists per (QuizID, UserID) pair; the score only grows.
// Username is filled in by the store so leaderboard projection needs no
// second lookup.
type Participation struct {
	ID       int64
	QuizID   int64
	UserID   int64
	Username string
	Score    int
	Answers  []AnswerRecord
	JoinedAt time.Time
}

// User is the narrow directory view; registration and auth are external.
type User struct {
	ID       int64
	Username string
}

// LeaderboardEntry is the outward projection of a participation.
type LeaderboardEntry struct {
	Username string `json:"username"`
	Score    int    `json:"score"`
}

// CorrectAnswerPoints is the fixed reward for a correct answer.
const CorrectAnswerPoints = 10
