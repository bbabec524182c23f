package domain

import "errors"

var (
	// ErrQuizNotFound indicates no active quiz exists for a join code or id.
	ErrQuizNotFound = errors.New("Quiz not found")
	// ErrUserNotFound indicates the asserted user id is unknown to the directory.
	ErrUserNotFound = errors.New("User not found")
	// ErrQuestionNotFound indicates a submitted question index is out of range.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrParticipationNotFound indicates a participation row vanished between
	// join and answer; only reachable if the store is mutated externally.
	ErrParticipationNotFound = errors.New("participation not found")
)
