// Package protocol defines the wire format spoken over the quiz websocket:
// one flat JSON object per text frame, discriminated by a "type" field.
package protocol

import (
	"encoding/json"
	"fmt"

	"live-quiz-service/internal/domain"
)

// Message type tags.
const (
	TypeJoin        = "join"
	TypeAnswer      = "answer"
	TypeLeaderboard = "leaderboard"
	TypeError       = "error"
)

// Message is the decoded form of an inbound frame.
type Message interface {
	messageType() string
}

// Join asks to enter the room for the quiz with the given join code. The
// user id is asserted by the client, not re-verified on this channel.
type Join struct {
	QuizCode string `json:"quizCode"`
	UserID   int64  `json:"userId"`
}

// Answer submits an option index for the question at QuestionIndex.
type Answer struct {
	QuestionIndex int `json:"questionIndex"`
	Answer        int `json:"answer"`
}

func (Join) messageType() string   { return TypeJoin }
func (Answer) messageType() string { return TypeAnswer }

// DecodeError reports a frame that could not be turned into a Message. The
// coordinator answers it with an error frame and leaves the connection open.
type DecodeError struct {
	Reason string
}

func (e *DecodeError) Error() string { return e.Reason }

type envelope struct {
	Type string `json:"type"`
}

// Decode parses one inbound frame into its typed message.
func Decode(data []byte) (Message, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, &DecodeError{Reason: "invalid message"}
	}
	switch env.Type {
	case TypeJoin:
		var msg Join
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, &DecodeError{Reason: "invalid join message"}
		}
		return msg, nil
	case TypeAnswer:
		var msg Answer
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, &DecodeError{Reason: "invalid answer message"}
		}
		return msg, nil
	default:
		return nil, &DecodeError{Reason: fmt.Sprintf("unsupported message type %q", env.Type)}
	}
}

type leaderboardFrame struct {
	Type string                    `json:"type"`
	Data []domain.LeaderboardEntry `json:"data"`
}

type errorFrame struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// EncodeLeaderboard serializes ranked standings, highest score first.
func EncodeLeaderboard(entries []domain.LeaderboardEntry) ([]byte, error) {
	if entries == nil {
		entries = []domain.LeaderboardEntry{}
	}
	return json.Marshal(leaderboardFrame{Type: TypeLeaderboard, Data: entries})
}

// EncodeError serializes an error frame.
func EncodeError(message string) ([]byte, error) {
	return json.Marshal(errorFrame{Type: TypeError, Message: message})
}
