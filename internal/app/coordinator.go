// Package app contains the session coordinator: the join/answer protocol
// state machine, grading, and leaderboard fan-out triggers.
package app

import (
	"context"
	"errors"
	"log"
	"sync"

	"live-quiz-service/internal/domain"
	"live-quiz-service/internal/protocol"
	"live-quiz-service/internal/registry"
)

type connState int

const (
	stateUnjoined connState = iota
	stateJoined
	stateClosed
)

// session is the per-connection protocol state. A connection's messages are
// delivered by a single read loop, so fields are only mutated in receipt
// order; the sessions map itself is what needs the coordinator's lock.
type session struct {
	state           connState
	userID          int64
	quizID          int64
	participationID int64
}

// Coordinator drives the per-connection state machine
// (Unjoined -> Joined -> Closed) and mediates between the transport, the
// connection registry, and the catalog/store collaborators.
type Coordinator struct {
	registry       *registry.Registry
	catalog        QuizCatalog
	participations ParticipationStore
	users          UserDirectory
	broadcaster    *Broadcaster

	mu       sync.Mutex
	sessions map[registry.Conn]*session
}

func NewCoordinator(reg *registry.Registry, catalog QuizCatalog, participations ParticipationStore, users UserDirectory) *Coordinator {
	return &Coordinator{
		registry:       reg,
		catalog:        catalog,
		participations: participations,
		users:          users,
		broadcaster:    NewBroadcaster(reg, participations),
		sessions:       make(map[registry.Conn]*session),
	}
}

// HandleMessage processes one inbound frame from conn. Protocol and lookup
// failures are answered with an error frame; the connection stays open and
// keeps its current state.
func (c *Coordinator) HandleMessage(ctx context.Context, conn registry.Conn, data []byte) {
	msg, err := protocol.Decode(data)
	if err != nil {
		c.sendError(conn, err.Error())
		return
	}

	switch m := msg.(type) {
	case protocol.Join:
		c.handleJoin(ctx, conn, m)
	case protocol.Answer:
		c.handleAnswer(ctx, conn, m)
	}
}

// HandleDisconnect moves conn to its terminal state and drops it from its
// room. Remaining room members are not notified; they see the departure only
// in the absence of the connection from future broadcasts' delivery.
func (c *Coordinator) HandleDisconnect(conn registry.Conn) {
	c.mu.Lock()
	if sess, ok := c.sessions[conn]; ok {
		sess.state = stateClosed
		delete(c.sessions, conn)
	}
	c.mu.Unlock()

	c.registry.Unregister(conn)
}

func (c *Coordinator) handleJoin(ctx context.Context, conn registry.Conn, msg protocol.Join) {
	sess := c.session(conn)
	if sess.state != stateUnjoined {
		c.sendError(conn, "already joined")
		return
	}

	quiz, err := c.catalog.FindActiveByCode(ctx, msg.QuizCode)
	if err != nil {
		c.sendError(conn, lookupMessage(err))
		return
	}

	exists, err := c.users.ExistsByID(ctx, msg.UserID)
	if err != nil {
		c.sendError(conn, lookupMessage(err))
		return
	}
	if !exists {
		c.sendError(conn, domain.ErrUserNotFound.Error())
		return
	}

	participation, err := c.participations.FindOrCreate(ctx, quiz.ID, msg.UserID)
	if err != nil {
		c.sendError(conn, lookupMessage(err))
		return
	}

	sess.state = stateJoined
	sess.userID = msg.UserID
	sess.quizID = quiz.ID
	sess.participationID = participation.ID

	c.registry.Register(quiz.ID, conn)

	if err := c.broadcaster.Broadcast(ctx, quiz.ID); err != nil {
		log.Printf("leaderboard broadcast for quiz %d failed: %v", quiz.ID, err)
	}
}

func (c *Coordinator) handleAnswer(ctx context.Context, conn registry.Conn, msg protocol.Answer) {
	sess := c.session(conn)
	if sess.state != stateJoined {
		// Answers before a successful join are dropped without a response.
		return
	}

	quiz, err := c.catalog.FindByID(ctx, sess.quizID)
	if err != nil {
		c.sendError(conn, lookupMessage(err))
		return
	}

	if msg.QuestionIndex < 0 || msg.QuestionIndex >= len(quiz.Questions) {
		c.sendError(conn, domain.ErrQuestionNotFound.Error())
		return
	}
	question := quiz.Questions[msg.QuestionIndex]

	isCorrect := msg.Answer == question.CorrectAnswer
	record := domain.AnswerRecord{
		QuestionIndex: msg.QuestionIndex,
		Answer:        msg.Answer,
		IsCorrect:     isCorrect,
	}
	delta := 0
	if isCorrect {
		delta = domain.CorrectAnswerPoints
	}

	if err := c.participations.AppendAnswerAndScore(ctx, sess.participationID, record, delta); err != nil {
		c.sendError(conn, lookupMessage(err))
		return
	}

	if err := c.broadcaster.Broadcast(ctx, sess.quizID); err != nil {
		log.Printf("leaderboard broadcast for quiz %d failed: %v", sess.quizID, err)
	}
}

// session returns the state for conn, creating an Unjoined one on first use.
func (c *Coordinator) session(conn registry.Conn) *session {
	c.mu.Lock()
	defer c.mu.Unlock()
	sess, ok := c.sessions[conn]
	if !ok {
		sess = &session{state: stateUnjoined}
		c.sessions[conn] = sess
	}
	return sess
}

func (c *Coordinator) sendError(conn registry.Conn, message string) {
	data, err := protocol.EncodeError(message)
	if err != nil {
		log.Printf("encode error frame: %v", err)
		return
	}
	if err := conn.Send(data); err != nil {
		log.Printf("error send to %s failed: %v", conn.ID(), err)
	}
}

// lookupMessage maps collaborator failures onto wire messages. Known domain
// errors keep their exact text; anything else is a store-side failure whose
// details stay in the logs.
func lookupMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrQuizNotFound),
		errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrQuestionNotFound),
		errors.Is(err, domain.ErrParticipationNotFound):
		return err.Error()
	default:
		log.Printf("store error: %v", err)
		return "internal error"
	}
}
