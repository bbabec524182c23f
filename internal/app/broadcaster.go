package app

import (
	"context"
	"log"

	"live-quiz-service/internal/domain"
	"live-quiz-service/internal/protocol"
	"live-quiz-service/internal/registry"
)

// Broadcaster recomputes a quiz's leaderboard from the store and fans it out
// to every connection currently in the room. Each trigger is a full recompute;
// nothing is cached, so interleaved broadcasts converge on the stored state.
type Broadcaster struct {
	registry       *registry.Registry
	participations ParticipationStore
}

func NewBroadcaster(reg *registry.Registry, participations ParticipationStore) *Broadcaster {
	return &Broadcaster{registry: reg, participations: participations}
}

// Broadcast sends the current standings for quizID to all room members.
// Delivery is best effort per recipient: one dead connection never blocks the
// rest, and send failures never propagate to the triggering operation.
func (b *Broadcaster) Broadcast(ctx context.Context, quizID int64) error {
	rows, err := b.participations.ListByQuiz(ctx, quizID)
	if err != nil {
		return err
	}

	entries := make([]domain.LeaderboardEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, domain.LeaderboardEntry{
			Username: row.Username,
			Score:    row.Score,
		})
	}

	data, err := protocol.EncodeLeaderboard(entries)
	if err != nil {
		return err
	}

	for _, conn := range b.registry.Members(quizID) {
		if err := conn.Send(data); err != nil {
			log.Printf("leaderboard send to %s failed: %v", conn.ID(), err)
		}
	}
	return nil
}
