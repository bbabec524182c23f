package memory

import (
	"context"
	"sync"

	"live-quiz-service/internal/domain"
)

// UserDirectory is an in-memory app.UserDirectory.
type UserDirectory struct {
	mu    sync.RWMutex
	users map[int64]domain.User
}

func NewUserDirectory(users []domain.User) *UserDirectory {
	d := &UserDirectory{users: make(map[int64]domain.User)}
	for _, user := range users {
		d.users[user.ID] = user
	}
	return d
}

func (d *UserDirectory) ExistsByID(_ context.Context, userID int64) (bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.users[userID]
	return ok, nil
}

// Username returns the display name for userID, or the empty string if the
// user is unknown.
func (d *UserDirectory) Username(userID int64) string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.users[userID].Username
}
