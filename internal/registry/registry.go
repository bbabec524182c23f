// Package registry tracks which live connections belong to which quiz room.
package registry

import "sync"

// Conn is the minimal view of a live connection the registry and the
// broadcaster need. The websocket transport provides the real implementation.
type Conn interface {
	ID() string
	Send(data []byte) error
}

// Registry maps quiz ids to the set of connections currently joined. Rooms
// are created lazily on the first join and removed once the last member
// leaves. All methods are safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	rooms  map[int64]map[Conn]struct{}
	byConn map[Conn]int64
}

func New() *Registry {
	return &Registry{
		rooms:  make(map[int64]map[Conn]struct{}),
		byConn: make(map[Conn]int64),
	}
}

// Register adds conn to the room for quizID, creating the room if needed.
// Re-registering a connection moves it out of its previous room first.
func (r *Registry) Register(quizID int64, conn Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.byConn[conn]; ok {
		r.removeLocked(prev, conn)
	}

	room, ok := r.rooms[quizID]
	if !ok {
		room = make(map[Conn]struct{})
		r.rooms[quizID] = room
	}
	room[conn] = struct{}{}
	r.byConn[conn] = quizID
}

// Unregister removes conn from whatever room it is in. Unknown connections
// and repeated calls are no-ops.
func (r *Registry) Unregister(conn Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	quizID, ok := r.byConn[conn]
	if !ok {
		return
	}
	r.removeLocked(quizID, conn)
}

func (r *Registry) removeLocked(quizID int64, conn Conn) {
	delete(r.byConn, conn)
	room, ok := r.rooms[quizID]
	if !ok {
		return
	}
	delete(room, conn)
	if len(room) == 0 {
		delete(r.rooms, quizID)
	}
}

// Members returns a snapshot of the connections currently joined to quizID.
func (r *Registry) Members(quizID int64) []Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room, ok := r.rooms[quizID]
	if !ok {
		return nil
	}
	members := make([]Conn, 0, len(room))
	for conn := range room {
		members = append(members, conn)
	}
	return members
}

// Stats reports the current number of rooms and joined connections.
func (r *Registry) Stats() (rooms, conns int) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rooms = len(r.rooms)
	conns = len(r.byConn)
	return rooms, conns
}
