// room/registry.go
package room

import (
	"sync"

	"github.com/duoparty/gameserver/session"
)

// Registry 维护 roomID 到当前在线连接集合的映射。
// 只反映传输层状态，不做持久化；会话记录本身在共享存储中。
type Registry struct {
	rooms map[string]map[string]*session.Session // roomID -> sessionID -> session
	mutex sync.RWMutex
}

func NewRegistry() *Registry {
	return &Registry{
		rooms: make(map[string]map[string]*session.Session),
	}
}

// Join 把连接加入房间，并记录在连接上以便断线时反查
func (r *Registry) Join(roomID string, s *session.Session) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	group := r.rooms[roomID]
	if group == nil {
		group = make(map[string]*session.Session)
		r.rooms[roomID] = group
	}
	group[s.ID] = s
	s.SetRoom(roomID)
}

// Leave 把连接移出房间，房间为空时清掉条目
func (r *Registry) Leave(roomID, sessionID string) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	group, exists := r.rooms[roomID]
	if !exists {
		return
	}
	delete(group, sessionID)
	if len(group) == 0 {
		delete(r.rooms, roomID)
	}
}

// Count 返回房间内的在线连接数
func (r *Registry) Count(roomID string) int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return len(r.rooms[roomID])
}

// Sessions returns a snapshot of the connections in a room (thread-safe).
func (r *Registry) Sessions(roomID string) []*session.Session {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	group := r.rooms[roomID]
	sessions := make([]*session.Session, 0, len(group))
	for _, s := range group {
		sessions = append(sessions, s)
	}
	return sessions
}

// RoomCount 返回当前有在线连接的房间数
func (r *Registry) RoomCount() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return len(r.rooms)
}
