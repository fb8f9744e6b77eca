// session/session.go
package session

import (
	"sync"
	"time"

	"github.com/duoparty/gameserver/network"
)

// Session 一条传输层连接的会话状态
type Session struct {
	ID         string
	Conn       network.Connection
	Username   string
	RoomID     string
	CreatedAt  time.Time
	LastActive time.Time
	mutex      sync.RWMutex
}

func NewSession(id string, conn network.Connection) *Session {
	now := time.Now()
	return &Session{
		ID:         id,
		Conn:       conn,
		CreatedAt:  now,
		LastActive: now,
	}
}

func (s *Session) Send(event string, payload interface{}) error {
	s.LastActive = time.Now()
	return s.Conn.Send(event, payload)
}

func (s *Session) GetID() string {
	return s.ID
}

// SetRoom 记录连接当前所在的房间，断线时据此触发离开流程
func (s *Session) SetRoom(roomID string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.RoomID = roomID
}

func (s *Session) GetRoom() string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.RoomID
}

func (s *Session) SetUsername(username string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.Username = username
}

func (s *Session) GetUsername() string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.Username
}

func (s *Session) Close() error {
	return s.Conn.Close()
}

// Session管理器
type Manager struct {
	sessions map[string]*Session
	mutex    sync.RWMutex
}

func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
	}
}

func (m *Manager) Add(session *Session) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.sessions[session.ID] = session
}

func (m *Manager) Remove(sessionID string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	delete(m.sessions, sessionID)
}

func (m *Manager) Get(sessionID string) (*Session, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	session, exists := m.sessions[sessionID]
	return session, exists
}

func (m *Manager) Count() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.sessions)
}

func (m *Manager) GetByRoom(roomID string) []*Session {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	var result []*Session
	for _, session := range m.sessions {
		if session.GetRoom() == roomID {
			result = append(result, session)
		}
	}
	return result
}
