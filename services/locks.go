// services/locks.go
package services

import (
	"sync"
)

// RoomLocks 按房间串行化共享存储的读改写序列。
// 存储不提供多键事务，同一房间的并发变更靠它避免丢失更新。
type RoomLocks struct {
	mutex sync.Mutex
	locks map[string]*sync.Mutex
}

func NewRoomLocks() *RoomLocks {
	return &RoomLocks{
		locks: make(map[string]*sync.Mutex),
	}
}

// Lock acquires the per-room mutex and returns its unlock function.
func (l *RoomLocks) Lock(roomID string) func() {
	l.mutex.Lock()
	lock, exists := l.locks[roomID]
	if !exists {
		lock = &sync.Mutex{}
		l.locks[roomID] = lock
	}
	l.mutex.Unlock()

	lock.Lock()
	return lock.Unlock
}

// Forget 丢弃房间的互斥量，在房间记录被清理后调用
func (l *RoomLocks) Forget(roomID string) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	delete(l.locks, roomID)
}
