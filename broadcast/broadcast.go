// broadcast/broadcast.go
package broadcast

import (
	"errors"

	"github.com/duoparty/gameserver/room"
)

var (
	ErrRoomNotFound = errors.New("room not found")
)

// 广播接口
type Broadcaster interface {
	BroadcastToRoom(roomID, event string, payload interface{}) error
	BroadcastToRoomExcept(roomID, exceptSessionID, event string, payload interface{}) error
}

// 基于房间注册表的广播器
type RoomBroadcaster struct {
	registry *room.Registry
}

func NewRoomBroadcaster(registry *room.Registry) *RoomBroadcaster {
	return &RoomBroadcaster{
		registry: registry,
	}
}

func (b *RoomBroadcaster) BroadcastToRoom(roomID, event string, payload interface{}) error {
	return b.broadcast(roomID, "", event, payload)
}

// BroadcastToRoomExcept 广播给房间内除指定连接外的所有连接，
// 用于 player-joined 这类不需要回发给发起者的通知
func (b *RoomBroadcaster) BroadcastToRoomExcept(roomID, exceptSessionID, event string, payload interface{}) error {
	return b.broadcast(roomID, exceptSessionID, event, payload)
}

func (b *RoomBroadcaster) broadcast(roomID, exceptSessionID, event string, payload interface{}) error {
	sessions := b.registry.Sessions(roomID)
	if len(sessions) == 0 {
		return ErrRoomNotFound
	}

	for _, s := range sessions {
		if s.ID == exceptSessionID {
			continue
		}
		if err := s.Send(event, payload); err != nil {
			// 发送失败的连接由读循环的断线处理负责清理
			continue
		}
	}

	return nil
}
