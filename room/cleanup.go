// room/cleanup.go
package room

import (
	"time"

	"github.com/duoparty/gameserver/timer"
)

// CleanupScheduler 空房清理调度器。
// 房间最后一条连接断开后启动宽限计时，期间任何重连取消回收；
// 计时到期后通过 handler 删除会话与对局记录。每个房间至多一个待执行计时器。
type CleanupScheduler struct {
	timers  *timer.TimerManager
	grace   time.Duration
	handler func(roomID string)
}

func NewCleanupScheduler(grace time.Duration) *CleanupScheduler {
	return &CleanupScheduler{
		timers: timer.NewTimerManager(),
		grace:  grace,
	}
}

// SetHandler 设置到期回调。必须在调度任何清理之前调用。
func (c *CleanupScheduler) SetHandler(handler func(roomID string)) {
	c.handler = handler
}

// Schedule 启动房间的清理计时，重复调度时替换旧计时器
func (c *CleanupScheduler) Schedule(roomID string) {
	c.timers.Schedule(roomID, c.grace, func() {
		if c.handler != nil {
			c.handler(roomID)
		}
	})
}

// Cancel 取消待执行的清理。已触发时为空操作。
func (c *CleanupScheduler) Cancel(roomID string) {
	c.timers.Cancel(roomID)
}

// Pending reports whether a cleanup is scheduled for the room.
func (c *CleanupScheduler) Pending(roomID string) bool {
	return c.timers.Pending(roomID)
}

// Stop 停止底层计时器循环
func (c *CleanupScheduler) Stop() {
	c.timers.Stop()
}
