// services/session_service.go
package services

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/duoparty/gameserver/broadcast"
	"github.com/duoparty/gameserver/logger"
	"github.com/duoparty/gameserver/models"
	"github.com/duoparty/gameserver/network"
	"github.com/duoparty/gameserver/persistence"
	"github.com/duoparty/gameserver/room"
	"github.com/duoparty/gameserver/session"
	"github.com/duoparty/gameserver/state"
)

// SessionService 会话生命周期管理：创建、加入/重连合并、离开与空房回收
type SessionService struct {
	store       persistence.Store
	registry    *room.Registry
	cleanup     *room.CleanupScheduler
	broadcaster broadcast.Broadcaster
	machine     state.Machine
	locks       *RoomLocks
	expired     func(roomID string)
}

func NewSessionService(store persistence.Store, registry *room.Registry, cleanup *room.CleanupScheduler, broadcaster broadcast.Broadcaster, locks *RoomLocks) *SessionService {
	s := &SessionService{
		store:       store,
		registry:    registry,
		cleanup:     cleanup,
		broadcaster: broadcaster,
		machine:     state.NewSessionMachine(),
		locks:       locks,
	}
	cleanup.SetHandler(s.expireRoom)
	return s
}

// OnRoomExpired 注册清理完成回调，网关用它更新指标
func (s *SessionService) OnRoomExpired(fn func(roomID string)) {
	s.expired = fn
}

// Create 创建会话：生成房间ID和6位数字显示码，状态 waiting，玩家列表为空
func (s *SessionService) Create(ctx context.Context, name, sessionType, password string) (*models.Session, error) {
	if name == "" || sessionType == "" {
		return nil, ErrInvalidParameters
	}

	sess := &models.Session{
		Room:          uuid.New().String(),
		Code:          fmt.Sprintf("%d", 100000+rand.Intn(900000)),
		Name:          name,
		Players:       []models.Player{},
		IsOnlineMode:  sessionType == "online",
		UsedQuestions: []string{},
		Status:        models.StatusWaiting,
		CreatedAt:     time.Now().UnixMilli(),
	}
	if password != "" {
		sess.Password = &password
	}

	if err := s.store.SaveSession(ctx, sess); err != nil {
		return nil, err
	}

	logger.Log.Infof("Created session %s (code %s, online=%v)", sess.Room, sess.Code, sess.IsOnlineMode)
	return sess, nil
}

// Get 按房间ID读取会话
func (s *SessionService) Get(ctx context.Context, roomID string) (*models.Session, error) {
	return s.store.GetSession(ctx, roomID)
}

// JoinLocal 本地模式加入：两名玩家共用一条连接。
// 按用户名合并，重连幂等，不会产生重复玩家。任何加入都会取消待执行的清理。
func (s *SessionService) JoinLocal(ctx context.Context, conn *session.Session, roomID, username1, username2 string) (*models.Session, error) {
	if roomID == "" || username1 == "" || username2 == "" {
		return nil, ErrInvalidParameters
	}
	if username1 == username2 {
		return nil, ErrInvalidParameters
	}

	unlock := s.locks.Lock(roomID)
	defer unlock()

	s.registry.Join(roomID, conn)

	sess, err := s.store.GetSession(ctx, roomID)
	if err != nil {
		return nil, err
	}

	if err := s.mergePlayer(sess, username1, &conn.ID, true); err != nil {
		return nil, err
	}
	if err := s.mergePlayer(sess, username2, nil, false); err != nil {
		return nil, err
	}
	conn.SetUsername(username1)

	// 没有进行中的对局时回到模式选择菜单
	if sess.CurrentGameID == nil {
		if err := s.machine.Step(sess, models.StatusInSelectionMenu); err != nil {
			return nil, err
		}
	}

	// 重连中止已排期的回收
	s.cleanup.Cancel(roomID)

	if err := s.store.SaveSession(ctx, sess); err != nil {
		return nil, err
	}

	s.broadcaster.BroadcastToRoom(roomID, network.EventLocalPlayersReady, sess)
	return sess, nil
}

// mergePlayer 合并一名玩家：已存在则更新连接标识并置为在线，否则追加。
// 第三个不同用户名不会被追加。
func (s *SessionService) mergePlayer(sess *models.Session, username string, socketID *string, isHost bool) error {
	if i := sess.FindPlayer(username); i >= 0 {
		if socketID != nil {
			sess.Players[i].SocketID = socketID
		}
		sess.Players[i].IsOnline = true
		return nil
	}

	if len(sess.Players) >= models.MaxPlayers {
		return ErrRoomFull
	}

	sess.Players = append(sess.Players, models.Player{
		Username: username,
		SocketID: socketID,
		IsHost:   isHost,
		IsOnline: true,
		Points:   0,
	})
	return nil
}

// JoinOnline 在线模式加入：每名玩家一条连接，首位加入者成为房主。
// 凑满两人时向全房间广播 players-ready。
func (s *SessionService) JoinOnline(ctx context.Context, conn *session.Session, roomID, username string) (*models.Session, error) {
	if roomID == "" || username == "" {
		return nil, ErrInvalidParameters
	}

	unlock := s.locks.Lock(roomID)
	defer unlock()

	s.registry.Join(roomID, conn)

	sess, err := s.store.GetSession(ctx, roomID)
	if err != nil {
		return nil, err
	}

	var joined models.Player
	if i := sess.FindPlayer(username); i >= 0 {
		// 重连：只刷新连接标识
		sess.Players[i].SocketID = &conn.ID
		sess.Players[i].IsOnline = true
		joined = sess.Players[i]
	} else {
		if len(sess.Players) >= models.MaxPlayers {
			return nil, ErrRoomFull
		}
		joined = models.Player{
			Username: username,
			SocketID: &conn.ID,
			IsHost:   len(sess.Players) == 0,
			IsOnline: true,
			Points:   0,
		}
		sess.Players = append(sess.Players, joined)
	}
	conn.SetUsername(username)

	s.cleanup.Cancel(roomID)

	if err := s.store.SaveSession(ctx, sess); err != nil {
		return nil, err
	}

	s.broadcaster.BroadcastToRoomExcept(roomID, conn.ID, network.EventOnlinePlayerJoined, map[string]interface{}{
		"player": joined,
	})

	if len(sess.Players) == models.MaxPlayers {
		s.broadcaster.BroadcastToRoom(roomID, network.EventOnlinePlayersReady, map[string]interface{}{
			"player1": sess.Players[0],
			"player2": sess.Players[1],
		})
	}

	logger.Log.Infof("%s joined room %s", username, roomID)
	return sess, nil
}

// Leave 离开通知：房间没有在线连接时排期清理，而不是立即删除。
// 页面刷新或瞬时掉线不应销毁状态。
func (s *SessionService) Leave(ctx context.Context, roomID string) error {
	if roomID == "" {
		return ErrInvalidParameters
	}

	if _, err := s.store.GetSession(ctx, roomID); err != nil {
		return err
	}

	if s.registry.Count(roomID) == 0 {
		s.cleanup.Schedule(roomID)
		logger.Log.Infof("Room %s empty, cleanup scheduled", roomID)
	}
	return nil
}

// expireRoom 清理计时到期：删除会话及其引用的对局记录
func (s *SessionService) expireRoom(roomID string) {
	// 计时触发与重连之间存在竞争，触发后再核对一次在线连接
	if s.registry.Count(roomID) > 0 {
		return
	}

	unlock := s.locks.Lock(roomID)
	defer unlock()

	ctx := context.Background()

	sess, err := s.store.GetSession(ctx, roomID)
	if err != nil {
		logger.Log.Warnf("Cleanup of room %s skipped: %v", roomID, err)
		return
	}

	if sess.CurrentGameID != nil {
		if err := s.store.DeleteGame(ctx, *sess.CurrentGameID); err != nil {
			logger.Log.Errorf("Cleanup of game %s failed: %v", *sess.CurrentGameID, err)
		}
	}

	if err := s.store.DeleteSession(ctx, roomID); err != nil {
		logger.Log.Errorf("Cleanup of session %s failed: %v", roomID, err)
		return
	}

	s.locks.Forget(roomID)
	logger.Log.Infof("Room %s expired, session removed", roomID)

	if s.expired != nil {
		s.expired(roomID)
	}
}
