package server

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/duoparty/gameserver/broadcast"
	"github.com/duoparty/gameserver/config"
	"github.com/duoparty/gameserver/logger"
	"github.com/duoparty/gameserver/monitor"
	"github.com/duoparty/gameserver/network"
	"github.com/duoparty/gameserver/persistence"
	"github.com/duoparty/gameserver/room"
	"github.com/duoparty/gameserver/services"
	"github.com/duoparty/gameserver/session"
)

// GameServer 实时网关：接入 WebSocket 连接，分发事件到生命周期管理器，
// 并暴露请求/响应式的 HTTP 接口
type GameServer struct {
	addr           string
	upgrader       websocket.Upgrader
	registry       *room.Registry
	scheduler      *room.CleanupScheduler
	sessionManager *session.Manager
	broadcaster    broadcast.Broadcaster
	sessionService *services.SessionService
	gameService    *services.GameService
	monitor        *monitor.Monitor
	shutdownChan   chan struct{}
}

func NewGameServer(cfg *config.Config, store persistence.Store, catalog persistence.Catalog, mon *monitor.Monitor) *GameServer {
	registry := room.NewRegistry()
	scheduler := room.NewCleanupScheduler(cfg.Game.CleanupGrace)
	broadcaster := broadcast.NewRoomBroadcaster(registry)
	locks := services.NewRoomLocks()

	s := &GameServer{
		addr:           cfg.Server.HTTPAddress,
		registry:       registry,
		scheduler:      scheduler,
		sessionManager: session.NewManager(),
		broadcaster:    broadcaster,
		sessionService: services.NewSessionService(store, registry, scheduler, broadcaster, locks),
		gameService:    services.NewGameService(store, catalog, broadcaster, locks, cfg.Game.RoundsPerGame, cfg.Game.QuestionsPerGame),
		monitor:        mon,
		shutdownChan:   make(chan struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // 允许所有跨域请求
			},
		},
	}

	if mon != nil {
		s.sessionService.OnRoomExpired(func(roomID string) {
			mon.IncRoomsCleaned()
		})
	}

	return s
}

func (s *GameServer) Start() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	s.registerAPIRoutes(mux)

	logger.Log.Infof("Game server listening on %s", s.addr)
	return http.ListenAndServe(s.addr, mux)
}

func (s *GameServer) Shutdown() {
	close(s.shutdownChan)
	s.scheduler.Stop()
}

func (s *GameServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Infof("Failed to upgrade connection: %v", err)
		return
	}
	s.handleConnection(conn)
}

func (s *GameServer) handleConnection(conn *websocket.Conn) {
	wsConn := network.NewWSConnection(conn)
	sess := session.NewSession(uuid.New().String(), wsConn)
	s.sessionManager.Add(sess)
	if s.monitor != nil {
		s.monitor.IncConnectedPlayers()
	}

	logger.Log.Infof("New connection from %s, session ID: %s", wsConn.RemoteAddr(), sess.GetID())

	defer func() {
		logger.Log.Infof("Connection closed from %s, session ID: %s", wsConn.RemoteAddr(), sess.GetID())
		s.sessionManager.Remove(sess.GetID())
		s.handleDisconnect(sess)
		if s.monitor != nil {
			s.monitor.DecConnectedPlayers()
			s.monitor.SetActiveRooms(s.registry.RoomCount())
		}
		wsConn.Close()
	}()

	for {
		select {
		case <-s.shutdownChan:
			return
		default:
			event, err := wsConn.ReadEvent()
			if err != nil {
				if err == network.ErrMalformedEvent {
					// 非法帧只影响本条消息，连接继续服务
					sess.Send(network.EventLocalError, "Invalid parameters")
					continue
				}
				return
			}
			s.handleEvent(sess, event)
		}
	}
}

// handleDisconnect 传输层断开：按连接最后所在的房间触发离开流程
func (s *GameServer) handleDisconnect(sess *session.Session) {
	roomID := sess.GetRoom()
	if roomID == "" {
		return
	}

	s.registry.Leave(roomID, sess.ID)
	if err := s.sessionService.Leave(context.Background(), roomID); err != nil {
		logger.Log.Warnf("Leave flow for room %s failed: %v", roomID, err)
	}
}

// handleEvent 分发一条入站事件。每个处理器的失败都被隔离在触发它的事件内，
// 错误只回发给发起连接，绝不广播。
func (s *GameServer) handleEvent(sess *session.Session, event *network.Event) {
	start := time.Now()
	if s.monitor != nil {
		s.monitor.IncEventsReceived()
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Log.Errorf("Panic handling %s from session %s: %v", event.Event, sess.GetID(), r)
			sess.Send(network.EventLocalError, "Internal error")
		}
		if s.monitor != nil {
			s.monitor.ObserveEventLatency(time.Since(start))
			s.monitor.SetActiveRooms(s.registry.RoomCount())
		}
	}()

	switch event.Event {
	case network.EventLocalJoinRoom:
		s.handleLocalJoin(sess, event.Data)
	case network.EventOnlineJoinRoom:
		s.handleOnlineJoin(sess, event.Data)
	case network.EventLocalStartGame:
		s.handleStartGame(sess, event.Data)
	case network.EventLocalAnswer:
		s.handleAnswer(sess, event.Data)
	case network.EventLocalReport:
		s.handleReport(sess, event.Data)
	case network.EventLocalLeave:
		s.handleLeave(sess, event.Data)
	case network.EventGetGameInfo:
		s.handleGameInfo(sess)
	default:
		logger.Log.Infof("Unknown event type: %s", event.Event)
	}
}
