// server/handlers.go
package server

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/duoparty/gameserver/logger"
	"github.com/duoparty/gameserver/network"
	"github.com/duoparty/gameserver/persistence"
	"github.com/duoparty/gameserver/services"
	"github.com/duoparty/gameserver/session"
)

type playerPayload struct {
	Username string `json:"username"`
}

type localJoinPayload struct {
	RoomID  string        `json:"roomId"`
	Player1 playerPayload `json:"player1"`
	Player2 playerPayload `json:"player2"`
}

type onlineJoinPayload struct {
	RoomID string        `json:"roomId"`
	Player playerPayload `json:"player"`
}

type startGamePayload struct {
	Mode   string `json:"mode"`
	RoomID string `json:"roomId"`
}

type answerPayload struct {
	GameID string `json:"gameId"`
	// 指针以便区分缺失与 false；非布尔值在解码时报错
	Accepted *bool `json:"accepted"`
}

type reportPayload struct {
	GameID     string `json:"gameId"`
	QuestionID string `json:"questionId"`
}

type leavePayload struct {
	RoomID string `json:"roomId"`
}

// errorMessage 把服务层错误映射为回发给发起连接的消息文本
func errorMessage(err error) string {
	switch {
	case errors.Is(err, persistence.ErrSessionNotFound):
		return "Session not found"
	case errors.Is(err, persistence.ErrGameNotFound):
		return "Game not found"
	case errors.Is(err, persistence.ErrStoreUnavailable):
		return "Store unavailable"
	case errors.Is(err, services.ErrInvalidParameters):
		return "Invalid parameters"
	case errors.Is(err, services.ErrRoomFull):
		return "Room is full"
	case errors.Is(err, services.ErrSessionNotReady):
		return "Session is not ready"
	default:
		return "Internal error"
	}
}

func (s *GameServer) handleLocalJoin(sess *session.Session, data json.RawMessage) {
	var req localJoinPayload
	if err := json.Unmarshal(data, &req); err != nil || req.RoomID == "" || req.Player1.Username == "" || req.Player2.Username == "" {
		sess.Send(network.EventLocalErrorJoin, "Missing roomId or players")
		return
	}

	_, err := s.sessionService.JoinLocal(context.Background(), sess, req.RoomID, req.Player1.Username, req.Player2.Username)
	if err != nil {
		logger.Log.Warnf("local join-room failed for %s: %v", req.RoomID, err)
		sess.Send(network.EventLocalErrorJoin, errorMessage(err))
	}
}

func (s *GameServer) handleOnlineJoin(sess *session.Session, data json.RawMessage) {
	var req onlineJoinPayload
	if err := json.Unmarshal(data, &req); err != nil || req.RoomID == "" || req.Player.Username == "" {
		sess.Send(network.EventOnlineErrorJoin, "Missing roomId or player")
		return
	}

	_, err := s.sessionService.JoinOnline(context.Background(), sess, req.RoomID, req.Player.Username)
	if err != nil {
		logger.Log.Warnf("online join-room failed for %s: %v", req.RoomID, err)
		sess.Send(network.EventOnlineErrorJoin, errorMessage(err))
	}
}

func (s *GameServer) handleStartGame(sess *session.Session, data json.RawMessage) {
	var req startGamePayload
	if err := json.Unmarshal(data, &req); err != nil || req.Mode == "" || req.RoomID == "" {
		sess.Send(network.EventLocalErrorStart, "Missing mode or roomId")
		return
	}

	_, err := s.gameService.Start(context.Background(), req.RoomID, req.Mode)
	if err != nil {
		logger.Log.Warnf("start-game failed for %s: %v", req.RoomID, err)
		sess.Send(network.EventLocalErrorStart, errorMessage(err))
	}
}

func (s *GameServer) handleAnswer(sess *session.Session, data json.RawMessage) {
	var req answerPayload
	if err := json.Unmarshal(data, &req); err != nil || req.GameID == "" || req.Accepted == nil {
		sess.Send(network.EventLocalError, "Invalid parameters")
		return
	}

	if err := s.gameService.ResolveRound(context.Background(), req.GameID, *req.Accepted); err != nil {
		logger.Log.Warnf("answer failed for game %s: %v", req.GameID, err)
		sess.Send(network.EventLocalError, errorMessage(err))
	}
}

func (s *GameServer) handleReport(sess *session.Session, data json.RawMessage) {
	var req reportPayload
	if err := json.Unmarshal(data, &req); err != nil || req.GameID == "" || req.QuestionID == "" {
		sess.Send(network.EventLocalError, "Invalid parameters")
		return
	}

	if s.monitor != nil {
		s.monitor.IncQuestionsFlagged()
	}
	if err := s.gameService.Report(context.Background(), req.GameID, req.QuestionID); err != nil {
		sess.Send(network.EventLocalError, errorMessage(err))
	}
}

func (s *GameServer) handleLeave(sess *session.Session, data json.RawMessage) {
	var req leavePayload
	if err := json.Unmarshal(data, &req); err != nil || req.RoomID == "" {
		sess.Send(network.EventLocalError, "Invalid parameters")
		return
	}

	s.registry.Leave(req.RoomID, sess.ID)
	sess.SetRoom("")

	if err := s.sessionService.Leave(context.Background(), req.RoomID); err != nil {
		sess.Send(network.EventLocalError, errorMessage(err))
	}
}

func (s *GameServer) handleGameInfo(sess *session.Session) {
	total, err := s.gameService.TotalQuestions(context.Background())
	if err != nil {
		sess.Send(network.EventLocalError, errorMessage(err))
		return
	}

	sess.Send(network.EventGameInfo, map[string]int64{
		"totalQuestions": total,
	})
}
