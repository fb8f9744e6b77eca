// services/game_service.go
package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/duoparty/gameserver/broadcast"
	"github.com/duoparty/gameserver/logger"
	"github.com/duoparty/gameserver/models"
	"github.com/duoparty/gameserver/network"
	"github.com/duoparty/gameserver/persistence"
	"github.com/duoparty/gameserver/state"
)

// GameService 对局生命周期管理：开局抽题、回合推进与计分、终局清理
type GameService struct {
	store            persistence.Store
	catalog          persistence.Catalog
	broadcaster      broadcast.Broadcaster
	machine          state.Machine
	locks            *RoomLocks
	roundsPerGame    int
	questionsPerGame int
}

func NewGameService(store persistence.Store, catalog persistence.Catalog, broadcaster broadcast.Broadcaster, locks *RoomLocks, roundsPerGame, questionsPerGame int) *GameService {
	return &GameService{
		store:            store,
		catalog:          catalog,
		broadcaster:      broadcaster,
		machine:          state.NewSessionMachine(),
		locks:            locks,
		roundsPerGame:    roundsPerGame,
		questionsPerGame: questionsPerGame,
	}
}

// Start 开局：抽取未用过的题目，追加到 usedQuestions，创建对局并广播 game-started。
// 可用题目不足一局时照常开局，回合推进到题目用尽即终局。
func (g *GameService) Start(ctx context.Context, roomID, mode string) (*models.Game, error) {
	if roomID == "" || mode == "" {
		return nil, ErrInvalidParameters
	}

	unlock := g.locks.Lock(roomID)
	defer unlock()

	sess, err := g.store.GetSession(ctx, roomID)
	if err != nil {
		return nil, err
	}

	questions, err := g.catalog.FetchQuestions(ctx, mode, sess.UsedQuestions, g.questionsPerGame)
	if err != nil {
		return nil, err
	}

	for i := range questions {
		sess.UsedQuestions = append(sess.UsedQuestions, questions[i].ID)
	}

	game := &models.Game{
		ID:           uuid.New().String(),
		Mode:         mode,
		RoomID:       roomID,
		StartedAt:    time.Now().UnixMilli(),
		CurrentRound: 1,
		Questions:    questions,
	}

	if err := g.store.SaveGame(ctx, game); err != nil {
		return nil, err
	}

	if err := g.machine.Step(sess, models.StatusInGame); err != nil {
		return nil, err
	}
	sess.CurrentGameID = &game.ID

	if err := g.store.SaveSession(ctx, sess); err != nil {
		// 会话写入失败时对局记录成为孤儿，尽力回收
		if delErr := g.store.DeleteGame(ctx, game.ID); delErr != nil {
			logger.Log.Warnf("Orphan game %s not removed: %v", game.ID, delErr)
		}
		return nil, err
	}

	g.broadcaster.BroadcastToRoom(roomID, network.EventLocalGameStarted, map[string]string{
		"gameId": game.ID,
	})

	logger.Log.Infof("Game %s started in room %s (mode %s, %d questions)", game.ID, roomID, mode, len(questions))
	return game, nil
}

// Get 按对局ID读取
func (g *GameService) Get(ctx context.Context, gameID string) (*models.Game, error) {
	return g.store.GetGame(ctx, gameID)
}

// ResolveRound 裁定当前回合：接受则给答题方加分，回合计数加一。
// 先广播 update-score，随后广播 next-round 或 end-game。
// 答题方由回合奇偶决定：奇数回合 0 号位，偶数回合 1 号位。
func (g *GameService) ResolveRound(ctx context.Context, gameID string, accepted bool) error {
	if gameID == "" {
		return ErrInvalidParameters
	}

	game, err := g.store.GetGame(ctx, gameID)
	if err != nil {
		return err
	}

	unlock := g.locks.Lock(game.RoomID)
	defer unlock()

	// 在房间锁内重读，避免并行裁定覆盖
	game, err = g.store.GetGame(ctx, gameID)
	if err != nil {
		return err
	}

	sess, err := g.store.GetSession(ctx, game.RoomID)
	if err != nil {
		return err
	}

	question := game.CurrentQuestion()
	if question == nil {
		// 抽到的题目不足一整局，题目用尽等同到达回合上限
		return g.endGame(ctx, sess, game)
	}

	idx := game.AnsweringIndex()
	if idx >= len(sess.Players) {
		return ErrSessionNotReady
	}

	if accepted {
		sess.Players[idx].Points += question.Points
	}
	game.CurrentRound++

	if err := g.store.SaveGame(ctx, game); err != nil {
		return err
	}
	if err := g.store.SaveSession(ctx, sess); err != nil {
		return err
	}

	g.broadcaster.BroadcastToRoom(sess.Room, network.EventLocalUpdateScore, map[string]interface{}{
		"players": sess.Players,
	})

	if game.CurrentRound > g.roundsPerGame || game.CurrentRound > len(game.Questions) {
		return g.endGame(ctx, sess, game)
	}

	next := game.Questions[game.CurrentRound-1]
	g.broadcaster.BroadcastToRoom(sess.Room, network.EventLocalNextRound, map[string]interface{}{
		"currentRound": game.CurrentRound,
		"question":     next,
	})
	return nil
}

// endGame 终局：解除会话的对局引用，删除对局记录并广播最终比分
func (g *GameService) endGame(ctx context.Context, sess *models.Session, game *models.Game) error {
	sess.CurrentGameID = nil
	if err := g.store.SaveSession(ctx, sess); err != nil {
		return err
	}
	if err := g.store.DeleteGame(ctx, game.ID); err != nil {
		return err
	}

	g.broadcaster.BroadcastToRoom(sess.Room, network.EventLocalEndGame, map[string]interface{}{
		"players": sess.Players,
	})

	logger.Log.Infof("Game %s ended in room %s", game.ID, sess.Room)
	return nil
}

// Report 题目举报：只作为审计信号记录，不改动任何状态。
// 客户端会同时对该回合提交拒绝裁定，耦合保持不变。
func (g *GameService) Report(ctx context.Context, gameID, questionID string) error {
	if gameID == "" || questionID == "" {
		return ErrInvalidParameters
	}

	game, err := g.store.GetGame(ctx, gameID)
	if err != nil {
		return err
	}

	logger.Log.Warnf("Question %s reported in game %s (room %s)", questionID, game.ID, game.RoomID)
	return nil
}

// TotalQuestions 题库总题数，用于 get:game-info
func (g *GameService) TotalQuestions(ctx context.Context) (int64, error) {
	return g.catalog.CountQuestions(ctx)
}

// GameModes 游戏模式目录
func (g *GameService) GameModes(ctx context.Context) ([]models.GameMode, error) {
	return g.catalog.ListGameModes(ctx)
}
