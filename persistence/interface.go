// persistence/interface.go
package persistence

import (
	"context"
	"errors"

	"github.com/duoparty/gameserver/models"
)

// Store 共享状态存储接口，保存会话与对局两类记录。
// 读改写序列由调用方按房间串行化，存储本身不提供多键事务。
type Store interface {
	GetSession(ctx context.Context, roomID string) (*models.Session, error)
	SaveSession(ctx context.Context, session *models.Session) error
	DeleteSession(ctx context.Context, roomID string) error
	GetGame(ctx context.Context, gameID string) (*models.Game, error)
	SaveGame(ctx context.Context, game *models.Game) error
	DeleteGame(ctx context.Context, gameID string) error
	Close() error
}

// Catalog 题库与游戏模式目录接口
type Catalog interface {
	// FetchQuestions 按模式抽取至多 limit 条题目，排除已用题目
	FetchQuestions(ctx context.Context, mode string, excludeIDs []string, limit int) ([]models.Question, error)
	ListGameModes(ctx context.Context) ([]models.GameMode, error)
	CountQuestions(ctx context.Context) (int64, error)
	Close() error
}

// 错误定义
var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrGameNotFound     = errors.New("game not found")
	ErrStoreUnavailable = errors.New("store unavailable")
)
