// models/models.go
package models

// SessionStatus 会话状态
type SessionStatus string

const (
	StatusWaiting         SessionStatus = "waiting"
	StatusInSelectionMenu SessionStatus = "in_game_selection_menu"
	StatusInGame          SessionStatus = "in_game"
	StatusEnded           SessionStatus = "ended"
)

// QuestionType 题目类型
type QuestionType string

const (
	TypeQuestion  QuestionType = "QUESTION"
	TypeChallenge QuestionType = "CHALLENGE"
)

// MaxPlayers 一个会话固定两名玩家
const MaxPlayers = 2

// Player 玩家数据模型，嵌入在 Session.Players 中
type Player struct {
	Username string  `json:"username"`
	SocketID *string `json:"socketId"`
	IsHost   bool    `json:"isHost"`
	IsOnline bool    `json:"isOnline"`
	Points   int     `json:"points"`
}

// Session 会话数据模型，以 session:{roomId} 为键存储
type Session struct {
	Room          string        `json:"room"`
	Code          string        `json:"code"`
	Name          string        `json:"name"`
	Players       []Player      `json:"players"`
	IsOnlineMode  bool          `json:"isOnlineMode"`
	Password      *string       `json:"password"`
	UsedQuestions []string      `json:"usedQuestions"`
	Status        SessionStatus `json:"status"`
	CurrentGameID *string       `json:"currentGameId"`
	CreatedAt     int64         `json:"createdAt"`
}

// FindPlayer returns the index of the player with the given username, or -1.
func (s *Session) FindPlayer(username string) int {
	for i := range s.Players {
		if s.Players[i].Username == username {
			return i
		}
	}
	return -1
}

// Question 题目数据模型，抽取后固定在 Game.Questions 中
type Question struct {
	ID      string       `json:"id"`
	Content string       `json:"content"`
	Type    QuestionType `json:"type"`
	Points  int          `json:"points"`
}

// Game 对局数据模型，以 game:{gameId} 为键存储
type Game struct {
	ID           string     `json:"id"`
	Mode         string     `json:"mode"`
	RoomID       string     `json:"roomId"`
	StartedAt    int64      `json:"startedAt"`
	CurrentRound int        `json:"currentRound"`
	Questions    []Question `json:"questions"`
}

// CurrentQuestion returns the question for the current round, or nil when the
// drawn list is exhausted.
func (g *Game) CurrentQuestion() *Question {
	idx := g.CurrentRound - 1
	if idx < 0 || idx >= len(g.Questions) {
		return nil
	}
	return &g.Questions[idx]
}

// AnsweringIndex 根据回合奇偶确定答题玩家: 奇数回合是 0 号位，偶数回合是 1 号位
func (g *Game) AnsweringIndex() int {
	if g.CurrentRound%2 == 1 {
		return 0
	}
	return 1
}

// GameMode 游戏模式目录条目
type GameMode struct {
	ID          string `json:"id"`
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Emoji       string `json:"emoji,omitempty"`
	EmojiURL    string `json:"emojiUrl,omitempty"`
	ImageURL    string `json:"imageUrl,omitempty"`
}
