package state

import (
	"errors"
	"sync"

	"github.com/duoparty/gameserver/models"
)

// ErrTransitionNotAllowed is returned when a status transition is not allowed.
var ErrTransitionNotAllowed = errors.New("status transition not allowed")

// 状态机接口
type Machine interface {
	Can(from, to models.SessionStatus) bool
	Step(session *models.Session, to models.SessionStatus) error
	AddTransition(from, to models.SessionStatus)
}

// 基础状态机实现：按转移表校验会话状态变更
type SessionMachine struct {
	transitions map[models.SessionStatus]map[models.SessionStatus]bool
	mutex       sync.RWMutex
}

// NewSessionMachine 创建带默认转移表的会话状态机。
//
//	waiting → in_game_selection_menu → in_game
//	                    ↑_________________↓
//	任何状态 → ended
func NewSessionMachine() *SessionMachine {
	m := &SessionMachine{
		transitions: make(map[models.SessionStatus]map[models.SessionStatus]bool),
	}

	m.AddTransition(models.StatusWaiting, models.StatusInSelectionMenu)
	m.AddTransition(models.StatusWaiting, models.StatusInGame)
	m.AddTransition(models.StatusInSelectionMenu, models.StatusInGame)
	m.AddTransition(models.StatusInGame, models.StatusInSelectionMenu)

	for _, from := range []models.SessionStatus{
		models.StatusWaiting,
		models.StatusInSelectionMenu,
		models.StatusInGame,
	} {
		m.AddTransition(from, models.StatusEnded)
	}

	return m
}

func (m *SessionMachine) AddTransition(from, to models.SessionStatus) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, exists := m.transitions[from]; !exists {
		m.transitions[from] = make(map[models.SessionStatus]bool)
	}
	m.transitions[from][to] = true
}

func (m *SessionMachine) Can(from, to models.SessionStatus) bool {
	if from == to {
		return true
	}

	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return m.transitions[from][to]
}

// Step 校验并应用状态变更。同状态为空操作。
func (m *SessionMachine) Step(session *models.Session, to models.SessionStatus) error {
	if session.Status == to {
		return nil
	}
	if !m.Can(session.Status, to) {
		return ErrTransitionNotAllowed
	}
	session.Status = to
	return nil
}
