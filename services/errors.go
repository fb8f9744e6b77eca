// services/errors.go
package services

import (
	"errors"
)

var (
	// ErrInvalidParameters 请求字段缺失或结构不合法
	ErrInvalidParameters = errors.New("invalid parameters")

	// ErrRoomFull 会话已有两名不同用户名的玩家
	ErrRoomFull = errors.New("room already has two players")

	// ErrSessionNotReady 对局操作要求会话已有两名玩家
	ErrSessionNotReady = errors.New("session does not have two players")
)
