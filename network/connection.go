// network/connection.go
package network

import (
	"encoding/json"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Event 事件信封: {"event": "...", "data": {...}}
type Event struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// ErrMalformedEvent is returned when an inbound frame is not a valid event envelope.
var ErrMalformedEvent = errors.New("malformed event envelope")

type Connection interface {
	Send(event string, payload interface{}) error
	Close() error
	RemoteAddr() net.Addr
	SetHeartbeat(interval time.Duration)
	ReadEvent() (*Event, error)
}

type WSConnection struct {
	conn      *websocket.Conn
	sendMutex sync.Mutex
	heartbeat time.Duration
}

func NewWSConnection(conn *websocket.Conn) *WSConnection {
	return &WSConnection{conn: conn}
}

func (c *WSConnection) Send(event string, payload interface{}) error {
	c.sendMutex.Lock()
	defer c.sendMutex.Unlock()

	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	frame, err := json.Marshal(Event{Event: event, Data: data})
	if err != nil {
		return err
	}

	return c.conn.WriteMessage(websocket.TextMessage, frame)
}

func (c *WSConnection) ReadEvent() (*Event, error) {
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return nil, err
	}

	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, ErrMalformedEvent
	}
	if ev.Event == "" {
		return nil, ErrMalformedEvent
	}

	return &ev, nil
}

func (c *WSConnection) SetHeartbeat(interval time.Duration) {
	c.heartbeat = interval
	c.conn.SetReadDeadline(time.Now().Add(interval * 2))
}

func (c *WSConnection) Close() error {
	return c.conn.Close()
}

func (c *WSConnection) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}
