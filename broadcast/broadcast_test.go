package broadcast

import (
	"errors"
	"net"
	"testing"
	"time"

	"github.com/duoparty/gameserver/network"
	"github.com/duoparty/gameserver/room"
	"github.com/duoparty/gameserver/session"
)

// MockConnection is a test double for the network.Connection interface.
type MockConnection struct {
	sent    []string
	sendErr error
}

func (m *MockConnection) Send(event string, payload interface{}) error {
	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent = append(m.sent, event)
	return nil
}

func (m *MockConnection) Close() error                        { return nil }
func (m *MockConnection) RemoteAddr() net.Addr                { return &net.TCPAddr{} }
func (m *MockConnection) SetHeartbeat(interval time.Duration) {}
func (m *MockConnection) ReadEvent() (*network.Event, error)  { return nil, nil }

func TestRoomBroadcaster_BroadcastToRoom(t *testing.T) {
	registry := room.NewRegistry()
	broadcaster := NewRoomBroadcaster(registry)

	conn1 := &MockConnection{}
	conn2 := &MockConnection{}
	registry.Join("room-1", session.NewSession("s1", conn1))
	registry.Join("room-1", session.NewSession("s2", conn2))

	if err := broadcaster.BroadcastToRoom("room-1", "test:event", "payload"); err != nil {
		t.Fatalf("Broadcast failed: %v", err)
	}

	if len(conn1.sent) != 1 || conn1.sent[0] != "test:event" {
		t.Errorf("Expected conn1 to receive test:event, got %v", conn1.sent)
	}
	if len(conn2.sent) != 1 || conn2.sent[0] != "test:event" {
		t.Errorf("Expected conn2 to receive test:event, got %v", conn2.sent)
	}
}

func TestRoomBroadcaster_BroadcastToRoomExcept(t *testing.T) {
	registry := room.NewRegistry()
	broadcaster := NewRoomBroadcaster(registry)

	conn1 := &MockConnection{}
	conn2 := &MockConnection{}
	registry.Join("room-1", session.NewSession("s1", conn1))
	registry.Join("room-1", session.NewSession("s2", conn2))

	if err := broadcaster.BroadcastToRoomExcept("room-1", "s1", "test:event", "payload"); err != nil {
		t.Fatalf("Broadcast failed: %v", err)
	}

	if len(conn1.sent) != 0 {
		t.Errorf("Excluded connection must not receive the event, got %v", conn1.sent)
	}
	if len(conn2.sent) != 1 {
		t.Errorf("Expected conn2 to receive the event, got %v", conn2.sent)
	}
}

func TestRoomBroadcaster_EmptyRoom(t *testing.T) {
	broadcaster := NewRoomBroadcaster(room.NewRegistry())

	if err := broadcaster.BroadcastToRoom("no-such-room", "test:event", nil); err != ErrRoomNotFound {
		t.Errorf("Expected ErrRoomNotFound, got %v", err)
	}
}

func TestRoomBroadcaster_SkipsFailedSends(t *testing.T) {
	registry := room.NewRegistry()
	broadcaster := NewRoomBroadcaster(registry)

	broken := &MockConnection{sendErr: errors.New("write failed")}
	healthy := &MockConnection{}
	registry.Join("room-1", session.NewSession("s1", broken))
	registry.Join("room-1", session.NewSession("s2", healthy))

	if err := broadcaster.BroadcastToRoom("room-1", "test:event", nil); err != nil {
		t.Fatalf("A single failed send must not fail the broadcast: %v", err)
	}
	if len(healthy.sent) != 1 {
		t.Errorf("Healthy connection should still receive the event, got %v", healthy.sent)
	}
}
