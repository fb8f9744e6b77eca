package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/duoparty/gameserver/models"
	"github.com/duoparty/gameserver/network"
	"github.com/duoparty/gameserver/persistence"
)

type gameFixture struct {
	store       *MemStore
	catalog     *MemCatalog
	broadcaster *MockBroadcaster
	service     *GameService
}

func newGameFixture(roundsPerGame, questionsPerGame int) *gameFixture {
	store := NewMemStore()
	catalog := NewMemCatalog()
	broadcaster := &MockBroadcaster{}
	service := NewGameService(store, catalog, broadcaster, NewRoomLocks(), roundsPerGame, questionsPerGame)

	return &gameFixture{
		store:       store,
		catalog:     catalog,
		broadcaster: broadcaster,
		service:     service,
	}
}

// seedSession stores a two-player session ready to start a game.
func (f *gameFixture) seedSession(t *testing.T, roomID string) {
	t.Helper()
	socket := "conn1"
	sess := &models.Session{
		Room:          roomID,
		Code:          "123456",
		Name:          "Test",
		Status:        models.StatusInSelectionMenu,
		UsedQuestions: []string{},
		Players: []models.Player{
			{Username: "Alice", SocketID: &socket, IsHost: true, IsOnline: true},
			{Username: "Bob", IsOnline: true},
		},
	}
	if err := f.store.SaveSession(context.Background(), sess); err != nil {
		t.Fatalf("Seed session failed: %v", err)
	}
}

// seedQuestions adds n questions worth 10 points each to the given mode.
func (f *gameFixture) seedQuestions(mode string, n int) {
	for i := 0; i < n; i++ {
		f.catalog.AddQuestions(mode, models.Question{
			ID:      fmt.Sprintf("%s-q%d", mode, i+1),
			Content: fmt.Sprintf("Question %d", i+1),
			Type:    models.TypeQuestion,
			Points:  10,
		})
	}
}

func TestGameService_Start(t *testing.T) {
	f := newGameFixture(20, 20)
	ctx := context.Background()
	f.seedSession(t, "room-1")
	f.seedQuestions("chill", 30)

	game, err := f.service.Start(ctx, "room-1", "chill")
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	if game.CurrentRound != 1 {
		t.Errorf("Expected round 1, got %d", game.CurrentRound)
	}
	if len(game.Questions) != 20 {
		t.Errorf("Expected 20 questions, got %d", len(game.Questions))
	}
	if game.RoomID != "room-1" {
		t.Errorf("Expected room-1, got %s", game.RoomID)
	}

	sess, _ := f.store.GetSession(ctx, "room-1")
	if sess.Status != models.StatusInGame {
		t.Errorf("Expected status in_game, got %s", sess.Status)
	}
	if sess.CurrentGameID == nil || *sess.CurrentGameID != game.ID {
		t.Errorf("Expected currentGameId %s, got %v", game.ID, sess.CurrentGameID)
	}
	if len(sess.UsedQuestions) != 20 {
		t.Errorf("Expected 20 used questions, got %d", len(sess.UsedQuestions))
	}

	names := f.broadcaster.EventNames()
	if len(names) != 1 || names[0] != network.EventLocalGameStarted {
		t.Errorf("Expected a single game-started broadcast, got %v", names)
	}
}

func TestGameService_Start_ExcludesUsedQuestions(t *testing.T) {
	f := newGameFixture(20, 20)
	ctx := context.Background()
	f.seedSession(t, "room-1")
	f.seedQuestions("chill", 40)

	first, err := f.service.Start(ctx, "room-1", "chill")
	if err != nil {
		t.Fatalf("First start failed: %v", err)
	}

	// Simulate the first game ending before the next starts.
	sess, _ := f.store.GetSession(ctx, "room-1")
	sess.CurrentGameID = nil
	sess.Status = models.StatusInSelectionMenu
	f.store.SaveSession(ctx, sess)
	f.store.DeleteGame(ctx, first.ID)

	second, err := f.service.Start(ctx, "room-1", "chill")
	if err != nil {
		t.Fatalf("Second start failed: %v", err)
	}

	drawn := make(map[string]bool)
	for _, q := range first.Questions {
		drawn[q.ID] = true
	}
	for _, q := range second.Questions {
		if drawn[q.ID] {
			t.Errorf("Question %s drawn twice across games", q.ID)
		}
	}

	sess, _ = f.store.GetSession(ctx, "room-1")
	if len(sess.UsedQuestions) != 40 {
		t.Errorf("Expected 40 used questions after two games, got %d", len(sess.UsedQuestions))
	}
}

func TestGameService_Start_SessionNotFound(t *testing.T) {
	f := newGameFixture(20, 20)

	if _, err := f.service.Start(context.Background(), "no-such-room", "chill"); err != persistence.ErrSessionNotFound {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestGameService_ResolveRound_ParityScoring(t *testing.T) {
	f := newGameFixture(20, 20)
	ctx := context.Background()
	f.seedSession(t, "room-1")
	f.seedQuestions("chill", 20)

	game, err := f.service.Start(ctx, "room-1", "chill")
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	f.broadcaster.Events = nil

	// Round 1 is odd: an accepted answer credits the first player.
	if err := f.service.ResolveRound(ctx, game.ID, true); err != nil {
		t.Fatalf("ResolveRound failed: %v", err)
	}

	sess, _ := f.store.GetSession(ctx, "room-1")
	if sess.Players[0].Points != 10 {
		t.Errorf("Expected 10 points for Alice, got %d", sess.Players[0].Points)
	}
	if sess.Players[1].Points != 0 {
		t.Errorf("Expected 0 points for Bob, got %d", sess.Players[1].Points)
	}

	stored, _ := f.store.GetGame(ctx, game.ID)
	if stored.CurrentRound != 2 {
		t.Errorf("Expected round 2, got %d", stored.CurrentRound)
	}

	names := f.broadcaster.EventNames()
	want := []string{network.EventLocalUpdateScore, network.EventLocalNextRound}
	if len(names) != 2 || names[0] != want[0] || names[1] != want[1] {
		t.Errorf("Expected broadcasts %v, got %v", want, names)
	}

	// Round 2 is even: a rejected answer advances without scoring Bob.
	f.broadcaster.Events = nil
	if err := f.service.ResolveRound(ctx, game.ID, false); err != nil {
		t.Fatalf("ResolveRound failed: %v", err)
	}

	sess, _ = f.store.GetSession(ctx, "room-1")
	if sess.Players[1].Points != 0 {
		t.Errorf("Expected 0 points for Bob after rejection, got %d", sess.Players[1].Points)
	}
	stored, _ = f.store.GetGame(ctx, game.ID)
	if stored.CurrentRound != 3 {
		t.Errorf("Expected round 3, got %d", stored.CurrentRound)
	}

	// Round 3 is odd again.
	f.broadcaster.Events = nil
	if err := f.service.ResolveRound(ctx, game.ID, true); err != nil {
		t.Fatalf("ResolveRound failed: %v", err)
	}
	sess, _ = f.store.GetSession(ctx, "room-1")
	if sess.Players[0].Points != 20 {
		t.Errorf("Expected 20 points for Alice, got %d", sess.Players[0].Points)
	}
}

func TestGameService_ResolveRound_EndsAfterFinalRound(t *testing.T) {
	f := newGameFixture(20, 20)
	ctx := context.Background()
	f.seedSession(t, "room-1")
	f.seedQuestions("chill", 20)

	game, err := f.service.Start(ctx, "room-1", "chill")
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	for round := 1; round <= 20; round++ {
		if err := f.service.ResolveRound(ctx, game.ID, true); err != nil {
			t.Fatalf("ResolveRound %d failed: %v", round, err)
		}
	}

	if f.store.HasGame(game.ID) {
		t.Error("Game record should be deleted after the final round")
	}

	sess, _ := f.store.GetSession(ctx, "room-1")
	if sess.CurrentGameID != nil {
		t.Errorf("Expected nil currentGameId after the game ends, got %v", sess.CurrentGameID)
	}
	// 20 rounds alternating, all accepted: 10 odd rounds for Alice, 10 even for Bob.
	if sess.Players[0].Points != 100 || sess.Players[1].Points != 100 {
		t.Errorf("Expected 100/100 final score, got %d/%d", sess.Players[0].Points, sess.Players[1].Points)
	}

	names := f.broadcaster.EventNames()
	if len(names) == 0 || names[len(names)-1] != network.EventLocalEndGame {
		t.Errorf("Expected end-game as the final broadcast, got %v", names)
	}
}

func TestGameService_ResolveRound_ShortDrawEndsEarly(t *testing.T) {
	f := newGameFixture(20, 20)
	ctx := context.Background()
	f.seedSession(t, "room-1")
	f.seedQuestions("chill", 3)

	game, err := f.service.Start(ctx, "room-1", "chill")
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if len(game.Questions) != 3 {
		t.Fatalf("Expected a 3-question draw, got %d", len(game.Questions))
	}

	for round := 1; round <= 3; round++ {
		if err := f.service.ResolveRound(ctx, game.ID, false); err != nil {
			t.Fatalf("ResolveRound %d failed: %v", round, err)
		}
	}

	if f.store.HasGame(game.ID) {
		t.Error("Game should end once the drawn questions are exhausted")
	}
	sess, _ := f.store.GetSession(ctx, "room-1")
	if sess.CurrentGameID != nil {
		t.Error("Expected nil currentGameId after early end")
	}
}

func TestGameService_ResolveRound_GameNotFound(t *testing.T) {
	f := newGameFixture(20, 20)

	if err := f.service.ResolveRound(context.Background(), "no-such-game", true); err != persistence.ErrGameNotFound {
		t.Errorf("Expected ErrGameNotFound, got %v", err)
	}
}

func TestGameService_Report(t *testing.T) {
	f := newGameFixture(20, 20)
	ctx := context.Background()
	f.seedSession(t, "room-1")
	f.seedQuestions("chill", 20)

	game, err := f.service.Start(ctx, "room-1", "chill")
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	before, _ := f.store.GetGame(ctx, game.ID)
	if err := f.service.Report(ctx, game.ID, game.Questions[0].ID); err != nil {
		t.Fatalf("Report failed: %v", err)
	}
	after, _ := f.store.GetGame(ctx, game.ID)

	if before.CurrentRound != after.CurrentRound || len(before.Questions) != len(after.Questions) {
		t.Error("Report must not mutate the game record")
	}

	if err := f.service.Report(ctx, "no-such-game", "q1"); err != persistence.ErrGameNotFound {
		t.Errorf("Expected ErrGameNotFound, got %v", err)
	}
}

func TestGameService_TotalQuestions(t *testing.T) {
	f := newGameFixture(20, 20)
	f.seedQuestions("chill", 7)

	total, err := f.service.TotalQuestions(context.Background())
	if err != nil {
		t.Fatalf("TotalQuestions failed: %v", err)
	}
	if total != 7 {
		t.Errorf("Expected 7 questions, got %d", total)
	}
}
