package room

import (
	"math/rand"
	"os"
	"regexp"
	"testing"

	"github.com/JustSadSock/the-crew/game"
	"github.com/JustSadSock/the-crew/logger"
	"github.com/JustSadSock/the-crew/network"
	"github.com/JustSadSock/the-crew/timer"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

// sentMessage records one delivery made through the MockBroadcaster.
type sentMessage struct {
	Room    string // broadcast target, empty for private sends
	Session string // private target, empty for broadcasts
	MsgID   uint16
	Payload interface{}
}

// MockBroadcaster is a test double for the Broadcaster interface.
type MockBroadcaster struct {
	Messages []sentMessage
}

func (m *MockBroadcaster) BroadcastToRoom(code string, msgID uint16, v interface{}) error {
	m.Messages = append(m.Messages, sentMessage{Room: code, MsgID: msgID, Payload: v})
	return nil
}

func (m *MockBroadcaster) SendToSession(sessionID string, msgID uint16, v interface{}) error {
	m.Messages = append(m.Messages, sentMessage{Session: sessionID, MsgID: msgID, Payload: v})
	return nil
}

func (m *MockBroadcaster) count(msgID uint16) int {
	n := 0
	for _, msg := range m.Messages {
		if msg.MsgID == msgID {
			n++
		}
	}
	return n
}

func (m *MockBroadcaster) lastTo(sessionID string, msgID uint16) (sentMessage, bool) {
	for i := len(m.Messages) - 1; i >= 0; i-- {
		if m.Messages[i].Session == sessionID && m.Messages[i].MsgID == msgID {
			return m.Messages[i], true
		}
	}
	return sentMessage{}, false
}

var testSettings = Settings{
	MaxRounds: game.DefaultMaxRounds,
	StartShip: game.Ship{Temperature: 100, Oxygen: 100, Hull: 100, Morale: 100},
}

func newTestRoom(t *testing.T) (*Room, *MockBroadcaster) {
	t.Helper()
	mock := &MockBroadcaster{}
	r := NewRoom("TEST", "p1", "Captain", testSettings, mock, nil, timer.NewTimerManager(), rand.New(rand.NewSource(1)))
	return r, mock
}

func newTestManager(settings Settings) (*Manager, *MockBroadcaster) {
	mock := &MockBroadcaster{}
	m := NewManager(settings, timer.NewTimerManager())
	m.SetBroadcaster(mock)
	return m, mock
}

func TestManager_CreateRoom_CodeFormat(t *testing.T) {
	m, _ := newTestManager(testSettings)

	codePattern := regexp.MustCompile(`^[A-Z]{4}$`)
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		r := m.CreateRoom("creator", "Captain")
		if !codePattern.MatchString(r.Code) {
			t.Fatalf("Room code %q is not 4 uppercase letters", r.Code)
		}
		if seen[r.Code] {
			t.Fatalf("Room code %q issued twice among live rooms", r.Code)
		}
		seen[r.Code] = true
	}
}

func TestManager_CreateRoom_CreatorIsCaptain(t *testing.T) {
	m, _ := newTestManager(testSettings)
	r := m.CreateRoom("p1", "Captain")

	if r.CaptainID() != "p1" {
		t.Errorf("Expected creator to be captain, got %s", r.CaptainID())
	}
	if r.Phase() != "lobby" {
		t.Errorf("Expected new room in lobby phase, got %s", r.Phase())
	}

	retrieved, exists := m.GetRoom(r.Code)
	if !exists || retrieved != r {
		t.Fatal("GetRoom should return the created room instance")
	}
}

func TestManager_Leave_DestroysEmptyRoom(t *testing.T) {
	m, _ := newTestManager(testSettings)
	r := m.CreateRoom("p1", "Captain")

	m.Leave("p1")

	if m.Count() != 0 {
		t.Fatalf("Expected 0 rooms after last member left, got %d", m.Count())
	}
	if _, exists := m.GetRoom(r.Code); exists {
		t.Error("Destroyed room should not be found by code")
	}
}

func TestManager_Leave_PromotesOldestMember(t *testing.T) {
	m, _ := newTestManager(testSettings)
	r := m.CreateRoom("p1", "Captain")
	r.AddMember("p2", "Bob")
	r.AddMember("p3", "Carol")

	m.Leave("p1")

	if m.Count() != 1 {
		t.Fatalf("Room should survive while members remain, got %d rooms", m.Count())
	}
	if r.CaptainID() != "p2" {
		t.Errorf("Expected oldest remaining member p2 as captain, got %s", r.CaptainID())
	}
}

func TestRoom_StartGame_CaptainOnly(t *testing.T) {
	r, _ := newTestRoom(t)
	r.AddMember("p2", "Bob")

	if err := r.HandleAction(&Action{Type: network.MsgTypeStartGame, Actor: "p2"}); err != ErrNotCaptain {
		t.Fatalf("Expected ErrNotCaptain for non-captain start, got %v", err)
	}
	if r.Phase() != "lobby" || r.Round() != 0 {
		t.Fatal("Non-captain startGame must leave the room unchanged")
	}

	if err := r.HandleAction(&Action{Type: network.MsgTypeStartGame, Actor: "p1"}); err != nil {
		t.Fatalf("Captain startGame failed: %v", err)
	}
	if r.Phase() != "active" {
		t.Errorf("Expected active phase, got %s", r.Phase())
	}
	if r.Round() != 1 {
		t.Errorf("Expected round 1 after start, got %d", r.Round())
	}
}

func TestRoom_StartGame_DealsHandsAndObjectives(t *testing.T) {
	r, mock := newTestRoom(t)
	r.AddMember("p2", "Bob")

	if err := r.HandleAction(&Action{Type: network.MsgTypeStartGame, Actor: "p1"}); err != nil {
		t.Fatalf("startGame failed: %v", err)
	}

	for _, id := range []string{"p1", "p2"} {
		if len(r.game.Players[id].Hand) != game.HandSize {
			t.Errorf("Player %s should hold %d cards, got %d", id, game.HandSize, len(r.game.Players[id].Hand))
		}
		if _, ok := mock.lastTo(id, network.MsgTypeDealCards); !ok {
			t.Errorf("Player %s should receive a private hand", id)
		}
		if _, ok := mock.lastTo(id, network.MsgTypeObjective); !ok {
			t.Errorf("Player %s should receive a private objective", id)
		}
	}

	// gameStarted precedes the first newRound (round 0 -> 1).
	if mock.count(network.MsgTypeGameStarted) != 1 || mock.count(network.MsgTypeNewRound) != 1 {
		t.Fatal("Expected exactly one gameStarted and one newRound broadcast")
	}
}

func TestRoom_NextRound_AdvancesCounter(t *testing.T) {
	r, _ := newTestRoom(t)
	r.AddMember("p2", "Bob")
	r.HandleAction(&Action{Type: network.MsgTypeStartGame, Actor: "p1"})

	for i := 0; i < 3; i++ {
		if err := r.HandleAction(&Action{Type: network.MsgTypeNextRound, Actor: "p1"}); err != nil {
			t.Fatalf("nextRound failed: %v", err)
		}
	}
	if r.Round() != 4 {
		t.Errorf("Expected round 4 after three advances, got %d", r.Round())
	}

	// Non-captain advance is rejected without effect.
	if err := r.HandleAction(&Action{Type: network.MsgTypeNextRound, Actor: "p2"}); err != ErrNotCaptain {
		t.Fatalf("Expected ErrNotCaptain, got %v", err)
	}
	if r.Round() != 4 {
		t.Errorf("Round must not change on rejected advance, got %d", r.Round())
	}
}

func TestRoom_PlayCardAndCaptainSelect(t *testing.T) {
	r, mock := newTestRoom(t)
	r.AddMember("p2", "Bob")
	r.HandleAction(&Action{Type: network.MsgTypeStartGame, Actor: "p1"})

	offered := r.game.Players["p2"].Hand[0]
	if err := r.HandleAction(&Action{Type: network.MsgTypePlayCard, Actor: "p2", CardIndex: 0}); err != nil {
		t.Fatalf("playCard failed: %v", err)
	}
	if r.game.Players["p2"].ChosenCard == nil {
		t.Fatal("Expected a pending chosen card after playCard")
	}

	// The captain privately learns which card was offered.
	msg, ok := mock.lastTo("p1", network.MsgTypeCardOffered)
	if !ok {
		t.Fatal("Captain should receive cardOffered")
	}
	payload := msg.Payload.(map[string]interface{})
	if payload["card_name"] != offered.Name || payload["player_id"] != "p2" {
		t.Errorf("cardOffered payload mismatch: %v", payload)
	}

	// A second submission while one is pending is dropped.
	if err := r.HandleAction(&Action{Type: network.MsgTypePlayCard, Actor: "p2", CardIndex: 1}); err != ErrInvalidAction {
		t.Fatalf("Expected ErrInvalidAction for double submission, got %v", err)
	}

	want := r.game.Ship.Apply(offered.Effect)
	if err := r.HandleAction(&Action{Type: network.MsgTypeCaptainSelect, Actor: "p1", TargetID: "p2"}); err != nil {
		t.Fatalf("captainSelect failed: %v", err)
	}
	if r.game.Ship != want {
		t.Errorf("Ship should reflect the card effect exactly once: got %+v want %+v", r.game.Ship, want)
	}
	if r.game.Players["p2"].ChosenCard != nil {
		t.Error("Chosen card should be cleared after resolution")
	}
	if r.game.Players["p2"].AbilityCharge != game.ChargeGain {
		t.Errorf("Resolved player should gain %d charge, got %d", game.ChargeGain, r.game.Players["p2"].AbilityCharge)
	}

	// Selecting a player with nothing pending is a silent no-op.
	before := r.game.Ship
	if err := r.HandleAction(&Action{Type: network.MsgTypeCaptainSelect, Actor: "p1", TargetID: "p2"}); err != nil {
		t.Fatalf("No-op captainSelect should not error: %v", err)
	}
	if r.game.Ship != before {
		t.Error("No-op captainSelect must not touch the ship")
	}
}

func TestRoom_CaptainSelect_NonCaptainRejected(t *testing.T) {
	r, _ := newTestRoom(t)
	r.AddMember("p2", "Bob")
	r.HandleAction(&Action{Type: network.MsgTypeStartGame, Actor: "p1"})
	r.HandleAction(&Action{Type: network.MsgTypePlayCard, Actor: "p2", CardIndex: 0})

	before := r.game.Ship
	if err := r.HandleAction(&Action{Type: network.MsgTypeCaptainSelect, Actor: "p2", TargetID: "p2"}); err != ErrNotCaptain {
		t.Fatalf("Expected ErrNotCaptain, got %v", err)
	}
	if r.game.Ship != before || r.game.Players["p2"].ChosenCard == nil {
		t.Error("Rejected captainSelect must leave game state unchanged")
	}
}

func TestRoom_Coup_MajorityTransfersCaptaincy(t *testing.T) {
	r, mock := newTestRoom(t)
	r.AddMember("p2", "Bob")
	r.AddMember("p3", "Carol")

	r.HandleAction(&Action{Type: network.MsgTypeProposeCoup, Actor: "p2", Anonymous: true})
	if msg := mock.Messages[len(mock.Messages)-1]; msg.MsgID != network.MsgTypeVoteStarted {
		t.Fatal("proposeCoup should broadcast voteStarted")
	} else if msg.Payload.(map[string]interface{})["initiator"] != nil {
		t.Error("Anonymous coup must not reveal the initiator")
	}

	r.HandleAction(&Action{Type: network.MsgTypeVoteCoup, Actor: "p2", Vote: true})
	r.HandleAction(&Action{Type: network.MsgTypeVoteCoup, Actor: "p3", Vote: true})
	if mock.count(network.MsgTypeCoupResult) != 0 {
		t.Fatal("Tally must not resolve before every member voted")
	}

	r.HandleAction(&Action{Type: network.MsgTypeVoteCoup, Actor: "p1", Vote: false})
	if mock.count(network.MsgTypeCoupResult) != 1 {
		t.Fatal("Tally should resolve once votes equal membership")
	}
	if r.CaptainID() != "p2" {
		t.Errorf("2/3 yes votes should make p2 captain, got %s", r.CaptainID())
	}
}

func TestRoom_Coup_TieFails(t *testing.T) {
	r, _ := newTestRoom(t)
	r.AddMember("p2", "Bob")

	r.HandleAction(&Action{Type: network.MsgTypeProposeCoup, Actor: "p2"})
	r.HandleAction(&Action{Type: network.MsgTypeVoteCoup, Actor: "p2", Vote: true})
	r.HandleAction(&Action{Type: network.MsgTypeVoteCoup, Actor: "p1", Vote: false})

	if r.CaptainID() != "p1" {
		t.Errorf("1/2 yes is not a strict majority; captain should stay p1, got %s", r.CaptainID())
	}
}

func TestRoom_Coup_RevoteOverwrites(t *testing.T) {
	r, _ := newTestRoom(t)
	r.AddMember("p2", "Bob")

	r.HandleAction(&Action{Type: network.MsgTypeProposeCoup, Actor: "p2"})
	r.HandleAction(&Action{Type: network.MsgTypeVoteCoup, Actor: "p2", Vote: false})
	// Changing one's mind before the tally closes overwrites.
	r.HandleAction(&Action{Type: network.MsgTypeVoteCoup, Actor: "p2", Vote: true})
	r.HandleAction(&Action{Type: network.MsgTypeVoteCoup, Actor: "p1", Vote: true})

	if r.CaptainID() != "p2" {
		t.Errorf("Expected coup success after revote, got captain %s", r.CaptainID())
	}
}

func TestRoom_EndGame_IdempotentAndEvaluated(t *testing.T) {
	r, mock := newTestRoom(t)
	r.AddMember("p2", "Bob")
	r.HandleAction(&Action{Type: network.MsgTypeStartGame, Actor: "p1"})

	if err := r.HandleAction(&Action{Type: network.MsgTypeEndGame, Actor: "p2"}); err != nil {
		t.Fatalf("Any member may force the end: %v", err)
	}
	if r.Phase() != "ended" {
		t.Fatalf("Expected ended phase, got %s", r.Phase())
	}
	if mock.count(network.MsgTypeGameEnded) != 1 {
		t.Fatal("Expected one gameEnded broadcast")
	}

	// Second trigger after Ended is a no-op.
	if err := r.HandleAction(&Action{Type: network.MsgTypeEndGame, Actor: "p1"}); err != nil {
		t.Fatalf("Repeated endGame should be a silent no-op: %v", err)
	}
	if mock.count(network.MsgTypeGameEnded) != 1 {
		t.Error("Repeated endGame must not re-broadcast results")
	}
}

func TestRoom_LossWhenStatDepleted(t *testing.T) {
	r, mock := newTestRoom(t)
	r.AddMember("p2", "Bob")
	r.HandleAction(&Action{Type: network.MsgTypeStartGame, Actor: "p1"})

	// Drive the hull to zero through the ledger, then resolve any
	// stat-affecting action to trip the end check.
	r.game.Ship.Hull = 1
	r.game.Players["p2"].Hand[0] = game.Card{Name: "Hull Breach", Effect: game.Effect{Hull: -10}}
	r.HandleAction(&Action{Type: network.MsgTypePlayCard, Actor: "p2", CardIndex: 0})
	r.HandleAction(&Action{Type: network.MsgTypeCaptainSelect, Actor: "p1", TargetID: "p2"})

	if r.Phase() != "ended" {
		t.Fatalf("Depleted hull should end the game, phase is %s", r.Phase())
	}
	last := mock.Messages[len(mock.Messages)-1]
	for i := len(mock.Messages) - 1; i >= 0; i-- {
		if mock.Messages[i].MsgID == network.MsgTypeGameEnded {
			last = mock.Messages[i]
			break
		}
	}
	if outcome := last.Payload.(map[string]interface{})["outcome"]; outcome != game.OutcomeLoss {
		t.Errorf("Expected loss outcome, got %v", outcome)
	}
}

func TestRoom_WinAtRoundLimit(t *testing.T) {
	r, _ := newTestRoom(t)
	r.AddMember("p2", "Bob")
	r.HandleAction(&Action{Type: network.MsgTypeStartGame, Actor: "p1"})

	// Keep the ship topped up so random events cannot lose the game
	// while the rounds tick by.
	for r.Phase() == "active" {
		r.game.Ship = testSettings.StartShip
		if err := r.HandleAction(&Action{Type: network.MsgTypeNextRound, Actor: "p1"}); err != nil {
			t.Fatalf("nextRound failed: %v", err)
		}
		if r.Round() > game.DefaultMaxRounds {
			t.Fatal("Game should have ended at the round limit")
		}
	}
	if r.Round() != game.DefaultMaxRounds {
		t.Errorf("Expected game to end at round %d, got %d", game.DefaultMaxRounds, r.Round())
	}
}

func TestRoom_SpectatorJoinsMidGame(t *testing.T) {
	r, _ := newTestRoom(t)
	r.AddMember("p2", "Bob")
	r.HandleAction(&Action{Type: network.MsgTypeStartGame, Actor: "p1"})

	r.AddMember("p3", "Late")
	if _, ok := r.game.Players["p3"]; ok {
		t.Fatal("Mid-game joiner must not be dealt into the running game")
	}

	if err := r.HandleAction(&Action{Type: network.MsgTypePlayCard, Actor: "p3", CardIndex: 0}); err != ErrInvalidAction {
		t.Fatalf("Spectator playCard should be ErrInvalidAction, got %v", err)
	}

	// A restart deals the spectator in.
	r.HandleAction(&Action{Type: network.MsgTypeStartGame, Actor: "p1"})
	if _, ok := r.game.Players["p3"]; !ok {
		t.Error("Restart should include the former spectator")
	}
}

func TestRoom_Projection_RedactsSecrets(t *testing.T) {
	r, _ := newTestRoom(t)
	r.AddMember("p2", "Bob")
	r.HandleAction(&Action{Type: network.MsgTypeStartGame, Actor: "p1"})
	r.HandleAction(&Action{Type: network.MsgTypePlayCard, Actor: "p2", CardIndex: 0})

	view := r.Project()
	if view.Ship == nil {
		t.Fatal("Active game projection should include the ship")
	}
	if len(view.Players) != 2 {
		t.Fatalf("Expected 2 players in view, got %d", len(view.Players))
	}
	if view.Players[0].ID != "p1" || view.Players[1].ID != "p2" {
		t.Error("Projection players should be in join order")
	}
	if view.Players[0].Role == "" {
		t.Error("Roles are public once the game started")
	}
	if !view.Game["p2"].CardPending {
		t.Error("Pending submission should show as a boolean")
	}
	if view.Game["p1"].CardPending {
		t.Error("No submission should show as pending for p1")
	}
}

func TestRoom_BotLifecycle(t *testing.T) {
	offline := testSettings
	offline.Offline = true
	offline.BotCount = 2
	m, _ := newTestManager(offline)

	r := m.CreateRoom("p1", "Captain")
	if got := len(r.MemberIDs()); got != 3 {
		t.Fatalf("Expected 1 human + 2 bots, got %d members", got)
	}

	r.HandleAction(&Action{Type: network.MsgTypeStartGame, Actor: "p1"})

	// A stale scheduled action (older round) is dropped at execution.
	r.botPlay("bot1", 0)
	if r.game.Players["bot1"].ChosenCard != nil {
		t.Fatal("Stale bot action must be discarded")
	}

	// A current one re-enters the normal action path.
	r.botPlay("bot1", r.Round())
	if r.game.Players["bot1"].ChosenCard == nil {
		t.Fatal("Valid bot action should submit a card")
	}

	// The room dies with its last human, bots notwithstanding.
	m.Leave("p1")
	if m.Count() != 0 {
		t.Errorf("Bot-only room should be destroyed, %d rooms left", m.Count())
	}
}
