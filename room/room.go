// room/room.go
package room

import (
	"errors"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/JustSadSock/the-crew/game"
	"github.com/JustSadSock/the-crew/logger"
	"github.com/JustSadSock/the-crew/network"
	"github.com/JustSadSock/the-crew/state"
	"github.com/JustSadSock/the-crew/timer"
)

var (
	ErrNotCaptain    = errors.New("action requires captain authority")
	ErrNotMember     = errors.New("actor is not a room member")
	ErrInvalidAction = errors.New("action not valid in current phase")
)

// Settings are the game tunables consumed at room construction time.
type Settings struct {
	Offline   bool
	BotCount  int
	MaxRounds int
	StartShip game.Ship
}

// Player is a room member. Seq records join order; it drives role
// assignment and captain promotion on departure.
type Player struct {
	ID   string
	Name string
	Bot  bool
	Seq  int
}

// Room is one isolated game session. All inbound actions for a room
// run to completion (broadcasts included) under actionMutex, so no
// two mutations of the same room ever interleave. playerMutex guards
// the membership map for readers outside the action path (broadcast
// fan-out, admin RPC).
type Room struct {
	Code      string
	CreatedAt time.Time

	players        map[string]*Player
	captainID      string
	round          int
	votes          map[string]bool
	coupInitiator  string
	captainChanged bool
	game           *game.State
	joinSeq        int

	machine     state.Machine
	settings    Settings
	broadcaster Broadcaster
	recorder    Recorder
	timers      *timer.TimerManager
	rng         *rand.Rand

	actionMutex sync.Mutex
	playerMutex sync.RWMutex
}

// NewRoom creates a room with the creator as captain and sole member.
func NewRoom(code string, creatorID, creatorName string, settings Settings, broadcaster Broadcaster, recorder Recorder, timers *timer.TimerManager, rng *rand.Rand) *Room {
	r := &Room{
		Code:        code,
		CreatedAt:   time.Now(),
		players:     make(map[string]*Player),
		votes:       make(map[string]bool),
		captainID:   creatorID,
		settings:    settings,
		broadcaster: broadcaster,
		recorder:    recorder,
		timers:      timers,
		rng:         rng,
	}
	r.machine = state.NewBaseStateMachine(&lobbyState{room: r})
	r.addPlayer(creatorID, creatorName, false)
	return r
}

// HandleAction runs one inbound action through the current phase
// state. This is the single entry point for humans and bots alike.
func (r *Room) HandleAction(a *Action) error {
	r.actionMutex.Lock()
	defer r.actionMutex.Unlock()

	if !r.isMember(a.Actor) {
		return ErrNotMember
	}
	return r.machine.GetCurrentState().HandleAction(a)
}

// --- membership ---

func (r *Room) addPlayer(id, name string, bot bool) {
	r.playerMutex.Lock()
	defer r.playerMutex.Unlock()
	r.joinSeq++
	r.players[id] = &Player{ID: id, Name: name, Bot: bot, Seq: r.joinSeq}
}

// AddMember joins a session to the room and broadcasts the updated
// projection. Joining mid-game is allowed; the newcomer spectates
// until the next start.
func (r *Room) AddMember(id, name string) {
	r.actionMutex.Lock()
	defer r.actionMutex.Unlock()

	r.addPlayer(id, name, false)
	r.broadcastState()
}

// RemoveMember takes a member out of the room and returns the number
// of human members left. Bots never count towards keeping a room
// alive, so a room whose last human leaves reports zero and the
// manager destroys it. A departing captain hands the role to the
// oldest remaining member.
func (r *Room) RemoveMember(id string) int {
	r.actionMutex.Lock()
	defer r.actionMutex.Unlock()

	r.playerMutex.Lock()
	if _, ok := r.players[id]; !ok {
		remaining := r.humanCountLocked()
		r.playerMutex.Unlock()
		return remaining
	}
	delete(r.players, id)
	delete(r.votes, id)
	if r.coupInitiator == id {
		r.coupInitiator = ""
		r.votes = make(map[string]bool)
	}
	remaining := r.humanCountLocked()
	if r.captainID == id && len(r.players) > 0 {
		r.captainID = r.oldestPlayerLocked()
	}
	r.playerMutex.Unlock()

	if remaining == 0 {
		r.timers.CancelTag(r.Code)
		return 0
	}

	// A shrunken membership can complete a pending tally.
	r.maybeResolveCoup()
	r.broadcastState()
	return remaining
}

func (r *Room) humanCountLocked() int {
	n := 0
	for _, p := range r.players {
		if !p.Bot {
			n++
		}
	}
	return n
}

func (r *Room) oldestPlayerLocked() string {
	best := ""
	bestSeq := int(^uint(0) >> 1)
	for id, p := range r.players {
		if p.Seq < bestSeq {
			best, bestSeq = id, p.Seq
		}
	}
	return best
}

func (r *Room) isMember(id string) bool {
	r.playerMutex.RLock()
	defer r.playerMutex.RUnlock()
	_, ok := r.players[id]
	return ok
}

// MemberIDs returns the current member ids (unordered, thread-safe).
func (r *Room) MemberIDs() []string {
	r.playerMutex.RLock()
	defer r.playerMutex.RUnlock()
	ids := make([]string, 0, len(r.players))
	for id := range r.players {
		ids = append(ids, id)
	}
	return ids
}

// orderedPlayerIDs returns member ids by join order.
func (r *Room) orderedPlayerIDs() []string {
	r.playerMutex.RLock()
	defer r.playerMutex.RUnlock()
	players := make([]*Player, 0, len(r.players))
	for _, p := range r.players {
		players = append(players, p)
	}
	sort.Slice(players, func(i, j int) bool { return players[i].Seq < players[j].Seq })
	ids := make([]string, len(players))
	for i, p := range players {
		ids[i] = p.ID
	}
	return ids
}

func (r *Room) memberCount() int {
	r.playerMutex.RLock()
	defer r.playerMutex.RUnlock()
	return len(r.players)
}

// CaptainID returns the current captain (thread-safe).
func (r *Room) CaptainID() string {
	r.playerMutex.RLock()
	defer r.playerMutex.RUnlock()
	return r.captainID
}

// Round returns the current round counter (thread-safe).
func (r *Room) Round() int {
	r.playerMutex.RLock()
	defer r.playerMutex.RUnlock()
	return r.round
}

// Phase returns the current lifecycle phase id.
func (r *Room) Phase() string {
	return r.machine.GetCurrentState().GetID()
}

// --- coup subsystem ---

func (r *Room) proposeCoup(a *Action) error {
	r.playerMutex.Lock()
	r.votes = make(map[string]bool)
	r.coupInitiator = a.Actor
	r.playerMutex.Unlock()

	payload := map[string]interface{}{"initiator": nil}
	if !a.Anonymous {
		payload["initiator"] = a.Actor
	}
	r.broadcaster.BroadcastToRoom(r.Code, network.MsgTypeVoteStarted, payload)
	return nil
}

func (r *Room) voteCoup(a *Action) error {
	r.playerMutex.Lock()
	if r.coupInitiator == "" {
		r.playerMutex.Unlock()
		return ErrInvalidAction
	}
	r.votes[a.Actor] = a.Vote
	r.playerMutex.Unlock()

	r.maybeResolveCoup()
	return nil
}

// maybeResolveCoup tallies once every current member has voted:
// strictly more than half in favor transfers the captaincy to the
// initiator. The result is broadcast either way.
func (r *Room) maybeResolveCoup() {
	r.playerMutex.Lock()
	if r.coupInitiator == "" || len(r.votes) < len(r.players) {
		r.playerMutex.Unlock()
		return
	}

	yes := 0
	for _, v := range r.votes {
		if v {
			yes++
		}
	}
	result := yes*2 > len(r.players)
	if result {
		if r.coupInitiator != r.captainID {
			r.captainChanged = true
		}
		r.captainID = r.coupInitiator
	}
	captain := r.captainID
	r.coupInitiator = ""
	r.votes = make(map[string]bool)
	r.playerMutex.Unlock()

	logger.Log.Infow("coup resolved", "room", r.Code, "result", result, "captain", captain)
	r.broadcaster.BroadcastToRoom(r.Code, network.MsgTypeCoupResult, map[string]interface{}{
		"result":  result,
		"captain": captain,
	})
	r.broadcastState()
}

// --- chat ---

func (r *Room) chatPublic(a *Action) error {
	r.broadcaster.BroadcastToRoom(r.Code, network.MsgTypeChatMessage, map[string]interface{}{
		"from":    a.Actor,
		"text":    a.Text,
		"private": false,
	})
	return nil
}

// chatPrivate relays to the recipient and echoes to the sender. The
// captain learns who talked to whom, never what was said.
func (r *Room) chatPrivate(a *Action) error {
	if !r.isMember(a.To) {
		return ErrInvalidAction
	}
	r.broadcaster.SendToSession(a.To, network.MsgTypeChatMessage, map[string]interface{}{
		"from":    a.Actor,
		"text":    a.Text,
		"private": true,
	})
	r.broadcaster.SendToSession(a.Actor, network.MsgTypeChatMessage, map[string]interface{}{
		"from":    a.Actor,
		"to":      a.To,
		"text":    a.Text,
		"private": true,
	})
	captain := r.CaptainID()
	if captain != a.Actor && captain != a.To {
		r.broadcaster.SendToSession(captain, network.MsgTypeChatNotice, map[string]interface{}{
			"from": a.Actor,
			"to":   a.To,
		})
	}
	return nil
}

// handleShared covers the actions legal in every phase.
func (r *Room) handleShared(a *Action) error {
	switch a.Type {
	case network.MsgTypeProposeCoup:
		return r.proposeCoup(a)
	case network.MsgTypeVoteCoup:
		return r.voteCoup(a)
	case network.MsgTypeChatPublic:
		return r.chatPublic(a)
	case network.MsgTypeChatPrivate:
		return r.chatPrivate(a)
	}
	return ErrInvalidAction
}

func (r *Room) requireCaptain(actor string) error {
	if r.CaptainID() != actor {
		return ErrNotCaptain
	}
	return nil
}

func (r *Room) broadcastState() {
	r.broadcaster.BroadcastToRoom(r.Code, network.MsgTypeStateUpdate, r.Project())
}
