// room/states.go
//
// Lifecycle states plugged into the state machine: lobby -> active
// -> ended, with startGame allowed from anywhere to (re)start.
package room

import (
	"github.com/JustSadSock/the-crew/network"
	"github.com/JustSadSock/the-crew/state"
)

type lobbyState struct {
	room *Room
}

func (s *lobbyState) OnEnter()      {}
func (s *lobbyState) OnExit()       {}
func (s *lobbyState) GetID() string { return "lobby" }

func (s *lobbyState) HandleAction(act state.Action) error {
	a := act.(*Action)
	if a.Type == network.MsgTypeStartGame {
		return s.room.startGame(a)
	}
	return s.room.handleShared(a)
}

type activeState struct {
	room *Room
}

func (s *activeState) OnEnter()      {}
func (s *activeState) OnExit()       {}
func (s *activeState) GetID() string { return "active" }

func (s *activeState) HandleAction(act state.Action) error {
	a := act.(*Action)
	switch a.Type {
	case network.MsgTypeStartGame:
		return s.room.startGame(a)
	case network.MsgTypePlayCard:
		return s.room.playCard(a)
	case network.MsgTypeCaptainSelect:
		return s.room.captainSelect(a)
	case network.MsgTypeUseAbility:
		return s.room.useAbility(a)
	case network.MsgTypeNextRound:
		return s.room.nextRound(a)
	case network.MsgTypeEndGame:
		return s.room.endGame(a)
	}
	return s.room.handleShared(a)
}

type endedState struct {
	room *Room
}

func (s *endedState) OnEnter()      {}
func (s *endedState) OnExit()       {}
func (s *endedState) GetID() string { return "ended" }

func (s *endedState) HandleAction(act state.Action) error {
	a := act.(*Action)
	switch a.Type {
	case network.MsgTypeStartGame:
		return s.room.startGame(a)
	case network.MsgTypeEndGame:
		// Already ended; idempotent.
		return nil
	}
	return s.room.handleShared(a)
}
