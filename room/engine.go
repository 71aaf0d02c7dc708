// room/engine.go
//
// The round engine: game start, the round loop, card submission and
// resolution, abilities and game end. Every method here is called
// with actionMutex held (through HandleAction or another engine
// method), so the sequence mutate-then-broadcast is atomic per room.
package room

import (
	"github.com/JustSadSock/the-crew/game"
	"github.com/JustSadSock/the-crew/logger"
	"github.com/JustSadSock/the-crew/models"
	"github.com/JustSadSock/the-crew/network"
)

// startGame creates a fresh game state, assigns roles, saboteurs and
// objectives, and rolls straight into round 1. Restarting an active
// or ended game replaces the previous state.
func (r *Room) startGame(a *Action) error {
	if err := r.requireCaptain(a.Actor); err != nil {
		return err
	}

	ids := r.orderedPlayerIDs()

	r.playerMutex.Lock()
	r.round = 0
	r.captainChanged = false
	r.game = game.NewState(ids, r.settings.StartShip, r.settings.MaxRounds, r.rng)
	st := r.game
	r.playerMutex.Unlock()

	r.machine.ChangeState(&activeState{room: r})
	logger.Log.Infow("game started", "room", r.Code, "players", len(ids))

	r.broadcaster.BroadcastToRoom(r.Code, network.MsgTypeGameStarted, r.Project())

	// Personal objective and saboteur flag travel on the private
	// channel only, never in the broadcast payload.
	for id, p := range st.Players {
		r.broadcaster.SendToSession(id, network.MsgTypeObjective, map[string]interface{}{
			"objective": p.Objective,
			"saboteur":  p.Saboteur,
		})
	}

	r.startRound()
	return nil
}

// startRound advances the round counter, applies a random event, and
// unless that ended the game deals fresh hands and advances the
// ability economy.
func (r *Room) startRound() {
	r.timers.CancelTag(r.Code)

	r.playerMutex.Lock()
	r.round++
	round := r.round
	st := r.game
	r.playerMutex.Unlock()

	ev := st.DrawEvent()
	logger.Log.Infow("round started", "room", r.Code, "round", round, "event", ev.Name)

	if outcome := st.CheckEnd(round); outcome != game.OutcomeNone {
		r.finishGame(outcome)
		return
	}

	st.DealRound(round == 1)

	r.broadcaster.BroadcastToRoom(r.Code, network.MsgTypeNewRound, map[string]interface{}{
		"event": ev.Name,
		"state": r.Project(),
	})
	for id, p := range st.Players {
		r.broadcaster.SendToSession(id, network.MsgTypeDealCards, map[string]interface{}{
			"cards": p.Hand,
		})
	}
	r.broadcastState()

	r.scheduleBots(round)
}

// playCard marks a hand card as the player's pending offer. The
// captain privately learns which card was offered; the room only
// learns that the player offered one.
func (r *Room) playCard(a *Action) error {
	card, ok := r.game.PlayCard(a.Actor, a.CardIndex)
	if !ok {
		return ErrInvalidAction
	}

	r.broadcaster.BroadcastToRoom(r.Code, network.MsgTypeCardPlayed, map[string]interface{}{
		"player_id": a.Actor,
	})
	r.broadcaster.SendToSession(r.CaptainID(), network.MsgTypeCardOffered, map[string]interface{}{
		"player_id": a.Actor,
		"card_name": card.Name,
	})
	r.broadcastState()
	return nil
}

// captainSelect resolves the target's pending card. A target without
// a pending card is a silent no-op.
func (r *Room) captainSelect(a *Action) error {
	if err := r.requireCaptain(a.Actor); err != nil {
		return err
	}
	card, ok := r.game.ResolveCard(a.TargetID)
	if !ok {
		return nil
	}
	logger.Log.Infow("card resolved", "room", r.Code, "player", a.TargetID, "card", card.Name)

	if outcome := r.game.CheckEnd(r.Round()); outcome != game.OutcomeNone {
		r.finishGame(outcome)
		return nil
	}
	r.broadcastState()
	return nil
}

// useAbility attempts the role ability. Rejected attempts still
// broadcast so clients can react.
func (r *Room) useAbility(a *Action) error {
	used := r.game.UseAbility(a.Actor)

	r.broadcaster.BroadcastToRoom(r.Code, network.MsgTypeAbilityUsed, map[string]interface{}{
		"player_id": a.Actor,
		"used":      used,
		"state":     r.Project(),
	})

	if used {
		if outcome := r.game.CheckEnd(r.Round()); outcome != game.OutcomeNone {
			r.finishGame(outcome)
			return nil
		}
	}
	r.broadcastState()
	return nil
}

func (r *Room) nextRound(a *Action) error {
	if err := r.requireCaptain(a.Actor); err != nil {
		return err
	}
	r.startRound()
	return nil
}

// endGame lets any member force the end. The outcome still follows
// the end-condition policy; a game over neither threshold is
// recorded as abandoned.
func (r *Room) endGame(a *Action) error {
	outcome := r.game.CheckEnd(r.Round())
	if outcome == game.OutcomeNone {
		outcome = game.OutcomeAbandoned
	}
	r.finishGame(outcome)
	return nil
}

// finishGame evaluates objectives, announces the results and parks
// the room in the ended phase. Safe to reach only from the active
// state, which makes a second endGame a no-op.
func (r *Room) finishGame(outcome game.Outcome) {
	r.timers.CancelTag(r.Code)

	results := r.game.EvaluateObjectives(r.captainChanged)
	named := make([]map[string]interface{}, 0, len(results))
	for _, res := range results {
		named = append(named, map[string]interface{}{
			"player_id": res.PlayerID,
			"name":      r.playerName(res.PlayerID),
			"role":      res.Role,
			"objective": res.Objective,
			"saboteur":  res.Saboteur,
			"success":   res.Success,
		})
	}

	r.machine.ChangeState(&endedState{room: r})
	logger.Log.Infow("game ended", "room", r.Code, "outcome", outcome, "rounds", r.Round())

	r.broadcaster.BroadcastToRoom(r.Code, network.MsgTypeGameEnded, map[string]interface{}{
		"outcome": outcome,
		"rounds":  r.Round(),
		"results": named,
	})
	r.broadcastState()

	if r.recorder != nil {
		record := r.buildRecord(outcome, results)
		go r.recorder.SaveGame(record)
	}
}

func (r *Room) playerName(id string) string {
	r.playerMutex.RLock()
	defer r.playerMutex.RUnlock()
	if p, ok := r.players[id]; ok {
		return p.Name
	}
	return id
}

func (r *Room) buildRecord(outcome game.Outcome, results []game.ObjectiveResult) *models.GameRecord {
	record := &models.GameRecord{
		RoomCode: r.Code,
		Outcome:  string(outcome),
		Rounds:   r.Round(),
	}
	r.playerMutex.RLock()
	defer r.playerMutex.RUnlock()
	for _, res := range results {
		pr := models.PlayerResult{
			PlayerID:  res.PlayerID,
			Role:      string(res.Role),
			Objective: res.Objective,
			Saboteur:  res.Saboteur,
			Success:   res.Success,
		}
		if p, ok := r.players[res.PlayerID]; ok {
			pr.Name = p.Name
			pr.Bot = p.Bot
		}
		record.Players = append(record.Players, pr)
	}
	return record
}
