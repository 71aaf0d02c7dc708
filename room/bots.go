// room/bots.go
package room

import (
	"fmt"
	"time"

	"github.com/JustSadSock/the-crew/game"
	"github.com/JustSadSock/the-crew/logger"
	"github.com/JustSadSock/the-crew/network"
)

// botStagger spaces simulated players' actions apart so they arrive
// like individual clients rather than a burst.
const botStagger = 500 * time.Millisecond

// SpawnBots fills the room with simulated players. Bot ids are
// synthetic and stable for the room's lifetime.
func (r *Room) SpawnBots(count int) {
	r.actionMutex.Lock()
	defer r.actionMutex.Unlock()

	for i := 1; i <= count; i++ {
		id := fmt.Sprintf("bot%d", i)
		r.addPlayer(id, fmt.Sprintf("Bot %d", i), true)
	}
	r.broadcastState()
}

// scheduleBots queues a staggered card play for every bot in the
// round. Tasks are tagged with the room code so a round or phase
// transition cancels anything still pending; a task that fires late
// anyway re-checks the round before acting. Called with actionMutex
// held.
func (r *Room) scheduleBots(round int) {
	if !r.settings.Offline {
		return
	}

	r.playerMutex.RLock()
	bots := make([]*Player, 0)
	for _, p := range r.players {
		if p.Bot {
			bots = append(bots, p)
		}
	}
	r.playerMutex.RUnlock()

	for idx, bot := range bots {
		botID := bot.ID
		delay := botStagger * time.Duration(idx+1)
		r.timers.AddTaggedTimer(delay, r.Code, func() {
			r.botPlay(botID, round)
		})
	}
}

// botPlay re-enters the normal action path as if the bot were a
// connected client. The scheduled round may be stale by the time the
// task runs, so validity is re-checked under the action lock.
func (r *Room) botPlay(botID string, round int) {
	r.actionMutex.Lock()
	defer r.actionMutex.Unlock()

	if r.machine.GetCurrentState().GetID() != "active" || r.Round() != round {
		return
	}

	a := &Action{
		Type:      network.MsgTypePlayCard,
		Actor:     botID,
		CardIndex: r.rng.Intn(game.HandSize),
	}
	if err := r.machine.GetCurrentState().HandleAction(a); err != nil {
		logger.Log.Debugw("bot action dropped", "room", r.Code, "bot", botID, "err", err)
	}
}
