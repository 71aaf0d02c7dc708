// room/projection.go
package room

import (
	"sort"

	"github.com/JustSadSock/the-crew/game"
)

// MemberView is a player as everyone in the room sees them. Role is
// only revealed once a game has started.
type MemberView struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Bot  bool   `json:"bot,omitempty"`
	Role string `json:"role,omitempty"`
}

// PlayerGameView is the public slice of a player's game state. The
// pending card is exposed as a boolean only; objective and saboteur
// flag never appear here.
type PlayerGameView struct {
	AbilityCharge int  `json:"ability_charge"`
	Cooldown      int  `json:"cooldown"`
	CardPending   bool `json:"card_pending"`
}

// View is the room-wide snapshot broadcast to every member. The
// payload is identical for all recipients; private data (hands,
// objectives) travels on per-session messages instead.
type View struct {
	RoomCode string                    `json:"room_code"`
	Players  []MemberView              `json:"players"`
	Captain  string                    `json:"captain"`
	Round    int                       `json:"round"`
	Phase    string                    `json:"phase"`
	Ship     *game.Ship                `json:"ship,omitempty"`
	Game     map[string]PlayerGameView `json:"game,omitempty"`
}

// Project builds the redacted snapshot of the room.
func (r *Room) Project() *View {
	r.playerMutex.RLock()
	defer r.playerMutex.RUnlock()

	view := &View{
		RoomCode: r.Code,
		Captain:  r.captainID,
		Round:    r.round,
		Phase:    r.machine.GetCurrentState().GetID(),
	}

	players := make([]*Player, 0, len(r.players))
	for _, p := range r.players {
		players = append(players, p)
	}
	sort.Slice(players, func(i, j int) bool { return players[i].Seq < players[j].Seq })

	for _, p := range players {
		mv := MemberView{ID: p.ID, Name: p.Name, Bot: p.Bot}
		if r.game != nil {
			if ps, ok := r.game.Players[p.ID]; ok {
				mv.Role = string(ps.Role)
			}
		}
		view.Players = append(view.Players, mv)
	}

	if r.game != nil && view.Phase != "lobby" {
		ship := r.game.Ship
		view.Ship = &ship
		view.Game = make(map[string]PlayerGameView, len(r.game.Players))
		for id, ps := range r.game.Players {
			view.Game[id] = PlayerGameView{
				AbilityCharge: ps.AbilityCharge,
				Cooldown:      ps.Cooldown,
				CardPending:   ps.ChosenCard != nil,
			}
		}
	}
	return view
}
