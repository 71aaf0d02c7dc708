// broadcast/broadcast.go
package broadcast

import (
	"errors"

	"github.com/JustSadSock/the-crew/room"
	"github.com/JustSadSock/the-crew/session"
)

var (
	ErrRoomNotFound = errors.New("room not found")
)

// RoomBroadcaster fans a message out to every connection joined to a
// room code, and delivers the private per-player payloads (hands,
// objectives, captain notices). Bot members have no session and are
// skipped silently.
type RoomBroadcaster struct {
	roomManager    *room.Manager
	sessionManager *session.Manager
}

func NewRoomBroadcaster(roomManager *room.Manager, sessionManager *session.Manager) *RoomBroadcaster {
	return &RoomBroadcaster{
		roomManager:    roomManager,
		sessionManager: sessionManager,
	}
}

func (b *RoomBroadcaster) BroadcastToRoom(code string, msgID uint16, v interface{}) error {
	r, exists := b.roomManager.GetRoom(code)
	if !exists {
		return ErrRoomNotFound
	}

	for _, id := range r.MemberIDs() {
		s, ok := b.sessionManager.Get(id)
		if !ok {
			continue
		}
		if err := s.SendJSON(msgID, v); err != nil {
			// Send errors surface as read failures on the
			// connection's own loop; nothing to do here.
			continue
		}
	}
	return nil
}

func (b *RoomBroadcaster) SendToSession(sessionID string, msgID uint16, v interface{}) error {
	s, ok := b.sessionManager.Get(sessionID)
	if !ok {
		return nil
	}
	return s.SendJSON(msgID, v)
}
