package room

import "github.com/JustSadSock/the-crew/models"

// Broadcaster delivers messages to everyone in a room or to a single
// session. Defined here to break the import cycle between room and
// broadcast.
type Broadcaster interface {
	BroadcastToRoom(code string, msgID uint16, v interface{}) error
	SendToSession(sessionID string, msgID uint16, v interface{}) error
}

// Recorder archives finished games. Implementations must not block
// the caller on failure; the room fires and forgets.
type Recorder interface {
	SaveGame(record *models.GameRecord)
}
