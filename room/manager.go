// room/manager.go
package room

import (
	"math/rand"
	"sync"
	"time"

	"github.com/JustSadSock/the-crew/logger"
	"github.com/JustSadSock/the-crew/timer"
)

const (
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	codeLength   = 4
)

// Manager owns the mapping from room code to live room. Rooms exist
// from creation until their last member leaves; an empty room is
// destroyed synchronously.
type Manager struct {
	rooms    map[string]*Room
	mutex    sync.RWMutex
	settings Settings
	timers   *timer.TimerManager
	rng      *rand.Rand

	broadcaster Broadcaster
	recorder    Recorder
}

func NewManager(settings Settings, timers *timer.TimerManager) *Manager {
	return &Manager{
		rooms:    make(map[string]*Room),
		settings: settings,
		timers:   timers,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// SetBroadcaster wires the delivery fabric. Must be called before the
// first room is created; split from the constructor because the
// broadcaster itself needs the manager.
func (m *Manager) SetBroadcaster(b Broadcaster) {
	m.broadcaster = b
}

// SetRecorder wires the optional game archive.
func (m *Manager) SetRecorder(rec Recorder) {
	m.recorder = rec
}

// CreateRoom makes a room with a fresh code and the creator as
// captain. In offline mode the room is immediately filled with bots.
func (m *Manager) CreateRoom(creatorID, creatorName string) *Room {
	m.mutex.Lock()
	code := m.generateCode()
	room := NewRoom(code, creatorID, creatorName, m.settings, m.broadcaster, m.recorder, m.timers, rand.New(rand.NewSource(m.rng.Int63())))
	m.rooms[code] = room
	m.mutex.Unlock()

	logger.Log.Infow("room created", "room", code, "captain", creatorID)

	if m.settings.Offline {
		room.SpawnBots(m.settings.BotCount)
	}
	return room
}

// generateCode rejection-samples 4 uppercase letters against the
// live rooms. 26^4 codes make exhaustion a non-concern. Caller holds
// the mutex.
func (m *Manager) generateCode() string {
	buf := make([]byte, codeLength)
	for {
		for i := range buf {
			buf[i] = codeAlphabet[m.rng.Intn(len(codeAlphabet))]
		}
		code := string(buf)
		if _, taken := m.rooms[code]; !taken {
			return code
		}
	}
}

func (m *Manager) GetRoom(code string) (*Room, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	room, exists := m.rooms[code]
	return room, exists
}

// Leave removes the session from every room it belongs to (at most
// one by design, but scanned defensively) and destroys rooms left
// empty.
func (m *Manager) Leave(sessionID string) {
	m.mutex.Lock()
	candidates := make([]*Room, 0, 1)
	for _, room := range m.rooms {
		candidates = append(candidates, room)
	}
	m.mutex.Unlock()

	for _, room := range candidates {
		if !room.isMember(sessionID) {
			continue
		}
		if room.RemoveMember(sessionID) == 0 {
			m.mutex.Lock()
			delete(m.rooms, room.Code)
			m.mutex.Unlock()
			logger.Log.Infow("room destroyed", "room", room.Code)
		}
	}
}

func (m *Manager) Count() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.rooms)
}

// Summary is a lightweight room descriptor for operational tooling.
type Summary struct {
	Code    string
	Phase   string
	Members int
	Round   int
}

// Summaries lists the live rooms for the admin RPC.
func (m *Manager) Summaries() []Summary {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	out := make([]Summary, 0, len(m.rooms))
	for _, room := range m.rooms {
		out = append(out, Summary{
			Code:    room.Code,
			Phase:   room.Phase(),
			Members: room.memberCount(),
			Round:   room.Round(),
		})
	}
	return out
}
