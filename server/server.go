package server

import (
	"encoding/json"
	"net/http"
	"net/rpc"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/JustSadSock/the-crew/broadcast"
	"github.com/JustSadSock/the-crew/config"
	"github.com/JustSadSock/the-crew/logger"
	"github.com/JustSadSock/the-crew/monitor"
	"github.com/JustSadSock/the-crew/network"
	"github.com/JustSadSock/the-crew/persistence"
	"github.com/JustSadSock/the-crew/room"
	gameserver_rpc "github.com/JustSadSock/the-crew/rpc"
	"github.com/JustSadSock/the-crew/services"
	"github.com/JustSadSock/the-crew/session"
	"github.com/JustSadSock/the-crew/timer"
)

type GameServer struct {
	addr           string
	upgrader       websocket.Upgrader
	roomManager    *room.Manager
	sessionManager *session.Manager
	broadcaster    room.Broadcaster
	recordService  *services.RecordService
	rpcServer      *gameserver_rpc.Server
	mon            *monitor.Monitor
	monitorAddr    string
	shutdownChan   chan struct{}
}

func NewGameServer(cfg *config.Config, db persistence.Database) *GameServer {
	settings := room.Settings{
		Offline:   cfg.Game.Offline,
		BotCount:  cfg.Game.BotCount,
		MaxRounds: cfg.Game.MaxRounds,
	}
	settings.StartShip.Temperature = cfg.Game.StartTemperature
	settings.StartShip.Oxygen = cfg.Game.StartOxygen
	settings.StartShip.Hull = cfg.Game.StartHull
	settings.StartShip.Morale = cfg.Game.StartMorale

	s := &GameServer{
		addr:           cfg.Server.HTTPAddress,
		roomManager:    room.NewManager(settings, timer.NewTimerManager()),
		sessionManager: session.NewManager(),
		mon:            monitor.NewMonitor(cfg.Monitor.Namespace),
		monitorAddr:    cfg.Monitor.Address,
		shutdownChan:   make(chan struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // 允许所有跨域请求
			},
		},
	}

	// 初始化广播器
	s.broadcaster = broadcast.NewRoomBroadcaster(s.roomManager, s.sessionManager)
	s.roomManager.SetBroadcaster(s.broadcaster)

	// 游戏归档（数据库可选）
	s.recordService = services.NewRecordService(db, s.mon)
	s.roomManager.SetRecorder(s.recordService)

	// 初始化RPC服务器
	rpcServer, err := gameserver_rpc.NewServer(cfg.Server.RPCAddress)
	if err != nil {
		logger.Log.Fatalf("Failed to create RPC server: %v", err)
	}
	s.rpcServer = rpcServer

	// 注册RPC服务
	adminService := gameserver_rpc.NewAdminService(s.roomManager, s.recordService)
	rpc.Register(adminService)

	return s
}

func (s *GameServer) Start() error {
	go s.rpcServer.Start()
	s.mon.StartServer(s.monitorAddr)

	http.HandleFunc("/ws", s.handleWebSocket)
	logger.Log.Infof("Game server listening on %s", s.addr)
	return http.ListenAndServe(s.addr, nil)
}

func (s *GameServer) Shutdown() {
	close(s.shutdownChan)
	s.rpcServer.Stop()
}

func (s *GameServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Infof("Failed to upgrade connection: %v", err)
		return
	}
	s.handleConnection(conn)
}

func (s *GameServer) handleConnection(conn *websocket.Conn) {
	wsConn := network.NewWSConnection(conn)
	sess := session.NewSession(uuid.New().String(), wsConn)
	s.sessionManager.Add(sess)
	s.mon.IncOnlinePlayers()

	logger.Log.Infof("New connection from %s, session ID: %s", wsConn.RemoteAddr(), sess.GetID())

	defer func() {
		logger.Log.Infof("Connection closed from %s, session ID: %s", wsConn.RemoteAddr(), sess.GetID())
		s.sessionManager.Remove(sess.GetID())
		s.roomManager.Leave(sess.GetID())
		s.mon.DecOnlinePlayers()
		s.mon.SetActiveRooms(s.roomManager.Count())
		wsConn.Close()
	}()

	for {
		select {
		case <-s.shutdownChan:
			return
		default:
			packet, err := wsConn.ReadPacket()
			if err != nil {
				return
			}
			s.handlePacket(sess, packet)
		}
	}
}

// Inbound payloads. Every room-scoped request carries the room code.
type joinRoomRequest struct {
	RoomCode string `json:"room_code"`
	Name     string `json:"name"`
}

type roomRequest struct {
	RoomCode string `json:"room_code"`
}

type playCardRequest struct {
	RoomCode  string `json:"room_code"`
	CardIndex int    `json:"card_index"`
}

type captainSelectRequest struct {
	RoomCode       string `json:"room_code"`
	TargetPlayerID string `json:"target_player_id"`
}

type proposeCoupRequest struct {
	RoomCode  string `json:"room_code"`
	Anonymous bool   `json:"anonymous"`
}

type voteCoupRequest struct {
	RoomCode string `json:"room_code"`
	Vote     bool   `json:"vote"`
}

type chatRequest struct {
	RoomCode string `json:"room_code"`
	Text     string `json:"text"`
	To       string `json:"to,omitempty"`
}

func (s *GameServer) handlePacket(sess *session.Session, packet *network.Packet) {
	start := time.Now()
	s.mon.IncMessagesReceived()
	defer func() {
		s.mon.ObserveMessageLatency(time.Since(start))
	}()

	switch packet.MsgID {
	case network.MsgTypeHeartbeat:
		sess.LastActive = time.Now()
	case network.MsgTypeCreateRoom:
		s.handleCreateRoom(sess)
	case network.MsgTypeJoinRoom:
		s.handleJoinRoom(sess, packet)
	default:
		s.handleRoomAction(sess, packet)
	}
}

func (s *GameServer) handleCreateRoom(sess *session.Session) {
	r := s.roomManager.CreateRoom(sess.GetID(), "Captain")
	sess.RoomCode = r.Code
	s.mon.SetActiveRooms(s.roomManager.Count())

	logger.Log.Infof("Session %s created room %s", sess.GetID(), r.Code)

	sess.SendJSON(network.MsgTypeCreateRoom, map[string]string{"room_code": r.Code})
	s.broadcaster.BroadcastToRoom(r.Code, network.MsgTypeStateUpdate, r.Project())
}

func (s *GameServer) handleJoinRoom(sess *session.Session, packet *network.Packet) {
	var req joinRoomRequest
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		return
	}

	r, exists := s.roomManager.GetRoom(req.RoomCode)
	if !exists {
		sess.SendJSON(network.MsgTypeJoinRoom, map[string]interface{}{
			"success": false,
			"error":   "Room not found",
		})
		return
	}

	sess.SetName(req.Name)
	sess.RoomCode = r.Code
	r.AddMember(sess.GetID(), req.Name)
	logger.Log.Infof("Session %s joined room %s", sess.GetID(), r.Code)

	sess.SendJSON(network.MsgTypeJoinRoom, map[string]interface{}{"success": true})
}

// handleRoomAction decodes a room-scoped request and runs it through
// the room's state machine. Unauthorized and phase-invalid actions
// are dropped without a client-visible error.
func (s *GameServer) handleRoomAction(sess *session.Session, packet *network.Packet) {
	action := &room.Action{Type: packet.MsgID, Actor: sess.GetID()}
	var code string

	switch packet.MsgID {
	case network.MsgTypeStartGame, network.MsgTypeNextRound, network.MsgTypeUseAbility, network.MsgTypeEndGame:
		var req roomRequest
		if err := json.Unmarshal(packet.Data, &req); err != nil {
			return
		}
		code = req.RoomCode
	case network.MsgTypePlayCard:
		var req playCardRequest
		if err := json.Unmarshal(packet.Data, &req); err != nil {
			return
		}
		code = req.RoomCode
		action.CardIndex = req.CardIndex
	case network.MsgTypeCaptainSelect:
		var req captainSelectRequest
		if err := json.Unmarshal(packet.Data, &req); err != nil {
			return
		}
		code = req.RoomCode
		action.TargetID = req.TargetPlayerID
	case network.MsgTypeProposeCoup:
		var req proposeCoupRequest
		if err := json.Unmarshal(packet.Data, &req); err != nil {
			return
		}
		code = req.RoomCode
		action.Anonymous = req.Anonymous
	case network.MsgTypeVoteCoup:
		var req voteCoupRequest
		if err := json.Unmarshal(packet.Data, &req); err != nil {
			return
		}
		code = req.RoomCode
		action.Vote = req.Vote
	case network.MsgTypeChatPublic, network.MsgTypeChatPrivate:
		var req chatRequest
		if err := json.Unmarshal(packet.Data, &req); err != nil {
			return
		}
		code = req.RoomCode
		action.Text = req.Text
		action.To = req.To
	default:
		logger.Log.Infof("Unknown message type: %d", packet.MsgID)
		return
	}

	r, exists := s.roomManager.GetRoom(code)
	if !exists {
		logger.Log.Debugf("Room %s not found for session %s", code, sess.GetID())
		return
	}

	if err := r.HandleAction(action); err != nil {
		logger.Log.Debugw("action dropped", "room", code, "session", sess.GetID(), "type", packet.MsgID, "err", err)
	}
}
