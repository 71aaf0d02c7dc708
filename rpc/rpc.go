package rpc

import (
	"net"
	"net/rpc"

	"github.com/JustSadSock/the-crew/logger"
	"github.com/JustSadSock/the-crew/room"
	"github.com/JustSadSock/the-crew/services"
)

// Server manages the RPC listener.
type Server struct {
	listener net.Listener
	address  string
}

// NewServer creates a new RPC server.
func NewServer(addr string) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Server{
		listener: listener,
		address:  addr,
	}, nil
}

// Start begins listening for RPC requests.
func (s *Server) Start() {
	logger.Log.Infof("RPC server listening on %s", s.address)
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			// Check if the error is due to the listener being closed.
			if _, ok := err.(*net.OpError); ok {
				logger.Log.Info("RPC server listener closed.")
				return
			}
			logger.Log.Errorf("RPC server accept error: %v", err)
			continue
		}
		go rpc.ServeConn(conn)
	}
}

// Stop closes the RPC listener.
func (s *Server) Stop() {
	if s.listener != nil {
		logger.Log.Info("Stopping RPC server.")
		s.listener.Close()
	}
}

// AdminService exposes operational queries over net/rpc: live room
// inspection and archived player stats.
type AdminService struct {
	roomManager *room.Manager
	records     *services.RecordService
}

func NewAdminService(rm *room.Manager, records *services.RecordService) *AdminService {
	return &AdminService{roomManager: rm, records: records}
}

type Empty struct{}

type RoomCountReply struct {
	Count int
}

func (a *AdminService) RoomCount(args *Empty, reply *RoomCountReply) error {
	reply.Count = a.roomManager.Count()
	return nil
}

type ListRoomsReply struct {
	Rooms []room.Summary
}

func (a *AdminService) ListRooms(args *Empty, reply *ListRoomsReply) error {
	reply.Rooms = a.roomManager.Summaries()
	return nil
}

type PlayerStatsArgs struct {
	Name string
}

type PlayerStatsReply struct {
	TotalGames int
	Wins       int
	Losses     int
	Objectives int
}

func (a *AdminService) PlayerStats(args *PlayerStatsArgs, reply *PlayerStatsReply) error {
	stats, err := a.records.PlayerStats(args.Name)
	if err != nil {
		return err
	}
	reply.TotalGames = stats.TotalGames
	reply.Wins = stats.Wins
	reply.Losses = stats.Losses
	reply.Objectives = stats.Objectives
	return nil
}
