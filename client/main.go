// Demo client: connects, creates a room and lets you drive a game
// from stdin.
package main

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"log"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/gorilla/websocket"
)

const (
	MsgTypeCreateRoom    = 101
	MsgTypeJoinRoom      = 102
	MsgTypeStartGame     = 103
	MsgTypePlayCard      = 104
	MsgTypeCaptainSelect = 105
	MsgTypeUseAbility    = 106
	MsgTypeNextRound     = 109
	MsgTypeEndGame       = 110
	MsgTypeChatPublic    = 111
)

var roomCode string

// send formats and sends a message to the WebSocket server.
func send(c *websocket.Conn, msgID uint16, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	packet := make([]byte, 4+len(data))
	binary.BigEndian.PutUint16(packet[0:2], msgID)
	binary.BigEndian.PutUint16(packet[2:4], uint16(len(data)))
	copy(packet[4:], data)

	return c.WriteMessage(websocket.BinaryMessage, packet)
}

func main() {
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	u := url.URL{Scheme: "ws", Host: "localhost:3000", Path: "/ws"}
	log.Printf("Connecting to %s", u.String())

	c, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("Dial failed: %v", err)
	}
	defer c.Close()

	done := make(chan struct{})

	// Read loop
	go func() {
		defer close(done)
		for {
			_, message, err := c.ReadMessage()
			if err != nil {
				log.Println("Read error:", err)
				return
			}
			if len(message) < 4 {
				log.Printf("Received invalid packet of size %d", len(message))
				continue
			}
			msgID := binary.BigEndian.Uint16(message[0:2])
			data := message[4:]
			if msgID == MsgTypeCreateRoom {
				var resp map[string]string
				if json.Unmarshal(data, &resp) == nil {
					roomCode = resp["room_code"]
				}
			}
			log.Printf("<- RECV (ID: %d): %s", msgID, string(data))
		}
	}()

	log.Println("Sending Create Room request...")
	if err := send(c, MsgTypeCreateRoom, map[string]string{}); err != nil {
		log.Println("Write error:", err)
		return
	}

	log.Println("Commands: start | play <i> | pick <playerId> | ability | next | end | say <text>")

	reader := bufio.NewReader(os.Stdin)
	for {
		select {
		case <-done:
			return
		case <-interrupt:
			return
		default:
			line, err := reader.ReadString('\n')
			if err != nil {
				return
			}
			fields := strings.Fields(line)
			if len(fields) == 0 {
				continue
			}
			switch fields[0] {
			case "start":
				send(c, MsgTypeStartGame, map[string]string{"room_code": roomCode})
			case "play":
				idx := 0
				if len(fields) > 1 {
					idx, _ = strconv.Atoi(fields[1])
				}
				send(c, MsgTypePlayCard, map[string]interface{}{"room_code": roomCode, "card_index": idx})
			case "pick":
				if len(fields) > 1 {
					send(c, MsgTypeCaptainSelect, map[string]string{"room_code": roomCode, "target_player_id": fields[1]})
				}
			case "ability":
				send(c, MsgTypeUseAbility, map[string]string{"room_code": roomCode})
			case "next":
				send(c, MsgTypeNextRound, map[string]string{"room_code": roomCode})
			case "end":
				send(c, MsgTypeEndGame, map[string]string{"room_code": roomCode})
			case "say":
				send(c, MsgTypeChatPublic, map[string]string{"room_code": roomCode, "text": strings.Join(fields[1:], " ")})
			default:
				log.Printf("Unknown command: %s", fields[0])
			}
		}
	}
}
