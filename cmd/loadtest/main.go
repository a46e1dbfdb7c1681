// Smoke/load client for a running wordduel server. Spins up N websocket
// clients: the first creates a room, the rest join it, the host starts the
// game and everyone submits random five-letter guesses each round.
//
// Usage: go run ./cmd/loadtest <number_of_clients> [ws_url]
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
)

const defaultWSURL = "ws://localhost:3000/ws"

var guesses = []string{"HELLO", "WORLD", "APPLE", "CRANE", "SLATE", "PIANO", "TIGER", "OCEAN"}

type serverEvent struct {
	Type    string   `json:"type"`
	Code    string   `json:"code,omitempty"`
	Round   int      `json:"round,omitempty"`
	Message string   `json:"message,omitempty"`
	Players []string `json:"players,omitempty"`
}

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: loadtest <number_of_clients> [ws_url]")
	}
	numClients, err := strconv.Atoi(os.Args[1])
	if err != nil || numClients < 1 {
		log.Fatal("Invalid number of clients:", os.Args[1])
	}
	wsURL := defaultWSURL
	if len(os.Args) >= 3 {
		wsURL = os.Args[2]
	}

	host := dial(wsURL)
	send(host, map[string]string{"type": "create_room", "playerName": "host"})
	code := waitFor(host, "room_created").Code
	fmt.Println("Created room:", code)

	for i := 1; i < numClients; i++ {
		name := fmt.Sprintf("player%d", i)
		go func() {
			conn := dial(wsURL)
			send(conn, map[string]string{"type": "join_room", "code": code, "playerName": name})
			waitFor(conn, "room_joined")
			fmt.Printf("%s joined\n", name)
			play(conn, name)
		}()
	}

	time.Sleep(time.Second) // let everyone join
	send(host, map[string]string{"type": "start_game", "room": code})
	play(host, "host")
}

func play(conn *websocket.Conn, name string) {
	for {
		ev, err := read(conn)
		if err != nil {
			log.Printf("%s: read error: %v", name, err)
			return
		}
		switch ev.Type {
		case "round_started":
			// jitter so submissions interleave across clients
			time.Sleep(time.Duration(100+rand.Intn(900)) * time.Millisecond)
			send(conn, map[string]string{"type": "submit_answer", "answer": guesses[rand.Intn(len(guesses))]})
		case "game_ended":
			fmt.Printf("%s: game over\n", name)
			return
		case "error":
			log.Printf("%s: server error: %s", name, ev.Message)
		}
	}
}

func dial(wsURL string) *websocket.Conn {
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		log.Fatal("WS connect error:", err)
	}
	return conn
}

func send(conn *websocket.Conn, msg any) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Fatal("marshal error:", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		log.Fatal("write error:", err)
	}
}

func read(conn *websocket.Conn) (serverEvent, error) {
	var ev serverEvent
	_, data, err := conn.ReadMessage()
	if err != nil {
		return ev, err
	}
	err = json.Unmarshal(data, &ev)
	return ev, err
}

func waitFor(conn *websocket.Conn, eventType string) serverEvent {
	for {
		ev, err := read(conn)
		if err != nil {
			log.Fatalf("waiting for %s: %v", eventType, err)
		}
		if ev.Type == eventType {
			return ev
		}
		if ev.Type == "error" {
			log.Fatalf("waiting for %s, got error: %s", eventType, ev.Message)
		}
	}
}
