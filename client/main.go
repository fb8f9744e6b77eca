package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

type event struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// send formats and sends an event to the WebSocket server.
func send(c *websocket.Conn, name string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	frame, err := json.Marshal(event{Event: name, Data: data})
	if err != nil {
		return err
	}
	return c.WriteMessage(websocket.TextMessage, frame)
}

// createSession creates a session over the HTTP API and returns its room id.
func createSession(host, name string) (string, error) {
	body, _ := json.Marshal(map[string]string{"name": name, "type": "local"})
	resp, err := http.Post("http://"+host+"/api/sessions/new", "application/json", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var created struct {
		ID   string `json:"id"`
		Code string `json:"code"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return "", err
	}
	log.Printf("Created session %s (code %s)", created.ID, created.Code)
	return created.ID, nil
}

func main() {
	host := flag.String("host", "localhost:8080", "server host:port")
	roomID := flag.String("room", "", "room id to join (created when empty)")
	p1 := flag.String("p1", "Alice", "first player username")
	p2 := flag.String("p2", "Bob", "second player username")
	flag.Parse()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	room := *roomID
	if room == "" {
		created, err := createSession(*host, "Demo")
		if err != nil {
			log.Fatalf("Create session failed: %v", err)
		}
		room = created
	}

	u := url.URL{Scheme: "ws", Host: *host, Path: "/ws"}
	log.Printf("Connecting to %s", u.String())

	c, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("Dial failed: %v", err)
	}
	defer c.Close()

	done := make(chan struct{})
	gameID := make(chan string, 1)

	// Read loop
	go func() {
		defer close(done)
		for {
			_, message, err := c.ReadMessage()
			if err != nil {
				log.Println("Read error:", err)
				return
			}
			var ev event
			if err := json.Unmarshal(message, &ev); err != nil {
				log.Printf("Received invalid frame: %s", message)
				continue
			}
			log.Printf("<- RECV [%s]: %s", ev.Event, string(ev.Data))

			if ev.Event == "local:game-started" {
				var started struct {
					GameID string `json:"gameId"`
				}
				if err := json.Unmarshal(ev.Data, &started); err == nil {
					select {
					case gameID <- started.GameID:
					default:
					}
				}
			}
		}
	}()

	// Join the room with both players
	joinPayload := map[string]interface{}{
		"roomId":  room,
		"player1": map[string]string{"username": *p1},
		"player2": map[string]string{"username": *p2},
	}
	if err := send(c, "local:join-room", joinPayload); err != nil {
		log.Fatalf("Join failed: %v", err)
	}

	var currentGame string
	fmt.Println("Commands: start <mode> | yes | no | leave | quit")

	reader := bufio.NewReader(os.Stdin)
	for {
		select {
		case <-done:
			return
		case <-interrupt:
			log.Println("Interrupt received, closing connection.")
			err := c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			if err != nil {
				log.Println("Write close error:", err)
			}
			select {
			case <-done:
			case <-time.After(time.Second):
			}
			return
		case id := <-gameID:
			currentGame = id
		default:
			text, _ := reader.ReadString('\n')
			fields := strings.Fields(text)
			if len(fields) == 0 {
				continue
			}

			switch fields[0] {
			case "start":
				mode := "chill"
				if len(fields) > 1 {
					mode = fields[1]
				}
				send(c, "local:start-game", map[string]string{"mode": mode, "roomId": room})
			case "yes", "no":
				if currentGame == "" {
					select {
					case currentGame = <-gameID:
					default:
					}
				}
				if currentGame == "" {
					log.Println("No game in progress")
					continue
				}
				send(c, "local:answer", map[string]interface{}{
					"gameId":   currentGame,
					"accepted": fields[0] == "yes",
				})
			case "leave":
				send(c, "local:player-leave", map[string]string{"roomId": room})
			case "quit":
				return
			default:
				log.Printf("Unknown command: %s", fields[0])
			}
		}
	}
}
