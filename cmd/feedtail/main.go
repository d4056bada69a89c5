// Command feedtail connects to a running server's change feed and prints
// every event. Useful for watching what the websocket fanout delivers.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"pawfeed/internal/notifications"

	"github.com/gorilla/websocket"
)

func main() {
	addr := flag.String("addr", "ws://localhost:8375/ws/feed", "change feed websocket URL")
	token := flag.String("token", "", "optional bearer token")
	flag.Parse()

	header := http.Header{}
	if *token != "" {
		header.Set("Authorization", "Bearer "+*token)
	}

	conn, _, err := websocket.DefaultDialer.Dial(*addr, header)
	if err != nil {
		log.Fatalf("Failed to connect to %s: %v", *addr, err)
	}
	defer conn.Close()
	log.Printf("Connected to %s", *addr)

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		conn.Close()
		os.Exit(0)
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			log.Fatalf("Read error: %v", err)
		}
		var event notifications.ChangeEvent
		if err := json.Unmarshal(raw, &event); err != nil {
			log.Printf("Skipping undecodable event: %v", err)
			continue
		}
		line := fmt.Sprintf("%s %s post=%s", event.At.Format("15:04:05"), event.Kind, event.PostID)
		if event.CommentID != "" {
			line += " comment=" + event.CommentID
		}
		fmt.Println(line)
	}
}
