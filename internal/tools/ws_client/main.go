package main

import (
	"encoding/json"
	"flag"
	"log"
	"net/url"
	"os"
	"os/signal"
	"time"

	"github.com/gorilla/websocket"
)

type message struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type simulationEvent struct {
	Stations  int    `json:"stations"`
	WalshSize int    `json:"walshSize"`
	Duration  int64  `json:"duration"`
	Error     string `json:"error"`
	Result    *struct {
		OriginalData []string `json:"originalData"`
		Combined     []int    `json:"combined"`
	} `json:"result"`
}

func main() {
	addr := flag.String("addr", "localhost:3000", "http service address (host:port)")
	raw := flag.Bool("raw", false, "print raw messages")
	flag.Parse()

	u := url.URL{Scheme: "ws", Host: *addr, Path: "/ws"}
	log.Printf("connecting to %s", u.String())

	c, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("dial: %v", err)
	}
	defer func() { _ = c.Close() }()

	// Handle interrupt to exit cleanly
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)

	go func() {
		for {
			_, data, err := c.ReadMessage()
			if err != nil {
				log.Printf("read error: %v", err)
				return
			}
			if *raw {
				log.Printf("recv: %s", data)
				continue
			}
			printMessage(data)
		}
	}()

	<-sig
	log.Println("interrupt received, closing websocket")
	_ = c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	// give the close a moment
	time.Sleep(500 * time.Millisecond)
}

func printMessage(data []byte) {
	var msg message
	if err := json.Unmarshal(data, &msg); err != nil {
		log.Printf("recv (undecodable): %s", data)
		return
	}

	switch msg.Type {
	case "simulation":
		var ev simulationEvent
		if err := json.Unmarshal(msg.Data, &ev); err != nil || ev.Result == nil {
			log.Printf("simulation: %s", msg.Data)
			return
		}
		log.Printf("simulation: %d stations, %dx%d codes, %s, stations=%v combined=%v",
			ev.Stations, ev.WalshSize, ev.WalshSize, time.Duration(ev.Duration),
			ev.Result.OriginalData, ev.Result.Combined)
	case "simulation_failed":
		var ev simulationEvent
		_ = json.Unmarshal(msg.Data, &ev)
		log.Printf("simulation failed: %d stations: %s", ev.Stations, ev.Error)
	default:
		log.Printf("%s: %s", msg.Type, msg.Data)
	}
}
