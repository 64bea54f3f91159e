package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gorilla/websocket"
)

// queryFrame matches the server suggest frame
type queryFrame struct {
	Query string `json:"query"`
}

// suggestion matches the card fields worth printing on a terminal
type suggestion struct {
	Kind       string `json:"kind"`
	ID         int    `json:"id"`
	Title      string `json:"title"`
	Year       int    `json:"year"`
	DetailPath string `json:"detail_path"`
}

type suggestReply struct {
	Query       string       `json:"query"`
	Suggestions []suggestion `json:"suggestions"`
}

func main() {
	addr := flag.String("addr", "localhost:8080", "api server host:port")
	tab := flag.String("tab", "anime", "catalog tab: anime, manga, movies, tv")
	flag.Parse()

	wsURL := url.URL{
		Scheme:   "ws",
		Host:     *addr,
		Path:     "/ws/suggest",
		RawQuery: "tab=" + url.QueryEscape(*tab),
	}

	conn, _, err := websocket.DefaultDialer.Dial(wsURL.String(), nil)
	if err != nil {
		log.Fatalf("failed to dial %s: %v", wsURL.String(), err)
	}
	defer conn.Close()

	log.Printf("connected to %s, type to search (ctrl-c to quit)", wsURL.String())

	// Print replies as they arrive
	go func() {
		for {
			var reply suggestReply
			if err := conn.ReadJSON(&reply); err != nil {
				log.Printf("connection closed: %v", err)
				os.Exit(0)
			}
			if len(reply.Suggestions) == 0 {
				fmt.Printf("-- no suggestions for %q\n", reply.Query)
				continue
			}
			fmt.Printf("-- suggestions for %q:\n", reply.Query)
			for _, s := range reply.Suggestions {
				year := ""
				if s.Year > 0 {
					year = fmt.Sprintf(" (%d)", s.Year)
				}
				fmt.Printf("   [%s] %s%s  %s\n", s.Kind, s.Title, year, s.DetailPath)
			}
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-stop
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		os.Exit(0)
	}()

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		query := strings.TrimSpace(scanner.Text())
		if err := conn.WriteJSON(queryFrame{Query: query}); err != nil {
			log.Fatalf("failed to send query: %v", err)
		}
	}
}
