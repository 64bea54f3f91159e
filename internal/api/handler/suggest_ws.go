package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"cinemax/internal/api/dto"
	"cinemax/internal/api/service"
	"cinemax/internal/search"
)

const ( // ping pong heartbeat to keep the session alive
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// CORS middleware already vetted the origin on the upgrade request
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type suggestFrame struct {
	Query string `json:"query"`
}

type suggestReply struct {
	Query       string             `json:"query"`
	Suggestions []dto.CardResponse `json:"suggestions"`
}

// SuggestStream handles GET /ws/suggest?tab=. Each inbound frame carries the
// current query text; the session debounces keystrokes server-side and only
// ever replies for the newest query.
func SuggestStream(svc service.CatalogService, quiet time.Duration, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		tab := strings.TrimSpace(c.Query("tab"))

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.WithError(err).Warn("suggest upgrade failed")
			return
		}

		session := search.NewSuggester(svc.SuggestFetcher(tab), quiet, log)

		go suggestWritePump(conn, svc, session)
		suggestReadPump(conn, session)
	}
}

// suggestReadPump feeds inbound query frames into the session until the peer
// goes away. Closing the session unblocks the write pump.
func suggestReadPump(conn *websocket.Conn, session *search.Suggester) {
	defer func() {
		session.Close()
		conn.Close()
	}()

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var frame suggestFrame
		if err := conn.ReadJSON(&frame); err != nil {
			return
		}
		session.Update(strings.TrimSpace(frame.Query))
	}
}

// suggestWritePump ships suggestion lists and heartbeat pings to the peer.
func suggestWritePump(conn *websocket.Conn, svc service.CatalogService, session *search.Suggester) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case result, ok := <-session.Results():
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			reply := suggestReply{
				Query:       result.Query,
				Suggestions: svc.Cards(result.Records),
			}
			if err := conn.WriteJSON(reply); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
