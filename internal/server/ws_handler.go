package server

import (
	"net/http"

	"github.com/gorilla/websocket"
)

// handleLiveApps streams directory events to a public listing page. The
// messages only say what changed; clients fetch /api/metadata themselves.
func (s *server) handleLiveApps(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Error while upgrading connection", "error", err)
		return
	}
	defer conn.Close()

	messageChan, ok := s.broker.subscribe()
	if !ok {
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
		return
	}
	liveClients.Inc()
	defer liveClients.Dec()
	defer s.broker.unsubscribe(messageChan)

	go func() {
		// the connection is closed when the broker drops this client
		defer conn.Close()
		for msgBytes := range messageChan {
			err := conn.WriteMessage(websocket.TextMessage, msgBytes)
			if err != nil {
				s.logger.Error("failed to write ws msg", "error", err)
				return
			}
		}
	}()

	for {
		_, _, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Error("error reading ws msg", "error", err)
			}
			break
		}
	}
}
