package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{CheckOrigin: func(_ *http.Request) bool { return true }}

// EventsWSHandler streams solution lifecycle events over a WebSocket at
// /v1/solutions/{id}/events/ws. Each event is written as one JSON message;
// the stream stays open until the client disconnects.
func (s *Server) EventsWSHandler(w http.ResponseWriter, r *http.Request, solutionID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer func() { _ = conn.Close() }()

	conn.SetReadLimit(1 << 20)
	_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	ch := s.Broker.Subscribe(solutionID)
	done := make(chan struct{})

	go func() {
		defer close(done)
		ticker := time.NewTicker(20 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case evt, ok := <-ch:
				if !ok {
					return
				}
				if err := conn.WriteJSON(evt); err != nil {
					return
				}
			case <-ticker.C:
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	// read loop only detects disconnect; clients send nothing meaningful
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	s.Broker.Unsubscribe(solutionID, ch)
	<-done
}
