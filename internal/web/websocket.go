package web

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/paaavkata/track-metadata-enrichment/internal/enrich"
)

const (
	wsWriteTimeout = 10 * time.Second
	wsPingInterval = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // The server binds to localhost; any page may talk to it.
	},
}

// wsMessage is one frame on the progress feed. Type is "run" for a
// run-state change and "file" for a single finished file, in which
// case File describes what happened to it.
type wsMessage struct {
	Type string       `json:"type"`
	Run  *RunResponse `json:"run"`
	File *fileEvent   `json:"file,omitempty"`
}

type fileEvent struct {
	Path    string            `json:"path"`
	Status  string            `json:"status"`
	Applied map[string]string `json:"applied,omitempty"`
	Error   string            `json:"error,omitempty"`
}

func newFileEvent(o enrich.Outcome) *fileEvent {
	ev := &fileEvent{Path: o.Path, Status: string(o.Status)}
	if len(o.Applied) > 0 {
		ev.Applied = make(map[string]string, len(o.Applied))
		for field, value := range o.Applied {
			ev.Applied[string(field)] = value
		}
	}
	if o.Err != nil {
		ev.Error = o.Err.Error()
	}
	return ev
}

func eventToMessage(ev Event) wsMessage {
	msg := wsMessage{Type: "run", Run: runToResponse(ev.Run)}
	if ev.Outcome != nil {
		msg.Type = "file"
		msg.File = newFileEvent(*ev.Outcome)
	}
	return msg
}

func isTerminal(status RunStatus) bool {
	switch status {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// handleWebSocket streams run and per-file events to the client until
// the run reaches a terminal state or the client goes away.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	runID := r.URL.Query().Get("run_id")
	if runID == "" {
		http.Error(w, "run_id is required", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("WebSocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	updates := s.runs.Subscribe(runID)
	defer s.runs.Unsubscribe(runID, updates)

	// The current state first, so late joiners see where the run
	// stands before the event stream resumes.
	if run, err := s.runs.GetRun(runID); err == nil {
		if err := s.writeMessage(conn, wsMessage{Type: "run", Run: runToResponse(run)}); err != nil {
			return
		}
		if isTerminal(run.Status) {
			return
		}
	}

	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-updates:
			if !ok {
				return
			}
			if err := s.writeMessage(conn, eventToMessage(ev)); err != nil {
				return
			}
			if isTerminal(ev.Run.Status) {
				return
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (s *Server) writeMessage(conn *websocket.Conn, msg wsMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		s.logger.Error("Failed to marshal progress message: %v", err)
		return err
	}
	conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return conn.WriteMessage(websocket.TextMessage, data)
}
