package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/projectica-ai/projectica/internal/assistant"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Auth happens in the bearer-token middleware, not via origin checks.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// streamEvent is one frame on the ask stream.
type streamEvent struct {
	Type  string `json:"type"` // "partial" | "final" | "error"
	Text  string `json:"text,omitempty"`
	Error string `json:"error,omitempty"`
}

// handleAskStream upgrades to a websocket, reads a single ask payload and
// streams partial assistant output while the run is in progress, ending with
// a final or error frame.
func (s *Server) handleAskStream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err, "request_id", RequestID(r.Context()))
		return
	}
	defer conn.Close()

	var req askRequest
	conn.SetReadDeadline(time.Now().Add(30 * time.Second))
	if err := conn.ReadJSON(&req); err != nil {
		conn.WriteJSON(streamEvent{Type: "error", Error: "invalid ask payload"})
		return
	}
	if req.ProjectID == "" || req.Question == "" {
		conn.WriteJSON(streamEvent{Type: "error", Error: "projectId and question are required"})
		return
	}

	ctx := r.Context()
	user := UserEmail(ctx)

	if _, err := s.store.CreateMessage(ctx, user, req.ProjectID, "user", req.Question); err != nil {
		s.logger.Warn("persist user message", "error", err, "request_id", RequestID(ctx))
	}

	// Writes come from both the progress callback and this goroutine.
	var writeMu sync.Mutex
	send := func(ev streamEvent) {
		writeMu.Lock()
		defer writeMu.Unlock()
		conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := conn.WriteJSON(ev); err != nil {
			s.logger.Warn("websocket write failed", "error", err)
		}
	}

	response, err := s.orch.RunToCompletion(ctx, assistant.Request{
		User:    user,
		Project: req.ProjectID,
		Input:   req.Question,
		Profile: assistant.PlannerProfile(s.cfg.DefaultModel),
		Model:   req.Model,
		Progress: func(partial string) {
			send(streamEvent{Type: "partial", Text: partial})
		},
	})
	if err != nil {
		s.logger.Error("streamed ask failed", "error", err, "request_id", RequestID(ctx))
		send(streamEvent{Type: "error", Error: err.Error()})
		return
	}

	if _, err := s.store.CreateMessage(ctx, user, req.ProjectID, "assistant", response); err != nil {
		s.logger.Warn("persist assistant message", "error", err, "request_id", RequestID(ctx))
	}

	send(streamEvent{Type: "final", Text: response})
}
