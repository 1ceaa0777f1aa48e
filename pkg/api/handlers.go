package api

import (
	"encoding/json"
	"net/http"

	"github.com/dixieflatline76/PhotoSaver/config"
)

// Message types.
const (
	TypePing        = "ping"
	TypePong        = "pong"
	TypeForward     = "forward"
	TypeBack        = "back"
	TypeTogglePause = "toggle_pause"
	TypeIsShowing   = "is_showing"
	TypeShowing     = "showing"
	TypeShowPreview = "show_preview"
	TypeCloseAll    = "close_all"
	TypePhoto       = "photo"
	TypeError       = "error"
)

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]string{
		"status":  "running",
		"version": config.AppVersion,
	}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// handleWebSocket upgrades the connection and serves its messages.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		apiLog.Printf("WebSocket upgrade failed: %v", err)
		return
	}
	c := &client{conn: conn}

	s.clientsMu.Lock()
	s.clients[conn] = c
	s.clientsMu.Unlock()
	defer s.drop(conn)

	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			if _, ok := err.(*json.SyntaxError); ok {
				_ = c.send(Message{Type: TypeError, Value: "invalid message"})
				continue
			}
			return
		}
		if reply := s.dispatch(msg); reply != nil {
			if err := c.send(reply); err != nil {
				return
			}
		}
	}
}

// dispatch handles one message and returns the reply, if any.
func (s *Server) dispatch(msg Message) *Message {
	ctrl, hooks := s.controller()
	apiLog.Debugf("message %q", msg.Type)

	switch msg.Type {
	case TypePing:
		return &Message{Type: TypePong}
	case TypeIsShowing:
		showing := hooks.IsShowing != nil && hooks.IsShowing()
		return &Message{Type: TypeShowing, Value: showing}
	case TypeCloseAll:
		if hooks.CloseAll != nil {
			hooks.CloseAll()
		}
		return nil
	case TypeShowPreview:
		if hooks.ShowPreview != nil {
			hooks.ShowPreview()
		}
		return nil
	case TypeForward, TypeBack, TypeTogglePause:
		if ctrl == nil {
			return &Message{Type: TypeError, Value: "no slideshow running"}
		}
		switch msg.Type {
		case TypeForward:
			ctrl.Forward()
		case TypeBack:
			ctrl.Back()
		default:
			ctrl.TogglePause()
		}
		return nil
	}
	return &Message{Type: TypeError, Value: "unknown message type " + msg.Type}
}
