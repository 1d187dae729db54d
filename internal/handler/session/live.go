package session

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

var liveUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type liveInbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// UtteranceMessage is a text utterance sent over the live channel.
type UtteranceMessage struct {
	Text         string `json:"text"`
	Context      string `json:"context"`
	QuestionType string `json:"questionType"`
}

type liveOutbound struct {
	Type      string      `json:"type"`
	SessionID string      `json:"sessionId,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// handleLive holds one websocket per session: the doctor's client sends
// utterances and receives generated follow-up questions. Errors come back
// as frames without closing the socket.
func (h *Handler) handleLive(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	if _, err := h.consultSvc.GetContext(r.Context(), sessionID); err != nil {
		http.Error(w, err.Error(), statusForError(err))
		return
	}

	conn, err := liveUpgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[live] upgrade failed session=%s: %v", sessionID, err)
		return
	}
	defer conn.Close()

	log.Printf("[live] connection opened session=%s", sessionID)
	h.writeLive(conn, sessionID, "connected", nil)

	for {
		var inbound liveInbound
		if err := conn.ReadJSON(&inbound); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[live] read failed session=%s: %v", sessionID, err)
			}
			return
		}

		switch inbound.Type {
		case "utterance":
			h.handleLiveUtterance(r, conn, sessionID, inbound.Data)
		case "ping":
			h.writeLive(conn, sessionID, "pong", nil)
		default:
			h.writeLive(conn, sessionID, "error", map[string]string{
				"error": "unknown message type: " + inbound.Type,
			})
		}
	}
}

func (h *Handler) handleLiveUtterance(r *http.Request, conn *websocket.Conn, sessionID string, raw json.RawMessage) {
	var msg UtteranceMessage
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &msg); err != nil {
			h.writeLive(conn, sessionID, "error", map[string]string{"error": "invalid utterance payload"})
			return
		}
	}

	result, err := h.consultSvc.RequestFollowUps(r.Context(), sessionID, msg.Text, msg.Context, msg.QuestionType)
	if err != nil {
		h.writeLive(conn, sessionID, "error", map[string]string{"error": err.Error()})
		return
	}

	h.writeLive(conn, sessionID, "questions", result)
}

func (h *Handler) writeLive(conn *websocket.Conn, sessionID, msgType string, data interface{}) {
	outbound := liveOutbound{
		Type:      msgType,
		SessionID: sessionID,
		Data:      data,
		Timestamp: time.Now().UnixMilli(),
	}
	if err := conn.WriteJSON(outbound); err != nil {
		log.Printf("[live] write failed session=%s: %v", sessionID, err)
	}
}
