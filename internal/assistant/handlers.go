// internal/assistant/handlers.go

package assistant

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/gatherlyhq/gatherly-backend/internal/auth"
	"github.com/gatherlyhq/gatherly-backend/internal/common/utils"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 16 * 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// In production, implement proper CORS checking
		return true
	},
}

// ChatRequest carries a REST chat turn
type ChatRequest struct {
	Messages []Message `json:"messages" validate:"required,min=1,max=50,dive"`
}

// wsFrame is one message over the assistant websocket
type wsFrame struct {
	Type      string    `json:"type"`
	Content   string    `json:"content,omitempty"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers assistant routes, admin-only
func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware *auth.Middleware) {
	api := router.PathPrefix("/api/v1/admin/assistant").Subrouter()
	api.Use(authMiddleware.Authenticate)
	api.Use(authMiddleware.RequireAdmin)

	api.HandleFunc("/chat", handler.Chat).Methods("POST")
	api.HandleFunc("/ws", handler.ServeWS).Methods("GET")
}

// Chat answers one conversation turn over REST
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ErrorResponse(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := utils.ValidateStruct(req); err != nil {
		utils.ErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	reply, err := h.service.Chat(r.Context(), req.Messages)
	if err != nil {
		if errors.Is(err, ErrEmptyConversation) {
			utils.ErrorResponse(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.Printf("Assistant chat failed: %v", err)
		utils.ErrorResponse(w, "Assistant is unavailable", http.StatusBadGateway)
		return
	}

	utils.SuccessResponse(w, reply, http.StatusOK)
}

// ServeWS upgrades to a websocket conversation. Each connection keeps
// its own history; closing the socket ends the conversation.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Assistant websocket upgrade failed: %v", err)
		return
	}

	// Run the loop on the request goroutine so r.Context() stays live
	// for the lifetime of the conversation.
	h.conversationLoop(r, conn)
}

func (h *Handler) conversationLoop(r *http.Request, conn *websocket.Conn) {
	defer conn.Close()

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	done := make(chan struct{})
	defer close(done)
	go pingLoop(conn, done)

	var history []Message
	for {
		var frame wsFrame
		if err := conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("Assistant websocket read error: %v", err)
			}
			return
		}

		if frame.Type != "message" || frame.Content == "" {
			writeFrame(conn, wsFrame{Type: "error", Error: "expected a non-empty message frame"})
			continue
		}

		history = append(history, Message{Role: "user", Content: frame.Content})

		reply, err := h.service.Chat(r.Context(), history)
		if err != nil {
			log.Printf("Assistant chat failed: %v", err)
			writeFrame(conn, wsFrame{Type: "error", Error: "assistant is unavailable"})
			continue
		}

		history = append(history, *reply)
		writeFrame(conn, wsFrame{Type: "message", Content: reply.Content})
	}
}

func pingLoop(conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

func writeFrame(conn *websocket.Conn, frame wsFrame) {
	frame.Timestamp = time.Now()
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(frame); err != nil {
		log.Printf("Assistant websocket write error: %v", err)
	}
}
