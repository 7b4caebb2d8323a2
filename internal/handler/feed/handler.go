package feed

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	middlewarePkg "github.com/zhouzirui/z-tavern/webchat/internal/middleware"
	"github.com/zhouzirui/z-tavern/webchat/internal/service/conversation"
	"github.com/zhouzirui/z-tavern/webchat/pkg/utils"
)

const writeWait = 10 * time.Second

// Handler WebSocket事件推送处理器
type Handler struct {
	sessions *conversation.Service
	upgrader websocket.Upgrader
}

// New 创建事件推送处理器，握手时按 allowedOrigins 校验 Origin
func New(sessions *conversation.Service, allowedOrigins []string) *Handler {
	return &Handler{
		sessions: sessions,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				return middlewarePkg.OriginAllowed(allowedOrigins, origin)
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes 注册WebSocket路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/sessions/{sessionID}/feed", h.handleFeed)
}

func (h *Handler) handleFeed(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if _, err := h.sessions.GetSession(r.Context(), sessionID); err != nil {
		utils.RespondError(w, http.StatusNotFound, err.Error())
		return
	}
	if h.sessions.Hub() == nil {
		utils.RespondError(w, http.StatusServiceUnavailable, "event feed unavailable")
		return
	}

	// 先订阅再握手，握手完成后的事件不会丢失
	events, cancel := h.sessions.Hub().Subscribe(sessionID)
	defer cancel()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[feed] upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	log.Printf("[feed] client connected session=%s", sessionID)

	// 客户端不发送数据，读循环只用于感知断开
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Printf("[feed] read error session=%s: %v", sessionID, err)
				}
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			log.Printf("[feed] client disconnected session=%s", sessionID)
			return
		case evt, ok := <-events:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(evt); err != nil {
				log.Printf("[feed] write failed session=%s: %v", sessionID, err)
				return
			}
		}
	}
}
