package handler

import (
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/zhouzirui/z-tavern/webchat/internal/handler/chat"
	"github.com/zhouzirui/z-tavern/webchat/internal/handler/feed"
	"github.com/zhouzirui/z-tavern/webchat/internal/handler/persona"
	middlewarePkg "github.com/zhouzirui/z-tavern/webchat/internal/middleware"
	personaModel "github.com/zhouzirui/z-tavern/webchat/internal/model/persona"
	"github.com/zhouzirui/z-tavern/webchat/internal/service/conversation"
	"github.com/zhouzirui/z-tavern/webchat/pkg/utils"
)

// NewRouter wires HTTP routes to core services. static may be nil when the
// chat page is served elsewhere.
func NewRouter(personas personaModel.Store, sessions *conversation.Service, allowedOrigins []string, static fs.FS) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS(allowedOrigins))

	// Create handlers
	personaHandler := persona.New(personas)
	chatHandler := chat.New(sessions)
	feedHandler := feed.New(sessions, allowedOrigins)

	r.Route("/api", func(api chi.Router) {
		api.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		// Register persona routes
		personaHandler.RegisterRoutes(api)

		// Register chat routes
		chatHandler.RegisterRoutes(api)

		// Live session events over WebSocket
		feedHandler.RegisterRoutes(api)
	})

	if static != nil {
		r.Handle("/*", http.FileServer(http.FS(static)))
	}

	return r
}
