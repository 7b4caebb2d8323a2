package main

import (
	"context"
	"errors"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/zhouzirui/z-tavern/webchat/internal/config"
	"github.com/zhouzirui/z-tavern/webchat/internal/handler"
	"github.com/zhouzirui/z-tavern/webchat/internal/model/persona"
	"github.com/zhouzirui/z-tavern/webchat/internal/service/chat"
	"github.com/zhouzirui/z-tavern/webchat/internal/service/conversation"
	"github.com/zhouzirui/z-tavern/webchat/internal/service/gateway"
	"github.com/zhouzirui/z-tavern/webchat/web"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	// Initialize persona store, extended by the optional catalog file
	personas := persona.Seed()
	if cfg.Agent.CatalogPath != "" {
		extra, err := persona.LoadCatalog(cfg.Agent.CatalogPath)
		if err != nil {
			log.Fatalf("failed to load persona catalog: %v", err)
		}
		personas = append(personas, extra...)
		log.Printf("loaded %d personas from %s", len(extra), cfg.Agent.CatalogPath)
	}
	personaStore := persona.NewMemoryStore(personas)
	resolver := persona.NewResolver(personaStore, rand.NewSource(time.Now().UnixNano()))

	backend := gateway.New(cfg.Backend.BaseURL, cfg.Backend.Timeout)
	log.Printf("AI backend at %s (timeout %s)", cfg.Backend.BaseURL, cfg.Backend.Timeout)

	sessions := conversation.NewService(conversation.Options{
		AgentType:           cfg.Agent.Type,
		Ruleset:             cfg.Agent.Ruleset,
		UserName:            cfg.Agent.UserName,
		QueryEnabled:        cfg.Agent.QueryEnabled,
		ClearQueryAfterSend: cfg.Agent.ClearQueryAfterSend,
	}, resolver, backend, chat.NewHub(32))

	if mode := gateway.ModeFor(cfg.Agent.Type); mode == gateway.ModeDataAnalysis {
		log.Println("数据分析模式已启用，允许上传数据文件")
	} else {
		log.Printf("chat mode with agent %q", resolver.Name(cfg.Agent.Type))
	}

	router := handler.NewRouter(personaStore, sessions, cfg.Server.AllowedOrigins, web.StaticFS())

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("Z Tavern webchat listening on %s", addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
