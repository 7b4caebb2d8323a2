package handler

import (
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"

	personaModel "github.com/zhouzirui/z-tavern/webchat/internal/model/persona"
	chatservice "github.com/zhouzirui/z-tavern/webchat/internal/service/chat"
	"github.com/zhouzirui/z-tavern/webchat/internal/service/conversation"
	"github.com/zhouzirui/z-tavern/webchat/internal/service/gateway"
)

func setupRouter(t *testing.T) http.Handler {
	t.Helper()
	store := personaModel.NewMemoryStore(personaModel.Seed())
	resolver := personaModel.NewResolver(store, rand.NewSource(1))
	// 指向不可达地址，创建会话时 ping 失败
	sessions := conversation.NewService(conversation.Options{UserName: "You"}, resolver, gateway.New("http://127.0.0.1:1", 0), chatservice.NewHub(4))
	static := fstest.MapFS{"index.html": {Data: []byte("<html>chat</html>")}}
	return NewRouter(store, sessions, []string{"*"}, static)
}

func TestHealth(t *testing.T) {
	r := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
}

func TestRouterMountsAPI(t *testing.T) {
	r := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/personas", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/sessions", nil)
	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.Code)
	}
	var snap conversation.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if snap.Available {
		t.Fatal("expected unavailable session with unreachable backend")
	}
	if snap.Agent.DisplayName != personaModel.DefaultName {
		t.Fatalf("expected default agent name, got %q", snap.Agent.DisplayName)
	}
}

func TestRouterServesStaticPage(t *testing.T) {
	r := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "chat") {
		t.Fatalf("unexpected body: %s", resp.Body.String())
	}
}

func TestCORSPreflight(t *testing.T) {
	r := setupRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/sessions", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if got := resp.Header().Get("Access-Control-Allow-Origin"); got == "" {
		t.Fatal("expected Access-Control-Allow-Origin header")
	}
}
