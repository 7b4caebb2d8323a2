package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/z-tavern/webchat/internal/model/chat"
	chatService "github.com/zhouzirui/z-tavern/webchat/internal/service/chat"
	"github.com/zhouzirui/z-tavern/webchat/internal/service/composer"
	"github.com/zhouzirui/z-tavern/webchat/internal/service/conversation"
	"github.com/zhouzirui/z-tavern/webchat/internal/service/gateway"
	"github.com/zhouzirui/z-tavern/webchat/pkg/utils"
)

// maxUploadBytes bounds a single attached data file.
const maxUploadBytes = 32 << 20

// Handler 聊天服务的HTTP处理器
type Handler struct {
	sessions *conversation.Service
}

// New 创建聊天处理器
func New(sessions *conversation.Service) *Handler {
	return &Handler{sessions: sessions}
}

// RegisterRoutes 注册聊天相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/sessions", h.handleCreateSession)
	r.Route("/sessions/{sessionID}", func(r chi.Router) {
		r.Get("/", h.handleGetSession)
		r.Delete("/", h.handleCloseSession)
		r.Get("/messages", h.handleListMessages)
		r.Post("/messages", h.handleSubmit)
		r.Post("/attachment", h.handleAttach)
		r.Delete("/attachment", h.handleRemoveAttachment)
	})
}

// handleCreateSession 创建会话
func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	ctrl := h.sessions.CreateSession(r.Context())
	utils.RespondJSON(w, http.StatusCreated, ctrl.Snapshot())
}

func (h *Handler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.lookup(w, r)
	if !ok {
		return
	}
	utils.RespondJSON(w, http.StatusOK, ctrl.Snapshot())
}

func (h *Handler) handleCloseSession(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.CloseSession(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		utils.RespondError(w, statusFor(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleListMessages(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.lookup(w, r)
	if !ok {
		return
	}
	utils.RespondJSON(w, http.StatusOK, ctrl.Store().List())
}

// handleSubmit 发送消息并等待AI回复
func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.lookup(w, r)
	if !ok {
		return
	}

	var payload struct {
		Text  string `json:"text"`
		Query string `json:"query"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// The exchange outlives a client that navigates away; the reply still
	// lands in the transcript and on the feed.
	ctx := context.WithoutCancel(r.Context())
	out, err := ctrl.Submit(ctx, payload.Text, payload.Query)
	if err != nil {
		status := statusFor(err)
		if out.UserMessage.ID != "" {
			utils.RespondErrorWith(w, status, err.Error(), map[string]interface{}{
				"userMessage": out.UserMessage,
				"query":       out.Query,
				"focus":       out.Focus,
			})
			return
		}
		utils.RespondError(w, status, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusOK, out)
}

// handleAttach 选择待上传的数据文件
func (h *Handler) handleAttach(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.lookup(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes+1<<20)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			utils.RespondError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("file exceeds %d bytes", maxUploadBytes))
			return
		}
		utils.RespondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()
	file, header, err := r.FormFile("file")
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "file is required (field 'file')")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "failed to read file")
		return
	}
	if len(data) > maxUploadBytes {
		utils.RespondError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("file exceeds %d bytes", maxUploadBytes))
		return
	}

	upload := chat.Upload{
		Filename: header.Filename,
		MimeType: header.Header.Get("Content-Type"),
		Data:     data,
	}
	if err := ctrl.Attach(upload); err != nil {
		utils.RespondError(w, statusFor(err), err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"filename": upload.Filename,
		"mimeType": upload.MimeType,
		"size":     len(upload.Data),
		"isCsv":    upload.IsCSV(),
	})
}

func (h *Handler) handleRemoveAttachment(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.lookup(w, r)
	if !ok {
		return
	}
	ctrl.RemoveAttachment()
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) lookup(w http.ResponseWriter, r *http.Request) (*conversation.Controller, bool) {
	ctrl, err := h.sessions.GetSession(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		utils.RespondError(w, statusFor(err), err.Error())
		return nil, false
	}
	return ctrl, true
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, conversation.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, composer.ErrFileType):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, chatService.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, composer.ErrBusy):
		return http.StatusConflict
	case errors.Is(err, gateway.ErrServiceUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, gateway.ErrUpload), errors.Is(err, gateway.ErrRequest):
		return http.StatusBadGateway
	default:
		log.Printf("[chat] unexpected error: %v", err)
		return http.StatusInternalServerError
	}
}
