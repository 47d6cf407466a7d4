package chat

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/cropwise/advisor/internal/api/middleware"
	"github.com/cropwise/advisor/internal/domain"
	"github.com/cropwise/advisor/internal/service"
	"github.com/gin-gonic/gin"
)

// Handler handles conversational advisory requests
type Handler struct {
	chatService *service.ChatService
}

// NewHandler creates a new chat handler
func NewHandler(chatService *service.ChatService) *Handler {
	return &Handler{chatService: chatService}
}

// RegisterRoutes registers chat routes
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/chat", h.ChatStream)
	r.GET("/conversations", h.ListConversations)
	r.GET("/conversations/:id/messages", h.ConversationHistory)
}

// ChatStream handles a streaming chat turn (SSE)
func (h *Handler) ChatStream(c *gin.Context) {
	var req domain.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Resolution errors surface on the plain error channel, before any
	// stream bytes
	stream, err := h.chatService.ChatStream(c.Request.Context(), middleware.Owner(c), &req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrConversationNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "conversation not found"})
		case errors.Is(err, domain.ErrInvalidRequest):
			c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	// Set SSE headers
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	c.Stream(func(w io.Writer) bool {
		ev, ok := <-stream
		if !ok {
			return false // End stream
		}
		data, _ := json.Marshal(ev)
		fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, string(data))
		return true
	})
}

// ListConversations returns the caller's conversations
func (h *Handler) ListConversations(c *gin.Context) {
	conversations, err := h.chatService.ListConversations(c.Request.Context(), middleware.Owner(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"conversations": conversations})
}

// ConversationHistory returns all messages of one conversation
func (h *Handler) ConversationHistory(c *gin.Context) {
	messages, err := h.chatService.ConversationHistory(c.Request.Context(), middleware.Owner(c), c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrConversationNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "conversation not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": messages})
}
