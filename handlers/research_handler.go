package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"jurissearch-backend/service"
)

// ResearchHandler handles HTTP requests for research sessions
type ResearchHandler struct {
	researchService *service.ResearchService
	logger          *zap.Logger
}

// NewResearchHandler creates a new research handler
func NewResearchHandler(researchService *service.ResearchService, logger *zap.Logger) *ResearchHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResearchHandler{
		researchService: researchService,
		logger:          logger,
	}
}

// StartResearchRequest represents the request body for starting research
type StartResearchRequest struct {
	Topic string `json:"topic"`
}

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

// validationMessage returns the user-facing reason for a rejected topic
func validationMessage(err error) (string, bool) {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		return verr.Reason, true
	}
	return "", false
}

func parseSessionID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_SESSION_ID", "Invalid session ID format")
		return uuid.Nil, false
	}
	return id, true
}

// processInBackground runs the provider calls after the response is sent.
// The request context is not used so the work outlives the request.
func (h *ResearchHandler) processInBackground(id uuid.UUID) {
	go func() {
		if err := h.researchService.ProcessResearch(context.Background(), id); err != nil {
			h.logger.Warn("research session failed",
				zap.String("session_id", id.String()),
				zap.Error(err),
			)
		}
	}()
}

// StartResearch handles POST /api/research
func (h *ResearchHandler) StartResearch(c *gin.Context) {
	var req StartResearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", "Request body must be JSON with a topic")
		return
	}

	session, err := h.researchService.StartResearch(c.Request.Context(), req.Topic)
	if err != nil {
		if reason, ok := validationMessage(err); ok {
			respondError(c, http.StatusBadRequest, "INVALID_INPUT", reason)
			return
		}
		h.logger.Error("failed to start research", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "RESEARCH_FAILED", "Failed to start research")
		return
	}

	h.processInBackground(session.ID)

	c.JSON(http.StatusAccepted, gin.H{
		"success": true,
		"data":    session,
	})
}

// Resubmit handles POST /api/research/:id/resubmit
func (h *ResearchHandler) Resubmit(c *gin.Context) {
	id, ok := parseSessionID(c)
	if !ok {
		return
	}

	var req StartResearchRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", "Request body must be JSON")
		return
	}

	session, err := h.researchService.Resubmit(c.Request.Context(), id, req.Topic)
	if err != nil {
		if reason, ok := validationMessage(err); ok {
			respondError(c, http.StatusBadRequest, "INVALID_INPUT", reason)
			return
		}
		switch {
		case errors.Is(err, service.ErrSessionNotFound):
			respondError(c, http.StatusNotFound, "SESSION_NOT_FOUND", "Research session not found")
		case errors.Is(err, service.ErrSessionBusy):
			respondError(c, http.StatusConflict, "SESSION_BUSY", "Research session already in progress")
		default:
			h.logger.Error("failed to resubmit research", zap.Error(err))
			respondError(c, http.StatusInternalServerError, "RESEARCH_FAILED", "Failed to start research")
		}
		return
	}

	h.processInBackground(session.ID)

	c.JSON(http.StatusAccepted, gin.H{
		"success": true,
		"data":    session,
	})
}

// GetSession handles GET /api/research/:id
func (h *ResearchHandler) GetSession(c *gin.Context) {
	id, ok := parseSessionID(c)
	if !ok {
		return
	}

	session, err := h.researchService.GetSession(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			respondError(c, http.StatusNotFound, "SESSION_NOT_FOUND", "Research session not found")
			return
		}
		h.logger.Error("failed to load research session", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "RETRIEVAL_FAILED", "Failed to load research session")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    session,
	})
}

// ListSessions handles GET /api/research
func (h *ResearchHandler) ListSessions(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))

	sessions, err := h.researchService.RecentSessions(c.Request.Context(), limit)
	if err != nil {
		h.logger.Error("failed to list research sessions", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "RETRIEVAL_FAILED", "Failed to list research sessions")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    sessions,
	})
}

// GetBriefing handles GET /api/research/:id/briefing
func (h *ResearchHandler) GetBriefing(c *gin.Context) {
	id, ok := parseSessionID(c)
	if !ok {
		return
	}

	markdown, err := h.researchService.Briefing(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSessionNotFound):
			respondError(c, http.StatusNotFound, "SESSION_NOT_FOUND", "Research session not found")
		case errors.Is(err, service.ErrBriefingNotFound):
			respondError(c, http.StatusNotFound, "BRIEFING_NOT_FOUND", "No briefing available for this session")
		default:
			h.logger.Error("failed to load briefing", zap.Error(err))
			respondError(c, http.StatusInternalServerError, "RETRIEVAL_FAILED", "Failed to load briefing")
		}
		return
	}

	if c.Query("format") == "html" {
		html, err := service.BriefingHTML(markdown)
		if err != nil {
			h.logger.Error("failed to render briefing", zap.Error(err))
			respondError(c, http.StatusInternalServerError, "RENDER_FAILED", "Failed to render briefing")
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
		return
	}

	c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(markdown))
}

// Suggestions handles GET /api/suggestions
func (h *ResearchHandler) Suggestions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    service.SuggestedTopics(),
	})
}
