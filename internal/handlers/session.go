package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"interview-ace/internal/behavior"
	"interview-ace/internal/models"
	"interview-ace/internal/repository"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type SessionHandler struct {
	log  *zap.Logger
	Bank *models.QuestionBank
}

func NewSessionHandler(log *zap.Logger, bank *models.QuestionBank) *SessionHandler {
	return &SessionHandler{log: log, Bank: bank}
}

// currentUser returns the user loaded by the auth middleware. Handlers behind
// AuthRequired can rely on it being present.
func currentUser(c *gin.Context) *models.User {
	user, _ := c.Get("user")
	return user.(*models.User)
}

type createSessionRequest struct {
	Category string `json:"category"`
}

// CreateSession draws a question and opens a session row. Scores and
// violation counts stay zero until the live stream finishes.
func (h *SessionHandler) CreateSession(c *gin.Context) {
	user := currentUser(c)

	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	question, err := h.Bank.Pick(req.Category)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session := &models.InterviewSession{
		UserID:         user.ID,
		Category:       question.Category,
		Question:       question.Text,
		StartedAt:      time.Now().UTC(),
		SuspicionLevel: string(behavior.SuspicionLow),
	}
	if err := repository.CreateSession(c, session); err != nil {
		h.log.Error("Failed to create session", zap.Error(err), zap.Uint("userID", user.ID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not start session"})
		return
	}

	c.JSON(http.StatusCreated, session)
}

func (h *SessionHandler) ListSessions(c *gin.Context) {
	user := currentUser(c)

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		limit = parsed
	}

	sessions, err := repository.GetSessionsForUser(c, user.ID, limit)
	if err != nil {
		h.log.Error("Failed to list sessions", zap.Error(err), zap.Uint("userID", user.ID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not load sessions"})
		return
	}

	c.JSON(http.StatusOK, sessions)
}

func (h *SessionHandler) GetSession(c *gin.Context) {
	user := currentUser(c)

	sessionID, ok := parseSessionID(c)
	if !ok {
		return
	}

	session, err := repository.GetSessionByID(c, sessionID)
	if err != nil || session.UserID != user.ID {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}

	violations, err := repository.GetViolationsForSession(c, session.ID)
	if err != nil {
		h.log.Error("Failed to load violations", zap.Error(err), zap.Uint("sessionID", session.ID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not load session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session":    session,
		"violations": violations,
	})
}

func (h *SessionHandler) DeleteSession(c *gin.Context) {
	user := currentUser(c)

	sessionID, ok := parseSessionID(c)
	if !ok {
		return
	}

	if err := repository.DeleteSession(c, user.ID, sessionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
			return
		}
		h.log.Error("Failed to delete session", zap.Error(err), zap.Uint("sessionID", sessionID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not delete session"})
		return
	}

	c.Status(http.StatusNoContent)
}

// ListCategories exposes the question bank's categories for the session
// setup screen.
func (h *SessionHandler) ListCategories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"categories": h.Bank.Categories()})
}

func parseSessionID(c *gin.Context) (uint, bool) {
	raw := c.Param("id")
	parsed, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid session id"})
		return 0, false
	}
	return uint(parsed), true
}
