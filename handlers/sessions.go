package handlers

import (
	"errors"
	"net/http"
	"time"

	historyRepo "smartsched/database/repository/history"
	"smartsched/services/dialogue"
	"smartsched/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CreateSessionRequest is the expected input for starting a negotiation.
type CreateSessionRequest struct {
	UserID string `json:"userId" binding:"required"`
}

// CreateSessionHandler starts a fresh scheduling session.
func CreateSessionHandler(engine *dialogue.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := utils.GetLogger()

		var req CreateSessionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			logger.Error("Invalid create session request", zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		sess, err := engine.CreateSession(c.Request.Context(), req.UserID)
		if err != nil {
			logger.Error("Failed to create session", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"session":  sess,
			"greeting": "Hi! What would you like to schedule?",
		})
	}
}

// GetSessionHandler returns the current session state.
func GetSessionHandler(engine *dialogue.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := engine.GetSession(c.Request.Context(), c.Param("id"))
		if err != nil {
			var notFound *dialogue.SessionNotFoundError
			if errors.As(err, &notFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
				return
			}
			utils.GetLogger().Error("Failed to load session", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load session"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"session": sess,
			"stats": gin.H{
				"state":          sess.State,
				"turns":          len(sess.History),
				"optionsOffered": len(sess.LastOffer),
				"ageSeconds":     int(time.Since(sess.CreatedAt).Seconds()),
			},
		})
	}
}

// DeleteSessionHandler abandons a session.
func DeleteSessionHandler(engine *dialogue.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := engine.Abandon(c.Request.Context(), c.Param("id")); err != nil {
			var notFound *dialogue.SessionNotFoundError
			if errors.As(err, &notFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
				return
			}
			utils.GetLogger().Error("Failed to abandon session", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to abandon session"})
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// GetHistoryHandler returns the durable turn audit for a session.
func GetHistoryHandler(history historyRepo.TurnHistoryRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		records, err := history.GetBySessionID(c.Request.Context(), c.Param("id"))
		if err != nil {
			utils.GetLogger().Error("Failed to load turn history", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load history"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"sessionId": c.Param("id"), "turns": records})
	}
}
