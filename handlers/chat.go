package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	historyRepo "smartsched/database/repository/history"
	"smartsched/models"
	"smartsched/services/dialogue"
	"smartsched/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ChatRequest is the expected input for one conversational turn.
type ChatRequest struct {
	SessionID string `json:"sessionId" binding:"required"`
	Message   string `json:"message" binding:"required"`
}

// ChatHandler runs one user utterance through the dialogue engine and
// records the turn in the audit log.
func ChatHandler(engine *dialogue.Engine, history historyRepo.TurnHistoryRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := utils.GetLogger()

		var req ChatRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			logger.Error("Invalid chat request", zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		result, err := engine.ProcessTurn(c.Request.Context(), req.SessionID, req.Message)
		if err != nil {
			var notFound *dialogue.SessionNotFoundError
			if errors.As(err, &notFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
				return
			}
			var timedOut *dialogue.SessionTimedOutError
			if errors.As(err, &timedOut) {
				c.JSON(http.StatusGone, gin.H{"error": "Session timed out"})
				return
			}
			var closed *dialogue.SessionClosedError
			if errors.As(err, &closed) {
				c.JSON(http.StatusConflict, gin.H{"error": "Session is closed", "state": closed.State})
				return
			}
			logger.Error("Failed to process turn", zap.String("session", req.SessionID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process message"})
			return
		}

		go auditTurn(history, req, result)

		c.JSON(http.StatusOK, result)
	}
}

// auditTurn writes the turn record best-effort; audit failures never fail
// the user's turn.
func auditTurn(history historyRepo.TurnHistoryRepository, req ChatRequest, result *dialogue.TurnResult) {
	if history == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	record := models.TurnRecord{
		SessionID: req.SessionID,
		UserInput: req.Message,
		Reply:     result.Reply,
		Intent:    result.Intent,
		ToState:   result.State,
		CreatedAt: time.Now(),
	}
	if _, err := history.Create(ctx, record); err != nil {
		utils.GetLogger().Warn("Failed to record turn audit",
			zap.String("session", req.SessionID), zap.Error(err))
	}
}
