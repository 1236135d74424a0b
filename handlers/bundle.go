// File: smartsched/handlers/handlerBundle.go
package handlers

import (
	historyRepo "smartsched/database/repository/history"
	"smartsched/services/dialogue"

	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	Engine      *dialogue.Engine
	HistoryRepo historyRepo.TurnHistoryRepository

	// Session endpoints
	CreateSessionHandler gin.HandlerFunc
	GetSessionHandler    gin.HandlerFunc
	DeleteSessionHandler gin.HandlerFunc
	GetHistoryHandler    gin.HandlerFunc

	// Chat endpoint
	ChatHandler gin.HandlerFunc
}

// NewHandlerBundle wires every handler against the dialogue engine and the
// turn audit repository.
func NewHandlerBundle(engine *dialogue.Engine, history historyRepo.TurnHistoryRepository) *HandlerBundle {
	hb := &HandlerBundle{Engine: engine, HistoryRepo: history}
	hb.CreateSessionHandler = CreateSessionHandler(engine)
	hb.GetSessionHandler = GetSessionHandler(engine)
	hb.DeleteSessionHandler = DeleteSessionHandler(engine)
	hb.GetHistoryHandler = GetHistoryHandler(history)
	hb.ChatHandler = ChatHandler(engine, history)
	return hb
}
