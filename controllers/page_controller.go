// Package controllers file: controllers/page_controller.go
package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go-live-polls/logger"
)

// WebSocketServer upgrades requests onto the live event channel.
type WebSocketServer interface {
	ServeWs(w http.ResponseWriter, r *http.Request)
}

// Health answers load balancer checks.
func Health(c *gin.Context) {
	logger.Debug.Println("[Health] Health check requested")
	c.String(http.StatusOK, "OK")
}

// LiveUpdates hands the request to the WebSocket server.
func LiveUpdates(ws WebSocketServer) gin.HandlerFunc {
	return func(c *gin.Context) {
		ws.ServeWs(c.Writer, c.Request)
	}
}

// RegisterRoutes attaches every HTTP route to router.
func RegisterRoutes(router gin.IRouter, sc *SessionController, pc *PollController, ws WebSocketServer) {
	router.GET("/health", Health)
	router.GET("/ws", LiveUpdates(ws))

	router.POST("/create-session", sc.CreateSession)
	router.GET("/session/current", sc.CurrentSession)
	router.GET("/session/:sessionCode", sc.GetSession)
	router.GET("/session/:sessionCode/qrcode", sc.GetQRCode)
	router.POST("/session/:sessionCode/create-poll", pc.CreatePoll)
	router.POST("/poll/:pollId/vote", pc.Vote)
}
