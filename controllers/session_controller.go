// Package controllers file: controllers/session_controller.go
package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go-live-polls/logger"
	"go-live-polls/services"
	"go-live-polls/store"
)

// lastSessionKey is the cookie-session key holding the last viewed session code.
const lastSessionKey = "lastSessionCode"

// qrCodeSize is the edge length of the join QR code PNG.
const qrCodeSize = 300

// SessionController serves session creation, lookup and the join QR code.
type SessionController struct {
	SessionService services.SessionServiceInterface
	ApplicationURL string
	QREncoder      services.QRCodeEncoder
}

// NewSessionController creates an instance of SessionController
func NewSessionController(service services.SessionServiceInterface, applicationURL string) *SessionController {
	logger.Debug.Println("[NewSessionController] Initializing SessionController")
	return &SessionController{SessionService: service, ApplicationURL: applicationURL}
}

// CreateSession allocates a new session code.
func (sc *SessionController) CreateSession(c *gin.Context) {
	session, err := sc.SessionService.CreateSession(c.Request.Context())
	if err != nil {
		logger.Error.Printf("[CreateSession] Error creating session: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
		return
	}
	c.JSON(http.StatusCreated, session)
}

// GetSession returns the session with its polls and remembers the code.
func (sc *SessionController) GetSession(c *gin.Context) {
	code := c.Param("sessionCode")
	view, err := sc.SessionService.GetSession(c.Request.Context(), code)
	if errors.Is(err, store.ErrSessionNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}
	if err != nil {
		logger.Error.Printf("[GetSession] Error loading session %s: %v", code, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load session"})
		return
	}

	session := sessions.Default(c)
	session.Set(lastSessionKey, view.Code)
	if err := session.Save(); err != nil {
		logger.Warn.Printf("[GetSession] Could not remember session %s: %v", code, err)
	}
	c.JSON(http.StatusOK, view)
}

// CurrentSession returns the code of the last session this browser viewed.
func (sc *SessionController) CurrentSession(c *gin.Context) {
	code, ok := sessions.Default(c).Get(lastSessionKey).(string)
	if !ok || code == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "No session remembered"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessionCode": code})
}

// GetQRCode renders a PNG QR code pointing participants at the session.
func (sc *SessionController) GetQRCode(c *gin.Context) {
	code := c.Param("sessionCode")
	if _, err := sc.SessionService.GetSession(c.Request.Context(), code); err != nil {
		if errors.Is(err, store.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
			return
		}
		logger.Error.Printf("[GetQRCode] Error loading session %s: %v", code, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load session"})
		return
	}

	qrBytes, err := services.GenerateJoinQRCode(services.JoinURL(sc.ApplicationURL, code), qrCodeSize, sc.QREncoder)
	if err != nil {
		logger.Error.Printf("[GetQRCode] Error generating QR code: %v", err)
		c.String(http.StatusInternalServerError, "QR generation failed")
		return
	}

	c.Header("Content-Disposition", "inline; filename=\"qrcode.png\"")
	c.Data(http.StatusOK, "image/png", qrBytes)
}
