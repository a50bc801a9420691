// Package controllers file: controllers/poll_controller.go
package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go-live-polls/logger"
	"go-live-polls/models"
	"go-live-polls/services"
	"go-live-polls/store"
)

// PollController serves poll creation and the HTTP vote path.
type PollController struct {
	PollService services.PollServiceInterface
	VoteService services.VoteServiceInterface
}

// NewPollController creates an instance of PollController
func NewPollController(polls services.PollServiceInterface, votes services.VoteServiceInterface) *PollController {
	logger.Debug.Println("[NewPollController] Initializing PollController")
	return &PollController{PollService: polls, VoteService: votes}
}

type voteRequest struct {
	Option string `json:"option"`
}

// CreatePoll adds a poll to the session named in the path.
func (pc *PollController) CreatePoll(c *gin.Context) {
	code := c.Param("sessionCode")

	var req services.CreatePollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	poll, err := pc.PollService.CreatePoll(c.Request.Context(), code, req)
	switch {
	case err == nil:
		c.JSON(http.StatusCreated, poll)
	case errors.Is(err, store.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
	case isValidationError(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logger.Error.Printf("[CreatePoll] Error creating poll in session %s: %v", code, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create poll"})
	}
}

// Vote records one vote through the same protocol as the WebSocket path.
func (pc *PollController) Vote(c *gin.Context) {
	pollID := c.Param("pollId")

	var req voteRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Option) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Option is required"})
		return
	}

	poll, err := pc.VoteService.Vote(c.Request.Context(), pollID, req.Option)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"message": "Vote recorded", "results": poll.Results})
	case errors.Is(err, store.ErrPollNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Poll not found"})
	case errors.Is(err, models.ErrInvalidOption):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid option"})
	default:
		logger.Error.Printf("[Vote] Error voting on poll %s: %v", pollID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record vote"})
	}
}

func isValidationError(err error) bool {
	return errors.Is(err, models.ErrEmptyQuestion) ||
		errors.Is(err, models.ErrInvalidPollType) ||
		errors.Is(err, models.ErrTooFewOptions) ||
		errors.Is(err, models.ErrInvalidOptions)
}
