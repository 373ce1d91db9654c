package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/aliskhannn/quizroom/internal/delivery/http/response"
)

type AttemptHandler struct {
	taking AttemptRunner
}

func NewAttemptHandler(taking AttemptRunner) *AttemptHandler {
	return &AttemptHandler{taking: taking}
}

// Start begins an attempt of the test in the path.
func (h *AttemptHandler) Start(c *gin.Context) {
	identity, ok := caller(c)
	if !ok {
		return
	}

	snap, err := h.taking.Start(c.Request.Context(), identity, c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondCreated(c, newAttemptView(snap))
}

func (h *AttemptHandler) Get(c *gin.Context) {
	identity, ok := caller(c)
	if !ok {
		return
	}

	snap, err := h.taking.Status(identity, c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, newAttemptView(snap))
}

func (h *AttemptHandler) Answer(c *gin.Context) {
	identity, ok := caller(c)
	if !ok {
		return
	}

	pos, err := strconv.Atoi(c.Param("pos"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", errors.New("position must be an integer"))
		return
	}

	var req struct {
		Option *int `json:"option" validate:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}

	snap, err := h.taking.Answer(identity, c.Param("id"), pos, *req.Option)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, newAttemptView(snap))
}

func (h *AttemptHandler) Submit(c *gin.Context) {
	identity, ok := caller(c)
	if !ok {
		return
	}

	snap, err := h.taking.Submit(c.Request.Context(), identity, c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, newAttemptView(snap))
}

// Abandon leaves the attempt without storing a result.
func (h *AttemptHandler) Abandon(c *gin.Context) {
	identity, ok := caller(c)
	if !ok {
		return
	}

	if err := h.taking.Abandon(identity, c.Param("id")); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
