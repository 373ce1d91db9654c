package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/aliskhannn/quizroom/internal/delivery/http/response"
)

// PageHandler serves the public entry points a client starts from.
type PageHandler struct {
	googleEnabled bool
}

func NewPageHandler(googleEnabled bool) *PageHandler {
	return &PageHandler{googleEnabled: googleEnabled}
}

// Login describes the available sign-in methods.
func (h *PageHandler) Login(c *gin.Context) {
	response.RespondOK(c, gin.H{
		"page": "login",
		"methods": gin.H{
			"password": gin.H{"signUp": "/api/auth/signup", "signIn": "/api/auth/signin"},
			"google":   gin.H{"enabled": h.googleEnabled, "signIn": "/api/auth/google"},
		},
	})
}
