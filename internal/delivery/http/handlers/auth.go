package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aliskhannn/quizroom/internal/delivery/http/middleware"
	"github.com/aliskhannn/quizroom/internal/delivery/http/response"
)

type AuthHandler struct {
	sessions SessionProvider
	roles    RoleResolver
}

func NewAuthHandler(sessions SessionProvider, roles RoleResolver) *AuthHandler {
	return &AuthHandler{sessions: sessions, roles: roles}
}

type credentialsRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (ah *AuthHandler) SignUp(c *gin.Context) {
	var req credentialsRequest
	if !bindJSON(c, &req) {
		return
	}

	session, err := ah.sessions.SignUp(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondCreated(c, newSessionView(session))
}

func (ah *AuthHandler) SignIn(c *gin.Context) {
	var req credentialsRequest
	if !bindJSON(c, &req) {
		return
	}

	session, err := ah.sessions.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, newSessionView(session))
}

func (ah *AuthHandler) SignInGoogle(c *gin.Context) {
	var req struct {
		IDToken string `json:"idToken" validate:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}

	session, err := ah.sessions.SignInFederated(c.Request.Context(), req.IDToken)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, newSessionView(session))
}

func (ah *AuthHandler) SignOut(c *gin.Context) {
	if err := ah.sessions.SignOut(c.Request.Context(), middleware.TokenFrom(c)); err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true, "redirect": "/login"})
}

func (ah *AuthHandler) Me(c *gin.Context) {
	identity, ok := caller(c)
	if !ok {
		return
	}

	role, err := ah.roles.ResolveRole(c.Request.Context(), identity.UserID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	home := "/user-dashboard"
	if role.IsAdmin() {
		home = "/admin-dashboard"
	}
	c.JSON(http.StatusOK, gin.H{
		"user": userView{ID: identity.UserID, Email: identity.Email, Role: role},
		"home": home,
	})
}
