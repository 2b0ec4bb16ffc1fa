package api

import (
	"net/http"

	"github.com/Domenick1991/airbook/internal/service/account"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	service account.AccountUseCase
}

type registerRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Name     string `json:"name" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func NewAuthHandler(service account.AccountUseCase) *AuthHandler {
	return &AuthHandler{service: service}
}

// Register mounts the auth routes; authn guards the profile endpoint.
func (h *AuthHandler) Register(router *gin.RouterGroup, authn gin.HandlerFunc) {
	router.POST("/register", h.register)
	router.POST("/login", h.login)
	router.POST("/admin/login", h.adminLogin)
	router.GET("/me", authn, h.me)
}

func (h *AuthHandler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, bindError(err))
		return
	}

	session, err := h.service.Register(c.Request.Context(), account.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusCreated, "registration successful", session)
}

func (h *AuthHandler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, bindError(err))
		return
	}

	session, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, "login successful", session)
}

func (h *AuthHandler) adminLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, bindError(err))
		return
	}

	session, err := h.service.AdminLogin(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, "admin login successful", session)
}

func (h *AuthHandler) me(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	user, err := h.service.Profile(c.Request.Context(), actor.UserID)
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, "profile retrieved", user)
}
