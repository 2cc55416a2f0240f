package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/cristianxmm/tv-signage-system/internal/middleware"
	"github.com/cristianxmm/tv-signage-system/internal/response"
)

// AuthHandler exchanges the admin credentials for a bearer token, for API
// clients that cannot hold Basic credentials per request.
type AuthHandler struct {
	gate *middleware.Gate
}

func NewAuthHandler(gate *middleware.Gate) *AuthHandler {
	return &AuthHandler{gate: gate}
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) HandleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "username and password are required")
		return
	}

	token, expires, err := h.gate.IssueToken(req.Username, req.Password)
	if err != nil {
		response.Unauthorized(c, "invalid credentials")
		return
	}

	response.Success(c, gin.H{
		"token":      token,
		"expires_at": expires.Unix(),
	})
}
