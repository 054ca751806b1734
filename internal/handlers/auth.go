package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"estatescout/internal/middleware"
	"estatescout/internal/models"
	"estatescout/internal/service"
)

const refreshCookieName = "refreshToken"

type registerRequest struct {
	Email          string `json:"email" binding:"required,email"`
	Password       string `json:"password" binding:"required,min=6,max=72"`
	Name           string `json:"name" binding:"required,max=120"`
	Phone          string `json:"phone" binding:"omitempty,max=32"`
	ProfilePicture string `json:"profilePicture" binding:"omitempty,url"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type userResponse struct {
	ID             string    `json:"_id"`
	Email          string    `json:"email"`
	Name           string    `json:"name"`
	Phone          string    `json:"phone,omitempty"`
	ProfilePicture string    `json:"profilePicture,omitempty"`
	Role           string    `json:"role"`
	Posts          []string  `json:"posts"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

func newUserResponse(user models.User) userResponse {
	posts := user.Posts
	if posts == nil {
		posts = []string{}
	}
	return userResponse{
		ID:             user.ID,
		Email:          user.Email,
		Name:           user.Name,
		Phone:          user.Phone,
		ProfilePicture: user.ProfilePicture,
		Role:           string(user.Role),
		Posts:          posts,
		CreatedAt:      user.CreatedAt,
		UpdatedAt:      user.UpdatedAt,
	}
}

func (h HandlerSet) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	result, err := h.auth.Register(c.Request.Context(), service.RegisterInput{
		Email:          req.Email,
		Password:       req.Password,
		Name:           req.Name,
		Phone:          req.Phone,
		ProfilePicture: req.ProfilePicture,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	h.setRefreshCookie(c, result.RefreshToken)
	c.JSON(http.StatusCreated, authResponse{
		Token: result.AccessToken,
		User:  newUserResponse(result.User),
	})
}

func (h HandlerSet) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	result, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(c, err)
		return
	}

	h.setRefreshCookie(c, result.RefreshToken)
	c.JSON(http.StatusOK, authResponse{
		Token: result.AccessToken,
		User:  newUserResponse(result.User),
	})
}

// Logout only clears the cookie; tokens are stateless.
func (h HandlerSet) Logout(c *gin.Context) {
	h.clearRefreshCookie(c)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

func (h HandlerSet) Refresh(c *gin.Context) {
	refreshToken, err := c.Cookie(refreshCookieName)
	if err != nil || refreshToken == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	token, err := h.auth.Refresh(c.Request.Context(), refreshToken)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

func (h HandlerSet) Me(c *gin.Context) {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	user, err := h.users.Get(c.Request.Context(), identity.UserID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, newUserResponse(user))
}

func (h HandlerSet) setRefreshCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(refreshCookieName, token, h.auth.RefreshTTLSeconds(), "/", "", true, true)
}

func (h HandlerSet) clearRefreshCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(refreshCookieName, "", -1, "/", "", true, true)
}
