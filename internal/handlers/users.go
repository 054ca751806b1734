package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"estatescout/internal/middleware"
	"estatescout/internal/models"
)

type profileUpdateRequest struct {
	Name           string `json:"name" binding:"omitempty,max=120"`
	Phone          string `json:"phone" binding:"omitempty,max=32"`
	ProfilePicture string `json:"profilePicture" binding:"omitempty,url"`
}

type profileResponse struct {
	userResponse
	Properties []propertyResponse `json:"properties"`
}

func (h HandlerSet) GetProfile(c *gin.Context) {
	profile, err := h.users.Profile(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	properties := make([]propertyResponse, 0, len(profile.Properties))
	for _, p := range profile.Properties {
		properties = append(properties, newPropertyResponse(models.PropertyWithOwner{Property: p}))
	}

	c.JSON(http.StatusOK, profileResponse{
		userResponse: newUserResponse(profile.User),
		Properties:   properties,
	})
}

func (h HandlerSet) UpdateProfile(c *gin.Context) {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	var req profileUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	user, err := h.users.Update(c.Request.Context(), identity, c.Param("id"), models.ProfileUpdate{
		Name:           req.Name,
		Phone:          req.Phone,
		ProfilePicture: req.ProfilePicture,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, newUserResponse(user))
}

func (h HandlerSet) DeleteUser(c *gin.Context) {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	if err := h.users.Delete(c.Request.Context(), identity, c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}

	if identity.UserID == c.Param("id") {
		h.clearRefreshCookie(c)
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}
