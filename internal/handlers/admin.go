package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"estatescout/internal/middleware"
)

// SweepOrphans runs the orphan sweep inline instead of waiting for the
// daily schedule.
func (h HandlerSet) SweepOrphans(c *gin.Context) {
	removed, err := h.properties.SweepOrphans(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}

	identity, _ := middleware.CurrentIdentity(c)
	h.log.Info().Str("actor_id", identity.UserID).Int("removed", removed).Msg("orphan sweep run")
	c.JSON(http.StatusOK, gin.H{"message": "Sweep finished", "removed": removed})
}
