package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Community API is running"})
}

func (h *Handler) Health(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}

// TestDatabase reports store connectivity. It always answers 200; problems
// show up in the status strings.
func (h *Handler) TestDatabase(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	c.JSON(http.StatusOK, h.store.Diagnose(ctx, h.urlSet))
}
