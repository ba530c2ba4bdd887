package handlers

import (
	"net/http"

	"community/document"
	"community/models"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ListUsers(c *gin.Context) {
	limit, err := queryLimit(c, maxUserLimit)
	if err != nil {
		respondError(c, err)
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	docs, err := h.store.Query(ctx, models.UserCollection, nil, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, document.SerializeAll(docs))
}

// CreateUser stores a user. Username uniqueness is left to the database
// indexes, if any.
func (h *Handler) CreateUser(c *gin.Context) {
	user := models.NewUser()
	if !bindBody(c, &user) {
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	id, err := h.store.Insert(ctx, models.UserCollection, user)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": id.Hex()})
}
