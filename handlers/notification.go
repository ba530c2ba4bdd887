package handlers

import (
	"net/http"

	"community/database"
	"community/document"
	"community/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
)

// ListNotifications serves GET /api/notifications?user=&unread_only=&limit=.
func (h *Handler) ListNotifications(c *gin.Context) {
	unreadOnly, err := queryBool(c, "unread_only", false)
	if err != nil {
		respondError(c, err)
		return
	}
	limit, err := queryLimit(c, maxNotificationLimit)
	if err != nil {
		respondError(c, err)
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	filter := NotificationFilter(c.Query("user"), unreadOnly)
	docs, err := h.store.Query(ctx, models.NotificationCollection, filter, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, document.SerializeAll(docs))
}

// MarkNotificationRead serves POST /api/notifications/read.
//
// The store reports matched documents, so marking an already read
// notification again succeeds; an id that matches nothing is reported as
// not found.
func (h *Handler) MarkNotificationRead(c *gin.Context) {
	var req models.MarkReadRequest
	if !bindBody(c, &req) {
		return
	}

	id, err := database.ParseID(req.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	matched, err := h.store.SetFields(ctx, models.NotificationCollection, id, bson.M{"is_read": true})
	if err != nil {
		respondError(c, err)
		return
	}
	if matched == 0 {
		respondError(c, database.ErrNotFound)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
