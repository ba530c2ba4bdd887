package handlers

import (
	"net/http"

	"community/document"
	"community/models"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// ListEvents serves GET /api/events?upcoming=&limit=. Upcoming defaults to
// true and compares start_time with the time of the request.
func (h *Handler) ListEvents(c *gin.Context) {
	upcoming, err := queryBool(c, "upcoming", true)
	if err != nil {
		respondError(c, err)
		return
	}
	limit, err := queryLimit(c, maxEventLimit)
	if err != nil {
		respondError(c, err)
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	docs, err := h.store.Query(ctx, models.EventCollection, EventFilter(upcoming, h.now()), limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, document.SerializeAll(docs))
}

func (h *Handler) CreateEvent(c *gin.Context) {
	event := models.NewEvent()
	if !bindBody(c, &event) {
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	id, err := h.store.Insert(ctx, models.EventCollection, event)
	if err != nil {
		respondError(c, err)
		return
	}

	if _, err := h.notifier.Announce(ctx, models.NotificationEvent, event.Title, id); err != nil {
		log.Error().Err(err).Str("event_id", id.Hex()).Msg("event created but notification failed")
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": id.Hex()})
}
