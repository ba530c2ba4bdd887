package handlers

import (
	"net/http"

	"community/document"
	"community/models"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// ListPosts serves GET /api/posts?tag=&limit=.
func (h *Handler) ListPosts(c *gin.Context) {
	limit, err := queryLimit(c, maxPostLimit)
	if err != nil {
		respondError(c, err)
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	docs, err := h.store.Query(ctx, models.PostCollection, PostFilter(c.Query("tag")), limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, document.SerializeAll(docs))
}

// CreatePost serves POST /api/posts and announces the new post to everyone.
func (h *Handler) CreatePost(c *gin.Context) {
	post := models.NewPost()
	if !bindBody(c, &post) {
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	id, err := h.store.Insert(ctx, models.PostCollection, post)
	if err != nil {
		respondError(c, err)
		return
	}

	if _, err := h.notifier.Announce(ctx, models.NotificationPost, post.Title, id); err != nil {
		log.Error().Err(err).Str("post_id", id.Hex()).Msg("post created but notification failed")
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": id.Hex()})
}
