package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"community/database"
	"community/models"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Store is the part of database.Store the handlers depend on.
type Store interface {
	Insert(ctx context.Context, collection string, record any) (primitive.ObjectID, error)
	Query(ctx context.Context, collection string, filter bson.M, limit int64) ([]bson.D, error)
	SetFields(ctx context.Context, collection string, id primitive.ObjectID, fields bson.M) (int64, error)
	Diagnose(ctx context.Context, urlConfigured bool) database.Diagnostics
}

// Publisher receives notifications as they are created, for live delivery.
type Publisher interface {
	PublishNotification(user *string, payload any)
}

const defaultTimeout = 10 * time.Second

// Handler serves the HTTP API. All state lives in the injected store.
type Handler struct {
	store    Store
	notifier *Notifier
	timeout  time.Duration
	now      func() time.Time
	urlSet   bool
}

type Option func(*Handler)

// WithTimeout bounds every store call made while serving a request.
func WithTimeout(d time.Duration) Option {
	return func(h *Handler) { h.timeout = d }
}

// WithClock replaces time.Now, used for the upcoming-events filter.
func WithClock(now func() time.Time) Option {
	return func(h *Handler) { h.now = now }
}

// WithDatabaseURLSet tells the diagnostics endpoint whether the connection
// string was configured explicitly.
func WithDatabaseURLSet(set bool) Option {
	return func(h *Handler) { h.urlSet = set }
}

func New(store Store, feed Publisher, opts ...Option) *Handler {
	h := &Handler{
		store:    store,
		notifier: NewNotifier(store, feed),
		timeout:  defaultTimeout,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), h.timeout)
}

// bindBody validates the request body into dst and writes the error
// response itself when that fails.
func bindBody(c *gin.Context, dst any) bool {
	body, err := c.GetRawData()
	if err != nil {
		respondError(c, models.NewValidationError("body", "body_read", err.Error()))
		return false
	}
	if err := models.Bind(body, dst); err != nil {
		respondError(c, err)
		return false
	}
	return true
}

// respondError maps an error to its status code and JSON body.
func respondError(c *gin.Context, err error) {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Validation failed", "detail": verr.Fields})
	case errors.Is(err, database.ErrInvalidID):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
	case errors.Is(err, database.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
	case errors.Is(err, database.ErrStoreUnavailable):
		log.Error().Err(err).Str("path", c.FullPath()).Msg("store error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		log.Error().Err(err).Str("path", c.FullPath()).Msg("unexpected error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// queryLimit reads ?limit=, defaulting to 50 and clamped to [1, max].
func queryLimit(c *gin.Context, maxLimit int64) (int64, error) {
	const def = 50

	raw, ok := c.GetQuery("limit")
	if !ok || raw == "" {
		return min(def, maxLimit), nil
	}
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, models.NewValidationError("limit", "int_parsing", "Input should be a valid integer")
	}
	return clampLimit(n, maxLimit), nil
}

func clampLimit(n, maxLimit int64) int64 {
	if n < 1 {
		return 1
	}
	if n > maxLimit {
		return maxLimit
	}
	return n
}

// queryBool reads a boolean query parameter, accepting the usual spellings.
func queryBool(c *gin.Context, name string, def bool) (bool, error) {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return def, nil
	}
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "t", "yes", "y", "on":
		return true, nil
	case "0", "false", "f", "no", "n", "off":
		return false, nil
	}
	return false, models.NewValidationError(name, "bool_parsing", "Input should be a valid boolean")
}
