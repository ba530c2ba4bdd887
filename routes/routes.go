package routes

import (
	"net/http"
	"slices"
	"strings"
	"time"

	"community/handlers"
	"community/middleware"
	"community/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// SetupRouter builds the engine with every route of the API. hub may be nil,
// in which case /ws is not served.
func SetupRouter(h *handlers.Handler, hub *websocket.Manager, origins []string) *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestLogger(), middleware.Recovery())
	router.Use(cors.New(corsConfig(origins)))

	router.GET("/", h.Root)
	router.GET("/health", h.Health)
	router.GET("/test", h.TestDatabase)

	api := router.Group("/api")

	// Posts
	api.GET("/posts", h.ListPosts)
	api.POST("/posts", h.CreatePost)

	// Events
	api.GET("/events", h.ListEvents)
	api.POST("/events", h.CreateEvent)

	// Notifications
	api.GET("/notifications", h.ListNotifications)
	api.POST("/notifications/read", h.MarkNotificationRead)

	// Users
	api.GET("/users", h.ListUsers)
	api.POST("/users", h.CreateUser)

	if hub != nil {
		router.GET("/ws", gin.WrapF(websocket.Handler(hub)))
	}

	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Endpoint not found",
				"path":  c.Request.URL.Path,
			})
			return
		}
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})

	return router
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "X-Requested-With", middleware.RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", "Content-Type", middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}
