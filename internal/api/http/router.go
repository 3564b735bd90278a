package http

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func SetupRouter(roomController *RoomController) *gin.Engine {
	router := gin.Default()

	config := cors.DefaultConfig()
	config.AllowAllOrigins = true
	config.AllowHeaders = []string{
		"Authorization",
		"Content-Type",
		"Origin",
		"Accept",
	}
	config.AllowMethods = []string{"GET", "POST", "HEAD", "OPTIONS"}
	router.Use(cors.New(config))

	router.GET("/healthz", func(ctx *gin.Context) {
		ctx.JSON(200, gin.H{"status": "ok"})
	})

	// Index. The actual call UI lives in a separate front-end; invalid room
	// names land back here.
	router.GET("/", func(ctx *gin.Context) {
		ctx.JSON(200, gin.H{"service": "talkroom"})
	})

	if roomController != nil {
		router.GET("/ws", roomController.ServeWS)

		api := router.Group("/api")
		api.GET("/ice-servers", roomController.ICEServers)
		api.GET("/rooms/:roomID/members", roomController.ListMembers)

		// Room-entry page route. Static siblings above take priority.
		router.GET("/:room", roomController.RoomEntry)
	}

	return router
}
