package main

import (
	"log"

	"blueme/internal/api"
	"blueme/internal/auth"
	"blueme/internal/chat"
	"blueme/internal/config"
	"blueme/internal/directory"
	"blueme/internal/presence"
	"blueme/internal/repo"
	"blueme/internal/store"
	"blueme/internal/ws"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.LoadConfig()

	st, err := store.Open(cfg)
	if err != nil {
		log.Fatalf("Failed to open storage: %v", err)
	}

	repository := repo.New(st)
	sessionJWT := auth.NewJWT(cfg.JWTSecret, cfg.SessionTTL)
	authService := auth.NewService(repository, sessionJWT)
	presenceService := presence.NewService(repository)
	chatService := chat.NewService(repository)
	directoryService := directory.NewService(repository, presenceService, chatService)

	hub := ws.NewHub()
	go hub.Run()

	authHandler := api.NewAuthHandler(authService, presenceService, sessionJWT)
	contactHandler := api.NewContactHandler(directoryService)
	messageHandler := api.NewMessageHandler(chatService, presenceService, hub)
	userHandler := api.NewUserHandler(repository, directoryService, presenceService, hub)
	profileHandler := api.NewProfileHandler(repository)
	uploadHandler := api.NewUploadHandler(repository, cfg.UploadDir)

	r := gin.Default()

	// CORS Middleware
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Auth Routes
	r.POST("/auth/register", authHandler.Register)
	r.POST("/auth/login", authHandler.Login)
	r.POST("/auth/logout", authHandler.Logout)

	// Uploaded profile pictures
	r.Static("/uploads", cfg.UploadDir)

	// Everything below requires a session
	authorized := r.Group("/", auth.RequireSession(sessionJWT))
	{
		authorized.GET("/contacts", contactHandler.GetContacts)
		authorized.POST("/contacts", contactHandler.AddContact)

		authorized.GET("/messages", messageHandler.GetConversation)
		authorized.POST("/messages", messageHandler.SendMessage)

		authorized.GET("/users/search", userHandler.SearchUsers)
		authorized.GET("/users/status", userHandler.GetStatus)
		authorized.POST("/users/status", userHandler.Heartbeat)
		authorized.GET("/users/:id", userHandler.GetUser)

		authorized.GET("/profile", profileHandler.GetProfile)
		authorized.PUT("/profile", profileHandler.UpdateProfile)

		authorized.POST("/upload/profile-picture", uploadHandler.UploadProfilePicture)

		authorized.GET("/ws", func(c *gin.Context) {
			hub.ServeWs(auth.CallerID(c), c.Writer, c.Request)
		})
	}

	log.Printf("Server starting on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}
