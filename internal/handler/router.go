package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/docuchat/docuchat/internal/middleware"
)

type RouterDeps struct {
	Auth      *AuthHandler
	Documents *DocumentHandler
	Chats     *ChatHandler
	JWTSecret []byte
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	api.POST("/auth/register", deps.Auth.Register)
	api.POST("/auth/login", deps.Auth.Login)

	authGroup := api.Group("")
	authGroup.Use(middleware.JWTAuth(deps.JWTSecret))

	authGroup.GET("/auth/me", deps.Auth.Me)

	authGroup.POST("/documents", deps.Documents.Upload)
	authGroup.GET("/documents", deps.Documents.List)
	authGroup.GET("/documents/:id", deps.Documents.Get)
	authGroup.GET("/documents/:id/download", deps.Documents.Download)
	authGroup.DELETE("/documents/:id", deps.Documents.Delete)

	authGroup.POST("/chats", deps.Chats.Create)
	authGroup.GET("/chats", deps.Chats.List)
	authGroup.GET("/chats/:id", deps.Chats.Get)
	authGroup.DELETE("/chats/:id", deps.Chats.Delete)
	authGroup.GET("/chats/:id/documents", deps.Chats.ListDocuments)
	authGroup.POST("/chats/:id/documents/:docId", deps.Chats.LinkDocument)
	authGroup.DELETE("/chats/:id/documents/:docId", deps.Chats.UnlinkDocument)
	authGroup.GET("/chats/:id/messages", deps.Chats.ListMessages)
	authGroup.POST("/chats/:id/messages", middleware.RateLimit(time.Second), deps.Chats.SendMessage)
}
