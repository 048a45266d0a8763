package router

import (
	"github.com/labstack/echo/v4"

	"gringochat/internal/adapter/api/handler"
	"gringochat/internal/adapter/api/middleware"
)

// SetupChatRouter wires all conversation and message routes. All of them
// require authentication; the write routes are additionally rate limited
// per principal.
func SetupChatRouter(
	e *echo.Echo,
	chatHandler *handler.ChatHandler,
	unreadHandler *handler.UnreadHandler,
	authMiddleware *middleware.AuthMiddleware,
	rateLimitMiddleware *middleware.RateLimitMiddleware,
) {
	chatGroup := e.Group("/v1/chats")
	chatGroup.Use(authMiddleware.Authenticate)

	// Unread queries. Registered before /:id so the static segment wins.
	chatGroup.GET("/unread", unreadHandler.HasUnread)            // GET /v1/chats/unread - has-unread existence check
	chatGroup.GET("/unread/summary", unreadHandler.UnreadSummary) // GET /v1/chats/unread/summary - badge counts

	// Conversation management
	chatGroup.POST("", chatHandler.CreateConversation, rateLimitMiddleware.Limit) // POST /v1/chats - create conversation
	chatGroup.GET("", chatHandler.ListConversations)                              // GET /v1/chats - caller's active conversations
	chatGroup.GET("/:id", chatHandler.GetConversation)                            // GET /v1/chats/:id
	chatGroup.PATCH("/:id/status", chatHandler.SetStatus)                         // PATCH /v1/chats/:id/status
	chatGroup.DELETE("/:id", chatHandler.DeleteConversation)                      // DELETE /v1/chats/:id - cascade delete

	// Participant management
	chatGroup.POST("/:id/participants", chatHandler.AddParticipant)                   // POST /v1/chats/:id/participants
	chatGroup.DELETE("/:id/participants/:principalId", chatHandler.RemoveParticipant) // DELETE /v1/chats/:id/participants/:principalId

	// Message management
	chatGroup.POST("/:id/messages", chatHandler.SendMessage, rateLimitMiddleware.Limit) // POST /v1/chats/:id/messages - send message
	chatGroup.GET("/:id/messages", chatHandler.ListMessages)                            // GET /v1/chats/:id/messages
	chatGroup.PUT("/:id/read", chatHandler.MarkRead)                                    // PUT /v1/chats/:id/read - acknowledge backlog
}
