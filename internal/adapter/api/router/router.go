package router

import (
	"gringochat/internal/adapter/api/handler"
	"gringochat/internal/adapter/api/middleware"

	"github.com/labstack/echo/v4"
)

func Setup(
	e *echo.Echo,
	chatHandler *handler.ChatHandler,
	unreadHandler *handler.UnreadHandler,
	authMiddleware *middleware.AuthMiddleware,
	rateLimitMiddleware *middleware.RateLimitMiddleware,
) {
	SetupChatRouter(e, chatHandler, unreadHandler, authMiddleware, rateLimitMiddleware)
	SetupHealthRouter(e)
}
