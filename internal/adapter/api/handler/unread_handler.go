package handler

import (
	"github.com/labstack/echo/v4"

	"gringochat/internal/usecase"
	"gringochat/pkg/response"
)

type UnreadHandler struct {
	unreadUseCase *usecase.UnreadUseCase
}

func NewUnreadHandler(unreadUseCase *usecase.UnreadUseCase) *UnreadHandler {
	return &UnreadHandler{
		unreadUseCase: unreadUseCase,
	}
}

// HasUnread answers the hot "badge dot" query for the authenticated
// principal.
func (h *UnreadHandler) HasUnread(c echo.Context) error {
	principalID := c.Get("uid").(string)

	unreadStatus, err := h.unreadUseCase.HasUnread(c.Request().Context(), principalID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, unreadStatus)
}

// UnreadSummary returns the full per-conversation accounting for badge
// counts.
func (h *UnreadHandler) UnreadSummary(c echo.Context) error {
	principalID := c.Get("uid").(string)

	summary, err := h.unreadUseCase.UnreadSummary(c.Request().Context(), principalID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, summary)
}
