package controllerImp

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"ragchat/entities"
	"ragchat/pkg/chat/service"
)

type ChatCtrl struct{ svc service.ChatService }

func New(svc service.ChatService) *ChatCtrl { return &ChatCtrl{svc} }

type chatReq struct {
	SessionID string `json:"session_id"`
	JobID     string `json:"job_id"`
	Message   string `json:"message"`
}

func (h *ChatCtrl) Chat(c echo.Context) error {
	var req chatReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "bad json"})
	}
	res, err := h.svc.Chat(c.Request().Context(), req.SessionID, req.JobID, req.Message)
	if err != nil {
		return c.JSON(errStatus(err), map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, res)
}

func (h *ChatCtrl) History(c echo.Context) error {
	sessionID := c.Param("session_id")
	return c.JSON(http.StatusOK, map[string]any{
		"session_id": sessionID,
		"history":    h.svc.History(sessionID),
	})
}

func (h *ChatCtrl) Clear(c echo.Context) error {
	sessionID := c.Param("session_id")
	h.svc.Clear(sessionID)
	return c.JSON(http.StatusOK, map[string]string{
		"session_id": sessionID,
		"message":    "history cleared",
	})
}

func errStatus(err error) int {
	var verr *entities.ValidationError
	var nferr *entities.NotFoundError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest
	case errors.As(err, &nferr):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
