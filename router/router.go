package router

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func New(
	e *echo.Echo,
	ingestCtrl interface {
		Upload(echo.Context) error
		Status(echo.Context) error
		Delete(echo.Context) error
	},
	chatCtrl interface {
		Chat(echo.Context) error
		History(echo.Context) error
		Clear(echo.Context) error
	},
	healthCtrl interface{ Health(echo.Context) error },
) *echo.Echo {
	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"message": "ragchat backend is running"})
	})
	e.GET("/health", healthCtrl.Health)

	e.POST("/upload-files", ingestCtrl.Upload)
	e.GET("/upload-status/:job_id", ingestCtrl.Status)
	e.DELETE("/jobs/:job_id", ingestCtrl.Delete)

	e.POST("/chat", chatCtrl.Chat)
	e.GET("/chat/history/:session_id", chatCtrl.History)
	e.DELETE("/chat/clear/:session_id", chatCtrl.Clear)

	return e
}
