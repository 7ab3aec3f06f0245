package controller

import "github.com/labstack/echo/v4"

type IngestController interface {
	Upload(c echo.Context) error
	Status(c echo.Context) error
	Delete(c echo.Context) error
}
