package server

import (
	"github.com/labstack/echo/v4"
)

// ルートを持つhandler
type RouteRegistrar interface {
	RegisterRoutes(e *echo.Echo)
}

func RegisterRoutes(e *echo.Echo, hs ...RouteRegistrar) {
	for _, h := range hs {
		h.RegisterRoutes(e)
	}
}
