package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

// echo.Contextに入れるキー
const (
	CtxRequestIDKey = "request_id" // string
)

// X-Request-IDがあればそのまま使い、無ければuuidを振る。
func RequestID() echo.MiddlewareFunc {
	return echomw.RequestIDWithConfig(echomw.RequestIDConfig{
		Generator: uuid.NewString,
		RequestIDHandler: func(c echo.Context, id string) {
			c.Set(CtxRequestIDKey, id)
		},
	})
}

func requestIDFrom(c echo.Context) string {
	if v, ok := c.Get(CtxRequestIDKey).(string); ok && v != "" {
		return v
	}
	return "unknown"
}
