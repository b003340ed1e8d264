package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
)

type errorBody struct {
	Error string `json:"error"`
}

// panicを拾って500を返す。中身はログにだけ出す。
func Recover(log zerolog.Logger) echo.MiddlewareFunc {
	return echomw.RecoverWithConfig(echomw.RecoverConfig{
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			log.Error().
				Str("request_id", requestIDFrom(c)).
				Str("method", c.Request().Method).
				Str("path", c.Path()).
				Str("panic", err.Error()).
				Bytes("stack", stack).
				Msg("request panicked")

			if c.Response().Committed {
				return nil
			}
			return c.JSON(http.StatusInternalServerError, errorBody{Error: "internal error"})
		},
	})
}
