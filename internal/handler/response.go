package handler

import (
	"net/http"

	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// usecaseの結果をHTTPステータスに変換する（ここだけで行う）
func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}

	switch usecase.Classify(err) {
	case usecase.ResultNotFound:
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
	case usecase.ResultInvalid:
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}

	//500
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}
