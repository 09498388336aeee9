package handler

import (
	"errors"
	"net/http"

	"heelwa/internal/repository"
	"heelwa/internal/usecase"
	"heelwa/internal/validator"

	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type SuccessResponse struct {
	Message string `json:"message"`
}

// usecaseのエラーをHTTPステータスへ変換する
func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}

	//片側だけ適用された状態。詳細を添えて500で返す
	if ie, ok := usecase.AsInconsistentState(err); ok {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: ie.Error()})
	}

	switch {
	case errors.Is(err, usecase.ErrNotAuthenticated),
		errors.Is(err, usecase.ErrUnauthorized):
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})

	case errors.Is(err, usecase.ErrForbidden):
		return c.JSON(http.StatusForbidden, ErrorResponse{Error: "forbidden"})

	case errors.Is(err, repository.ErrNotFound),
		errors.Is(err, repository.ErrUserNotFound):
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "not found"})

	case errors.Is(err, usecase.ErrItemLocked),
		errors.Is(err, usecase.ErrCapExceeded),
		errors.Is(err, usecase.ErrInsufficientStock),
		errors.Is(err, usecase.ErrNotKept),
		errors.Is(err, usecase.ErrConflict),
		errors.Is(err, validator.ErrEmailAlreadyUsed):
		return c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})

	case errors.Is(err, usecase.ErrInvalidSelection),
		errors.Is(err, usecase.ErrInvalidPayment),
		errors.Is(err, usecase.ErrValidation),
		errors.Is(err, validator.ErrInvalidInput):
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}

	//500
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

//middleware.AuthJWT が c.Set("user_id", int64) した値を取り出す

func getUserIDFromContext(c echo.Context) (int64, bool) {
	v := c.Get("user_id")
	if v == nil {
		return 0, false
	}

	id, ok := v.(int64)
	if !ok {
		return 0, false
	}

	return id, true
}
