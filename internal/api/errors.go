package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/bhargav676/intern/internal/apperr"
)

var statusByKind = map[apperr.Kind]int{
	apperr.KindValidation:     http.StatusBadRequest,
	apperr.KindAuthentication: http.StatusUnauthorized,
	apperr.KindAuthorization:  http.StatusForbidden,
	apperr.KindNotFound:       http.StatusNotFound,
	apperr.KindInternal:       http.StatusInternalServerError,
}

// NewHTTPErrorHandler renders every error returned by a handler as an
// ErrorResponse. Internal errors are logged and their detail withheld.
func NewHTTPErrorHandler(logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, body := render(err)
		if status >= http.StatusInternalServerError {
			logger.Error("Request failed",
				zap.String("method", c.Request().Method),
				zap.String("path", c.Path()),
				zap.Error(err))
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, body)
		}
		if err != nil {
			logger.Warn("Failed to write error response", zap.Error(err))
		}
	}
}

func render(err error) (int, ErrorResponse) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg := http.StatusText(he.Code)
		if s, ok := he.Message.(string); ok {
			msg = s
		}
		code := "request_failed"
		switch he.Code {
		case http.StatusNotFound:
			code = string(apperr.CodeNotFound)
		case http.StatusMethodNotAllowed:
			code = "method_not_allowed"
		case http.StatusBadRequest:
			code = string(apperr.CodeValidationFailed)
		case http.StatusUnauthorized:
			code = string(apperr.CodeUnauthorized)
		case http.StatusInternalServerError:
			code = string(apperr.CodeInternal)
		}
		return he.Code, ErrorResponse{Error: code, Message: msg}
	}

	e := apperr.As(err)
	status, ok := statusByKind[e.Kind]
	if !ok {
		status = http.StatusInternalServerError
	}
	if status == http.StatusInternalServerError {
		return status, ErrorResponse{Error: string(apperr.CodeInternal), Message: "Internal server error"}
	}
	return status, ErrorResponse{Error: string(e.Code), Message: e.Message}
}

// bind decodes and validates a request body
func bind(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return apperr.Validation(apperr.CodeValidationFailed, fmt.Sprintf("Invalid request format: %s", bindMessage(err)))
	}
	return c.Validate(req)
}

func bindMessage(err error) string {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if s, ok := he.Message.(string); ok {
			return s
		}
	}
	return "malformed body"
}
