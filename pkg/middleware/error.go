package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const internalErrorMessage = "Internal server error"

type ErrorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler renders every error as {"error": "..."}.
// Messages of 5xx responses are replaced by a generic one and logged.
func NewHTTPErrorHandler(log *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		code := http.StatusInternalServerError
		var body interface{} = ErrorResponse{Error: internalErrorMessage}

		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			switch m := he.Message.(type) {
			case string:
				body = ErrorResponse{Error: m}
			case error:
				body = ErrorResponse{Error: m.Error()}
			case nil:
				body = ErrorResponse{Error: http.StatusText(code)}
			default:
				body = m
			}
		}
		if code >= http.StatusInternalServerError {
			log.Error("request failed",
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", code),
				zap.Error(err))
			body = ErrorResponse{Error: internalErrorMessage}
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(code)
		} else {
			err = c.JSON(code, body)
		}
		if err != nil {
			log.Warn("write error response", zap.Error(err))
		}
	}
}
