package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/gastroclinic/clinic/internal/platform/db"
	"github.com/gastroclinic/clinic/internal/platform/schema"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Message string              `json:"message"`
	Errors  []schema.FieldError `json:"errors,omitempty"`
}

const internalMessage = "internal server error"

// resolve maps an error onto a status code and client-safe body.
func resolve(err error) (int, ErrorBody) {
	var (
		ve *schema.ValidationError
		he *echo.HTTPError
	)
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, ErrorBody{Message: "validation failed", Errors: ve.Errors}
	case db.IsNotFound(err):
		return http.StatusNotFound, ErrorBody{Message: "not found"}
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, ErrorBody{Message: "request timed out"}
	case errors.As(err, &he):
		if he.Code >= 500 {
			return he.Code, ErrorBody{Message: internalMessage}
		}
		return he.Code, ErrorBody{Message: fmt.Sprint(he.Message)}
	default:
		return http.StatusInternalServerError, ErrorBody{Message: internalMessage}
	}
}

// ErrorHandler renders every failure as {message, errors?}. Server-side
// failures are logged with their cause; the client only sees a generic
// message.
func ErrorHandler(logger zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, body := resolve(err)
		if code >= 500 {
			evt := logger.Error().Err(err).
				Str("request_id", requestID(c)).
				Str("method", c.Request().Method).
				Str("path", c.Request().URL.Path)
			var ce *db.ConstraintError
			if errors.As(err, &ce) {
				evt = evt.Str("constraint", ce.Constraint).Str("kind", ce.Kind).Str("table", ce.Table)
			}
			evt.Msg("request failed")
		}

		var werr error
		if c.Request().Method == http.MethodHead {
			werr = c.NoContent(code)
		} else {
			werr = c.JSON(code, body)
		}
		if werr != nil {
			logger.Error().Err(werr).Str("request_id", requestID(c)).Msg("write error response")
		}
	}
}
