package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Archanasadhasivam/AgriPricePredict/pkg/logger"
	jsonres "github.com/Archanasadhasivam/AgriPricePredict/pkg/response"

	"github.com/labstack/echo/v4"
)

// ErrorHandler renders errors that escape handlers, such as unknown routes
// or recovered panics, in the same envelope the middlewares use.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := http.StatusText(code)

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if m, ok := he.Message.(string); ok {
			message = m
		} else {
			message = http.StatusText(code)
		}
	}

	if code >= http.StatusInternalServerError {
		logger.Error("Unhandled request error", "path", c.Path(), "error", err.Error())
	}

	status := strings.ToUpper(strings.ReplaceAll(http.StatusText(code), " ", "_"))
	if status == "" {
		status = "ERROR"
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.JSON(code, jsonres.Error(status, message, nil))
	}
	if err != nil {
		logger.Error("Failed to write error response", err)
	}
}
