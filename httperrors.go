package placement

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
)

// errorResponse is the uniform error body for every endpoint.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// statusFromError maps a domain error to an HTTP status. Rich errors carry a
// category; anything unrecognized is a 500 so internals never leak as client
// faults.
func statusFromError(err error) int {
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		return fiber.StatusInternalServerError
	}

	if rich.Code >= 400 {
		return rich.Code
	}

	switch rich.Category {
	case goerrors.CategoryAuth:
		return fiber.StatusUnauthorized
	case goerrors.CategoryAuthz:
		return fiber.StatusForbidden
	case goerrors.CategoryNotFound:
		return fiber.StatusNotFound
	case goerrors.CategoryConflict:
		return fiber.StatusConflict
	case goerrors.CategoryValidation, goerrors.CategoryBadInput:
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

// writeError renders the error body. Internal errors get a fixed message;
// everything else reports the domain error's own message and text code.
func writeError(c *fiber.Ctx, err error) error {
	status := statusFromError(err)

	body := errorResponse{Error: "Internal server error"}
	var rich *goerrors.Error
	if goerrors.As(err, &rich) && status < fiber.StatusInternalServerError {
		body.Error = rich.Message
		body.Code = rich.TextCode
	}

	return c.Status(status).JSON(body)
}

// NewErrorHandler builds the app-level fiber error handler. Handlers return
// domain errors; this is the single place they become HTTP responses.
func NewErrorHandler(logger Logger) fiber.ErrorHandler {
	if logger == nil {
		logger = defLogger{}
	}

	return func(c *fiber.Ctx, err error) error {
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return c.Status(fiberErr.Code).JSON(errorResponse{Error: fiberErr.Message})
		}

		if statusFromError(err) >= fiber.StatusInternalServerError {
			logger.Error("%s %s failed: %v", c.Method(), c.Path(), err)
		}

		return writeError(c, err)
	}
}
