// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package server

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/wneessen/dist2coast/internal/estimate"
	"github.com/wneessen/dist2coast/internal/grid"
)

// APIError is a structured error response.
type APIError struct {
	Status    int    `json:"status"`
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// newError builds a JSON error response with a request ID.
func newError(c *fiber.Ctx, status int, code string, message string) error {
	reqID, _ := c.Locals("requestid").(string)
	return c.Status(status).JSON(APIError{
		Status:    status,
		Code:      code,
		Message:   message,
		RequestID: reqID,
	})
}

func errBadRequest(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusBadRequest, "bad_request", msg)
}

// classify maps an estimation error to its HTTP status and error code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, grid.ErrNotFound):
		return fiber.StatusNotFound, "not_found"
	case errors.Is(err, estimate.ErrInvalidCoordinate):
		return fiber.StatusBadRequest, "bad_request"
	case errors.Is(err, estimate.ErrDegenerateWeights), errors.Is(err, estimate.ErrNegativeDistance),
		errors.Is(err, estimate.ErrInvalidDistance):
		return fiber.StatusUnprocessableEntity, "unprocessable"
	default:
		return fiber.StatusInternalServerError, "internal_error"
	}
}

// errorHandler renders errors that escape a handler, like timeouts, as APIError.
func errorHandler(c *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code := "http_error"
		switch fiberErr.Code {
		case fiber.StatusNotFound:
			code = "not_found"
		case fiber.StatusRequestTimeout:
			code = "timeout"
		case fiber.StatusRequestEntityTooLarge:
			code = "too_large"
		case fiber.StatusMethodNotAllowed:
			code = "method_not_allowed"
		}
		return newError(c, fiberErr.Code, code, fiberErr.Message)
	}
	return newError(c, fiber.StatusInternalServerError, "internal_error", err.Error())
}
