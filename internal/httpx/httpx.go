package httpx

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/noteduco342/relay-backend/internal/apperrors"
)

type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func requestID(c *fiber.Ctx) string {
	if v := c.Locals("requestid"); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func Error(c *fiber.Ctx, status int, code string, message string) error {
	if message == "" {
		message = "Request failed"
	}
	return c.Status(status).JSON(ErrorResponse{
		Error:     message,
		Code:      code,
		RequestID: requestID(c),
	})
}

func BadRequest(c *fiber.Ctx, code string, message string) error {
	return Error(c, fiber.StatusBadRequest, code, message)
}

func Unauthorized(c *fiber.Ctx, code string, message string) error {
	return Error(c, fiber.StatusUnauthorized, code, message)
}

func Forbidden(c *fiber.Ctx, code string, message string) error {
	return Error(c, fiber.StatusForbidden, code, message)
}

func Internal(c *fiber.Ctx, code string) error {
	return Error(c, fiber.StatusInternalServerError, code, "Internal server error")
}

// StatusOf maps an error code to the HTTP status it is reported with.
func StatusOf(code apperrors.Code) int {
	switch code {
	case apperrors.CodeInvalidArgument:
		return fiber.StatusBadRequest
	case apperrors.CodeNotFound:
		return fiber.StatusNotFound
	case apperrors.CodeAlreadyExists:
		return fiber.StatusConflict
	case apperrors.CodePermissionDenied:
		return fiber.StatusForbidden
	case apperrors.CodeFailedPrecondition:
		return fiber.StatusConflict
	case apperrors.CodeDeadlineExceeded:
		return fiber.StatusGatewayTimeout
	case apperrors.CodeUnavailable:
		return fiber.StatusServiceUnavailable
	case apperrors.CodeResourceExhausted:
		return fiber.StatusTooManyRequests
	}
	return fiber.StatusInternalServerError
}

// FromError writes err as a JSON error. Typed failures keep their message;
// anything else is reported as an internal error without details.
func FromError(c *fiber.Ctx, err error) error {
	var ae *apperrors.AppError
	if !errors.As(err, &ae) {
		return Internal(c, "internal")
	}
	status := StatusOf(ae.Code)
	if status == fiber.StatusInternalServerError {
		return Internal(c, strings.ToLower(string(ae.Code)))
	}
	return Error(c, status, strings.ToLower(string(ae.Code)), ae.Message)
}

func LocalUUID(c *fiber.Ctx, key string) (uuid.UUID, error) {
	v := c.Locals(key)
	if v == nil {
		return uuid.Nil, fmt.Errorf("missing local %s", key)
	}
	id, ok := v.(uuid.UUID)
	if !ok {
		return uuid.Nil, fmt.Errorf("invalid local %s", key)
	}
	return id, nil
}

// ParamUUID parses a path parameter as a UUID.
func ParamUUID(c *fiber.Ctx, name string) (uuid.UUID, error) {
	return uuid.Parse(c.Params(name))
}
