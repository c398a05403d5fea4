package handlers

import (
	"errors"

	"questboard/services"
	"questboard/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// fail renders a service error. Unknown errors are logged and reported as a
// generic 500.
func (h *Handler) fail(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return utils.Error(c, fe.Code, fe.Message)
	}

	status := statusFor(err)
	if status == fiber.StatusInternalServerError {
		h.log.Error("Request failed",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err))
		return utils.Error(c, status, "Internal Server Error")
	}
	return utils.Error(c, status, err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		return fiber.StatusBadRequest
	case errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrInvalidToken):
		return fiber.StatusUnauthorized
	case errors.Is(err, services.ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, services.ErrQuestNotFound),
		errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrNotParticipant):
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrAlreadyCompleted),
		errors.Is(err, services.ErrNotCompleted),
		errors.Is(err, services.ErrAlreadyCleared),
		errors.Is(err, services.ErrAlreadyReviewed),
		errors.Is(err, services.ErrCapacityTooLow),
		errors.Is(err, services.ErrEmailTaken):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}
