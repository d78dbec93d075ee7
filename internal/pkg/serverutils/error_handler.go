package serverutils

import (
	"errors"

	ierr "delivery-scheduler-be/internal/errors"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware turns errors returned by handlers into the response envelope
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}
		return HandleError(ctx, err)
	}
}

// HandleError writes err with the status its sentinel maps to
func HandleError(ctx *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Code, fiberErr.Message))
	}

	status := ierr.HTTPStatusFromErr(err)
	resp := ErrorResponse(status, ierr.UserMessage(err))
	if details := ierr.ReportableDetails(err); len(details) > 0 {
		resp.Details = details
	}
	return ctx.Status(status).JSON(resp)
}
