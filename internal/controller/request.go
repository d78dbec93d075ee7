package controller

import (
	ierr "delivery-scheduler-be/internal/errors"
	"delivery-scheduler-be/internal/validator"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func parseBody(ctx *fiber.Ctx, req interface{}) error {
	if err := ctx.BodyParser(req); err != nil {
		return ierr.WithError(err).
			WithHint("Invalid request body").
			Mark(ierr.ErrValidation)
	}
	return validator.ValidateRequest(req)
}

func parseQuery(ctx *fiber.Ctx, req interface{}) error {
	if err := ctx.QueryParser(req); err != nil {
		return ierr.WithError(err).
			WithHint("Invalid query parameters").
			Mark(ierr.ErrValidation)
	}
	return validator.ValidateRequest(req)
}

func parseIdParam(ctx *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Params(name))
	if err != nil {
		return uuid.Nil, ierr.WithError(err).
			WithHint("Invalid " + name).
			Mark(ierr.ErrValidation)
	}
	return id, nil
}
