package controller

import (
	"delivery-scheduler-be/internal/dto"
	"delivery-scheduler-be/internal/pkg/serverutils"
	"delivery-scheduler-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IPauseController interface {
	RegisterRoutes(r fiber.Router)
	CreatePause(ctx *fiber.Ctx) error
	ListPauses(ctx *fiber.Ctx) error
	GetPause(ctx *fiber.Ctx) error
	RetryPause(ctx *fiber.Ctx) error
	Reactivate(ctx *fiber.Ctx) error
}

type pauseController struct {
	service     service.IAdminService
	idempotency fiber.Handler
}

// NewPauseController guards the bulk endpoints with idempotency
func NewPauseController(service service.IAdminService, idempotency fiber.Handler) IPauseController {
	return &pauseController{
		service:     service,
		idempotency: idempotency,
	}
}

func (c *pauseController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/admin/pauses")

	h.Post("/", c.idempotency, c.CreatePause)
	h.Get("/", c.ListPauses)
	h.Post("/reactivate", c.idempotency, c.Reactivate)
	h.Get("/:id", c.GetPause)
	h.Post("/:id/retry", c.idempotency, c.RetryPause)
}

// Bulk endpoints answer 200 even when rows fail; the breakdown is in the body

func (c *pauseController) CreatePause(ctx *fiber.Ctx) error {
	var req dto.CreatePauseRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}

	res, err := c.service.CreatePause(ctx.UserContext(), req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Administrative pause applied", res))
}

func (c *pauseController) ListPauses(ctx *fiber.Ctx) error {
	var req dto.PauseRecordListRequest
	if err := parseQuery(ctx, &req); err != nil {
		return err
	}

	res, err := c.service.ListPauseRecords(ctx.UserContext(), req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Pause records", res))
}

func (c *pauseController) GetPause(ctx *fiber.Ctx) error {
	id, err := parseIdParam(ctx, "id")
	if err != nil {
		return err
	}

	res, err := c.service.GetPauseRecord(ctx.UserContext(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Pause record", res))
}

func (c *pauseController) RetryPause(ctx *fiber.Ctx) error {
	id, err := parseIdParam(ctx, "id")
	if err != nil {
		return err
	}

	res, err := c.service.RetryPause(ctx.UserContext(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Administrative pause retried", res))
}

func (c *pauseController) Reactivate(ctx *fiber.Ctx) error {
	var req dto.ReactivateRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}

	res, err := c.service.Reactivate(ctx.UserContext(), req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Reactivation processed", res))
}
