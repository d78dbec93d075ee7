package controller

import (
	"delivery-scheduler-be/internal/dto"
	"delivery-scheduler-be/internal/pkg/serverutils"
	"delivery-scheduler-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IScheduleController interface {
	RegisterRoutes(r fiber.Router)
	ListPolicies(ctx *fiber.Ctx) error
	GetPolicy(ctx *fiber.Ctx) error
	UpdatePolicy(ctx *fiber.Ctx) error
	ListAudit(ctx *fiber.Ctx) error
	Preview(ctx *fiber.Ctx) error
}

type scheduleController struct {
	service service.IAdminService
}

func NewScheduleController(service service.IAdminService) IScheduleController {
	return &scheduleController{service: service}
}

func (c *scheduleController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/admin/schedule")

	h.Get("/policies", c.ListPolicies)
	h.Get("/policies/:category", c.GetPolicy)
	h.Put("/policies/:category", c.UpdatePolicy)
	h.Get("/audit", c.ListAudit)
	h.Post("/preview", c.Preview)
}

func (c *scheduleController) ListPolicies(ctx *fiber.Ctx) error {
	res, err := c.service.ListPolicies(ctx.UserContext())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Schedule policies", res))
}

func (c *scheduleController) GetPolicy(ctx *fiber.Ctx) error {
	res, err := c.service.GetPolicy(ctx.UserContext(), ctx.Params("category"))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Schedule policy", res))
}

func (c *scheduleController) UpdatePolicy(ctx *fiber.Ctx) error {
	var req dto.UpdateSchedulePolicyRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}

	res, err := c.service.UpdatePolicy(ctx.UserContext(), ctx.Params("category"), req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Schedule policy updated", res))
}

func (c *scheduleController) ListAudit(ctx *fiber.Ctx) error {
	var req dto.SchedulePolicyAuditRequest
	if err := parseQuery(ctx, &req); err != nil {
		return err
	}

	res, err := c.service.ListPolicyAudit(ctx.UserContext(), req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Schedule policy audit", res))
}

func (c *scheduleController) Preview(ctx *fiber.Ctx) error {
	var req dto.SchedulePreviewRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}

	res, err := c.service.PreviewSchedule(ctx.UserContext(), req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Delivery schedule preview", res))
}
