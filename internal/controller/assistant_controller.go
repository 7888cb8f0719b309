package controller

import (
	"errors"

	"ai-docs-assistant-be/internal/dto"
	"ai-docs-assistant-be/internal/pkg/serverutils"
	"ai-docs-assistant-be/internal/service"
	"ai-docs-assistant-be/pkg/resolver"

	"github.com/gofiber/fiber/v2"
)

type IAssistantController interface {
	RegisterRoutes(r fiber.Router)
	Ask(ctx *fiber.Ctx) error
	Health(ctx *fiber.Ctx) error
}

type assistantController struct {
	assistantService service.IAssistantService
}

func NewAssistantController(assistantService service.IAssistantService) IAssistantController {
	return &assistantController{
		assistantService: assistantService,
	}
}

func (c *assistantController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/assistant/v1")
	h.Post("/ask", c.Ask)
	h.Get("/health", c.Health)
}

func (c *assistantController) Ask(ctx *fiber.Ctx) error {
	var req dto.AskRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.assistantService.Ask(ctx.Context(), &req)
	if err != nil {
		if errors.Is(err, resolver.ErrInvalidQuery) {
			return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
		}
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success resolve question", res))
}

func (c *assistantController) Health(ctx *fiber.Ctx) error {
	res := c.assistantService.Health(ctx.Context())
	return ctx.JSON(serverutils.SuccessResponse("Service health", res))
}
