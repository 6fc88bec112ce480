package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/hopehands/volunteer-backend/internal/dto"
	"github.com/hopehands/volunteer-backend/internal/services"
)

type VolunteerHandler struct {
	volunteerService *services.VolunteerService
}

func NewVolunteerHandler(volunteerService *services.VolunteerService) *VolunteerHandler {
	return &VolunteerHandler{volunteerService: volunteerService}
}

// Signup handles the public application form. No auth required.
func (h *VolunteerHandler) Signup(c *fiber.Ctx) error {
	var req dto.SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	resp, err := h.volunteerService.Signup(&req)
	if err != nil {
		var verr *services.ValidationError
		if errors.As(err, &verr) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: "Validation failed", Fields: verr.Fields,
			})
		}
		if errors.Is(err, services.ErrEmailExists) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to create application",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(resp)
}

func (h *VolunteerHandler) List(c *fiber.Ctx) error {
	resp, err := h.volunteerService.List()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch volunteers",
		})
	}
	return c.JSON(resp)
}

func (h *VolunteerHandler) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid volunteer ID",
		})
	}

	resp, err := h.volunteerService.Get(id)
	if err != nil {
		if errors.Is(err, services.ErrVolunteerNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch volunteer",
		})
	}
	return c.JSON(resp)
}

func (h *VolunteerHandler) Update(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid volunteer ID",
		})
	}

	var req dto.UpdateVolunteerRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	resp, err := h.volunteerService.Update(id, &req)
	if err != nil {
		var verr *services.ValidationError
		if errors.As(err, &verr) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: "Validation failed", Fields: verr.Fields,
			})
		}
		if errors.Is(err, services.ErrVolunteerNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		if errors.Is(err, services.ErrEmailExists) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to update volunteer",
		})
	}
	return c.JSON(resp)
}

func (h *VolunteerHandler) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid volunteer ID",
		})
	}

	if err := h.volunteerService.Delete(id); err != nil {
		if errors.Is(err, services.ErrVolunteerNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to delete volunteer",
		})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *VolunteerHandler) Approve(c *fiber.Ctx) error {
	return h.decide(c, h.volunteerService.Approve, "volunteer approved")
}

func (h *VolunteerHandler) Reject(c *fiber.Ctx) error {
	return h.decide(c, h.volunteerService.Reject, "volunteer rejected")
}

func (h *VolunteerHandler) decide(c *fiber.Ctx, op func(uuid.UUID) (*dto.VolunteerResponse, error), message string) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid volunteer ID",
		})
	}

	if _, err := op(id); err != nil {
		if errors.Is(err, services.ErrVolunteerNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		if errors.Is(err, services.ErrNotPending) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to process volunteer",
		})
	}

	return c.JSON(dto.StatusMessageResponse{Status: message})
}

func (h *VolunteerHandler) RoleCounts(c *fiber.Ctx) error {
	counts, err := h.volunteerService.RoleCounts()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch role counts",
		})
	}
	return c.JSON(counts)
}
