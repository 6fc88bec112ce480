package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/hopehands/volunteer-backend/internal/dto"
	"github.com/hopehands/volunteer-backend/internal/services"
)

type ImportHandler struct {
	importService *services.ImportService
}

func NewImportHandler(importService *services.ImportService) *ImportHandler {
	return &ImportHandler{importService: importService}
}

// BulkImport accepts a multipart CSV upload of pre-approved volunteers.
// Per-row problems and partial sync failures are reported in the summary,
// never as a hard failure.
func (h *ImportHandler) BulkImport(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "No file provided",
		})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to read uploaded file",
		})
	}
	defer file.Close()

	summary, err := h.importService.Run(file)
	if err != nil {
		slog.Error("bulk import failed", "action", "bulk_import", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to process CSV file",
		})
	}

	return c.JSON(summary)
}
