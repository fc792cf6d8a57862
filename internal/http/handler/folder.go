package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"filevault/internal/service"
)

type createFolderRequest struct {
	Name string `json:"name"`
}

type createFolderResponse struct {
	ID      int64  `json:"id"`
	Message string `json:"message"`
}

// CreateFolder adds a folder.
//
// @Summary Create a folder
// @Tags folders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body createFolderRequest true "Folder"
// @Success 201 {object} createFolderResponse
// @Failure 400 {object} errorPayload
// @Failure 401 {object} errorPayload
// @Failure 500 {object} errorPayload
// @Router /createFolder [post]
func CreateFolder(svc service.FolderService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req createFolderRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}

		folder, err := svc.Create(c.UserContext(), req.Name)
		switch {
		case errors.Is(err, service.ErrInvalidInput):
			return writeError(c, fiber.StatusBadRequest, "INVALID_INPUT", "Folder name is required.")
		case err != nil:
			return writeInternal(c, err, "CREATE_FOLDER_ERROR", "Error creating folder.")
		}
		return c.Status(fiber.StatusCreated).JSON(createFolderResponse{
			ID:      folder.ID,
			Message: "Folder created successfully!",
		})
	}
}
