package handler

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"filevault/internal/auth"
	"filevault/internal/service"
)

type uploadResponse struct {
	FileKey string `json:"filekey"`
	Message string `json:"message"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// UploadFile stores a multipart upload (field name: file, optional folderId).
//
// @Summary Upload a file
// @Tags files
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param file formData file true "File content"
// @Param folderId formData integer false "Folder id"
// @Success 201 {object} uploadResponse
// @Failure 400 {object} errorPayload
// @Failure 401 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /upload [post]
func UploadFile(svc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, ok := auth.PrincipalFrom(c.UserContext())
		if !ok {
			return auth.ErrMissingToken
		}

		var folderID *int64
		if v := c.FormValue("folderId"); v != "" {
			id, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return writeError(c, fiber.StatusBadRequest, "INVALID_FOLDER_ID", "invalid folderId")
			}
			folderID = &id
		}

		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "No file uploaded.")
		}
		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		ct := fh.Header.Get("Content-Type")
		if ct == "" {
			ct = defaultContentType
		}

		stored, err := svc.Upload(c.UserContext(), p, service.UploadRequest{
			Reader:           f,
			OriginalFilename: fh.Filename,
			ContentType:      ct,
			Size:             fh.Size,
			FolderID:         folderID,
		})
		switch {
		case errors.Is(err, service.ErrFolderNotFound):
			return writeError(c, fiber.StatusBadRequest, "FOLDER_NOT_FOUND", "Folder not found.")
		case errors.Is(err, service.ErrUserNotFound):
			return writeError(c, fiber.StatusNotFound, "USER_NOT_FOUND", "User not found.")
		case err != nil:
			return writeInternal(c, err, "UPLOAD_ERROR", "Error uploading the file.")
		}
		return c.Status(fiber.StatusCreated).JSON(uploadResponse{
			FileKey: stored.Key,
			Message: "File uploaded successfully!",
		})
	}
}

// ListFiles returns the caller's files with limit & offset.
//
// @Summary List own files
// @Tags files
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Page size" default(10)
// @Param offset query int false "Offset" default(0)
// @Success 200 {object} service.FileListResult
// @Failure 400 {object} errorPayload
// @Failure 401 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /files [get]
func ListFiles(svc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, ok := auth.PrincipalFrom(c.UserContext())
		if !ok {
			return auth.ErrMissingToken
		}

		limit, err := strconv.Atoi(c.Query("limit", "10"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		offset, err := strconv.Atoi(c.Query("offset", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}

		res, err := svc.List(c.UserContext(), p, limit, offset)
		switch {
		case errors.Is(err, service.ErrNoFiles):
			return writeError(c, fiber.StatusNotFound, "NO_FILES", "No files found.")
		case err != nil:
			return writeInternal(c, err, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(res)
	}
}

// MarkUnsafe deletes a file's object and record. Admin only.
//
// @Summary Mark a file unsafe
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param filekey path string true "Object key"
// @Success 200 {object} messageResponse
// @Failure 401 {object} errorPayload
// @Failure 403 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Failure 500 {object} errorPayload
// @Router /markUnsafe/{filekey} [post]
func MarkUnsafe(svc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, ok := auth.PrincipalFrom(c.UserContext())
		if !ok {
			return auth.ErrMissingToken
		}

		err := svc.MarkUnsafe(c.UserContext(), p, c.Params("filekey"))
		switch {
		case errors.Is(err, service.ErrForbidden):
			return writeError(c, fiber.StatusForbidden, "FORBIDDEN", "Only admins can mark files as unsafe.")
		case errors.Is(err, service.ErrNotFound):
			return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "File not found.")
		case err != nil:
			return writeInternal(c, err, "MARK_UNSAFE_ERROR", "Error marking file as unsafe.")
		}
		return c.JSON(messageResponse{Message: "File marked as unsafe and deleted."})
	}
}
