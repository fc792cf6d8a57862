package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"filevault/internal/service"
)

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
	IsAdmin  bool   `json:"isAdmin"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// Register creates an account.
//
// @Summary Register
// @Tags auth
// @Accept json
// @Produce json
// @Param body body registerRequest true "Account"
// @Success 201 {object} messageResponse
// @Failure 400 {object} errorPayload
// @Failure 500 {object} errorPayload
// @Router /register [post]
func Register(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req registerRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}

		_, err := svc.Register(c.UserContext(), service.RegisterRequest{
			Email:    req.Email,
			Password: req.Password,
			FullName: req.FullName,
			IsAdmin:  req.IsAdmin,
		})
		switch {
		case errors.Is(err, service.ErrInvalidInput):
			return writeError(c, fiber.StatusBadRequest, "INVALID_INPUT", "Email and password are required.")
		case errors.Is(err, service.ErrUserExists):
			return writeError(c, fiber.StatusBadRequest, "USER_EXISTS", "User already exists.")
		case err != nil:
			return writeInternal(c, err, "REGISTER_ERROR", "Error registering user.")
		}
		return c.Status(fiber.StatusCreated).JSON(messageResponse{Message: "User registered successfully!"})
	}
}

// Login exchanges credentials for a bearer token.
//
// @Summary Login
// @Tags auth
// @Accept json
// @Produce json
// @Param body body loginRequest true "Credentials"
// @Success 200 {object} loginResponse
// @Failure 400 {object} errorPayload
// @Failure 500 {object} errorPayload
// @Router /login [post]
func Login(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req loginRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}

		token, err := svc.Login(c.UserContext(), req.Email, req.Password)
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			return writeError(c, fiber.StatusBadRequest, "USER_NOT_FOUND", "User not found.")
		case errors.Is(err, service.ErrInvalidPassword):
			return writeError(c, fiber.StatusBadRequest, "INVALID_PASSWORD", "Invalid password.")
		case err != nil:
			return writeInternal(c, err, "LOGIN_ERROR", "Error logging in.")
		}
		return c.JSON(loginResponse{Token: token})
	}
}
