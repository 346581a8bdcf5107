package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/noteduco342/relay-backend/internal/httpx"
	"github.com/noteduco342/relay-backend/internal/service"
)

type UserHandler struct {
	userService     *service.UserService
	presenceService *service.PresenceService
}

func NewUserHandler(userService *service.UserService, presenceService *service.PresenceService) *UserHandler {
	return &UserHandler{userService: userService, presenceService: presenceService}
}

// Register creates a user. Tokens for the new id are issued elsewhere.
func (h *UserHandler) Register(c *fiber.Ctx) error {
	var input service.RegisterInput
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}

	user, err := h.userService.Register(c.UserContext(), input)
	if err != nil {
		return httpx.FromError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"user": user.ToResponse(false),
	})
}

// CheckUsername checks if a username is available
func (h *UserHandler) CheckUsername(c *fiber.Ctx) error {
	username := c.Query("username")
	if username == "" {
		return httpx.BadRequest(c, "missing_username", "Username is required")
	}

	available, err := h.userService.IsUsernameAvailable(c.UserContext(), username)
	if err != nil {
		return httpx.FromError(c, err)
	}
	return c.JSON(fiber.Map{"available": available})
}

// GetCurrentUser gets the authenticated user's profile
func (h *UserHandler) GetCurrentUser(c *fiber.Ctx) error {
	userID, err := httpx.LocalUUID(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	resp, err := h.userService.GetResponse(c.UserContext(), userID)
	if err != nil {
		return httpx.FromError(c, err)
	}
	return c.JSON(fiber.Map{"user": resp})
}

func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	id, err := httpx.ParamUUID(c, "id")
	if err != nil {
		return httpx.BadRequest(c, "invalid_user_id", "Invalid user id")
	}

	resp, err := h.userService.GetResponse(c.UserContext(), id)
	if err != nil {
		return httpx.FromError(c, err)
	}
	return c.JSON(fiber.Map{"user": resp})
}

func (h *UserHandler) GetPresence(c *fiber.Ctx) error {
	id, err := httpx.ParamUUID(c, "id")
	if err != nil {
		return httpx.BadRequest(c, "invalid_user_id", "Invalid user id")
	}
	return c.JSON(h.presenceService.Status(c.UserContext(), id))
}

func (h *UserHandler) Heartbeat(c *fiber.Ctx) error {
	userID, err := httpx.LocalUUID(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	h.presenceService.Heartbeat(c.UserContext(), userID)
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *UserHandler) SignOff(c *fiber.Ctx) error {
	userID, err := httpx.LocalUUID(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	h.presenceService.SignOff(c.UserContext(), userID)
	return c.SendStatus(fiber.StatusNoContent)
}
