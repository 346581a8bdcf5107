package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/noteduco342/relay-backend/internal/httpx"
	"github.com/noteduco342/relay-backend/internal/service"
)

type ContactHandler struct {
	contactService *service.ContactService
}

func NewContactHandler(contactService *service.ContactService) *ContactHandler {
	return &ContactHandler{contactService: contactService}
}

type addContactRequest struct {
	UserID uuid.UUID `json:"user_id"`
	service.ContactInput
}

func (h *ContactHandler) Add(c *fiber.Ctx) error {
	userID, err := httpx.LocalUUID(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	var req addContactRequest
	if err := c.BodyParser(&req); err != nil || req.UserID == uuid.Nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}

	contact, err := h.contactService.Add(c.UserContext(), userID, req.UserID, req.ContactInput)
	if err != nil {
		return httpx.FromError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(contact)
}

func (h *ContactHandler) Update(c *fiber.Ctx) error {
	userID, err := httpx.LocalUUID(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	contactID, err := httpx.ParamUUID(c, "id")
	if err != nil {
		return httpx.BadRequest(c, "invalid_contact_id", "Invalid contact id")
	}

	var input service.ContactInput
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}

	contact, err := h.contactService.Update(c.UserContext(), userID, contactID, input)
	if err != nil {
		return httpx.FromError(c, err)
	}
	return c.JSON(contact)
}

func (h *ContactHandler) List(c *fiber.Ctx) error {
	userID, err := httpx.LocalUUID(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	contacts, err := h.contactService.List(c.UserContext(), userID)
	if err != nil {
		return httpx.FromError(c, err)
	}
	return c.JSON(fiber.Map{
		"contacts": contacts,
		"count":    len(contacts),
	})
}
