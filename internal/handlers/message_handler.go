package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/noteduco342/relay-backend/internal/httpx"
	"github.com/noteduco342/relay-backend/internal/models"
	"github.com/noteduco342/relay-backend/internal/notify"
	"github.com/noteduco342/relay-backend/internal/service"
	"github.com/rs/zerolog"
)

type MessageHandler struct {
	deliveryService *service.DeliveryService
	chatService     *service.ChatService
	receiptService  *service.ReceiptService
	log             zerolog.Logger
}

func NewMessageHandler(deliveryService *service.DeliveryService, chatService *service.ChatService, receiptService *service.ReceiptService, log zerolog.Logger) *MessageHandler {
	return &MessageHandler{
		deliveryService: deliveryService,
		chatService:     chatService,
		receiptService:  receiptService,
		log:             log,
	}
}

func (h *MessageHandler) SendMessage(c *fiber.Ctx) error {
	userID, chatID, ok := caller(c)
	if !ok {
		return nil
	}

	var input service.SendMessageInput
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}
	input.ChatID = chatID
	input.SenderID = userID

	message, err := h.deliveryService.SendMessage(c.UserContext(), input)
	if err != nil {
		return httpx.FromError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(message.ToResponse())
}

func (h *MessageHandler) GetMessages(c *fiber.Ctx) error {
	userID, chatID, ok := caller(c)
	if !ok {
		return nil
	}

	beforeSeq, ok := queryInt(c, "before_seq", 0)
	if !ok {
		return httpx.BadRequest(c, "invalid_cursor", "Invalid before_seq")
	}
	limit, ok := queryInt(c, "limit", service.DefaultPageSize)
	if !ok {
		return httpx.BadRequest(c, "invalid_limit", "Invalid limit")
	}

	messages, err := h.chatService.ListMessages(c.UserContext(), chatID, userID, beforeSeq, int(limit))
	if err != nil {
		return httpx.FromError(c, err)
	}

	responses := make([]models.MessageResponse, len(messages))
	for i := range messages {
		responses[i] = messages[i].ToResponse()
	}
	result := fiber.Map{
		"messages": responses,
		"count":    len(messages),
	}
	// Pages are ascending; the first seq is the cursor for older messages.
	if len(messages) > 0 && messages[0].Seq > 1 {
		result["next_before_seq"] = messages[0].Seq
	}
	return c.JSON(result)
}

func (h *MessageHandler) EditMessage(c *fiber.Ctx) error {
	userID, messageID, ok := caller(c)
	if !ok {
		return nil
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}

	message, err := h.deliveryService.EditMessage(c.UserContext(), messageID, userID, req.Content)
	if err != nil {
		return httpx.FromError(c, err)
	}
	return c.JSON(message.ToResponse())
}

func (h *MessageHandler) DeleteMessage(c *fiber.Ctx) error {
	userID, messageID, ok := caller(c)
	if !ok {
		return nil
	}

	message, err := h.deliveryService.DeleteMessage(c.UserContext(), messageID, userID)
	if err != nil {
		return httpx.FromError(c, err)
	}
	return c.JSON(message.ToResponse())
}

// AdvanceReceipt records that the caller received or read a message.
func (h *MessageHandler) AdvanceReceipt(c *fiber.Ctx) error {
	userID, messageID, ok := caller(c)
	if !ok {
		return nil
	}

	var req struct {
		Status models.ReceiptStatus `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}

	receipt, err := h.receiptService.Advance(c.UserContext(), messageID, userID, req.Status)
	if err != nil {
		return httpx.FromError(c, err)
	}
	return c.JSON(notify.ReceiptEvent(receipt).Payload)
}

func (h *MessageHandler) ListReceipts(c *fiber.Ctx) error {
	userID, messageID, ok := caller(c)
	if !ok {
		return nil
	}

	receipts, err := h.receiptService.ListForMessage(c.UserContext(), messageID, userID)
	if err != nil {
		return httpx.FromError(c, err)
	}
	return c.JSON(fiber.Map{
		"receipts": receipts,
		"count":    len(receipts),
	})
}

// DrainOutbox hands the caller everything queued while they were away.
// Receipts stay at sent until the client acks each message.
func (h *MessageHandler) DrainOutbox(c *fiber.Ctx) error {
	userID, err := httpx.LocalUUID(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	pending, err := h.deliveryService.Drain(c.UserContext(), userID)
	if err != nil {
		return httpx.FromError(c, err)
	}

	events := make([]notify.Event, 0, len(pending))
	for _, p := range pending {
		if p.Message == nil {
			events = append(events, notify.GapEvent(p.Ref.Dropped))
			continue
		}
		events = append(events, notify.MessageEvent(p.Message))
	}
	return c.JSON(notify.Batch(events))
}
