package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/noteduco342/relay-backend/internal/httpx"
	"github.com/noteduco342/relay-backend/internal/models"
	"github.com/noteduco342/relay-backend/internal/service"
)

type ChatHandler struct {
	chatService     *service.ChatService
	receiptService  *service.ReceiptService
	presenceService *service.PresenceService
}

func NewChatHandler(chatService *service.ChatService, receiptService *service.ReceiptService, presenceService *service.PresenceService) *ChatHandler {
	return &ChatHandler{
		chatService:     chatService,
		receiptService:  receiptService,
		presenceService: presenceService,
	}
}

// caller returns the authenticated user and the :id path parameter. When ok
// is false the error response has already been written.
func caller(c *fiber.Ctx) (userID, id uuid.UUID, ok bool) {
	userID, err := httpx.LocalUUID(c, "userID")
	if err != nil {
		_ = httpx.Unauthorized(c, "unauthorized", "Unauthorized")
		return uuid.Nil, uuid.Nil, false
	}
	id, err = httpx.ParamUUID(c, "id")
	if err != nil {
		_ = httpx.BadRequest(c, "invalid_id", "Invalid id")
		return uuid.Nil, uuid.Nil, false
	}
	return userID, id, true
}

func (h *ChatHandler) CreateDirect(c *fiber.Ctx) error {
	userID, err := httpx.LocalUUID(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	var req struct {
		UserID uuid.UUID `json:"user_id"`
	}
	if err := c.BodyParser(&req); err != nil || req.UserID == uuid.Nil {
		return httpx.BadRequest(c, "invalid_request_body", "user_id is required")
	}

	chat, err := h.chatService.CreateDirect(c.UserContext(), userID, req.UserID)
	if err != nil {
		return httpx.FromError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(chat.ToResponse(nil))
}

func (h *ChatHandler) CreateGroup(c *fiber.Ctx) error {
	userID, err := httpx.LocalUUID(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	var req struct {
		Title     string      `json:"title"`
		MemberIDs []uuid.UUID `json:"member_ids"`
	}
	if err := c.BodyParser(&req); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}

	chat, err := h.chatService.CreateGroup(c.UserContext(), userID, req.Title, req.MemberIDs)
	if err != nil {
		return httpx.FromError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(chat.ToResponse(nil))
}

func (h *ChatHandler) ListChats(c *fiber.Ctx) error {
	userID, err := httpx.LocalUUID(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	chats, err := h.chatService.ListChats(c.UserContext(), userID)
	if err != nil {
		return httpx.FromError(c, err)
	}
	out := make([]models.ChatResponse, len(chats))
	for i := range chats {
		out[i] = chats[i].ToResponse(nil)
	}
	return c.JSON(fiber.Map{
		"chats": out,
		"count": len(out),
	})
}

func (h *ChatHandler) GetChat(c *fiber.Ctx) error {
	userID, chatID, ok := caller(c)
	if !ok {
		return nil
	}

	chat, participants, err := h.chatService.GetChat(c.UserContext(), chatID, userID)
	if err != nil {
		return httpx.FromError(c, err)
	}
	return c.JSON(chat.ToResponse(participants))
}

func (h *ChatHandler) AddParticipant(c *fiber.Ctx) error {
	userID, chatID, ok := caller(c)
	if !ok {
		return nil
	}

	var req struct {
		UserID uuid.UUID `json:"user_id"`
	}
	if err := c.BodyParser(&req); err != nil || req.UserID == uuid.Nil {
		return httpx.BadRequest(c, "invalid_request_body", "user_id is required")
	}

	if err := h.chatService.AddParticipant(c.UserContext(), chatID, userID, req.UserID); err != nil {
		return httpx.FromError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *ChatHandler) Leave(c *fiber.Ctx) error {
	userID, chatID, ok := caller(c)
	if !ok {
		return nil
	}
	if err := h.chatService.Leave(c.UserContext(), chatID, userID); err != nil {
		return httpx.FromError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *ChatHandler) MarkRead(c *fiber.Ctx) error {
	userID, chatID, ok := caller(c)
	if !ok {
		return nil
	}

	var req struct {
		UpToSeq int64 `json:"up_to_seq"`
	}
	if err := c.BodyParser(&req); err != nil || req.UpToSeq <= 0 {
		return httpx.BadRequest(c, "invalid_request_body", "up_to_seq is required")
	}

	n, err := h.receiptService.MarkChatRead(c.UserContext(), chatID, userID, req.UpToSeq)
	if err != nil {
		return httpx.FromError(c, err)
	}
	return c.JSON(fiber.Map{"updated": n})
}

func (h *ChatHandler) ReadState(c *fiber.Ctx) error {
	userID, chatID, ok := caller(c)
	if !ok {
		return nil
	}

	ctx := c.UserContext()
	lastRead, err := h.receiptService.ChatReadState(ctx, chatID, userID)
	if err != nil {
		return httpx.FromError(c, err)
	}
	unread, err := h.receiptService.UnreadCount(ctx, chatID, userID)
	if err != nil {
		return httpx.FromError(c, err)
	}
	return c.JSON(fiber.Map{
		"chat_id":       chatID,
		"last_read_seq": lastRead,
		"unread":        unread,
	})
}

func (h *ChatHandler) SetTyping(c *fiber.Ctx) error {
	userID, chatID, ok := caller(c)
	if !ok {
		return nil
	}

	req := struct {
		Typing *bool `json:"typing"`
	}{}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
		}
	}
	typing := req.Typing == nil || *req.Typing

	if err := h.presenceService.SetTyping(c.UserContext(), chatID, userID, typing); err != nil {
		return httpx.FromError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *ChatHandler) TypingUsers(c *fiber.Ctx) error {
	userID, chatID, ok := caller(c)
	if !ok {
		return nil
	}

	users, err := h.presenceService.TypingUsers(c.UserContext(), chatID, userID)
	if err != nil {
		return httpx.FromError(c, err)
	}
	return c.JSON(fiber.Map{"user_ids": users})
}

// queryInt reads a non-negative integer query parameter, falling back to def.
func queryInt(c *fiber.Ctx, name string, def int64) (int64, bool) {
	raw := c.Query(name)
	if raw == "" {
		return def, true
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}
