package ws

import (
	"github.com/google/uuid"
	"github.com/noteduco342/relay-backend/internal/models"
	"github.com/noteduco342/relay-backend/internal/service"
)

// MessageSend submits a chat message over the socket.
type MessageSend struct {
	ChatID   uuid.UUID          `json:"chat_id"`
	Type     models.MessageType `json:"message_type"`
	Content  string             `json:"content"`
	ReplyTo  *uuid.UUID         `json:"reply_to,omitempty"`
	ClientID *string            `json:"client_id,omitempty"`
}

func (msg *MessageSend) GetType() string { return "send" }

func (msg *MessageSend) Process(ctx *MessageContext) error {
	m, err := ctx.Delivery.SendMessage(ctx.Ctx, service.SendMessageInput{
		ChatID:   msg.ChatID,
		SenderID: ctx.UserID,
		Type:     msg.Type,
		Content:  msg.Content,
		ReplyTo:  msg.ReplyTo,
		ClientID: msg.ClientID,
	})
	if err != nil {
		return err
	}
	return ctx.Reply("sent", m.ToResponse())
}

// MessageTyping starts or stops the typing indicator in a chat.
type MessageTyping struct {
	ChatID uuid.UUID `json:"chat_id"`
	Typing bool      `json:"typing"`
}

func (msg *MessageTyping) GetType() string { return "typing" }

func (msg *MessageTyping) Process(ctx *MessageContext) error {
	return ctx.Presence.SetTyping(ctx.Ctx, msg.ChatID, ctx.UserID, msg.Typing)
}

// MessageAck moves the caller's receipt for one message forward.
type MessageAck struct {
	MessageID uuid.UUID            `json:"message_id"`
	Status    models.ReceiptStatus `json:"status"`
}

func (msg *MessageAck) GetType() string { return "ack" }

func (msg *MessageAck) Process(ctx *MessageContext) error {
	_, err := ctx.Receipts.Advance(ctx.Ctx, msg.MessageID, ctx.UserID, msg.Status)
	return err
}

// MessageRead marks everything in a chat up to a sequence number as read.
type MessageRead struct {
	ChatID  uuid.UUID `json:"chat_id"`
	UpToSeq int64     `json:"up_to_seq"`
}

func (msg *MessageRead) GetType() string { return "read" }

func (msg *MessageRead) Process(ctx *MessageContext) error {
	n, err := ctx.Receipts.MarkChatRead(ctx.Ctx, msg.ChatID, ctx.UserID, msg.UpToSeq)
	if err != nil {
		return err
	}
	return ctx.Reply("read_ok", map[string]interface{}{
		"chat_id": msg.ChatID,
		"updated": n,
	})
}

// MessageHeartbeat keeps the caller's presence alive.
type MessageHeartbeat struct{}

func (msg *MessageHeartbeat) GetType() string { return "heartbeat" }

func (msg *MessageHeartbeat) Process(ctx *MessageContext) error {
	ctx.Presence.Heartbeat(ctx.Ctx, ctx.UserID)
	return nil
}
