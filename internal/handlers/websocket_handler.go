package handlers

import (
	"context"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"github.com/noteduco342/relay-backend/internal/apperrors"
	"github.com/noteduco342/relay-backend/internal/handlers/ws"
	"github.com/noteduco342/relay-backend/internal/service"
	"github.com/rs/zerolog"
)

type WebSocketHandler struct {
	hub             *ws.Hub
	deliveryService *service.DeliveryService
	receiptService  *service.ReceiptService
	presenceService *service.PresenceService
	debug           bool
	log             zerolog.Logger
}

func NewWebSocketHandler(hub *ws.Hub, deliveryService *service.DeliveryService, receiptService *service.ReceiptService, presenceService *service.PresenceService, log zerolog.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub:             hub,
		deliveryService: deliveryService,
		receiptService:  receiptService,
		presenceService: presenceService,
		debug:           log.GetLevel() <= zerolog.DebugLevel,
		log:             log.With().Str("component", "ws").Logger(),
	}
}

func (h *WebSocketHandler) HandleWebSocket(c *websocket.Conn) {
	userID, ok := c.Locals("userID").(uuid.UUID)
	if !ok {
		_ = c.Close()
		return
	}
	log := h.log.With().Str("user_id", userID.String()).Logger()

	// Check if client supports gzip compression (via query param or header)
	supportsGzip := c.Query("gzip") == "1" || c.Headers("X-Supports-Gzip") == "1"

	ctx, cancel := context.WithCancel(context.Background())
	client := h.hub.Register(userID, c, supportsGzip)
	h.presenceService.Heartbeat(ctx, userID)

	mc := &ws.MessageContext{
		Ctx:      ctx,
		UserID:   userID,
		Client:   client,
		Hub:      h.hub,
		Delivery: h.deliveryService,
		Receipts: h.receiptService,
		Presence: h.presenceService,
		Log:      log,
	}

	// Flush pending messages after successful connection
	go func() {
		n, err := ws.FlushOutbox(mc)
		if err != nil {
			log.Warn().Err(err).Int("sent", n).Msg("outbox flush failed")
			return
		}
		if n > 0 {
			log.Debug().Int("sent", n).Msg("outbox flushed")
		}
	}()

	defer func() {
		cancel()
		if remaining := h.hub.Unregister(client); remaining == 0 {
			h.presenceService.SignOff(context.Background(), userID)
		}
		log.Debug().Msg("websocket disconnected")
	}()

	log.Debug().Bool("gzip", supportsGzip).Msg("websocket connected")

	for {
		messageType, messageBytes, err := c.ReadMessage()
		if err != nil {
			log.Debug().Err(err).Msg("websocket read ended")
			return
		}

		if h.debug {
			log.Debug().Int("frame_type", messageType).Int("size", len(messageBytes)).Msg("ws_recv")
		}

		// Decompress if binary message (gzip compressed)
		if messageType == websocket.BinaryMessage {
			decompressed, err := ws.DecompressMessage(messageBytes)
			if err != nil {
				_ = ws.SendError(client, "decompression_failed", "Failed to decompress message", err.Error())
				continue
			}
			messageBytes = decompressed
		}

		msg, err := ws.Deserialize(messageBytes)
		if err != nil {
			_ = ws.SendError(client, "invalid_message", "Invalid message format", err.Error())
			continue
		}

		// Any client frame counts as a sign of life.
		h.presenceService.Heartbeat(ctx, userID)

		if err := msg.Process(mc); err != nil {
			code := apperrors.CodeOf(err)
			if code == apperrors.CodeUnknown || code == apperrors.CodeInternal {
				log.Error().Err(err).Str("type", msg.GetType()).Msg("processing failed")
				_ = ws.SendError(client, "processing_failed", "Failed to process message", "")
				continue
			}
			_ = ws.SendError(client, string(code), "Failed to process message", err.Error())
		}
	}
}
