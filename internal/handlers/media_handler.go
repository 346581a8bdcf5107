package handlers

import (
	"bufio"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/noteduco342/relay-backend/internal/httpx"
	"github.com/noteduco342/relay-backend/internal/service"
	"github.com/rs/zerolog"
)

type MediaHandler struct {
	mediaService *service.MediaService
	log          zerolog.Logger
}

func NewMediaHandler(mediaService *service.MediaService, log zerolog.Logger) *MediaHandler {
	return &MediaHandler{mediaService: mediaService, log: log.With().Str("component", "media_http").Logger()}
}

func normalizeETag(v string) string {
	v = strings.TrimSpace(v)
	v = strings.TrimPrefix(v, "W/")
	v = strings.Trim(v, "\"")
	return v
}

// Upload attaches the multipart "file" field to a message the caller sent.
func (h *MediaHandler) Upload(c *fiber.Ctx) error {
	userID, messageID, ok := caller(c)
	if !ok {
		return nil
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return httpx.BadRequest(c, "missing_file", "file is required")
	}
	f, err := fh.Open()
	if err != nil {
		return httpx.BadRequest(c, "invalid_file", "Invalid file")
	}
	defer f.Close()

	media, err := h.mediaService.Attach(c.UserContext(), messageID, userID, f)
	if err != nil {
		return httpx.FromError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(media)
}

// Get streams an attachment to a participant of its chat.
func (h *MediaHandler) Get(c *fiber.Ctx) error {
	userID, err := httpx.LocalUUID(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	path := strings.TrimSpace(c.Params("*"))
	obj, st, err := h.mediaService.Open(c.UserContext(), userID, path)
	if err != nil {
		return httpx.FromError(c, err)
	}

	if etag := st.ETag; etag != "" {
		c.Set("ETag", "\""+etag+"\"")
		if inm := normalizeETag(c.Get("If-None-Match")); inm != "" && inm == normalizeETag(etag) {
			_ = obj.Close()
			return c.SendStatus(fiber.StatusNotModified)
		}
	}
	if !st.LastModified.IsZero() {
		c.Set("Last-Modified", st.LastModified.UTC().Format(time.RFC1123))
	}

	c.Set("Cache-Control", "private, max-age=31536000, immutable")
	contentType := st.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Set(fiber.HeaderContentType, contentType)
	if st.Size > 0 {
		c.Set("Content-Length", strconv.FormatInt(st.Size, 10))
	}

	// Stream object while capturing any mid-stream errors.
	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer func() {
			_ = obj.Close()
		}()

		n, copyErr := io.Copy(w, obj)
		if copyErr == nil {
			copyErr = w.Flush()
		}
		if copyErr != nil {
			h.log.Warn().Err(copyErr).Str("path", path).Int64("copied", n).Msg("media stream failed")
		}
	})
	return nil
}
