package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/noteduco342/relay-backend/internal/apperrors"
	"github.com/noteduco342/relay-backend/internal/cache"
	"github.com/noteduco342/relay-backend/internal/models"
	"github.com/noteduco342/relay-backend/internal/repository"
	"github.com/noteduco342/relay-backend/internal/storage"
	"github.com/rs/zerolog"
)

// ObjectStore is the part of the S3 client media needs.
type ObjectStore interface {
	PutObject(ctx context.Context, key string, body io.Reader, size int64, contentType string) (storage.ObjectStat, error)
	GetObject(ctx context.Context, key string) (*minio.Object, storage.ObjectStat, error)
	DeleteObject(ctx context.Context, key string) error
}

type MediaService struct {
	store    *repository.Store
	runner   *StoreRunner
	objects  ObjectStore
	pages    *cache.MessageCache
	baseURL  string
	maxBytes int64
	log      zerolog.Logger
}

func NewMediaService(store *repository.Store, runner *StoreRunner, objects ObjectStore, pages *cache.MessageCache, publicBaseURL string, maxBytes int64, log zerolog.Logger) *MediaService {
	return &MediaService{
		store:    store,
		runner:   runner,
		objects:  objects,
		pages:    pages,
		baseURL:  strings.TrimRight(strings.TrimSpace(publicBaseURL), "/"),
		maxBytes: maxBytes,
		log:      log.With().Str("component", "media").Logger(),
	}
}

// mimeFits checks the sniffed type against the message type. File messages
// accept anything.
func mimeFits(t models.MessageType, mime string) bool {
	switch t {
	case models.ImageMessage:
		return strings.HasPrefix(mime, "image/")
	case models.VideoMessage:
		return strings.HasPrefix(mime, "video/")
	case models.AudioMessage:
		return strings.HasPrefix(mime, "audio/")
	case models.FileMessage:
		return true
	}
	return false
}

// Attach stores an upload for a non-text message owned by userID.
func (s *MediaService) Attach(ctx context.Context, messageID, userID uuid.UUID, body io.Reader) (*models.Media, error) {
	if s.objects == nil {
		return nil, apperrors.ErrMediaUnavailable
	}

	var msg *models.Message
	err := s.runner.Run(ctx, "messages.FindByID", func(ctx context.Context) error {
		var err error
		msg, err = s.store.Messages.FindByID(ctx, messageID)
		return err
	})
	if repository.IsNotFound(err) {
		return nil, apperrors.ErrMessageNotFound
	}
	if err != nil {
		return nil, err
	}
	if msg.SenderID != userID {
		return nil, apperrors.ErrNotMessageOwner
	}
	if msg.DeletedAt != nil {
		return nil, apperrors.ErrMessageNotFound
	}

	probe, err := storage.ProbeMedia(body, s.maxBytes)
	if err != nil {
		if errors.Is(err, storage.ErrTooLarge) || errors.Is(err, storage.ErrEmpty) || errors.Is(err, storage.ErrInvalidImage) {
			return nil, apperrors.Wrap(apperrors.ErrInvalidMedia, err)
		}
		return nil, err
	}
	if !mimeFits(msg.Type, probe.MimeType) {
		return nil, apperrors.ErrInvalidMedia
	}

	key := storage.MediaKey(msg.ChatID, msg.ID)
	if _, err := s.objects.PutObject(ctx, key, bytes.NewReader(probe.Data), probe.Size(), probe.MimeType); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrMediaUnavailable, err)
	}

	media := &models.Media{
		ID:        uuid.New(),
		MessageID: msg.ID,
		ObjectKey: key,
		URL:       s.baseURL + "/" + key,
		MimeType:  probe.MimeType,
		Size:      probe.Size(),
		Width:     probe.Width,
		Height:    probe.Height,
	}
	err = s.runner.Run(ctx, "messages.AddMedia", func(ctx context.Context) error {
		return s.store.Messages.AddMedia(ctx, media)
	})
	if err != nil {
		// Try to delete newly created object to avoid orphan.
		if derr := s.objects.DeleteObject(context.WithoutCancel(ctx), key); derr != nil {
			s.log.Warn().Err(derr).Str("key", key).Msg("orphaned media object")
		}
		return nil, err
	}

	if err := s.pages.Invalidate(ctx, msg.ChatID); err != nil {
		s.log.Debug().Err(err).Msg("page cache invalidation failed")
	}
	return media, nil
}

// Open streams a stored attachment to a participant of the chat it belongs
// to. path is the part of the key after "media/".
func (s *MediaService) Open(ctx context.Context, userID uuid.UUID, path string) (*minio.Object, storage.ObjectStat, error) {
	if s.objects == nil {
		return nil, storage.ObjectStat{}, apperrors.ErrMediaUnavailable
	}
	key, chatID, err := storage.ParseMediaKey(path)
	if err != nil {
		return nil, storage.ObjectStat{}, apperrors.NotFound("media not found")
	}
	if _, err := participant(ctx, s.runner, s.store, chatID, userID, false); err != nil {
		return nil, storage.ObjectStat{}, err
	}

	obj, stat, err := s.objects.GetObject(ctx, key)
	if err != nil {
		return nil, storage.ObjectStat{}, apperrors.Wrap(apperrors.NotFound("media not found"), err)
	}
	return obj, stat, nil
}
