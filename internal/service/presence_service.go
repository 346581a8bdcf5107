package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/noteduco342/relay-backend/internal/repository"
	"github.com/rs/zerolog"
)

type PresenceStatus struct {
	UserID   uuid.UUID  `json:"user_id"`
	Online   bool       `json:"online"`
	LastSeen *time.Time `json:"last_seen,omitempty"`
}

// PresenceService wraps the presence store with chat membership checks and
// typing notifications.
type PresenceService struct {
	presence Presence
	store    *repository.Store
	runner   *StoreRunner
	notifier Notifier
	log      zerolog.Logger
}

func NewPresenceService(presence Presence, store *repository.Store, runner *StoreRunner, notifier Notifier, log zerolog.Logger) *PresenceService {
	return &PresenceService{
		presence: presence,
		store:    store,
		runner:   runner,
		notifier: notifier,
		log:      log.With().Str("component", "presence").Logger(),
	}
}

func (s *PresenceService) Heartbeat(ctx context.Context, userID uuid.UUID) {
	s.presence.MarkOnline(ctx, userID)
}

func (s *PresenceService) SignOff(ctx context.Context, userID uuid.UUID) {
	s.presence.MarkOffline(ctx, userID)
}

func (s *PresenceService) Status(ctx context.Context, userID uuid.UUID) PresenceStatus {
	st := PresenceStatus{UserID: userID, Online: s.presence.IsOnline(ctx, userID)}
	if st.Online {
		if seen, ok := s.presence.LastSeen(ctx, userID); ok {
			st.LastSeen = &seen
		}
	}
	return st
}

// SetTyping records the typing state and tells the other active participants.
func (s *PresenceService) SetTyping(ctx context.Context, chatID, userID uuid.UUID, typing bool) error {
	if _, err := participant(ctx, s.runner, s.store, chatID, userID, true); err != nil {
		return err
	}
	s.presence.SetTyping(ctx, chatID, userID, typing)

	if s.notifier == nil {
		return nil
	}
	participants, err := s.store.Chats.ListParticipants(ctx, chatID, true)
	if err != nil {
		s.log.Debug().Err(err).Str("chat_id", chatID.String()).Msg("typing notify skipped")
		return nil
	}
	for _, p := range participants {
		if p.UserID == userID || !s.presence.IsOnline(ctx, p.UserID) {
			continue
		}
		if err := s.notifier.TypingChanged(ctx, p.UserID, chatID, userID, typing); err != nil {
			s.log.Debug().Err(err).Str("user_id", p.UserID.String()).Msg("typing notify failed")
		}
	}
	return nil
}

func (s *PresenceService) TypingUsers(ctx context.Context, chatID, userID uuid.UUID) ([]uuid.UUID, error) {
	if _, err := participant(ctx, s.runner, s.store, chatID, userID, false); err != nil {
		return nil, err
	}
	return s.presence.TypingUsers(ctx, chatID), nil
}
