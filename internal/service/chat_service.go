package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/noteduco342/relay-backend/internal/apperrors"
	"github.com/noteduco342/relay-backend/internal/cache"
	"github.com/noteduco342/relay-backend/internal/models"
	"github.com/noteduco342/relay-backend/internal/repository"
	"github.com/noteduco342/relay-backend/internal/validation"
	"github.com/rs/zerolog"
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 100
)

type ChatService struct {
	store  *repository.Store
	runner *StoreRunner
	pages  *cache.MessageCache
	log    zerolog.Logger
	now    func() time.Time
}

func NewChatService(store *repository.Store, runner *StoreRunner, pages *cache.MessageCache, log zerolog.Logger) *ChatService {
	return &ChatService{
		store:  store,
		runner: runner,
		pages:  pages,
		log:    log.With().Str("component", "chats").Logger(),
		now:    utcNow,
	}
}

// CreateDirect returns the direct chat between the two users, creating it on
// first use.
func (s *ChatService) CreateDirect(ctx context.Context, userID, peerID uuid.UUID) (*models.Chat, error) {
	if userID == peerID {
		return nil, apperrors.InvalidArg("cannot open a direct chat with yourself")
	}
	if err := s.requireUser(ctx, peerID); err != nil {
		return nil, err
	}

	chat, err := s.findDirect(ctx, userID, peerID)
	if err == nil {
		return chat, nil
	}
	if !repository.IsNotFound(err) {
		return nil, err
	}

	now := s.now()
	key := models.DirectPairKey(userID, peerID)
	chat = &models.Chat{ID: uuid.New(), Type: models.ChatDirect, DirectKey: &key, CreatedAt: now}
	participants := []models.ChatParticipant{
		{UserID: userID, Role: models.RoleMember, JoinedAt: now},
		{UserID: peerID, Role: models.RoleMember, JoinedAt: now},
	}
	err = s.runner.Run(ctx, "chats.Create", func(ctx context.Context) error {
		return s.store.Chats.Create(ctx, chat, participants)
	})
	if repository.IsDuplicate(err) {
		// A concurrent call created the pair's chat first.
		return s.findDirect(ctx, userID, peerID)
	}
	if err != nil {
		return nil, err
	}
	return chat, nil
}

func (s *ChatService) findDirect(ctx context.Context, userID, peerID uuid.UUID) (*models.Chat, error) {
	var chat *models.Chat
	err := s.runner.Run(ctx, "chats.FindDirect", func(ctx context.Context) error {
		var err error
		chat, err = s.store.Chats.FindDirect(ctx, userID, peerID)
		return err
	})
	return chat, err
}

// CreateGroup creates a group chat with creatorID as admin.
func (s *ChatService) CreateGroup(ctx context.Context, creatorID uuid.UUID, title string, memberIDs []uuid.UUID) (*models.Chat, error) {
	title = validation.NormalizeTitle(title)
	if title == "" || len([]rune(title)) > validation.MaxTitleLength {
		return nil, apperrors.ErrInvalidChat
	}

	now := s.now()
	participants := []models.ChatParticipant{{UserID: creatorID, Role: models.RoleAdmin, JoinedAt: now}}
	seen := map[uuid.UUID]bool{creatorID: true}
	for _, id := range memberIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		if err := s.requireUser(ctx, id); err != nil {
			return nil, err
		}
		participants = append(participants, models.ChatParticipant{UserID: id, Role: models.RoleMember, JoinedAt: now})
	}

	chat := &models.Chat{ID: uuid.New(), Type: models.ChatGroup, Title: title, CreatedAt: now}
	err := s.runner.Run(ctx, "chats.Create", func(ctx context.Context) error {
		return s.store.Chats.Create(ctx, chat, participants)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("chat_id", chat.ID.String()).Int("members", len(participants)).Msg("group created")
	return chat, nil
}

// AddParticipant lets a group admin add someone, or bring back a member who left.
func (s *ChatService) AddParticipant(ctx context.Context, chatID, adminID, userID uuid.UUID) error {
	chat, err := s.chat(ctx, chatID)
	if err != nil {
		return err
	}
	if chat.Type != models.ChatGroup {
		return apperrors.FailedPrecondition("participants can only be added to groups")
	}
	admin, err := participant(ctx, s.runner, s.store, chatID, adminID, true)
	if err != nil {
		return err
	}
	if admin.Role != models.RoleAdmin {
		return apperrors.ErrNotChatAdmin
	}
	if err := s.requireUser(ctx, userID); err != nil {
		return err
	}

	p := &models.ChatParticipant{ChatID: chatID, UserID: userID, Role: models.RoleMember, JoinedAt: s.now()}
	return s.runner.Run(ctx, "chats.AddParticipant", func(ctx context.Context) error {
		return s.store.Chats.AddParticipant(ctx, p)
	})
}

// Leave marks userID as gone. History stays readable, sends are refused.
func (s *ChatService) Leave(ctx context.Context, chatID, userID uuid.UUID) error {
	chat, err := s.chat(ctx, chatID)
	if err != nil {
		return err
	}
	if chat.Type == models.ChatDirect {
		return apperrors.FailedPrecondition("cannot leave a direct chat")
	}
	err = s.runner.Run(ctx, "chats.MarkLeft", func(ctx context.Context) error {
		return s.store.Chats.MarkLeft(ctx, chatID, userID, s.now())
	})
	if repository.IsNotFound(err) {
		return apperrors.ErrNotAParticipant
	}
	return err
}

// GetChat returns the chat and its participants to anyone who was ever in it.
func (s *ChatService) GetChat(ctx context.Context, chatID, userID uuid.UUID) (*models.Chat, []models.ChatParticipant, error) {
	chat, err := s.chat(ctx, chatID)
	if err != nil {
		return nil, nil, err
	}
	if _, err := participant(ctx, s.runner, s.store, chatID, userID, false); err != nil {
		return nil, nil, err
	}

	var participants []models.ChatParticipant
	err = s.runner.Run(ctx, "chats.ListParticipants", func(ctx context.Context) error {
		var err error
		participants, err = s.store.Chats.ListParticipants(ctx, chatID, true)
		return err
	})
	return chat, participants, err
}

func (s *ChatService) ListChats(ctx context.Context, userID uuid.UUID) ([]models.Chat, error) {
	var chats []models.Chat
	err := s.runner.Run(ctx, "chats.ListForUser", func(ctx context.Context) error {
		var err error
		chats, err = s.store.Chats.ListForUser(ctx, userID)
		return err
	})
	return chats, err
}

// ListMessages pages backwards through history. beforeSeq 0 means newest.
func (s *ChatService) ListMessages(ctx context.Context, chatID, userID uuid.UUID, beforeSeq int64, limit int) ([]models.Message, error) {
	if _, err := participant(ctx, s.runner, s.store, chatID, userID, false); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	latest := beforeSeq <= 0 && limit == DefaultPageSize
	if latest {
		if page, ok := s.pages.GetLatest(ctx, chatID); ok {
			return page, nil
		}
	}

	var messages []models.Message
	err := s.runner.Run(ctx, "messages.ListBySeq", func(ctx context.Context) error {
		var err error
		messages, err = s.store.Messages.ListBySeq(ctx, chatID, beforeSeq, limit)
		return err
	})
	if err != nil {
		return nil, err
	}
	if latest {
		if err := s.pages.SetLatest(ctx, chatID, messages); err != nil {
			s.log.Debug().Err(err).Str("chat_id", chatID.String()).Msg("page cache write failed")
		}
	}
	return messages, nil
}

func (s *ChatService) chat(ctx context.Context, chatID uuid.UUID) (*models.Chat, error) {
	var chat *models.Chat
	err := s.runner.Run(ctx, "chats.FindByID", func(ctx context.Context) error {
		var err error
		chat, err = s.store.Chats.FindByID(ctx, chatID)
		return err
	})
	if repository.IsNotFound(err) {
		return nil, apperrors.ErrChatNotFound
	}
	return chat, err
}

func (s *ChatService) requireUser(ctx context.Context, userID uuid.UUID) error {
	return requireUser(ctx, s.runner, s.store, userID)
}

func requireUser(ctx context.Context, runner *StoreRunner, store *repository.Store, userID uuid.UUID) error {
	var ok bool
	err := runner.Run(ctx, "users.Exists", func(ctx context.Context) error {
		var err error
		ok, err = store.Users.Exists(ctx, userID)
		return err
	})
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.ErrUserNotFound
	}
	return nil
}
