package testutil

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/noteduco342/relay-backend/internal/models"
	"github.com/noteduco342/relay-backend/internal/repository"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// TestHelper provides utility functions for tests
type TestHelper struct {
	t  *testing.T
	DB *gorm.DB
}

// NewTestHelper opens a fresh migrated SQLite database for the test.
func NewTestHelper(t *testing.T) *TestHelper {
	t.Helper()
	return &TestHelper{t: t, DB: NewTestDB(t)}
}

// NewTestHelperWithDB wraps an already migrated database, e.g. a Postgres
// container in integration tests.
func NewTestHelperWithDB(t *testing.T, db *gorm.DB) *TestHelper {
	return &TestHelper{t: t, DB: db}
}

// NewTestDB returns a migrated SQLite database in a temp dir. Foreign keys
// are enforced and a single connection serializes writers.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "relay_test.db")
	db, err := repository.Open(sqlite.Open(repository.SQLiteDSN(path)))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("test db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// CreateUser inserts a user with a unique username derived from name.
func (h *TestHelper) CreateUser(name string) *models.User {
	h.t.Helper()
	if name == "" {
		name = "testuser"
	}
	user := &models.User{
		ID:        uuid.New(),
		Username:  fmt.Sprintf("%s_%s", name, uuid.NewString()[:8]),
		PublicKey: "pk-" + name,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.DB.Create(user).Error; err != nil {
		h.t.Fatalf("create user: %v", err)
	}
	return user
}

// CreateChat inserts a chat with the given members. In groups the first
// member is the admin.
func (h *TestHelper) CreateChat(chatType models.ChatType, members ...*models.User) *models.Chat {
	h.t.Helper()
	now := time.Now().UTC()
	chat := &models.Chat{ID: uuid.New(), Type: chatType, CreatedAt: now}
	if chatType == models.ChatDirect && len(members) == 2 {
		key := models.DirectPairKey(members[0].ID, members[1].ID)
		chat.DirectKey = &key
	}
	participants := make([]models.ChatParticipant, len(members))
	for i, m := range members {
		role := models.RoleMember
		if chatType == models.ChatGroup && i == 0 {
			role = models.RoleAdmin
		}
		participants[i] = models.ChatParticipant{UserID: m.ID, Role: role, JoinedAt: now}
	}
	if err := repository.NewChatRepository(h.DB).Create(context.Background(), chat, participants); err != nil {
		h.t.Fatalf("create chat: %v", err)
	}
	return chat
}

// CreateMessage inserts a text message at the chat's next sequence.
func (h *TestHelper) CreateMessage(chat *models.Chat, sender *models.User, content string) *models.Message {
	h.t.Helper()
	if content == "" {
		content = "Test message"
	}
	var msg *models.Message
	store := repository.NewStore(h.DB)
	err := store.Transaction(context.Background(), func(tx *repository.Store) error {
		seq, err := tx.Chats.NextSequence(context.Background(), chat.ID)
		if err != nil {
			return err
		}
		msg = &models.Message{
			ID:        uuid.New(),
			ChatID:    chat.ID,
			SenderID:  sender.ID,
			Seq:       seq,
			Type:      models.TextMessage,
			Content:   content,
			CreatedAt: time.Now().UTC(),
		}
		return tx.Messages.Create(context.Background(), msg)
	})
	if err != nil {
		h.t.Fatalf("create message: %v", err)
	}
	return msg
}
