package repository

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/cropwise/advisor/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := NewDB(filepath.Join(t.TempDir(), "advisor.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestGetOrCreateNewConversation(t *testing.T) {
	repo := NewConversationRepository(newTestDB(t))

	res, err := repo.GetOrCreate("farmer-1", "", "My wheat leaves are curling", &domain.ChatContext{
		Crop:     "Wheat",
		Location: "Punjab",
		Language: "Hindi",
	})
	require.NoError(t, err)
	assert.True(t, res.Created)

	conv := res.Conversation
	assert.NotEmpty(t, conv.ID)
	assert.Equal(t, "farmer-1", conv.OwnerID)
	assert.Equal(t, "My wheat leaves are curling", conv.Title)
	assert.Equal(t, "Wheat", conv.Crop)
	assert.Equal(t, 0, conv.TurnCount)

	loaded, err := repo.Get(conv.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "Hindi", loaded.Language)
}

func TestGetOrCreateExisting(t *testing.T) {
	repo := NewConversationRepository(newTestDB(t))

	created, err := repo.GetOrCreate("farmer-1", "", "hello", nil)
	require.NoError(t, err)

	res, err := repo.GetOrCreate("farmer-1", created.Conversation.ID, "ignored", nil)
	require.NoError(t, err)
	assert.False(t, res.Created)
	assert.Equal(t, created.Conversation.ID, res.Conversation.ID)
}

func TestGetOrCreateOwnershipCheck(t *testing.T) {
	repo := NewConversationRepository(newTestDB(t))

	created, err := repo.GetOrCreate("alice", "", "my crops", nil)
	require.NoError(t, err)

	// cross-user access is rejected, not redirected
	_, err = repo.GetOrCreate("bob", created.Conversation.ID, "steal", nil)
	assert.True(t, errors.Is(err, domain.ErrConversationNotFound))

	_, err = repo.GetOrCreate("alice", "no-such-id", "hello", nil)
	assert.True(t, errors.Is(err, domain.ErrConversationNotFound))
}

func TestTitleFromSeed(t *testing.T) {
	// 120 runes of multi-byte text must truncate between runes, not inside one
	seed := strings.Repeat("धान", 40)
	got := titleFromSeed(seed)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, 80, utf8.RuneCountInString(got))
	assert.True(t, strings.HasPrefix(seed, got))

	assert.Equal(t, "short", titleFromSeed("  short  "))
	assert.Equal(t, "New conversation", titleFromSeed("   "))
}

func TestHistoryCorruptMetadata(t *testing.T) {
	db := newTestDB(t)
	repo := NewConversationRepository(db)

	res, err := repo.GetOrCreate("farmer-1", "", "q", nil)
	require.NoError(t, err)
	convID := res.Conversation.ID

	_, err = db.Exec(`
		INSERT INTO messages (id, conversation_id, role, content, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, "msg-corrupt", convID, domain.RoleAssistant, "the answer", "{not json", time.Now())
	require.NoError(t, err)

	// the message survives, its unreadable metadata does not
	history, err := repo.History(convID, 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "the answer", history[0].Content)
	assert.Nil(t, history[0].Metadata)
}

func TestMessagePersistenceOrdering(t *testing.T) {
	repo := NewConversationRepository(newTestDB(t))

	res, err := repo.GetOrCreate("farmer-1", "", "q", nil)
	require.NoError(t, err)
	convID := res.Conversation.ID

	userMsg := &domain.Message{ConversationID: convID, Role: domain.RoleUser, Content: "question"}
	require.NoError(t, repo.CreateMessage(userMsg))

	assistantMsg := &domain.Message{
		ConversationID: convID,
		Role:           domain.RoleAssistant,
		Content:        "answer",
		Metadata: &domain.ReplyMetadata{
			Actions:           []string{"spray neem oil"},
			LikelyCauses:      []domain.LikelyCause{},
			Warnings:          []string{},
			FollowUpQuestions: []string{},
		},
	}
	require.NoError(t, repo.CreateMessage(assistantMsg))

	history, err := repo.History(convID, 0)
	require.NoError(t, err)
	require.Len(t, history, 2)

	assert.Equal(t, domain.RoleUser, history[0].Role)
	assert.Equal(t, domain.RoleAssistant, history[1].Role)
	assert.True(t, history[0].CreatedAt.Before(history[1].CreatedAt),
		"user message must be recorded strictly before the assistant message")

	require.NotNil(t, history[1].Metadata)
	assert.Equal(t, []string{"spray neem oil"}, history[1].Metadata.Actions)
}

func TestHistoryWindow(t *testing.T) {
	repo := NewConversationRepository(newTestDB(t))

	res, err := repo.GetOrCreate("farmer-1", "", "q", nil)
	require.NoError(t, err)
	convID := res.Conversation.ID

	contents := []string{"one", "two", "three", "four", "five"}
	for _, content := range contents {
		require.NoError(t, repo.CreateMessage(&domain.Message{
			ConversationID: convID,
			Role:           domain.RoleUser,
			Content:        content,
		}))
	}

	// window keeps the most recent messages, in chronological order
	history, err := repo.History(convID, 3)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, "three", history[0].Content)
	assert.Equal(t, "five", history[2].Content)
}

func TestTouchUpdatesConversation(t *testing.T) {
	repo := NewConversationRepository(newTestDB(t))

	res, err := repo.GetOrCreate("farmer-1", "", "q", nil)
	require.NoError(t, err)
	conv := res.Conversation

	require.NoError(t, repo.Touch(conv.ID, 2))
	require.NoError(t, repo.Touch(conv.ID, 2))

	loaded, err := repo.Get(conv.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, loaded.TurnCount)
	assert.False(t, loaded.LastActivityAt.Before(conv.LastActivityAt))
}

func TestCropLookupCaseInsensitive(t *testing.T) {
	repo := NewCropRepository(newTestDB(t))

	require.NoError(t, repo.CreateCrop(&domain.Crop{Name: "Wheat", ScientificName: "Triticum aestivum"}))

	for _, name := range []string{"Wheat", "wheat", "WHEAT", " wheat "} {
		crop, err := repo.GetCropByName(name)
		require.NoError(t, err)
		require.NotNil(t, crop, "lookup %q", name)
		assert.Equal(t, "Wheat", crop.Name)
	}

	missing, err := repo.GetCropByName("Nonexistent Crop")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestPestAndAdvisoryBatchLookup(t *testing.T) {
	repo := NewCropRepository(newTestDB(t))

	crop := &domain.Crop{Name: "Maize"}
	require.NoError(t, repo.CreateCrop(crop))

	pestA := &domain.Pest{CropID: crop.ID, Name: "Armyworm"}
	pestB := &domain.Pest{CropID: crop.ID, Name: "Stem borer"}
	require.NoError(t, repo.CreatePest(pestA))
	require.NoError(t, repo.CreatePest(pestB))

	require.NoError(t, repo.CreateAdvisory(&domain.Advisory{
		PestID:     pestA.ID,
		Prevention: "early planting",
	}))

	pests, err := repo.ListPestsByCrop(crop.ID, 10)
	require.NoError(t, err)
	require.Len(t, pests, 2)

	advisories, err := repo.ListAdvisoriesByPests([]string{pestA.ID, pestB.ID})
	require.NoError(t, err)
	require.Len(t, advisories, 1)
	assert.Equal(t, pestA.ID, advisories[0].PestID)

	// empty batch short-circuits without touching the store
	none, err := repo.ListAdvisoriesByPests(nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestPestLimit(t *testing.T) {
	repo := NewCropRepository(newTestDB(t))

	crop := &domain.Crop{Name: "Rice"}
	require.NoError(t, repo.CreateCrop(crop))
	for i := 0; i < 5; i++ {
		require.NoError(t, repo.CreatePest(&domain.Pest{CropID: crop.ID, Name: string(rune('a' + i))}))
	}

	pests, err := repo.ListPestsByCrop(crop.ID, 3)
	require.NoError(t, err)
	assert.Len(t, pests, 3)
}
