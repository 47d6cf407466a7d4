package repository

import (
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/cropwise/advisor/internal/domain"
	"github.com/google/uuid"
)

// ConversationRepository handles conversation and message persistence
type ConversationRepository struct {
	db *DB
}

// NewConversationRepository creates a new conversation repository
func NewConversationRepository(db *DB) *ConversationRepository {
	return &ConversationRepository{db: db}
}

// GetOrCreateResult reports whether GetOrCreate created the conversation
type GetOrCreateResult struct {
	Conversation *domain.Conversation
	Created      bool
}

// GetOrCreate loads a conversation by ID, enforcing ownership, or creates a
// new one when no ID is given. An ID that does not exist or belongs to a
// different owner fails with domain.ErrConversationNotFound.
func (r *ConversationRepository) GetOrCreate(ownerID, conversationID, seedMessage string, cctx *domain.ChatContext) (*GetOrCreateResult, error) {
	if conversationID != "" {
		conv, err := r.Get(conversationID)
		if err != nil {
			return nil, err
		}
		if conv == nil || conv.OwnerID != ownerID {
			return nil, domain.ErrConversationNotFound
		}
		return &GetOrCreateResult{Conversation: conv}, nil
	}

	conv := &domain.Conversation{
		ID:      uuid.New().String(),
		OwnerID: ownerID,
		Title:   titleFromSeed(seedMessage),
	}
	if cctx != nil {
		conv.Crop = cctx.Crop
		conv.Location = cctx.Location
		conv.Language = cctx.Language
	}
	now := time.Now()
	conv.CreatedAt = now
	conv.LastActivityAt = now

	_, err := r.db.Exec(`
		INSERT INTO conversations (id, owner_id, title, crop, location, language, turn_count, last_activity_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, 0, ?, ?)
	`, conv.ID, conv.OwnerID, conv.Title, conv.Crop, conv.Location, conv.Language,
		conv.LastActivityAt, conv.CreatedAt)
	if err != nil {
		return nil, err
	}

	return &GetOrCreateResult{Conversation: conv, Created: true}, nil
}

// Get retrieves a conversation by ID
func (r *ConversationRepository) Get(id string) (*domain.Conversation, error) {
	conv := &domain.Conversation{}
	var crop, location, language sql.NullString

	err := r.db.QueryRow(`
		SELECT id, owner_id, title, crop, location, language, turn_count, last_activity_at, created_at
		FROM conversations WHERE id = ?
	`, id).Scan(&conv.ID, &conv.OwnerID, &conv.Title, &crop, &location, &language,
		&conv.TurnCount, &conv.LastActivityAt, &conv.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	conv.Crop = crop.String
	conv.Location = location.String
	conv.Language = language.String

	return conv, nil
}

// ListByOwner retrieves all conversations for an owner, most recent first
func (r *ConversationRepository) ListByOwner(ownerID string) ([]*domain.Conversation, error) {
	rows, err := r.db.Query(`
		SELECT id, owner_id, title, crop, location, language, turn_count, last_activity_at, created_at
		FROM conversations WHERE owner_id = ?
		ORDER BY last_activity_at DESC
	`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var conversations []*domain.Conversation
	for rows.Next() {
		conv := &domain.Conversation{}
		var crop, location, language sql.NullString

		if err := rows.Scan(&conv.ID, &conv.OwnerID, &conv.Title, &crop, &location,
			&language, &conv.TurnCount, &conv.LastActivityAt, &conv.CreatedAt); err != nil {
			return nil, err
		}

		conv.Crop = crop.String
		conv.Location = location.String
		conv.Language = language.String
		conversations = append(conversations, conv)
	}

	return conversations, rows.Err()
}

// Touch bumps the last-activity timestamp and adds turnDelta to the turn count
func (r *ConversationRepository) Touch(id string, turnDelta int) error {
	_, err := r.db.Exec(`
		UPDATE conversations SET last_activity_at = ?, turn_count = turn_count + ?
		WHERE id = ?
	`, time.Now(), turnDelta, id)
	return err
}

// CreateMessage creates a new message
func (r *ConversationRepository) CreateMessage(message *domain.Message) error {
	if message.ID == "" {
		message.ID = uuid.New().String()
	}
	message.CreatedAt = time.Now()

	var metadataJSON sql.NullString
	if message.Metadata != nil {
		data, _ := json.Marshal(message.Metadata)
		metadataJSON = sql.NullString{String: string(data), Valid: true}
	}

	_, err := r.db.Exec(`
		INSERT INTO messages (id, conversation_id, role, content, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, message.ID, message.ConversationID, message.Role, message.Content,
		metadataJSON, message.CreatedAt)

	return err
}

// History retrieves the most recent `window` messages of a conversation in
// chronological order. A window of 0 or less returns all messages.
func (r *ConversationRepository) History(conversationID string, window int) ([]*domain.Message, error) {
	query := `
		SELECT id, conversation_id, role, content, metadata, created_at
		FROM messages WHERE conversation_id = ?
		ORDER BY created_at ASC
	`
	args := []any{conversationID}
	if window > 0 {
		query = `
			SELECT id, conversation_id, role, content, metadata, created_at
			FROM (
				SELECT id, conversation_id, role, content, metadata, created_at
				FROM messages WHERE conversation_id = ?
				ORDER BY created_at DESC LIMIT ?
			) ORDER BY created_at ASC
		`
		args = append(args, window)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []*domain.Message
	for rows.Next() {
		message := &domain.Message{}
		var metadataJSON sql.NullString

		if err := rows.Scan(&message.ID, &message.ConversationID, &message.Role,
			&message.Content, &metadataJSON, &message.CreatedAt); err != nil {
			return nil, err
		}

		if metadataJSON.Valid && metadataJSON.String != "" {
			if err := json.Unmarshal([]byte(metadataJSON.String), &message.Metadata); err != nil {
				// Corrupt metadata must not hide the message itself
				message.Metadata = nil
			}
		}
		messages = append(messages, message)
	}

	return messages, rows.Err()
}

// CountMessages returns the number of messages in a conversation
func (r *ConversationRepository) CountMessages(conversationID string) (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM messages WHERE conversation_id = ?`, conversationID).Scan(&count)
	return count, err
}

func titleFromSeed(seed string) string {
	title := strings.TrimSpace(seed)
	if title == "" {
		return "New conversation"
	}
	const maxTitle = 80
	if runes := []rune(title); len(runes) > maxTitle {
		title = string(runes[:maxTitle])
	}
	return title
}
