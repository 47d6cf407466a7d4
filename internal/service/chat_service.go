package service

import (
	"context"
	"strings"
	"time"

	"github.com/cropwise/advisor/internal/config"
	"github.com/cropwise/advisor/internal/domain"
	"github.com/cropwise/advisor/internal/llm"
	"github.com/cropwise/advisor/internal/prompt"
	"github.com/cropwise/advisor/internal/repository"
	"github.com/cropwise/advisor/internal/retrieval"
	"github.com/cropwise/advisor/internal/weather"
	"go.uber.org/zap"
)

// FallbackReply is streamed when generation produced no usable text at all
const FallbackReply = "Sorry, I could not produce an answer this time. Please ask again in a moment."

const weatherTimeout = 3 * time.Second

// ChatService orchestrates one conversational advisory turn: resolve the
// conversation, retrieve domain context, assemble the prompt, generate,
// parse, re-chunk to the client, and persist the turn.
type ChatService struct {
	cfg           *config.Config
	conversations *repository.ConversationRepository
	retriever     *retrieval.Retriever
	generator     llm.Generator
	weather       weather.Provider
	turnLog       *TurnLogger
	logger        *zap.Logger
}

// NewChatService creates a new chat service. weatherProvider may be nil.
func NewChatService(
	cfg *config.Config,
	conversations *repository.ConversationRepository,
	retriever *retrieval.Retriever,
	generator llm.Generator,
	weatherProvider weather.Provider,
	turnLog *TurnLogger,
	logger *zap.Logger,
) *ChatService {
	return &ChatService{
		cfg:           cfg,
		conversations: conversations,
		retriever:     retriever,
		generator:     generator,
		weather:       weatherProvider,
		turnLog:       turnLog,
		logger:        logger,
	}
}

// ChatStream runs one advisory turn and streams the answer. Resolution
// failures (unknown conversation, wrong owner) are returned before any
// event is emitted so the transport can answer with a plain error.
func (s *ChatService) ChatStream(ctx context.Context, ownerID string, req *domain.ChatRequest) (<-chan domain.StreamEvent, error) {
	if strings.TrimSpace(req.Message) == "" {
		return nil, domain.ErrInvalidRequest
	}

	res, err := s.conversations.GetOrCreate(ownerID, req.ConversationID, req.Message, req.Context)
	if err != nil {
		return nil, err
	}

	events := make(chan domain.StreamEvent, 16)
	go s.runTurn(ctx, res, ownerID, req, events)
	return events, nil
}

func (s *ChatService) runTurn(ctx context.Context, res *repository.GetOrCreateResult, ownerID string, req *domain.ChatRequest, events chan<- domain.StreamEvent) {
	defer close(events)

	started := time.Now()
	conv := res.Conversation
	rec := TurnRecord{
		ConversationID: conv.ID,
		OwnerID:        ownerID,
		QuestionLen:    len(req.Message),
	}

	if res.Created {
		s.send(ctx, events, domain.StreamEvent{
			Type:           domain.EventConversationID,
			ConversationID: conv.ID,
		})
	}

	// Prior turns are read before the new user message is stored so the
	// assembled history does not contain it twice
	history, err := s.conversations.History(conv.ID, s.cfg.Pipeline.HistoryWindow)
	if err != nil {
		s.logger.Error("failed to load history", zap.String("conversation_id", conv.ID), zap.Error(err))
		history = nil
	}

	// The user message is durably recorded before generation begins
	userMsg := &domain.Message{
		ConversationID: conv.ID,
		Role:           domain.RoleUser,
		Content:        req.Message,
	}
	if err := s.conversations.CreateMessage(userMsg); err != nil {
		s.logger.Error("failed to persist user message", zap.String("conversation_id", conv.ID), zap.Error(err))
		s.send(ctx, events, domain.StreamEvent{Type: domain.EventError, Error: "failed to record message"})
		rec.Err = err
		rec.Duration = time.Since(started)
		s.turnLog.Record(rec)
		return
	}

	opts := s.resolveOptions(conv, req.Context)
	rec.Crop = opts.Crop

	// Retrieval failure degrades to an empty bundle, it never fails the turn
	bundle, err := s.retriever.Retrieve(opts.Crop, s.cfg.Pipeline.PestLimit)
	if err != nil {
		s.logger.Warn("context retrieval degraded", zap.String("crop", opts.Crop), zap.Error(err))
	}

	if s.weather != nil && opts.Location != "" {
		opts.Weather = s.currentWeather(ctx, opts.Location)
	}

	genReq := prompt.Assemble(prompt.ChatPolicy, bundle, history, req.Message, opts)

	raw, err := s.drainGeneration(ctx, genReq)
	if err != nil {
		s.logger.Error("generation failed", zap.String("conversation_id", conv.ID), zap.Error(err))
		s.send(ctx, events, domain.StreamEvent{Type: domain.EventError, Error: "generation failed"})
		rec.Err = err
		rec.Duration = time.Since(started)
		s.turnLog.Record(rec)
		return
	}

	reply, parseErr := llm.ParseStructuredReply(raw)
	if parseErr != nil {
		// A readable unstructured answer beats no answer
		reply = &domain.StructuredReply{Reply: raw}
		if strings.TrimSpace(raw) == "" {
			reply.Reply = FallbackReply
		}
		reply.Normalize()
	}
	rec.Parsed = parseErr == nil
	rec.ReplyLen = len(reply.Reply)

	// Client disconnection stops the event stream but not the bookkeeping
	// below: the turn was fully generated
	for ev := range Rechunk(ctx, reply, s.cfg.Pipeline.ChunkDelay) {
		if !s.send(ctx, events, ev) {
			break
		}
	}

	assistantMsg := &domain.Message{
		ConversationID: conv.ID,
		Role:           domain.RoleAssistant,
		Content:        reply.Reply,
		Metadata:       reply.Metadata(),
	}
	if err := s.conversations.CreateMessage(assistantMsg); err != nil {
		// The answer already reached the client; surface to operators only
		s.logger.Error("failed to persist assistant message",
			zap.String("conversation_id", conv.ID), zap.Error(err))
	} else if err := s.conversations.Touch(conv.ID, 2); err != nil {
		s.logger.Error("failed to update conversation metadata",
			zap.String("conversation_id", conv.ID), zap.Error(err))
	}

	rec.Duration = time.Since(started)
	s.turnLog.Record(rec)
}

// ListConversations returns the owner's conversations, most recent first
func (s *ChatService) ListConversations(ctx context.Context, ownerID string) ([]*domain.Conversation, error) {
	return s.conversations.ListByOwner(ownerID)
}

// ConversationHistory returns the full message history of a conversation,
// enforcing ownership
func (s *ChatService) ConversationHistory(ctx context.Context, ownerID, conversationID string) ([]*domain.Message, error) {
	conv, err := s.conversations.Get(conversationID)
	if err != nil {
		return nil, err
	}
	if conv == nil || conv.OwnerID != ownerID {
		return nil, domain.ErrConversationNotFound
	}
	return s.conversations.History(conversationID, 0)
}

// resolveOptions merges the per-request context over the stored
// conversation context
func (s *ChatService) resolveOptions(conv *domain.Conversation, cctx *domain.ChatContext) prompt.Options {
	opts := prompt.Options{
		Crop:     conv.Crop,
		Location: conv.Location,
		Language: conv.Language,
	}
	if cctx != nil {
		if cctx.Crop != "" {
			opts.Crop = cctx.Crop
		}
		if cctx.Location != "" {
			opts.Location = cctx.Location
		}
		if cctx.Language != "" {
			opts.Language = cctx.Language
		}
	}
	return opts
}

func (s *ChatService) currentWeather(ctx context.Context, location string) string {
	wctx, cancel := context.WithTimeout(ctx, weatherTimeout)
	defer cancel()

	conditions, err := s.weather.Current(wctx, location)
	if err != nil {
		s.logger.Debug("weather lookup skipped", zap.String("location", location), zap.Error(err))
		return ""
	}
	return conditions.Summary()
}

// drainGeneration consumes the full fragment stream and returns the
// concatenated raw output
func (s *ChatService) drainGeneration(ctx context.Context, req llm.Request) (string, error) {
	fragments, err := s.generator.GenerateStream(ctx, req)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for frag := range fragments {
		if frag.Err != nil {
			return "", frag.Err
		}
		sb.WriteString(frag.Text)
	}
	return sb.String(), nil
}

func (s *ChatService) send(ctx context.Context, events chan<- domain.StreamEvent, ev domain.StreamEvent) bool {
	select {
	case events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}
