package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/cropwise/advisor/internal/config"
	"github.com/cropwise/advisor/internal/domain"
	"github.com/cropwise/advisor/internal/llm"
	"github.com/cropwise/advisor/internal/prompt"
	"github.com/cropwise/advisor/internal/retrieval"
	"go.uber.org/zap"
)

// AdvisoryService serves the single-shot endpoints: symptom check, image
// identification and advisory drafting. They share the prompt assembler,
// generation client and response parser with the chat pipeline but hold no
// conversation state.
type AdvisoryService struct {
	cfg       *config.Config
	retriever *retrieval.Retriever
	generator llm.Generator
	vision    llm.VisionGenerator
	logger    *zap.Logger
}

// NewAdvisoryService creates a new advisory service. vision may be nil when
// no vision backend is configured.
func NewAdvisoryService(
	cfg *config.Config,
	retriever *retrieval.Retriever,
	generator llm.Generator,
	vision llm.VisionGenerator,
	logger *zap.Logger,
) *AdvisoryService {
	return &AdvisoryService{
		cfg:       cfg,
		retriever: retriever,
		generator: generator,
		vision:    vision,
		logger:    logger,
	}
}

// CheckSymptoms diagnoses a symptom description. Parse failures degrade to
// an unstructured reply, like the chat pipeline.
func (s *AdvisoryService) CheckSymptoms(ctx context.Context, req *domain.SymptomCheckRequest) (*domain.StructuredReply, error) {
	bundle, err := s.retriever.Retrieve(req.Crop, s.cfg.Pipeline.PestLimit)
	if err != nil {
		s.logger.Warn("context retrieval degraded", zap.String("crop", req.Crop), zap.Error(err))
	}

	question := fmt.Sprintf("My %s crop shows these symptoms: %s", req.Crop, req.Symptoms)
	genReq := prompt.Assemble(prompt.SymptomCheckPolicy, bundle, nil, question, prompt.Options{
		Crop:     req.Crop,
		Location: req.Location,
		Language: req.Language,
	})

	raw, err := s.generator.Generate(ctx, genReq)
	if err != nil {
		return nil, err
	}

	reply, parseErr := llm.ParseStructuredReply(raw)
	if parseErr != nil {
		reply = &domain.StructuredReply{Reply: raw}
		if strings.TrimSpace(raw) == "" {
			reply.Reply = FallbackReply
		}
		reply.Normalize()
	}
	return reply, nil
}

// IdentifyImage identifies a pest from a photo
func (s *AdvisoryService) IdentifyImage(ctx context.Context, req *domain.IdentifyRequest) (*domain.PestIdentification, error) {
	if s.vision == nil {
		return nil, fmt.Errorf("%w: no vision backend configured", domain.ErrGeneration)
	}

	userPrompt := "Identify the pest or disease in this photo."
	if req.Crop != "" {
		userPrompt += fmt.Sprintf(" The crop is %s.", req.Crop)
	}
	if req.Notes != "" {
		userPrompt += " Farmer notes: " + req.Notes
	}

	raw, err := s.vision.GenerateVision(ctx, llm.VisionRequest{
		SystemPrompt: prompt.IdentifyPolicy,
		Prompt:       userPrompt,
		ImageURL:     req.Image,
	})
	if err != nil {
		return nil, err
	}

	identification := &domain.PestIdentification{}
	if err := llm.DecodeInto(raw, identification); err != nil {
		return nil, err
	}
	identification.Normalize()
	return identification, nil
}

// GenerateAdvisory drafts a full IPM-ordered advisory for a crop/pest pair
func (s *AdvisoryService) GenerateAdvisory(ctx context.Context, req *domain.AdvisoryGenerateRequest) (*domain.AdvisoryDraft, error) {
	bundle, err := s.retriever.Retrieve(req.Crop, s.cfg.Pipeline.PestLimit)
	if err != nil {
		s.logger.Warn("context retrieval degraded", zap.String("crop", req.Crop), zap.Error(err))
	}

	question := fmt.Sprintf("Draft a complete pest advisory for %s on %s.", req.Pest, req.Crop)
	genReq := prompt.Assemble(prompt.AdvisoryPolicy, bundle, nil, question, prompt.Options{
		Crop:     req.Crop,
		Language: req.Language,
	})

	raw, err := s.generator.Generate(ctx, genReq)
	if err != nil {
		return nil, err
	}

	draft := &domain.AdvisoryDraft{}
	if err := llm.DecodeInto(raw, draft); err != nil {
		return nil, err
	}
	draft.Normalize()
	return draft, nil
}
