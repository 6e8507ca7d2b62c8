package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/printstarter/printstarter/internal/application/dto"
	"github.com/printstarter/printstarter/internal/infrastructure/cache"
	"github.com/printstarter/printstarter/internal/infrastructure/llm"
	"github.com/printstarter/printstarter/internal/infrastructure/monitoring"
	"github.com/printstarter/printstarter/pkg/constants"
	"github.com/printstarter/printstarter/pkg/errors"
	"github.com/printstarter/printstarter/pkg/logger"
	"github.com/printstarter/printstarter/pkg/utils"
)

const ideaSystemPrompt = `You generate 3D print product ideas for makers.
Return STRICT JSON only. No markdown. No commentary.
Output must be: { "ideas": [ ... ] }
Return 4 to 6 ideas.

Each idea must be an object with:
- "title": short product name.
- "description": 1-2 sentences on what it is and who buys it.
- "difficulty": one of "beginner", "intermediate", "advanced".
- "estimated_print_time_hours": number.
- "estimated_material_grams": number.
- "monetization_score": integer 1-5.

Every idea must be printable on a consumer FDM printer, safe and legal.`

// GenerateOutcome is a generated idea payload plus where it came from.
type GenerateOutcome struct {
	Payload  *dto.GenerateResponse
	CacheHit bool
}

// IdeaService serves product-idea generation through the semantic cache.
// Idea objects are opaque: scoring and monetization fields pass through
// from the model untouched.
type IdeaService struct {
	cache    *cache.SemanticCache
	llm      llm.Client
	metrics  *monitoring.Metrics
	cacheTTL time.Duration
	log      logger.Logger
}

// NewIdeaService creates the service. metrics may be nil in tests.
func NewIdeaService(
	c *cache.SemanticCache,
	llmClient llm.Client,
	metrics *monitoring.Metrics,
	cacheTTL time.Duration,
	log logger.Logger,
) *IdeaService {
	return &IdeaService{
		cache:    c,
		llm:      llmClient,
		metrics:  metrics,
		cacheTTL: cacheTTL,
		log:      log.WithComponent("ideas"),
	}
}

// Generate validates the request, consults the cache, and on a miss asks
// the backend for ideas and stores them.
func (s *IdeaService) Generate(ctx context.Context, req dto.GenerateRequest) (*GenerateOutcome, error) {
	printer := fieldOrDefault(req.Printer, "")
	filament := fieldOrDefault(req.Filament, "")
	timeLimit := fieldOrDefault(req.TimeLimit, "Any")
	skill := fieldOrDefault(req.Skill, "Any")
	prompt := fieldOrDefault(req.Prompt, "")

	if err := validateIdeaFields(printer, filament, timeLimit, skill, prompt); err != nil {
		return nil, err
	}

	fingerprint := cache.IdeaFingerprint(printer, filament, timeLimit, skill, prompt)

	raw, found, err := s.cache.Lookup(ctx, fingerprint)
	if err != nil {
		return nil, err
	}
	if found {
		var payload dto.GenerateResponse
		if unmarshalErr := json.Unmarshal(raw, &payload); unmarshalErr == nil {
			s.recordLookup("ideas", "hit")
			return &GenerateOutcome{Payload: &payload, CacheHit: true}, nil
		}
		s.log.Warn(ctx, "discarding unreadable cache entry", logger.String("fingerprint", fingerprint))
	}
	s.recordLookup("ideas", "miss")

	text, err := s.llm.Complete(ctx, ideaSystemPrompt, ideaUserPrompt(printer, filament, timeLimit, skill, prompt))
	if err != nil {
		return nil, err
	}

	ideas, err := parseIdeaList(text)
	if err != nil {
		return nil, err
	}

	payload := &dto.GenerateResponse{Ideas: ideas}
	if err := s.cache.Store(ctx, fingerprint, payload, s.cacheTTL); err != nil {
		return nil, err
	}

	return &GenerateOutcome{Payload: payload, CacheHit: false}, nil
}

func (s *IdeaService) recordLookup(namespace, outcome string) {
	if s.metrics != nil {
		s.metrics.RecordCacheLookup(namespace, outcome)
	}
}

// validateIdeaFields: every field is optional on this endpoint, so enum
// membership is only enforced when a non-empty value was supplied.
func validateIdeaFields(printer, filament, timeLimit, skill, prompt string) error {
	if err := utils.ValidateLength("printer", printer, constants.MaxPrinterChars); err != nil {
		return err
	}
	if err := utils.ValidateLength("filament", filament, constants.MaxFilamentChars); err != nil {
		return err
	}
	if err := utils.ValidateLength("timeLimit", timeLimit, constants.MaxTimeLimitChars); err != nil {
		return err
	}
	if err := utils.ValidateLength("skill", skill, constants.MaxSkillChars); err != nil {
		return err
	}
	if err := utils.ValidateLength("prompt", prompt, constants.MaxPromptChars); err != nil {
		return err
	}
	if filament != "" {
		if err := utils.ValidateOneOf("filament", filament, constants.AllowedFilaments); err != nil {
			return err
		}
	}
	if timeLimit != "" {
		if err := utils.ValidateOneOf("timeLimit", timeLimit, constants.AllowedTimeLimits); err != nil {
			return err
		}
	}
	if skill != "" && skill != "Any" {
		if err := utils.ValidateOneOf("skill", skill, constants.AllowedSkills); err != nil {
			return err
		}
	}
	return nil
}

func ideaUserPrompt(printer, filament, timeLimit, skill, prompt string) string {
	var b strings.Builder
	b.WriteString("Generate product ideas for:\n")
	if printer != "" {
		fmt.Fprintf(&b, "- Printer: %s\n", printer)
	}
	if filament != "" {
		fmt.Fprintf(&b, "- Filament: %s\n", filament)
	}
	fmt.Fprintf(&b, "- Time limit: %s\n", timeLimit)
	fmt.Fprintf(&b, "- Skill: %s\n", skill)
	if prompt != "" {
		fmt.Fprintf(&b, "- Focus: %s\n", prompt)
	}
	return strings.TrimSpace(b.String())
}

// parseIdeaList enforces the strict-JSON contract without interpreting
// the idea objects themselves.
func parseIdeaList(text string) ([]json.RawMessage, error) {
	var parsed struct {
		Ideas []json.RawMessage `json:"ideas"`
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &parsed); err != nil || parsed.Ideas == nil {
		return nil, errors.ErrUpstreamMalformed("Model returned invalid JSON.").
			WithMetadata("label", "invalid_model_json")
	}
	if len(parsed.Ideas) == 0 {
		return nil, errors.ErrUpstreamMalformed("No ideas generated.").
			WithMetadata("label", "empty_idea_list")
	}
	return parsed.Ideas, nil
}
