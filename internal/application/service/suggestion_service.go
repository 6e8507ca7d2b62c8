// Package service implements the application services that orchestrate
// validation, the semantic cache and the generation backend. Handlers
// stay thin; everything between "request is in budget" and "payload is
// ready" lives here.
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

const suggestionSystemPrompt = `You generate short, practical prompt ideas for a 3D print ideation tool.
Return STRICT JSON only. No markdown. No commentary.
Output must be: { "prompts": [ ... ] }
Return exactly 5 prompts.

Each prompt must:
- Be 1 sentence.
- Include practical constraints (material, time, use case, or audience).
- Be safe and legal.
- Be distinct from the others.`

// SuggestOutcome is a suggestion payload plus where it came from.
type SuggestOutcome struct {
	Payload  *dto.PromptResponse
	CacheHit bool
}

// SuggestionService serves prompt suggestions through the read-through
// semantic cache.
type SuggestionService struct {
	cache    *cache.SemanticCache
	llm      llm.Client
	metrics  *monitoring.Metrics
	cacheTTL time.Duration
	log      logger.Logger
}

// NewSuggestionService creates the service. metrics may be nil in tests.
func NewSuggestionService(
	c *cache.SemanticCache,
	llmClient llm.Client,
	metrics *monitoring.Metrics,
	cacheTTL time.Duration,
	log logger.Logger,
) *SuggestionService {
	return &SuggestionService{
		cache:    c,
		llm:      llmClient,
		metrics:  metrics,
		cacheTTL: cacheTTL,
		log:      log.WithComponent("suggestions"),
	}
}

// Suggest validates the request, consults the cache, and only on a miss
// calls the generation backend and stores the result. Validation runs
// first so malformed input never pollutes the cache or spends quota.
func (s *SuggestionService) Suggest(ctx context.Context, req dto.PromptRequest) (*SuggestOutcome, error) {
	printer := fieldOrDefault(req.Printer, "Unknown printer")
	filament := fieldOrDefault(req.Filament, "Unknown filament")
	timeLimit := fieldOrDefault(req.TimeLimit, "Any")
	skill := fieldOrDefault(req.Skill, "Any")

	if err := validatePromptFields(printer, filament, timeLimit, skill); err != nil {
		return nil, err
	}

	fingerprint := cache.PromptFingerprint(printer, filament, timeLimit, skill)

	raw, found, err := s.cache.Lookup(ctx, fingerprint)
	if err != nil {
		return nil, err
	}
	if found {
		var payload dto.PromptResponse
		if unmarshalErr := json.Unmarshal(raw, &payload); unmarshalErr == nil {
			s.recordLookup("prompts", "hit")
			return &SuggestOutcome{Payload: &payload, CacheHit: true}, nil
		}
		// Unreadable entry: fall through and regenerate, expiry will
		// eventually clean the bad value up.
		s.log.Warn(ctx, "discarding unreadable cache entry", logger.String("fingerprint", fingerprint))
	}
	s.recordLookup("prompts", "miss")

	user := fmt.Sprintf(`Generate prompt suggestions for:
- Printer: %s
- Filament: %s
- Time limit: %s
- Skill: %s`, printer, filament, timeLimit, skill)

	text, err := s.llm.Complete(ctx, suggestionSystemPrompt, user)
	if err != nil {
		return nil, err
	}

	prompts, err := parsePromptList(text)
	if err != nil {
		return nil, err
	}

	payload := &dto.PromptResponse{Prompts: prompts}
	if err := s.cache.Store(ctx, fingerprint, payload, s.cacheTTL); err != nil {
		return nil, err
	}

	return &SuggestOutcome{Payload: payload, CacheHit: false}, nil
}

func (s *SuggestionService) recordLookup(namespace, outcome string) {
	if s.metrics != nil {
		s.metrics.RecordCacheLookup(namespace, outcome)
	}
}

func validatePromptFields(printer, filament, timeLimit, skill string) error {
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
	if err := utils.ValidateOneOf("filament", filament, constants.AllowedFilaments); err != nil {
		return err
	}
	if err := utils.ValidateOneOf("timeLimit", timeLimit, constants.AllowedTimeLimits); err != nil {
		return err
	}
	return utils.ValidateOneOf("skill", skill, constants.AllowedSkills)
}

// parsePromptList enforces the strict-JSON contract on the model output:
// a {"prompts": [...]} object, trimmed, empties dropped, capped at five.
func parsePromptList(text string) ([]string, error) {
	var parsed struct {
		Prompts []string `json:"prompts"`
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &parsed); err != nil || parsed.Prompts == nil {
		return nil, errors.ErrUpstreamMalformed("Model returned invalid JSON.").
			WithMetadata("label", "invalid_model_json")
	}

	prompts := make([]string, 0, constants.MaxSuggestions)
	for _, p := range parsed.Prompts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		prompts = append(prompts, p)
		if len(prompts) == constants.MaxSuggestions {
			break
		}
	}

	if len(prompts) == 0 {
		return nil, errors.ErrUpstreamMalformed("No prompts generated.").
			WithMetadata("label", "empty_prompt_list")
	}
	return prompts, nil
}

// fieldOrDefault applies the default only when the field was absent.
// A present-but-empty value goes through validation as-is.
func fieldOrDefault(field *string, def string) string {
	if field == nil {
		return def
	}
	return strings.TrimSpace(*field)
}
