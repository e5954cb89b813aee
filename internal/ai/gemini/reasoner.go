package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"

	"github.com/spigell/school-matcher/internal/ai"
	"github.com/spigell/school-matcher/internal/logger"
	"github.com/spigell/school-matcher/internal/utils"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, system, message string) (string, error)
	Model() string
}

//go:embed prompt.md
var promptTemplate string

//go:embed relax.md
var relaxTemplate string

const (
	systemReasoning = "You are a concise, grounded sports recruiting assistant. Only use the provided fields. Do not add facts."
	systemRelax     = "You are a cautious assistant. Only suggest relaxing must-have preferences. " +
		"Do not mention budget unless it is already a must-have, and place it last."

	defaultMaxLogLength     = 200
	defaultBatchSize        = 5
	defaultRelaxThreshold   = 5
	maxUserInstructionRunes = 500
	budgetPreference        = "max_budget"
)

// PromptOverrides lets the operator steer the tone of generated reasoning.
type PromptOverrides struct {
	Tone             string
	UserInstructions string
}

// Reasoner produces school reasoning and relaxation hints with Gemini.
type Reasoner struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
	batchSize int
	overrides PromptOverrides
}

var _ ai.Reasoner = (*Reasoner)(nil)

func NewReasoner(generator contentGenerator, maxLogLength int, log *zap.Logger) *Reasoner {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	return &Reasoner{
		generator: generator,
		logger:    logger.WithAIFields(log, "gemini", generator.Model()),
		maxLogLen: maxLogLength,
		batchSize: defaultBatchSize,
	}
}

func (r *Reasoner) SetPromptOverrides(o PromptOverrides) {
	r.overrides = o
}

// Explain asks for reasoning in batches of schools. A batch whose reply
// cannot be parsed is logged and skipped; the error of the last failed batch
// is returned only when no batch succeeded.
func (r *Reasoner) Explain(ctx context.Context, req ai.Request) (map[string]ai.Reasoning, error) {
	out := make(map[string]ai.Reasoning, len(req.Schools))
	if len(req.Schools) == 0 {
		return out, nil
	}

	var lastErr error
	succeeded := 0
	for start := 0; start < len(req.Schools); start += r.batchSize {
		end := min(start+r.batchSize, len(req.Schools))
		batch := req
		batch.Schools = req.Schools[start:end]

		prompt, err := r.buildPrompt(batch)
		if err != nil {
			return nil, err
		}

		raw, err := r.generate(ctx, systemReasoning, prompt, zap.Int("batch_start", start))
		if err != nil {
			lastErr = err
			r.logger.Warn("reasoning batch failed", zap.Int("batch_start", start), zap.Error(err))
			continue
		}

		parsed, err := parseReasoning(raw)
		if err != nil {
			lastErr = err
			r.logger.Warn("reasoning batch unparsable", zap.Int("batch_start", start), zap.Error(err))
			continue
		}
		succeeded++
		for name, reasoning := range parsed {
			out[name] = reasoning
		}
	}

	if succeeded == 0 && lastErr != nil {
		return nil, lastErr
	}
	return out, nil
}

// SuggestRelaxations asks which must-haves to loosen. Nothing is asked when
// there are no must-haves or enough matches.
func (r *Reasoner) SuggestRelaxations(ctx context.Context, mustHaves map[string]any, totalMatches int) ([]ai.RelaxSuggestion, error) {
	if len(mustHaves) == 0 || totalMatches >= defaultRelaxThreshold {
		return nil, nil
	}

	mustJSON, err := json.MarshalIndent(mustHaves, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal must-haves: %w", err)
	}

	prompt := strings.ReplaceAll(relaxTemplate, "{{TOTAL_MATCHES}}", strconv.Itoa(totalMatches))
	prompt = strings.ReplaceAll(prompt, "{{MUST_HAVES_JSON}}", string(mustJSON))

	raw, err := r.generate(ctx, systemRelax, prompt, zap.Int("total_matches", totalMatches))
	if err != nil {
		return nil, err
	}
	return parseSuggestions(raw)
}

func (r *Reasoner) generate(ctx context.Context, system, prompt string, fields ...zap.Field) (string, error) {
	r.logger.Debug("gemini generate content request", append(fields,
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, r.maxLogLen)),
	)...)

	raw, err := r.generator.GenerateContent(ctx, system, prompt)
	if err != nil {
		return "", err
	}

	r.logger.Debug("gemini generate content response", append(fields,
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, r.maxLogLen)),
	)...)
	return raw, nil
}

func (r *Reasoner) buildPrompt(req ai.Request) (string, error) {
	mustJSON, err := marshalOrEmpty(req.MustHaves)
	if err != nil {
		return "", fmt.Errorf("marshal must-haves: %w", err)
	}
	niceJSON, err := marshalOrEmpty(req.NiceToHaves)
	if err != nil {
		return "", fmt.Errorf("marshal nice-to-haves: %w", err)
	}
	schoolsJSON, err := json.MarshalIndent(req.Schools, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal schools: %w", err)
	}

	prediction := "none"
	if req.Prediction != nil {
		data, err := json.Marshal(req.Prediction)
		if err != nil {
			return "", fmt.Errorf("marshal prediction: %w", err)
		}
		prediction = string(data)
	}

	tone := sanitizeSingleLine(r.overrides.Tone)
	if tone == "" {
		tone = "Encouraging"
	}
	userState := sanitizeSingleLine(req.UserState)
	if userState == "" {
		userState = "unknown"
	}

	replacer := strings.NewReplacer(
		"{{TONE}}", tone,
		"{{USER_INSTRUCTIONS}}", sanitizeInstructions(r.overrides.UserInstructions),
		"{{USER_STATE}}", userState,
		"{{MUST_HAVES_JSON}}", mustJSON,
		"{{NICE_TO_HAVES_JSON}}", niceJSON,
		"{{PREDICTION_JSON}}", prediction,
		"{{SCHOOLS_JSON}}", string(schoolsJSON),
	)
	return replacer.Replace(promptTemplate), nil
}

func marshalOrEmpty(v map[string]any) (string, error) {
	if len(v) == 0 {
		return "{}", nil
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// sanitizeSingleLine collapses whitespace and neutralises square brackets so
// operator input cannot open a new prompt section.
func sanitizeSingleLine(s string) string {
	s = strings.NewReplacer("[", "(", "]", ")").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

func sanitizeInstructions(s string) string {
	runes := []rune(strings.TrimSpace(s))
	if len(runes) > maxUserInstructionRunes {
		runes = runes[:maxUserInstructionRunes]
	}

	var lines []string
	for _, line := range strings.Split(string(runes), "\n") {
		if line = sanitizeSingleLine(line); line != "" {
			lines = append(lines, "  - "+line)
		}
	}
	if len(lines) == 0 {
		return "  - none"
	}
	return strings.Join(lines, "\n")
}

func parseReasoning(raw string) (map[string]ai.Reasoning, error) {
	var data struct {
		Schools []map[string]any `json:"schools"`
	}
	if err := json.Unmarshal([]byte(extractJSON(raw)), &data); err != nil {
		return nil, fmt.Errorf("parse gemini response: %w", err)
	}

	out := make(map[string]ai.Reasoning, len(data.Schools))
	for _, item := range data.Schools {
		name := coerceString(item["school_name"])
		if name == "" {
			continue
		}
		out[name] = ai.Reasoning{
			Summary:      coerceString(item["summary"]),
			FitQualities: coerceStrings(item["fit_qualities"]),
			Cautions:     coerceStrings(item["cautions"]),
			Raw:          raw,
		}
	}
	return out, nil
}

// parseSuggestions keeps complete suggestions and moves budget ones last.
func parseSuggestions(raw string) ([]ai.RelaxSuggestion, error) {
	var data struct {
		Suggestions []map[string]any `json:"suggestions"`
	}
	if err := json.Unmarshal([]byte(extractJSON(raw)), &data); err != nil {
		return nil, fmt.Errorf("parse gemini response: %w", err)
	}

	var regular, budget []ai.RelaxSuggestion
	for _, item := range data.Suggestions {
		s := ai.RelaxSuggestion{
			Preference: coerceString(item["preference"]),
			Suggestion: coerceString(item["suggestion"]),
			Reason:     coerceString(item["reason"]),
		}
		if s.Preference == "" || s.Suggestion == "" {
			continue
		}
		if s.Preference == budgetPreference {
			budget = append(budget, s)
			continue
		}
		regular = append(regular, s)
	}
	return append(regular, budget...), nil
}

// extractJSON strips code fences and surrounding prose from a model reply.
func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.TrimSpace(strings.Trim(raw, "`"))

	if !json.Valid([]byte(raw)) {
		start, end := strings.Index(raw, "{"), strings.LastIndex(raw, "}")
		if start != -1 && end > start {
			raw = raw[start : end+1]
		}
	}
	return raw
}

func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case fmt.Stringer:
		return strings.TrimSpace(val.String())
	default:
		if v == nil {
			return ""
		}
		bytes, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(bytes)
	}
}

func coerceStrings(v any) []string {
	switch val := v.(type) {
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s := coerceString(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		if s := strings.TrimSpace(val); s != "" {
			return []string{s}
		}
	}
	return []string{}
}
