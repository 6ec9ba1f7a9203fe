// Package oracle adapts the external multimodal scoring service.
package oracle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/api/googleapi"
	"google.golang.org/genai"

	"github.com/wrufbot/wruf/internal/domain/model"
	"github.com/wrufbot/wruf/pkg/metrics"
)

// DefaultModel is the Gemini model used when none is configured.
const DefaultModel = "gemini-2.0-flash-exp"

// Sentinel kinds for oracle errors.
var (
	ErrEmptyAPIKey   = errors.New("missing gemini api key")
	ErrEmptyResponse = errors.New("empty oracle response")
	ErrBlocked       = errors.New("request blocked by safety filters")
)

// analysisSchema constrains the model output to the report shape the session
// expects.
var analysisSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"analysis":  {Type: genai.TypeString},
		"score":     {Type: genai.TypeInteger},
		"positives": {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
		"negatives": {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
	},
	Required: []string{"analysis", "score", "positives", "negatives"},
}

// The rubric deliberately disables all safety categories: the whole point is
// scoring edgy content, and a blocked request would otherwise read as a
// transport failure.
var safetyOff = []*genai.SafetySetting{
	{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockThresholdBlockNone},
	{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockThresholdBlockNone},
	{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockThresholdBlockNone},
	{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockThresholdBlockNone},
	{Category: genai.HarmCategoryCivicIntegrity, Threshold: genai.HarmBlockThresholdBlockNone},
}

// Gemini scores media through the Gemini API.
type Gemini struct {
	client *genai.Client
	model  string
	prompt string
}

// Option applies a configuration option to the Gemini oracle.
type Option func(*Gemini)

// WithModel overrides the Gemini model name.
func WithModel(name string) Option {
	return func(g *Gemini) {
		if name != "" {
			g.model = name
		}
	}
}

// WithPrompt overrides the rubric prompt.
func WithPrompt(prompt string) Option {
	return func(g *Gemini) {
		if prompt != "" {
			g.prompt = prompt
		}
	}
}

// NewGemini creates a Gemini-backed oracle authenticated with apiKey.
func NewGemini(ctx context.Context, apiKey string, opts ...Option) (*Gemini, error) {
	if apiKey == "" {
		return nil, ErrEmptyAPIKey
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	g := &Gemini{
		client: client,
		model:  DefaultModel,
		prompt: RubricPrompt,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Analyze submits the media to Gemini with the rubric prompt and parses the
// structured result. All failures are system-class; the caller decides
// nothing is retried.
func (g *Gemini) Analyze(ctx context.Context, content []byte, mediaType string) (model.Analysis, error) {
	start := time.Now()
	defer func() {
		metrics.RecordOracleLatency(time.Since(start).Seconds())
	}()

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(g.prompt),
			genai.NewPartFromBytes(content, mediaType),
		}, genai.RoleUser),
	}
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   analysisSchema,
		SafetySettings:   safetyOff,
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		metrics.RecordOracleError()
		return model.Analysis{}, g.classify(err)
	}

	text := resp.Text()
	if text == "" {
		metrics.RecordOracleError()
		return model.Analysis{}, ErrEmptyResponse
	}

	var analysis model.Analysis
	if err := json.Unmarshal([]byte(text), &analysis); err != nil {
		metrics.RecordOracleError()
		return model.Analysis{}, fmt.Errorf("parse oracle response: %w", err)
	}
	return analysis, nil
}

// classify maps SDK errors onto something a log reader can act on.
func (g *Gemini) classify(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("oracle request canceled: %w", err)
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		msg := strings.ToLower(apiErr.Message)
		if strings.Contains(msg, "safety") || strings.Contains(msg, "blocked") {
			return fmt.Errorf("%w: %s", ErrBlocked, apiErr.Message)
		}
		return fmt.Errorf("oracle request failed (status %d): %w", apiErr.Code, err)
	}

	return fmt.Errorf("oracle request failed: %w", err)
}
