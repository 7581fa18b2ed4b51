package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"github.com/dvloznov/zenith/internal/domain"
)

// DefaultModelName is the Gemini model used when none is configured.
const DefaultModelName = "gemini-2.5-flash"

// errEmptyResponse marks a response with no usable text.
var errEmptyResponse = errors.New("empty response from model")

// contentGenerator is the slice of the genai client the gateway uses.
// *genai.Models satisfies it.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiConfig selects the Gemini backend. With Project set the Vertex AI
// backend is used; otherwise the Gemini API with APIKey (or the key from the
// environment).
type GeminiConfig struct {
	APIKey   string
	Project  string
	Location string
	Model    string
}

// GeminiGateway implements Gateway on top of google.golang.org/genai.
type GeminiGateway struct {
	models contentGenerator
	model  string
	log    zerolog.Logger
}

// NewGeminiGateway creates a genai client for cfg.
func NewGeminiGateway(ctx context.Context, cfg GeminiConfig, log zerolog.Logger) (*GeminiGateway, error) {
	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.Project != "" {
		cc = &genai.ClientConfig{
			Project:     cfg.Project,
			Location:    cfg.Location,
			Backend:     genai.BackendVertexAI,
			HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
		}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("NewGeminiGateway: create genai client: %w", err)
	}
	return newGeminiGateway(client.Models, cfg.Model, log), nil
}

func newGeminiGateway(models contentGenerator, model string, log zerolog.Logger) *GeminiGateway {
	if model == "" {
		model = DefaultModelName
	}
	return &GeminiGateway{
		models: models,
		model:  model,
		log:    log.With().Str("component", "gemini").Str("model", model).Logger(),
	}
}

// call runs one GenerateContent call and returns the response text as-is,
// which may be blank. Panics from the SDK are turned into errors.
func (g *GeminiGateway) call(ctx context.Context, op string, contents []*genai.Content, config *genai.GenerateContentConfig) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = gatewayError(op, fmt.Errorf("panic: %v", r))
		}
		if err != nil {
			g.log.Warn().Err(err).Str("op", op).Msg("Gemini call failed")
		}
	}()

	resp, err := g.models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		return "", gatewayError(op, fmt.Errorf("generate content: %w", err))
	}
	if resp == nil {
		return "", gatewayError(op, errEmptyResponse)
	}
	return resp.Text(), nil
}

// generate is call for operations where blank text is unusable.
func (g *GeminiGateway) generate(ctx context.Context, op string, contents []*genai.Content, config *genai.GenerateContentConfig) (string, error) {
	text, err := g.call(ctx, op, contents, config)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		g.log.Warn().Str("op", op).Msg("Gemini returned blank text")
		return "", gatewayError(op, errEmptyResponse)
	}
	return text, nil
}

// ExtractReceipt implements Gateway.
func (g *GeminiGateway) ExtractReceipt(ctx context.Context, image ReceiptImage) (Receipt, error) {
	if len(image.Data) == 0 {
		return Receipt{}, fmt.Errorf("ExtractReceipt: %w: image is empty", domain.ErrInvalidInput)
	}
	mime := image.MIMEType
	if mime == "" {
		mime = "image/jpeg"
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(image.Data, mime),
			genai.NewPartFromText(receiptPrompt),
		}, genai.RoleUser),
	}
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"merchant": {Type: genai.TypeString},
				"total":    {Type: genai.TypeNumber},
				"date":     {Type: genai.TypeString},
			},
		},
	}

	raw, err := g.generate(ctx, "ExtractReceipt", contents, config)
	if err != nil {
		return Receipt{}, err
	}
	r, err := decodeReceipt(raw)
	if err != nil {
		return Receipt{}, gatewayError("ExtractReceipt", err)
	}
	return r, nil
}

// SuggestCategory implements Gateway. A blank answer means no suggestion and
// yields "".
func (g *GeminiGateway) SuggestCategory(ctx context.Context, description string, known []string) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(buildCategoryPrompt(description, known), genai.RoleUser),
	}
	raw, err := g.call(ctx, "SuggestCategory", contents, nil)
	if err != nil {
		return "", err
	}
	return MatchCategory(raw, known), nil
}

// SuggestGoals implements Gateway.
func (g *GeminiGateway) SuggestGoals(ctx context.Context, snapshot domain.Snapshot) ([]domain.GoalSuggestion, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(buildGoalsPrompt(snapshot), genai.RoleUser),
	}
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema: &genai.Schema{
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"name":         {Type: genai.TypeString},
					"targetAmount": {Type: genai.TypeNumber},
				},
			},
		},
	}

	raw, err := g.generate(ctx, "SuggestGoals", contents, config)
	if err != nil {
		return nil, err
	}
	suggestions, err := decodeGoalSuggestions(raw)
	if err != nil {
		return nil, gatewayError("SuggestGoals", err)
	}
	return suggestions, nil
}

// GeneratePlan implements Gateway.
func (g *GeminiGateway) GeneratePlan(ctx context.Context, pc PlanContext) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(buildCreatePlanPrompt(pc), genai.RoleUser),
	}
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(planSystemInstruction, genai.RoleUser),
	}
	return g.generate(ctx, "GeneratePlan", contents, config)
}

// UpdatePlan implements Gateway.
func (g *GeminiGateway) UpdatePlan(ctx context.Context, pc PlanContext, priorPlan string) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(buildUpdatePlanPrompt(pc, priorPlan), genai.RoleUser),
	}
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(updateSystemInstruction, genai.RoleUser),
	}
	return g.generate(ctx, "UpdatePlan", contents, config)
}

// AnalyzeScenario implements Gateway.
func (g *GeminiGateway) AnalyzeScenario(ctx context.Context, scenario string, snapshot domain.Snapshot, goals []domain.Goal) (string, error) {
	if strings.TrimSpace(scenario) == "" {
		return "", fmt.Errorf("AnalyzeScenario: %w: scenario is required", domain.ErrInvalidInput)
	}
	contents := []*genai.Content{
		genai.NewContentFromText(buildScenarioPrompt(scenario, snapshot, goals), genai.RoleUser),
	}
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(scenarioSystemInstruction, genai.RoleUser),
	}
	return g.generate(ctx, "AnalyzeScenario", contents, config)
}

var _ Gateway = (*GeminiGateway)(nil)
