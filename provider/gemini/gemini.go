// Package gemini provides an ImageGenerator implementation using Google's Gemini API.
//
// This provider uses the Gemini API backend via the official Go SDK:
// https://github.com/googleapis/go-genai
package gemini

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mhpenta/postimage"
	"google.golang.org/genai"
)

// Model name constants - the actual API model names.
const (
	// APIModelProImage is the API name for Gemini 3 Pro Image
	APIModelProImage = "gemini-3-pro-image-preview"

	// APIModelFlashImage is the API name for Gemini 2.5 Flash Image
	APIModelFlashImage = "gemini-2.5-flash-image"
)

// GeminiGenerator implements ImageGenerator using Google's Gemini API.
type GeminiGenerator struct {
	client *genai.Client
}

// Ensure GeminiGenerator implements the interface.
var _ postimage.ImageGenerator = (*GeminiGenerator)(nil)

// New creates a new GeminiGenerator from a ProviderConfig.
func New(ctx context.Context, config *postimage.ProviderConfig) (*GeminiGenerator, error) {
	if config == nil {
		config = &postimage.ProviderConfig{}
	}

	clientCfg := &genai.ClientConfig{
		Backend: genai.BackendGeminiAPI,
	}

	if config.APIKey != "" {
		clientCfg.APIKey = config.APIKey
	}
	// If APIKey is empty, the SDK will try GOOGLE_API_KEY or GEMINI_API_KEY env vars

	if config.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: config.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiGenerator{
		client: client,
	}, nil
}

// NewWithAPIKey creates a generator with an API key for Gemini API.
func NewWithAPIKey(ctx context.Context, apiKey string) (*GeminiGenerator, error) {
	return New(ctx, &postimage.ProviderConfig{
		Provider: postimage.ProviderGeminiAPI,
		APIKey:   apiKey,
	})
}

// Factory is a postimage.GeneratorFactory for the Gemini API.
func Factory(ctx context.Context, apiKey string) (postimage.ImageGenerator, error) {
	return NewWithAPIKey(ctx, apiKey)
}

// Generate sends the prompt followed by the reference images as one user turn.
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string, images []postimage.InputImage, config *postimage.GenerateConfig) (postimage.Response, error) {
	if err := postimage.ValidatePrompt(prompt); err != nil {
		return nil, err
	}
	if err := postimage.ValidateInputImages(images); err != nil {
		return nil, err
	}

	if config == nil {
		config = postimage.DefaultConfig()
	}

	modelName := resolveModel(config)

	parts := make([]*genai.Part, 0, len(images)+1)
	parts = append(parts, genai.NewPartFromText(prompt))
	for _, img := range images {
		if img.URI != "" && len(img.Data) == 0 {
			parts = append(parts, genai.NewPartFromURI(img.URI, img.MIMEType))
			continue
		}
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{
				Data:     img.Data,
				MIMEType: img.MIMEType,
			},
		})
	}

	contents := []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}

	result, err := g.client.Models.GenerateContent(ctx, modelName, contents, buildGenerateContentConfig(config))
	if err != nil {
		if rlErr := checkRateLimitError(err, modelName); rlErr != nil {
			return nil, rlErr
		}
		return nil, fmt.Errorf("generation failed: %w", err)
	}

	return convertResponse(result)
}

// Close releases any resources held by the generator.
func (g *GeminiGenerator) Close() error {
	// The genai.Client doesn't require explicit closing in the current SDK
	return nil
}

// resolveModel determines which API model name to use.
func resolveModel(config *postimage.GenerateConfig) string {
	if config != nil && config.Model != "" {
		return config.Model.String()
	}
	return APIModelProImage
}

// buildGenerateContentConfig converts our config to Gemini's GenerateContentConfig format.
func buildGenerateContentConfig(config *postimage.GenerateConfig) *genai.GenerateContentConfig {
	modalities := make([]string, 0, len(postimage.ResponseModalities))
	for _, m := range postimage.ResponseModalities {
		modalities = append(modalities, string(m))
	}

	genConfig := &genai.GenerateContentConfig{
		ResponseModalities: modalities,
	}

	imageConfig := &genai.ImageConfig{}
	if config.Size != "" {
		imageConfig.ImageSize = config.Size.String()
	}
	if config.AspectRatio != "" {
		imageConfig.AspectRatio = config.AspectRatio.String()
	}
	genConfig.ImageConfig = imageConfig

	if config.Temperature != nil {
		genConfig.Temperature = genai.Ptr(*config.Temperature)
	}

	return genConfig
}

// convertResponse maps the SDK response onto postimage.CandidateResponse.
func convertResponse(result *genai.GenerateContentResponse) (postimage.Response, error) {
	if result == nil {
		return nil, errors.New("empty response from model")
	}

	if fb := result.PromptFeedback; fb != nil && fb.BlockReason != "" {
		if fb.BlockReasonMessage != "" {
			return nil, fmt.Errorf("%w: %s: %s", postimage.ErrPromptBlocked, fb.BlockReason, fb.BlockReasonMessage)
		}
		return nil, fmt.Errorf("%w: %s", postimage.ErrPromptBlocked, fb.BlockReason)
	}

	resp := &postimage.CandidateResponse{
		Candidates: make([]postimage.Candidate, 0, len(result.Candidates)),
	}

	for _, candidate := range result.Candidates {
		if candidate == nil {
			continue
		}
		c := postimage.Candidate{FinishReason: string(candidate.FinishReason)}
		if candidate.Content != nil {
			for _, part := range candidate.Content.Parts {
				if p := convertPart(part); p != nil {
					c.Parts = append(c.Parts, p)
				}
			}
		}
		resp.Candidates = append(resp.Candidates, c)
	}

	if result.UsageMetadata != nil {
		resp.Usage = &postimage.UsageMetadata{
			PromptTokens:     int(result.UsageMetadata.PromptTokenCount),
			CandidatesTokens: int(result.UsageMetadata.CandidatesTokenCount),
			TotalTokens:      int(result.UsageMetadata.TotalTokenCount),
		}
	}

	return resp, nil
}

func convertPart(part *genai.Part) postimage.Part {
	switch {
	case part == nil:
		return nil
	case part.InlineData != nil && len(part.InlineData.Data) > 0:
		return postimage.InlineDataPart{
			MIMEType: part.InlineData.MIMEType,
			Data:     part.InlineData.Data,
		}
	case part.Text != "":
		return postimage.TextPart{Text: part.Text, Thought: part.Thought}
	}
	return nil
}

// checkRateLimitError checks if an error from the Gemini API is a rate limit error.
// If so, it wraps it in a RateLimitError; otherwise it returns nil.
func checkRateLimitError(err error, model string) error {
	if err == nil {
		return nil
	}

	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		return nil
	}

	if apiErr.Code != 429 && apiErr.Status != "RESOURCE_EXHAUSTED" {
		return nil
	}

	return &postimage.RateLimitError{
		RetryAfter: 60 * time.Second, // API doesn't reliably provide Retry-After
		LimitType:  "requests",
		Model:      model,
		Err:        err,
	}
}
