package postimage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mhpenta/postimage/config"
)

// Request describes one post graphic.
type Request struct {
	// Topic is the post subject. It drives the prompt, the fallback headline and the file name.
	Topic string

	// Style is accepted for compatibility and logged, but is not part of the prompt.
	Style string

	// TemplateDescription overrides the default brand template when non-blank.
	TemplateDescription string

	// HeroCopy is the headline source; at most 10 words are used.
	HeroCopy string

	// ReferenceDir overrides the configured reference images directory.
	ReferenceDir string
}

// Pipeline turns a Request into a PNG file in the configured output directory.
// It holds no mutable state between calls.
type Pipeline struct {
	cfg          *config.Config
	newGenerator GeneratorFactory

	logger        *slog.Logger
	storage       Storage
	now           func() time.Time
	maxReferences int
	genConfig     *GenerateConfig
}

// Option configures the Pipeline.
type Option func(*Pipeline)

// WithLogger sets a structured logger for the pipeline.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithStorage replaces the default DirStorage rooted at the output directory.
func WithStorage(storage Storage) Option {
	return func(p *Pipeline) {
		p.storage = storage
	}
}

// WithClock sets the time source used for output file names.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		p.now = now
	}
}

// WithMaxReferenceImages sets how many reference images are sent.
func WithMaxReferenceImages(n int) Option {
	return func(p *Pipeline) {
		p.maxReferences = n
	}
}

// WithGenerateConfig replaces DefaultConfig. An empty Model is filled from config.ImageModel.
func WithGenerateConfig(genConfig *GenerateConfig) Option {
	return func(p *Pipeline) {
		p.genConfig = genConfig
	}
}

// NewPipeline creates a Pipeline that builds generators with factory.
//
// Example:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    return err
//	}
//	p := postimage.NewPipeline(cfg, gemini.Factory,
//	    postimage.WithLogger(slog.Default()),
//	)
//	res := p.GeneratePostImage(ctx, postimage.Request{Topic: "Hiring trends in 2026"})
func NewPipeline(cfg *config.Config, factory GeneratorFactory, opts ...Option) *Pipeline {
	p := &Pipeline{
		cfg:           cfg,
		newGenerator:  factory,
		logger:        slog.Default(),
		now:           time.Now,
		maxReferences: DefaultMaxReferenceImages,
		genConfig:     DefaultConfig(),
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = slog.Default()
	}
	if p.storage == nil && cfg != nil {
		p.storage = NewDirStorage(cfg.OutputDir)
	}

	return p
}

// GeneratePostImage runs a Pipeline with default options.
func GeneratePostImage(ctx context.Context, cfg *config.Config, factory GeneratorFactory, req Request) Result {
	return NewPipeline(cfg, factory).GeneratePostImage(ctx, req)
}

// GeneratePostImage builds the prompt, loads reference images, makes one
// generation call and saves the returned image as PNG. Every failure, including
// a panic, is reported through the Result.
func (p *Pipeline) GeneratePostImage(ctx context.Context, req Request) (res Result) {
	requestID := uuid.NewString()
	logger := p.logger.With("request_id", requestID)

	defer func() {
		if r := recover(); r != nil {
			logger.Error("image generation panicked", "panic", fmt.Sprint(r))
			res = Failed(fmt.Errorf("image generation panicked: %v", r))
		}
	}()

	if p.cfg == nil || p.cfg.GeminiAPIKey == "" {
		return Failed(ErrMissingAPIKey)
	}

	if err := p.cfg.EnsureDirs(); err != nil {
		return Failed(err)
	}

	style := req.Style
	if style == "" {
		style = DefaultStyle
	}

	headline := DeriveHeadline(req.HeroCopy, req.Topic)
	prompt := BuildPrompt(SelectTemplate(req.TemplateDescription), req.Topic, headline)

	refDir := req.ReferenceDir
	if refDir == "" {
		refDir = p.cfg.ImagesDir
	}
	images := p.referenceInputs(logger, refDir)

	genConfig := p.genConfig
	if genConfig == nil {
		genConfig = DefaultConfig()
	}
	if genConfig.Model == "" {
		genConfig = genConfig.WithModel(Model(p.cfg.ImageModel))
	}

	logger.Debug("starting image generation",
		"model", genConfig.Model.String(),
		"topic", req.Topic,
		"style", style,
		"headline", headline,
		"prompt_length", len(prompt),
		"reference_images", len(images),
		"api_key", config.MaskKey(p.cfg.GeminiAPIKey),
	)

	start := time.Now()
	path, err := p.generate(ctx, logger, prompt, images, genConfig, req.Topic)
	duration := time.Since(start)

	if err != nil {
		logger.Error("image generation failed",
			"model", genConfig.Model.String(),
			"duration_ms", duration.Milliseconds(),
			"error", err.Error(),
		)
		return Failed(err)
	}

	logger.Info("image generation completed",
		"model", genConfig.Model.String(),
		"duration_ms", duration.Milliseconds(),
		"path", path,
	)
	return Succeeded(path)
}

func (p *Pipeline) generate(
	ctx context.Context,
	logger *slog.Logger,
	prompt string,
	images []InputImage,
	genConfig *GenerateConfig,
	topic string) (string, error) {

	if p.newGenerator == nil {
		return "", fmt.Errorf("%w: no generator factory configured", ErrGeneratorUnavailable)
	}

	gen, err := p.newGenerator(ctx, p.cfg.GeminiAPIKey)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrGeneratorUnavailable, err)
	}
	defer func() {
		if cerr := gen.Close(); cerr != nil {
			logger.Warn("failed to close generator", "error", cerr.Error())
		}
	}()

	resp, err := gen.Generate(ctx, prompt, images, genConfig)
	if err != nil {
		return "", err
	}
	logResponse(logger, resp)

	data, err := ExtractImageBytes(resp)
	if err != nil {
		return "", err
	}

	pngData, err := EncodePNG(data)
	if err != nil {
		return "", err
	}

	name := OutputFilename(topic, p.now())
	return p.storage.SaveFile(ctx, pngData, name, GetMIMEType(name))
}

// referenceInputs loads reference images from dir. Images that cannot be
// encoded are skipped.
func (p *Pipeline) referenceInputs(logger *slog.Logger, dir string) []InputImage {
	refs := LoadReferenceImages(dir, p.maxReferences)
	inputs := make([]InputImage, 0, len(refs))
	for _, ref := range refs {
		img, err := ref.InputImage()
		if err != nil {
			logger.Debug("skipping reference image", "path", ref.Path, "error", err.Error())
			continue
		}
		inputs = append(inputs, img)
	}
	return inputs
}

func logResponse(logger *slog.Logger, resp Response) {
	cr, ok := resp.(*CandidateResponse)
	if !ok || cr == nil {
		return
	}

	logAttrs := []any{"candidates", len(cr.Candidates)}
	if len(cr.Candidates) > 0 {
		logAttrs = append(logAttrs, "finish_reason", cr.Candidates[0].FinishReason)
		for _, part := range cr.Candidates[0].Parts {
			if t, ok := part.(TextPart); ok && !t.Thought && t.Text != "" {
				logAttrs = append(logAttrs, "model_text", t.Text)
				break
			}
		}
	}
	if cr.Usage != nil {
		logAttrs = append(logAttrs,
			"prompt_tokens", cr.Usage.PromptTokens,
			"response_tokens", cr.Usage.CandidatesTokens,
			"total_tokens", cr.Usage.TotalTokens,
		)
	}
	logger.Debug("generation response received", logAttrs...)
}
