package postimage

import "context"

// ImageGenerator is the remote image generation service used by the Pipeline.
// Implement this interface to add support for new models or providers.
type ImageGenerator interface {
	// Generate sends the prompt and any reference images in a single request.
	// The returned Response is one of *FlatResponse or *CandidateResponse.
	Generate(ctx context.Context, prompt string, images []InputImage, genConfig *GenerateConfig) (Response, error)

	// Close releases any resources held by the generator.
	Close() error
}

// GeneratorFactory builds an ImageGenerator for an API key. The Pipeline calls it
// once per request, after the API key precondition has been checked.
type GeneratorFactory func(ctx context.Context, apiKey string) (ImageGenerator, error)

// Storage persists encoded images.
type Storage interface {
	// SaveFile saves data under path and returns the location it was written to.
	SaveFile(ctx context.Context, data []byte, path string, contentType string) (string, error)
}
