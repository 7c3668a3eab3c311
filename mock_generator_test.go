package postimage

import (
	"context"
)

// MockImageGenerator is a mock implementation of ImageGenerator.
type MockImageGenerator struct {
	GenerateFunc func(ctx context.Context, prompt string, images []InputImage, config *GenerateConfig) (Response, error)
	CloseFunc    func() error

	calls int
}

func (m *MockImageGenerator) Generate(ctx context.Context, prompt string, images []InputImage, config *GenerateConfig) (Response, error) {
	m.calls++
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, prompt, images, config)
	}
	return &CandidateResponse{}, nil
}

func (m *MockImageGenerator) Close() error {
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

// factoryFor returns a GeneratorFactory that always hands out gen.
func factoryFor(gen ImageGenerator) GeneratorFactory {
	return func(ctx context.Context, apiKey string) (ImageGenerator, error) {
		return gen, nil
	}
}
