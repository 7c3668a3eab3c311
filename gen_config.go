package postimage

// Model is an API model identifier (e.g. "gemini-3-pro-image-preview").
type Model string

// ImageSize represents the output resolution tier for generated images.
type ImageSize string

const (
	ImageSize1K ImageSize = "1K"
	ImageSize2K ImageSize = "2K"
	ImageSize4K ImageSize = "4K"
)

// AspectRatio represents the aspect ratio for generated images.
type AspectRatio string

const (
	AspectRatio1x1  AspectRatio = "1:1"
	AspectRatio16x9 AspectRatio = "16:9"
	AspectRatio9x16 AspectRatio = "9:16"
	AspectRatio4x5  AspectRatio = "4:5" // Instagram portrait
	AspectRatioAuto AspectRatio = ""
)

// Modality is a response modality requested from the model.
type Modality string

const (
	ModalityText  Modality = "TEXT"
	ModalityImage Modality = "IMAGE"
)

// ResponseModalities are requested on every call: the image models answer with
// interleaved text and image parts.
var ResponseModalities = []Modality{ModalityText, ModalityImage}

// GenerateConfig holds configuration options for a generation call.
type GenerateConfig struct {
	// Model to use for generation. The Pipeline fills it from config.ImageModel when empty.
	Model Model

	// Size of the output image (1K, 2K, 4K)
	Size ImageSize

	// AspectRatio of the output image
	AspectRatio AspectRatio

	// Temperature controls randomness. Nil leaves the model default.
	Temperature *float32
}

// WithModel returns a copy of the config with the specified model.
func (c *GenerateConfig) WithModel(model Model) *GenerateConfig {
	if c == nil {
		return &GenerateConfig{Model: model}
	}
	cX := *c
	cX.Model = model
	return &cX
}

// DefaultConfig returns the fixed response configuration used for post graphics:
// 16:9 at the 2K resolution tier.
func DefaultConfig() *GenerateConfig {
	return &GenerateConfig{
		Size:        ImageSize2K,
		AspectRatio: AspectRatio16x9,
	}
}

// InputImage represents an image sent alongside the prompt.
type InputImage struct {
	// Data is the raw image bytes
	Data []byte

	// MIMEType of the image (e.g., "image/jpeg", "image/png")
	MIMEType string

	// URI is an optional URI reference (for cloud-stored images)
	URI string
}

func (s ImageSize) String() string {
	return string(s)
}

func (a AspectRatio) String() string {
	return string(a)
}

// String returns the model identifier.
func (m Model) String() string {
	return string(m)
}
