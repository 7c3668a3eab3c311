// Package config resolves API credentials, model identifiers and filesystem
// paths for postimage.
//
// Values are layered: built-in defaults, then an optional settings.yaml in the
// base directory, then the process environment (a .env file in the base
// directory is loaded first and never overrides variables already set).
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables read by Load.
const (
	EnvHome       = "POSTIMAGE_HOME"
	EnvGeminiKey  = "GEMINI_API_KEY"
	EnvTavilyKey  = "TAVILY_API_KEY"
	EnvChatModel  = "GEMINI_CHAT_MODEL"
	EnvImageModel = "GEMINI_IMAGE_MODEL"
)

// SettingsFile is the optional YAML file read from the base directory.
const SettingsFile = "settings.yaml"

const (
	dotEnvFile     = ".env"
	defaultDirPerm = 0755
)

// Model defaults.
const (
	DefaultChatModel  = "gemini-3-flash-preview"
	DefaultImageModel = "gemini-3-pro-image-preview"
)

// Config holds the resolved configuration. It is read-only after Load.
type Config struct {
	BaseDir    string
	DataDir    string
	TopicsFile string
	OutputDir  string
	ImagesDir  string // reference images for the brand template

	GeminiAPIKey string
	TavilyAPIKey string

	ChatModel  string
	ImageModel string
}

// Settings is the optional settings.yaml structure. Empty fields keep defaults.
type Settings struct {
	ChatModel  string `yaml:"chat_model"`
	ImageModel string `yaml:"image_model"`
	DataDir    string `yaml:"data_dir"`
	OutputDir  string `yaml:"output_dir"`
	ImagesDir  string `yaml:"images_dir"`
}

// Load resolves the base directory from POSTIMAGE_HOME, falling back to the
// working directory, and calls LoadFrom.
func Load() (*Config, error) {
	base := strings.TrimSpace(os.Getenv(EnvHome))
	if base == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve working directory: %w", err)
		}
		base = wd
	}
	return LoadFrom(base)
}

// LoadFrom builds a Config rooted at baseDir. Missing API keys are not an error.
func LoadFrom(baseDir string) (*Config, error) {
	base, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory %s: %w", baseDir, err)
	}

	if err := godotenv.Load(filepath.Join(base, dotEnvFile)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", dotEnvFile, err)
	}

	cfg := &Config{
		BaseDir:    base,
		DataDir:    filepath.Join(base, "data"),
		OutputDir:  filepath.Join(base, "output"),
		ImagesDir:  filepath.Join(base, "images"),
		ChatModel:  DefaultChatModel,
		ImageModel: DefaultImageModel,
	}

	settings, err := loadSettings(filepath.Join(base, SettingsFile))
	if err != nil {
		return nil, err
	}
	if settings != nil {
		cfg.applySettings(settings)
	}

	cfg.TopicsFile = filepath.Join(cfg.DataDir, "topics.xlsx")
	cfg.GeminiAPIKey = strings.TrimSpace(os.Getenv(EnvGeminiKey))
	cfg.TavilyAPIKey = strings.TrimSpace(os.Getenv(EnvTavilyKey))
	cfg.ChatModel = envOr(EnvChatModel, cfg.ChatModel)
	cfg.ImageModel = envOr(EnvImageModel, cfg.ImageModel)

	return cfg, nil
}

// EnsureDirs creates the data and output directories if they are missing.
func (c *Config) EnsureDirs() error {
	for _, dir := range []string{c.DataDir, c.OutputDir} {
		if err := os.MkdirAll(dir, defaultDirPerm); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// MaskKey redacts an API key, keeping only the last 4 characters.
func MaskKey(key string) string {
	k := strings.TrimSpace(key)
	if k == "" {
		return ""
	}
	if len(k) <= 4 {
		return strings.Repeat("*", len(k))
	}
	return strings.Repeat("*", len(k)-4) + k[len(k)-4:]
}

func loadSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file %s: %w", path, err)
	}

	var settings Settings
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("failed to parse settings YAML: %w", err)
	}
	return &settings, nil
}

func (c *Config) applySettings(s *Settings) {
	if s.ChatModel != "" {
		c.ChatModel = s.ChatModel
	}
	if s.ImageModel != "" {
		c.ImageModel = s.ImageModel
	}
	if s.DataDir != "" {
		c.DataDir = c.resolve(s.DataDir)
	}
	if s.OutputDir != "" {
		c.OutputDir = c.resolve(s.OutputDir)
	}
	if s.ImagesDir != "" {
		c.ImagesDir = c.resolve(s.ImagesDir)
	}
}

func (c *Config) resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.BaseDir, p)
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
