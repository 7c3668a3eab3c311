package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mhpenta/postimage"
	"google.golang.org/genai"
)

func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// newTestGenerator points a GeminiGenerator at handler.
func newTestGenerator(t *testing.T, handler http.HandlerFunc) *GeminiGenerator {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	gen, err := New(context.Background(), &postimage.ProviderConfig{
		Provider: postimage.ProviderGeminiAPI,
		APIKey:   "test-key",
		BaseURL:  srv.URL + "/",
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return gen
}

func TestGenerate_ParsesInlineImage(t *testing.T) {
	imgData := testPNG(t)
	var gotPath string
	var gotBody map[string]any

	gen := newTestGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotBody)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []any{map[string]any{
				"content": map[string]any{
					"role": "model",
					"parts": []any{
						map[string]any{"text": "Here you go"},
						map[string]any{"inlineData": map[string]any{
							"mimeType": "image/png",
							"data":     base64.StdEncoding.EncodeToString(imgData),
						}},
					},
				},
				"finishReason": "STOP",
			}},
			"usageMetadata": map[string]any{
				"promptTokenCount":     12,
				"candidatesTokenCount": 1290,
				"totalTokenCount":      1302,
			},
		})
	})

	ref := postimage.InputImage{Data: imgData, MIMEType: "image/png"}
	resp, err := gen.Generate(context.Background(), "draw a banner", []postimage.InputImage{ref}, postimage.DefaultConfig())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if !strings.Contains(gotPath, APIModelProImage+":generateContent") {
		t.Errorf("request path = %s, want default model", gotPath)
	}

	contents, _ := gotBody["contents"].([]any)
	if len(contents) != 1 {
		t.Fatalf("expected 1 content, got %d", len(contents))
	}
	parts, _ := contents[0].(map[string]any)["parts"].([]any)
	if len(parts) != 2 {
		t.Fatalf("expected text + 1 image part, got %d", len(parts))
	}
	if text, _ := parts[0].(map[string]any)["text"].(string); text != "draw a banner" {
		t.Errorf("first part text = %q", text)
	}

	genCfg, _ := gotBody["generationConfig"].(map[string]any)
	imageCfg, _ := genCfg["imageConfig"].(map[string]any)
	if imageCfg["aspectRatio"] != "16:9" || imageCfg["imageSize"] != "2K" {
		t.Errorf("imageConfig = %v, want 16:9 / 2K", imageCfg)
	}

	cr, ok := resp.(*postimage.CandidateResponse)
	if !ok {
		t.Fatalf("response type = %T, want *CandidateResponse", resp)
	}
	if cr.Usage == nil || cr.Usage.TotalTokens != 1302 {
		t.Errorf("usage = %+v", cr.Usage)
	}
	if cr.Candidates[0].FinishReason != "STOP" {
		t.Errorf("finish reason = %q", cr.Candidates[0].FinishReason)
	}

	got, err := postimage.ExtractImageBytes(resp)
	if err != nil {
		t.Fatalf("ExtractImageBytes: %v", err)
	}
	if !bytes.Equal(got, imgData) {
		t.Error("extracted bytes differ from served image")
	}
}

func TestGenerate_UsesConfiguredModel(t *testing.T) {
	var gotPath string
	gen := newTestGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	})

	cfg := postimage.DefaultConfig().WithModel(APIModelFlashImage)
	resp, err := gen.Generate(context.Background(), "prompt", nil, cfg)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.Contains(gotPath, APIModelFlashImage+":generateContent") {
		t.Errorf("request path = %s", gotPath)
	}
	if _, err := postimage.ExtractImageBytes(resp); !errors.Is(err, postimage.ErrNoImageInResponse) {
		t.Errorf("error = %v, want ErrNoImageInResponse", err)
	}
}

func TestGenerate_PromptBlocked(t *testing.T) {
	gen := newTestGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"promptFeedback":{"blockReason":"SAFETY"}}`))
	})

	_, err := gen.Generate(context.Background(), "prompt", nil, nil)
	if !errors.Is(err, postimage.ErrPromptBlocked) {
		t.Errorf("error = %v, want ErrPromptBlocked", err)
	}
}

func TestGenerate_APIError(t *testing.T) {
	gen := newTestGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":400,"message":"bad request","status":"INVALID_ARGUMENT"}}`))
	})

	_, err := gen.Generate(context.Background(), "prompt", nil, nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if postimage.IsRateLimitError(err) {
		t.Errorf("400 should not be classified as rate limit: %v", err)
	}
}

func TestGenerate_Validation(t *testing.T) {
	gen := newTestGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})

	if _, err := gen.Generate(context.Background(), "", nil, nil); !errors.Is(err, postimage.ErrEmptyPrompt) {
		t.Errorf("error = %v, want ErrEmptyPrompt", err)
	}

	bad := []postimage.InputImage{{Data: []byte("x"), MIMEType: "text/plain"}}
	if _, err := gen.Generate(context.Background(), "prompt", bad, nil); !errors.Is(err, postimage.ErrInvalidMIMEType) {
		t.Errorf("error = %v, want ErrInvalidMIMEType", err)
	}
}

func TestCheckRateLimitError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		wantRL bool
	}{
		{"nil", nil, false},
		{"plain error", errors.New("boom"), false},
		{"429", genai.APIError{Code: 429, Message: "quota"}, true},
		{"resource exhausted", genai.APIError{Code: 400, Status: "RESOURCE_EXHAUSTED"}, true},
		{"500", genai.APIError{Code: 500, Status: "INTERNAL"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := checkRateLimitError(tt.err, APIModelProImage)
			if tt.wantRL != postimage.IsRateLimitError(got) {
				t.Errorf("checkRateLimitError(%v) = %v, wantRL %v", tt.err, got, tt.wantRL)
			}
			var apiErr genai.APIError
			if tt.wantRL && !errors.As(got, &apiErr) {
				t.Errorf("rate limit error should wrap the original")
			}
		})
	}
}
