package postimage

import (
	"bytes"
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/disintegration/imaging"
)

// ExtractImageBytes returns the bytes of the first image-bearing part of resp.
// Flat parts are searched first, then the parts of the first candidate.
func ExtractImageBytes(resp Response) ([]byte, error) {
	for _, part := range responseParts(resp) {
		if data, ok := partImageBytes(part); ok {
			return data, nil
		}
	}
	return nil, ErrNoImageInResponse
}

func responseParts(resp Response) []Part {
	switch r := resp.(type) {
	case *FlatResponse:
		if r != nil && len(r.Parts) > 0 {
			return r.Parts
		}
	case *CandidateResponse:
		if r != nil && len(r.Candidates) > 0 {
			return r.Candidates[0].Parts
		}
	}
	return nil
}

func partImageBytes(part Part) ([]byte, bool) {
	switch p := part.(type) {
	case ImagePart:
		if p.Image == nil {
			return nil, false
		}
		var buf bytes.Buffer
		if err := imaging.Encode(&buf, p.Image, imaging.PNG); err != nil {
			return nil, false
		}
		return buf.Bytes(), true
	case InlineDataPart:
		return inlineBytes(p.Data)
	case TextPart:
		return nil, false
	}
	return nil, false
}

// inlineBytes returns data as-is when it already looks like an image, otherwise
// the base64 decoding of data. Undecodable text is returned unchanged.
func inlineBytes(data []byte) ([]byte, bool) {
	if len(data) == 0 {
		return nil, false
	}
	if strings.HasPrefix(http.DetectContentType(data), "image/") {
		return data, true
	}

	text := strings.Join(strings.Fields(string(data)), "")
	for _, enc := range []*base64.Encoding{base64.StdEncoding, base64.RawStdEncoding} {
		if decoded, err := enc.DecodeString(text); err == nil && len(decoded) > 0 {
			return decoded, true
		}
	}
	return data, true
}
