package postimage

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/disintegration/imaging"
)

const maxTopicTokenRunes = 50

// SanitizeTopic makes a filesystem-safe token from the first 50 characters of topic.
// Letters, digits, space, hyphen and underscore are kept; anything else becomes '_'.
func SanitizeTopic(topic string) string {
	var sb strings.Builder
	n := 0
	for _, r := range topic {
		if n == maxTopicTokenRunes {
			break
		}
		n++
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '-' || r == '_' {
			sb.WriteRune(r)
		} else {
			sb.WriteByte('_')
		}
	}
	return sb.String()
}

// OutputFilename returns linkedin_image_<sanitized topic>_<unix seconds>.png.
func OutputFilename(topic string, t time.Time) string {
	return "linkedin_image_" + SanitizeTopic(topic) + "_" + strconv.FormatInt(t.Unix(), 10) + ".png"
}

// EncodePNG decodes image data in any registered format and re-encodes it as PNG.
func EncodePNG(data []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode generated image: %w", err)
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
