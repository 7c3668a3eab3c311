package postimage

import (
	"bytes"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // registers the webp decoder
)

// DefaultMaxReferenceImages is how many reference images accompany a prompt.
const DefaultMaxReferenceImages = 2

// supportedReferenceExts lists the file extensions considered as reference images.
var supportedReferenceExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// ReferenceImage is a decoded style-guidance image.
type ReferenceImage struct {
	Path    string
	ModTime time.Time
	Image   *image.NRGBA
}

// InputImage encodes the reference image as PNG for a generation request.
func (r ReferenceImage) InputImage() (InputImage, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, r.Image, imaging.PNG); err != nil {
		return InputImage{}, fmt.Errorf("encode reference %s: %w", r.Path, err)
	}
	return InputImage{
		Data:     buf.Bytes(),
		MIMEType: "image/png",
	}, nil
}

type referenceCandidate struct {
	path    string
	modTime time.Time
}

// LoadReferenceImages returns up to limit decoded images from dir, most recently
// modified first. Only the newest limit candidates are decoded; a candidate that
// fails to decode is skipped, not replaced. A missing or unreadable directory
// yields no images.
func LoadReferenceImages(dir string, limit int) []ReferenceImage {
	if dir == "" || limit <= 0 {
		return nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	candidates := make([]referenceCandidate, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !supportedReferenceExts[strings.ToLower(filepath.Ext(entry.Name()))] {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		candidates = append(candidates, referenceCandidate{
			path:    filepath.Join(dir, entry.Name()),
			modTime: info.ModTime(),
		})
	}

	slices.SortStableFunc(candidates, func(a, b referenceCandidate) int {
		return b.modTime.Compare(a.modTime)
	})

	refs := make([]ReferenceImage, 0, min(limit, len(candidates)))
	for _, c := range candidates[:min(limit, len(candidates))] {
		img, err := imaging.Open(c.path, imaging.AutoOrientation(true))
		if err != nil {
			continue
		}
		refs = append(refs, ReferenceImage{
			Path:    c.path,
			ModTime: c.modTime,
			Image:   toRGB(img),
		})
	}
	return refs
}

// toRGB copies img into an opaque NRGBA image, discarding the alpha channel.
func toRGB(img image.Image) *image.NRGBA {
	dst := imaging.Clone(img)
	for i := 3; i < len(dst.Pix); i += 4 {
		dst.Pix[i] = 0xff
	}
	return dst
}
