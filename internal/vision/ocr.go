package vision

import (
	"fmt"
	"image"
	"os"
	"strings"
	"sync"
	"unicode"

	"github.com/agnivade/levenshtein"
	"github.com/otiai10/gosseract"
	"gocv.io/x/gocv"

	"github.com/YusufSemihCan/Charon-LCBot/internal/logging"
	"github.com/YusufSemihCan/Charon-LCBot/internal/screen"
)

// binarizeLevel is the gray level text is separated at before OCR.
const binarizeLevel = 150

// Reader extracts text from a frame region with Tesseract. It is auxiliary:
// menu identity is always decided by templates, never by OCR.
type Reader struct {
	mu     sync.Mutex
	client *gosseract.Client
}

// NewReader creates a Tesseract client. tessdata overrides TESSDATA_PREFIX
// when non-empty.
func NewReader(language, tessdata string) *Reader {
	if tessdata != "" {
		os.Setenv("TESSDATA_PREFIX", tessdata)
	}
	client := gosseract.NewClient()
	if language == "" {
		language = "eng"
	}
	if err := client.SetLanguage(language); err != nil {
		logging.Warn("OCR language %s unavailable: %v", language, err)
	}
	client.SetPageSegMode(gosseract.PSM_SINGLE_BLOCK)
	return &Reader{client: client}
}

// Read returns the trimmed text inside area of frame. A missing OCR engine
// or empty region yields "" without error.
func (r *Reader) Read(frame image.Image, area image.Rectangle) (string, error) {
	region, err := screen.Clip(area, frame.Bounds())
	if err != nil {
		return "", nil
	}

	png, err := binarize(screen.ToGray(screen.Crop(frame, region)))
	if err != nil {
		return "", err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.client.SetImageFromBytes(png); err != nil {
		logging.Warn("OCR image rejected: %v", err)
		return "", nil
	}
	text, err := r.client.Text()
	if err != nil {
		logging.Warn("OCR failed: %v", err)
		return "", nil
	}
	text = strings.TrimSpace(text)
	logging.Debug("OCR %v: %q", area, text)
	return text, nil
}

// Close releases the Tesseract client.
func (r *Reader) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.client.Close()
}

// binarize thresholds a gray image and encodes it as PNG.
func binarize(g *image.Gray) ([]byte, error) {
	src, err := gocv.ImageGrayToMatGray(g)
	if err != nil {
		return nil, fmt.Errorf("vision: ocr convert: %w", err)
	}
	defer src.Close()

	bin := gocv.NewMat()
	defer bin.Close()
	gocv.Threshold(src, &bin, binarizeLevel, 255, gocv.ThresholdBinary)

	buf, err := gocv.IMEncode(gocv.PNGFileExt, bin)
	if err != nil {
		return nil, fmt.Errorf("vision: ocr encode: %w", err)
	}
	defer buf.Close()

	out := make([]byte, buf.Len())
	copy(out, buf.GetBytes())
	return out, nil
}

// normalizeText lowercases and drops everything but letters and digits.
func normalizeText(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// TextMatches reports whether OCR output got reads as want, allowing up to
// maxDistance character edits after normalization.
func TextMatches(got, want string, maxDistance int) bool {
	g, w := normalizeText(got), normalizeText(want)
	if w == "" {
		return g == ""
	}
	if strings.Contains(g, w) {
		return true
	}
	return levenshtein.ComputeDistance(g, w) <= maxDistance
}
