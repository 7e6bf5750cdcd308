package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"sort"
	"strings"
	"unicode"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"
	_ "golang.org/x/image/webp"

	"github.com/ironsheep/visual-hash-mcp/internal/escalation"
)

// DefaultLanguage is the Tesseract language used when none is configured.
const DefaultLanguage = "eng"

// minOCRWidth is the width below which images are upscaled before recognition.
const minOCRWidth = 640

// TextAnalyzer compares images by the text Tesseract recognizes in them.
// It implements escalation.SemanticAnalyzer.
type TextAnalyzer struct {
	// Language is a Tesseract language code such as "eng" or "deu".
	Language string
}

var _ escalation.SemanticAnalyzer = (*TextAnalyzer)(nil)

// NewTextAnalyzer returns a TextAnalyzer for language. An empty language
// selects DefaultLanguage.
func NewTextAnalyzer(language string) *TextAnalyzer {
	if language == "" {
		language = DefaultLanguage
	}
	return &TextAnalyzer{Language: language}
}

// Analyze recognizes the text of both images and scores their overlap.
func (a *TextAnalyzer) Analyze(ctx context.Context, imageA, imageB []byte) (*escalation.SemanticResult, error) {
	wordsA, err := a.recognize(ctx, imageA)
	if err != nil {
		return nil, fmt.Errorf("image A: %w", err)
	}
	wordsB, err := a.recognize(ctx, imageB)
	if err != nil {
		return nil, fmt.Errorf("image B: %w", err)
	}

	return &escalation.SemanticResult{
		Description: describe(wordsA, wordsB),
		Confidence:  jaccard(wordsA, wordsB),
		Endpoint:    "tesseract:" + a.Language,
	}, nil
}

// recognize runs Tesseract over one encoded image and returns its word set.
func (a *TextAnalyzer) recognize(ctx context.Context, data []byte) (map[string]struct{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prepared, err := prepare(data)
	if err != nil {
		return nil, err
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(a.Language); err != nil {
		return nil, fmt.Errorf("failed to set language: %w", err)
	}
	if err := client.SetImageFromBytes(prepared); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return nil, fmt.Errorf("OCR failed: %w", err)
	}
	return wordSet(text), nil
}

// prepare decodes data, upscales narrow images, converts to grayscale and
// re-encodes as PNG for Tesseract.
func prepare(data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	var out image.Image = img
	if w := img.Bounds().Dx(); w > 0 && w < minOCRWidth {
		out = imaging.Resize(out, minOCRWidth, 0, imaging.Lanczos)
	}
	out = imaging.Grayscale(out)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, out, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}

// wordSet normalizes recognized text into a set of lowercase words of at
// least two letters or digits.
func wordSet(text string) map[string]struct{} {
	words := make(map[string]struct{})
	for _, f := range strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		if len([]rune(f)) < 2 {
			continue
		}
		words[strings.ToLower(f)] = struct{}{}
	}
	return words
}

// jaccard returns |a ∩ b| / |a ∪ b|, or 0 when both sets are empty.
func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	shared := 0
	for w := range a {
		if _, ok := b[w]; ok {
			shared++
		}
	}
	return float64(shared) / float64(len(a)+len(b)-shared)
}

func describe(a, b map[string]struct{}) string {
	if len(a) == 0 && len(b) == 0 {
		return "no text recognized in either image"
	}

	var shared, onlyA, onlyB []string
	for w := range a {
		if _, ok := b[w]; ok {
			shared = append(shared, w)
		} else {
			onlyA = append(onlyA, w)
		}
	}
	for w := range b {
		if _, ok := a[w]; !ok {
			onlyB = append(onlyB, w)
		}
	}
	sort.Strings(shared)
	sort.Strings(onlyA)
	sort.Strings(onlyB)

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d shared words", len(shared))
	if len(shared) > 0 {
		fmt.Fprintf(&sb, " (%s)", strings.Join(shared, ", "))
	}
	if len(onlyA) > 0 {
		fmt.Fprintf(&sb, "; only in A: %s", strings.Join(onlyA, ", "))
	}
	if len(onlyB) > 0 {
		fmt.Fprintf(&sb, "; only in B: %s", strings.Join(onlyB, ", "))
	}
	return sb.String()
}
