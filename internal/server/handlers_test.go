package server

import (
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ironsheep/visual-hash-mcp/internal/escalation"
	"github.com/ironsheep/visual-hash-mcp/internal/hashing"
)

// createTestImageFile writes a PNG whose pixels come from fill and returns
// its path.
func createTestImageFile(t *testing.T, width, height int, fill func(x, y int) color.Color) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, fill(x, y))
		}
	}

	f, err := os.CreateTemp(t.TempDir(), "handler-test-*.png")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return f.Name()
}

func horizontalGradient(x, y int) color.Color {
	v := uint8(x * 4)
	return color.RGBA{v, v, v, 255}
}

func verticalGradient(x, y int) color.Color {
	v := uint8(y * 4)
	return color.RGBA{v, v, v, 255}
}

// callTool runs a tools/call request.
func callTool(t *testing.T, s *Server, name string, args interface{}) *MCPResponse {
	t.Helper()

	params, err := json.Marshal(map[string]interface{}{"name": name, "arguments": args})
	if err != nil {
		t.Fatalf("failed to marshal params: %v", err)
	}
	resp := s.handleRequest(&MCPRequest{JSONRPC: "2.0", ID: 1, Method: "tools/call", Params: params})
	if resp == nil {
		t.Fatal("handleRequest returned nil")
	}
	return resp
}

// decodeResult unmarshals the text content of a successful tool response.
func decodeResult(t *testing.T, resp *MCPResponse, v interface{}) {
	t.Helper()

	if resp.Error != nil {
		t.Fatalf("Unexpected error: %+v", resp.Error)
	}
	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatal("Result should be a map")
	}
	content, ok := result["content"].([]map[string]interface{})
	if !ok || len(content) != 1 {
		t.Fatalf("content: got %#v", result["content"])
	}
	text, ok := content[0]["text"].(string)
	if !ok {
		t.Fatal("content text should be a string")
	}
	if err := json.Unmarshal([]byte(text), v); err != nil {
		t.Fatalf("failed to decode tool result %q: %v", text, err)
	}
}

func expectError(t *testing.T, resp *MCPResponse, code int, contains string) {
	t.Helper()

	if resp.Error == nil {
		t.Fatalf("expected error %d, got result %v", code, resp.Result)
	}
	if resp.Error.Code != code {
		t.Errorf("Error code: got %d, want %d (%v)", resp.Error.Code, code, resp.Error.Data)
	}
	if data, _ := resp.Error.Data.(string); !strings.Contains(data, contains) {
		t.Errorf("Error data %q should contain %q", data, contains)
	}
}

func TestHandleImageLoad(t *testing.T) {
	s := newTestServer()
	path := createTestImageFile(t, 100, 80, horizontalGradient)

	var got struct {
		Path      string `json:"path"`
		Width     int    `json:"width"`
		Height    int    `json:"height"`
		Format    string `json:"format"`
		SizeBytes int    `json:"size_bytes"`
	}
	decodeResult(t, callTool(t, s, "image_load", map[string]interface{}{"path": path}), &got)

	if got.Path != path || got.Width != 100 || got.Height != 80 || got.Format != "png" {
		t.Errorf("got %+v", got)
	}
	if got.SizeBytes == 0 {
		t.Error("SizeBytes should be set")
	}
	if s.cache.Len() != 1 {
		t.Errorf("cache entries: got %d, want 1", s.cache.Len())
	}
}

func TestHandleImageLoad_Errors(t *testing.T) {
	s := newTestServer()

	expectError(t, callTool(t, s, "image_load", map[string]interface{}{"path": "/nonexistent/image.png"}), -32000, "failed to read image")
	expectError(t, callTool(t, s, "image_load", map[string]interface{}{}), -32602, "path is required")

	notImage := filepath.Join(t.TempDir(), "notes.png")
	if err := os.WriteFile(notImage, []byte("plain text"), 0o644); err != nil {
		t.Fatal(err)
	}
	expectError(t, callTool(t, s, "image_load", map[string]interface{}{"path": notImage}), -32000, "invalid input")
}

func TestHandleImageHash(t *testing.T) {
	s := newTestServer()
	path := createTestImageFile(t, 64, 64, horizontalGradient)

	tests := []struct {
		name     string
		args     map[string]interface{}
		wantAlg  hashing.AlgorithmID
		wantBits int
	}{
		{"defaults", map[string]interface{}{"path": path}, hashing.Perceptual, 64},
		{"wavelet", map[string]interface{}{"path": path, "algorithm": "wavelet", "size": 8}, hashing.Wavelet, 16},
		{"case insensitive", map[string]interface{}{"path": path, "algorithm": "AVERAGE", "size": 4}, hashing.Average, 16},
		{"color histogram", map[string]interface{}{"path": path, "algorithm": "color-histogram"}, hashing.ColorHistogram, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got hashing.HashDescriptor
			decodeResult(t, callTool(t, s, "image_hash", tt.args), &got)
			if got.Algorithm != tt.wantAlg || len(got.Bits) != tt.wantBits {
				t.Errorf("got %s with %d bits, want %s with %d", got.Algorithm, len(got.Bits), tt.wantAlg, tt.wantBits)
			}
			if strings.Trim(got.Bits, "01") != "" {
				t.Errorf("bits contain characters other than 0 and 1: %q", got.Bits)
			}
		})
	}
}

func TestHandleImageHash_Errors(t *testing.T) {
	s := newTestServer()
	path := createTestImageFile(t, 32, 32, horizontalGradient)

	expectError(t, callTool(t, s, "image_hash", map[string]interface{}{"path": path, "algorithm": "sha1"}), -32000, "unknown algorithm")
	expectError(t, callTool(t, s, "image_hash", map[string]interface{}{"path": path, "size": 65}), -32000, "invalid input")
	expectError(t, callTool(t, s, "image_hash", map[string]interface{}{"path": path, "size": "big"}), -32602, "invalid arguments")
	expectError(t, callTool(t, s, "image_hash", map[string]interface{}{"algorithm": "average"}), -32602, "path is required")
}

func TestHandleImageHashPresets(t *testing.T) {
	s := newTestServer()
	path := createTestImageFile(t, 64, 64, verticalGradient)

	tests := []struct {
		tool     string
		wantAlg  hashing.AlgorithmID
		wantSize int
		wantBits int
	}{
		{"image_hash_quick", hashing.Average, 8, 64},
		{"image_hash_perceptual", hashing.Perceptual, 16, 64},
		{"image_hash_detailed", hashing.Structural, 32, 900},
	}
	for _, tt := range tests {
		t.Run(tt.tool, func(t *testing.T) {
			var got hashing.HashDescriptor
			decodeResult(t, callTool(t, s, tt.tool, map[string]interface{}{"path": path}), &got)
			if got.Algorithm != tt.wantAlg || got.Size != tt.wantSize || len(got.Bits) != tt.wantBits {
				t.Errorf("got %s/%d with %d bits", got.Algorithm, got.Size, len(got.Bits))
			}
		})
	}
}

func TestHandleImageHashCompare(t *testing.T) {
	s := newTestServer()
	a := createTestImageFile(t, 64, 64, horizontalGradient)
	b := createTestImageFile(t, 64, 64, horizontalGradient)
	c := createTestImageFile(t, 64, 64, verticalGradient)

	var same hashCompareResult
	decodeResult(t, callTool(t, s, "image_hash_compare", map[string]interface{}{
		"path_a": a, "path_b": b, "algorithm": "average",
	}), &same)
	if !same.Result.Identical || same.Result.Similarity != 1 || same.Result.Severity != hashing.SeverityLow {
		t.Errorf("identical images: got %+v", same.Result)
	}
	if same.HashA.Bits != same.HashB.Bits {
		t.Error("identical images produced different hashes")
	}

	var diff hashCompareResult
	decodeResult(t, callTool(t, s, "image_hash_compare", map[string]interface{}{
		"path_a": a, "path_b": c, "algorithm": "average",
	}), &diff)
	if diff.Result.Identical || diff.Result.Similarity >= 1 {
		t.Errorf("orthogonal gradients: got %+v", diff.Result)
	}
	if len(diff.Result.DifferingBitPositions) != diff.Result.DifferingBitCount {
		t.Errorf("positions %d vs count %d", len(diff.Result.DifferingBitPositions), diff.Result.DifferingBitCount)
	}

	expectError(t, callTool(t, s, "image_hash_compare", map[string]interface{}{"path_a": a}), -32602, "path_b is required")
}

func TestHandleImageCompareBits(t *testing.T) {
	s := newTestServer()

	var got hashing.SimilarityResult
	decodeResult(t, callTool(t, s, "image_compare_bits", map[string]interface{}{
		"bits_a": "1010", "bits_b": "1011", "algorithm": "average",
	}), &got)
	if got.Similarity != 0.75 || got.Severity != hashing.SeverityMedium || got.DifferingBitCount != 1 {
		t.Errorf("got %+v", got)
	}
	if len(got.DifferingBitPositions) != 1 || got.DifferingBitPositions[0] != 3 {
		t.Errorf("positions: got %v, want [3]", got.DifferingBitPositions)
	}
	if got.Algorithm != hashing.Average {
		t.Errorf("algorithm label: got %q", got.Algorithm)
	}

	expectError(t, callTool(t, s, "image_compare_bits", map[string]interface{}{"bits_a": "10", "bits_b": "101"}), -32000, "length mismatch")
	expectError(t, callTool(t, s, "image_compare_bits", map[string]interface{}{"bits_a": "10x", "bits_b": "101"}), -32000, "only '0' and '1'")
	expectError(t, callTool(t, s, "image_compare_bits", map[string]interface{}{"bits_a": "10", "bits_b": "11", "algorithm": "md5"}), -32000, "unknown algorithm")
}

func TestHandleImageCompareBits_ReportsFirstInvalidField(t *testing.T) {
	s := newTestServer()
	for i := 0; i < 20; i++ {
		resp := callTool(t, s, "image_compare_bits", map[string]interface{}{"bits_a": "1x", "bits_b": "y0"})
		expectError(t, resp, -32000, "bits_a must contain only")
	}
}

// progressiveResult mirrors the JSON of progressiveCompareResult.
type progressiveResult struct {
	escalation.Outcome
	SemanticError string `json:"semantic_error"`
}

// strictLevels makes every level fail for any pair of different images.
func strictLevels(args map[string]interface{}) map[string]interface{} {
	args["level1"] = map[string]interface{}{"algorithm": "Average", "size": 8, "threshold": 0.99}
	args["level2"] = map[string]interface{}{"algorithm": "average", "size": 16, "threshold": 0.99}
	args["level3"] = map[string]interface{}{"algorithm": "block", "size": 8, "threshold": 0.99}
	return args
}

func TestHandleImageProgressiveCompare_Identical(t *testing.T) {
	s := newTestServer()
	a := createTestImageFile(t, 64, 64, horizontalGradient)

	var got progressiveResult
	decodeResult(t, callTool(t, s, "image_progressive_compare", map[string]interface{}{"path_a": a, "path_b": a}), &got)

	if got.LevelReached != 1 || got.ShouldEscalateFurther {
		t.Errorf("got level %d escalate=%v, want 1 false", got.LevelReached, got.ShouldEscalateFurther)
	}
	if got.Result == nil || !got.Result.Identical {
		t.Errorf("result: got %+v", got.Result)
	}
	if len(got.Tiers) != 1 {
		t.Errorf("tiers: got %d, want 1", len(got.Tiers))
	}
}

func TestHandleImageProgressiveCompare_Escalates(t *testing.T) {
	s := newTestServer()
	a := createTestImageFile(t, 64, 64, horizontalGradient)
	b := createTestImageFile(t, 64, 64, verticalGradient)

	var got progressiveResult
	decodeResult(t, callTool(t, s, "image_progressive_compare", strictLevels(map[string]interface{}{
		"path_a": a, "path_b": b,
	})), &got)

	if got.LevelReached != 4 || !got.ShouldEscalateFurther {
		t.Errorf("got level %d escalate=%v, want 4 true", got.LevelReached, got.ShouldEscalateFurther)
	}
	if got.Result.Similarity != 0 || got.Result.Severity != hashing.SeverityHigh {
		t.Errorf("placeholder result: got %+v", got.Result)
	}
	if len(got.Tiers) != 3 || got.Tiers[2].Algorithm != hashing.Block {
		t.Errorf("tiers: got %+v", got.Tiers)
	}
	if got.Semantic != nil {
		t.Error("semantic analysis ran without run_semantic")
	}
}

func TestHandleImageProgressiveCompare_SemanticDisabled(t *testing.T) {
	s := newTestServer()
	a := createTestImageFile(t, 64, 64, horizontalGradient)
	b := createTestImageFile(t, 64, 64, verticalGradient)

	args := strictLevels(map[string]interface{}{"path_a": a, "path_b": b})
	args["level4"] = map[string]interface{}{"enabled": false}

	var got progressiveResult
	decodeResult(t, callTool(t, s, "image_progressive_compare", args), &got)

	if got.LevelReached != 3 || got.ShouldEscalateFurther {
		t.Errorf("got level %d escalate=%v, want 3 false", got.LevelReached, got.ShouldEscalateFurther)
	}
}

type stubAnalyzer struct {
	res *escalation.SemanticResult
	err error
}

func (s *stubAnalyzer) Analyze(ctx context.Context, imageA, imageB []byte) (*escalation.SemanticResult, error) {
	return s.res, s.err
}

func TestHandleImageProgressiveCompare_RunSemantic(t *testing.T) {
	a := createTestImageFile(t, 64, 64, horizontalGradient)
	b := createTestImageFile(t, 64, 64, verticalGradient)

	s := newTestServer()
	s.analyzer = &stubAnalyzer{res: &escalation.SemanticResult{Description: "same caption", Confidence: 0.9}}

	var got progressiveResult
	decodeResult(t, callTool(t, s, "image_progressive_compare", strictLevels(map[string]interface{}{
		"path_a": a, "path_b": b, "run_semantic": true,
	})), &got)

	if got.Semantic == nil {
		t.Fatal("semantic result missing")
	}
	if !got.Semantic.Passed || got.Semantic.Description != "same caption" {
		t.Errorf("semantic: got %+v", got.Semantic)
	}

	s.analyzer = &stubAnalyzer{err: errors.New("tesseract missing")}
	var failed progressiveResult
	decodeResult(t, callTool(t, s, "image_progressive_compare", strictLevels(map[string]interface{}{
		"path_a": a, "path_b": b, "run_semantic": true,
	})), &failed)

	if failed.LevelReached != 4 {
		t.Errorf("LevelReached: got %d, want 4", failed.LevelReached)
	}
	if !strings.Contains(failed.SemanticError, "tesseract missing") {
		t.Errorf("semantic_error: got %q", failed.SemanticError)
	}
}

func TestHandleImageProgressiveCompare_Errors(t *testing.T) {
	s := newTestServer()
	a := createTestImageFile(t, 32, 32, horizontalGradient)

	args := map[string]interface{}{
		"path_a": a, "path_b": a,
		"level2": map[string]interface{}{"algorithm": "bogus", "size": 8, "threshold": 0.5},
	}
	expectError(t, callTool(t, s, "image_progressive_compare", args), -32000, "unknown algorithm")

	expectError(t, callTool(t, s, "image_progressive_compare", map[string]interface{}{
		"path_a": a, "path_b": "/nonexistent/b.png",
	}), -32000, "failed to read image")
}

func TestHandleImageProgressiveCompare_IncompleteOverride(t *testing.T) {
	s := newTestServer()
	a := createTestImageFile(t, 64, 64, horizontalGradient)
	b := createTestImageFile(t, 64, 64, verticalGradient)

	tests := []struct {
		name     string
		level    map[string]interface{}
		contains string
	}{
		{"no threshold", map[string]interface{}{"algorithm": "average", "size": 8}, "level1 is missing threshold"},
		{"no size", map[string]interface{}{"algorithm": "average", "threshold": 0.9}, "level1 is missing size"},
		{"empty", map[string]interface{}{}, "level1 is missing algorithm, size, threshold"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := callTool(t, s, "image_progressive_compare", map[string]interface{}{
				"path_a": a, "path_b": b, "level1": tt.level,
			})
			expectError(t, resp, -32602, tt.contains)
		})
	}
}

func TestHandleImageProgressiveCompare_ExplicitZeroThreshold(t *testing.T) {
	s := newTestServer()
	a := createTestImageFile(t, 64, 64, horizontalGradient)
	b := createTestImageFile(t, 64, 64, verticalGradient)

	var got progressiveResult
	decodeResult(t, callTool(t, s, "image_progressive_compare", map[string]interface{}{
		"path_a": a, "path_b": b,
		"level1": map[string]interface{}{"algorithm": "average", "size": 8, "threshold": 0},
	}), &got)

	if got.LevelReached != 1 || got.Tiers[0].Threshold != 0 {
		t.Errorf("an explicit zero threshold should accept level 1, got level %d", got.LevelReached)
	}
}

func TestHandleImageProgressiveCompare_DisabledLevelNeedsNoFields(t *testing.T) {
	s := newTestServer()
	a := createTestImageFile(t, 64, 64, horizontalGradient)
	b := createTestImageFile(t, 64, 64, verticalGradient)

	args := strictLevels(map[string]interface{}{"path_a": a, "path_b": b})
	args["level3"] = map[string]interface{}{"disabled": true}
	args["level4"] = map[string]interface{}{"enabled": false}

	var got progressiveResult
	decodeResult(t, callTool(t, s, "image_progressive_compare", args), &got)

	if got.LevelReached != 2 || len(got.Tiers) != 2 {
		t.Errorf("got level %d with %d tiers, want 2 and 2", got.LevelReached, len(got.Tiers))
	}
}

func TestHandleImageProgressiveCompare_PartialSemanticOverride(t *testing.T) {
	a := createTestImageFile(t, 64, 64, horizontalGradient)
	b := createTestImageFile(t, 64, 64, verticalGradient)

	s := newTestServer()
	s.analyzer = &stubAnalyzer{res: &escalation.SemanticResult{Confidence: 0.5}}

	args := strictLevels(map[string]interface{}{"path_a": a, "path_b": b, "run_semantic": true})
	args["level4"] = map[string]interface{}{"endpoint": "ocr"}

	var got progressiveResult
	decodeResult(t, callTool(t, s, "image_progressive_compare", args), &got)

	if got.LevelReached != 4 || got.Semantic == nil {
		t.Fatalf("got level %d semantic %+v", got.LevelReached, got.Semantic)
	}
	if got.Semantic.Passed || got.Semantic.Endpoint != "ocr" {
		t.Errorf("missing threshold should keep the server's 0.8: got %+v", got.Semantic)
	}
}

func TestHandleImageListAlgorithms(t *testing.T) {
	s := newTestServer()

	var got listAlgorithmsResult
	decodeResult(t, callTool(t, s, "image_list_algorithms", map[string]interface{}{}), &got)

	if len(got.Algorithms) != len(hashing.Algorithms()) {
		t.Errorf("algorithms: got %d, want %d", len(got.Algorithms), len(hashing.Algorithms()))
	}
	for _, a := range got.Algorithms {
		if a.Confidence <= 0 || a.Confidence > 1 {
			t.Errorf("%s: confidence %v", a.Name, a.Confidence)
		}
	}
	if len(got.Presets) != 3 {
		t.Errorf("presets: got %d, want 3", len(got.Presets))
	}
	if got.DefaultConfig.Level1 == nil || got.DefaultConfig.Level1.Algorithm != hashing.Average {
		t.Errorf("default config: got %+v", got.DefaultConfig.Level1)
	}
}

func TestExecuteTool_UnknownTool(t *testing.T) {
	s := newTestServer()
	expectError(t, callTool(t, s, "image_crop", map[string]interface{}{}), -32000, "unknown tool")
}

func TestHandleToolsCall_InvalidParams(t *testing.T) {
	s := newTestServer()
	resp := s.handleRequest(&MCPRequest{JSONRPC: "2.0", ID: 1, Method: "tools/call", Params: json.RawMessage(`[1,2]`)})

	if resp.Error == nil || resp.Error.Code != -32602 {
		t.Errorf("got %+v, want -32602", resp.Error)
	}
}
