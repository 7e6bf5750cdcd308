package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/ironsheep/visual-hash-mcp/internal/escalation"
	"github.com/ironsheep/visual-hash-mcp/internal/hashing"
	"github.com/ironsheep/visual-hash-mcp/internal/pixels"
)

// errInvalidArgs marks tool arguments that could not be decoded or are
// missing a required field. It maps to JSON-RPC code -32602.
var errInvalidArgs = errors.New("invalid arguments")

// Defaults for image_hash and image_hash_compare.
const (
	defaultAlgorithm = hashing.Perceptual
	defaultSize      = 8
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_hash", "image_progressive_compare").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Argument errors return code -32602; every other tool error returns -32000
// with the error string as data.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		log.Printf("Tool %s failed: %v", params.Name, err)
		if errors.Is(err, errInvalidArgs) {
			return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
		}
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
//
// Each tool handler:
//  1. Decodes arguments from JSON
//  2. Applies default values for optional parameters
//  3. Loads image bytes through the cache
//  4. Calls the hashing or escalation layer
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "image_load":
		return s.handleImageLoad(args)

	// Hash generation
	case "image_hash":
		return s.handleImageHash(args)
	case "image_hash_quick":
		return s.handleImageHashPreset(args, hashing.QuickPreset)
	case "image_hash_perceptual":
		return s.handleImageHashPreset(args, hashing.PerceptualPreset)
	case "image_hash_detailed":
		return s.handleImageHashPreset(args, hashing.DetailedPreset)

	// Comparison
	case "image_hash_compare":
		return s.handleImageHashCompare(args)
	case "image_compare_bits":
		return s.handleImageCompareBits(args)
	case "image_progressive_compare":
		return s.handleImageProgressiveCompare(args)

	case "image_list_algorithms":
		return s.handleImageListAlgorithms()

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// decodeArgs unmarshals tool arguments. Missing arguments decode as {}.
func decodeArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 {
		return nil
	}
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("%w: %v", errInvalidArgs, err)
	}
	return nil
}

func requirePath(field, path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("%w: %s is required", errInvalidArgs, field)
	}
	return nil
}

// resolveAlgorithm parses name, falling back to def when name is empty.
func resolveAlgorithm(name string, def hashing.AlgorithmID) (hashing.AlgorithmID, error) {
	if name == "" {
		return def, nil
	}
	return hashing.ParseAlgorithm(name)
}

// === Image Information ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

type imageLoadResult struct {
	Path string `json:"path"`
	*pixels.ImageInfo
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := requirePath("path", a.Path); err != nil {
		return nil, err
	}
	data, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	info, err := pixels.LoadImageInfo(data)
	if err != nil {
		return nil, err
	}
	return &imageLoadResult{Path: a.Path, ImageInfo: info}, nil
}

// === Hash Generation ===

type imageHashArgs struct {
	Path      string `json:"path"`
	Algorithm string `json:"algorithm"`
	Size      int    `json:"size"`
}

func (s *Server) handleImageHash(args json.RawMessage) (interface{}, error) {
	var a imageHashArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := requirePath("path", a.Path); err != nil {
		return nil, err
	}
	alg, err := resolveAlgorithm(a.Algorithm, defaultAlgorithm)
	if err != nil {
		return nil, err
	}
	if a.Size == 0 {
		a.Size = defaultSize
	}
	data, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return s.hasher.GenerateHash(data, alg, a.Size)
}

func (s *Server) handleImageHashPreset(args json.RawMessage, preset hashing.Preset) (interface{}, error) {
	var a imageLoadArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := requirePath("path", a.Path); err != nil {
		return nil, err
	}
	data, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return s.hasher.GeneratePreset(data, preset)
}

// === Comparison ===

type imagePairArgs struct {
	PathA string `json:"path_a"`
	PathB string `json:"path_b"`
}

// loadPair validates and loads both paths of a comparison.
func (s *Server) loadPair(a imagePairArgs) ([]byte, []byte, error) {
	if err := requirePath("path_a", a.PathA); err != nil {
		return nil, nil, err
	}
	if err := requirePath("path_b", a.PathB); err != nil {
		return nil, nil, err
	}
	dataA, err := s.cache.Load(a.PathA)
	if err != nil {
		return nil, nil, err
	}
	dataB, err := s.cache.Load(a.PathB)
	if err != nil {
		return nil, nil, err
	}
	return dataA, dataB, nil
}

type imageHashCompareArgs struct {
	imagePairArgs
	Algorithm string `json:"algorithm"`
	Size      int    `json:"size"`
}

type hashCompareResult struct {
	HashA  *hashing.HashDescriptor   `json:"hash_a"`
	HashB  *hashing.HashDescriptor   `json:"hash_b"`
	Result *hashing.SimilarityResult `json:"result"`
}

func (s *Server) handleImageHashCompare(args json.RawMessage) (interface{}, error) {
	var a imageHashCompareArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	alg, err := resolveAlgorithm(a.Algorithm, defaultAlgorithm)
	if err != nil {
		return nil, err
	}
	if a.Size == 0 {
		a.Size = defaultSize
	}
	dataA, dataB, err := s.loadPair(a.imagePairArgs)
	if err != nil {
		return nil, err
	}

	ha, err := s.hasher.GenerateHash(dataA, alg, a.Size)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", a.PathA, err)
	}
	hb, err := s.hasher.GenerateHash(dataB, alg, a.Size)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", a.PathB, err)
	}
	res, err := hashing.CompareHashes(ha, hb)
	if err != nil {
		return nil, err
	}
	return &hashCompareResult{HashA: ha, HashB: hb, Result: res}, nil
}

type imageCompareBitsArgs struct {
	BitsA     string `json:"bits_a"`
	BitsB     string `json:"bits_b"`
	Algorithm string `json:"algorithm"`
}

func (s *Server) handleImageCompareBits(args json.RawMessage) (interface{}, error) {
	var a imageCompareBitsArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	for _, f := range []struct{ name, bits string }{{"bits_a", a.BitsA}, {"bits_b", a.BitsB}} {
		if strings.Trim(f.bits, "01") != "" {
			return nil, fmt.Errorf("%w: %s must contain only '0' and '1'", hashing.ErrInvalidInput, f.name)
		}
	}
	var alg hashing.AlgorithmID
	if a.Algorithm != "" {
		parsed, err := hashing.ParseAlgorithm(a.Algorithm)
		if err != nil {
			return nil, err
		}
		alg = parsed
	}
	return hashing.CompareBits(a.BitsA, a.BitsB, alg)
}

// tierOverride is a per-call replacement for one hashing level. Pointer
// fields distinguish "missing" from zero.
type tierOverride struct {
	Algorithm *string  `json:"algorithm"`
	Size      *int     `json:"size"`
	Threshold *float64 `json:"threshold"`
	Disabled  bool     `json:"disabled"`
}

// toTier converts o into a level. An enabled level must name its algorithm,
// size and threshold.
func (o *tierOverride) toTier(field string) (*escalation.TierConfig, error) {
	if o == nil {
		return nil, nil
	}
	if o.Disabled {
		return &escalation.TierConfig{Disabled: true}, nil
	}
	var missing []string
	if o.Algorithm == nil {
		missing = append(missing, "algorithm")
	}
	if o.Size == nil {
		missing = append(missing, "size")
	}
	if o.Threshold == nil {
		missing = append(missing, "threshold")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s is missing %s", errInvalidArgs, field, strings.Join(missing, ", "))
	}

	// Unknown names are left for the controller to reject.
	alg := hashing.AlgorithmID(*o.Algorithm)
	if id, err := hashing.ParseAlgorithm(*o.Algorithm); err == nil {
		alg = id
	}
	return &escalation.TierConfig{Algorithm: alg, Size: *o.Size, Threshold: *o.Threshold}, nil
}

// semanticOverride replaces level 4 for one call. Missing fields keep the
// server's value.
type semanticOverride struct {
	Enabled   *bool    `json:"enabled"`
	Threshold *float64 `json:"threshold"`
	Endpoint  *string  `json:"endpoint"`
}

func (o *semanticOverride) apply(base *escalation.SemanticConfig) *escalation.SemanticConfig {
	if o == nil {
		return nil
	}
	var out escalation.SemanticConfig
	if base != nil {
		out = *base
	}
	if o.Enabled != nil {
		out.Enabled = *o.Enabled
	}
	if o.Threshold != nil {
		out.Threshold = *o.Threshold
	}
	if o.Endpoint != nil {
		out.Endpoint = *o.Endpoint
	}
	return &out
}

type imageProgressiveCompareArgs struct {
	imagePairArgs
	Level1 *tierOverride     `json:"level1"`
	Level2 *tierOverride     `json:"level2"`
	Level3 *tierOverride     `json:"level3"`
	Level4 *semanticOverride `json:"level4"`

	// RunSemantic performs the level-4 hand-off through the OCR analyzer
	// when no hashing tier is satisfied.
	RunSemantic bool `json:"run_semantic"`
}

// overrides builds the call-site layer from the decoded arguments.
func (a *imageProgressiveCompareArgs) overrides(base escalation.MultiLevelConfig) (escalation.MultiLevelConfig, error) {
	var out escalation.MultiLevelConfig
	var err error
	if out.Level1, err = a.Level1.toTier("level1"); err != nil {
		return out, err
	}
	if out.Level2, err = a.Level2.toTier("level2"); err != nil {
		return out, err
	}
	if out.Level3, err = a.Level3.toTier("level3"); err != nil {
		return out, err
	}
	out.Level4 = a.Level4.apply(base.Level4)
	return out, nil
}

type progressiveCompareResult struct {
	*escalation.Outcome
	SemanticError string `json:"semantic_error,omitempty"`
}

func (s *Server) handleImageProgressiveCompare(args json.RawMessage) (interface{}, error) {
	var a imageProgressiveCompareArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	overrides, err := a.overrides(s.controller.Config())
	if err != nil {
		return nil, err
	}
	dataA, dataB, err := s.loadPair(a.imagePairArgs)
	if err != nil {
		return nil, err
	}

	outcome, err := s.controller.Compare(dataA, dataB, overrides)
	if err != nil {
		return nil, err
	}
	if s.debug {
		for _, t := range outcome.Tiers {
			log.Printf("Level %d (%s/%d): similarity %.4f threshold %.2f passed=%v",
				t.Level, t.Algorithm, t.Size, t.Similarity, t.Threshold, t.Passed)
		}
		log.Printf("Reached level %d, escalate=%v", outcome.LevelReached, outcome.ShouldEscalateFurther)
	}

	result := &progressiveCompareResult{Outcome: outcome}
	if a.RunSemantic && outcome.ShouldEscalateFurther {
		cfg := s.controller.Config(overrides)
		if err := escalation.RunSemantic(context.Background(), s.analyzer, *cfg.Level4, outcome, dataA, dataB); err != nil {
			log.Printf("Semantic analysis failed: %v", err)
			result.SemanticError = err.Error()
		}
	}
	return result, nil
}

type algorithmInfo struct {
	Name       hashing.AlgorithmID `json:"name"`
	Confidence float64             `json:"confidence"`
}

type listAlgorithmsResult struct {
	Algorithms    []algorithmInfo             `json:"algorithms"`
	Presets       []hashing.Preset            `json:"presets"`
	DefaultConfig escalation.MultiLevelConfig `json:"default_config"`
}

func (s *Server) handleImageListAlgorithms() (interface{}, error) {
	ids := hashing.Algorithms()
	infos := make([]algorithmInfo, 0, len(ids))
	for _, id := range ids {
		c, err := id.Confidence()
		if err != nil {
			return nil, err
		}
		infos = append(infos, algorithmInfo{Name: id, Confidence: c})
	}
	return &listAlgorithmsResult{
		Algorithms:    infos,
		Presets:       []hashing.Preset{hashing.QuickPreset, hashing.PerceptualPreset, hashing.DetailedPreset},
		DefaultConfig: s.controller.Config(),
	}, nil
}
