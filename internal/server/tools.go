package server

import "github.com/ironsheep/visual-hash-mcp/internal/hashing"

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pathProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": description,
	}
}

func algorithmNames() []string {
	ids := hashing.Algorithms()
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = string(id)
	}
	return names
}

// tierSchema describes one hashing level override. Overrides replace the
// whole level, so algorithm, size and threshold are all required unless the
// level is disabled.
func tierSchema(level string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"description": "Replaces " + level + " for this call. algorithm, size and threshold are required unless disabled is true",
		"properties": map[string]interface{}{
			"algorithm": map[string]interface{}{
				"type": "string",
				"enum": algorithmNames(),
			},
			"size": map[string]interface{}{
				"type":        "integer",
				"description": "Sampling size, 1 to 64",
			},
			"threshold": map[string]interface{}{
				"type":        "number",
				"description": "Minimum similarity (0-1, inclusive) that ends the comparison at this level",
			},
			"disabled": map[string]interface{}{
				"type":        "boolean",
				"description": "Skip this level",
			},
		},
		"required": []string{"algorithm", "size", "threshold"},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions, format and size. The file is cached for subsequent hashing calls.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty("Absolute path to the image file"),
				},
				"required": []string{"path"},
			},
		},

		// Hash generation
		{
			Name:        "image_hash",
			Description: "Generate a visual similarity hash of an image as a string of '0' and '1' characters, with the algorithm's confidence weight and generation time.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty("Absolute path to the image file"),
					"algorithm": map[string]interface{}{
						"type":        "string",
						"enum":        algorithmNames(),
						"description": "Hash algorithm. Default perceptual",
						"default":     string(defaultAlgorithm),
					},
					"size": map[string]interface{}{
						"type":        "integer",
						"description": "Sampling grid size, 1 to 64. Wavelet needs a power of two, structural and gradient at least 3. Default 8",
						"default":     defaultSize,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_hash_quick",
			Description: "Generate a fast 64-bit average hash (average, size 8). Good for exact and near-exact duplicates.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty("Absolute path to the image file"),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_hash_perceptual",
			Description: "Generate a DCT perceptual hash (perceptual, size 16). Robust to resizing, compression and small color shifts.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty("Absolute path to the image file"),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_hash_detailed",
			Description: "Generate a structural gradient hash (structural, size 32). Sensitive to layout and edge changes.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty("Absolute path to the image file"),
				},
				"required": []string{"path"},
			},
		},

		// Comparison
		{
			Name:        "image_hash_compare",
			Description: "Hash two images with the same algorithm and size and compare them. Returns similarity (0-1), the differing bit positions and a severity of low, medium or high.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path_a": pathProperty("Absolute path to the first image"),
					"path_b": pathProperty("Absolute path to the second image"),
					"algorithm": map[string]interface{}{
						"type":        "string",
						"enum":        algorithmNames(),
						"description": "Hash algorithm. Default perceptual",
						"default":     string(defaultAlgorithm),
					},
					"size": map[string]interface{}{
						"type":        "integer",
						"description": "Sampling grid size, 1 to 64. Default 8",
						"default":     defaultSize,
					},
				},
				"required": []string{"path_a", "path_b"},
			},
		},
		{
			Name:        "image_compare_bits",
			Description: "Compare two previously generated hashes given as bit strings of equal length.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"bits_a": map[string]interface{}{
						"type":        "string",
						"description": "First hash, '0' and '1' characters only",
					},
					"bits_b": map[string]interface{}{
						"type":        "string",
						"description": "Second hash, same length as bits_a",
					},
					"algorithm": map[string]interface{}{
						"type":        "string",
						"enum":        algorithmNames(),
						"description": "Optional algorithm label for the result",
					},
				},
				"required": []string{"bits_a", "bits_b"},
			},
		},
		{
			Name:        "image_progressive_compare",
			Description: "Compare two images through escalating hash levels (average, perceptual, structural by default), stopping at the first level whose similarity meets its threshold. When no level is satisfied the result asks for semantic analysis (level 4), which run_semantic performs locally with OCR.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path_a": pathProperty("Absolute path to the first image"),
					"path_b": pathProperty("Absolute path to the second image"),
					"level1": tierSchema("level 1"),
					"level2": tierSchema("level 2"),
					"level3": tierSchema("level 3"),
					"level4": map[string]interface{}{
						"type":        "object",
						"description": "Overrides the semantic level for this call. Missing fields keep the server's value",
						"properties": map[string]interface{}{
							"enabled": map[string]interface{}{
								"type": "boolean",
							},
							"threshold": map[string]interface{}{
								"type":        "number",
								"description": "Minimum semantic confidence (0-1) treated as a match",
							},
							"endpoint": map[string]interface{}{
								"type":        "string",
								"description": "Identifier of the external analyzer, passed through",
							},
						},
					},
					"run_semantic": map[string]interface{}{
						"type":        "boolean",
						"description": "Run OCR text comparison when level 4 is reached. Default false",
						"default":     false,
					},
				},
				"required": []string{"path_a", "path_b"},
			},
		},
		{
			Name:        "image_list_algorithms",
			Description: "List the supported hash algorithms with their confidence weights, the presets, and the server's effective progressive comparison levels.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
