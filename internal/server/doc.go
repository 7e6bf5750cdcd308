// Package server implements the MCP (Model Context Protocol) server for visual
// similarity hashing.
//
// This package provides a JSON-RPC 2.0 server that exposes hash generation and
// progressive image comparison through the MCP protocol, so that an AI client
// can decide cheaply whether two screenshots or renders show the same thing.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Image Information:
//   - image_load: Load an image and report its dimensions and format
//
// Hash Generation:
//   - image_hash: Any algorithm at any supported size
//   - image_hash_quick: Average hash, size 8
//   - image_hash_perceptual: DCT hash, size 16
//   - image_hash_detailed: Structural gradient hash, size 32
//
// Comparison:
//   - image_hash_compare: Hash two images and compare them
//   - image_compare_bits: Compare two bit strings directly
//   - image_progressive_compare: Escalating multi-level comparison
//   - image_list_algorithms: Algorithms, presets and effective levels
//
// # Progressive Comparison
//
// image_progressive_compare runs up to three hashing levels in order and stops
// at the first whose similarity meets its threshold. Per-call level overrides
// replace whole levels on top of the server's configuration, which itself sits
// on top of the built-in defaults. When no level is satisfied and level 4 is
// enabled, the outcome asks for semantic analysis; with run_semantic set the
// server performs it locally by comparing OCR text.
//
// # Image Caching
//
// Encoded image files are cached by path for the lifetime of the process, so
// hashing the same file at several levels reads it from disk once.
//
// # Error Handling
//
// Tool errors are returned as JSON-RPC error responses with:
//   - code: -32602 for malformed or missing arguments, -32000 for any other
//     tool failure
//   - message: Human-readable error description
//   - data: The Go error string
//
// # Usage
//
//	srv := server.New(config.Load())
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
