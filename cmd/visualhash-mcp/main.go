package main

import (
	"fmt"
	"log"
	"os"

	"github.com/ironsheep/visual-hash-mcp/internal/config"
	"github.com/ironsheep/visual-hash-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("visual-hash-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			fmt.Println("visual-hash-mcp - MCP server for visual similarity hashing")
			fmt.Println()
			fmt.Println("Usage: visual-hash-mcp [options]")
			fmt.Println()
			fmt.Println("Options:")
			fmt.Println("  --version, -v    Print version information")
			fmt.Println("  --help, -h       Print this help message")
			fmt.Println()
			fmt.Println("Environment variables:")
			fmt.Println("  VISUALHASH_LOG_LEVEL=debug             Enable debug logging")
			fmt.Println("  VISUALHASH_LEVEL{1,2,3}_ALGORITHM      Algorithm for a comparison level")
			fmt.Println("  VISUALHASH_LEVEL{1,2,3}_SIZE           Sampling size for a level (1-64)")
			fmt.Println("  VISUALHASH_LEVEL{1,2,3}_THRESHOLD      Similarity that ends the comparison (0-1)")
			fmt.Println("  VISUALHASH_LEVEL{1,2,3}_DISABLED=true  Skip a level")
			fmt.Println("  VISUALHASH_SEMANTIC_ENABLED            Escalate to semantic analysis (default true)")
			fmt.Println("  VISUALHASH_SEMANTIC_THRESHOLD          Semantic confidence treated as a match")
			fmt.Println("  VISUALHASH_SEMANTIC_ENDPOINT           Semantic analyzer identifier")
			fmt.Println("  VISUALHASH_OCR_LANGUAGE=eng            Tesseract language for run_semantic")
			fmt.Println()
			fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
			fmt.Println("Configure it in your MCP client (e.g., Claude Desktop).")
			return
		}
	}

	// Configure logging to stderr (stdout is for MCP protocol)
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	cfg := config.Load()
	if cfg.Debug() {
		log.Printf("Visual Hash MCP Server v%s (built %s, commit %s)", Version, BuildTime, GitCommit)
	}

	server.Version = Version
	srv := server.New(cfg)
	if err := srv.Run(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
