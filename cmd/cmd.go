// Package cmd provides the twindex CLI commands.
//
// Commands:
//   - migrate: load the profile document into PostgreSQL and the vector index
//   - serve:   HTTP query API
//   - verify:  vector index health suite
package cmd

import (
	"fmt"
	"log/slog"
	"os"
)

// Execute is the main entry point for the twindex CLI.
func Execute() error {
	level := slog.LevelInfo
	if os.Getenv("DEBUG") != "" {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if len(os.Args) < 2 {
		runHelp()
		return nil
	}

	switch os.Args[1] {
	case "migrate":
		return runMigrate()
	case "serve":
		return runServe()
	case "verify":
		return runVerify()
	case "version", "--version", "-v":
		runVersion()
		return nil
	case "help", "--help", "-h":
		runHelp()
		return nil
	default:
		return fmt.Errorf("unknown command: %s", os.Args[1])
	}
}

func runHelp() {
	fmt.Println("twindex - digital twin profile indexer")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  twindex migrate       Load the profile into PostgreSQL and the vector index")
	fmt.Println("  twindex serve [addr]  Start the HTTP query API (default: 127.0.0.1:8000)")
	fmt.Println("  twindex verify        Run the vector index health suite")
	fmt.Println("  twindex --version     Show version information")
	fmt.Println("  twindex --help        Show this help")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  UPSTASH_VECTOR_REST_URL    Required for migrate/verify: index endpoint")
	fmt.Println("  UPSTASH_VECTOR_REST_TOKEN  Required for migrate/verify: index token")
	fmt.Println("  DATABASE_URL               Optional: overrides the postgres settings")
	fmt.Println("  TWINDEX_PROFILE_PATH       Optional: profile JSON location")
	fmt.Println("  DEBUG                      Optional: enable debug logging")
}
