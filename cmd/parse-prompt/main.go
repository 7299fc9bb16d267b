// Command parse-prompt sends one natural-language invoice description
// through the parser and prints the structured result. Useful for checking
// API connectivity and prompt behavior without running the server.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/smartinvoice/smartinvoice/internal/infrastructure/external/openai"
)

func main() {
	apiKey := flag.String("key", "", "OpenAI API key (or set OPENAI_API_KEY env var)")
	model := flag.String("model", "gpt-4o-mini", "Model to use")
	timeout := flag.Duration("timeout", 60*time.Second, "API call timeout")
	verbose := flag.Bool("verbose", false, "Verbose output")
	flag.Parse()

	var logger *zap.Logger
	var err error
	if *verbose {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if *apiKey == "" {
		*apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if *apiKey == "" {
		fmt.Fprintf(os.Stderr, "ERROR: OPENAI_API_KEY not set and no --key flag provided\n")
		fmt.Fprintf(os.Stderr, "Usage: parse-prompt --key sk-... [--model gpt-4o-mini] [--timeout 60s] \"2 monitors at 12000 each with 18%% GST\"\n")
		os.Exit(1)
	}

	prompt := strings.Join(flag.Args(), " ")
	if strings.TrimSpace(prompt) == "" {
		fmt.Fprintf(os.Stderr, "ERROR: no prompt given\n")
		os.Exit(1)
	}

	parser := openai.NewParser(*apiKey, *model, 0.1, 1000, *timeout, logger)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	result, err := parser.Parse(ctx, prompt)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Parse failed: %v\n", err)
		os.Exit(1)
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to format result: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}
