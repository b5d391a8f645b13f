package cli

import (
	"context"
	"strings"

	"github.com/joho/godotenv"
)

func Run(ctx context.Context, args []string) {
	_ = godotenv.Load()
	if len(args) < 1 {
		printUsage()
		return
	}

	switch strings.TrimSpace(args[0]) {
	case "run":
		runBatchCLI(ctx, args[1:])
	case "parse":
		runParseCLI(args[1:])
	case "help", "-h", "--help":
		printUsage()
	default:
		printUsage()
	}
}
