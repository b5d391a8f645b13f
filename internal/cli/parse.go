package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/arbiterhq/arbiter-go/verdict"
)

// runParseCLI parses a judge response from a file (or stdin when no path is
// given) and prints the structured verdict as JSON.
func runParseCLI(args []string) {
	path := ""
	for _, arg := range args {
		if value, ok := strings.CutPrefix(arg, "--file="); ok {
			path = value
			continue
		}
		if !strings.HasPrefix(arg, "--") && path == "" {
			path = arg
		}
	}

	var raw []byte
	var err error
	if path == "" || path == "-" {
		raw, err = io.ReadAll(os.Stdin)
		if err != nil {
			log.Fatalf("failed to read stdin: %v", err)
		}
	} else {
		raw, err = os.ReadFile(path)
		if err != nil {
			log.Fatalf("failed to read judge response: %v", err)
		}
	}

	parsed, err := verdict.Parse(string(raw))
	if err != nil {
		log.Fatalf("failed to parse judge response: %v", err)
	}

	data, err := json.MarshalIndent(parsed, "", "  ")
	if err != nil {
		log.Fatalf("failed to encode verdict: %v", err)
	}
	fmt.Println(string(data))
}
