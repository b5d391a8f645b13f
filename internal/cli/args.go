package cli

import (
	"strconv"
	"strings"
	"time"

	"github.com/arbiterhq/arbiter-go/internal/config"
)

type runCLIOptions struct {
	gatewayURL      string
	catalogPath     string
	criteriaPath    string
	prompt          string
	promptFile      string
	maxAttempts     int
	goal            int
	testModel       string
	judgeModel      string
	judgePromptFile string
	output          string
	auditDB         string
	redisAddr       string
	redisStream     string
	waveDelay       time.Duration
	winOnZero       bool
}

func parseRunArgs(args []string) runCLIOptions {
	opts := runCLIOptions{
		maxAttempts: config.ParseIntEnv("ARBITER_MAX_ATTEMPTS", 10),
		goal:        config.ParseIntEnv("ARBITER_GOAL", 1),
		output:      "markdown",
		waveDelay:   config.ParseDurationEnv("ARBITER_WAVE_DELAY", -1),
		winOnZero:   true,
	}
	for _, arg := range args {
		switch {
		case strings.HasPrefix(arg, "--gateway-url="):
			opts.gatewayURL = strings.TrimSpace(strings.TrimPrefix(arg, "--gateway-url="))
		case strings.HasPrefix(arg, "--catalog="):
			opts.catalogPath = strings.TrimSpace(strings.TrimPrefix(arg, "--catalog="))
		case strings.HasPrefix(arg, "--criteria="):
			opts.criteriaPath = strings.TrimSpace(strings.TrimPrefix(arg, "--criteria="))
		case strings.HasPrefix(arg, "--prompt="):
			opts.prompt = strings.TrimPrefix(arg, "--prompt=")
		case strings.HasPrefix(arg, "--prompt-file="):
			opts.promptFile = strings.TrimSpace(strings.TrimPrefix(arg, "--prompt-file="))
		case strings.HasPrefix(arg, "--max-attempts="):
			if v, err := strconv.Atoi(strings.TrimPrefix(arg, "--max-attempts=")); err == nil && v > 0 {
				opts.maxAttempts = v
			}
		case strings.HasPrefix(arg, "--goal="):
			if v, err := strconv.Atoi(strings.TrimPrefix(arg, "--goal=")); err == nil && v > 0 {
				opts.goal = v
			}
		case strings.HasPrefix(arg, "--test-model="):
			opts.testModel = strings.TrimSpace(strings.TrimPrefix(arg, "--test-model="))
		case strings.HasPrefix(arg, "--judge-model="):
			opts.judgeModel = strings.TrimSpace(strings.TrimPrefix(arg, "--judge-model="))
		case strings.HasPrefix(arg, "--judge-system-prompt-file="):
			opts.judgePromptFile = strings.TrimSpace(strings.TrimPrefix(arg, "--judge-system-prompt-file="))
		case strings.HasPrefix(arg, "--output="):
			opts.output = strings.TrimSpace(strings.TrimPrefix(arg, "--output="))
		case strings.HasPrefix(arg, "--audit-db="):
			opts.auditDB = strings.TrimSpace(strings.TrimPrefix(arg, "--audit-db="))
		case strings.HasPrefix(arg, "--redis-addr="):
			opts.redisAddr = strings.TrimSpace(strings.TrimPrefix(arg, "--redis-addr="))
		case strings.HasPrefix(arg, "--redis-stream="):
			opts.redisStream = strings.TrimSpace(strings.TrimPrefix(arg, "--redis-stream="))
		case strings.HasPrefix(arg, "--wave-delay-ms="):
			if v, err := strconv.Atoi(strings.TrimPrefix(arg, "--wave-delay-ms=")); err == nil && v >= 0 {
				opts.waveDelay = time.Duration(v) * time.Millisecond
			}
		case strings.HasPrefix(arg, "--win-on-zero="):
			opts.winOnZero = config.ParseBoolString(strings.TrimPrefix(arg, "--win-on-zero="), true)
		}
	}
	return opts
}
