package cli

import (
	"testing"
	"time"
)

func TestParseRunArgsDefaults(t *testing.T) {
	opts := parseRunArgs(nil)
	if opts.maxAttempts != 10 || opts.goal != 1 {
		t.Fatalf("unexpected defaults: %+v", opts)
	}
	if opts.output != "markdown" || !opts.winOnZero {
		t.Fatalf("unexpected defaults: %+v", opts)
	}
	if opts.waveDelay >= 0 {
		t.Fatalf("wave delay should default to unset, got %s", opts.waveDelay)
	}
}

func TestParseRunArgs(t *testing.T) {
	opts := parseRunArgs([]string{
		"--gateway-url=ws://localhost:9000/generate",
		"--catalog=models.yaml",
		"--criteria=criteria.jsonl",
		"--prompt=write a haiku",
		"--max-attempts=25",
		"--goal=3",
		"--test-model=fast",
		"--judge-model=strict",
		"--output=json",
		"--wave-delay-ms=100",
		"--win-on-zero=false",
	})
	if opts.gatewayURL != "ws://localhost:9000/generate" {
		t.Fatalf("unexpected gateway url %q", opts.gatewayURL)
	}
	if opts.maxAttempts != 25 || opts.goal != 3 {
		t.Fatalf("unexpected budget flags: %+v", opts)
	}
	if opts.testModel != "fast" || opts.judgeModel != "strict" {
		t.Fatalf("unexpected model flags: %+v", opts)
	}
	if opts.output != "json" {
		t.Fatalf("unexpected output %q", opts.output)
	}
	if opts.waveDelay != 100*time.Millisecond {
		t.Fatalf("unexpected wave delay %s", opts.waveDelay)
	}
	if opts.winOnZero {
		t.Fatal("expected win-on-zero disabled")
	}
}

func TestParseRunArgsIgnoresInvalidNumbers(t *testing.T) {
	opts := parseRunArgs([]string{"--max-attempts=zero", "--goal=-2"})
	if opts.maxAttempts != 10 || opts.goal != 1 {
		t.Fatalf("invalid numbers must keep defaults: %+v", opts)
	}
}

func TestParseRunArgsEnvDefaults(t *testing.T) {
	t.Setenv("ARBITER_MAX_ATTEMPTS", "30")
	t.Setenv("ARBITER_GOAL", "5")
	t.Setenv("ARBITER_WAVE_DELAY", "2s")

	opts := parseRunArgs(nil)
	if opts.maxAttempts != 30 || opts.goal != 5 {
		t.Fatalf("env defaults not applied: %+v", opts)
	}
	if opts.waveDelay != 2*time.Second {
		t.Fatalf("env wave delay not applied: %s", opts.waveDelay)
	}

	// Flags still win over the environment.
	opts = parseRunArgs([]string{"--max-attempts=3"})
	if opts.maxAttempts != 3 {
		t.Fatalf("flag should override env, got %d", opts.maxAttempts)
	}
}
