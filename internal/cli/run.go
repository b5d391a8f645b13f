package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/arbiterhq/arbiter-go/batch"
	"github.com/arbiterhq/arbiter-go/catalog"
	"github.com/arbiterhq/arbiter-go/gateway"
	"github.com/arbiterhq/arbiter-go/gateway/wsgateway"
	"github.com/arbiterhq/arbiter-go/internal/config"
	"github.com/arbiterhq/arbiter-go/observe"
	"github.com/arbiterhq/arbiter-go/observe/redistream"
	obsstore "github.com/arbiterhq/arbiter-go/observe/store"
	obssqlite "github.com/arbiterhq/arbiter-go/observe/store/sqlite"
)

func runBatchCLI(ctx context.Context, args []string) {
	opts := parseRunArgs(args)

	gatewayURL := opts.gatewayURL
	if gatewayURL == "" {
		gatewayURL = config.EnvOr("ARBITER_GATEWAY_URL", "")
	}
	if gatewayURL == "" {
		log.Fatal("usage: arbiter run --gateway-url=ws://host/generate --catalog=models.yaml --criteria=criteria.jsonl --prompt=... [--max-attempts=10] [--goal=1]")
	}

	prompt := opts.prompt
	if prompt == "" && opts.promptFile != "" {
		data, err := os.ReadFile(opts.promptFile)
		if err != nil {
			log.Fatalf("failed to read prompt file: %v", err)
		}
		prompt = string(data)
	}
	if strings.TrimSpace(prompt) == "" {
		log.Fatal("a prompt is required (--prompt= or --prompt-file=)")
	}

	catalogPath := opts.catalogPath
	if catalogPath == "" {
		catalogPath = config.EnvOr("ARBITER_CATALOG", "models.yaml")
	}
	models, err := catalog.Load(catalogPath)
	if err != nil {
		log.Fatalf("failed to load model catalog: %v", err)
	}
	testOptions, err := models.ModelOptions(opts.testModel, catalog.RoleTest)
	if err != nil {
		log.Fatalf("failed to resolve test model: %v", err)
	}
	judgeOptions, err := models.ModelOptions(opts.judgeModel, catalog.RoleJudge)
	if err != nil {
		log.Fatalf("failed to resolve judge model: %v", err)
	}

	if opts.criteriaPath == "" {
		log.Fatal("a criteria file is required (--criteria=path.jsonl)")
	}
	criteria, err := batch.LoadCriteriaJSONL(opts.criteriaPath)
	if err != nil {
		log.Fatalf("failed to load criteria: %v", err)
	}

	judgeSystemPrompt := ""
	if opts.judgePromptFile != "" {
		data, err := os.ReadFile(opts.judgePromptFile)
		if err != nil {
			log.Fatalf("failed to read judge system prompt file: %v", err)
		}
		judgeSystemPrompt = string(data)
	}

	client := gateway.NewClient(nil)
	conn, err := wsgateway.Dial(ctx, gatewayURL, client)
	if err != nil {
		log.Fatalf("failed to connect to gateway: %v", err)
	}
	defer conn.Close()
	client.Attach(conn)

	observer, cleanup := buildObserver(opts)
	defer cleanup()

	schedulerOpts := []batch.SchedulerOption{batch.WithObserver(observer)}
	if opts.waveDelay >= 0 {
		schedulerOpts = append(schedulerOpts, batch.WithWaveDelay(opts.waveDelay))
	}
	if !opts.winOnZero {
		schedulerOpts = append(schedulerOpts, batch.WithWinPredicate(func(score float64) bool { return score > 0 }))
	}

	scheduler, err := batch.NewScheduler(client, schedulerOpts...)
	if err != nil {
		log.Fatalf("failed to create scheduler: %v", err)
	}

	result, err := scheduler.Run(ctx, batch.BatchSpec{
		Prompt:            prompt,
		Criteria:          criteria,
		MaxAttempts:       opts.maxAttempts,
		Goal:              opts.goal,
		TestOptions:       testOptions,
		JudgeOptions:      judgeOptions,
		JudgeSystemPrompt: judgeSystemPrompt,
	})
	if err != nil {
		log.Fatalf("batch run failed: %v", err)
	}

	report := result.Report()
	switch strings.ToLower(strings.TrimSpace(opts.output)) {
	case "", "markdown", "md":
		fmt.Println(batch.FormatMarkdown(report))
	case "json":
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			log.Fatalf("failed to encode report: %v", err)
		}
		fmt.Println(string(data))
	default:
		log.Fatalf("unsupported output format %q (use markdown or json)", opts.output)
	}

	if report.State.Wins < opts.goal {
		log.Fatalf("goal missed: %d of %d wins after %d attempts", report.State.Wins, opts.goal, report.State.Attempts)
	}
}

func buildObserver(opts runCLIOptions) (observe.Sink, func()) {
	sinks := []observe.Sink{logSink()}
	closers := make([]func(), 0, 2)

	auditDB := opts.auditDB
	if auditDB == "" {
		auditDB = config.EnvOr("ARBITER_AUDIT_DB", "")
	}
	if auditDB != "" {
		store, err := obssqlite.New(auditDB)
		if err != nil {
			log.Fatalf("failed to open audit store: %v", err)
		}
		// Persistence stays off the scheduler hot path.
		audit := observe.NewAsyncSink(obsstore.SinkFor(store), 0)
		sinks = append(sinks, audit)
		closers = append(closers, func() {
			audit.Close()
			_ = store.Close()
		})
	}

	redisAddr := opts.redisAddr
	if redisAddr == "" {
		redisAddr = config.EnvOr("ARBITER_REDIS_ADDR", "")
	}
	if redisAddr != "" {
		streamOpts := []redistream.Option{}
		if opts.redisStream != "" {
			streamOpts = append(streamOpts, redistream.WithStream(opts.redisStream))
		}
		sink, err := redistream.New(redisAddr, streamOpts...)
		if err != nil {
			log.Fatalf("failed to connect redis sink: %v", err)
		}
		stream := observe.NewAsyncSink(sink, 0)
		sinks = append(sinks, stream)
		closers = append(closers, func() {
			stream.Close()
			_ = sink.Close()
		})
	}

	return observe.NewMultiSink(sinks...), func() {
		for _, closeFn := range closers {
			closeFn()
		}
	}
}

func logSink() observe.Sink {
	return observe.MinLevel(observe.LevelInfo, observe.SinkFunc(func(_ context.Context, event observe.Event) error {
		if event.Error != "" {
			log.Printf("[%s] %s %s: %s (%s)", event.Level, event.Category, event.RunID, event.Message, event.Error)
			return nil
		}
		log.Printf("[%s] %s %s: %s", event.Level, event.Category, event.RunID, event.Message)
		return nil
	}))
}
