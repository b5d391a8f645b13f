// Package batch drives generate-then-judge attempts in bounded concurrency
// waves until a target number of passing attempts is reached or the try
// budget is exhausted.
package batch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/arbiterhq/arbiter-go/gateway"
	"github.com/arbiterhq/arbiter-go/observe"
	"github.com/arbiterhq/arbiter-go/types"
	"github.com/arbiterhq/arbiter-go/verdict"
)

// ConcurrentRunLimit is the wave width: the number of attempts dispatched
// simultaneously within one concurrency window.
const ConcurrentRunLimit = 5

const defaultWaveDelay = 500 * time.Millisecond

// Caller issues one generation request and blocks until it settles.
// *gateway.Client satisfies it.
type Caller interface {
	Call(ctx context.Context, payload gateway.Payload, opts types.GenerateOptions) (gateway.Result, error)
}

type connectedCaller interface {
	Connected() bool
}

// BatchSpec describes one scheduler invocation.
type BatchSpec struct {
	Prompt            string
	Criteria          []types.Criterion
	MaxAttempts       int
	Goal              int
	TestOptions       types.GenerateOptions
	JudgeOptions      types.GenerateOptions
	JudgeSystemPrompt string
}

// Batch is the per-invocation arena: the aggregate counters plus the ordered,
// append-only run collection. Runs are appended during the batch and never
// mutated after it completes; collaborators only read them.
type Batch struct {
	ID    string
	State types.BatchState

	spec BatchSpec

	mu   sync.Mutex
	runs []*types.Run
	byID map[string]*types.Run
}

// Runs returns the arena in dispatch order.
func (b *Batch) Runs() []*types.Run {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]*types.Run(nil), b.runs...)
}

// Run looks up one run by id.
func (b *Batch) Run(id string) (*types.Run, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	run, ok := b.byID[id]
	return run, ok
}

type Scheduler struct {
	caller    Caller
	observer  observe.Sink
	win       WinPredicate
	waveSize  int
	waveDelay time.Duration
}

type SchedulerOption func(*Scheduler)

func WithObserver(observer observe.Sink) SchedulerOption {
	return func(s *Scheduler) {
		if observer != nil {
			s.observer = observer
		}
	}
}

func WithWinPredicate(win WinPredicate) SchedulerOption {
	return func(s *Scheduler) {
		if win != nil {
			s.win = win
		}
	}
}

func WithWaveSize(size int) SchedulerOption {
	return func(s *Scheduler) {
		if size > 0 {
			s.waveSize = size
		}
	}
}

func WithWaveDelay(delay time.Duration) SchedulerOption {
	return func(s *Scheduler) {
		if delay >= 0 {
			s.waveDelay = delay
		}
	}
}

func NewScheduler(caller Caller, opts ...SchedulerOption) (*Scheduler, error) {
	if caller == nil {
		return nil, errors.New("scheduler caller is required")
	}
	s := &Scheduler{
		caller:    caller,
		observer:  observe.NoopSink{},
		win:       DefaultWinPredicate,
		waveSize:  ConcurrentRunLimit,
		waveDelay: defaultWaveDelay,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Run processes up to spec.MaxAttempts attempts in waves of the configured
// width, stopping early once spec.Goal wins accumulate or the context is
// cancelled. Cancellation is cooperative and checked only at wave
// boundaries: in-flight attempts always settle, only the next wave is
// suppressed. A wave never short-circuits on an attempt failure.
func (s *Scheduler) Run(ctx context.Context, spec BatchSpec) (*Batch, error) {
	if spec.Prompt == "" {
		return nil, errors.New("batch prompt is required")
	}
	if spec.MaxAttempts <= 0 {
		return nil, errors.New("maxAttempts must be positive")
	}
	if spec.Goal <= 0 {
		return nil, errors.New("goal must be positive")
	}
	if cc, ok := s.caller.(connectedCaller); ok && !cc.Connected() {
		return nil, gateway.ErrNotConnected
	}

	b := &Batch{
		ID:   uuid.NewString(),
		spec: spec,
		byID: map[string]*types.Run{},
	}
	b.State = types.BatchState{
		BatchID:       b.ID,
		CriteriaStats: map[string]types.CriterionTally{},
	}

	s.emit(ctx, observe.Event{
		BatchID:  b.ID,
		Category: observe.CategoryBatch,
		Message:  fmt.Sprintf("batch started: goal %d wins within %d attempts", spec.Goal, spec.MaxAttempts),
	})

	stop := ""
	for wave := 0; stop == ""; wave++ {
		if ctx.Err() != nil {
			stop = "cancelled"
			break
		}

		size := s.waveSize
		if remaining := spec.MaxAttempts - wave*s.waveSize; remaining < size {
			size = remaining
		}

		var wg sync.WaitGroup
		for i := 0; i < size; i++ {
			run := &types.Run{ID: uuid.NewString(), BatchID: b.ID, Status: types.RunQueued}
			b.mu.Lock()
			b.runs = append(b.runs, run)
			b.byID[run.ID] = run
			b.mu.Unlock()

			wg.Add(1)
			go func(run *types.Run) {
				defer wg.Done()
				s.attempt(ctx, b, run)
			}(run)
		}
		wg.Wait()

		switch {
		case s.wins(b) >= spec.Goal:
			stop = "goal reached"
		case (wave+1)*s.waveSize >= spec.MaxAttempts:
			stop = "budget exhausted"
		case ctx.Err() != nil:
			stop = "cancelled"
		default:
			// Brief pause between waves to avoid bursting the endpoint.
			select {
			case <-time.After(s.waveDelay):
			case <-ctx.Done():
			}
		}
	}

	b.mu.Lock()
	state := b.State
	b.mu.Unlock()
	s.emit(ctx, observe.Event{
		BatchID:  b.ID,
		Category: observe.CategoryBatch,
		Message: fmt.Sprintf("batch stopped (%s): %d attempts, %d wins, %d losses, %d parse failures",
			stop, state.Attempts, state.Wins, state.Losses, state.ParseFailures),
	})
	return b, nil
}

// Reevaluate repeats the judge and parse steps for one settled run against
// its stored model output. The batch counters are frozen once the batch has
// completed, so a re-evaluation updates only the run itself.
func (s *Scheduler) Reevaluate(ctx context.Context, b *Batch, runID string) error {
	if b == nil {
		return errors.New("batch is required")
	}
	run, ok := b.Run(runID)
	if !ok {
		return fmt.Errorf("run %s not found in batch %s", runID, b.ID)
	}
	if !resetForReevaluation(run) {
		return fmt.Errorf("run %s cannot be re-evaluated: it has not settled or has no model output", runID)
	}
	s.emit(ctx, observe.Event{
		BatchID:  b.ID,
		RunID:    run.ID,
		Category: observe.CategoryRun,
		Message:  "re-evaluation started",
	})
	s.judgeAndScore(ctx, b, run, false)
	return nil
}

// attempt drives one run through the full lifecycle. Failures terminate only
// this run; the scheduler proceeds with the rest of the wave.
func (s *Scheduler) attempt(ctx context.Context, b *Batch, run *types.Run) {
	advance(run, types.RunGenerating)
	s.emitRun(ctx, run, observe.CategoryGenerate, observe.LevelDebug, "test generation started", "")

	// Gateway calls are detached from batch cancellation: a cancel mid-wave
	// lets in-flight requests settle and only suppresses the next wave. The
	// per-call timeout still bounds the wait.
	result, err := s.caller.Call(context.WithoutCancel(ctx), gateway.PromptPayload(b.spec.Prompt), b.spec.TestOptions)
	if err != nil {
		s.failRun(ctx, run, observe.CategoryGenerate, err)
		return
	}
	run.ModelContent = result.Text
	run.ModelReasoning = result.Reasoning

	advance(run, types.RunEvaluating)
	s.emitRun(ctx, run, observe.CategoryJudge, observe.LevelDebug, "judge evaluation started", "")
	s.judgeAndScore(ctx, b, run, true)
}

// judgeAndScore runs the judge call, parse, and scoring steps. When fold is
// false the verdict is classified but not merged into the batch counters.
func (s *Scheduler) judgeAndScore(ctx context.Context, b *Batch, run *types.Run, fold bool) {
	result, err := s.caller.Call(context.WithoutCancel(ctx), gateway.MessagesPayload(judgeMessages(b.spec, run.ModelContent)...), b.spec.JudgeOptions)
	if err != nil {
		// JudgeText stays unset: no judge text is distinct from judge
		// text that failed to parse.
		s.failRun(ctx, run, observe.CategoryJudge, err)
		return
	}
	run.JudgeText = result.Text
	run.JudgeReasoning = result.Reasoning

	advance(run, types.RunParsing)
	v, err := verdict.Parse(run.JudgeText)
	if err != nil {
		s.failRun(ctx, run, observe.CategoryParse, err)
		return
	}
	run.Verdict = &v

	advance(run, types.RunScoring)
	var category Category
	if fold {
		b.mu.Lock()
		category = Fold(&b.State, &v, s.win)
		b.mu.Unlock()
	} else {
		category = classify(&v, s.win)
	}
	advance(run, types.RunCompleted)
	s.emitRun(ctx, run, observe.CategoryScore, observe.LevelInfo, fmt.Sprintf("run completed: %s", category), "")
}

func (s *Scheduler) failRun(ctx context.Context, run *types.Run, category observe.Category, err error) {
	fail(run, err.Error())
	s.emitRun(ctx, run, category, observe.LevelError, "run failed", err.Error())
}

func (s *Scheduler) wins(b *Batch) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.State.Wins
}

func (s *Scheduler) emitRun(ctx context.Context, run *types.Run, category observe.Category, level observe.Level, message, errText string) {
	s.emit(ctx, observe.Event{
		BatchID:  run.BatchID,
		RunID:    run.ID,
		Level:    level,
		Category: category,
		Message:  message,
		Error:    errText,
		Attributes: map[string]any{
			"status": string(run.Status),
		},
	})
}

func (s *Scheduler) emit(ctx context.Context, event observe.Event) {
	if s.observer == nil {
		return
	}
	event.Normalize()
	_ = s.observer.Emit(ctx, event)
}
