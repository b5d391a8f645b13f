package batch

import (
	"fmt"
	"sort"
	"strings"

	"github.com/arbiterhq/arbiter-go/types"
)

// Report is the JSON-friendly snapshot of a finished batch.
type Report struct {
	BatchID string           `json:"batchId"`
	State   types.BatchState `json:"state"`
	Runs    []*types.Run     `json:"runs"`
}

func (b *Batch) Report() Report {
	return Report{
		BatchID: b.ID,
		State:   b.snapshotState(),
		Runs:    b.Runs(),
	}
}

func (b *Batch) snapshotState() types.BatchState {
	b.mu.Lock()
	defer b.mu.Unlock()
	state := b.State
	if state.CriteriaStats != nil {
		stats := make(map[string]types.CriterionTally, len(state.CriteriaStats))
		for id, tally := range state.CriteriaStats {
			stats[id] = tally
		}
		state.CriteriaStats = stats
	}
	return state
}

// FormatMarkdown renders a human-readable batch summary.
func FormatMarkdown(report Report) string {
	var sb strings.Builder
	state := report.State

	sb.WriteString("# Batch Report\n\n")
	fmt.Fprintf(&sb, "- Batch: `%s`\n", report.BatchID)
	fmt.Fprintf(&sb, "- Attempts: %d\n", state.Attempts)
	fmt.Fprintf(&sb, "- Wins: %d\n", state.Wins)
	fmt.Fprintf(&sb, "- Losses: %d\n", state.Losses)
	fmt.Fprintf(&sb, "- Parse failures: %d\n", state.ParseFailures)

	if len(state.CriteriaStats) > 0 {
		sb.WriteString("\n## Criteria\n\n")
		sb.WriteString("| Criterion | Pass | Fail |\n")
		sb.WriteString("|---|---|---|\n")
		ids := make([]string, 0, len(state.CriteriaStats))
		for id := range state.CriteriaStats {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			tally := state.CriteriaStats[id]
			fmt.Fprintf(&sb, "| %s | %d | %d |\n", id, tally.Pass, tally.Fail)
		}
	}

	if len(report.Runs) > 0 {
		sb.WriteString("\n## Runs\n\n")
		sb.WriteString("| Run | Status | Score | Error |\n")
		sb.WriteString("|---|---|---|---|\n")
		for _, run := range report.Runs {
			score := "-"
			if run.Verdict != nil && run.Verdict.Score != nil {
				score = fmt.Sprintf("%g", *run.Verdict.Score)
			}
			errText := run.Error
			if errText == "" {
				errText = "-"
			}
			fmt.Fprintf(&sb, "| %s | %s | %s | %s |\n", run.ID, run.Status, score, errText)
		}
	}

	return sb.String()
}
