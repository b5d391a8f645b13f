package batch

import (
	"strings"

	"github.com/arbiterhq/arbiter-go/types"
)

// Category is the aggregation outcome of one settled attempt.
type Category string

const (
	CategoryWin     Category = "win"
	CategoryLoss    Category = "loss"
	CategoryFailure Category = "failure"
)

// WinPredicate decides whether a numeric judge score counts as a win. The
// judge-prompt convention in use treats score 0 as a pass and any positive
// score as a loss, but the polarity is deliberately a single configurable
// predicate rather than a hard-coded rule.
type WinPredicate func(score float64) bool

func DefaultWinPredicate(score float64) bool { return score == 0 }

// classify maps a verdict to its category without touching any state.
// A verdict with no numeric score is a failure: the judge produced nothing
// the aggregator can grade.
func classify(v *types.Verdict, win WinPredicate) Category {
	if v == nil || v.Score == nil {
		return CategoryFailure
	}
	if win == nil {
		win = DefaultWinPredicate
	}
	if win(*v.Score) {
		return CategoryWin
	}
	return CategoryLoss
}

// Fold merges one parsed verdict into the running batch counters and returns
// the attempt's category. Attempts increments unconditionally once per call,
// so attempts == wins + losses + parseFailures holds after every fold.
func Fold(state *types.BatchState, v *types.Verdict, win WinPredicate) Category {
	state.Attempts++
	category := classify(v, win)
	switch category {
	case CategoryWin:
		state.Wins++
	case CategoryLoss:
		state.Losses++
	default:
		state.ParseFailures++
	}

	if v != nil && len(v.GradingBasis) > 0 {
		if state.CriteriaStats == nil {
			state.CriteriaStats = make(map[string]types.CriterionTally, len(v.GradingBasis))
		}
		for id, result := range v.GradingBasis {
			tally := state.CriteriaStats[id]
			if strings.EqualFold(strings.TrimSpace(result), "PASS") {
				tally.Pass++
			} else {
				tally.Fail++
			}
			state.CriteriaStats[id] = tally
		}
	}
	return category
}
