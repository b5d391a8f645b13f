package verdict

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseFullResponse(t *testing.T) {
	t.Parallel()

	raw := "[Grading Basis]: {\"c1\": \"PASS\", \"c2\": \"FAIL\"}\n" +
		"[Score]: 1 point\n" +
		"[JSON]: {\"answer_score\": 1}\n" +
		"[Explanation]: the answer missed one requirement"

	v, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	want := map[string]string{"c1": "PASS", "c2": "FAIL"}
	if diff := cmp.Diff(want, v.GradingBasis); diff != "" {
		t.Fatalf("grading basis mismatch (-want +got):\n%s", diff)
	}
	if v.Score == nil || *v.Score != 1 {
		t.Fatalf("expected score 1, got %v", v.Score)
	}
	if v.JSON["answer_score"] != float64(1) {
		t.Fatalf("expected answer_score 1 in JSON section, got %v", v.JSON["answer_score"])
	}
	if v.Explanation != "the answer missed one requirement" {
		t.Fatalf("unexpected explanation: %q", v.Explanation)
	}
}

func TestParseLabelsCaseInsensitive(t *testing.T) {
	t.Parallel()

	v, err := Parse("[SCORE]: 0\n[explanation]: nailed it")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if v.Score == nil || *v.Score != 0 {
		t.Fatalf("expected score 0, got %v", v.Score)
	}
	if v.Explanation != "nailed it" {
		t.Fatalf("unexpected explanation: %q", v.Explanation)
	}
}

func TestParseScoreExtractsFirstNumber(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
		want float64
	}{
		{name: "prose around number", body: "[Score]: I award 2 points out of 3", want: 2},
		{name: "negative", body: "[Score]: -1", want: -1},
		{name: "decimal", body: "[Score]: 0.5 seems fair", want: 0.5},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			v, err := Parse(tt.body)
			if err != nil {
				t.Fatalf("Parse returned error: %v", err)
			}
			if v.Score == nil || *v.Score != tt.want {
				t.Fatalf("expected score %v, got %v", tt.want, v.Score)
			}
		})
	}
}

func TestParseScoreFallsBackToJSONAnswerScore(t *testing.T) {
	t.Parallel()

	v, err := Parse("[JSON]: {\"answer_score\": 3, \"notes\": \"ok\"}")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if v.Score == nil || *v.Score != 3 {
		t.Fatalf("expected score 3 from JSON fallback, got %v", v.Score)
	}
}

func TestParseScoreMajorityFallback(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		basis string
		want  float64
	}{
		{name: "majority pass", basis: `{"a": "PASS", "b": "pass", "c": "FAIL"}`, want: 1},
		{name: "majority fail", basis: `{"a": "PASS", "b": "FAIL", "c": "FAIL"}`, want: 0},
		{name: "tie is not a majority", basis: `{"a": "PASS", "b": "FAIL"}`, want: 0},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			v, err := Parse("[Grading Basis]: " + tt.basis)
			if err != nil {
				t.Fatalf("Parse returned error: %v", err)
			}
			if v.Score == nil || *v.Score != tt.want {
				t.Fatalf("expected score %v, got %v", tt.want, v.Score)
			}
		})
	}
}

func TestParseNumberlessScoreSectionFallsThrough(t *testing.T) {
	t.Parallel()

	v, err := Parse("[Score]: no points awarded\n[JSON]: {\"answer_score\": 2}")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if v.Score == nil || *v.Score != 2 {
		t.Fatalf("expected fallback to answer_score 2, got %v", v.Score)
	}

	v, err = Parse("[Score]: unclear\n[Grading Basis]: {\"a\": \"PASS\"}")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if v.Score == nil || *v.Score != 1 {
		t.Fatalf("expected fallback to majority vote, got %v", v.Score)
	}
}

func TestParseNoScoreSourcesLeavesScoreUnset(t *testing.T) {
	t.Parallel()

	v, err := Parse("[Explanation]: could not evaluate")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if v.Score != nil {
		t.Fatalf("expected nil score, got %v", *v.Score)
	}
}

func TestParseEmptyInput(t *testing.T) {
	t.Parallel()

	v, err := Parse("")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if v.Score != nil || v.GradingBasis != nil || v.JSON != nil || v.Explanation != "" {
		t.Fatalf("expected empty verdict, got %+v", v)
	}
}

func TestParseInvalidSectionJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		raw     string
		section string
	}{
		{name: "grading basis", raw: "[Grading Basis]: not json at all", section: "grading basis"},
		{name: "json", raw: "[JSON]: {broken", section: "json"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse(tt.raw)
			var invalid *InvalidSectionJSONError
			if !errors.As(err, &invalid) {
				t.Fatalf("expected InvalidSectionJSONError, got %v", err)
			}
			if invalid.Section != tt.section {
				t.Fatalf("expected section %q, got %q", tt.section, invalid.Section)
			}
		})
	}
}

func TestParseFirstLabelOccurrenceWins(t *testing.T) {
	t.Parallel()

	v, err := Parse("[Score]: 2\n[Score]: 7")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if v.Score == nil || *v.Score != 2 {
		t.Fatalf("expected first score section to win, got %v", v.Score)
	}
}

func TestParseFencedJSONSections(t *testing.T) {
	t.Parallel()

	raw := "[Grading Basis]:\n```json\n{\"c1\": \"PASS\"}\n```\n[JSON]:\n```\n{\"answer_score\": 0}\n```"
	v, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if v.GradingBasis["c1"] != "PASS" {
		t.Fatalf("expected fenced grading basis to parse, got %v", v.GradingBasis)
	}
	if v.Score == nil || *v.Score != 0 {
		t.Fatalf("expected score 0 from fenced JSON, got %v", v.Score)
	}
}

func TestParseGradingBasisNonStringValues(t *testing.T) {
	t.Parallel()

	v, err := Parse("[Grading Basis]: {\"c1\": true, \"c2\": \"PASS\"}")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if v.GradingBasis["c1"] != "true" {
		t.Fatalf("expected non-string result stringified, got %q", v.GradingBasis["c1"])
	}
}

func TestParseIsDeterministic(t *testing.T) {
	t.Parallel()

	raw := "[Grading Basis]: {\"a\": \"PASS\"}\n[Score]: 0\n[Explanation]: good"
	first, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	second, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("repeated parse diverged (-first +second):\n%s", diff)
	}
}
