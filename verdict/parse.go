// Package verdict parses the semi-structured free text produced by a judge
// model into a structured types.Verdict.
//
// Judge output follows a labeled-section convention:
//
//	[Grading Basis]: {"criterion-1": "PASS", "criterion-2": "FAIL"}
//	[Score]: 1 point
//	[JSON]: {"answer_score": 1}
//	[Explanation]: free text
//
// Labels are case-insensitive and a section runs until the next label or the
// end of the text. Parsing is pure: same input, same output, no side effects.
package verdict

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/arbiterhq/arbiter-go/types"
)

const (
	sectionGradingBasis = "grading basis"
	sectionScore        = "score"
	sectionJSON         = "json"
	sectionExplanation  = "explanation"
)

var (
	labelPattern  = regexp.MustCompile(`(?i)\[(grading basis|score|json|explanation)\]\s*:`)
	numberPattern = regexp.MustCompile(`-?\d+(?:\.\d+)?`)
)

// InvalidSectionJSONError reports a present section whose embedded JSON body
// could not be decoded. A malformed grading basis is evidence the judge did
// not follow the output contract, so it is a hard failure rather than a
// silently dropped field.
type InvalidSectionJSONError struct {
	Section string
	Err     error
}

func (e *InvalidSectionJSONError) Error() string {
	return fmt.Sprintf("invalid JSON in [%s] section: %v", e.Section, e.Err)
}

func (e *InvalidSectionJSONError) Unwrap() error { return e.Err }

// Parse extracts the labeled sections from raw judge text. A text with no
// sections at all parses successfully into an empty Verdict; that outcome is
// the caller's signal of an uninformative judge response, not an error.
func Parse(raw string) (types.Verdict, error) {
	sections := splitSections(raw)
	out := types.Verdict{}

	if body, ok := sections[sectionGradingBasis]; ok {
		basis, err := parseGradingBasis(body)
		if err != nil {
			return types.Verdict{}, err
		}
		out.GradingBasis = basis
	}

	if body, ok := sections[sectionJSON]; ok {
		var obj map[string]any
		if err := json.Unmarshal([]byte(stripFences(body)), &obj); err != nil {
			return types.Verdict{}, &InvalidSectionJSONError{Section: sectionJSON, Err: err}
		}
		out.JSON = obj
	}

	if body, ok := sections[sectionExplanation]; ok {
		out.Explanation = strings.TrimSpace(body)
	}

	out.Score = resolveScore(sections, out)
	return out, nil
}

// resolveScore applies the fallback chain: explicit [Score] number, then a
// numeric json.answer_score, then a majority vote over the grading basis.
// A [Score] section whose body carries no number falls through the chain the
// same as an absent section; judges sometimes write prose there and the
// later sources are better evidence than a missing digit.
// When none of the three sources is present the score stays unset; a
// synthetic zero would be indistinguishable from a real zero score.
func resolveScore(sections map[string]string, v types.Verdict) *float64 {
	if body, ok := sections[sectionScore]; ok {
		if match := numberPattern.FindString(body); match != "" {
			if n, err := strconv.ParseFloat(match, 64); err == nil {
				return &n
			}
		}
	}
	if v.JSON != nil {
		if n, ok := v.JSON["answer_score"].(float64); ok {
			return &n
		}
	}
	if len(v.GradingBasis) > 0 {
		passed := 0
		for _, result := range v.GradingBasis {
			if strings.EqualFold(strings.TrimSpace(result), "PASS") {
				passed++
			}
		}
		score := 0.0
		if passed*2 > len(v.GradingBasis) {
			score = 1.0
		}
		return &score
	}
	return nil
}

func parseGradingBasis(body string) (map[string]string, error) {
	var raw map[string]any
	if err := json.Unmarshal([]byte(stripFences(body)), &raw); err != nil {
		return nil, &InvalidSectionJSONError{Section: sectionGradingBasis, Err: err}
	}
	basis := make(map[string]string, len(raw))
	for id, result := range raw {
		switch r := result.(type) {
		case string:
			basis[id] = r
		default:
			basis[id] = fmt.Sprintf("%v", r)
		}
	}
	return basis, nil
}

// splitSections maps each label to the text between its colon and the next
// label (or end of input). The first occurrence of a label wins.
func splitSections(raw string) map[string]string {
	matches := labelPattern.FindAllStringSubmatchIndex(raw, -1)
	sections := make(map[string]string, len(matches))
	for i, match := range matches {
		label := strings.ToLower(raw[match[2]:match[3]])
		end := len(raw)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		if _, seen := sections[label]; seen {
			continue
		}
		sections[label] = strings.TrimSpace(raw[match[1]:end])
	}
	return sections
}

// stripFences removes a surrounding markdown code fence so that judges which
// wrap their JSON in ``` blocks still parse.
func stripFences(body string) string {
	trimmed := strings.TrimSpace(body)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```")
	if idx := strings.Index(trimmed, "\n"); idx >= 0 && !strings.HasPrefix(trimmed, "{") {
		trimmed = trimmed[idx+1:]
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
