package batch

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/arbiterhq/arbiter-go/types"
)

// LoadCriteriaJSONL reads pass/fail criteria from a JSONL file, one
// {"id": ..., "criteria": ...} object per line. Blank lines are skipped and
// a missing id gets a generated one.
func LoadCriteriaJSONL(path string) ([]types.Criterion, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open criteria file: %w", err)
	}
	defer f.Close()

	var criteria []types.Criterion
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}
		var c types.Criterion
		if err := json.Unmarshal([]byte(raw), &c); err != nil {
			return nil, fmt.Errorf("invalid criterion on line %d: %w", line, err)
		}
		if strings.TrimSpace(c.Criteria) == "" {
			return nil, fmt.Errorf("criterion on line %d has empty criteria text", line)
		}
		if strings.TrimSpace(c.ID) == "" {
			c.ID = uuid.NewString()
		}
		criteria = append(criteria, c)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read criteria file: %w", err)
	}
	if len(criteria) == 0 {
		return nil, fmt.Errorf("criteria file %q contains no criteria", path)
	}
	return criteria, nil
}
